package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/barter-backend/internal/domain/valueobject"
	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
	"github.com/ignatzorin/barter-backend/internal/validation"
)

// ChainLink описывает участника цепочки: что он отдаёт и кому.
type ChainLink struct {
	UserID             uuid.UUID
	ListingID          uuid.UUID
	DeclaredReceiverID uuid.UUID
}

// TradeParticipants задаёт состав сделки: DirectParticipants или ChainParticipants.
type TradeParticipants interface {
	Type() valueobject.TradeType
	ListingIDs() []uuid.UUID
}

type DirectParticipants struct {
	ProposerListingID uuid.UUID
	ReceiverListingID uuid.UUID
}

func (DirectParticipants) Type() valueobject.TradeType {
	return valueobject.TradeTypeDirect
}

func (p DirectParticipants) ListingIDs() []uuid.UUID {
	return []uuid.UUID{p.ProposerListingID, p.ReceiverListingID}
}

type ChainParticipants struct {
	Chain []ChainLink
}

func (ChainParticipants) Type() valueobject.TradeType {
	return valueobject.TradeTypeMultiParty
}

func (p ChainParticipants) ListingIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Chain))
	for _, link := range p.Chain {
		ids = append(ids, link.ListingID)
	}
	return ids
}

type Trade struct {
	ID                uuid.UUID
	ProposerID        uuid.UUID
	ReceiverID        *uuid.UUID
	Participants      TradeParticipants
	Status            valueobject.TradeStatus
	TradeCoinAmount   valueobject.Coins
	MeetupLocation    *string
	MeetupTime        *time.Time
	IsEscrow          bool
	EscrowReleaseDate *time.Time
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AcceptDetails содержит параметры встречи, которые получатель задаёт при принятии.
type AcceptDetails struct {
	MeetupLocation *string
	MeetupTime     *time.Time
	IsEscrow       bool
	EscrowPeriod   time.Duration
}

func NewDirectTrade(proposerID, receiverID, proposerListingID, receiverListingID uuid.UUID, coins int64, notes string) (*Trade, error) {
	if proposerID == receiverID {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя предложить обмен самому себе")
	}
	if proposerListingID == uuid.Nil || receiverListingID == uuid.Nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "объявления обеих сторон обязательны")
	}
	if proposerListingID == receiverListingID {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя обменять объявление само на себя")
	}
	amount, err := valueobject.NewCoins(coins)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateTradeNotes(notes); err != nil {
		return nil, invalid(err)
	}

	now := time.Now().UTC()
	receiver := receiverID
	return &Trade{
		ID:         uuid.New(),
		ProposerID: proposerID,
		ReceiverID: &receiver,
		Participants: DirectParticipants{
			ProposerListingID: proposerListingID,
			ReceiverListingID: receiverListingID,
		},
		Status:          valueobject.TradeStatusProposed,
		TradeCoinAmount: amount,
		Notes:           notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func NewChainTrade(proposerID uuid.UUID, chain []ChainLink, notes string) *Trade {
	now := time.Now().UTC()
	links := make([]ChainLink, len(chain))
	copy(links, chain)
	return &Trade{
		ID:           uuid.New(),
		ProposerID:   proposerID,
		Participants: ChainParticipants{Chain: links},
		Status:       valueobject.TradeStatusProposed,
		Notes:        notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (t *Trade) Type() valueobject.TradeType {
	return t.Participants.Type()
}

// Direct возвращает объявления прямой сделки.
func (t *Trade) Direct() (DirectParticipants, bool) {
	p, ok := t.Participants.(DirectParticipants)
	return p, ok
}

// Chain возвращает цепочку многосторонней сделки.
func (t *Trade) Chain() ([]ChainLink, bool) {
	p, ok := t.Participants.(ChainParticipants)
	if !ok {
		return nil, false
	}
	return p.Chain, true
}

func (t *Trade) IsProposer(userID uuid.UUID) bool {
	return t.ProposerID == userID
}

func (t *Trade) IsReceiver(userID uuid.UUID) bool {
	return t.ReceiverID != nil && *t.ReceiverID == userID
}

// IsParticipant учитывает и участников цепочки.
func (t *Trade) IsParticipant(userID uuid.UUID) bool {
	if t.IsProposer(userID) || t.IsReceiver(userID) {
		return true
	}
	if chain, ok := t.Chain(); ok {
		for _, link := range chain {
			if link.UserID == userID {
				return true
			}
		}
	}
	return false
}

// ParticipantIDs возвращает уникальных участников сделки.
func (t *Trade) ParticipantIDs() []uuid.UUID {
	seen := map[uuid.UUID]struct{}{t.ProposerID: {}}
	ids := []uuid.UUID{t.ProposerID}
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if t.ReceiverID != nil {
		add(*t.ReceiverID)
	}
	if chain, ok := t.Chain(); ok {
		for _, link := range chain {
			add(link.UserID)
		}
	}
	return ids
}

func (t *Trade) Accept(actorID uuid.UUID, details AcceptDetails, now time.Time) error {
	if err := t.requireDirect(); err != nil {
		return err
	}
	if !t.IsReceiver(actorID) {
		return apperror.New(apperror.ErrCodeForbidden, "принять сделку может только получатель")
	}
	if err := validation.ValidateMeetupLocation(details.MeetupLocation); err != nil {
		return invalid(err)
	}
	if err := t.transition(valueobject.TradeStatusAccepted); err != nil {
		return err
	}

	t.MeetupLocation = details.MeetupLocation
	t.MeetupTime = details.MeetupTime
	t.IsEscrow = details.IsEscrow
	if details.IsEscrow {
		release := now.Add(details.EscrowPeriod)
		t.EscrowReleaseDate = &release
	}
	t.UpdatedAt = now
	return nil
}

func (t *Trade) Reject(actorID uuid.UUID, reason string, now time.Time) error {
	if !t.IsProposer(actorID) && !t.IsReceiver(actorID) {
		return apperror.New(apperror.ErrCodeForbidden, "отклонить сделку может только её участник")
	}
	if err := validation.ValidateRejectionReason(reason); err != nil {
		return invalid(err)
	}
	if err := t.transition(valueobject.TradeStatusRejected); err != nil {
		return err
	}

	t.appendNote(fmt.Sprintf("Rejection reason: %s", reason))
	t.UpdatedAt = now
	return nil
}

func (t *Trade) Cancel(actorID uuid.UUID, now time.Time) error {
	if !t.IsProposer(actorID) {
		return apperror.New(apperror.ErrCodeForbidden, "отменить сделку может только инициатор")
	}
	if err := t.transition(valueobject.TradeStatusCancelled); err != nil {
		return err
	}
	t.UpdatedAt = now
	return nil
}

func (t *Trade) Complete(actorID uuid.UUID, now time.Time) error {
	if err := t.requireDirect(); err != nil {
		return err
	}
	if !t.IsProposer(actorID) && !t.IsReceiver(actorID) {
		return apperror.New(apperror.ErrCodeForbidden, "завершить сделку может только её участник")
	}
	if err := t.transition(valueobject.TradeStatusCompleted); err != nil {
		return err
	}
	t.UpdatedAt = now
	return nil
}

func (t *Trade) transition(to valueobject.TradeStatus) error {
	if !t.Status.CanTransitionTo(to) {
		return apperror.Newf(apperror.ErrCodeConflict, "нельзя перевести сделку из статуса %s в %s", t.Status, to)
	}
	t.Status = to
	return nil
}

func (t *Trade) requireDirect() error {
	if t.Type() != valueobject.TradeTypeDirect {
		return apperror.New(apperror.ErrCodeConflict, "для многосторонних сделок доступно только предложение")
	}
	return nil
}

func invalid(err error) error {
	return apperror.New(apperror.ErrCodeValidation, err.Error())
}

// appendNote дописывает строку, не затирая прежние заметки.
func (t *Trade) appendNote(line string) {
	if strings.TrimSpace(t.Notes) == "" {
		t.Notes = line
		return
	}
	t.Notes = t.Notes + "\n" + line
}

// Clone возвращает независимую копию сделки.
func (t *Trade) Clone() *Trade {
	c := *t
	if t.ReceiverID != nil {
		id := *t.ReceiverID
		c.ReceiverID = &id
	}
	if t.MeetupLocation != nil {
		loc := *t.MeetupLocation
		c.MeetupLocation = &loc
	}
	if t.MeetupTime != nil {
		mt := *t.MeetupTime
		c.MeetupTime = &mt
	}
	if t.EscrowReleaseDate != nil {
		rd := *t.EscrowReleaseDate
		c.EscrowReleaseDate = &rd
	}
	if chain, ok := t.Chain(); ok {
		links := make([]ChainLink, len(chain))
		copy(links, chain)
		c.Participants = ChainParticipants{Chain: links}
	}
	return &c
}
