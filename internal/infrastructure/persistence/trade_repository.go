package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/domain/repository"
	"github.com/ignatzorin/barter-backend/internal/domain/valueobject"
	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
)

const tradeColumns = `id, proposer_id, receiver_id, trade_type, proposer_listing_id, receiver_listing_id,
	trade_chain, status, trade_coin_amount, meetup_location, meetup_time, is_escrow,
	escrow_release_date, notes, created_at, updated_at`

type tradeRow struct {
	ID                uuid.UUID          `db:"id"`
	ProposerID        uuid.UUID          `db:"proposer_id"`
	ReceiverID        uuid.NullUUID      `db:"receiver_id"`
	TradeType         string             `db:"trade_type"`
	ProposerListingID uuid.NullUUID      `db:"proposer_listing_id"`
	ReceiverListingID uuid.NullUUID      `db:"receiver_listing_id"`
	TradeChain        types.NullJSONText `db:"trade_chain"`
	Status            string             `db:"status"`
	TradeCoinAmount   int64              `db:"trade_coin_amount"`
	MeetupLocation    sql.NullString     `db:"meetup_location"`
	MeetupTime        sql.NullTime       `db:"meetup_time"`
	IsEscrow          bool               `db:"is_escrow"`
	EscrowReleaseDate sql.NullTime       `db:"escrow_release_date"`
	Notes             string             `db:"notes"`
	CreatedAt         time.Time          `db:"created_at"`
	UpdatedAt         time.Time          `db:"updated_at"`
}

type chainLinkJSON struct {
	UserID             uuid.UUID `json:"user_id"`
	ListingID          uuid.UUID `json:"listing_id"`
	DeclaredReceiverID uuid.UUID `json:"declared_receiver_id"`
}

func newTradeRow(t *entity.Trade) (*tradeRow, error) {
	row := &tradeRow{
		ID:              t.ID,
		ProposerID:      t.ProposerID,
		TradeType:       string(t.Type()),
		Status:          string(t.Status),
		TradeCoinAmount: t.TradeCoinAmount.Int64(),
		IsEscrow:        t.IsEscrow,
		Notes:           t.Notes,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	if t.ReceiverID != nil {
		row.ReceiverID = uuid.NullUUID{UUID: *t.ReceiverID, Valid: true}
	}
	if t.MeetupLocation != nil {
		row.MeetupLocation = sql.NullString{String: *t.MeetupLocation, Valid: true}
	}
	if t.MeetupTime != nil {
		row.MeetupTime = sql.NullTime{Time: *t.MeetupTime, Valid: true}
	}
	if t.EscrowReleaseDate != nil {
		row.EscrowReleaseDate = sql.NullTime{Time: *t.EscrowReleaseDate, Valid: true}
	}

	switch p := t.Participants.(type) {
	case entity.DirectParticipants:
		row.ProposerListingID = uuid.NullUUID{UUID: p.ProposerListingID, Valid: true}
		row.ReceiverListingID = uuid.NullUUID{UUID: p.ReceiverListingID, Valid: true}
	case entity.ChainParticipants:
		links := make([]chainLinkJSON, 0, len(p.Chain))
		for _, l := range p.Chain {
			links = append(links, chainLinkJSON(l))
		}
		raw, err := json.Marshal(links)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сериализовать цепочку")
		}
		row.TradeChain = types.NullJSONText{JSONText: raw, Valid: true}
	}
	return row, nil
}

func (r *tradeRow) toEntity() (*entity.Trade, error) {
	t := &entity.Trade{
		ID:              r.ID,
		ProposerID:      r.ProposerID,
		Status:          valueobject.TradeStatus(r.Status),
		TradeCoinAmount: valueobject.Coins(r.TradeCoinAmount),
		IsEscrow:        r.IsEscrow,
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.ReceiverID.Valid {
		id := r.ReceiverID.UUID
		t.ReceiverID = &id
	}
	if r.MeetupLocation.Valid {
		loc := r.MeetupLocation.String
		t.MeetupLocation = &loc
	}
	if r.MeetupTime.Valid {
		mt := r.MeetupTime.Time
		t.MeetupTime = &mt
	}
	if r.EscrowReleaseDate.Valid {
		rd := r.EscrowReleaseDate.Time
		t.EscrowReleaseDate = &rd
	}

	if valueobject.TradeType(r.TradeType) == valueobject.TradeTypeMultiParty {
		var links []chainLinkJSON
		if r.TradeChain.Valid {
			if err := r.TradeChain.Unmarshal(&links); err != nil {
				return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "повреждена цепочка сделки")
			}
		}
		chain := make([]entity.ChainLink, 0, len(links))
		for _, l := range links {
			chain = append(chain, entity.ChainLink(l))
		}
		t.Participants = entity.ChainParticipants{Chain: chain}
		return t, nil
	}

	t.Participants = entity.DirectParticipants{
		ProposerListingID: r.ProposerListingID.UUID,
		ReceiverListingID: r.ReceiverListingID.UUID,
	}
	return t, nil
}

type TradeRepository struct {
	db sqlx.ExtContext
}

func NewTradeRepository(db sqlx.ExtContext) *TradeRepository {
	return &TradeRepository{db: db}
}

func (r *TradeRepository) Create(ctx context.Context, t *entity.Trade) error {
	row, err := newTradeRow(t)
	if err != nil {
		return err
	}
	query := `INSERT INTO trades (` + tradeColumns + `) VALUES (
		:id, :proposer_id, :receiver_id, :trade_type, :proposer_listing_id, :receiver_listing_id,
		:trade_chain, :status, :trade_coin_amount, :meetup_location, :meetup_time, :is_escrow,
		:escrow_release_date, :notes, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, row); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать сделку")
	}
	return nil
}

func (r *TradeRepository) Update(ctx context.Context, t *entity.Trade) error {
	row, err := newTradeRow(t)
	if err != nil {
		return err
	}
	query := `
		UPDATE trades
		SET status = :status, meetup_location = :meetup_location, meetup_time = :meetup_time,
		    is_escrow = :is_escrow, escrow_release_date = :escrow_release_date,
		    notes = :notes, updated_at = :updated_at
		WHERE id = :id
	`
	result, err := sqlx.NamedExecContext(ctx, r.db, query, row)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить сделку")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат обновления")
	}
	if rows == 0 {
		return apperror.ErrTradeNotFound
	}
	return nil
}

func (r *TradeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Trade, error) {
	return r.findOne(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = $1`, id)
}

func (r *TradeRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Trade, error) {
	return r.findOne(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = $1 FOR UPDATE`, id)
}

func (r *TradeRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Trade, error) {
	var row tradeRow
	if err := getOne(ctx, r.db, &row, apperror.ErrTradeNotFound, query, id); err != nil {
		return nil, err
	}
	return row.toEntity()
}

// ListByParticipant ищет сделки, где пользователь инициатор, получатель
// или звено цепочки. Новые сделки идут первыми.
func (r *TradeRepository) ListByParticipant(ctx context.Context, userID uuid.UUID, filter repository.TradeFilter) ([]*entity.Trade, int, error) {
	var status sql.NullString
	if filter.Status != nil {
		status = sql.NullString{String: string(*filter.Status), Valid: true}
	}
	where := `
		WHERE (proposer_id = $1 OR receiver_id = $1
		       OR trade_chain @> jsonb_build_array(jsonb_build_object('user_id', $1::text)))
		  AND ($2::text IS NULL OR status = $2)
	`

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM trades`+where, userID, status); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать сделки")
	}

	var rows []tradeRow
	query := `SELECT ` + tradeColumns + ` FROM trades` + where + ` ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, userID, status, filter.Limit, filter.Offset); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить сделки")
	}

	trades := make([]*entity.Trade, 0, len(rows))
	for i := range rows {
		t, err := rows[i].toEntity()
		if err != nil {
			return nil, 0, err
		}
		trades = append(trades, t)
	}
	return trades, total, nil
}
