package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
)

type ProposeTradeRequest struct {
	ReceiverID        uuid.UUID `json:"receiver_id" binding:"required"`
	ProposerListingID uuid.UUID `json:"proposer_listing_id" binding:"required"`
	ReceiverListingID uuid.UUID `json:"receiver_listing_id" binding:"required"`
	TradeCoinAmount   int64     `json:"trade_coin_amount"`
	Notes             string    `json:"notes" binding:"max=2000"`
}

type ChainLinkDTO struct {
	UserID             uuid.UUID `json:"user_id" binding:"required"`
	ListingID          uuid.UUID `json:"listing_id" binding:"required"`
	DeclaredReceiverID uuid.UUID `json:"declared_receiver_id" binding:"required"`
}

type ProposeChainRequest struct {
	Chain []ChainLinkDTO `json:"chain" binding:"dive"`
	Notes string         `json:"notes" binding:"max=2000"`
}

func (r ProposeChainRequest) Links() []entity.ChainLink {
	links := make([]entity.ChainLink, 0, len(r.Chain))
	for _, l := range r.Chain {
		links = append(links, entity.ChainLink(l))
	}
	return links
}

type AcceptTradeRequest struct {
	MeetupLocation *string    `json:"meetup_location" binding:"omitempty,max=500"`
	MeetupTime     *time.Time `json:"meetup_time"`
	IsEscrow       bool       `json:"is_escrow"`
}

type RejectTradeRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

type TradeResponse struct {
	ID                uuid.UUID      `json:"id"`
	TradeType         string         `json:"trade_type"`
	ProposerID        uuid.UUID      `json:"proposer_id"`
	ReceiverID        *uuid.UUID     `json:"receiver_id"`
	ProposerListingID *uuid.UUID     `json:"proposer_listing_id,omitempty"`
	ReceiverListingID *uuid.UUID     `json:"receiver_listing_id,omitempty"`
	TradeChain        []ChainLinkDTO `json:"trade_chain,omitempty"`
	Status            string         `json:"status"`
	TradeCoinAmount   int64          `json:"trade_coin_amount"`
	MeetupLocation    *string        `json:"meetup_location"`
	MeetupTime        *time.Time     `json:"meetup_time"`
	IsEscrow          bool           `json:"is_escrow"`
	EscrowReleaseDate *time.Time     `json:"escrow_release_date"`
	Notes             string         `json:"notes"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func ToTradeResponse(t *entity.Trade) TradeResponse {
	resp := TradeResponse{
		ID:                t.ID,
		TradeType:         string(t.Type()),
		ProposerID:        t.ProposerID,
		ReceiverID:        t.ReceiverID,
		Status:            string(t.Status),
		TradeCoinAmount:   t.TradeCoinAmount.Int64(),
		MeetupLocation:    t.MeetupLocation,
		MeetupTime:        t.MeetupTime,
		IsEscrow:          t.IsEscrow,
		EscrowReleaseDate: t.EscrowReleaseDate,
		Notes:             t.Notes,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}

	if direct, ok := t.Direct(); ok {
		pl, rl := direct.ProposerListingID, direct.ReceiverListingID
		resp.ProposerListingID = &pl
		resp.ReceiverListingID = &rl
	}
	if chain, ok := t.Chain(); ok {
		resp.TradeChain = make([]ChainLinkDTO, 0, len(chain))
		for _, l := range chain {
			resp.TradeChain = append(resp.TradeChain, ChainLinkDTO(l))
		}
	}
	return resp
}

func ToTradeResponses(trades []*entity.Trade) []TradeResponse {
	result := make([]TradeResponse, 0, len(trades))
	for _, t := range trades {
		result = append(result, ToTradeResponse(t))
	}
	return result
}

type ChainValidationResponse struct {
	Valid bool `json:"valid"`
}
