package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Listing struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	Title          string
	IsAvailable    bool
	EstimatedValue decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewListing(ownerID uuid.UUID, title string, estimatedValue decimal.Decimal) *Listing {
	now := time.Now().UTC()
	return &Listing{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Title:          title,
		IsAvailable:    true,
		EstimatedValue: estimatedValue,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (l *Listing) IsOwnedBy(userID uuid.UUID) bool {
	return l.OwnerID == userID
}
