package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/domain/valueobject"
)

type TradeFilter struct {
	Status *valueobject.TradeStatus
	Limit  int
	Offset int
}

type TradeRepository interface {
	Create(ctx context.Context, trade *entity.Trade) error
	Update(ctx context.Context, trade *entity.Trade) error
	// FindByID возвращает apperror.ErrTradeNotFound, если сделки нет.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Trade, error)
	// FindByIDForUpdate блокирует строку сделки до конца транзакции.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Trade, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID, filter TradeFilter) ([]*entity.Trade, int, error)
}
