package trade

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/domain/repository"
	"github.com/ignatzorin/barter-backend/internal/domain/valueobject"
	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type GetTradeUseCase struct {
	tradeRepo repository.TradeRepository
}

func NewGetTradeUseCase(tradeRepo repository.TradeRepository) *GetTradeUseCase {
	return &GetTradeUseCase{tradeRepo: tradeRepo}
}

// Execute возвращает сделку только её участникам.
func (uc *GetTradeUseCase) Execute(ctx context.Context, tradeID, userID uuid.UUID) (*entity.Trade, error) {
	t, err := uc.tradeRepo.FindByID(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if !t.IsParticipant(userID) {
		return nil, apperror.ErrForbidden
	}
	return t, nil
}

type ListUserTradesInput struct {
	UserID uuid.UUID
	Status string
	Limit  int
	Offset int
}

type ListUserTradesUseCase struct {
	tradeRepo repository.TradeRepository
}

func NewListUserTradesUseCase(tradeRepo repository.TradeRepository) *ListUserTradesUseCase {
	return &ListUserTradesUseCase{tradeRepo: tradeRepo}
}

func (uc *ListUserTradesUseCase) Execute(ctx context.Context, input ListUserTradesInput) ([]*entity.Trade, int, error) {
	filter := repository.TradeFilter{
		Limit:  normalizeLimit(input.Limit),
		Offset: input.Offset,
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if input.Status != "" {
		status, err := valueobject.NewTradeStatus(input.Status)
		if err != nil {
			return nil, 0, err
		}
		filter.Status = &status
	}

	return uc.tradeRepo.ListByParticipant(ctx, input.UserID, filter)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
