package trade

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/domain/repository"
	"github.com/ignatzorin/barter-backend/internal/metrics"
	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
	"github.com/ignatzorin/barter-backend/internal/validation"
)

type ProposeChainInput struct {
	ProposerID uuid.UUID
	Chain      []entity.ChainLink
	Notes      string
}

type ProposeChainUseCase struct {
	uow repository.UnitOfWork
}

func NewProposeChainUseCase(uow repository.UnitOfWork) *ProposeChainUseCase {
	return &ProposeChainUseCase{uow: uow}
}

// Execute создаёт многостороннюю сделку. Объявления не блокируются,
// дальнейший жизненный цикл для цепочек не поддерживается.
func (uc *ProposeChainUseCase) Execute(ctx context.Context, input ProposeChainInput) (*entity.Trade, error) {
	if err := validation.ValidateTradeNotes(input.Notes); err != nil {
		metrics.ObserveFailure("propose_chain", err)
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	var created *entity.Trade
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := validateChain(ctx, repos.Listings, input.ProposerID, input.Chain); err != nil {
			return err
		}
		t := entity.NewChainTrade(input.ProposerID, input.Chain, input.Notes)
		if err := repos.Trades.Create(ctx, t); err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		metrics.ObserveFailure("propose_chain", err)
		return nil, err
	}

	metrics.ObserveTransition(string(created.Status))
	return created, nil
}
