package trade

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/domain/repository"
	"github.com/ignatzorin/barter-backend/internal/metrics"
	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
)

type ProposeTradeInput struct {
	ProposerID        uuid.UUID
	ReceiverID        uuid.UUID
	ProposerListingID uuid.UUID
	ReceiverListingID uuid.UUID
	TradeCoinAmount   int64
	Notes             string
}

type ProposeTradeUseCase struct {
	uow repository.UnitOfWork
}

func NewProposeTradeUseCase(uow repository.UnitOfWork) *ProposeTradeUseCase {
	return &ProposeTradeUseCase{uow: uow}
}

// Execute создаёт прямую сделку. Объявления не блокируются: на одно
// объявление может быть несколько предложений до принятия одного из них.
func (uc *ProposeTradeUseCase) Execute(ctx context.Context, input ProposeTradeInput) (*entity.Trade, error) {
	trade, err := entity.NewDirectTrade(
		input.ProposerID,
		input.ReceiverID,
		input.ProposerListingID,
		input.ReceiverListingID,
		input.TradeCoinAmount,
		input.Notes,
	)
	if err != nil {
		metrics.ObserveFailure("propose", err)
		return nil, err
	}

	err = uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Users.FindByID(ctx, input.ReceiverID); err != nil {
			return err
		}
		if err := checkOfferedListing(ctx, repos.Listings, input.ProposerListingID, input.ProposerID); err != nil {
			return err
		}
		if err := checkOfferedListing(ctx, repos.Listings, input.ReceiverListingID, input.ReceiverID); err != nil {
			return err
		}
		return repos.Trades.Create(ctx, trade)
	})
	if err != nil {
		metrics.ObserveFailure("propose", err)
		return nil, err
	}

	metrics.ObserveTransition(string(trade.Status))
	return trade, nil
}

// checkOfferedListing проверяет, что объявление существует, принадлежит
// ownerID и доступно для обмена.
func checkOfferedListing(ctx context.Context, listings repository.ListingRepository, listingID, ownerID uuid.UUID) error {
	l, err := listings.FindByID(ctx, listingID)
	if err != nil {
		return err
	}
	if !l.IsOwnedBy(ownerID) {
		return apperror.Newf(apperror.ErrCodeForbidden, "объявление %s не принадлежит пользователю %s", listingID, ownerID)
	}
	if !l.IsAvailable {
		return apperror.ErrListingUnavailable
	}
	return nil
}
