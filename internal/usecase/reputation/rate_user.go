package reputation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/domain/repository"
	"github.com/ignatzorin/barter-backend/internal/domain/valueobject"
	"github.com/ignatzorin/barter-backend/internal/metrics"
	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
)

type RateUserInput struct {
	RaterID     uuid.UUID
	RatedUserID uuid.UUID
	Score       int
	Comment     *string
	TradeID     *uuid.UUID
}

type RateUserUseCase struct {
	uow repository.UnitOfWork
}

func NewRateUserUseCase(uow repository.UnitOfWork) *RateUserUseCase {
	return &RateUserUseCase{uow: uow}
}

// Execute сохраняет оценку и пересчитывает рейтинг и значки получателя
// в одной транзакции. Повторная оценка той же сделки отклоняется
// ограничением уникальности хранилища.
func (uc *RateUserUseCase) Execute(ctx context.Context, input RateUserInput) (*entity.Rating, error) {
	rating, err := entity.NewRating(input.RaterID, input.RatedUserID, input.Score, input.Comment, input.TradeID)
	if err != nil {
		metrics.ObserveFailure("rate", err)
		return nil, err
	}

	err = uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		rated, err := repos.Users.FindByIDForUpdate(ctx, input.RatedUserID)
		if err != nil {
			return err
		}
		if _, err := repos.Users.FindByID(ctx, input.RaterID); err != nil {
			return err
		}

		if input.TradeID != nil {
			if err := checkRatedTrade(ctx, repos.Trades, *input.TradeID, input.RaterID, input.RatedUserID); err != nil {
				return err
			}
		}

		if err := repos.Ratings.Create(ctx, rating); err != nil {
			return err
		}
		distribution, err := repos.Ratings.Distribution(ctx, input.RatedUserID)
		if err != nil {
			return err
		}
		rated.ApplyRatings(distribution, time.Now().UTC())
		return repos.Users.Update(ctx, rated)
	})
	if err != nil {
		metrics.ObserveFailure("rate", err)
		return nil, err
	}

	metrics.RatingsCreated.Inc()
	return rating, nil
}

// checkRatedTrade проверяет, что оценка относится к завершённой сделке
// между этими двумя пользователями.
func checkRatedTrade(ctx context.Context, trades repository.TradeRepository, tradeID, raterID, ratedID uuid.UUID) error {
	t, err := trades.FindByID(ctx, tradeID)
	if err != nil {
		return err
	}
	for _, id := range []uuid.UUID{raterID, ratedID} {
		if !t.IsProposer(id) && !t.IsReceiver(id) {
			return apperror.New(apperror.ErrCodeForbidden, "оценивать можно только участника своей сделки")
		}
	}
	if t.Status != valueobject.TradeStatusCompleted {
		return apperror.New(apperror.ErrCodeConflict, "оценить можно только завершённую сделку")
	}
	return nil
}
