package trade

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/domain/repository"
	"github.com/ignatzorin/barter-backend/internal/metrics"
	"github.com/ignatzorin/barter-backend/internal/usecase/listing"
)

const DefaultEscrowPeriod = 7 * 24 * time.Hour

type AcceptTradeInput struct {
	TradeID        uuid.UUID
	ActorID        uuid.UUID
	MeetupLocation *string
	MeetupTime     *time.Time
	IsEscrow       bool
}

type AcceptTradeUseCase struct {
	uow          repository.UnitOfWork
	guard        *listing.AvailabilityGuard
	notifier     Notifier
	escrowPeriod time.Duration
}

func NewAcceptTradeUseCase(uow repository.UnitOfWork, guard *listing.AvailabilityGuard, notifier Notifier, escrowPeriod time.Duration) *AcceptTradeUseCase {
	if escrowPeriod <= 0 {
		escrowPeriod = DefaultEscrowPeriod
	}
	return &AcceptTradeUseCase{
		uow:          uow,
		guard:        guard,
		notifier:     notifier,
		escrowPeriod: escrowPeriod,
	}
}

// Execute принимает сделку и блокирует оба объявления в той же транзакции.
func (uc *AcceptTradeUseCase) Execute(ctx context.Context, input AcceptTradeInput) (*entity.Trade, error) {
	var accepted *entity.Trade
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		t, err := repos.Trades.FindByIDForUpdate(ctx, input.TradeID)
		if err != nil {
			return err
		}

		details := entity.AcceptDetails{
			MeetupLocation: input.MeetupLocation,
			MeetupTime:     input.MeetupTime,
			IsEscrow:       input.IsEscrow,
			EscrowPeriod:   uc.escrowPeriod,
		}
		if err := t.Accept(input.ActorID, details, time.Now().UTC()); err != nil {
			return err
		}

		if err := uc.guard.LockWithin(ctx, repos.Listings, t.Participants.ListingIDs()); err != nil {
			return err
		}
		if err := repos.Trades.Update(ctx, t); err != nil {
			return err
		}
		accepted = t
		return nil
	})
	if err != nil {
		metrics.ObserveFailure("accept", err)
		return nil, err
	}

	metrics.ObserveTransition(string(accepted.Status))
	notify(ctx, uc.notifier, EventTradeAccepted, accepted)
	return accepted, nil
}

type RejectTradeInput struct {
	TradeID uuid.UUID
	ActorID uuid.UUID
	Reason  string
}

type RejectTradeUseCase struct {
	uow repository.UnitOfWork
}

func NewRejectTradeUseCase(uow repository.UnitOfWork) *RejectTradeUseCase {
	return &RejectTradeUseCase{uow: uow}
}

func (uc *RejectTradeUseCase) Execute(ctx context.Context, input RejectTradeInput) (*entity.Trade, error) {
	t, err := updateTrade(ctx, uc.uow, input.TradeID, func(t *entity.Trade) error {
		return t.Reject(input.ActorID, input.Reason, time.Now().UTC())
	})
	if err != nil {
		metrics.ObserveFailure("reject", err)
		return nil, err
	}
	metrics.ObserveTransition(string(t.Status))
	return t, nil
}

type CancelTradeUseCase struct {
	uow repository.UnitOfWork
}

func NewCancelTradeUseCase(uow repository.UnitOfWork) *CancelTradeUseCase {
	return &CancelTradeUseCase{uow: uow}
}

func (uc *CancelTradeUseCase) Execute(ctx context.Context, tradeID, actorID uuid.UUID) (*entity.Trade, error) {
	t, err := updateTrade(ctx, uc.uow, tradeID, func(t *entity.Trade) error {
		return t.Cancel(actorID, time.Now().UTC())
	})
	if err != nil {
		metrics.ObserveFailure("cancel", err)
		return nil, err
	}
	metrics.ObserveTransition(string(t.Status))
	return t, nil
}

type CompleteTradeUseCase struct {
	uow      repository.UnitOfWork
	notifier Notifier
}

func NewCompleteTradeUseCase(uow repository.UnitOfWork, notifier Notifier) *CompleteTradeUseCase {
	return &CompleteTradeUseCase{uow: uow, notifier: notifier}
}

// Execute завершает сделку: переводит монеты от инициатора получателю и
// начисляет обоим бонус к рейтингу. Объявления остаются заблокированными.
func (uc *CompleteTradeUseCase) Execute(ctx context.Context, tradeID, actorID uuid.UUID) (*entity.Trade, error) {
	var completed *entity.Trade
	err := uc.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		t, err := repos.Trades.FindByIDForUpdate(ctx, tradeID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := t.Complete(actorID, now); err != nil {
			return err
		}

		users, err := lockUsers(ctx, repos.Users, t.ProposerID, *t.ReceiverID)
		if err != nil {
			return err
		}
		proposer, receiver := users[t.ProposerID], users[*t.ReceiverID]

		if !t.TradeCoinAmount.IsZero() {
			if err := proposer.Debit(t.TradeCoinAmount); err != nil {
				return err
			}
			receiver.Credit(t.TradeCoinAmount)
		}
		proposer.BumpScoreForCompletion(now)
		receiver.BumpScoreForCompletion(now)

		if err := repos.Users.Update(ctx, proposer); err != nil {
			return err
		}
		if err := repos.Users.Update(ctx, receiver); err != nil {
			return err
		}
		if err := repos.Trades.Update(ctx, t); err != nil {
			return err
		}
		completed = t
		return nil
	})
	if err != nil {
		metrics.ObserveFailure("complete", err)
		return nil, err
	}

	metrics.ObserveTransition(string(completed.Status))
	metrics.CoinsTransferred.Add(float64(completed.TradeCoinAmount.Int64()))
	notify(ctx, uc.notifier, EventTradeCompleted, completed)
	return completed, nil
}

// updateTrade читает сделку с блокировкой, меняет и сохраняет её в одной транзакции.
func updateTrade(ctx context.Context, uow repository.UnitOfWork, tradeID uuid.UUID, mutate func(t *entity.Trade) error) (*entity.Trade, error) {
	var updated *entity.Trade
	err := uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		t, err := repos.Trades.FindByIDForUpdate(ctx, tradeID)
		if err != nil {
			return err
		}
		if err := mutate(t); err != nil {
			return err
		}
		if err := repos.Trades.Update(ctx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	return updated, err
}

// lockUsers блокирует пользователей в порядке id, чтобы параллельные
// транзакции не взаимоблокировались.
func lockUsers(ctx context.Context, users repository.UserRepository, ids ...uuid.UUID) (map[uuid.UUID]*entity.User, error) {
	ordered := append([]uuid.UUID(nil), ids...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].String() < ordered[j].String()
	})

	result := make(map[uuid.UUID]*entity.User, len(ordered))
	for _, id := range ordered {
		if _, ok := result[id]; ok {
			continue
		}
		u, err := users.FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		result[id] = u
	}
	return result, nil
}
