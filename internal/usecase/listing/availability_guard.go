package listing

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/barter-backend/internal/domain/repository"
	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
)

// AvailabilityGuard атомарно блокирует и освобождает набор объявлений.
type AvailabilityGuard struct {
	uow repository.UnitOfWork
}

func NewAvailabilityGuard(uow repository.UnitOfWork) *AvailabilityGuard {
	return &AvailabilityGuard{uow: uow}
}

// Lock снимает объявления с обмена в отдельной транзакции.
func (g *AvailabilityGuard) Lock(ctx context.Context, listingIDs []uuid.UUID) error {
	return g.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return g.LockWithin(ctx, repos.Listings, listingIDs)
	})
}

// Unlock возвращает объявления в обмен в отдельной транзакции.
func (g *AvailabilityGuard) Unlock(ctx context.Context, listingIDs []uuid.UUID) error {
	return g.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return g.UnlockWithin(ctx, repos.Listings, listingIDs)
	})
}

// LockWithin работает внутри транзакции вызывающего: при ошибке
// вызывающий обязан откатить транзакцию целиком.
func (g *AvailabilityGuard) LockWithin(ctx context.Context, listings repository.ListingRepository, listingIDs []uuid.UUID) error {
	return setAvailability(ctx, listings, listingIDs, false)
}

func (g *AvailabilityGuard) UnlockWithin(ctx context.Context, listings repository.ListingRepository, listingIDs []uuid.UUID) error {
	return setAvailability(ctx, listings, listingIDs, true)
}

func setAvailability(ctx context.Context, listings repository.ListingRepository, listingIDs []uuid.UUID, available bool) error {
	ids := uniqueIDs(listingIDs)
	if len(ids) == 0 {
		return apperror.New(apperror.ErrCodeValidation, "не указаны объявления")
	}

	for _, id := range ids {
		l, err := listings.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if l.IsAvailable == available {
			if available {
				return apperror.Newf(apperror.ErrCodeConflict, "объявление %s уже доступно", id)
			}
			return apperror.ErrListingUnavailable
		}
	}

	changed, err := listings.SetAvailability(ctx, ids, available)
	if err != nil {
		return err
	}
	// строку могла изменить конкурирующая транзакция между чтением и записью
	if changed != len(ids) {
		if available {
			return apperror.New(apperror.ErrCodeConflict, "объявления уже доступны")
		}
		return apperror.ErrListingUnavailable
	}
	return nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	result := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
