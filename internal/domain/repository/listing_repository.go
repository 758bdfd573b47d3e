package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error)
	// SetAvailability переключает флаг только у объявлений, где он ещё не равен available,
	// и возвращает число изменённых строк.
	SetAvailability(ctx context.Context, ids []uuid.UUID, available bool) (int, error)
}
