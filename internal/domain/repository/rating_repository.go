package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/domain/valueobject"
)

type RatingRepository interface {
	// Create возвращает apperror.ErrDuplicateRating при повторной оценке
	// той же сделки тем же пользователем.
	Create(ctx context.Context, rating *entity.Rating) error
	Distribution(ctx context.Context, ratedUserID uuid.UUID) (valueobject.RatingDistribution, error)
	ListByRatedUser(ctx context.Context, ratedUserID uuid.UUID, limit, offset int) ([]*entity.Rating, int, error)
}
