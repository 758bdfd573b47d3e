package reputation

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/domain/repository"
	"github.com/ignatzorin/barter-backend/internal/domain/valueobject"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Stats struct {
	BarterScore  decimal.Decimal
	TotalRatings int
	Distribution valueobject.RatingDistribution
	Badges       []valueobject.Badge
}

type GetStatsUseCase struct {
	userRepo   repository.UserRepository
	ratingRepo repository.RatingRepository
}

func NewGetStatsUseCase(userRepo repository.UserRepository, ratingRepo repository.RatingRepository) *GetStatsUseCase {
	return &GetStatsUseCase{userRepo: userRepo, ratingRepo: ratingRepo}
}

// Execute возвращает рейтинг пользователя и распределение оценок 1..5.
func (uc *GetStatsUseCase) Execute(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	user, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts, err := uc.ratingRepo.Distribution(ctx, userID)
	if err != nil {
		return nil, err
	}
	distribution := valueobject.NewRatingDistribution()
	for score, n := range counts {
		distribution[score] += n
	}

	return &Stats{
		BarterScore:  user.BarterScore,
		TotalRatings: distribution.Total(),
		Distribution: distribution,
		Badges:       append([]valueobject.Badge(nil), user.Badges...),
	}, nil
}

type ListUserRatingsUseCase struct {
	userRepo   repository.UserRepository
	ratingRepo repository.RatingRepository
}

func NewListUserRatingsUseCase(userRepo repository.UserRepository, ratingRepo repository.RatingRepository) *ListUserRatingsUseCase {
	return &ListUserRatingsUseCase{userRepo: userRepo, ratingRepo: ratingRepo}
}

func (uc *ListUserRatingsUseCase) Execute(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Rating, int, error) {
	if _, err := uc.userRepo.FindByID(ctx, userID); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return uc.ratingRepo.ListByRatedUser(ctx, userID, limit, offset)
}
