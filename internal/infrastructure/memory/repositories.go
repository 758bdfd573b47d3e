package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/domain/repository"
	"github.com/ignatzorin/barter-backend/internal/domain/valueobject"
	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
)

type tradeRepository struct {
	access access
}

func (r *tradeRepository) Create(ctx context.Context, trade *entity.Trade) error {
	return r.access(true, func(st *state) error {
		if _, ok := st.trades[trade.ID]; ok {
			return apperror.New(apperror.ErrCodeConflict, "сделка уже существует")
		}
		st.trades[trade.ID] = trade.Clone()
		return nil
	})
}

func (r *tradeRepository) Update(ctx context.Context, trade *entity.Trade) error {
	return r.access(true, func(st *state) error {
		if _, ok := st.trades[trade.ID]; !ok {
			return apperror.ErrTradeNotFound
		}
		st.trades[trade.ID] = trade.Clone()
		return nil
	})
}

func (r *tradeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Trade, error) {
	var found *entity.Trade
	err := r.access(false, func(st *state) error {
		t, ok := st.trades[id]
		if !ok {
			return apperror.ErrTradeNotFound
		}
		found = t.Clone()
		return nil
	})
	return found, err
}

func (r *tradeRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Trade, error) {
	return r.FindByID(ctx, id)
}

func (r *tradeRepository) ListByParticipant(ctx context.Context, userID uuid.UUID, filter repository.TradeFilter) ([]*entity.Trade, int, error) {
	var matched []*entity.Trade
	err := r.access(false, func(st *state) error {
		for _, t := range st.trades {
			if !t.IsParticipant(userID) {
				continue
			}
			if filter.Status != nil && t.Status != *filter.Status {
				continue
			}
			matched = append(matched, t.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, filter.Limit, filter.Offset), len(matched), nil
}

type listingRepository struct {
	access access
}

func (r *listingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	return r.access(true, func(st *state) error {
		c := *listing
		st.listings[listing.ID] = &c
		return nil
	})
}

func (r *listingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	var found *entity.Listing
	err := r.access(false, func(st *state) error {
		l, ok := st.listings[id]
		if !ok {
			return apperror.ErrListingNotFound
		}
		c := *l
		found = &c
		return nil
	})
	return found, err
}

func (r *listingRepository) SetAvailability(ctx context.Context, ids []uuid.UUID, available bool) (int, error) {
	changed := 0
	err := r.access(true, func(st *state) error {
		for _, id := range ids {
			l, ok := st.listings[id]
			if !ok || l.IsAvailable == available {
				continue
			}
			c := *l
			c.IsAvailable = available
			st.listings[id] = &c
			changed++
		}
		return nil
	})
	return changed, err
}

type userRepository struct {
	access access
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.access(true, func(st *state) error {
		st.users[user.ID] = user.Clone()
		return nil
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var found *entity.User
	err := r.access(false, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return apperror.ErrUserNotFound
		}
		found = u.Clone()
		return nil
	})
	return found, err
}

func (r *userRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.FindByID(ctx, id)
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.access(true, func(st *state) error {
		if _, ok := st.users[user.ID]; !ok {
			return apperror.ErrUserNotFound
		}
		st.users[user.ID] = user.Clone()
		return nil
	})
}

type ratingRepository struct {
	access access
}

func (r *ratingRepository) Create(ctx context.Context, rating *entity.Rating) error {
	return r.access(true, func(st *state) error {
		if rating.TradeID != nil {
			key := ratingKey{raterID: rating.RaterID, ratedUserID: rating.RatedUserID, tradeID: *rating.TradeID}
			if _, ok := st.ratingKeys[key]; ok {
				return apperror.ErrDuplicateRating
			}
			st.ratingKeys[key] = struct{}{}
		}
		c := *rating
		st.ratings = append(st.ratings, &c)
		return nil
	})
}

func (r *ratingRepository) Distribution(ctx context.Context, ratedUserID uuid.UUID) (valueobject.RatingDistribution, error) {
	d := valueobject.NewRatingDistribution()
	err := r.access(false, func(st *state) error {
		for _, rating := range st.ratings {
			if rating.RatedUserID == ratedUserID {
				d[rating.Score]++
			}
		}
		return nil
	})
	return d, err
}

func (r *ratingRepository) ListByRatedUser(ctx context.Context, ratedUserID uuid.UUID, limit, offset int) ([]*entity.Rating, int, error) {
	var matched []*entity.Rating
	err := r.access(false, func(st *state) error {
		for i := len(st.ratings) - 1; i >= 0; i-- {
			if st.ratings[i].RatedUserID == ratedUserID {
				c := *st.ratings[i]
				matched = append(matched, &c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return paginate(matched, limit, offset), len(matched), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
