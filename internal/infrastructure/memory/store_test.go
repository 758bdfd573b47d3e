package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/domain/repository"
	"github.com/ignatzorin/barter-backend/internal/domain/valueobject"
	"github.com/ignatzorin/barter-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
)

func TestStore_DoRollsBackOnError(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	user := entity.NewUser("alice")
	require.NoError(t, store.Repositories().Users.Create(ctx, user))

	boom := errors.New("boom")
	err := store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		u, err := repos.Users.FindByIDForUpdate(ctx, user.ID)
		require.NoError(t, err)
		u.TradeCoins = 100
		require.NoError(t, repos.Users.Update(ctx, u))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := store.Repositories().Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.TradeCoins)
}

func TestStore_DoRollsBackOnPanic(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	listing := entity.NewListing(uuid.New(), "bike", decimal.NewFromInt(100))
	require.NoError(t, store.Repositories().Listings.Create(ctx, listing))

	assert.Panics(t, func() {
		_ = store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
			_, _ = repos.Listings.SetAvailability(ctx, []uuid.UUID{listing.ID}, false)
			panic("unexpected")
		})
	})

	stored, err := store.Repositories().Listings.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAvailable)

	// хранилище остаётся работоспособным после паники
	require.NoError(t, store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error { return nil }))
}

func TestStore_ReturnsCopies(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	user := entity.NewUser("bob")
	require.NoError(t, store.Repositories().Users.Create(ctx, user))

	u, err := store.Repositories().Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	u.TradeCoins = 42
	u.Badges = append(u.Badges, valueobject.BadgeTopRated)

	again, err := store.Repositories().Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), again.TradeCoins)
	assert.Empty(t, again.Badges)
}

func TestStore_RatingUniquenessPerTrade(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	rater, rated, tradeID := uuid.New(), uuid.New(), uuid.New()

	first, err := entity.NewRating(rater, rated, 5, nil, &tradeID)
	require.NoError(t, err)
	second, err := entity.NewRating(rater, rated, 3, nil, &tradeID)
	require.NoError(t, err)

	ratings := store.Repositories().Ratings
	require.NoError(t, ratings.Create(ctx, first))
	assert.ErrorIs(t, ratings.Create(ctx, second), apperror.ErrDuplicateRating)

	// оценки без сделки не ограничены
	for i := 0; i < 2; i++ {
		r, err := entity.NewRating(rater, rated, 4, nil, nil)
		require.NoError(t, err)
		require.NoError(t, ratings.Create(ctx, r))
	}

	d, err := ratings.Distribution(ctx, rated)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Total())
	assert.Equal(t, 0, d[1])
	assert.Equal(t, 2, d[4])
}

func TestStore_SetAvailabilityCountsOnlyChangedRows(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	a := entity.NewListing(uuid.New(), "a", decimal.Zero)
	b := entity.NewListing(uuid.New(), "b", decimal.Zero)
	b.IsAvailable = false
	listings := store.Repositories().Listings
	require.NoError(t, listings.Create(ctx, a))
	require.NoError(t, listings.Create(ctx, b))

	n, err := listings.SetAvailability(ctx, []uuid.UUID{a.ID, b.ID, uuid.New()}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_ListByParticipant(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	trades := store.Repositories().Trades

	for i := 0; i < 3; i++ {
		tr, err := entity.NewDirectTrade(alice, bob, uuid.New(), uuid.New(), 0, "")
		require.NoError(t, err)
		tr.CreatedAt = tr.CreatedAt.Add(time.Duration(i) * time.Minute)
		require.NoError(t, trades.Create(ctx, tr))
	}
	other, err := entity.NewDirectTrade(uuid.New(), uuid.New(), uuid.New(), uuid.New(), 0, "")
	require.NoError(t, err)
	require.NoError(t, trades.Create(ctx, other))

	page, total, err := trades.ListByParticipant(ctx, bob, repository.TradeFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))

	accepted := valueobject.TradeStatusAccepted
	page, total, err = trades.ListByParticipant(ctx, alice, repository.TradeFilter{Status: &accepted})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, page)
}

func TestStore_ConcurrentTransactionsAreSerialized(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	user := entity.NewUser("counter")
	require.NoError(t, store.Repositories().Users.Create(ctx, user))

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
				u, err := repos.Users.FindByIDForUpdate(ctx, user.ID)
				if err != nil {
					return err
				}
				u.Credit(1)
				return repos.Users.Update(ctx, u)
			})
		}()
	}
	wg.Wait()

	stored, err := store.Repositories().Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(workers), stored.TradeCoins)
}

func TestStore_DoHonoursCancelledContext(t *testing.T) {
	store := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
