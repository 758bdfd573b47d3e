package reputation_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/domain/valueobject"
	"github.com/ignatzorin/barter-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
	"github.com/ignatzorin/barter-backend/internal/usecase/reputation"
)

type fixture struct {
	store *memory.Store
	alice *entity.User
	bob   *entity.User
}

func newFixture(t require.TestingT) *fixture {
	store := memory.NewStore()
	f := &fixture{store: store}
	f.alice = f.createUser(t, "alice")
	f.bob = f.createUser(t, "bob")
	return f
}

func (f *fixture) createUser(t require.TestingT, name string) *entity.User {
	u := entity.NewUser(name)
	require.NoError(t, f.store.Repositories().Users.Create(context.Background(), u))
	return u
}

func (f *fixture) user(t require.TestingT, id uuid.UUID) *entity.User {
	u, err := f.store.Repositories().Users.FindByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

// tradeBetween сохраняет сделку alice -> bob в заданном статусе.
func (f *fixture) tradeBetween(t *testing.T, status valueobject.TradeStatus) *entity.Trade {
	t.Helper()
	tr, err := entity.NewDirectTrade(f.alice.ID, f.bob.ID, uuid.New(), uuid.New(), 0, "")
	require.NoError(t, err)
	tr.Status = status
	require.NoError(t, f.store.Repositories().Trades.Create(context.Background(), tr))
	return tr
}

func (f *fixture) rate(ctx context.Context, rater, rated uuid.UUID, score int, tradeID *uuid.UUID) (*entity.Rating, error) {
	return reputation.NewRateUserUseCase(f.store).Execute(ctx, reputation.RateUserInput{
		RaterID:     rater,
		RatedUserID: rated,
		Score:       score,
		TradeID:     tradeID,
	})
}

func TestRateUser_CompletedTrade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.tradeBetween(t, valueobject.TradeStatusCompleted)
	comment := "  всё честно "

	rating, err := reputation.NewRateUserUseCase(f.store).Execute(ctx, reputation.RateUserInput{
		RaterID:     f.alice.ID,
		RatedUserID: f.bob.ID,
		Score:       5,
		Comment:     &comment,
		TradeID:     &tr.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, rating.Comment)
	assert.Equal(t, "всё честно", *rating.Comment)

	bob := f.user(t, f.bob.ID)
	assert.Equal(t, "5.00", bob.BarterScore.StringFixed(2))
	assert.True(t, bob.HasBadge(valueobject.BadgeTopRated))
	assert.False(t, bob.HasBadge(valueobject.BadgeExperiencedTrader))
}

func TestRateUser_DuplicateForSameTradeIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.tradeBetween(t, valueobject.TradeStatusCompleted)

	_, err := f.rate(ctx, f.alice.ID, f.bob.ID, 4, &tr.ID)
	require.NoError(t, err)

	_, err = f.rate(ctx, f.alice.ID, f.bob.ID, 1, &tr.ID)
	assert.True(t, apperror.IsConflict(err))
	assert.Equal(t, "4.00", f.user(t, f.bob.ID).BarterScore.StringFixed(2))

	// встречная оценка той же сделки допустима
	_, err = f.rate(ctx, f.bob.ID, f.alice.ID, 3, &tr.ID)
	assert.NoError(t, err)
}

func TestRateUser_TradeChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	carol := f.createUser(t, "carol")

	missing := uuid.New()
	_, err := f.rate(ctx, f.alice.ID, f.bob.ID, 4, &missing)
	assert.True(t, apperror.IsNotFound(err))

	completed := f.tradeBetween(t, valueobject.TradeStatusCompleted)
	_, err = f.rate(ctx, carol.ID, f.bob.ID, 4, &completed.ID)
	assert.True(t, apperror.IsForbidden(err))
	_, err = f.rate(ctx, f.alice.ID, carol.ID, 4, &completed.ID)
	assert.True(t, apperror.IsForbidden(err))

	accepted := f.tradeBetween(t, valueobject.TradeStatusAccepted)
	_, err = f.rate(ctx, f.alice.ID, f.bob.ID, 4, &accepted.ID)
	assert.True(t, apperror.IsConflict(err))

	stats, err := reputation.NewGetStatsUseCase(f.store.Repositories().Users, f.store.Repositories().Ratings).Execute(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalRatings)
}

func TestRateUser_InvalidInputHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.rate(ctx, f.alice.ID, f.bob.ID, 6, nil)
	assert.True(t, apperror.IsValidation(err))
	_, err = f.rate(ctx, f.alice.ID, f.bob.ID, 0, nil)
	assert.True(t, apperror.IsValidation(err))
	_, err = f.rate(ctx, f.alice.ID, f.alice.ID, 5, nil)
	assert.True(t, apperror.IsValidation(err))

	bob := f.user(t, f.bob.ID)
	assert.True(t, bob.BarterScore.IsZero())
	d, err := f.store.Repositories().Ratings.Distribution(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Zero(t, d.Total())
}

func TestRateUser_UnknownUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.rate(ctx, f.alice.ID, uuid.New(), 5, nil)
	assert.True(t, apperror.IsNotFound(err))
	_, err = f.rate(ctx, uuid.New(), f.bob.ID, 5, nil)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRateUser_ExperiencedTraderAtTenthRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		_, err := f.rate(ctx, f.alice.ID, f.bob.ID, 3, nil)
		require.NoError(t, err)

		bob := f.user(t, f.bob.ID)
		assert.Equal(t, i >= 10, bob.HasBadge(valueobject.BadgeExperiencedTrader), "rating #%d", i)
		assert.False(t, bob.HasBadge(valueobject.BadgeTopRated))
	}
}

func TestRateUser_BadgesAreNeverRemoved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.rate(ctx, f.alice.ID, f.bob.ID, 5, nil)
	require.NoError(t, err)
	_, err = f.rate(ctx, f.alice.ID, f.bob.ID, 1, nil)
	require.NoError(t, err)

	bob := f.user(t, f.bob.ID)
	assert.Equal(t, "3.00", bob.BarterScore.StringFixed(2))
	assert.Equal(t, []valueobject.Badge{valueobject.BadgeTopRated}, bob.Badges)
}

func TestRateUser_ScoreIsRoundedMean(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, s := range []int{5, 4, 4} {
		_, err := f.rate(ctx, f.alice.ID, f.bob.ID, s, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, "4.33", f.user(t, f.bob.ID).BarterScore.StringFixed(2))

	_, err := f.rate(ctx, f.alice.ID, f.bob.ID, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, "4.50", f.user(t, f.bob.ID).BarterScore.StringFixed(2))
	assert.True(t, f.user(t, f.bob.ID).HasBadge(valueobject.BadgeTopRated))
}

func TestRateUser_ScoreMatchesMeanProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(rt)
		ctx := context.Background()
		scores := rapid.SliceOfN(rapid.IntRange(valueobject.MinRatingScore, valueobject.MaxRatingScore), 1, 25).Draw(rt, "scores")

		var sum int64
		for _, s := range scores {
			_, err := f.rate(ctx, f.alice.ID, f.bob.ID, s, nil)
			require.NoError(rt, err)
			sum += int64(s)
		}

		n := int64(len(scores))
		cents := (sum*200 + n) / (2 * n)
		expected := decimal.New(cents, -2)
		got := f.user(rt, f.bob.ID).BarterScore
		if !got.Equal(expected) {
			rt.Fatalf("score %s, want %s for %v", got, expected, scores)
		}
	})
}

func TestRateUser_ConcurrentIdenticalRatingsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.tradeBetween(t, valueobject.TradeStatusCompleted)

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_, err := f.rate(ctx, f.alice.ID, f.bob.ID, score, &tr.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperror.IsConflict(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i%5 + 1)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)

	d, err := f.store.Repositories().Ratings.Distribution(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Total())
}
