package valueobject_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/ignatzorin/barter-backend/internal/domain/valueobject"
)

func TestValidateRatingScore(t *testing.T) {
	for _, s := range []int{1, 2, 3, 4, 5} {
		assert.NoError(t, valueobject.ValidateRatingScore(s))
	}
	for _, s := range []int{-1, 0, 6, 10} {
		assert.Error(t, valueobject.ValidateRatingScore(s))
	}
}

func TestRatingDistribution_Mean(t *testing.T) {
	d := valueobject.NewRatingDistribution()
	assert.True(t, d.Mean().IsZero())
	assert.Len(t, d, 5)

	// 5, 4, 4 -> 4.333...
	d[5] = 1
	d[4] = 2
	assert.Equal(t, "4.33", d.Mean().StringFixed(2))

	// 5, 4 -> 4.5
	d = valueobject.RatingDistribution{5: 1, 4: 1}
	assert.Equal(t, "4.50", d.Mean().StringFixed(2))

	// 1, 1, 2 -> 1.333...; 2, 2, 1 -> 1.666...
	assert.Equal(t, "1.33", valueobject.RatingDistribution{1: 2, 2: 1}.Mean().StringFixed(2))
	assert.Equal(t, "1.67", valueobject.RatingDistribution{2: 2, 1: 1}.Mean().StringFixed(2))
}

func TestRatingDistribution_MeanRoundsHalfUp(t *testing.T) {
	// 8 оценок: сумма 29 -> 3.625 -> 3.63
	d := valueobject.RatingDistribution{4: 5, 3: 3}
	assert.Equal(t, 29, int(d.Sum()))
	assert.Equal(t, "3.63", d.Mean().StringFixed(2))
}

func TestRatingDistribution_MeanProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		scores := rapid.SliceOfN(rapid.IntRange(1, 5), 1, 200).Draw(t, "scores")

		d := valueobject.NewRatingDistribution()
		var sum int64
		for _, s := range scores {
			d[s]++
			sum += int64(s)
		}
		n := int64(len(scores))

		// round half-up в сотых: floor((sum*100*2 + n) / (2n))
		hundredths := (sum*200 + n) / (2 * n)
		want := decimal.New(hundredths, -2)

		if !d.Mean().Equal(want) {
			t.Fatalf("mean of %v: want %s, got %s", scores, want, d.Mean())
		}
		if d.Total() != len(scores) {
			t.Fatalf("total: want %d, got %d", len(scores), d.Total())
		}
	})
}

func TestBumpForCompletion(t *testing.T) {
	assert.Equal(t, "0.50", valueobject.BumpForCompletion(decimal.Zero).StringFixed(2))
	assert.Equal(t, "5.17", valueobject.BumpForCompletion(decimal.RequireFromString("4.67")).StringFixed(2))
}

func TestEarnedBadges(t *testing.T) {
	assert.Empty(t, valueobject.EarnedBadges(9, decimal.RequireFromString("4.49")))
	assert.Equal(t, []valueobject.Badge{valueobject.BadgeExperiencedTrader}, valueobject.EarnedBadges(10, decimal.RequireFromString("3")))
	assert.Equal(t, []valueobject.Badge{valueobject.BadgeTopRated}, valueobject.EarnedBadges(1, decimal.RequireFromString("4.5")))
	assert.ElementsMatch(t,
		[]valueobject.Badge{valueobject.BadgeExperiencedTrader, valueobject.BadgeTopRated},
		valueobject.EarnedBadges(12, decimal.RequireFromString("4.8")),
	)
}

func TestBumpForCompletion_IsUncapped(t *testing.T) {
	score := decimal.Zero
	for i := 0; i < 2000; i++ {
		score = valueobject.BumpForCompletion(score)
	}
	assert.Equal(t, "1000.00", score.StringFixed(2))
}
