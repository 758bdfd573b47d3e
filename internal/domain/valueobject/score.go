package valueobject

import (
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
)

const (
	MinRatingScore = 1
	MaxRatingScore = 5

	scorePrecision = 2
)

var completionBonus = decimal.RequireFromString("0.5")

type Badge string

const (
	BadgeExperiencedTrader Badge = "Experienced Trader"
	BadgeTopRated          Badge = "Top Rated"
)

var (
	experiencedTraderThreshold = 10
	topRatedThreshold          = decimal.RequireFromString("4.5")
)

func ValidateRatingScore(score int) error {
	if score < MinRatingScore || score > MaxRatingScore {
		return apperror.Newf(apperror.ErrCodeValidation, "оценка должна быть от %d до %d", MinRatingScore, MaxRatingScore)
	}
	return nil
}

// RatingDistribution хранит количество оценок по каждому баллу 1..5.
type RatingDistribution map[int]int

// NewRatingDistribution возвращает распределение с нулями для всех баллов.
func NewRatingDistribution() RatingDistribution {
	d := make(RatingDistribution, MaxRatingScore)
	for s := MinRatingScore; s <= MaxRatingScore; s++ {
		d[s] = 0
	}
	return d
}

func (d RatingDistribution) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

func (d RatingDistribution) Sum() int64 {
	var sum int64
	for score, n := range d {
		sum += int64(score) * int64(n)
	}
	return sum
}

// Mean возвращает среднее, округлённое до 2 знаков (половина округляется вверх).
// Для пустого распределения возвращает ноль.
func (d RatingDistribution) Mean() decimal.Decimal {
	total := d.Total()
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(d.Sum()).DivRound(decimal.NewFromInt(int64(total)), scorePrecision)
}

// RoundScore приводит балл к точности хранения.
func RoundScore(score decimal.Decimal) decimal.Decimal {
	return score.Round(scorePrecision)
}

// BumpForCompletion начисляет бонус за завершённую сделку.
func BumpForCompletion(score decimal.Decimal) decimal.Decimal {
	return RoundScore(score.Add(completionBonus))
}

// EarnedBadges возвращает значки, пороги которых достигнуты.
func EarnedBadges(ratingCount int, score decimal.Decimal) []Badge {
	var badges []Badge
	if ratingCount >= experiencedTraderThreshold {
		badges = append(badges, BadgeExperiencedTrader)
	}
	if score.GreaterThanOrEqual(topRatedThreshold) {
		badges = append(badges, BadgeTopRated)
	}
	return badges
}
