package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/barter-backend/internal/domain/valueobject"
	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
)

type User struct {
	ID          uuid.UUID
	Username    string
	BarterScore decimal.Decimal
	Badges      []valueobject.Badge
	TradeCoins  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewUser(username string) *User {
	now := time.Now().UTC()
	return &User{
		ID:          uuid.New(),
		Username:    username,
		BarterScore: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (u *User) HasBadge(badge valueobject.Badge) bool {
	for _, b := range u.Badges {
		if b == badge {
			return true
		}
	}
	return false
}

// AddBadges добавляет недостающие значки; существующие не удаляются.
func (u *User) AddBadges(badges ...valueobject.Badge) bool {
	added := false
	for _, b := range badges {
		if !u.HasBadge(b) {
			u.Badges = append(u.Badges, b)
			added = true
		}
	}
	return added
}

// ApplyRatings пересчитывает рейтинг по полному распределению оценок.
func (u *User) ApplyRatings(distribution valueobject.RatingDistribution, now time.Time) {
	u.BarterScore = distribution.Mean()
	u.AddBadges(valueobject.EarnedBadges(distribution.Total(), u.BarterScore)...)
	u.UpdatedAt = now
}

func (u *User) BumpScoreForCompletion(now time.Time) {
	u.BarterScore = valueobject.BumpForCompletion(u.BarterScore)
	u.UpdatedAt = now
}

func (u *User) Debit(amount valueobject.Coins) error {
	if u.TradeCoins < amount.Int64() {
		return apperror.ErrInsufficientCoins
	}
	u.TradeCoins -= amount.Int64()
	return nil
}

func (u *User) Credit(amount valueobject.Coins) {
	u.TradeCoins += amount.Int64()
}

func (u *User) Clone() *User {
	c := *u
	c.Badges = append([]valueobject.Badge(nil), u.Badges...)
	return &c
}
