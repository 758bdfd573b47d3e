package valueobject

import "github.com/ignatzorin/barter-backend/internal/pkg/apperror"

// Coins: количество внутренней валюты обмена.
type Coins int64

func NewCoins(amount int64) (Coins, error) {
	if amount < 0 {
		return 0, apperror.New(apperror.ErrCodeValidation, "количество монет не может быть отрицательным")
	}
	return Coins(amount), nil
}

func (c Coins) IsZero() bool {
	return c == 0
}

func (c Coins) Int64() int64 {
	return int64(c)
}
