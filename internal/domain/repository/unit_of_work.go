package repository

import "context"

// Repositories: набор репозиториев, привязанных к одному источнику
// (соединению или открытой транзакции).
type Repositories struct {
	Trades   TradeRepository
	Listings ListingRepository
	Users    UserRepository
	Ratings  RatingRepository
}

// UnitOfWork выполняет fn в одной транзакции: при ошибке или панике
// все изменения откатываются.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
