// Package app собирает зависимости сервиса.
package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/barter-backend/internal/config"
	"github.com/ignatzorin/barter-backend/internal/domain/repository"
	"github.com/ignatzorin/barter-backend/internal/http/router"
	"github.com/ignatzorin/barter-backend/internal/interface/http/handler"
	"github.com/ignatzorin/barter-backend/internal/service"
	"github.com/ignatzorin/barter-backend/internal/usecase/listing"
	"github.com/ignatzorin/barter-backend/internal/usecase/reputation"
	"github.com/ignatzorin/barter-backend/internal/usecase/trade"
	"github.com/ignatzorin/barter-backend/internal/ws"
)

// Storage объединяет транзакции и чтение: PostgreSQL или память.
type Storage interface {
	repository.UnitOfWork
	Repositories() repository.Repositories
	Ping(ctx context.Context) error
}

type Deps struct {
	Config   *config.Config
	Storage  Storage
	Tokens   *service.TokenManager
	Notifier trade.Notifier
	Hub      *ws.Hub
}

// NewRouter создаёт use case'ы и HTTP-обработчики поверх хранилища.
func NewRouter(d Deps) *gin.Engine {
	repos := d.Storage.Repositories()
	guard := listing.NewAvailabilityGuard(d.Storage)

	tradeHandler := handler.NewTradeHandler(
		trade.NewProposeTradeUseCase(d.Storage),
		trade.NewProposeChainUseCase(d.Storage),
		trade.NewChainValidator(repos.Listings),
		trade.NewAcceptTradeUseCase(d.Storage, guard, d.Notifier, d.Config.EscrowHoldPeriod),
		trade.NewRejectTradeUseCase(d.Storage),
		trade.NewCancelTradeUseCase(d.Storage),
		trade.NewCompleteTradeUseCase(d.Storage, d.Notifier),
		trade.NewGetTradeUseCase(repos.Trades),
		trade.NewListUserTradesUseCase(repos.Trades),
	)
	ratingHandler := handler.NewRatingHandler(
		reputation.NewRateUserUseCase(d.Storage),
		reputation.NewGetStatsUseCase(repos.Users, repos.Ratings),
		reputation.NewListUserRatingsUseCase(repos.Users, repos.Ratings),
	)

	handlers := router.Handlers{
		Trade:  tradeHandler,
		Rating: ratingHandler,
		Health: handler.NewHealthHandler(d.Storage, d.Config.StorageDriver),
	}
	if d.Hub != nil {
		handlers.WS = handler.NewWSHandler(d.Hub, d.Tokens, d.Config.AllowedOrigins)
	}

	return router.SetupRouter(d.Config, handlers, d.Tokens)
}
