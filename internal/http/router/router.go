package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ignatzorin/barter-backend/internal/config"
	"github.com/ignatzorin/barter-backend/internal/http/middleware"
	"github.com/ignatzorin/barter-backend/internal/interface/http/handler"
	"github.com/ignatzorin/barter-backend/internal/service"
)

type Handlers struct {
	Trade  *handler.TradeHandler
	Rating *handler.RatingHandler
	Health *handler.HealthHandler
	WS     *handler.WSHandler
}

func SetupRouter(cfg *config.Config, h Handlers, tokenManager *service.TokenManager) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if h.WS != nil {
		api.GET("/ws", h.WS.Handle)
	}

	// публичная статистика репутации
	users := api.Group("/users/:id", middleware.UUIDValidator("id"))
	{
		users.GET("/stats", h.Rating.GetUserStats)
		users.GET("/ratings", h.Rating.ListUserRatings)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	protected.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))

	trades := protected.Group("/trades")
	{
		trades.POST("", h.Trade.ProposeTrade)
		trades.GET("/my", h.Trade.ListMyTrades)
		trades.POST("/chain", h.Trade.ProposeChain)
		trades.POST("/chain/validate", h.Trade.ValidateChain)

		byID := trades.Group("/:id", middleware.UUIDValidator("id"))
		byID.GET("", h.Trade.GetTrade)
		byID.POST("/accept", h.Trade.AcceptTrade)
		byID.POST("/reject", h.Trade.RejectTrade)
		byID.POST("/cancel", h.Trade.CancelTrade)
		byID.POST("/complete", h.Trade.CompleteTrade)
	}

	protected.POST("/ratings", h.Rating.RateUser)

	return r
}
