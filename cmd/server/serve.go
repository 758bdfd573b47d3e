package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/ignatzorin/barter-backend/internal/app"
	"github.com/ignatzorin/barter-backend/internal/config"
	"github.com/ignatzorin/barter-backend/internal/db"
	"github.com/ignatzorin/barter-backend/internal/goroutine"
	"github.com/ignatzorin/barter-backend/internal/infrastructure/broker"
	"github.com/ignatzorin/barter-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/barter-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/barter-backend/internal/logger"
	"github.com/ignatzorin/barter-backend/internal/notification"
	"github.com/ignatzorin/barter-backend/internal/service"
	"github.com/ignatzorin/barter-backend/internal/ws"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("migrate", true, "Apply pending migrations before start (postgres only)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.Component("main")
	migrate, _ := cmd.Flags().GetBool("migrate")

	storage, closeStorage, err := openStorage(ctx, cfg, migrate)
	if err != nil {
		return err
	}
	defer closeStorage()

	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, hub.Run)

	// nil-интерфейс, а не nil-указатель: уведомитель проверяет publisher на nil.
	var publisher notification.EventPublisher
	if cfg.AMQPURL != "" {
		p, err := broker.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger.Log)
		if err != nil {
			return fmt.Errorf("main: брокер недоступен: %w", err)
		}
		defer func() {
			if err := p.Close(); err != nil {
				log.WithError(err).Warn("ошибка закрытия брокера")
			}
		}()
		publisher = p
	}

	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	engine := app.NewRouter(app.Deps{
		Config:   cfg,
		Storage:  storage,
		Tokens:   tokens,
		Notifier: notification.NewTradeNotifier(hub, publisher, logger.Log),
		Hub:      hub,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	goroutine.SafeGo(func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("ошибка остановки http сервера")
		}
	})

	log.WithFields(map[string]any{
		"port":    cfg.HTTPPort,
		"storage": cfg.StorageDriver,
		"env":     cfg.Env,
	}).Info("HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("main: сервер завершился с ошибкой: %w", err)
	}
	log.Info("сервер остановлен")
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, migrate bool) (app.Storage, func(), error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Component("main").Warn("данные хранятся в памяти и будут потеряны при остановке")
		return memory.NewStore(), func() {}, nil
	}

	conn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if migrate {
		if err := db.RunMigrations(ctx, conn, cfg.MigrationsPath); err != nil {
			safeClose(conn)
			return nil, nil, err
		}
	}
	return persistence.NewUnitOfWork(conn), func() { safeClose(conn) }, nil
}

// safeClose закрывает соединение с базой.
func safeClose(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.Component("main").WithError(err).Warn("ошибка закрытия базы")
	}
}
