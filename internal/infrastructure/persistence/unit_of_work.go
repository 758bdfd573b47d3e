package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/barter-backend/internal/domain/repository"
	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
)

// UnitOfWork открывает транзакцию PostgreSQL на каждый вызов Do.
type UnitOfWork struct {
	db *sqlx.DB
}

func NewUnitOfWork(db *sqlx.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return withTransaction(ctx, u.db, func(tx *sqlx.Tx) error {
		return fn(ctx, newRepositories(tx))
	})
}

// Repositories возвращает репозитории вне транзакции, для чтения.
func (u *UnitOfWork) Repositories() repository.Repositories {
	return newRepositories(u.db)
}

func (u *UnitOfWork) Ping(ctx context.Context) error {
	return u.db.PingContext(ctx)
}

func newRepositories(q sqlx.ExtContext) repository.Repositories {
	return repository.Repositories{
		Trades:   NewTradeRepository(q),
		Listings: NewListingRepository(q),
		Users:    NewUserRepository(q),
		Ratings:  NewRatingRepository(q),
	}
}

// withTransaction выполняет функцию внутри транзакции с правильной обработкой ошибок
func withTransaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось начать транзакцию")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("tx error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось зафиксировать транзакцию")
	}
	return nil
}

// getOne выполняет запрос одной строки и подменяет sql.ErrNoRows на notFound.
func getOne(ctx context.Context, q sqlx.QueryerContext, dest any, notFound error, query string, args ...any) error {
	if err := sqlx.GetContext(ctx, q, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка чтения из базы данных")
	}
	return nil
}
