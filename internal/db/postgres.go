// Package db отвечает за подключение к PostgreSQL и применение SQL миграций.
package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/ignatzorin/barter-backend/internal/logger"
)

// NewPostgres создаёт пул соединений и проверяет доступность базы.
func NewPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: не удалось подключиться: %w", err)
	}

	// Сделки держат блокировки строк недолго, большой пул не нужен.
	conn.SetMaxOpenConns(50)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(5 * time.Minute)
	conn.SetConnMaxIdleTime(time.Minute)

	return conn, nil
}

// MigrationStatus описывает один файл миграции.
type MigrationStatus struct {
	Name      string     `db:"name"`
	AppliedAt *time.Time `db:"applied_at"`
}

func (m MigrationStatus) Applied() bool {
	return m.AppliedAt != nil
}

// RunMigrations применяет ещё не выполненные *.sql файлы по порядку имён.
// Каждый файл выполняется в собственной транзакции.
func RunMigrations(ctx context.Context, conn *sqlx.DB, migrationsDir string) error {
	statuses, err := Status(ctx, conn, migrationsDir)
	if err != nil {
		return err
	}

	log := logger.Component("migrations")
	applied := 0
	for _, m := range statuses {
		if m.Applied() {
			continue
		}
		if err := applyMigration(ctx, conn, migrationsDir, m.Name); err != nil {
			return err
		}
		log.WithField("migration", m.Name).Info("миграция применена")
		applied++
	}

	log.WithField("applied", applied).Debug("миграции актуальны")
	return nil
}

// Status сопоставляет файлы каталога с журналом schema_migrations.
func Status(ctx context.Context, conn *sqlx.DB, migrationsDir string) ([]MigrationStatus, error) {
	if err := initMigrationsTable(ctx, conn); err != nil {
		return nil, fmt.Errorf("postgres: не удалось инициализировать таблицу миграций: %w", err)
	}

	names, err := migrationFiles(migrationsDir)
	if err != nil {
		return nil, err
	}

	var applied []MigrationStatus
	if err := conn.SelectContext(ctx, &applied, `SELECT name, applied_at FROM schema_migrations`); err != nil {
		return nil, fmt.Errorf("postgres: не удалось прочитать журнал миграций: %w", err)
	}
	appliedAt := make(map[string]*time.Time, len(applied))
	for _, m := range applied {
		appliedAt[m.Name] = m.AppliedAt
	}

	statuses := make([]MigrationStatus, 0, len(names))
	for _, name := range names {
		statuses = append(statuses, MigrationStatus{Name: name, AppliedAt: appliedAt[name]})
	}
	return statuses, nil
}

func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("postgres: не удалось прочитать каталог миграций: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func initMigrationsTable(ctx context.Context, conn *sqlx.DB) error {
	_, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

func applyMigration(ctx context.Context, conn *sqlx.DB, dir, name string) error {
	sqlBytes, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("postgres: не удалось прочитать миграцию %s: %w", name, err)
	}

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: не удалось начать транзакцию для миграции %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
		return fmt.Errorf("postgres: не удалось выполнить миграцию %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("postgres: не удалось отметить миграцию %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: не удалось зафиксировать миграцию %s: %w", name, err)
	}
	return nil
}
