package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/domain/valueobject"
	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
)

const userColumns = `id, username, barter_score, badges, trade_coins, created_at, updated_at`

type userRow struct {
	ID          uuid.UUID       `db:"id"`
	Username    string          `db:"username"`
	BarterScore decimal.Decimal `db:"barter_score"`
	Badges      pq.StringArray  `db:"badges"`
	TradeCoins  int64           `db:"trade_coins"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func newUserRow(u *entity.User) userRow {
	badges := make(pq.StringArray, 0, len(u.Badges))
	for _, b := range u.Badges {
		badges = append(badges, string(b))
	}
	return userRow{
		ID:          u.ID,
		Username:    u.Username,
		BarterScore: valueobject.RoundScore(u.BarterScore),
		Badges:      badges,
		TradeCoins:  u.TradeCoins,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (r userRow) toEntity() *entity.User {
	badges := make([]valueobject.Badge, 0, len(r.Badges))
	for _, b := range r.Badges {
		badges = append(badges, valueobject.Badge(b))
	}
	return &entity.User{
		ID:          r.ID,
		Username:    r.Username,
		BarterScore: r.BarterScore,
		Badges:      badges,
		TradeCoins:  r.TradeCoins,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type UserRepository struct {
	db sqlx.ExtContext
}

func NewUserRepository(db sqlx.ExtContext) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	query := `INSERT INTO users (` + userColumns + `)
		VALUES (:id, :username, :barter_score, :badges, :trade_coins, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, newUserRow(u)); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать пользователя")
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (r *UserRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.User, error) {
	var row userRow
	if err := getOne(ctx, r.db, &row, apperror.ErrUserNotFound, query, id); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	query := `
		UPDATE users
		SET barter_score = :barter_score, badges = :badges, trade_coins = :trade_coins, updated_at = :updated_at
		WHERE id = :id
	`
	result, err := sqlx.NamedExecContext(ctx, r.db, query, newUserRow(u))
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить пользователя")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат обновления")
	}
	if rows == 0 {
		return apperror.ErrUserNotFound
	}
	return nil
}
