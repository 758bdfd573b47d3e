package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
)

type listingRow struct {
	ID             uuid.UUID       `db:"id"`
	OwnerID        uuid.UUID       `db:"owner_id"`
	Title          string          `db:"title"`
	IsAvailable    bool            `db:"is_available"`
	EstimatedValue decimal.Decimal `db:"estimated_value"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (r listingRow) toEntity() *entity.Listing {
	return &entity.Listing{
		ID:             r.ID,
		OwnerID:        r.OwnerID,
		Title:          r.Title,
		IsAvailable:    r.IsAvailable,
		EstimatedValue: r.EstimatedValue,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type ListingRepository struct {
	db sqlx.ExtContext
}

func NewListingRepository(db sqlx.ExtContext) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(ctx context.Context, l *entity.Listing) error {
	query := `
		INSERT INTO listings (id, owner_id, title, is_available, estimated_value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.OwnerID, l.Title, l.IsAvailable, l.EstimatedValue, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать объявление")
	}
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	var row listingRow
	query := `SELECT id, owner_id, title, is_available, estimated_value, created_at, updated_at FROM listings WHERE id = $1`
	if err := getOne(ctx, r.db, &row, apperror.ErrListingNotFound, query, id); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

// SetAvailability меняет флаг одним условным UPDATE: строки, уже находящиеся
// в нужном состоянии, не затрагиваются и не попадают в счётчик.
func (r *ListingRepository) SetAvailability(ctx context.Context, ids []uuid.UUID, available bool) (int, error) {
	raw := make(pq.StringArray, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}

	query := `
		UPDATE listings
		SET is_available = $2, updated_at = NOW()
		WHERE id = ANY($1::uuid[]) AND is_available <> $2
	`
	result, err := r.db.ExecContext(ctx, query, raw, available)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось изменить доступность объявлений")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат обновления")
	}
	return int(n), nil
}
