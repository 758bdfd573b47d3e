package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/domain/valueobject"
	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
)

const uniqueViolation = "23505"

type ratingRow struct {
	ID          uuid.UUID     `db:"id"`
	RaterID     uuid.UUID     `db:"rater_id"`
	RatedUserID uuid.UUID     `db:"rated_user_id"`
	TradeID     uuid.NullUUID `db:"trade_id"`
	Score       int           `db:"score"`
	Comment     *string       `db:"comment"`
	CreatedAt   time.Time     `db:"created_at"`
}

func (r ratingRow) toEntity() *entity.Rating {
	rating := &entity.Rating{
		ID:          r.ID,
		RaterID:     r.RaterID,
		RatedUserID: r.RatedUserID,
		Score:       r.Score,
		Comment:     r.Comment,
		CreatedAt:   r.CreatedAt,
	}
	if r.TradeID.Valid {
		id := r.TradeID.UUID
		rating.TradeID = &id
	}
	return rating
}

type RatingRepository struct {
	db sqlx.ExtContext
}

func NewRatingRepository(db sqlx.ExtContext) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create опирается на частичный уникальный индекс
// ratings(rater_id, rated_user_id, trade_id): повторная вставка
// из параллельной транзакции получит ErrDuplicateRating.
func (r *RatingRepository) Create(ctx context.Context, rating *entity.Rating) error {
	var tradeID uuid.NullUUID
	if rating.TradeID != nil {
		tradeID = uuid.NullUUID{UUID: *rating.TradeID, Valid: true}
	}

	query := `
		INSERT INTO ratings (id, rater_id, rated_user_id, trade_id, score, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		rating.ID, rating.RaterID, rating.RatedUserID, tradeID, rating.Score, rating.Comment, rating.CreatedAt,
	)
	if err != nil {
		return ratingInsertError(err)
	}
	return nil
}

// ratingInsertError переводит нарушение уникального индекса в Conflict.
func ratingInsertError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperror.ErrDuplicateRating
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить оценку")
}

func (r *RatingRepository) Distribution(ctx context.Context, ratedUserID uuid.UUID) (valueobject.RatingDistribution, error) {
	var rows []struct {
		Score int `db:"score"`
		Count int `db:"count"`
	}
	query := `SELECT score, COUNT(*) AS count FROM ratings WHERE rated_user_id = $1 GROUP BY score`
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, ratedUserID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить распределение оценок")
	}

	d := valueobject.NewRatingDistribution()
	for _, row := range rows {
		d[row.Score] = row.Count
	}
	return d, nil
}

func (r *RatingRepository) ListByRatedUser(ctx context.Context, ratedUserID uuid.UUID, limit, offset int) ([]*entity.Rating, int, error) {
	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM ratings WHERE rated_user_id = $1`, ratedUserID); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать оценки")
	}

	var rows []ratingRow
	query := `
		SELECT id, rater_id, rated_user_id, trade_id, score, comment, created_at
		FROM ratings WHERE rated_user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, ratedUserID, limit, offset); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить оценки")
	}

	ratings := make([]*entity.Rating, 0, len(rows))
	for _, row := range rows {
		ratings = append(ratings, row.toEntity())
	}
	return ratings, total, nil
}
