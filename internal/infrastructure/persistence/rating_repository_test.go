package persistence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
)

func TestRatingInsertError(t *testing.T) {
	dup := &pq.Error{Code: uniqueViolation, Constraint: "uq_ratings_rater_rated_trade"}

	err := ratingInsertError(dup)
	assert.ErrorIs(t, err, apperror.ErrDuplicateRating)
	assert.True(t, apperror.IsConflict(err))

	err = ratingInsertError(fmt.Errorf("exec: %w", dup))
	assert.ErrorIs(t, err, apperror.ErrDuplicateRating)

	err = ratingInsertError(&pq.Error{Code: "23503"})
	assert.Equal(t, apperror.ErrCodeDatabaseError, apperror.CodeOf(err))
	assert.False(t, apperror.IsConflict(err))

	err = ratingInsertError(errors.New("connection reset"))
	assert.Equal(t, apperror.ErrCodeDatabaseError, apperror.CodeOf(err))
}
