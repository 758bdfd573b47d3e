package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/barter-backend/internal/domain/valueobject"
	"github.com/ignatzorin/barter-backend/internal/pkg/apperror"
	"github.com/ignatzorin/barter-backend/internal/validation"
)

type Rating struct {
	ID          uuid.UUID
	RaterID     uuid.UUID
	RatedUserID uuid.UUID
	TradeID     *uuid.UUID
	Score       int
	Comment     *string
	CreatedAt   time.Time
}

func NewRating(raterID, ratedUserID uuid.UUID, score int, comment *string, tradeID *uuid.UUID) (*Rating, error) {
	if raterID == ratedUserID {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя оценить самого себя")
	}
	if err := valueobject.ValidateRatingScore(score); err != nil {
		return nil, err
	}
	if comment != nil {
		trimmed := strings.TrimSpace(*comment)
		if trimmed == "" {
			comment = nil
		} else {
			if err := validation.ValidateRatingComment(trimmed); err != nil {
				return nil, invalid(err)
			}
			comment = &trimmed
		}
	}

	return &Rating{
		ID:          uuid.New(),
		RaterID:     raterID,
		RatedUserID: ratedUserID,
		TradeID:     tradeID,
		Score:       score,
		Comment:     comment,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
