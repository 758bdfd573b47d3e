package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/usecase/reputation"
)

// RateUserRequest: диапазон оценки проверяется в домене, чтобы ответ
// содержал VALIDATION_ERROR, а не ошибку привязки.
type RateUserRequest struct {
	RatedUserID uuid.UUID  `json:"rated_user_id" binding:"required"`
	Score       int        `json:"score"`
	Comment     *string    `json:"comment" binding:"omitempty,max=2000"`
	TradeID     *uuid.UUID `json:"trade_id"`
}

type RatingResponse struct {
	ID          uuid.UUID  `json:"id"`
	RaterID     uuid.UUID  `json:"rater_id"`
	RatedUserID uuid.UUID  `json:"rated_user_id"`
	TradeID     *uuid.UUID `json:"trade_id"`
	Score       int        `json:"score"`
	Comment     *string    `json:"comment"`
	CreatedAt   time.Time  `json:"created_at"`
}

func ToRatingResponse(r *entity.Rating) RatingResponse {
	return RatingResponse{
		ID:          r.ID,
		RaterID:     r.RaterID,
		RatedUserID: r.RatedUserID,
		TradeID:     r.TradeID,
		Score:       r.Score,
		Comment:     r.Comment,
		CreatedAt:   r.CreatedAt,
	}
}

func ToRatingResponses(ratings []*entity.Rating) []RatingResponse {
	result := make([]RatingResponse, 0, len(ratings))
	for _, r := range ratings {
		result = append(result, ToRatingResponse(r))
	}
	return result
}

type UserStatsResponse struct {
	UserID       uuid.UUID   `json:"user_id"`
	BarterScore  json.Number `json:"barter_score"`
	TotalRatings int         `json:"total_ratings"`
	Distribution map[int]int `json:"distribution"`
	Badges       []string    `json:"badges"`
}

func ToUserStatsResponse(userID uuid.UUID, s *reputation.Stats) UserStatsResponse {
	badges := make([]string, 0, len(s.Badges))
	for _, b := range s.Badges {
		badges = append(badges, string(b))
	}
	return UserStatsResponse{
		UserID:       userID,
		BarterScore:  json.Number(s.BarterScore.StringFixed(2)),
		TotalRatings: s.TotalRatings,
		Distribution: s.Distribution,
		Badges:       badges,
	}
}
