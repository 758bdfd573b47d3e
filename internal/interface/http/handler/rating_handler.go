package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/barter-backend/internal/interface/http/dto"
	"github.com/ignatzorin/barter-backend/internal/interface/http/response"
	"github.com/ignatzorin/barter-backend/internal/usecase/reputation"
)

type RatingHandler struct {
	rateUC  *reputation.RateUserUseCase
	statsUC *reputation.GetStatsUseCase
	listUC  *reputation.ListUserRatingsUseCase
}

func NewRatingHandler(rateUC *reputation.RateUserUseCase, statsUC *reputation.GetStatsUseCase, listUC *reputation.ListUserRatingsUseCase) *RatingHandler {
	return &RatingHandler{rateUC: rateUC, statsUC: statsUC, listUC: listUC}
}

func (h *RatingHandler) RateUser(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	var req dto.RateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	rating, err := h.rateUC.Execute(c.Request.Context(), reputation.RateUserInput{
		RaterID:     userID,
		RatedUserID: req.RatedUserID,
		Score:       req.Score,
		Comment:     req.Comment,
		TradeID:     req.TradeID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToRatingResponse(rating))
}

func (h *RatingHandler) GetUserStats(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID пользователя")
		return
	}

	stats, err := h.statsUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToUserStatsResponse(userID, stats))
}

func (h *RatingHandler) ListUserRatings(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID пользователя")
		return
	}

	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)
	ratings, total, err := h.listUC.Execute(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToRatingResponses(ratings), total, limit, offset)
}
