package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/interface/http/dto"
	"github.com/ignatzorin/barter-backend/internal/interface/http/response"
	"github.com/ignatzorin/barter-backend/internal/usecase/trade"
)

type TradeHandler struct {
	proposeUC      *trade.ProposeTradeUseCase
	proposeChainUC *trade.ProposeChainUseCase
	validator      *trade.ChainValidator
	acceptUC       *trade.AcceptTradeUseCase
	rejectUC       *trade.RejectTradeUseCase
	cancelUC       *trade.CancelTradeUseCase
	completeUC     *trade.CompleteTradeUseCase
	getUC          *trade.GetTradeUseCase
	listUC         *trade.ListUserTradesUseCase
}

func NewTradeHandler(
	proposeUC *trade.ProposeTradeUseCase,
	proposeChainUC *trade.ProposeChainUseCase,
	validator *trade.ChainValidator,
	acceptUC *trade.AcceptTradeUseCase,
	rejectUC *trade.RejectTradeUseCase,
	cancelUC *trade.CancelTradeUseCase,
	completeUC *trade.CompleteTradeUseCase,
	getUC *trade.GetTradeUseCase,
	listUC *trade.ListUserTradesUseCase,
) *TradeHandler {
	return &TradeHandler{
		proposeUC:      proposeUC,
		proposeChainUC: proposeChainUC,
		validator:      validator,
		acceptUC:       acceptUC,
		rejectUC:       rejectUC,
		cancelUC:       cancelUC,
		completeUC:     completeUC,
		getUC:          getUC,
		listUC:         listUC,
	}
}

func (h *TradeHandler) ProposeTrade(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	var req dto.ProposeTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	t, err := h.proposeUC.Execute(c.Request.Context(), trade.ProposeTradeInput{
		ProposerID:        userID,
		ReceiverID:        req.ReceiverID,
		ProposerListingID: req.ProposerListingID,
		ReceiverListingID: req.ReceiverListingID,
		TradeCoinAmount:   req.TradeCoinAmount,
		Notes:             req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToTradeResponse(t))
}

func (h *TradeHandler) ProposeChain(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	var req dto.ProposeChainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	t, err := h.proposeChainUC.Execute(c.Request.Context(), trade.ProposeChainInput{
		ProposerID: userID,
		Chain:      req.Links(),
		Notes:      req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToTradeResponse(t))
}

// ValidateChain проверяет цепочку без создания сделки.
func (h *TradeHandler) ValidateChain(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	var req dto.ProposeChainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	if err := h.validator.Validate(c.Request.Context(), userID, req.Links()); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ChainValidationResponse{Valid: true})
}

func (h *TradeHandler) AcceptTrade(c *gin.Context) {
	userID, tradeID, ok := h.actorAndTrade(c)
	if !ok {
		return
	}

	var req dto.AcceptTradeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "некорректные данные запроса")
			return
		}
	}

	t, err := h.acceptUC.Execute(c.Request.Context(), trade.AcceptTradeInput{
		TradeID:        tradeID,
		ActorID:        userID,
		MeetupLocation: req.MeetupLocation,
		MeetupTime:     req.MeetupTime,
		IsEscrow:       req.IsEscrow,
	})
	h.respond(c, t, err)
}

func (h *TradeHandler) RejectTrade(c *gin.Context) {
	userID, tradeID, ok := h.actorAndTrade(c)
	if !ok {
		return
	}

	var req dto.RejectTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "укажите причину отказа")
		return
	}

	t, err := h.rejectUC.Execute(c.Request.Context(), trade.RejectTradeInput{
		TradeID: tradeID,
		ActorID: userID,
		Reason:  req.Reason,
	})
	h.respond(c, t, err)
}

func (h *TradeHandler) CancelTrade(c *gin.Context) {
	userID, tradeID, ok := h.actorAndTrade(c)
	if !ok {
		return
	}

	t, err := h.cancelUC.Execute(c.Request.Context(), tradeID, userID)
	h.respond(c, t, err)
}

func (h *TradeHandler) CompleteTrade(c *gin.Context) {
	userID, tradeID, ok := h.actorAndTrade(c)
	if !ok {
		return
	}

	t, err := h.completeUC.Execute(c.Request.Context(), tradeID, userID)
	h.respond(c, t, err)
}

func (h *TradeHandler) GetTrade(c *gin.Context) {
	userID, tradeID, ok := h.actorAndTrade(c)
	if !ok {
		return
	}

	t, err := h.getUC.Execute(c.Request.Context(), tradeID, userID)
	h.respond(c, t, err)
}

func (h *TradeHandler) ListMyTrades(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	input := trade.ListUserTradesInput{
		UserID: userID,
		Status: c.Query("status"),
		Limit:  parseIntQuery(c, "limit", 20),
		Offset: parseIntQuery(c, "offset", 0),
	}
	trades, total, err := h.listUC.Execute(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToTradeResponses(trades), total, input.Limit, input.Offset)
}

func (h *TradeHandler) actorAndTrade(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return uuid.Nil, uuid.Nil, false
	}

	tradeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID сделки")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, tradeID, true
}

func (h *TradeHandler) respond(c *gin.Context, t *entity.Trade, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToTradeResponse(t))
}
