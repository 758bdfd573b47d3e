// Package notification доставляет события сделок участникам и во внешнюю шину.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/goroutine"
	"github.com/ignatzorin/barter-backend/internal/usecase/trade"
)

const sendTimeout = 5 * time.Second

// UserBroadcaster доставляет событие подключениям пользователя (ws.Hub).
type UserBroadcaster interface {
	BroadcastToUser(ctx context.Context, userID uuid.UUID, event string, data any) error
}

// EventPublisher публикует событие во внешнюю шину (broker.Publisher).
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type TradeEvent struct {
	Event           string     `json:"event"`
	TradeID         uuid.UUID  `json:"trade_id"`
	TradeType       string     `json:"trade_type"`
	Status          string     `json:"status"`
	ProposerID      uuid.UUID  `json:"proposer_id"`
	ReceiverID      *uuid.UUID `json:"receiver_id,omitempty"`
	TradeCoinAmount int64      `json:"trade_coin_amount"`
	MeetupLocation  *string    `json:"meetup_location,omitempty"`
	MeetupTime      *time.Time `json:"meetup_time,omitempty"`
	OccurredAt      time.Time  `json:"occurred_at"`
}

func NewTradeEvent(event trade.Event, t *entity.Trade) TradeEvent {
	return TradeEvent{
		Event:           string(event),
		TradeID:         t.ID,
		TradeType:       string(t.Type()),
		Status:          string(t.Status),
		ProposerID:      t.ProposerID,
		ReceiverID:      t.ReceiverID,
		TradeCoinAmount: t.TradeCoinAmount.Int64(),
		MeetupLocation:  t.MeetupLocation,
		MeetupTime:      t.MeetupTime,
		OccurredAt:      t.UpdatedAt,
	}
}

// TradeNotifier рассылает событие всем участникам сделки и публикует его
// в шину. Каждая отправка выполняется в отдельной горутине; ошибки только
// логируются.
type TradeNotifier struct {
	users     UserBroadcaster
	publisher EventPublisher
	log       *logrus.Entry
}

// NewTradeNotifier принимает nil вместо любого из получателей.
func NewTradeNotifier(users UserBroadcaster, publisher EventPublisher, log *logrus.Logger) *TradeNotifier {
	return &TradeNotifier{
		users:     users,
		publisher: publisher,
		log:       log.WithField("component", "notification"),
	}
}

func (n *TradeNotifier) NotifyTrade(ctx context.Context, event trade.Event, t *entity.Trade) {
	payload := NewTradeEvent(event, t)
	// запрос завершится раньше, чем отправка
	base := context.WithoutCancel(ctx)

	if n.users != nil {
		for _, userID := range t.ParticipantIDs() {
			userID := userID
			goroutine.SafeGo(func() {
				ctx, cancel := context.WithTimeout(base, sendTimeout)
				defer cancel()
				if err := n.users.BroadcastToUser(ctx, userID, payload.Event, payload); err != nil {
					n.log.WithFields(logrus.Fields{
						"event":    payload.Event,
						"trade_id": payload.TradeID,
						"user_id":  userID,
					}).WithError(err).Warn("не удалось отправить уведомление пользователю")
				}
			})
		}
	}

	if n.publisher != nil {
		goroutine.SafeGo(func() {
			ctx, cancel := context.WithTimeout(base, sendTimeout)
			defer cancel()
			if err := n.publisher.Publish(ctx, payload.Event, payload); err != nil {
				n.log.WithFields(logrus.Fields{
					"event":    payload.Event,
					"trade_id": payload.TradeID,
				}).WithError(err).Error("не удалось опубликовать событие сделки")
			}
		})
	}
}
