package trade

import (
	"context"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
)

type Event string

const (
	EventTradeAccepted  Event = "trade.accepted"
	EventTradeCompleted Event = "trade.completed"
)

// Notifier получает события после фиксации транзакции. Реализация не должна
// блокировать вызывающего; доставка не гарантируется.
type Notifier interface {
	NotifyTrade(ctx context.Context, event Event, trade *entity.Trade)
}

func notify(ctx context.Context, n Notifier, event Event, t *entity.Trade) {
	if n == nil {
		return
	}
	n.NotifyTrade(ctx, event, t.Clone())
}
