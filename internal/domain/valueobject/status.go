package valueobject

import "github.com/ignatzorin/barter-backend/internal/pkg/apperror"

type TradeStatus string

const (
	TradeStatusProposed  TradeStatus = "proposed"
	TradeStatusAccepted  TradeStatus = "accepted"
	TradeStatusRejected  TradeStatus = "rejected"
	TradeStatusCompleted TradeStatus = "completed"
	TradeStatusCancelled TradeStatus = "cancelled"
)

var tradeTransitions = map[TradeStatus][]TradeStatus{
	TradeStatusProposed:  {TradeStatusAccepted, TradeStatusRejected, TradeStatusCancelled},
	TradeStatusAccepted:  {TradeStatusCompleted},
	TradeStatusRejected:  {},
	TradeStatusCompleted: {},
	TradeStatusCancelled: {},
}

func AllTradeStatuses() []TradeStatus {
	return []TradeStatus{
		TradeStatusProposed,
		TradeStatusAccepted,
		TradeStatusRejected,
		TradeStatusCompleted,
		TradeStatusCancelled,
	}
}

func (s TradeStatus) IsValid() bool {
	_, ok := tradeTransitions[s]
	return ok
}

// IsTerminal сообщает, что из статуса нет переходов.
func (s TradeStatus) IsTerminal() bool {
	return s.IsValid() && len(tradeTransitions[s]) == 0
}

func (s TradeStatus) CanTransitionTo(newStatus TradeStatus) bool {
	for _, status := range tradeTransitions[s] {
		if status == newStatus {
			return true
		}
	}
	return false
}

func NewTradeStatus(status string) (TradeStatus, error) {
	s := TradeStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус сделки")
	}
	return s, nil
}

type TradeType string

const (
	TradeTypeDirect     TradeType = "direct"
	TradeTypeMultiParty TradeType = "multi-party"
)

func (t TradeType) IsValid() bool {
	return t == TradeTypeDirect || t == TradeTypeMultiParty
}
