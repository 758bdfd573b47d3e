package valueobject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/ignatzorin/barter-backend/internal/domain/valueobject"
)

func TestTradeStatus_CanTransitionTo(t *testing.T) {
	allowed := map[[2]valueobject.TradeStatus]bool{
		{valueobject.TradeStatusProposed, valueobject.TradeStatusAccepted}:  true,
		{valueobject.TradeStatusProposed, valueobject.TradeStatusRejected}:  true,
		{valueobject.TradeStatusProposed, valueobject.TradeStatusCancelled}: true,
		{valueobject.TradeStatusAccepted, valueobject.TradeStatusCompleted}: true,
	}

	for _, from := range valueobject.AllTradeStatuses() {
		for _, to := range valueobject.AllTradeStatuses() {
			assert.Equal(t, allowed[[2]valueobject.TradeStatus{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestTradeStatus_TerminalStatesHaveNoExits(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		from := rapid.SampledFrom(valueobject.AllTradeStatuses()).Draw(t, "from")
		to := rapid.SampledFrom(valueobject.AllTradeStatuses()).Draw(t, "to")

		if from.IsTerminal() && from.CanTransitionTo(to) {
			t.Fatalf("terminal status %s allows transition to %s", from, to)
		}
		if from.CanTransitionTo(to) && to == valueobject.TradeStatusProposed {
			t.Fatalf("%s must never return to proposed", from)
		}
	})
}

func TestNewTradeStatus(t *testing.T) {
	s, err := valueobject.NewTradeStatus("accepted")
	assert.NoError(t, err)
	assert.Equal(t, valueobject.TradeStatusAccepted, s)

	_, err = valueobject.NewTradeStatus("archived")
	assert.Error(t, err)
}

func TestNewCoins_RejectsNegative(t *testing.T) {
	_, err := valueobject.NewCoins(-1)
	assert.Error(t, err)

	c, err := valueobject.NewCoins(0)
	assert.NoError(t, err)
	assert.True(t, c.IsZero())
}
