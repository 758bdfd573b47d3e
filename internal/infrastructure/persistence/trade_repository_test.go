package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/domain/valueobject"
)

func TestTradeRow_ChainIsStoredAsJSON(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	chain := []entity.ChainLink{
		{UserID: a, ListingID: uuid.New(), DeclaredReceiverID: b},
		{UserID: b, ListingID: uuid.New(), DeclaredReceiverID: c},
		{UserID: c, ListingID: uuid.New(), DeclaredReceiverID: a},
	}
	tr := entity.NewChainTrade(a, chain, "круг")

	row, err := newTradeRow(tr)
	require.NoError(t, err)
	assert.Equal(t, "multi-party", row.TradeType)
	assert.False(t, row.ReceiverID.Valid)
	assert.False(t, row.ProposerListingID.Valid)
	require.True(t, row.TradeChain.Valid)
	assert.Contains(t, row.TradeChain.String(), `"user_id":"`+a.String()+`"`)

	back, err := row.toEntity()
	require.NoError(t, err)
	links, ok := back.Chain()
	require.True(t, ok)
	assert.Equal(t, chain, links)
	assert.Nil(t, back.ReceiverID)
}

func TestTradeRow_DirectKeepsOptionalFields(t *testing.T) {
	tr, err := entity.NewDirectTrade(uuid.New(), uuid.New(), uuid.New(), uuid.New(), 15, "")
	require.NoError(t, err)
	loc := "Парк Горького"
	require.NoError(t, tr.Accept(*tr.ReceiverID, entity.AcceptDetails{
		MeetupLocation: &loc,
		IsEscrow:       true,
		EscrowPeriod:   time.Hour,
	}, time.Now().UTC()))

	row, err := newTradeRow(tr)
	require.NoError(t, err)
	assert.False(t, row.TradeChain.Valid)
	assert.False(t, row.MeetupTime.Valid)

	back, err := row.toEntity()
	require.NoError(t, err)
	assert.Equal(t, valueobject.TradeStatusAccepted, back.Status)
	assert.Equal(t, tr.Participants, back.Participants)
	assert.Equal(t, valueobject.Coins(15), back.TradeCoinAmount)
	require.NotNil(t, back.MeetupLocation)
	assert.Equal(t, loc, *back.MeetupLocation)
	assert.Nil(t, back.MeetupTime)
	assert.Equal(t, tr.EscrowReleaseDate, back.EscrowReleaseDate)
}

func TestUserRow_BadgesRoundTrip(t *testing.T) {
	u := entity.NewUser("alice")
	u.AddBadges(valueobject.BadgeTopRated, valueobject.BadgeExperiencedTrader)

	back := newUserRow(u).toEntity()
	assert.Equal(t, u.Badges, back.Badges)
}
