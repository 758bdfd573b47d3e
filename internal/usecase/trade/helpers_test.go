package trade_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/domain/repository"
	"github.com/ignatzorin/barter-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/barter-backend/internal/usecase/listing"
	"github.com/ignatzorin/barter-backend/internal/usecase/trade"
)

type recordedEvent struct {
	event   trade.Event
	tradeID uuid.UUID
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) NotifyTrade(ctx context.Context, event trade.Event, t *entity.Trade) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{event: event, tradeID: t.ID})
}

func (n *recordingNotifier) recorded() []recordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]recordedEvent(nil), n.events...)
}

type failingTrades struct {
	repository.TradeRepository
	err error
}

func (f failingTrades) Update(ctx context.Context, t *entity.Trade) error {
	return f.err
}

// failingUnitOfWork подменяет запись сделки ошибкой хранилища.
type failingUnitOfWork struct {
	store *memory.Store
	err   error
}

func (u failingUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return u.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		repos.Trades = failingTrades{TradeRepository: repos.Trades, err: u.err}
		return fn(ctx, repos)
	})
}

type fixture struct {
	store    *memory.Store
	guard    *listing.AvailabilityGuard
	notifier *recordingNotifier

	alice        *entity.User
	bob          *entity.User
	aliceListing *entity.Listing
	bobListing   *entity.Listing
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:    store,
		guard:    listing.NewAvailabilityGuard(store),
		notifier: &recordingNotifier{},
	}
	f.alice = f.createUser(t, "alice", 100)
	f.bob = f.createUser(t, "bob", 0)
	f.aliceListing = f.createListing(t, f.alice.ID, true)
	f.bobListing = f.createListing(t, f.bob.ID, true)
	return f
}

func (f *fixture) createUser(t *testing.T, name string, coins int64) *entity.User {
	t.Helper()
	u := entity.NewUser(name)
	u.TradeCoins = coins
	require.NoError(t, f.store.Repositories().Users.Create(context.Background(), u))
	return u
}

func (f *fixture) createListing(t *testing.T, ownerID uuid.UUID, available bool) *entity.Listing {
	t.Helper()
	l := entity.NewListing(ownerID, "item", decimal.NewFromInt(50))
	l.IsAvailable = available
	require.NoError(t, f.store.Repositories().Listings.Create(context.Background(), l))
	return l
}

func (f *fixture) listing(t *testing.T, id uuid.UUID) *entity.Listing {
	t.Helper()
	l, err := f.store.Repositories().Listings.FindByID(context.Background(), id)
	require.NoError(t, err)
	return l
}

func (f *fixture) user(t *testing.T, id uuid.UUID) *entity.User {
	t.Helper()
	u, err := f.store.Repositories().Users.FindByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (f *fixture) trade(t *testing.T, id uuid.UUID) *entity.Trade {
	t.Helper()
	tr, err := f.store.Repositories().Trades.FindByID(context.Background(), id)
	require.NoError(t, err)
	return tr
}

func (f *fixture) proposeUC() *trade.ProposeTradeUseCase {
	return trade.NewProposeTradeUseCase(f.store)
}

func (f *fixture) acceptUC() *trade.AcceptTradeUseCase {
	return trade.NewAcceptTradeUseCase(f.store, f.guard, f.notifier, 0)
}

func (f *fixture) completeUC() *trade.CompleteTradeUseCase {
	return trade.NewCompleteTradeUseCase(f.store, f.notifier)
}

// propose создаёт сделку alice -> bob.
func (f *fixture) propose(t *testing.T, coins int64) *entity.Trade {
	t.Helper()
	created, err := f.proposeUC().Execute(context.Background(), trade.ProposeTradeInput{
		ProposerID:        f.alice.ID,
		ReceiverID:        f.bob.ID,
		ProposerListingID: f.aliceListing.ID,
		ReceiverListingID: f.bobListing.ID,
		TradeCoinAmount:   coins,
	})
	require.NoError(t, err)
	return created
}

func (f *fixture) accept(t *testing.T, tradeID uuid.UUID) *entity.Trade {
	t.Helper()
	accepted, err := f.acceptUC().Execute(context.Background(), trade.AcceptTradeInput{TradeID: tradeID, ActorID: f.bob.ID})
	require.NoError(t, err)
	return accepted
}
