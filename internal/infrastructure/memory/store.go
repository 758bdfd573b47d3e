// Package memory реализует хранилище в памяти с транзакционной семантикой
// UnitOfWork. Используется в тестах и при STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/barter-backend/internal/domain/entity"
	"github.com/ignatzorin/barter-backend/internal/domain/repository"
)

type ratingKey struct {
	raterID     uuid.UUID
	ratedUserID uuid.UUID
	tradeID     uuid.UUID
}

type state struct {
	trades     map[uuid.UUID]*entity.Trade
	listings   map[uuid.UUID]*entity.Listing
	users      map[uuid.UUID]*entity.User
	ratings    []*entity.Rating
	ratingKeys map[ratingKey]struct{}
}

func newState() *state {
	return &state{
		trades:     make(map[uuid.UUID]*entity.Trade),
		listings:   make(map[uuid.UUID]*entity.Listing),
		users:      make(map[uuid.UUID]*entity.User),
		ratingKeys: make(map[ratingKey]struct{}),
	}
}

// clone копирует карты; сущности неизменяемы внутри состояния,
// поэтому достаточно копировать указатели.
func (s *state) clone() *state {
	c := &state{
		trades:     make(map[uuid.UUID]*entity.Trade, len(s.trades)),
		listings:   make(map[uuid.UUID]*entity.Listing, len(s.listings)),
		users:      make(map[uuid.UUID]*entity.User, len(s.users)),
		ratings:    append([]*entity.Rating(nil), s.ratings...),
		ratingKeys: make(map[ratingKey]struct{}, len(s.ratingKeys)),
	}
	for k, v := range s.trades {
		c.trades[k] = v
	}
	for k, v := range s.listings {
		c.listings[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k := range s.ratingKeys {
		c.ratingKeys[k] = struct{}{}
	}
	return c
}

// access даёт репозиторию доступ к состоянию на чтение или запись.
type access func(write bool, fn func(st *state) error) error

// Store сериализует транзакции: каждая работает с копией состояния,
// которая заменяет зафиксированное только при успехе.
type Store struct {
	txMu      sync.Mutex
	mu        sync.RWMutex
	committed *state
}

func NewStore() *Store {
	return &Store{committed: newState()}
}

// Repositories возвращает репозитории вне транзакции.
func (s *Store) Repositories() repository.Repositories {
	return newRepositories(s.committedAccess)
}

func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	work := s.committed.clone()
	s.mu.RUnlock()

	txAccess := func(_ bool, f func(st *state) error) error {
		return f(work)
	}
	if err := fn(ctx, newRepositories(txAccess)); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed = work
	s.mu.Unlock()
	return nil
}

// Ping нужен проверке здоровья; хранилище в памяти всегда доступно.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) committedAccess(write bool, fn func(st *state) error) error {
	if write {
		s.txMu.Lock()
		defer s.txMu.Unlock()
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn(s.committed)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.committed)
}

func newRepositories(a access) repository.Repositories {
	return repository.Repositories{
		Trades:   &tradeRepository{access: a},
		Listings: &listingRepository{access: a},
		Users:    &userRepository{access: a},
		Ratings:  &ratingRepository{access: a},
	}
}
