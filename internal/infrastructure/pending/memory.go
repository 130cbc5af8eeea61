// Package pending implements the pending transaction store: the advisory,
// in-flight map of booking intents keyed by transaction UUID.
package pending

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/suyogshakya/rentwheels/internal/domain"
)

// MemoryStore is the default in-process backend. Entries are lost on process
// restart; the callback handler then reports UNKNOWN_TRANSACTION, which is an
// accepted limitation of the design.
type MemoryStore struct {
	mu      sync.RWMutex
	intents map[string]*domain.BookingIntent
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		intents: make(map[string]*domain.BookingIntent),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(ctx context.Context, intent *domain.BookingIntent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if intent.CreatedAt.IsZero() {
		intent.CreatedAt = s.now()
	}
	s.intents[intent.TransactionID] = intent
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, transactionID string) (*domain.BookingIntent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	intent, ok := s.intents[transactionID]
	if !ok {
		return nil, domain.NewUnknownTransactionError(transactionID)
	}
	return intent, nil
}

func (s *MemoryStore) Delete(ctx context.Context, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.intents, transactionID)
	return nil
}

func (s *MemoryStore) FindByAmount(ctx context.Context, amount, tolerance float64) ([]*domain.BookingIntent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []*domain.BookingIntent
	for _, intent := range s.intents {
		if math.Abs(intent.TotalAmount-amount) <= tolerance {
			matches = append(matches, intent)
		}
	}
	return matches, nil
}

// Sweep removes and returns every intent older than the cutoff. The caller
// reconciles them against the gateway before final discard.
func (s *MemoryStore) Sweep(ctx context.Context, olderThan time.Duration) ([]*domain.BookingIntent, error) {
	cutoff := s.now().Add(-olderThan)

	s.mu.Lock()
	defer s.mu.Unlock()
	var stale []*domain.BookingIntent
	for id, intent := range s.intents {
		if intent.CreatedAt.Before(cutoff) {
			stale = append(stale, intent)
			delete(s.intents, id)
		}
	}
	return stale, nil
}

// Len reports the number of held intents.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.intents)
}
