package memory

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/metrics"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/inmaculada-bot/pkg/logger"
)

const (
	defaultMaxCustomers = 10000

	evictIdle     = "idle"
	evictCapacity = "capacity"
	evictClosed   = "closed"
)

type entry struct {
	record  *model.Memory
	savedAt time.Time
}

// InMemoryStore holds records in process. A record not saved for longer
// than the TTL expires, and the least recently used record is dropped when
// the store is full.
type InMemoryStore struct {
	ttl    time.Duration
	now    func() time.Time
	closed atomic.Bool
	cache  *expirable.LRU[string, entry]
}

// NewInMemoryStore keeps records forever when ttl <= 0.
func NewInMemoryStore(ttl time.Duration, maxSize int) *InMemoryStore {
	if maxSize <= 0 {
		maxSize = defaultMaxCustomers
	}
	s := &InMemoryStore{ttl: ttl, now: time.Now}
	s.cache = expirable.NewLRU[string, entry](maxSize, s.onEvict, ttl)
	return s
}

// onEvict runs under the cache lock and must not call back into it.
func (s *InMemoryStore) onEvict(customerID string, e entry) {
	reason := evictCapacity
	switch {
	case s.closed.Load():
		reason = evictClosed
	case s.ttl > 0 && time.Since(e.savedAt) >= s.ttl:
		reason = evictIdle
	}
	metrics.MemoryEvictions.WithLabelValues(reason).Inc()
	metrics.MemoryRecords.Dec()
	if reason == evictIdle {
		logx.Debug().Str("customer_id", customerID).Msg("idle customer memory evicted")
	}
}

// Get returns a copy of the customer's record, or a new one.
func (s *InMemoryStore) Get(ctx context.Context, customerID string) (*model.Memory, error) {
	if e, ok := s.cache.Get(customerID); ok {
		return e.record.Clone(), nil
	}
	return model.NewMemory(customerID, s.now()), nil
}

// Save stores a copy of m and restarts its idle timer.
func (s *InMemoryStore) Save(ctx context.Context, m *model.Memory) error {
	fresh := !s.cache.Contains(m.CustomerID)
	s.cache.Add(m.CustomerID, entry{record: m.Clone(), savedAt: time.Now()})
	if fresh {
		metrics.MemoryRecords.Inc()
	}
	return nil
}

// Len returns the number of records held, including expired ones not yet
// swept.
func (s *InMemoryStore) Len() int {
	return s.cache.Len()
}

// Close drops every record.
func (s *InMemoryStore) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.cache.Purge()
	}
	return nil
}

var _ model.MemoryStore = (*InMemoryStore)(nil)
