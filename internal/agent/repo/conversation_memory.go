package repo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
)

const defaultMaxConversations = 10000

// InMemoryConversationRepository is the history store used when Redis is
// not configured. Turns are capped per customer; a conversation idle for
// longer than the TTL expires and the least recently used one is dropped
// when maxCustomers is reached.
type InMemoryConversationRepository struct {
	maxTurns int

	mu    sync.Mutex
	turns *expirable.LRU[string, []model.Turn]
}

// NewInMemoryConversationRepository keeps conversations forever when
// ttl <= 0.
func NewInMemoryConversationRepository(maxTurns, maxCustomers int, ttl time.Duration) *InMemoryConversationRepository {
	if maxCustomers <= 0 {
		maxCustomers = defaultMaxConversations
	}
	return &InMemoryConversationRepository{
		maxTurns: maxTurns,
		turns:    expirable.NewLRU[string, []model.Turn](maxCustomers, nil, ttl),
	}
}

func (r *InMemoryConversationRepository) AddTurn(ctx context.Context, customerID string, turn model.Turn) error {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, _ := r.turns.Get(customerID)
	ts := make([]model.Turn, 0, len(prev)+1)
	ts = append(append(ts, prev...), turn)
	if r.maxTurns > 0 && len(ts) > r.maxTurns {
		ts = ts[len(ts)-r.maxTurns:]
	}
	r.turns.Add(customerID, ts)
	return nil
}

func (r *InMemoryConversationRepository) Recent(ctx context.Context, customerID string, limit int) ([]model.Turn, error) {
	ts, _ := r.turns.Get(customerID)
	if limit < len(ts) {
		ts = ts[len(ts)-max(limit, 0):]
	}
	return append([]model.Turn{}, ts...), nil
}

func (r *InMemoryConversationRepository) Clear(ctx context.Context, customerID string) error {
	r.turns.Remove(customerID)
	return nil
}

// Len returns the number of conversations held.
func (r *InMemoryConversationRepository) Len() int {
	return r.turns.Len()
}

var _ model.ConversationRepository = (*InMemoryConversationRepository)(nil)
