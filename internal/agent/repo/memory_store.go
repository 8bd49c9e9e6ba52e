package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/inmaculada-bot/internal/core/error"
	logx "github.com/Chative-core-poc-v1/inmaculada-bot/pkg/logger"
)

// RedisMemoryStore keeps customer memory as JSON so several processes can
// share it. The TTL is refreshed on every save.
type RedisMemoryStore struct {
	rdb redis.Cmdable
	ttl time.Duration
	now func() time.Time
}

func NewRedisMemoryStore(rdb redis.Cmdable, ttl time.Duration) *RedisMemoryStore {
	return &RedisMemoryStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func (s *RedisMemoryStore) memoryKey(customerID string) string {
	return fmt.Sprintf("memory:%s", customerID)
}

func (s *RedisMemoryStore) Get(ctx context.Context, customerID string) (*model.Memory, error) {
	key := s.memoryKey(customerID)
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.NewMemory(customerID, s.now()), nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load customer memory from redis")
		return nil, errx.WrapRedis(err)
	}

	var m model.Memory
	if err := json.Unmarshal(b, &m); err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("discarding unreadable customer memory")
		return model.NewMemory(customerID, s.now()), nil
	}
	if m.Preferences == nil {
		m.Preferences = map[string]int{}
	}
	m.CustomerID = customerID
	return &m, nil
}

func (s *RedisMemoryStore) Save(ctx context.Context, m *model.Memory) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal memory: %w", err)
	}
	key := s.memoryKey(m.CustomerID)
	if err := s.rdb.Set(ctx, key, b, s.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save customer memory to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.MemoryStore = (*RedisMemoryStore)(nil)
