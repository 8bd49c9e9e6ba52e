package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/inmaculada-bot/internal/core/error"
	logx "github.com/Chative-core-poc-v1/inmaculada-bot/pkg/logger"
)

// RedisConversationRepository keeps each customer's turns in a capped list.
type RedisConversationRepository struct {
	rdb      redis.Cmdable
	ttl      time.Duration
	maxTurns int64
}

func NewRedisConversationRepository(rdb redis.Cmdable, ttl time.Duration, maxTurns int) *RedisConversationRepository {
	return &RedisConversationRepository{rdb: rdb, ttl: ttl, maxTurns: int64(maxTurns)}
}

func (r *RedisConversationRepository) conversationKey(customerID string) string {
	return fmt.Sprintf("conversation:%s:turns", customerID)
}

func (r *RedisConversationRepository) AddTurn(ctx context.Context, customerID string, turn model.Turn) error {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	b, err := json.Marshal(turn)
	if err != nil {
		logx.Error().Err(err).Str("customerID", customerID).Msg("failed to marshal turn")
		return fmt.Errorf("marshal turn: %w", err)
	}
	key := r.conversationKey(customerID)

	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, key, b)
	if r.maxTurns > 0 {
		pipe.LTrim(ctx, key, -r.maxTurns, -1)
	}
	// extend TTL on touch
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to append turn to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisConversationRepository) Recent(ctx context.Context, customerID string, limit int) ([]model.Turn, error) {
	if limit <= 0 {
		return []model.Turn{}, nil
	}
	key := r.conversationKey(customerID)

	rows, err := r.rdb.LRange(ctx, key, -int64(limit), -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.Turn{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load conversation history from redis")
		return nil, errx.WrapRedis(err)
	}

	turns := make([]model.Turn, 0, len(rows))
	for i, s := range rows {
		var t model.Turn
		if err := json.Unmarshal([]byte(s), &t); err != nil {
			logx.Error().Err(err).Str("customerID", customerID).Int("index", i).Msg("failed to unmarshal turn")
			return nil, fmt.Errorf("unmarshal turn at index %d: %w", i, err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (r *RedisConversationRepository) Clear(ctx context.Context, customerID string) error {
	key := r.conversationKey(customerID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete conversation history from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.ConversationRepository = (*RedisConversationRepository)(nil)
