package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"asnode/internal/as/models"
	"asnode/pkg/platform/sentinel"
)

const defaultKeyPrefix = "as"

// RedisStore persists pending messages in Redis. Messages are plain keys and
// the height index is a single sorted set scored by height, so a request id
// can only ever sit in one bucket. Durability follows the server's AOF policy.
type RedisStore struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces keys, typically by node id.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithClaimRetention sets the TTL of processed markers.
func WithClaimRetention(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		if d > 0 {
			s.retention = d
		}
	}
}

// NewRedisStore constructs a Redis-backed pending store.
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client:    client,
		prefix:    defaultKeyPrefix,
		retention: DefaultRetention,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) messageKey(requestID string) string {
	return s.prefix + ":pending:msg:" + requestID
}

func (s *RedisStore) heightsKey() string {
	return s.prefix + ":pending:heights"
}

func (s *RedisStore) claimKey(requestID string) string {
	return s.prefix + ":processed:" + requestID
}

// Put writes the message and its bucket in one MULTI/EXEC. ZADD replaces
// the score of an existing member, which moves it between buckets.
func (s *RedisStore) Put(ctx context.Context, msg *models.TransportMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal pending message: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.messageKey(msg.RequestID), payload, 0)
		pipe.ZAdd(ctx, s.heightsKey(), redis.Z{Score: float64(msg.Height), Member: msg.RequestID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("put pending message: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, requestID string) (*models.TransportMessage, error) {
	raw, err := s.client.Get(ctx, s.messageKey(requestID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pending message: %w", err)
	}
	var msg models.TransportMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal pending message: %w", err)
	}
	return &msg, nil
}

func (s *RedisStore) Drain(ctx context.Context, from, to int64) ([]string, error) {
	if to < from {
		return nil, nil
	}
	ids, err := s.client.ZRangeByScore(ctx, s.heightsKey(), &redis.ZRangeBy{
		Min: strconv.FormatInt(from, 10),
		Max: strconv.FormatInt(to, 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("drain pending heights: %w", err)
	}
	return ids, nil
}

func (s *RedisStore) Remove(ctx context.Context, requestID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.messageKey(requestID))
		pipe.ZRem(ctx, s.heightsKey(), requestID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove pending message: %w", err)
	}
	return nil
}

func (s *RedisStore) Claim(ctx context.Context, requestID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.claimKey(requestID), "1", s.retention).Result()
	if err != nil {
		return false, fmt.Errorf("claim request: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Claimed(ctx context.Context, requestID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.claimKey(requestID)).Result()
	if err != nil {
		return false, fmt.Errorf("check claim: %w", err)
	}
	return n > 0, nil
}
