package audiocache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "voice:audio:"

// RedisStore keeps each blob as a hash with EXPIRE set to the TTL.
// The stored creation time is checked on read as well, so a key whose
// expiry was extended elsewhere still ages out.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	clock  func() time.Time
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl, clock: time.Now}
}

func (s *RedisStore) key(id string) string { return keyPrefix + id }

func (s *RedisStore) Put(ctx context.Context, data []byte, mediaType string) (string, error) {
	id := newID()
	key := s.key(id)

	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key,
			"data", data,
			"media_type", mediaType,
			"created_at", strconv.FormatInt(s.clock().UnixMilli(), 10),
		)
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("store audio: %w", err)
	}
	putsTotal.WithLabelValues("redis").Inc()
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Blob, error) {
	vals, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Blob{}, fmt.Errorf("load audio: %w", err)
	}
	b, ok := s.decode(vals)
	if !ok {
		observeLookup("redis", ErrNotFound)
		return Blob{}, ErrNotFound
	}
	observeLookup("redis", nil)
	return b, nil
}

func (s *RedisStore) decode(vals map[string]string) (Blob, bool) {
	data, ok := vals["data"]
	if !ok {
		return Blob{}, false
	}
	ms, err := strconv.ParseInt(vals["created_at"], 10, 64)
	if err != nil {
		return Blob{}, false
	}
	created := time.UnixMilli(ms)
	if s.clock().Sub(created) > s.ttl {
		return Blob{}, false
	}
	mediaType := vals["media_type"]
	if mediaType == "" {
		mediaType = "audio/mpeg"
	}
	return Blob{Data: []byte(data), MediaType: mediaType, CreatedAt: created}, true
}
