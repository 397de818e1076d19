package alert

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// lastSentHash is the Redis hash holding last-sent unix timestamps
// keyed by "service:subject".
const lastSentHash = "newsmon:alert_last_sent"

// RedisStore mirrors gate state into a Redis hash so a restart can
// warm-start its cooldowns.
type RedisStore struct {
	client  *redis.Client
	timeout time.Duration
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, timeout: 5 * time.Second}
}

func (s *RedisStore) Load() (map[string]time.Time, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	entries, err := s.client.HGetAll(ctx, lastSentHash).Result()
	if err != nil {
		return nil, err
	}
	state := make(map[string]time.Time, len(entries))
	for key, raw := range entries {
		sentAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			continue
		}
		state[key] = sentAt
	}
	return state, nil
}

func (s *RedisStore) Save(key string, sentAt time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	return s.client.HSet(ctx, lastSentHash, key, sentAt.UTC().Format(time.RFC3339)).Err()
}
