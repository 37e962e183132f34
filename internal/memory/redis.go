package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "recallchat:memory:"

// RedisStore keeps one list per user in Redis.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := redis.NewClient(opt)
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return NewRedisStoreFromClient(client), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func redisKey(userID string) string {
	return redisKeyPrefix + userID
}

// Write appends rec to the user's list.
func (s *RedisStore) Write(ctx context.Context, rec Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	rec = prepare(rec, s.now)

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := s.client.RPush(ctx, redisKey(rec.UserID), data).Err(); err != nil {
		return &BackendError{Op: "failed to store record", Err: err}
	}
	return nil
}

// Recall loads the user's list and ranks it against q.Text.
func (s *RedisStore) Recall(ctx context.Context, q Query) ([]Match, error) {
	if q.UserID == "" {
		return nil, ErrEmptyUser
	}

	raw, err := s.client.LRange(ctx, redisKey(q.UserID), 0, -1).Result()
	if err != nil {
		return nil, &BackendError{Op: "failed to load records", Err: err}
	}

	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			// skip entries written by something else
			continue
		}
		records = append(records, rec)
	}

	return rank(records, q), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
