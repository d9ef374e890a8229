package trace

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSink appends Events to a capped Redis stream, giving operators a
// short window of cross-process trace history without standing up
// Postgres.
type RedisSink struct {
	client    *redis.Client
	streamKey string
	maxLen    int64
}

// NewRedisSink dials addr and verifies connectivity before returning.
func NewRedisSink(addr, password string, db int, streamKey string) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("trace redis sink: ping: %w", err)
	}

	return &RedisSink{client: client, streamKey: streamKey, maxLen: 100_000}, nil
}

// Append XADDs e as a single JSON field, trimming the stream to maxLen
// entries (approximately — MAXLEN ~).
func (s *RedisSink) Append(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.streamKey,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]interface{}{"event": payload},
	}).Err()
}

// Close closes the underlying client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
