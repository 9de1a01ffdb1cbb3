// file: logger/sink.go

package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRingKey is the Redis list shared by every worker for the gateway trail.
const DefaultRingKey = "gateway:logs"

// Ring stores the most recent diagnostic lines.
type Ring interface {
	Push(ctx context.Context, line string) error
	Recent(ctx context.Context, n int64) ([]string, error)
	Clear(ctx context.Context) error
}

// Sink is the diagnostic trail of the gateway client. Every line goes to
// logrus and, when a ring is configured, to the shared capped ring.
type Sink struct {
	ring    Ring
	enabled func(ctx context.Context) bool
	now     func() time.Time
}

// NewSink creates a Sink. A nil enabled func means always on; a nil ring
// means lines only reach logrus.
func NewSink(ring Ring, enabled func(ctx context.Context) bool) *Sink {
	return &Sink{ring: ring, enabled: enabled, now: time.Now}
}

// Log records msg. Strings are written as-is, errors by message, anything
// else as indented JSON. It is a no-op when diagnostics are disabled.
func (s *Sink) Log(ctx context.Context, msg any) {
	if s == nil {
		return
	}
	if s.enabled != nil && !s.enabled(ctx) {
		return
	}

	text := render(msg)
	Log.WithField("component", "gateway").Info(text)

	if s.ring == nil {
		return
	}
	line := s.now().Format("15:04:05") + " | " + text
	if err := s.ring.Push(ctx, line); err != nil {
		Log.WithError(err).Warn("Failed to persist diagnostic log line")
	}
}

// Recent returns up to n of the newest lines, oldest first.
func (s *Sink) Recent(ctx context.Context, n int64) ([]string, error) {
	if s.ring == nil {
		return []string{}, nil
	}
	return s.ring.Recent(ctx, n)
}

func (s *Sink) Clear(ctx context.Context) error {
	if s.ring == nil {
		return nil
	}
	return s.ring.Clear(ctx)
}

func render(msg any) string {
	switch v := msg.(type) {
	case string:
		return v
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	}
	b, err := json.MarshalIndent(msg, "", "    ")
	if err != nil {
		return fmt.Sprintf("%+v", msg)
	}
	return string(b)
}

// IListClient is the slice of the Redis API the ring needs.
type IListClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisRing keeps the newest Capacity lines in a Redis list.
type RedisRing struct {
	client   IListClient
	key      string
	capacity int64
}

func NewRedisRing(client IListClient, key string, capacity int64) *RedisRing {
	if key == "" {
		key = DefaultRingKey
	}
	return &RedisRing{client: client, key: key, capacity: capacity}
}

func (r *RedisRing) Push(ctx context.Context, line string) error {
	if err := r.client.LPush(ctx, r.key, line).Err(); err != nil {
		return fmt.Errorf("failed to push log line: %w", err)
	}
	if err := r.client.LTrim(ctx, r.key, 0, r.capacity-1).Err(); err != nil {
		return fmt.Errorf("failed to trim log ring: %w", err)
	}
	return nil
}

func (r *RedisRing) Recent(ctx context.Context, n int64) ([]string, error) {
	if n <= 0 || n > r.capacity {
		n = r.capacity
	}
	lines, err := r.client.LRange(ctx, r.key, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read log ring: %w", err)
	}
	// The list is newest-first.
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines, nil
}

func (r *RedisRing) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
