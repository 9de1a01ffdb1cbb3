package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockListClient struct{ mock.Mock }

func (m *mockListClient) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	args := m.Called(key, values[0])
	return redis.NewIntResult(1, args.Error(0))
}

func (m *mockListClient) LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd {
	args := m.Called(key, start, stop)
	return redis.NewStatusResult("OK", args.Error(0))
}

func (m *mockListClient) LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	args := m.Called(key, start, stop)
	return redis.NewStringSliceResult(args.Get(0).([]string), args.Error(1))
}

func (m *mockListClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(keys[0])
	return redis.NewIntResult(1, args.Error(0))
}

type memoryRing struct{ lines []string }

func (r *memoryRing) Push(_ context.Context, line string) error {
	r.lines = append(r.lines, line)
	return nil
}
func (r *memoryRing) Recent(_ context.Context, _ int64) ([]string, error) { return r.lines, nil }
func (r *memoryRing) Clear(_ context.Context) error                        { r.lines = nil; return nil }

func fixedClock() time.Time { return time.Date(2026, 1, 2, 13, 4, 5, 0, time.UTC) }

func TestSink_Log(t *testing.T) {
	Init()
	ctx := context.Background()

	t.Run("string is timestamped", func(t *testing.T) {
		ring := &memoryRing{}
		sink := NewSink(ring, nil)
		sink.now = fixedClock

		sink.Log(ctx, "Using cached OAuth token")

		require.Len(t, ring.lines, 1)
		assert.Equal(t, "13:04:05 | Using cached OAuth token", ring.lines[0])
	})

	t.Run("structured data is rendered as json", func(t *testing.T) {
		ring := &memoryRing{}
		sink := NewSink(ring, nil)
		sink.now = fixedClock

		sink.Log(ctx, map[string]string{"error": "invalid_client"})

		require.Len(t, ring.lines, 1)
		assert.Equal(t, "13:04:05 | {\n    \"error\": \"invalid_client\"\n}", ring.lines[0])
	})

	t.Run("disabled sink drops everything", func(t *testing.T) {
		ring := &memoryRing{}
		sink := NewSink(ring, func(context.Context) bool { return false })

		sink.Log(ctx, "ignored")

		assert.Empty(t, ring.lines)
	})

	t.Run("nil sink is safe", func(t *testing.T) {
		var sink *Sink
		assert.NotPanics(t, func() { sink.Log(ctx, "x") })
	})
}

func TestRedisRing(t *testing.T) {
	ctx := context.Background()

	t.Run("push trims to capacity", func(t *testing.T) {
		client := new(mockListClient)
		client.On("LPush", "logs", "line").Return(nil).Once()
		client.On("LTrim", "logs", int64(0), int64(299)).Return(nil).Once()

		ring := NewRedisRing(client, "logs", 300)
		assert.NoError(t, ring.Push(ctx, "line"))
		client.AssertExpectations(t)
	})

	t.Run("push error is wrapped", func(t *testing.T) {
		client := new(mockListClient)
		client.On("LPush", "logs", "line").Return(errors.New("down")).Once()

		ring := NewRedisRing(client, "logs", 300)
		err := ring.Push(ctx, "line")
		assert.Error(t, err)
		client.AssertNotCalled(t, "LTrim", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("recent returns oldest first", func(t *testing.T) {
		client := new(mockListClient)
		client.On("LRange", DefaultRingKey, int64(0), int64(2)).Return([]string{"c", "b", "a"}, nil).Once()

		ring := NewRedisRing(client, "", 300)
		lines, err := ring.Recent(ctx, 3)
		assert.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, lines)
	})

	t.Run("recent caps n at capacity", func(t *testing.T) {
		client := new(mockListClient)
		client.On("LRange", "logs", int64(0), int64(9)).Return([]string{}, nil).Once()

		ring := NewRedisRing(client, "logs", 10)
		_, err := ring.Recent(ctx, 0)
		assert.NoError(t, err)
		client.AssertExpectations(t)
	})
}
