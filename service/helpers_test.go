package service

import (
	"context"
	"database/sql"
	"einvoice-gateway/model"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// memTokenRepo is an in-memory ITokenRepository with the same ordering
// semantics as the SQL one.
type memTokenRepo struct {
	mu     sync.Mutex
	rows   []model.GatewayToken
	nextID int64
}

func (r *memTokenRepo) GetLatestValid(_ context.Context, now time.Time) (*model.GatewayToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].ExpiresAt.After(now) {
			row := r.rows[i]
			return &row, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memTokenRepo) Create(_ context.Context, token *model.GatewayToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	token.ID = r.nextID
	token.CreatedAt = time.Now().UTC()
	r.rows = append(r.rows, *token)
	return nil
}

func (r *memTokenRepo) DeleteOlderThan(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []model.GatewayToken
	for _, row := range r.rows {
		if row.ID >= id {
			kept = append(kept, row)
		}
	}
	n := int64(len(r.rows) - len(kept))
	r.rows = kept
	return n, nil
}

func (r *memTokenRepo) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = nil
	return nil
}

func (r *memTokenRepo) seed(token string, expiresAt time.Time) {
	_ = r.Create(context.Background(), &model.GatewayToken{AccessToken: token, ExpiresAt: expiresAt})
}

func (r *memTokenRepo) snapshot() []model.GatewayToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.GatewayToken(nil), r.rows...)
}

// sharedLock plays the role of the Redis key; each worker gets its own view.
type sharedLock struct {
	mu    sync.Mutex
	owner string
}

type lockView struct {
	lock *sharedLock
	name string
}

func (v *lockView) TryAcquire(context.Context) (bool, error) {
	v.lock.mu.Lock()
	defer v.lock.mu.Unlock()
	if v.lock.owner != "" {
		return false, nil
	}
	v.lock.owner = v.name
	return true, nil
}

func (v *lockView) Claim(context.Context) error {
	v.lock.mu.Lock()
	defer v.lock.mu.Unlock()
	v.lock.owner = v.name
	return nil
}

func (v *lockView) Release(context.Context) error {
	v.lock.mu.Lock()
	defer v.lock.mu.Unlock()
	if v.lock.owner == v.name {
		v.lock.owner = ""
	}
	return nil
}

type mockLocker struct{ mock.Mock }

func (m *mockLocker) TryAcquire(ctx context.Context) (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *mockLocker) Claim(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *mockLocker) Release(ctx context.Context) error {
	return m.Called().Error(0)
}

type staticSettings struct {
	host   string
	values map[string]string
}

func (s *staticSettings) Get(_ context.Context, key, def string) string {
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

func (s *staticSettings) APIHost(context.Context) string { return s.host }

func newSettings(host string, overrides map[string]string) *staticSettings {
	values := map[string]string{
		KeyClientID:      "client-1",
		KeyClientSecret1: "primary",
		KeyClientSecret2: "secondary",
	}
	for k, v := range overrides {
		values[k] = v
	}
	return &staticSettings{host: host, values: values}
}

type mockTokenProvider struct{ mock.Mock }

func (m *mockTokenProvider) GetToken(ctx context.Context, forceNew bool) (string, error) {
	args := m.Called(ctx, forceNew)
	return args.String(0), args.Error(1)
}

// failingDoer always reports a transport error.
type failingDoer struct{ err error }

func (d failingDoer) Do(*http.Request) (*http.Response, error) { return nil, d.err }

// scriptedDoer delegates each call to the next step in order.
type scriptedDoer struct {
	mu    sync.Mutex
	steps []func(*http.Request) (*http.Response, error)
	calls []*http.Request
}

func (d *scriptedDoer) Do(req *http.Request) (*http.Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, req)
	if len(d.steps) == 0 {
		return nil, errors.New("unexpected request")
	}
	step := d.steps[0]
	d.steps = d.steps[1:]
	return step(req)
}

type recordingSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *recordingSink) Log(_ context.Context, msg any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if str, ok := msg.(string); ok {
		s.lines = append(s.lines, str)
	}
}

func (s *recordingSink) contains(line string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lines {
		if l == line {
			return true
		}
	}
	return false
}
