package service

import (
	"context"
	"database/sql"
	"einvoice-gateway/logger"
	"einvoice-gateway/metrics"
	"einvoice-gateway/model"
	"einvoice-gateway/repository"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const oauthScope = "InvoicingAPI"

// HTTPDoer sends gateway requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Diagnostics receives the gateway trail. *logger.Sink satisfies it.
type Diagnostics interface {
	Log(ctx context.Context, msg any)
}

type nopDiagnostics struct{}

func (nopDiagnostics) Log(context.Context, any) {}

// TokenProvider hands out bearer tokens for gateway calls.
type TokenProvider interface {
	GetToken(ctx context.Context, forceNew bool) (string, error)
}

type TokenOptions struct {
	Timeout      time.Duration
	LockWait     time.Duration
	ExpiryMargin time.Duration
}

// TokenService obtains, caches and refreshes gateway OAuth tokens.
type TokenService struct {
	repo     repository.ITokenRepository
	locker   RefreshLocker
	settings SettingsProvider
	client   HTTPDoer
	sink     Diagnostics
	metrics  *metrics.Metrics
	opts     TokenOptions

	group singleflight.Group
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	// joined runs once a forced caller is attached to the shared refresh.
	joined func()
}

func NewTokenService(
	repo repository.ITokenRepository,
	locker RefreshLocker,
	settings SettingsProvider,
	client HTTPDoer,
	sink Diagnostics,
	m *metrics.Metrics,
	opts TokenOptions,
) *TokenService {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.LockWait <= 0 {
		opts.LockWait = time.Second
	}
	if opts.ExpiryMargin <= 0 {
		opts.ExpiryMargin = 60 * time.Second
	}
	if sink == nil {
		sink = nopDiagnostics{}
	}
	return &TokenService{
		repo:     repo,
		locker:   locker,
		settings: settings,
		client:   client,
		sink:     sink,
		metrics:  m,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
		sleep:    sleepContext,
	}
}

// GetToken returns a bearer token. Without forceNew a valid cached token is
// preferred; with forceNew a new token is always requested, coordinated
// across processes through the refresh lock. Failures wrap ErrNoToken.
func (s *TokenService) GetToken(ctx context.Context, forceNew bool) (string, error) {
	if !forceNew {
		if token, ok := s.cached(ctx); ok {
			s.sink.Log(ctx, "Using cached OAuth token")
			s.metrics.TokenCacheHit()
			return token, nil
		}
		s.sink.Log(ctx, "Requesting OAuth token")
		return s.acquire(ctx)
	}

	// Concurrent forced callers in this process share one refresh; the
	// refresh lock extends that across processes. The shared refresh outlives
	// any single caller, so it runs detached from ctx under its own deadline.
	ch := s.group.DoChan(DefaultRefreshLockKey, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refreshBudget())
		defer cancel()
		return s.forceRefresh(shared)
	})
	if s.joined != nil {
		s.joined()
	}

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrNoToken, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// refreshBudget bounds one forced refresh: the contention wait, both
// credential exchanges and the store.
func (s *TokenService) refreshBudget() time.Duration {
	return s.opts.LockWait + 3*s.opts.Timeout
}

// ClearTokens drops every cached token.
func (s *TokenService) ClearTokens(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}

func (s *TokenService) cached(ctx context.Context) (string, bool) {
	now := s.now()
	token, err := s.repo.GetLatestValid(ctx, now)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Log.WithError(err).Warn("Token cache lookup failed")
		}
		return "", false
	}
	if !token.Valid(now) {
		return "", false
	}
	return token.AccessToken, true
}

func (s *TokenService) forceRefresh(ctx context.Context) (string, error) {
	held, err := s.locker.TryAcquire(ctx)
	if err != nil {
		// Refreshing without the lock beats not refreshing at all.
		logger.Log.WithError(err).Warn("Refresh lock unavailable, refreshing without it")
	} else if !held {
		s.metrics.LockContended()
		s.sink.Log(ctx, "Token refresh already in progress, waiting for it to finish")

		if err := s.sleep(ctx, s.opts.LockWait); err != nil {
			return "", fmt.Errorf("%w: %w", ErrNoToken, err)
		}
		if token, ok := s.cached(ctx); ok {
			s.sink.Log(ctx, "Using token refreshed by another worker")
			return token, nil
		}

		s.sink.Log(ctx, "Refresh still in progress elsewhere, requesting a token anyway")
		if err := s.locker.Claim(ctx); err != nil {
			logger.Log.WithError(err).Warn("Failed to claim refresh lock")
		} else {
			held = true
		}
	}

	if held {
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx)); err != nil {
				logger.Log.WithError(err).Warn("Failed to release refresh lock")
			}
		}()
	}

	s.sink.Log(ctx, "Forcing new OAuth token")
	return s.acquire(ctx)
}

type exchangeResult struct {
	code int
	body model.OAuthTokenResponse
	raw  string
}

// authFailure reports a rejected credential: HTTP 401, or an OAuth
// invalid_client / unauthorized_client error without a token.
func (r exchangeResult) authFailure() bool {
	if r.code == http.StatusUnauthorized {
		return true
	}
	if r.body.AccessToken != "" {
		return false
	}
	switch strings.ToLower(r.body.Error) {
	case "invalid_client", "unauthorized_client":
		return true
	}
	return false
}

func (s *TokenService) acquire(ctx context.Context) (string, error) {
	requestedAt := s.now()
	creds := model.Credentials{
		ClientID:        s.settings.Get(ctx, KeyClientID, ""),
		PrimarySecret:   s.settings.Get(ctx, KeyClientSecret1, ""),
		SecondarySecret: s.settings.Get(ctx, KeyClientSecret2, ""),
	}
	endpoint := joinURL(s.settings.APIHost(ctx), s.settings.Get(ctx, KeyOAuthURL, "/connect/token"))

	credential := "primary"
	res, err := s.exchange(ctx, endpoint, creds.ClientID, creds.PrimarySecret)
	if err == nil && res.authFailure() && creds.HasFallback() {
		s.metrics.TokenRefresh(credential, "rejected")
		s.sink.Log(ctx, "Authorization error with client_secret1, trying fallback with client_secret2")
		credential = "secondary"
		res, err = s.exchange(ctx, endpoint, creds.ClientID, creds.SecondarySecret)
	}
	if err != nil {
		s.metrics.TokenRefresh(credential, "transport_error")
		s.sink.Log(ctx, err.Error())
		return "", fmt.Errorf("%w: %w", ErrNoToken, err)
	}

	if res.body.AccessToken == "" {
		s.metrics.TokenRefresh(credential, "failure")
		s.sink.Log(ctx, "Token request failed: "+res.raw)
		return "", fmt.Errorf("%w: token endpoint returned HTTP %d", ErrNoToken, res.code)
	}
	s.metrics.TokenRefresh(credential, "success")

	lifetime := time.Duration(res.body.ExpiresIn) * time.Second
	token := &model.GatewayToken{
		AccessToken: res.body.AccessToken,
		ExpiresAt:   requestedAt.Add(lifetime - s.opts.ExpiryMargin).UTC(),
	}
	s.store(ctx, token)

	return token.AccessToken, nil
}

// store persists token and prunes every older row. A storage failure does
// not invalidate the token itself, so it is logged and swallowed.
func (s *TokenService) store(ctx context.Context, token *model.GatewayToken) {
	log := logger.Log.WithField("expires_at", token.ExpiresAt)
	if err := s.repo.Create(ctx, token); err != nil {
		log.WithError(err).Error("Failed to cache gateway token")
		return
	}
	pruned, err := s.repo.DeleteOlderThan(ctx, token.ID)
	if err != nil {
		log.WithError(err).Warn("Failed to prune superseded gateway tokens")
		return
	}
	log.WithFields(logrus.Fields{"token_id": token.ID, "pruned": pruned}).Info("Gateway token cached")
}

func (s *TokenService) exchange(ctx context.Context, endpoint, clientID, secret string) (exchangeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {clientID},
		"client_secret": {secret},
		"scope":         {oauthScope},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return exchangeResult{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return exchangeResult{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return exchangeResult{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	res := exchangeResult{code: resp.StatusCode, raw: string(raw)}
	// A non-JSON body leaves the zero value, which reads as "no token".
	_ = json.Unmarshal(raw, &res.body)
	return res, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// joinURL joins host and path with exactly one slash and appends escaped
// path segments.
func joinURL(host, path string, segments ...string) string {
	u := strings.TrimRight(host, "/") + "/" + strings.TrimLeft(path, "/")
	if len(segments) == 0 {
		return u
	}
	u = strings.TrimRight(u, "/")
	for _, seg := range segments {
		u += "/" + url.PathEscape(seg)
	}
	return u
}
