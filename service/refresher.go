package service

import (
	"context"
	"einvoice-gateway/logger"
	"time"
)

// TokenRefresher force-refreshes the gateway token on a fixed interval so
// request paths rarely pay for an exchange.
type TokenRefresher struct {
	tokens   TokenProvider
	interval time.Duration
}

func NewTokenRefresher(tokens TokenProvider, interval time.Duration) *TokenRefresher {
	return &TokenRefresher{tokens: tokens, interval: interval}
}

// Run blocks until ctx is cancelled. A non-positive interval disables it.
func (r *TokenRefresher) Run(ctx context.Context) {
	if r.interval <= 0 {
		logger.Log.Info("Background token refresh disabled")
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logger.Log.WithField("interval", r.interval.String()).Info("Background token refresh started")
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("Background token refresh stopped")
			return
		case <-ticker.C:
			if _, err := r.tokens.GetToken(ctx, true); err != nil {
				logger.Log.WithError(err).Warn("Scheduled token refresh failed")
			}
		}
	}
}
