package service

import (
	"context"
	"database/sql"
	"einvoice-gateway/config"
	"einvoice-gateway/logger"
	"einvoice-gateway/repository"
	"errors"

	"github.com/sirupsen/logrus"
)

// Setting keys understood by the gateway client.
const (
	KeyEnvironment    = "environment"
	KeyAPIHost        = "api_host"
	KeyOAuthURL       = "oauth_url"
	KeyValidateTINURL = "validate_tin_url"
	KeySubmitDocURL   = "submit_doc_url"
	KeyGetDocURL      = "get_doc_url"
	KeyCancelDocURL   = "cancel_doc_url"
	KeyClientID       = "client_id"
	KeyClientSecret1  = "client_secret1"
	KeyClientSecret2  = "client_secret2"
	KeyDebugEnabled   = "debug_enabled"
)

const (
	EnvironmentSandbox    = "sandbox"
	EnvironmentProduction = "production"

	SandboxAPIHost    = "https://preprod-api.myinvois.hasil.gov.my"
	ProductionAPIHost = "https://api.myinvois.hasil.gov.my"
)

// SettingsProvider is the read side of the settings store.
type SettingsProvider interface {
	Get(ctx context.Context, key, def string) string
	APIHost(ctx context.Context) string
}

// SettingsService resolves settings from the database first, then from the
// loaded configuration, then from the caller's default.
type SettingsService struct {
	repo     repository.ISettingsRepository
	tokens   repository.ITokenRepository
	defaults map[string]string
}

func NewSettingsService(repo repository.ISettingsRepository, tokens repository.ITokenRepository, cfg config.GatewayConfig) *SettingsService {
	return &SettingsService{
		repo:   repo,
		tokens: tokens,
		defaults: map[string]string{
			KeyEnvironment:    cfg.Environment,
			KeyAPIHost:        cfg.APIHost,
			KeyOAuthURL:       cfg.OAuthURL,
			KeyValidateTINURL: cfg.ValidateTINURL,
			KeySubmitDocURL:   cfg.SubmitDocURL,
			KeyGetDocURL:      cfg.GetDocURL,
			KeyCancelDocURL:   cfg.CancelDocURL,
			KeyClientID:       cfg.ClientID,
			KeyClientSecret1:  cfg.ClientSecret1,
			KeyClientSecret2:  cfg.ClientSecret2,
			KeyDebugEnabled:   cfg.DebugEnabled,
		},
	}
}

func (s *SettingsService) Get(ctx context.Context, key, def string) string {
	setting, err := s.repo.Get(ctx, key)
	if err == nil {
		return setting.Value
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.Log.WithError(err).WithField("key", key).Warn("Falling back to default setting")
	}
	if v, ok := s.defaults[key]; ok && v != "" {
		return v
	}
	return def
}

// Set stores value under key and reports whether it was persisted.
func (s *SettingsService) Set(ctx context.Context, key, value string) bool {
	if err := s.repo.Upsert(ctx, key, value); err != nil {
		logger.Log.WithError(err).WithField("key", key).Error("Failed to store setting")
		return false
	}
	return true
}

// APIHost returns the explicit api_host setting, or the host derived from
// the configured environment.
func (s *SettingsService) APIHost(ctx context.Context) string {
	if host := s.Get(ctx, KeyAPIHost, ""); host != "" {
		return host
	}
	return HostForEnvironment(s.Get(ctx, KeyEnvironment, EnvironmentSandbox))
}

func (s *SettingsService) DebugEnabled(ctx context.Context) bool {
	return s.Get(ctx, KeyDebugEnabled, "0") == "1"
}

// SetEnvironment switches the gateway environment and re-derives the API
// host. Cached tokens are cleared when the environment actually changes since
// they are not accepted by the other environment.
func (s *SettingsService) SetEnvironment(ctx context.Context, environment string) error {
	if environment != EnvironmentSandbox && environment != EnvironmentProduction {
		return ErrInvalidEnvironment
	}

	previous := s.Get(ctx, KeyEnvironment, EnvironmentSandbox)
	if !s.Set(ctx, KeyEnvironment, environment) {
		return errors.New("failed to store environment")
	}
	if !s.Set(ctx, KeyAPIHost, HostForEnvironment(environment)) {
		return errors.New("failed to store api host")
	}

	if previous != environment {
		if err := s.tokens.DeleteAll(ctx); err != nil {
			return err
		}
		logger.Log.WithFields(logrus.Fields{
			"from": previous,
			"to":   environment,
		}).Info("Environment changed, OAuth tokens cleared")
	}
	return nil
}

func HostForEnvironment(environment string) string {
	if environment == EnvironmentProduction {
		return ProductionAPIHost
	}
	return SandboxAPIHost
}
