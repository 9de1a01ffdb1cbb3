package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Host     string `mapstructure:"host" validate:"required"`
		Port     string `mapstructure:"port" validate:"required"`
		User     string `mapstructure:"user" validate:"required"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name" validate:"required"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host" validate:"required"`
		Port     string `mapstructure:"port" validate:"required"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Server struct {
		Port string `mapstructure:"port" validate:"required"`
	} `mapstructure:"server"`
	JWT struct {
		SecretKey string `mapstructure:"secret_key" validate:"required"`
	} `mapstructure:"jwt"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	Gateway GatewayConfig `mapstructure:"gateway"`
}

// GatewayConfig carries the gateway endpoints, credentials and the
// tuning knobs of the token lifecycle. The string values double as defaults
// for the settings store.
type GatewayConfig struct {
	Environment    string `mapstructure:"environment" validate:"oneof=sandbox production"`
	APIHost        string `mapstructure:"api_host"`
	OAuthURL       string `mapstructure:"oauth_url" validate:"required"`
	ValidateTINURL string `mapstructure:"validate_tin_url" validate:"required"`
	SubmitDocURL   string `mapstructure:"submit_doc_url" validate:"required"`
	GetDocURL      string `mapstructure:"get_doc_url" validate:"required"`
	CancelDocURL   string `mapstructure:"cancel_doc_url" validate:"required"`
	ClientID       string `mapstructure:"client_id"`
	ClientSecret1  string `mapstructure:"client_secret1"`
	ClientSecret2  string `mapstructure:"client_secret2"`
	DebugEnabled   string `mapstructure:"debug_enabled" validate:"oneof=0 1"`

	Timeout           time.Duration `mapstructure:"timeout" validate:"gt=0"`
	LockTTL           time.Duration `mapstructure:"lock_ttl" validate:"gt=0"`
	LockWait          time.Duration `mapstructure:"lock_wait" validate:"gte=0"`
	ExpiryMargin      time.Duration `mapstructure:"expiry_margin" validate:"gte=0"`
	RefreshInterval   time.Duration `mapstructure:"refresh_interval" validate:"gte=0"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int           `mapstructure:"burst" validate:"gte=0"`
	LogCapacity       int64         `mapstructure:"log_capacity" validate:"gt=0"`
}

var AppConfig Config

// SetDefaults registers the values used when neither config.yml nor the
// environment provides a key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "einvoice")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("server.port", "8080")
	v.SetDefault("jwt.secret_key", "")
	v.SetDefault("log.level", "info")

	// Empty defaults still matter: AutomaticEnv only binds keys viper knows.
	v.SetDefault("gateway.api_host", "")
	v.SetDefault("gateway.client_id", "")
	v.SetDefault("gateway.client_secret1", "")
	v.SetDefault("gateway.client_secret2", "")
	v.SetDefault("gateway.environment", "sandbox")
	v.SetDefault("gateway.oauth_url", "/connect/token")
	v.SetDefault("gateway.validate_tin_url", "/api/v1.0/taxpayer/validate/")
	v.SetDefault("gateway.submit_doc_url", "/api/v1.0/documentsubmissions/")
	v.SetDefault("gateway.get_doc_url", "/api/v1.0/documents/")
	v.SetDefault("gateway.cancel_doc_url", "/api/v1.0/documents/state/")
	v.SetDefault("gateway.debug_enabled", "1")
	v.SetDefault("gateway.timeout", 30*time.Second)
	v.SetDefault("gateway.lock_ttl", 30*time.Second)
	v.SetDefault("gateway.lock_wait", time.Second)
	v.SetDefault("gateway.expiry_margin", 60*time.Second)
	v.SetDefault("gateway.refresh_interval", 50*time.Minute)
	v.SetDefault("gateway.requests_per_second", 0)
	v.SetDefault("gateway.burst", 1)
	v.SetDefault("gateway.log_capacity", 300)
}

// Load reads config.yml from path (if present) and the environment into a
// Config and validates it.
func Load(v *viper.Viper, path string) (Config, error) {
	var cfg Config

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func LoadConfig(path string) {
	cfg, err := Load(viper.GetViper(), path)
	if err != nil {
		log.Fatalf("Error loading configuration, %s", err)
	}
	AppConfig = cfg
}
