package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	AppRateLimit      int           `envconfig:"APP_RATE_LIMIT" default:"120"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	APIBaseURL        string        `envconfig:"API_BASE_URL" default:"https://api.finoracleassociates.in/api"`
	APITimeout        time.Duration `envconfig:"API_TIMEOUT" default:"10s"`
	GatewayFixtureDir string        `envconfig:"GATEWAY_FIXTURE_DIR"`

	RefdataCacheTTL time.Duration `envconfig:"REFDATA_CACHE_TTL" default:"5m"`
	WarmupCron      string        `envconfig:"WARMUP_CRON" default:"*/15 * * * *"`
	SubmitGuardTTL  time.Duration `envconfig:"SUBMIT_GUARD_TTL" default:"10m"`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`
}

// LoadConfig reads configuration from environment variables and reports
// every invalid setting at once.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET must be provided"))
	}
	if c.CSRFSecret == "" {
		errs = append(errs, errors.New("CSRF_SECRET must be provided"))
	}
	if c.APIBaseURL == "" {
		errs = append(errs, errors.New("API_BASE_URL must be provided"))
	}
	if c.APITimeout <= 0 {
		errs = append(errs, fmt.Errorf("API_TIMEOUT must be positive, got %s", c.APITimeout))
	}
	if c.AppRateLimit < 0 {
		errs = append(errs, fmt.Errorf("APP_RATE_LIMIT must not be negative, got %d", c.AppRateLimit))
	}
	return errors.Join(errs...)
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
