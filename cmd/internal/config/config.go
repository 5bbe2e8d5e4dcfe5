package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/gommon/log"
)

const (
	AuthLocal   = "local"
	AuthCognito = "cognito"
)

// Config is read from VISUALL_* environment variables, after an optional
// .env file. Example: VISUALL_HTTP_ADDR, VISUALL_RETENTION_WINDOW.
type Config struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":6060"`
	DBPath   string `envconfig:"DB_PATH" default:"visuall.db"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	SweepInterval   time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`
	RetentionWindow time.Duration `envconfig:"RETENTION_WINDOW" default:"5m"`
	Timezone        string        `envconfig:"TIMEZONE" default:"America/Sao_Paulo"`
	StrictSpecialty bool          `envconfig:"STRICT_SPECIALTY" default:"false"`

	AuthProvider      string `envconfig:"AUTH_PROVIDER" default:"local"`
	AWSRegion         string `envconfig:"AWS_REGION" default:"us-east-1"`
	CognitoClientID   string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoUserPoolID string `envconfig:"COGNITO_USER_POOL_ID"`

	TelegramToken   string `envconfig:"TELEGRAM_TOKEN"`
	TelegramChatID  string `envconfig:"TELEGRAM_CHAT_ID"`
	NarratorCommand string `envconfig:"NARRATOR_COMMAND" default:"espeak"`

	APIBaseURL      string        `envconfig:"API_BASE_URL" default:"http://localhost:6060"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	CredentialsFile string        `envconfig:"CREDENTIALS_FILE"`
}

// Load reads .env when present and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warnf("failed to load .env file: %v", err)
	}

	var cfg Config
	if err := envconfig.Process("VISUALL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings the API server cannot run without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("VISUALL_JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("VISUALL_JWT_SECRET must be at least 32 bytes")
	}
	if c.TokenTTL <= 0 {
		return errors.New("VISUALL_TOKEN_TTL must be positive")
	}

	switch c.AuthProvider {
	case AuthLocal:
	case AuthCognito:
		if c.CognitoClientID == "" || c.CognitoUserPoolID == "" {
			return errors.New("cognito auth requires VISUALL_COGNITO_CLIENT_ID and VISUALL_COGNITO_USER_POOL_ID")
		}
	default:
		return fmt.Errorf("unsupported VISUALL_AUTH_PROVIDER: %s", c.AuthProvider)
	}

	_, err := c.Location()
	return err
}

// Location is the zone where "today" is decided for appointment dates.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid VISUALL_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != ""
}
