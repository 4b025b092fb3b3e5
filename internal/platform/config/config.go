package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port    string `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	GinMode string `envconfig:"GIN_MODE" default:"release" validate:"oneof=debug release test"`

	CheckerAPIKey  string        `envconfig:"TGCHECKER_API_KEY"`
	CheckerBaseURL string        `envconfig:"TGCHECKER_BASE_URL" validate:"omitempty,url"`
	CheckerTimeout time.Duration `envconfig:"TGCHECKER_TIMEOUT" default:"10s" validate:"gt=0"`

	HistoryEnabled      bool   `envconfig:"HISTORY_ENABLED" default:"false"`
	FirebaseProjectID   string `envconfig:"FIREBASE_PROJECT_ID" validate:"required_if=HistoryEnabled true"`
	FirebaseCredsBase64 string `envconfig:"FIREBASE_CREDS_BASE64"`
	FirebaseCredsFile   string `envconfig:"FIREBASE_CREDS_FILE"`
	AllowedOrigins      string `envconfig:"ALLOWED_ORIGINS"`
}

var validate = validator.New()

// Load reads environment variables into a Config with sensible defaults.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.HistoryEnabled && c.FirebaseCredsBase64 == "" && c.FirebaseCredsFile == "" {
		return errors.New("provide FIREBASE_CREDS_BASE64 or FIREBASE_CREDS_FILE when HISTORY_ENABLED is set")
	}
	return nil
}

// FirebaseCredentialsJSON returns the service account JSON bytes and the source used.
func (c Config) FirebaseCredentialsJSON() ([]byte, string, error) {
	if c.FirebaseCredsBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(c.FirebaseCredsBase64)
		if err != nil {
			return nil, "base64", fmt.Errorf("decode FIREBASE_CREDS_BASE64: %w", err)
		}
		return decoded, "base64", nil
	}
	if c.FirebaseCredsFile != "" {
		data, err := os.ReadFile(c.FirebaseCredsFile)
		if err != nil {
			return nil, "file", fmt.Errorf("read FIREBASE_CREDS_FILE: %w", err)
		}
		return data, "file", nil
	}
	return nil, "", errors.New("no firebase credentials found")
}
