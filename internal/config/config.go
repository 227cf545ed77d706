package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix              = "VISIONMAKERS"
	defaultHTTPAddress     = "0.0.0.0:8080"
	defaultDatabasePath    = "visionmakers.db"
	defaultLogLevel        = "info"
	defaultTokenTTLMinutes = 60
	defaultPollSeconds     = 30
	defaultFetchLimit      = 50
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress     string
	DatabasePath    string
	LogLevel        string
	SigningSecret   string
	TokenTTL        time.Duration
	AdminEmail      string
	AdminPassword   string
	SlackWebhookURL string
	PollInterval    time.Duration
	FetchLimit      int
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("auth.token_ttl_minutes", defaultTokenTTLMinutes)
	configViper.SetDefault("notifications.poll_seconds", defaultPollSeconds)
	configViper.SetDefault("notifications.fetch_limit", defaultFetchLimit)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:     configViper.GetString("http.address"),
		DatabasePath:    configViper.GetString("database.path"),
		LogLevel:        configViper.GetString("log.level"),
		SigningSecret:   configViper.GetString("auth.signing_secret"),
		TokenTTL:        time.Duration(configViper.GetInt("auth.token_ttl_minutes")) * time.Minute,
		AdminEmail:      configViper.GetString("admin.email"),
		AdminPassword:   configViper.GetString("admin.password"),
		SlackWebhookURL: configViper.GetString("slack.webhook_url"),
		PollInterval:    time.Duration(configViper.GetInt("notifications.poll_seconds")) * time.Second,
		FetchLimit:      configViper.GetInt("notifications.fetch_limit"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.SigningSecret) == "" {
		return fmt.Errorf("auth.signing_secret is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl_minutes must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("notifications.poll_seconds must be positive")
	}
	if c.FetchLimit <= 0 {
		return fmt.Errorf("notifications.fetch_limit must be positive")
	}
	return nil
}
