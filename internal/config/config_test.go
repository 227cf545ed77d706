package config

import (
	"strings"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	v := NewViper()
	v.Set("auth.signing_secret", "secret")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddress != defaultHTTPAddress {
		t.Fatalf("unexpected http address: %s", cfg.HTTPAddress)
	}
	if cfg.DatabasePath != defaultDatabasePath {
		t.Fatalf("unexpected database path: %s", cfg.DatabasePath)
	}
	if cfg.PollInterval.Seconds() != defaultPollSeconds {
		t.Fatalf("unexpected poll interval: %s", cfg.PollInterval)
	}
	if cfg.FetchLimit != defaultFetchLimit {
		t.Fatalf("unexpected fetch limit: %d", cfg.FetchLimit)
	}
}

func TestLoadRequiresSigningSecret(t *testing.T) {
	v := NewViper()

	_, err := Load(v)
	if err == nil {
		t.Fatalf("expected error for missing signing secret")
	}
	if !strings.Contains(err.Error(), "auth.signing_secret") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsNonPositivePollInterval(t *testing.T) {
	v := NewViper()
	v.Set("auth.signing_secret", "secret")
	v.Set("notifications.poll_seconds", 0)

	_, err := Load(v)
	if err == nil {
		t.Fatalf("expected error for zero poll interval")
	}
}
