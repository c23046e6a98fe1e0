package config

import "testing"

func TestSetDefaults_FillsHTTPAddr(t *testing.T) {
	cfg := Config{DatabaseURL: "file:test.db", AdminAPIKey: "secret"}
	cfg.SetDefaults()

	if cfg.HTTPAddr != "127.0.0.1:8080" {
		t.Errorf("expected default HTTPAddr, got %q", cfg.HTTPAddr)
	}
}

func TestSetDefaults_DoesNotOverrideExplicitHTTPAddr(t *testing.T) {
	cfg := Config{
		DatabaseURL: "file:test.db",
		AdminAPIKey: "secret",
		HTTPAddr:    "0.0.0.0:9090",
	}
	cfg.SetDefaults()

	if cfg.HTTPAddr != "0.0.0.0:9090" {
		t.Errorf("expected explicit HTTPAddr to survive, got %q", cfg.HTTPAddr)
	}
}

func TestSetDefaults_LeavesDatabaseURLAndAdminAPIKeyUnset(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()

	if cfg.DatabaseURL != "" {
		t.Errorf("expected DatabaseURL to have no default, got %q", cfg.DatabaseURL)
	}
	if cfg.AdminAPIKey != "" {
		t.Errorf("expected AdminAPIKey to have no default, got %q", cfg.AdminAPIKey)
	}
}
