package config

import "testing"

func validConfig() Config {
	return Config{
		DatabaseURL: "file:test.db",
		AdminAPIKey: "secret",
		HTTPAddr:    "127.0.0.1:8080",
	}
}

func TestValidate_AcceptsCompleteConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestValidate_RejectsMissingDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing DatabaseURL")
	}
}

func TestValidate_RejectsMissingAdminAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.AdminAPIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing AdminAPIKey")
	}
}

func TestValidate_RejectsMalformedHTTPAddr(t *testing.T) {
	cfg := validConfig()
	cfg.HTTPAddr = "not-a-host-port"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for malformed HTTPAddr")
	}
}

func TestValidate_RejectsMissingHTTPAddr(t *testing.T) {
	cfg := validConfig()
	cfg.HTTPAddr = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing HTTPAddr")
	}
}
