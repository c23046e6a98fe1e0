package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment
// variables. If configFile is empty, it searches for authz-gate.yaml/.yml
// in standard locations. The search requires an explicit YAML extension to
// avoid matching the binary itself, mirroring the teacher's findConfigFile.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		viper.SetConfigName("authz-gate")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: AUTHZ_GATE_DATABASE_URL, etc.
	viper.SetEnvPrefix("AUTHZ_GATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindEnvKeys()
}

// findConfigFile searches standard locations for an authz-gate config file
// with an explicit YAML extension.
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".authz-gate"),
		"/etc/authz-gate",
	}
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "authz-gate"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindEnvKeys binds every Config key for environment variable support.
func bindEnvKeys() {
	_ = viper.BindEnv("database_url")
	_ = viper.BindEnv("admin_api_key")
	_ = viper.BindEnv("http_addr")
}

// LoadConfig reads the configuration file, applies environment overrides,
// sets defaults, and validates the result.
func LoadConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// Config file not found — continue with env vars only.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file that was
// loaded, or "" if none was found (env vars only).
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
