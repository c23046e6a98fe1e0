// Package config provides configuration loading for authz-gate.
package config

// Config is the top-level configuration for the authorization decision
// service. Every recognized option is listed in §6 of the system design:
// DatabaseURL for the persistent store and AdminAPIKey for the management
// surface. Both are required — an absent value is a fatal startup error.
type Config struct {
	// DatabaseURL is the connection string for the persistent store, a
	// modernc.org/sqlite data source name (e.g. "file:authz-gate.db" or
	// ":memory:" for ephemeral runs).
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url" validate:"required"`

	// AdminAPIKey is the bearer credential required by the management
	// surface (create_role, create_policy, activate_policy, list_policies,
	// get_active_policy). The decision surface is unauthenticated.
	AdminAPIKey string `yaml:"admin_api_key" mapstructure:"admin_api_key" validate:"required"`

	// HTTPAddr is the listen address for the transport adapter.
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr" validate:"required,hostname_port"`
}

// SetDefaults fills in optional fields left unset by the config file or
// environment. DatabaseURL and AdminAPIKey have no defaults by design —
// Validate rejects their absence rather than silently picking one.
func (c *Config) SetDefaults() {
	if c.HTTPAddr == "" {
		c.HTTPAddr = "127.0.0.1:8080"
	}
}
