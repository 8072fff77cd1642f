package adapter

import (
	"fmt"

	"github.com/ibero-data/duck-ui-sub001/pkg/dbcapabilities"
)

// ConnectionConfig contains the configuration for a backend connection.
// This is a unified configuration that works across all backend kinds; the
// kind decides which parameter group applies.
type ConnectionConfig struct {
	// Core identifiers
	ConnectionID string `json:"connectionId"`
	Name         string `json:"name"`

	// Backend kind, e.g. "embedded", "persistent", "remote" (aliases accepted)
	ConnectionType string `json:"connectionType"`

	// Persistent engine details
	Path string `json:"path,omitempty"`

	// Remote endpoint details
	Scheme       string `json:"scheme,omitempty"`
	Host         string `json:"host,omitempty"`
	Port         int    `json:"port,omitempty"`
	DatabaseName string `json:"databaseName,omitempty"`

	// Remote authentication. Exactly one mode applies per connection.
	AuthMode     dbcapabilities.AuthMode `json:"authMode,omitempty"`
	Username     string                  `json:"username,omitempty"`
	Password     string                  `json:"password,omitempty"`
	APIKey       string                  `json:"apiKey,omitempty"`
	APIKeyHeader string                  `json:"apiKeyHeader,omitempty"`

	// LastError records the most recent connect failure for display. It is
	// the only field the core mutates on a stored config.
	LastError *string `json:"lastError,omitempty"`

	// Backend-specific options (use sparingly)
	Options map[string]interface{} `json:"options,omitempty"`
}

// DefaultAPIKeyHeader is the header used for API key auth when the config
// does not name one.
const DefaultAPIKeyHeader = "X-API-Key"

// Kind resolves the configured connection type to its canonical backend ID.
func (c *ConnectionConfig) Kind() (dbcapabilities.DatabaseID, bool) {
	return dbcapabilities.ParseID(c.ConnectionType)
}

// Validate checks that exactly the parameter set matching the connection
// type is populated. It returns a ConfigurationError naming the first
// offending field.
func (c *ConnectionConfig) Validate() error {
	id, ok := c.Kind()
	if !ok {
		return NewConfigurationError(
			dbcapabilities.DatabaseID(c.ConnectionType),
			"connectionType",
			fmt.Sprintf("unknown backend kind: %q", c.ConnectionType),
		)
	}

	if c.Name == "" {
		return NewConfigurationError(id, "name", "connection name is required")
	}

	capability := dbcapabilities.MustGet(id)

	if capability.RequiresPath && c.Path == "" {
		return NewConfigurationError(id, "path", "database file path is required")
	}

	if capability.RequiresHost && c.Host == "" {
		return NewConfigurationError(id, "host", "host is required")
	}

	if c.Scheme != "" && c.Scheme != "http" && c.Scheme != "https" {
		return NewConfigurationError(id, "scheme", fmt.Sprintf("unsupported scheme: %q", c.Scheme))
	}

	mode := c.AuthMode
	if mode == "" {
		mode = dbcapabilities.AuthNone
	}
	if !dbcapabilities.SupportsAuthMode(id, mode) {
		return NewConfigurationError(id, "authMode",
			fmt.Sprintf("auth mode %q is not supported by %s backends", mode, id))
	}

	switch mode {
	case dbcapabilities.AuthPassword:
		if c.Username == "" {
			return NewConfigurationError(id, "username", "username is required for password auth")
		}
	case dbcapabilities.AuthAPIKey:
		if c.APIKey == "" {
			return NewConfigurationError(id, "apiKey", "API key is required for apikey auth")
		}
	}

	return nil
}

// ResolvedAuthMode returns the effective auth mode, defaulting to none.
func (c *ConnectionConfig) ResolvedAuthMode() dbcapabilities.AuthMode {
	if c.AuthMode == "" {
		return dbcapabilities.AuthNone
	}
	return c.AuthMode
}

// Redacted returns a copy safe for persistence and API responses: password
// and API key are blanked. Secrets live in the keyring, keyed by the
// connection ID.
func (c ConnectionConfig) Redacted() ConnectionConfig {
	c.Password = ""
	c.APIKey = ""
	return c
}

// GetStringPtr returns a pointer to a string value, or nil if the string is empty.
// Helper function for optional string fields.
func GetStringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

