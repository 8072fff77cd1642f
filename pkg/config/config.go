// Package config carries the daemon's runtime settings as a flat
// key/value map. The YAML file and environment are folded in once at
// startup; after that the engine only reads.
package config

import (
	"sync"
)

// Config is a concurrency-safe view over the flattened settings.
type Config struct {
	mu     sync.RWMutex
	values map[string]string
}

// New creates an empty configuration.
func New() *Config {
	return &Config{
		values: make(map[string]string),
	}
}

// Get retrieves a configuration value. Unset keys read as "".
func (c *Config) Get(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[key]
}

// GetDefault retrieves a configuration value, falling back when the
// key is unset or blank.
func (c *Config) GetDefault(key, fallback string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v := c.values[key]; v != "" {
		return v
	}
	return fallback
}

// Update merges values into the configuration.
func (c *Config) Update(values map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range values {
		c.values[k] = v
	}
}
