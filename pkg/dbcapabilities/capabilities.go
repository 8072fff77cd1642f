package dbcapabilities

import (
	"sort"
	"strings"
)

// DatabaseID is the canonical identifier for a backend kind supported by the
// workbench. Use these constants to look up capability information.
type DatabaseID string

const (
	// Embedded is the in-process analytical engine in pure-memory mode.
	Embedded DatabaseID = "embedded"

	// Persistent is the same engine backed by a local database file.
	Persistent DatabaseID = "persistent"

	// Remote is a ClickHouse-compatible SQL-over-HTTP endpoint.
	Remote DatabaseID = "remote"
)

// AuthMode enumerates how a remote backend authenticates requests.
type AuthMode string

const (
	AuthNone     AuthMode = "none"
	AuthPassword AuthMode = "password"
	AuthAPIKey   AuthMode = "apikey"
)

// Capability describes what a backend kind supports so the session layer and
// API can treat all three uniformly.
type Capability struct {
	// Human-friendly name, e.g., "Persistent Storage".
	Name string `json:"name"`

	// Canonical ID used across the codebase (see DatabaseID constants).
	ID DatabaseID `json:"id"`

	// RequiresPath is set when the connection config must carry a file path.
	RequiresPath bool `json:"requiresPath"`

	// RequiresHost is set when the connection config must carry a host.
	RequiresHost bool `json:"requiresHost"`

	// DefaultPort for remote endpoints when the host does not carry one.
	DefaultPort int `json:"defaultPort,omitempty"`

	// DefaultScheme for remote endpoints given without one.
	DefaultScheme string `json:"defaultScheme,omitempty"`

	// AuthModes supported by this backend kind.
	AuthModes []AuthMode `json:"authModes,omitempty"`

	// SystemDatabases lists engine-internal databases hidden from the schema tree.
	SystemDatabases []string `json:"systemDatabases,omitempty"`

	// BestEffortIntrospection marks backends whose per-table schema probes may
	// fail without failing the whole fetch.
	BestEffortIntrospection bool `json:"bestEffortIntrospection"`

	// Common aliases (UI labels, legacy names) that map to this backend kind.
	Aliases []string `json:"aliases,omitempty"`
}

// All is a registry of capabilities keyed by the canonical backend ID.
var All = map[DatabaseID]Capability{
	Embedded: {
		Name:            "In-Memory",
		ID:              Embedded,
		SystemDatabases: []string{"system", "temp"},
		AuthModes:       []AuthMode{AuthNone},
		Aliases:         []string{"memory", "wasm", "duckdb", "duckdb-wasm"},
	},
	Persistent: {
		Name:            "Persistent Storage",
		ID:              Persistent,
		RequiresPath:    true,
		SystemDatabases: []string{"system", "temp"},
		AuthModes:       []AuthMode{AuthNone},
		Aliases:         []string{"opfs", "file", "local"},
	},
	Remote: {
		Name:                    "Remote Server",
		ID:                      Remote,
		RequiresHost:            true,
		DefaultPort:             8123,
		DefaultScheme:           "https",
		AuthModes:               []AuthMode{AuthNone, AuthPassword, AuthAPIKey},
		SystemDatabases:         []string{"system", "information_schema", "INFORMATION_SCHEMA"},
		BestEffortIntrospection: true,
		Aliases:                 []string{"clickhouse", "http", "server"},
	},
}

// nameToID is a normalized lookup index from any known name/alias to the canonical DatabaseID.
var nameToID map[string]DatabaseID

func init() {
	nameToID = make(map[string]DatabaseID, len(All)*2)
	for id, cap := range All {
		// Canonical ID
		nameToID[strings.ToLower(string(id))] = id
		// Also record the display name
		if cap.Name != "" {
			nameToID[strings.ToLower(cap.Name)] = id
		}
		// Aliases
		for _, a := range cap.Aliases {
			if a == "" {
				continue
			}
			nameToID[strings.ToLower(a)] = id
		}
	}
}

// ParseID attempts to resolve an arbitrary backend name (canonical id, alias,
// or display name) to a canonical DatabaseID. Returns false if unknown.
func ParseID(name string) (DatabaseID, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", false
	}
	id, ok := nameToID[n]
	return id, ok
}

// IDs returns all known backend IDs in a stable order.
func IDs() []DatabaseID {
	out := make([]DatabaseID, 0, len(All))
	for id := range All {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Get returns capabilities for the given ID and a boolean indicating existence.
func Get(id DatabaseID) (Capability, bool) {
	c, ok := All[id]
	return c, ok
}

// MustGet returns capabilities for the given ID and panics if not found.
func MustGet(id DatabaseID) Capability {
	c, ok := Get(id)
	if !ok {
		panic("dbcapabilities: unknown backend id: " + string(id))
	}
	return c
}

// SupportsAuthMode reports whether the backend kind accepts the given auth mode.
func SupportsAuthMode(id DatabaseID, mode AuthMode) bool {
	c, ok := Get(id)
	if !ok {
		return false
	}
	for _, m := range c.AuthModes {
		if m == mode {
			return true
		}
	}
	return false
}

// IsSystemDatabase reports whether name is an engine-internal database for
// this backend kind, hidden from the schema tree.
func IsSystemDatabase(id DatabaseID, name string) bool {
	c, ok := Get(id)
	if !ok {
		return false
	}
	for _, s := range c.SystemDatabases {
		if s == name {
			return true
		}
	}
	return false
}
