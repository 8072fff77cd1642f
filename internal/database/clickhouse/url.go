package clickhouse

import (
	"fmt"
	"strings"

	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
	"github.com/ibero-data/duck-ui-sub001/pkg/dbcapabilities"
)

// BuildEndpointURL renders the base URL queries are POSTed to. The scheme
// defaults to https when neither the config nor the host carries one, the
// port is appended only when the host does not already encode one, and the
// result always ends in a single trailing slash.
func BuildEndpointURL(config adapter.ConnectionConfig) string {
	capability := dbcapabilities.MustGet(dbcapabilities.Remote)

	host := strings.TrimSpace(config.Host)

	scheme := config.Scheme
	if scheme == "" {
		scheme = capability.DefaultScheme
	}

	// A host pasted with its own scheme wins over the configured one
	if i := strings.Index(host, "://"); i >= 0 {
		scheme = host[:i]
		host = host[i+len("://"):]
	}
	host = strings.TrimRight(host, "/")

	if !strings.Contains(host, ":") {
		port := config.Port
		if port == 0 {
			port = capability.DefaultPort
		}
		host = fmt.Sprintf("%s:%d", host, port)
	}

	return scheme + "://" + host + "/"
}
