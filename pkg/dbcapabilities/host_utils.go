package dbcapabilities

import (
	"net"
	"strings"
)

// NormalizeHost folds loopback addresses into the canonical "localhost".
// Other hosts pass through unchanged; no DNS resolution is performed.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "localhost" {
		return host
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return "localhost"
	}
	return host
}

// IsPrivateAddress reports whether a host is a private or link-local IP
// literal. Hostnames are treated as public, since hosted services sit
// behind global DNS. The remote connector uses this to decide when a
// plain-HTTP endpoint deserves a warning.
func IsPrivateAddress(host string) bool {
	ip := net.ParseIP(strings.TrimSpace(host))
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}

// IsLocalhostVariant reports whether the host is "localhost" or any
// loopback literal such as 127.0.0.1 or ::1.
func IsLocalhostVariant(host string) bool {
	return NormalizeHost(host) == "localhost"
}
