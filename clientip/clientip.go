// Package clientip extracts the caller's IP address from proxy headers or
// the underlying connection. The value is advisory and used only for
// analytics and geolocation, never for authorization.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Unknown is returned when no address source yields a usable value.
const Unknown = "Unknown"

// FromRequest returns the client IP for an incoming request. The first entry
// of X-Forwarded-For wins when present; otherwise X-Real-IP, then the
// connection's remote address.
func FromRequest(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	if r.RemoteAddr != "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			// No port component, assume a bare address.
			return r.RemoteAddr
		}
		return host
	}

	return Unknown
}
