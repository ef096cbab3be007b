package utils

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// NormalizeIP collapses a raw address (possibly "host:port", an
// X-Forwarded-For list, or an IPv4-mapped IPv6 literal) down to a bare
// address string suitable for access logs. LANscape's HTTP front end
// is meant to sit behind at most a local reverse proxy on the same
// LAN it scans, so the first hop in X-Forwarded-For is trusted as-is
// rather than walked from the right like a public-internet edge would.
func NormalizeIP(input string) string {
	if input == "" {
		return ""
	}

	ip := strings.TrimSpace(strings.Split(input, ",")[0])

	if h, _, err := net.SplitHostPort(ip); err == nil {
		ip = h
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ip
	}

	if v4 := parsed.To4(); v4 != nil {
		return v4.String()
	}

	return parsed.String()
}

// GetClientIP extracts the caller's address from a gin request, for the
// access-log middleware in logger.
func GetClientIP(c *gin.Context) string {
	raw := c.GetHeader("X-Forwarded-For")
	if raw == "" {
		raw = c.GetHeader("X-Real-IP")
	}
	if raw == "" {
		raw = c.ClientIP()
	}
	return NormalizeIP(raw)
}

// GetClientIPFromRequest is GetClientIP for call sites holding a plain
// *http.Request rather than a gin context.
func GetClientIPFromRequest(r *http.Request) string {
	raw := r.Header.Get("X-Forwarded-For")
	if raw == "" {
		raw = r.Header.Get("X-Real-IP")
	}
	if raw == "" {
		raw = r.RemoteAddr
	}
	return NormalizeIP(raw)
}
