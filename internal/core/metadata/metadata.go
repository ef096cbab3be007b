// Package metadata resolves DeviceMetadata (spec §4.3): reverse-DNS
// hostname, MAC union, and OUI vendor lookup. All three operations are
// independent and safe to run concurrently with port scanning.
package metadata

import (
	"context"
	"net"
	"strings"
)

// ResolveHostname performs a best-effort reverse-DNS lookup. Per spec, a
// failure resolves to "" (nil at the JSON layer), never an error — this
// is a ProbeError-class failure that must not abort anything.
func ResolveHostname(ctx context.Context, ip string) string {
	resolver := &net.Resolver{}
	names, err := resolver.LookupAddr(ctx, ip)
	if err != nil || len(names) == 0 {
		return ""
	}
	return strings.TrimSuffix(names[0], ".")
}
