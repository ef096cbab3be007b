package metadata

import "strings"

// VendorTable is an OUI prefix → manufacturer lookup, keyed by
// increasingly specific uppercased hex prefixes (6/8/10 hex digits) so the
// same table can carry both legacy 24-bit OUI blocks and modern MA-M/MA-S
// blocks, as spec §4.3's "longest-prefix match" requires.
//
// It is loaded once at startup and never mutated afterward (spec §5,
// §9's "eager at startup, immutable thereafter" design note); lookup cost
// is O(prefix length), not O(table size).
type VendorTable struct {
	entries map[string]string
}

// NewVendorTable builds a VendorTable from a prefix→name map, typically
// loaded from an external OUI dataset (spec §6's MAC-vendor static data
// file, treated as a read-only external collaborator).
func NewVendorTable(entries map[string]string) *VendorTable {
	normalized := make(map[string]string, len(entries))
	for prefix, name := range entries {
		normalized[normalizeHex(prefix)] = name
	}
	return &VendorTable{entries: normalized}
}

// Lookup returns the manufacturer for mac via longest-prefix match over
// 10/8/6 hex-digit keys, or "" if no entry matches.
func (t *VendorTable) Lookup(mac string) string {
	hex := normalizeHex(mac)
	for _, n := range []int{10, 8, 6} {
		if len(hex) < n {
			continue
		}
		if name, ok := t.entries[hex[:n]]; ok {
			return name
		}
	}
	return ""
}

func normalizeHex(mac string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(mac) {
		switch {
		case r >= '0' && r <= '9', r >= 'A' && r <= 'F':
			b.WriteRune(r)
		}
	}
	return b.String()
}
