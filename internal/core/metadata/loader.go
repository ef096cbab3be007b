package metadata

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadVendorTable reads the MAC-vendor dataset from path — a flat JSON
// object `{"AA:BB:CC": "Vendor", ...}` per spec §6 — and builds an
// immutable VendorTable from it. The file itself is an external,
// read-only collaborator; LANscape only knows how to load and query it.
func LoadVendorTable(path string) (*VendorTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vendor dataset %s: %w", path, err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse vendor dataset %s: %w", path, err)
	}

	return NewVendorTable(raw), nil
}
