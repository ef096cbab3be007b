package servicescan

import (
	"testing"

	"lanscape/internal/config"
)

func TestGetPortProbes_LazyIsBaselinePlusPortSpecific(t *testing.T) {
	probes := GetPortProbes(6379, config.StrategyLazy, nil)

	names := map[string]bool{}
	for _, p := range probes {
		names[p.Name] = true
	}
	if !names["null"] || !names["crlf"] {
		t.Errorf("expected baseline probes present, got %v", names)
	}
	if !names["redis"] {
		t.Errorf("expected the unconditional redis probe for port 6379, got %v", names)
	}
}

func TestGetPortProbes_BasicConsultsCatalog(t *testing.T) {
	catalog := &Catalog{
		entries: map[string]CatalogEntry{
			"custom": {Ports: []int{9999}, Probe: "PING\\r\\n"},
		},
		order:  []string{"custom"},
		byPort: map[int][]string{9999: {"custom"}},
	}

	probes := GetPortProbes(9999, config.StrategyBasic, catalog)

	found := false
	for _, p := range probes {
		if p.Name == "custom" {
			found = true
		}
	}
	if !found {
		t.Errorf("StrategyBasic should include catalog probes for the port, got %+v", probes)
	}
}

func TestGetPortProbes_LazyIgnoresCatalog(t *testing.T) {
	catalog := &Catalog{
		entries: map[string]CatalogEntry{
			"custom": {Ports: []int{9999}, Probe: "PING\\r\\n"},
		},
		order:  []string{"custom"},
		byPort: map[int][]string{9999: {"custom"}},
	}

	probes := GetPortProbes(9999, config.StrategyLazy, catalog)
	for _, p := range probes {
		if p.Name == "custom" {
			t.Errorf("StrategyLazy should not consult the catalog, found %+v", probes)
		}
	}
}

func TestGetPortProbes_AggressiveIncludesAllProtocolProbes(t *testing.T) {
	probes := GetPortProbes(1, config.StrategyAggressive, nil)

	names := map[string]bool{}
	for _, p := range probes {
		names[p.Name] = true
	}
	for _, want := range []string{"smb", "rdp", "redis", "postgres", "socks5", "mqtt"} {
		if !names[want] {
			t.Errorf("StrategyAggressive should include every protocol probe, missing %q in %v", want, names)
		}
	}
}

func TestDedupeProbes_RemovesExactDuplicates(t *testing.T) {
	in := []Probe{
		{Name: "a", Payload: []byte("x")},
		{Name: "a", Payload: []byte("x")},
		{Name: "a", Payload: []byte("y")},
	}
	out := dedupeProbes(in)
	if len(out) != 2 {
		t.Fatalf("dedupeProbes() = %+v, want 2 entries", out)
	}
}
