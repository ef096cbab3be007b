package config

import (
	"encoding/json"
	"testing"
)

func TestScanConfig_JSONRoundTrip(t *testing.T) {
	cfg := DefaultScanConfig()
	cfg.Subnet = "192.168.1.0/24"
	cfg.LookupType = []LookupMethod{LookupICMP, LookupARP, LookupPoke}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got ScanConfig
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if got.Subnet != cfg.Subnet {
		t.Errorf("Subnet = %q, want %q", got.Subnet, cfg.Subnet)
	}
	if len(got.LookupType) != len(cfg.LookupType) {
		t.Fatalf("LookupType = %v, want %v", got.LookupType, cfg.LookupType)
	}
	for i, m := range cfg.LookupType {
		if got.LookupType[i] != m {
			t.Errorf("LookupType[%d] = %q, want %q", i, got.LookupType[i], m)
		}
	}
	if got.Ping != cfg.Ping || got.Arp != cfg.Arp || got.PortScan != cfg.PortScan {
		t.Error("nested config structs did not round-trip unchanged")
	}
}

func TestScanConfig_UnmarshalLookupTypeCaseInsensitive(t *testing.T) {
	raw := `{"lookup_type": ["icmp", "Arp", "POKE_THEN_ARP"]}`

	var cfg ScanConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	want := []LookupMethod{LookupICMP, LookupARP, LookupPokeThenARP}
	if len(cfg.LookupType) != len(want) {
		t.Fatalf("LookupType = %v, want %v", cfg.LookupType, want)
	}
	for i, m := range want {
		if cfg.LookupType[i] != m {
			t.Errorf("LookupType[%d] = %q, want %q", i, cfg.LookupType[i], m)
		}
	}
}

func TestScanConfig_UnmarshalUnknownLookupTypeErrors(t *testing.T) {
	raw := `{"lookup_type": ["not_a_real_method"]}`

	var cfg ScanConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err == nil {
		t.Fatal("expected an error for an unknown lookup_type entry")
	}
}

func TestScanConfig_Clone_IsIndependent(t *testing.T) {
	cfg := DefaultScanConfig()
	clone := cfg.Clone()

	clone.LookupType[0] = LookupPoke
	clone.Poke.Ports[0] = 9999

	if cfg.LookupType[0] == LookupPoke {
		t.Error("mutating clone.LookupType mutated the original ScanConfig")
	}
	if cfg.Poke.Ports[0] == 9999 {
		t.Error("mutating clone.Poke.Ports mutated the original ScanConfig")
	}
}

func TestParseLookupMethod_CaseInsensitive(t *testing.T) {
	got, err := ParseLookupMethod("icmp_then_arp")
	if err != nil {
		t.Fatalf("ParseLookupMethod failed: %v", err)
	}
	if got != LookupICMPThenARP {
		t.Errorf("got %q, want %q", got, LookupICMPThenARP)
	}

	if _, err := ParseLookupMethod("bogus"); err == nil {
		t.Error("expected an error for an unknown lookup method")
	}
}

func TestDefaultAppConfig_HasPortCatalogDir(t *testing.T) {
	cfg := DefaultAppConfig()
	if cfg.PortCatalogDir == "" {
		t.Error("DefaultAppConfig().PortCatalogDir should not be empty")
	}
	if cfg.Port == 0 {
		t.Error("DefaultAppConfig().Port should have a non-zero default")
	}
}
