// Package config defines LANscape's configuration types: the ambient
// AppConfig/LogConfig pair loaded at process start, and the ScanConfig
// tree that parameterizes a single scan run.
package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// LookupMethod names one entry of ScanConfig.LookupType. Entries are
// consulted in order by the liveness chain (see internal/core/scanner/liveness).
type LookupMethod string

const (
	LookupICMP        LookupMethod = "ICMP"
	LookupARP         LookupMethod = "ARP"
	LookupPoke        LookupMethod = "POKE"
	LookupPokeThenARP LookupMethod = "POKE_THEN_ARP"
	LookupICMPThenARP LookupMethod = "ICMP_THEN_ARP"
)

// ParseLookupMethod is case-insensitive, matching spec §6's
// "array of enum names, case-insensitive" wire contract.
func ParseLookupMethod(s string) (LookupMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(LookupICMP):
		return LookupICMP, nil
	case string(LookupARP):
		return LookupARP, nil
	case string(LookupPoke):
		return LookupPoke, nil
	case string(LookupPokeThenARP):
		return LookupPokeThenARP, nil
	case string(LookupICMPThenARP):
		return LookupICMPThenARP, nil
	default:
		return "", fmt.Errorf("unknown lookup_type: %q", s)
	}
}

// ServiceScanStrategy controls how many service probes get_port_probes
// generates for a given port (spec §4.5).
type ServiceScanStrategy string

const (
	StrategyLazy       ServiceScanStrategy = "LAZY"
	StrategyBasic      ServiceScanStrategy = "BASIC"
	StrategyAggressive ServiceScanStrategy = "AGGRESSIVE"
)

// AppConfig is the top-level process configuration: server binding, the
// active log settings, and the port-list catalog directory.
// Unlike ScanConfig, AppConfig is watched and may be hot-reloaded.
type AppConfig struct {
	Host           string    `mapstructure:"host" yaml:"host" json:"host"`
	Port           int       `mapstructure:"port" yaml:"port" json:"port"`
	Persistent     bool      `mapstructure:"persistent" yaml:"persistent" json:"persistent"`
	PortCatalogDir string    `mapstructure:"port_catalog_dir" yaml:"port_catalog_dir" json:"port_catalog_dir"`
	Log            LogConfig `mapstructure:"log" yaml:"log" json:"log"`
}

// LogConfig mirrors the teacher's logger.LoggerManager configuration
// surface (level/format/output/rotation), scoped to what internal/pkg/logger
// actually wires up.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level" json:"level"`               // debug|info|warn|error
	Format     string `mapstructure:"format" yaml:"format" json:"format"`            // json|text
	Output     string `mapstructure:"output" yaml:"output" json:"output"`            // stdout|stderr|file
	FilePath   string `mapstructure:"file_path" yaml:"file_path" json:"file_path"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size" json:"max_size"`       // MB
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" json:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age" json:"max_age"`          // days
	Compress   bool   `mapstructure:"compress" yaml:"compress" json:"compress"`
	Caller     bool   `mapstructure:"caller" yaml:"caller" json:"caller"`
}

func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:      "text",
		Output:     "stdout",
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
	}
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		Host:           "0.0.0.0",
		Port:           5000,
		Persistent:     false,
		PortCatalogDir: "./configs/port_lists",
		Log:            DefaultLogConfig(),
	}
}

// PingConfig controls the ICMP lookup_type (spec §4.2, §6).
type PingConfig struct {
	Attempts   int     `mapstructure:"attempts" yaml:"attempts" json:"attempts"`
	PingCount  int     `mapstructure:"ping_count" yaml:"ping_count" json:"ping_count"`
	Timeout    float64 `mapstructure:"timeout" yaml:"timeout" json:"timeout"` // seconds
	RetryDelay float64 `mapstructure:"retry_delay" yaml:"retry_delay" json:"retry_delay"`
}

// ArpConfig controls the ARP lookup_type.
type ArpConfig struct {
	Attempts int     `mapstructure:"attempts" yaml:"attempts" json:"attempts"`
	Timeout  float64 `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
}

// PokeConfig controls the POKE lookup_type. Fields are the minimum spec.md
// guarantees across forks: {timeout, retries} (see SPEC_FULL.md Open
// Question 4); Ports is LANscape's own addition naming which well-known
// ports get poked.
type PokeConfig struct {
	Timeout float64 `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	Retries int     `mapstructure:"retries" yaml:"retries" json:"retries"`
	Ports   []int   `mapstructure:"ports" yaml:"ports" json:"ports"`
}

// PortScanConfig controls PortScanner (spec §4.4).
type PortScanConfig struct {
	Timeout    float64 `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	Retries    int     `mapstructure:"retries" yaml:"retries" json:"retries"`
	RetryDelay float64 `mapstructure:"retry_delay" yaml:"retry_delay" json:"retry_delay"`
}

// ServiceScanConfig controls ServiceScanner (spec §4.5).
type ServiceScanConfig struct {
	Timeout             float64             `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	LookupType          ServiceScanStrategy `mapstructure:"lookup_type" yaml:"lookup_type" json:"lookup_type"`
	MaxConcurrentProbes int                 `mapstructure:"max_concurrent_probes" yaml:"max_concurrent_probes" json:"max_concurrent_probes"`
}

// ScanConfig is the single immutable parameterization of one scan run.
// It is deep-copied by value (all fields are either scalars or slices
// that are themselves copied by Clone) and must round-trip losslessly
// through JSON per spec §3/§8 invariant 4.
type ScanConfig struct {
	Subnet  string `mapstructure:"subnet" yaml:"subnet" json:"subnet"`
	PortList string `mapstructure:"port_list" yaml:"port_list" json:"port_list"`

	TMultiplier float64 `mapstructure:"t_multiplier" yaml:"t_multiplier" json:"t_multiplier"`
	TCntPortScan int    `mapstructure:"t_cnt_port_scan" yaml:"t_cnt_port_scan" json:"t_cnt_port_scan"`
	TCntPortTest int    `mapstructure:"t_cnt_port_test" yaml:"t_cnt_port_test" json:"t_cnt_port_test"`
	TCntIsAlive  int    `mapstructure:"t_cnt_isalive" yaml:"t_cnt_isalive" json:"t_cnt_isalive"`

	TaskScanPorts        bool `mapstructure:"task_scan_ports" yaml:"task_scan_ports" json:"task_scan_ports"`
	TaskScanPortServices bool `mapstructure:"task_scan_port_services" yaml:"task_scan_port_services" json:"task_scan_port_services"`

	LookupType []LookupMethod `mapstructure:"lookup_type" yaml:"lookup_type" json:"lookup_type"`

	Ping    PingConfig        `mapstructure:"ping_config" yaml:"ping_config" json:"ping_config"`
	Arp     ArpConfig         `mapstructure:"arp_config" yaml:"arp_config" json:"arp_config"`
	Poke    PokeConfig        `mapstructure:"poke_config" yaml:"poke_config" json:"poke_config"`
	PortScan PortScanConfig   `mapstructure:"port_scan_config" yaml:"port_scan_config" json:"port_scan_config"`
	ServiceScan ServiceScanConfig `mapstructure:"service_scan_config" yaml:"service_scan_config" json:"service_scan_config"`
}

// DefaultScanConfig matches the "accurate" default referenced by
// /api/tools/config/defaults.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		PortList:             "top_100",
		TMultiplier:          1.0,
		TCntPortScan:         10,
		TCntPortTest:         128,
		TCntIsAlive:          256,
		TaskScanPorts:        true,
		TaskScanPortServices: true,
		LookupType:           []LookupMethod{LookupICMPThenARP},
		Ping: PingConfig{
			Attempts:   1,
			PingCount:  1,
			Timeout:    1.0,
			RetryDelay: 0.2,
		},
		Arp: ArpConfig{
			Attempts: 1,
			Timeout:  1.0,
		},
		Poke: PokeConfig{
			Timeout: 0.5,
			Retries: 1,
			Ports:   []int{80, 443, 22, 445},
		},
		PortScan: PortScanConfig{
			Timeout:    1.0,
			Retries:    1,
			RetryDelay: 0.1,
		},
		ServiceScan: ServiceScanConfig{
			Timeout:             2.0,
			LookupType:          StrategyBasic,
			MaxConcurrentProbes: 6,
		},
	}
}

// Clone returns a deep copy, satisfying spec §3's "deep-copyable" ScanConfig
// requirement — every ReliabilityQueue job and ScanManager.NewScan call
// must own an independent copy so later mutation of the caller's struct
// cannot race with a running scan.
func (c ScanConfig) Clone() ScanConfig {
	clone := c
	clone.LookupType = append([]LookupMethod(nil), c.LookupType...)
	clone.Poke.Ports = append([]int(nil), c.Poke.Ports...)
	return clone
}

// scanConfigWire exists only so LookupType (a []LookupMethod, itself a
// named string slice) marshals/unmarshals as an array of plain enum
// strings with case-insensitive decoding, matching spec §6 exactly.
type scanConfigWire ScanConfig

func (c ScanConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(scanConfigWire(c))
}

func (c *ScanConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		scanConfigWire
		LookupType []string `json:"lookup_type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = ScanConfig(raw.scanConfigWire)
	c.LookupType = c.LookupType[:0]
	for _, s := range raw.LookupType {
		m, err := ParseLookupMethod(s)
		if err != nil {
			return fmt.Errorf("scan config: %w", err)
		}
		c.LookupType = append(c.LookupType, m)
	}
	return nil
}
