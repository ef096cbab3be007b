//go:build !windows

package liveness

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
	"time"
)

// ArpProber resolves a neighbor's MAC address by shelling out to the OS
// arp(8) command. It only succeeds for hosts already in the local ARP/NDP
// cache or reachable on a directly-connected subnet, matching the ARP
// lookup_type's scope in the host's own network stack.
type ArpProber struct{}

func NewArpProber() *ArpProber {
	return &ArpProber{}
}

var macRE = regexp.MustCompile(`(?i)([0-9a-f]{1,2}([:-][0-9a-f]{1,2}){5})`)

// normalizeMAC rewrites a dash-separated MAC (seen on some BSD/macOS arp
// builds) to the canonical colon-separated form and uppercases it.
func normalizeMAC(mac string) string {
	return strings.ToUpper(strings.ReplaceAll(mac, "-", ":"))
}

func (p *ArpProber) Probe(ctx context.Context, ip string, timeout time.Duration) (*ProbeResult, error) {
	arpPath, err := exec.LookPath("arp")
	if err != nil {
		return nil, err
	}

	var args []string
	if runtime.GOOS == "linux" {
		args = []string{"-n", ip}
	} else {
		args = []string{ip}
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout bytes.Buffer
	cmd := exec.CommandContext(cctx, arpPath, args...)
	cmd.Stdout = &stdout
	start := time.Now()
	if err := cmd.Run(); err != nil {
		return Dead("arp"), nil
	}

	output := stdout.String()
	if strings.Contains(strings.ToLower(output), "no entry") ||
		strings.Contains(strings.ToLower(output), "incomplete") {
		return Dead("arp"), nil
	}

	matches := macRE.FindAllString(output, -1)
	if len(matches) == 0 {
		return Dead("arp"), nil
	}

	res := NewProbeResult("arp", time.Since(start), 0)
	res.MAC = normalizeMAC(matches[len(matches)-1])
	return res, nil
}

// IsARPSupported reports whether the arp(8) command is available on this
// host, used to downgrade a requested ARP lookup_type to a warning instead
// of a hard failure when the binary is missing.
func IsARPSupported() bool {
	_, err := exec.LookPath("arp")
	return err == nil
}
