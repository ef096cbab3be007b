// Package servicescan implements ServiceScanner (spec §4.5): multi-probe
// fingerprinting of an open TCP port, with weighted service identification
// and TLS escalation.
package servicescan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lanscape/internal/config"
	"lanscape/internal/core/dialer"
	"lanscape/internal/core/scanmodel"
)

const JobName = "_scan_service"

// printerPorts short-circuits the probe set entirely: poking a real
// printer on these ports can cause it to emit a blank page (spec §4.5 step 1).
var printerPorts = map[int]bool{9100: true, 631: true}

// Scanner runs ServiceScanner (spec §4.5) against one (ip, port) per Scan
// call; each call bounds its own probes with MaxConcurrentProbes.
type Scanner struct {
	cfg     config.ServiceScanConfig
	catalog *Catalog
	stats   *scanmodel.JobStats
}

func New(cfg config.ServiceScanConfig, catalog *Catalog, stats *scanmodel.JobStats) *Scanner {
	return &Scanner{cfg: cfg, catalog: catalog, stats: stats}
}

// probeOutcome is one probe's raw result, fed into the race for the
// first non-whitespace reply.
type probeOutcome struct {
	probe    Probe
	response []byte
}

// Scan implements scan_service(ip, port, cfg) -> ServiceScanResult (spec
// §4.5 steps 1-9).
func (s *Scanner) Scan(ctx context.Context, ip string, port int) *scanmodel.ServiceInfo {
	start := time.Now()
	s.stats.StartJob(JobName)
	defer func() { s.stats.FinishJob(JobName, time.Since(start)) }()

	if printerPorts[port] {
		return &scanmodel.ServiceInfo{Port: port, Service: "Printer"}
	}

	probes := GetPortProbes(port, s.cfg.LookupType, s.catalog)
	timeout := time.Duration(s.cfg.Timeout * float64(time.Second))
	maxConcurrent := s.cfg.MaxConcurrentProbes
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	pctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, maxConcurrent)
	results := make(chan probeOutcome, len(probes))

	probesSent := 0
	for _, p := range probes {
		select {
		case <-ctx.Done():
		default:
			probesSent++
			sem <- struct{}{}
			go func(p Probe) {
				defer func() { <-sem }()
				resp, ok := runProbe(pctx, ip, port, p, timeout)
				if ok {
					results <- probeOutcome{probe: p, response: resp}
				} else {
					results <- probeOutcome{probe: p, response: nil}
				}
			}(p)
		}
	}

	var candidate *probeOutcome
	probesReceived := 0
	for i := 0; i < probesSent; i++ {
		res := <-results
		if res.response != nil {
			probesReceived++
			if candidate == nil && len(strings.TrimSpace(string(res.response))) > 0 {
				candidate = &res
				cancel() // best-effort cancel of remaining siblings
			}
		}
	}

	info := &scanmodel.ServiceInfo{
		Port:           port,
		ProbesSent:     probesSent,
		ProbesReceived: probesReceived,
	}

	var rawResponse []byte
	var requestPayload []byte
	if candidate != nil {
		rawResponse = candidate.response
		requestPayload = candidate.probe.Payload
	}

	// TLS escalation (spec §4.5 step 6).
	if LooksLikeTLS(rawResponse) {
		info.IsTLS = true
		if req, resp, ok := tlsReprobe(ctx, ip, port, timeout); ok && resp != "" {
			info.Request = CleanResponse(req)
			info.Response = CleanResponse(resp)
			match := Identify([]byte(resp), true, s.hints())
			info.Service = match.Service
			return info
		}
		info.Service = "HTTPS"
		return info
	}

	if rawResponse != nil {
		info.Request = CleanResponse(string(requestPayload))
		info.Response = CleanResponse(string(rawResponse))
	}

	match := Identify(rawResponse, false, s.hints())
	info.Service = match.Service
	return info
}

func (s *Scanner) hints() []HintSet {
	if s.catalog == nil {
		return nil
	}
	return s.catalog.Hints()
}

// runProbe opens a connection, optionally writes the probe payload,
// reads up to 1024 bytes, and reports whether the connection and write
// succeeded; a read that ends with no bytes yields an empty, non-nil reply.
// Expected connection errors (refused/reset/timeout) are silent per spec
// §4.5 step 3; the caller treats a false return as "no reply".
func runProbe(ctx context.Context, ip string, port int, p Probe, timeout time.Duration) ([]byte, bool) {
	address := fmt.Sprintf("%s:%d", ip, port)

	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := dialer.Get().DialContext(dctx, "tcp", address)
	if err != nil {
		return nil, false
	}
	defer conn.Close()

	if len(p.Payload) > 0 {
		conn.SetWriteDeadline(time.Now().Add(timeout))
		if _, err := conn.Write(p.Payload); err != nil {
			return nil, false
		}
	}

	conn.SetReadDeadline(time.Now().Add(timeout / 2))
	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if n == 0 && err != nil {
		return []byte{}, true
	}
	return buf[:n], true
}
