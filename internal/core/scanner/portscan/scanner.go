// Package portscan implements PortScanner (spec §4.4): bounded-concurrency
// TCP-connect probing of a configured port list against live devices.
package portscan

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"lanscape/internal/config"
	"lanscape/internal/core/dialer"
	"lanscape/internal/core/scanmodel"
)

const JobName = "_test_port"

// WorkerCount applies t_multiplier to a base thread-pool size, floored at
// 1 (spec §4.4, §5).
func WorkerCount(base int, multiplier float64) int {
	n := int(math.Round(float64(base) * multiplier))
	if n < 1 {
		return 1
	}
	return n
}

// Scanner runs test_port across every (device, port) pair under two
// nested bounded worker pools: one limiting concurrent devices, one
// limiting concurrent ports per device.
type Scanner struct {
	cfg   config.PortScanConfig
	stats *scanmodel.JobStats
}

func New(cfg config.PortScanConfig, stats *scanmodel.JobStats) *Scanner {
	return &Scanner{cfg: cfg, stats: stats}
}

// ScanDevices fans out across devices (bounded by deviceWorkers) and,
// within each device, across ports (bounded by portWorkers). running is
// consulted at each device/port boundary for cooperative cancellation.
func (s *Scanner) ScanDevices(ctx context.Context, devices []*scanmodel.Device, ports []int, deviceWorkers, portWorkers int, running func() bool) {
	sem := make(chan struct{}, deviceWorkers)
	var wg sync.WaitGroup

	for _, d := range devices {
		if !running() {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(dev *scanmodel.Device) {
			defer wg.Done()
			defer func() { <-sem }()
			s.scanDevice(ctx, dev, ports, portWorkers, running)
		}(d)
	}
	wg.Wait()
}

func (s *Scanner) scanDevice(ctx context.Context, d *scanmodel.Device, ports []int, portWorkers int, running func() bool) {
	sem := make(chan struct{}, portWorkers)
	var wg sync.WaitGroup

	for _, port := range ports {
		if !running() {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(p int) {
			defer wg.Done()
			defer func() { <-sem }()
			s.testPort(ctx, d, p)
		}(port)
	}
	wg.Wait()
}

// testPort implements spec §4.4's test_port: connect, retry on failure,
// enforce an overall wall-clock cap that silently converts to "closed".
func (s *Scanner) testPort(ctx context.Context, d *scanmodel.Device, port int) {
	start := time.Now()
	s.stats.StartJob(JobName)
	defer func() { s.stats.FinishJob(JobName, time.Since(start)) }()

	timeout := time.Duration(s.cfg.Timeout * float64(time.Second))
	retryDelay := time.Duration(s.cfg.RetryDelay * float64(time.Second))
	enforcerCap := time.Duration(float64(timeout) * float64(s.cfg.Retries+1) * 1.5)

	cctx, cancel := context.WithTimeout(ctx, enforcerCap)
	defer cancel()

	address := fmt.Sprintf("%s:%d", d.IP, port)
	open := false

	for attempt := 0; attempt <= s.cfg.Retries; attempt++ {
		select {
		case <-cctx.Done():
			d.IncrementPortsScanned()
			return
		default:
		}

		dctx, dcancel := context.WithTimeout(cctx, timeout)
		conn, err := dialer.Get().DialContext(dctx, "tcp", address)
		dcancel()
		if err == nil {
			conn.Close()
			open = true
			break
		}

		if attempt < s.cfg.Retries {
			select {
			case <-time.After(retryDelay):
			case <-cctx.Done():
				d.IncrementPortsScanned()
				return
			}
		}
	}

	if open {
		d.AddOpenPort(port)
	}
	d.IncrementPortsScanned()
}
