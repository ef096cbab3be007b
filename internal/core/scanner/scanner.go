// Package scanner implements Scanner (spec §4.6): the stage machine that
// drives one scan run from "instantiated" through device discovery, port
// testing, and service scanning to "complete", with cooperative
// cancellation via Terminate.
package scanner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"lanscape/internal/config"
	"lanscape/internal/core/ipparser"
	"lanscape/internal/core/metadata"
	"lanscape/internal/core/scanmodel"
	"lanscape/internal/core/scanner/liveness"
	"lanscape/internal/core/scanner/portscan"
	"lanscape/internal/core/scanner/servicescan"
	"lanscape/internal/pkg/logger"
	"lanscape/internal/portcatalog"
)

const hostDetailsJob = "_get_host_details"

// terminationGrace and terminationPoll bound Terminate's drain wait
// (spec §4.6: "polls every 0.5s for up to 10s, then reports
// TerminationFailure").
const (
	terminationGrace = 10 * time.Second
	terminationPoll  = 500 * time.Millisecond
)

// Scanner owns exactly one scan run: its ScanConfig, its live Results,
// and the goroutines that populate it. A Scanner is used once.
type Scanner struct {
	cfg      config.ScanConfig
	results  *scanmodel.Results
	stats    *scanmodel.JobStats
	vendors  *metadata.VendorTable
	catalog  *portcatalog.Catalog
	svcCat   *servicescan.Catalog

	running atomic.Bool
	stopped atomic.Bool
	once    sync.Once

	ips []string
}

// New builds a Scanner. Subnet parsing happens here so a malformed
// expression surfaces as an InputError before any goroutine starts,
// matching spec §7's "never half-starts a scan on bad input" invariant.
func New(cfg config.ScanConfig, vendors *metadata.VendorTable, catalog *portcatalog.Catalog, svcCat *servicescan.Catalog, stats *scanmodel.JobStats) (*Scanner, error) {
	parsed, err := ipparser.Parse(cfg.Subnet)
	if err != nil {
		return nil, err
	}
	ips := dedupe(parsed)

	results := scanmodel.NewResults(cfg.Subnet, cfg.PortList, cfg.TMultiplier, len(ips))

	s := &Scanner{
		cfg:     cfg,
		results: results,
		stats:   stats,
		vendors: vendors,
		catalog: catalog,
		svcCat:  svcCat,
		ips:     ips,
	}
	s.running.Store(true)
	return s, nil
}

func (s *Scanner) Results() *scanmodel.Results { return s.results }

func (s *Scanner) isRunning() bool { return s.running.Load() }

// Start runs the scan to completion (or until Terminate flips running to
// false) and returns once every stage has settled. Callers that want
// asynchronous execution invoke Start in its own goroutine
// (ScanManager.StartAsync does this for POST /api/scan).
func (s *Scanner) Start(ctx context.Context) {
	s.once.Do(func() {
		s.run(ctx)
	})
}

func (s *Scanner) run(ctx context.Context) {
	s.results.MarkStarted()
	s.logStage("scanning devices", "discovering live hosts")
	s.results.SetStage(scanmodel.StageScanningDevices)

	s.scanDevices(ctx)

	if !s.isRunning() {
		s.finishTerminated()
		return
	}

	devices := s.results.Devices()

	if s.cfg.TaskScanPorts && len(devices) > 0 {
		s.logStage("testing ports", fmt.Sprintf("%d live hosts", len(devices)))
		s.results.SetStage(scanmodel.StageTestingPorts)
		s.scanPorts(ctx, devices)
	}

	if !s.isRunning() {
		s.finishTerminated()
		return
	}

	if s.cfg.TaskScanPortServices && len(devices) > 0 {
		s.logStage("service scanning", fmt.Sprintf("%d live hosts", len(devices)))
		s.results.SetStage(scanmodel.StageServiceScanning)
		s.scanServices(ctx, devices)
	}

	if !s.isRunning() {
		s.finishTerminated()
		return
	}

	s.results.SetStage(scanmodel.StageCompleteScan)
	s.logStage("complete", fmt.Sprintf("%d/%d devices alive", len(devices), len(s.ips)))
}

func (s *Scanner) finishTerminated() {
	s.results.SetStage(scanmodel.StageTerminated)
	s.stopped.Store(true)
	s.logStage("terminated", "scan cancelled before completion")
}

func (s *Scanner) logStage(stage, msg string) {
	logger.LogScanStage(s.results.UID, s.cfg.Subnet, stage, msg, s.results.Runtime())
}

// scanDevices fans out the liveness+metadata pipeline across
// t_cnt_isalive*t_multiplier workers (spec §4.2, §4.3, §4.6).
func (s *Scanner) scanDevices(ctx context.Context) {
	chain := liveness.Build(&s.cfg)
	workers := portscan.WorkerCount(s.cfg.TCntIsAlive, s.cfg.TMultiplier)

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for _, ip := range s.ips {
		if !s.isRunning() {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(ip string) {
			defer wg.Done()
			defer func() { <-sem }()
			s.scanOneHost(ctx, chain, ip)
		}(ip)
	}
	wg.Wait()
}

// scanOneHost implements _get_host_details (spec §4.2/§4.3): run the
// liveness chain, and for an alive host resolve hostname/MAC/vendor
// concurrently before recording it. It always increments
// DevicesScanned, alive or not, so progress estimation advances evenly
// over the whole address list.
func (s *Scanner) scanOneHost(ctx context.Context, chain *liveness.Chain, ip string) {
	start := time.Now()
	s.stats.StartJob(hostDetailsJob)
	defer func() { s.stats.FinishJob(hostDetailsJob, time.Since(start)) }()
	defer s.results.IncrementDevicesScanned()

	timeout := probeTimeout(&s.cfg)
	res, err := chain.Probe(ctx, ip, timeout)
	if err != nil {
		return
	}
	if res == nil || !res.Alive {
		return
	}

	d := scanmodel.NewDevice(ip)
	d.MarkAlive(true, res.MAC)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if hostname := metadata.ResolveHostname(ctx, ip); hostname != "" {
			d.SetHostname(hostname)
		}
	}()
	go func() {
		defer wg.Done()
		if mac := d.PrimaryMAC(); mac != "" && s.vendors != nil {
			if vendor := s.vendors.Lookup(mac); vendor != "" {
				d.SetManufacturer(vendor)
			}
		}
	}()
	wg.Wait()

	d.SetStage(scanmodel.StageScanning)
	s.results.AppendDevice(d)
}

// probeTimeout picks the longest of the ping, ARP and poke timeouts
// (whether or not each method is in the lookup chain); Chain.Probe hands
// it to every prober, so no method gets less than its own configured
// timeout.
func probeTimeout(cfg *config.ScanConfig) time.Duration {
	max := cfg.Ping.Timeout
	if cfg.Arp.Timeout > max {
		max = cfg.Arp.Timeout
	}
	if cfg.Poke.Timeout > max {
		max = cfg.Poke.Timeout
	}
	if max <= 0 {
		max = 1.0
	}
	return time.Duration(max * float64(time.Second))
}

func (s *Scanner) scanPorts(ctx context.Context, devices []*scanmodel.Device) {
	ports, err := s.catalog.Ports(s.cfg.PortList)
	if err != nil {
		s.results.AddError(scanmodel.NewErrorRecord("port_list", err))
		return
	}

	deviceWorkers := portscan.WorkerCount(s.cfg.TCntPortScan, s.cfg.TMultiplier)
	portWorkers := portscan.WorkerCount(s.cfg.TCntPortTest, s.cfg.TMultiplier)

	ps := portscan.New(s.cfg.PortScan, s.stats)
	ps.ScanDevices(ctx, devices, ports, deviceWorkers, portWorkers, s.isRunning)
}

func (s *Scanner) scanServices(ctx context.Context, devices []*scanmodel.Device) {
	ss := servicescan.New(s.cfg.ServiceScan, s.svcCat, s.stats)

	deviceWorkers := portscan.WorkerCount(s.cfg.TCntPortScan, s.cfg.TMultiplier)
	sem := make(chan struct{}, deviceWorkers)
	var wg sync.WaitGroup

	for _, d := range devices {
		if !s.isRunning() {
			break
		}
		ports := d.OpenPorts()
		if len(ports) == 0 {
			continue
		}
		sort.Ints(ports)

		wg.Add(1)
		sem <- struct{}{}
		go func(dev *scanmodel.Device, ports []int) {
			defer wg.Done()
			defer func() { <-sem }()
			for _, port := range ports {
				if !s.isRunning() {
					return
				}
				info := ss.Scan(ctx, dev.IP, port)
				dev.SetServiceInfo(info)
			}
		}(d, ports)
	}
	wg.Wait()
}

// Terminate flags the scan to stop at its next cooperative checkpoint and
// waits up to terminationGrace for every in-flight job kind to drain
// (spec §4.6). It returns TerminationFailure if the grace window expires
// with work still outstanding.
func (s *Scanner) Terminate() error {
	if s.results.Stage().Terminal() {
		return nil
	}

	s.results.SetStage(scanmodel.StageTerminating)
	s.running.Store(false)

	deadline := time.Now().Add(terminationGrace)
	for time.Now().Before(deadline) {
		residual := s.stats.RunningTotal()
		if len(residual) == 0 {
			return nil
		}
		time.Sleep(terminationPoll)
	}

	residual := s.stats.RunningTotal()
	if len(residual) == 0 {
		return nil
	}
	return &scanmodel.TerminationFailure{Residual: residual}
}

// defaultAvgIsAlive is calc_percent_complete's fallback for
// timing["_get_host_details"] before any host has finished (spec §4.6).
const defaultAvgIsAlive = 4500 * time.Millisecond

// PercentComplete implements spec §4.6's calc_percent_complete verbatim:
// a remaining-time estimate built from JobStats' running-mean timings for
// "_get_host_details" and portscan.JobName ("_test_port"), weighted by
// the worker counts actually in play for this scan.
func (s *Scanner) PercentComplete() float64 {
	stage := s.results.Stage()
	if stage == scanmodel.StageCompleteScan || stage == scanmodel.StageTerminated {
		return 100.0
	}

	total := float64(s.results.DevicesTotal)
	if total <= 0 {
		return 100.0
	}
	scanned := float64(s.results.DevicesScanned())

	isaliveWorkers := float64(portscan.WorkerCount(s.cfg.TCntIsAlive, s.cfg.TMultiplier))
	avgIsAlive := s.stats.AverageTiming(hostDetailsJob, 1, defaultAvgIsAlive).Seconds()
	totalLiveness := total * avgIsAlive / isaliveWorkers
	remainingLiveness := (total - scanned) * avgIsAlive / isaliveWorkers
	if remainingLiveness < 0 {
		remainingLiveness = 0
	}

	aliveFrac := 0.1
	if scanned > 0 {
		if f := float64(len(s.results.Devices())) / scanned; f > aliveFrac {
			aliveFrac = f
		}
	}
	estAlive := aliveFrac * total

	numPorts := 0.0
	if s.cfg.TaskScanPorts && s.catalog != nil {
		if ports, err := s.catalog.Ports(s.cfg.PortList); err == nil {
			numPorts = float64(len(ports))
		}
	}

	avgPortTest := s.stats.AverageTiming(portscan.JobName, 20, 1*time.Second).Seconds()
	portScanWorkers := float64(portscan.WorkerCount(s.cfg.TCntPortScan, s.cfg.TMultiplier))
	portTestWorkers := float64(portscan.WorkerCount(s.cfg.TCntPortTest, s.cfg.TMultiplier))

	totalPort := estAlive * numPorts * avgPortTest / (portScanWorkers * portTestWorkers)
	remainingPortWork := estAlive*numPorts - float64(s.stats.Finished(portscan.JobName))
	if remainingPortWork < 0 {
		remainingPortWork = 0
	}
	remainingPort := remainingPortWork * avgPortTest / (portScanWorkers * portTestWorkers)

	totalEstimated := totalLiveness + totalPort
	if totalEstimated <= 0 {
		return 100.0
	}
	remaining := remainingLiveness + remainingPort

	return clampPercent(100.0 * (1.0 - remaining/totalEstimated))
}

// dedupe drops repeated addresses while preserving first-seen order.
// IPParser itself retains duplicates (spec §4.1); the Scanner is the
// layer that collapses them before dispatch (spec §4.1's SHOULD).
func dedupe(ips []string) []string {
	seen := make(map[string]struct{}, len(ips))
	out := make([]string, 0, len(ips))
	for _, ip := range ips {
		if _, ok := seen[ip]; ok {
			continue
		}
		seen[ip] = struct{}{}
		out = append(out, ip)
	}
	return out
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
