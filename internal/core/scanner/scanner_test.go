package scanner

import (
	"fmt"
	"math"
	"testing"
	"time"

	"lanscape/internal/config"
	"lanscape/internal/core/scanmodel"
	"lanscape/internal/core/scanner/portscan"
	"lanscape/internal/portcatalog"
)

func TestDedupe_PreservesFirstSeenOrder(t *testing.T) {
	in := []string{"10.0.0.1", "10.0.0.2", "10.0.0.1", "10.0.0.3", "10.0.0.2"}
	got := dedupe(in)
	want := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}

	if len(got) != len(want) {
		t.Fatalf("dedupe() = %v, want %v", got, want)
	}
	for i, ip := range want {
		if got[i] != ip {
			t.Errorf("index %d: got %s, want %s", i, got[i], ip)
		}
	}
}

func TestNew_DedupesParsedAddresses(t *testing.T) {
	cfg := config.DefaultScanConfig()
	cfg.Subnet = "10.0.0.5,10.0.0.5,10.0.0.6"

	s, err := New(cfg, nil, nil, nil, scanmodel.NewJobStats())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.Results().DevicesTotal != 2 {
		t.Errorf("DevicesTotal = %d, want 2 (duplicates collapsed)", s.Results().DevicesTotal)
	}
}

func TestNew_PropagatesInputError(t *testing.T) {
	cfg := config.DefaultScanConfig()
	cfg.Subnet = ""

	if _, err := New(cfg, nil, nil, nil, scanmodel.NewJobStats()); err == nil {
		t.Fatal("expected New to fail for an empty subnet")
	}
}

func TestPercentComplete_TerminalStagesAreAlwaysComplete(t *testing.T) {
	cfg := config.DefaultScanConfig()
	cfg.Subnet = "10.0.0.1"

	s, err := New(cfg, nil, nil, nil, scanmodel.NewJobStats())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	s.Results().SetStage(scanmodel.StageCompleteScan)
	if got := s.PercentComplete(); got != 100.0 {
		t.Errorf("PercentComplete() at StageCompleteScan = %v, want 100", got)
	}
}

// With no port catalog wired (nil), PercentComplete's port-time term is
// zero and the whole estimate collapses to calc_percent_complete's
// liveness term: remaining/total = (total-scanned)/total regardless of
// the configured worker count, since it cancels out of the ratio.
func TestPercentComplete_NoCatalogUsesLivenessTermOnly(t *testing.T) {
	cfg := config.DefaultScanConfig()
	cfg.Subnet = "10.0.0.1,10.0.0.2"

	s, err := New(cfg, nil, nil, nil, scanmodel.NewJobStats())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.Results().SetStage(scanmodel.StageScanningDevices)
	s.Results().IncrementDevicesScanned()

	got := s.PercentComplete()
	if got != 50.0 {
		t.Errorf("PercentComplete() with 1/2 devices scanned and no catalog = %v, want 50", got)
	}
}

func TestPercentComplete_AllDevicesScannedWithNoPortWorkIsComplete(t *testing.T) {
	cfg := config.DefaultScanConfig()
	cfg.Subnet = "10.0.0.1,10.0.0.2"
	cfg.TaskScanPorts = false

	s, err := New(cfg, nil, nil, nil, scanmodel.NewJobStats())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.Results().SetStage(scanmodel.StageTestingPorts)
	s.Results().IncrementDevicesScanned()
	s.Results().IncrementDevicesScanned()

	got := s.PercentComplete()
	if got != 100.0 {
		t.Errorf("PercentComplete() with every device scanned and no port work configured = %v, want 100", got)
	}
}

// TestPercentComplete_PortTimeTermWeighsRemainingWork exercises the
// second half of calc_percent_complete end to end: a wired port catalog,
// a known alive fraction, and a forced "_test_port" running mean (via 20
// samples, clearing the initial-skew default), checked against the
// formula computed independently here.
func TestPercentComplete_PortTimeTermWeighsRemainingWork(t *testing.T) {
	cfg := config.DefaultScanConfig()
	cfg.Subnet = "10.0.0.1-10.0.0.10" // 10 addresses
	cfg.PortList = "ten-ports"
	cfg.TaskScanPortServices = false

	tenPorts := map[string]string{}
	for _, p := range []int{21, 22, 23, 25, 53, 80, 110, 443, 445, 3389} {
		tenPorts[fmt.Sprintf("%d", p)] = "svc"
	}
	catalog := portcatalog.New("")
	if err := catalog.Put("ten-ports", tenPorts); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	stats := scanmodel.NewJobStats()
	for i := 0; i < 20; i++ {
		stats.FinishJob(portscan.JobName, 2*time.Second)
	}

	s, err := New(cfg, nil, catalog, nil, stats)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.Results().SetStage(scanmodel.StageTestingPorts)
	for i := 0; i < 10; i++ {
		s.Results().IncrementDevicesScanned()
	}
	for i := 1; i <= 5; i++ {
		s.Results().AppendDevice(scanmodel.NewDevice(fmt.Sprintf("10.0.0.%d", i)))
	}

	isaliveWorkers := float64(portscan.WorkerCount(cfg.TCntIsAlive, cfg.TMultiplier))
	portScanWorkers := float64(portscan.WorkerCount(cfg.TCntPortScan, cfg.TMultiplier))
	portTestWorkers := float64(portscan.WorkerCount(cfg.TCntPortTest, cfg.TMultiplier))

	avgIsAlive := defaultAvgIsAlive.Seconds() // no "_get_host_details" samples recorded
	totalLiveness := 10.0 * avgIsAlive / isaliveWorkers
	remainingLiveness := 0.0 // devices_scanned == devices_total

	aliveFrac := 5.0 / 10.0 // 5 alive devices out of 10 scanned
	estAlive := aliveFrac * 10.0
	avgPortTest := 2.0 // seconds, from the 20 forced samples above
	totalPort := estAlive * 10.0 * avgPortTest / (portScanWorkers * portTestWorkers)
	remainingPortWork := estAlive*10.0 - 20.0 // 20 "_test_port" finishes already recorded
	remainingPort := remainingPortWork * avgPortTest / (portScanWorkers * portTestWorkers)

	want := 100.0 * (1.0 - (remainingLiveness+remainingPort)/(totalLiveness+totalPort))

	got := s.PercentComplete()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("PercentComplete() = %v, want %v", got, want)
	}
}

func TestClampPercent(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{-5, 0},
		{0, 0},
		{55.5, 55.5},
		{100, 100},
		{140, 100},
	}
	for _, c := range cases {
		if got := clampPercent(c.in); got != c.want {
			t.Errorf("clampPercent(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTerminate_AlreadyTerminalIsNoop(t *testing.T) {
	cfg := config.DefaultScanConfig()
	cfg.Subnet = "10.0.0.1"

	s, err := New(cfg, nil, nil, nil, scanmodel.NewJobStats())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.Results().SetStage(scanmodel.StageCompleteScan)

	if err := s.Terminate(); err != nil {
		t.Errorf("Terminate() on an already-terminal scan = %v, want nil", err)
	}
}

func TestTerminate_NoResidualJobsReturnsImmediately(t *testing.T) {
	cfg := config.DefaultScanConfig()
	cfg.Subnet = "10.0.0.1"

	s, err := New(cfg, nil, nil, nil, scanmodel.NewJobStats())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := s.Terminate(); err != nil {
		t.Errorf("Terminate() with no in-flight jobs = %v, want nil", err)
	}
	// Terminate only flips the running flag and stage to "terminating";
	// run()'s next checkpoint is what moves Results to StageTerminated.
	if got := s.Results().Stage(); got != scanmodel.StageTerminating {
		t.Errorf("Stage() after Terminate() with nothing running = %v, want %v", got, scanmodel.StageTerminating)
	}
}
