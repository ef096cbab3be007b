package scanmodel

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Stage is the coarse scan-wide phase exposed for progress and dashboards
// (spec §3, §4.6).
type Stage string

const (
	StageInstantiated    Stage = "instantiated"
	StageScanningDevices Stage = "scanning devices"
	StageTestingPorts    Stage = "testing ports"
	StageServiceScanning Stage = "service scanning"
	StageCompleteScan    Stage = "complete"
	StageTerminating     Stage = "terminating"
	StageTerminated      Stage = "terminated"
)

func (s Stage) Terminal() bool {
	return s == StageCompleteScan || s == StageTerminated
}

// Results is the live, inspectable record of one scan (spec §3). Exactly
// one Scanner's goroutines mutate it; readers (HTTP export, CLI progress)
// take a Snapshot.
type Results struct {
	mu sync.RWMutex

	UID         string
	Subnet      string
	PortList    string
	Parallelism float64

	DevicesTotal   int
	devicesScanned int
	devices        []*Device
	deviceByIP     map[string]*Device

	StartTime time.Time
	EndTime   time.Time

	stage    Stage
	Errors   []ErrorRecord
	Warnings []ErrorRecord
}

func NewResults(subnet, portList string, parallelism float64, total int) *Results {
	return &Results{
		UID:         uuid.NewString(),
		Subnet:      subnet,
		PortList:    portList,
		Parallelism: parallelism,
		DevicesTotal: total,
		deviceByIP:  make(map[string]*Device),
		stage:       StageInstantiated,
		StartTime:   time.Time{},
	}
}

func (r *Results) Stage() Stage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stage
}

// SetStage records s unless the scan has already reached a terminal
// stage; once terminal, no further transitions are accepted. The order of
// non-terminal transitions is not checked.
func (r *Results) SetStage(s Stage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stage.Terminal() {
		return
	}
	r.stage = s
	if s == StageCompleteScan || s == StageTerminated {
		r.EndTime = time.Now()
	}
}

func (r *Results) MarkStarted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StartTime = time.Now()
}

// AppendDevice adds a confirmed-alive device; per spec §3 invariant, a
// device appears in Devices only when alive == true.
func (r *Results) AppendDevice(d *Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.deviceByIP[d.IP]; exists {
		return
	}
	r.devices = append(r.devices, d)
	r.deviceByIP[d.IP] = d
}

func (r *Results) IncrementDevicesScanned() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devicesScanned++
}

func (r *Results) DevicesScanned() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.devicesScanned
}

func (r *Results) Devices() []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Device, len(r.devices))
	copy(out, r.devices)
	return out
}

func (r *Results) DeviceByIP(ip string) (*Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.deviceByIP[ip]
	return d, ok
}

func (r *Results) AddError(rec ErrorRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, rec)
}

func (r *Results) AddWarning(rec ErrorRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, rec)
}

// Runtime is the wall-clock duration since scan start; if still running it
// is measured against now.
func (r *Results) Runtime() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.StartTime.IsZero() {
		return 0
	}
	end := r.EndTime
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(r.StartTime)
}

// Summary is the compact shape for /api/scan/{uid}/summary.
type Summary struct {
	Running         bool    `json:"running"`
	Stage           Stage   `json:"stage"`
	PercentComplete float64 `json:"percent_complete"`
	Runtime         float64 `json:"runtime"`
	DevicesAlive    int     `json:"devices_alive"`
	DevicesScanned  int     `json:"devices_scanned"`
	DevicesTotal    int     `json:"devices_total"`
	OpenPorts       int     `json:"open_ports"`
}

func (r *Results) Summary(percentComplete func() float64) Summary {
	r.mu.RLock()
	stage := r.stage
	scanned := r.devicesScanned
	total := r.DevicesTotal
	alive := len(r.devices)
	runtime := r.Runtime()
	r.mu.RUnlock()

	openPorts := 0
	for _, d := range r.Devices() {
		openPorts += len(d.OpenPorts())
	}

	return Summary{
		Running:         !stage.Terminal(),
		Stage:           stage,
		PercentComplete: percentComplete(),
		Runtime:         runtime.Seconds(),
		DevicesAlive:    alive,
		DevicesScanned:  scanned,
		DevicesTotal:    total,
		OpenPorts:       openPorts,
	}
}

// Export is the full-results shape for GET /api/scan/{uid}.
type Export struct {
	UID            string             `json:"uid"`
	Subnet         string             `json:"subnet"`
	PortList       string             `json:"port_list"`
	Parallelism    float64            `json:"parallelism"`
	DevicesTotal   int                `json:"devices_total"`
	DevicesScanned int                `json:"devices_scanned"`
	Devices        []DeviceSnapshot   `json:"devices"`
	StartTime      time.Time          `json:"start_time"`
	EndTime        time.Time          `json:"end_time,omitempty"`
	Stage          Stage              `json:"stage"`
	Errors         []ErrorRecord      `json:"errors"`
	Warnings       []ErrorRecord      `json:"warnings"`
}

func (r *Results) ExportSnapshot() Export {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]DeviceSnapshot, len(r.devices))
	for i, d := range r.devices {
		devices[i] = d.Snapshot()
	}

	return Export{
		UID:            r.UID,
		Subnet:         r.Subnet,
		PortList:       r.PortList,
		Parallelism:    r.Parallelism,
		DevicesTotal:   r.DevicesTotal,
		DevicesScanned: r.devicesScanned,
		Devices:        devices,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		Stage:          r.stage,
		Errors:         append([]ErrorRecord(nil), r.Errors...),
		Warnings:       append([]ErrorRecord(nil), r.Warnings...),
	}
}
