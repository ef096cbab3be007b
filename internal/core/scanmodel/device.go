package scanmodel

import "sync"

// Tristate models Device.alive: a host starts "unknown" until a liveness
// probe settles it one way or the other.
type Tristate int

const (
	Unknown Tristate = iota
	Dead
	Alive
)

func (t Tristate) String() string {
	switch t {
	case Alive:
		return "true"
	case Dead:
		return "false"
	default:
		return "unknown"
	}
}

// DeviceStage is the per-device progress marker used by the HTTP export
// and by progress estimation.
type DeviceStage string

const (
	StageFound    DeviceStage = "found"
	StageScanning DeviceStage = "scanning"
	StageComplete DeviceStage = "complete"
	StageError    DeviceStage = "error"
)

// Device is one host discovered (or attempted) during a scan. Per spec
// §3's invariant, exactly one Scanner goroutine group mutates a given
// Device; all mutating methods here take the device's own lock so that
// concurrent port/service workers for the SAME device never race, while
// readers (HTTP export) get a stable snapshot via Snapshot.
type Device struct {
	mu sync.Mutex

	IP           string
	AliveState   Tristate
	Hostname     *string
	MACs         []string
	Manufacturer *string

	ports        map[int]struct{}
	PortsScanned int

	services    map[string][]int       // service name -> ports
	serviceInfo map[int]*ServiceInfo    // port -> detail

	Stage  DeviceStage
	Errors []ErrorRecord
}

func NewDevice(ip string) *Device {
	return &Device{
		IP:          ip,
		AliveState:  Unknown,
		ports:       make(map[int]struct{}),
		services:    make(map[string][]int),
		serviceInfo: make(map[int]*ServiceInfo),
		Stage:       StageFound,
	}
}

// MarkAlive records a liveness verdict and, when alive, folds in any MAC
// the probe harvested (spec §4.3: MACs is a union across ARP runs).
func (d *Device) MarkAlive(alive bool, mac string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if alive {
		d.AliveState = Alive
	} else {
		d.AliveState = Dead
	}
	if mac != "" {
		d.addMACLocked(mac)
	}
}

func (d *Device) AddMAC(mac string) {
	if mac == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addMACLocked(mac)
}

func (d *Device) addMACLocked(mac string) {
	for _, m := range d.MACs {
		if m == mac {
			return
		}
	}
	d.MACs = append(d.MACs, mac)
}

// PrimaryMAC returns the first-observed MAC, or "" if none.
func (d *Device) PrimaryMAC() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.MACs) == 0 {
		return ""
	}
	return d.MACs[0]
}

func (d *Device) IsAlive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.AliveState == Alive
}

func (d *Device) SetHostname(h string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if h == "" {
		return
	}
	d.Hostname = &h
}

func (d *Device) SetManufacturer(m string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m == "" {
		return
	}
	d.Manufacturer = &m
}

// AddOpenPort dedups concurrent appends from PortScanner workers.
func (d *Device) AddOpenPort(port int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ports[port] = struct{}{}
}

func (d *Device) IncrementPortsScanned() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.PortsScanned++
}

// OpenPorts returns a sorted-free snapshot of the open-port set.
func (d *Device) OpenPorts() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]int, 0, len(d.ports))
	for p := range d.ports {
		out = append(out, p)
	}
	return out
}

func (d *Device) SetServiceInfo(info *ServiceInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.serviceInfo[info.Port] = info
	if info.Service != "" {
		d.services[info.Service] = append(d.services[info.Service], info.Port)
	}
}

func (d *Device) ServiceInfos() map[int]*ServiceInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[int]*ServiceInfo, len(d.serviceInfo))
	for k, v := range d.serviceInfo {
		out[k] = v
	}
	return out
}

func (d *Device) Services() map[string][]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string][]int, len(d.services))
	for k, v := range d.services {
		cp := append([]int(nil), v...)
		out[k] = cp
	}
	return out
}

func (d *Device) SetStage(s DeviceStage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Stage = s
}

func (d *Device) AddError(rec ErrorRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Errors = append(d.Errors, rec)
	d.Stage = StageError
}

// Snapshot is a read-only, concurrency-safe copy for JSON export.
type DeviceSnapshot struct {
	IP           string                   `json:"ip"`
	Alive        string                   `json:"alive"`
	Hostname     *string                  `json:"hostname"`
	MACs         []string                 `json:"macs"`
	Manufacturer *string                  `json:"manufacturer"`
	Ports        []int                    `json:"ports"`
	PortsScanned int                      `json:"ports_scanned"`
	Services     map[string][]int         `json:"services"`
	ServiceInfo  map[int]*ServiceInfo     `json:"service_info"`
	Stage        DeviceStage              `json:"stage"`
	Errors       []ErrorRecord            `json:"errors"`
}

func (d *Device) Snapshot() DeviceSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	ports := make([]int, 0, len(d.ports))
	for p := range d.ports {
		ports = append(ports, p)
	}
	services := make(map[string][]int, len(d.services))
	for k, v := range d.services {
		services[k] = append([]int(nil), v...)
	}
	infos := make(map[int]*ServiceInfo, len(d.serviceInfo))
	for k, v := range d.serviceInfo {
		infos[k] = v
	}

	return DeviceSnapshot{
		IP:           d.IP,
		Alive:        d.AliveState.String(),
		Hostname:     d.Hostname,
		MACs:         append([]string(nil), d.MACs...),
		Manufacturer: d.Manufacturer,
		Ports:        ports,
		PortsScanned: d.PortsScanned,
		Services:     services,
		ServiceInfo:  infos,
		Stage:        d.Stage,
		Errors:       append([]ErrorRecord(nil), d.Errors...),
	}
}
