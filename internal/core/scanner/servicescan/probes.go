package servicescan

import "lanscape/internal/config"

// Probe is one payload to send (nil/"" means banner-grab: connect and
// read without writing).
type Probe struct {
	Name    string
	Payload []byte
}

// baseline probes are always attempted, per spec §4.5 get_port_probes.
var baselineProbes = []Probe{
	{Name: "null"},
	{Name: "crlf", Payload: []byte("\r\n")},
	{Name: "help", Payload: []byte("HELP\r\n")},
	{Name: "options", Payload: []byte("OPTIONS * HTTP/1.0\r\n\r\n")},
	{Name: "head", Payload: []byte("HEAD / HTTP/1.0\r\n\r\n")},
	{Name: "quit", Payload: []byte("QUIT\r\n")},
}

// portProtocolProbes are unconditional binary probes for known protocols,
// appended regardless of strategy (spec §4.5).
var portProtocolProbes = map[int]Probe{
	139:  {Name: "smb", Payload: smbNegotiateProbe},
	445:  {Name: "smb", Payload: smbNegotiateProbe},
	3389: {Name: "rdp", Payload: rdpConnectionRequest},
	6379: {Name: "redis", Payload: []byte("PING\r\n")},
	5432: {Name: "postgres", Payload: postgresSSLRequest},
	1080: {Name: "socks5", Payload: []byte{0x05, 0x01, 0x00}},
	1935: {Name: "rtmp", Payload: rtmpHandshakeC0C1},
	111:  {Name: "sunrpc", Payload: sunRPCNullCall},
	2049: {Name: "nfs", Payload: sunRPCNullCall},
	1883: {Name: "mqtt", Payload: mqttConnectProbe},
	8883: {Name: "mqtt", Payload: mqttConnectProbe},
}

// GetPortProbes builds the probe list for port under the given strategy,
// consulting an optional catalog for BASIC/AGGRESSIVE extension (spec
// §4.5 get_port_probes).
func GetPortProbes(port int, strategy config.ServiceScanStrategy, catalog *Catalog) []Probe {
	probes := append([]Probe(nil), baselineProbes...)

	if p, ok := portProtocolProbes[port]; ok {
		probes = append(probes, p)
	}

	switch strategy {
	case config.StrategyLazy:
		// baseline + port-specific only.
	case config.StrategyBasic:
		if catalog != nil {
			probes = append(probes, catalog.ProbesForPort(port)...)
		}
	case config.StrategyAggressive:
		probes = append(probes, allProtocolProbes()...)
		if catalog != nil {
			probes = append(probes, catalog.AllProbes()...)
		}
	}

	return dedupeProbes(probes)
}

func allProtocolProbes() []Probe {
	out := make([]Probe, 0, len(portProtocolProbes))
	for _, p := range portProtocolProbes {
		out = append(out, p)
	}
	return out
}

func dedupeProbes(probes []Probe) []Probe {
	seen := make(map[string]bool, len(probes))
	out := make([]Probe, 0, len(probes))
	for _, p := range probes {
		key := p.Name + "|" + string(p.Payload)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// Minimal, protocol-correct-enough handshake openers; these exist purely
// to elicit a recognizable banner/response, not to complete a real
// session.
var (
	smbNegotiateProbe = []byte{
		0x00, 0x00, 0x00, 0x2f, 0xff, 0x53, 0x4d, 0x42, 0x72, 0x00, 0x00, 0x00, 0x00, 0x18, 0x53, 0xc8,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0xfe,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x0c, 0x00, 0x02, 0x4e, 0x54, 0x20, 0x4c, 0x4d, 0x20, 0x30, 0x2e,
		0x31, 0x32, 0x00,
	}
	rdpConnectionRequest = []byte{
		0x03, 0x00, 0x00, 0x13, 0x0e, 0xe0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x08, 0x00, 0x03,
		0x00, 0x00, 0x00,
	}
	postgresSSLRequest = []byte{0x00, 0x00, 0x00, 0x08, 0x04, 0xd2, 0x16, 0x2f}
	rtmpHandshakeC0C1  = append([]byte{0x03}, make([]byte, 1536)...)
	sunRPCNullCall     = []byte{
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x02, 0x00, 0x01, 0x86, 0xa0,
		0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	mqttConnectProbe = []byte{
		0x10, 0x0c, 0x00, 0x04, 'M', 'Q', 'T', 'T', 0x04, 0x02, 0x00, 0x3c, 0x00, 0x00,
	}
)
