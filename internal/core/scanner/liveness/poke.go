package liveness

import (
	"context"
	"fmt"
	"time"

	"lanscape/internal/core/dialer"
)

// PokeProber probes liveness by attempting a TCP connect against a small
// set of commonly-open ports, racing them and taking the first success.
// This is the "POKE" lookup_type: it does not imply a service is actually
// listening meaningfully, only that something answered the handshake.
type PokeProber struct {
	Ports []int
}

func NewPokeProber(ports []int) *PokeProber {
	return &PokeProber{Ports: ports}
}

func (p *PokeProber) Probe(ctx context.Context, ip string, timeout time.Duration) (*ProbeResult, error) {
	if len(p.Ports) == 0 {
		return Dead("poke"), nil
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resultChan := make(chan time.Duration, len(p.Ports))

	for _, port := range p.Ports {
		go func(port int) {
			address := fmt.Sprintf("%s:%d", ip, port)
			d := dialer.Get()
			start := time.Now()
			conn, err := d.DialContext(cctx, "tcp", address)
			if err == nil {
				conn.Close()
				resultChan <- time.Since(start)
				return
			}
			resultChan <- 0
		}(port)
	}

	for i := 0; i < len(p.Ports); i++ {
		select {
		case latency := <-resultChan:
			if latency > 0 {
				return NewProbeResult("poke", latency, 0), nil
			}
		case <-cctx.Done():
			return Dead("poke"), nil
		}
	}

	return Dead("poke"), nil
}
