package liveness

import (
	"context"
	"time"
)

// Prober probes a single host for liveness using one method.
type Prober interface {
	// Probe reports whether ip answered within timeout, along with latency/TTL
	// when available. A non-nil error indicates the probe could not be
	// attempted at all (e.g. the method is unsupported on this OS), not that
	// the host failed to answer.
	Probe(ctx context.Context, ip string, timeout time.Duration) (*ProbeResult, error)
}

// Chain consults probers in order and stops at the first one that reports
// the host alive. Unlike a racing multi-prober, order matters: it encodes
// the configured lookup_type's method preference (e.g. "poke before arp").
type Chain struct {
	name    string
	probers []Prober
}

// NewChain builds a Chain that tries each prober in the given order.
func NewChain(name string, probers ...Prober) *Chain {
	return &Chain{name: name, probers: probers}
}

func (c *Chain) Name() string { return c.name }

// Probe runs each prober in sequence, giving each the same timeout. The first
// ProbeResult with Alive=true wins; probers that return an error (method
// unsupported, command missing) are skipped rather than treated as failures.
func (c *Chain) Probe(ctx context.Context, ip string, timeout time.Duration) (*ProbeResult, error) {
	var last *ProbeResult
	for _, p := range c.probers {
		select {
		case <-ctx.Done():
			return Dead(c.name), ctx.Err()
		default:
		}
		res, err := p.Probe(ctx, ip, timeout)
		if err != nil {
			continue
		}
		if res != nil && res.Alive {
			return res, nil
		}
		last = res
	}
	if last == nil {
		last = Dead(c.name)
	}
	return last, nil
}
