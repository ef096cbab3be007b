package liveness

import (
	"context"
	"time"
)

// harvestingProber runs a primary liveness method and, only when that
// method reports the host alive, additionally consults ARP to harvest a
// MAC address — even when the primary method itself has no notion of MAC
// (e.g. POKE). The harvest never overrides the primary's liveness verdict.
type harvestingProber struct {
	name     string
	primary  Prober
	harvest  Prober
}

// NewHarvestingProber implements the POKE_THEN_ARP / ICMP_THEN_ARP
// lookup_type entries described in spec §4.2: the primary method decides
// liveness; ARP is consulted afterward purely to fill in Device.macs.
func NewHarvestingProber(name string, primary, harvest Prober) Prober {
	return &harvestingProber{name: name, primary: primary, harvest: harvest}
}

func (h *harvestingProber) Probe(ctx context.Context, ip string, timeout time.Duration) (*ProbeResult, error) {
	res, err := h.primary.Probe(ctx, ip, timeout)
	if err != nil || res == nil || !res.Alive {
		if res != nil {
			res.Method = h.name
		}
		return res, err
	}

	if mres, merr := h.harvest.Probe(ctx, ip, timeout); merr == nil && mres != nil && mres.MAC != "" {
		res.MAC = mres.MAC
	}
	res.Method = h.name
	return res, nil
}
