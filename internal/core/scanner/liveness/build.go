package liveness

import "lanscape/internal/config"

// Build assembles the ordered prober chain for config.lookup_type. The
// Scanner consults entries in order; the first one that reports the host
// alive wins (spec §4.2). Compound entries (POKE_THEN_ARP, ICMP_THEN_ARP)
// decide liveness via their primary method and harvest a MAC via ARP
// afterward without changing the liveness verdict.
func Build(cfg *config.ScanConfig) *Chain {
	icmp := NewIcmpProber()
	arp := NewArpProber()
	poke := NewPokeProber(cfg.Poke.Ports)

	probers := make([]Prober, 0, len(cfg.LookupType))
	for _, m := range cfg.LookupType {
		switch m {
		case config.LookupICMP:
			probers = append(probers, icmp)
		case config.LookupARP:
			probers = append(probers, arp)
		case config.LookupPoke:
			probers = append(probers, poke)
		case config.LookupPokeThenARP:
			probers = append(probers, NewHarvestingProber("poke_then_arp", poke, arp))
		case config.LookupICMPThenARP:
			probers = append(probers, NewHarvestingProber("icmp_then_arp", icmp, arp))
		}
	}

	if len(probers) == 0 {
		probers = append(probers, NewHarvestingProber("icmp_then_arp", icmp, arp))
	}

	return NewChain("lookup_type", probers...)
}
