package oem7

import (
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// Discoverer searches the device-path × baud-rate space until a probe
// matches or the space is exhausted. The order is deterministic:
// patterns in declared order, paths sorted lexically within each
// pattern, baud rates in declared ladder order.
type Discoverer struct {
	cfg    Config
	log    *zap.SugaredLogger
	prober *Prober
}

// NewDiscoverer builds a discoverer; a nil logger disables logging
func NewDiscoverer(cfg Config, log *zap.SugaredLogger) *Discoverer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Discoverer{cfg: cfg, log: log, prober: NewProber(cfg, log)}
}

// Candidates enumerates the device paths matched by the configured
// glob patterns, sorted within each pattern.
func (d *Discoverer) Candidates() []string {
	var paths []string
	for _, pattern := range d.cfg.Patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			d.log.Debugf("bad pattern %q: %v", pattern, err)
			continue
		}
		sort.Strings(matches)
		paths = append(paths, matches...)
	}
	return paths
}

// Discover probes every candidate combination and returns the first
// match, with its opened link handed to the caller. Exhaustion
// returns ErrNoDeviceDetected; no handles are left open in that case.
func (d *Discoverer) Discover() (ProbeResult, error) {
	for _, path := range d.Candidates() {
		for _, baud := range d.cfg.BaudLadder {
			res := d.prober.Probe(path, baud)
			if res.Matched {
				d.log.Infof("detected receiver on %s @ %d baud", res.Path, res.Baud)
				return res, nil
			}
		}
	}
	return ProbeResult{}, ErrNoDeviceDetected
}
