// Package inference turns a topology snapshot into a best-effort connection
// list. One pass is a pure function of its input: co-location detection and
// hop-parent ranking each produce candidate connections, and the aggregator
// merges them into a deduplicated, timestamped list. No state survives a
// pass, so the engine is safe to run repeatedly or in parallel across
// independent snapshots.
package inference

// Tunables with documented defaults. The source material fixed these as
// constants; they are configuration here so deployments can adjust them.
const (
	// DefaultGPSPrecision is the decimal-degree rounding applied before
	// grouping nodes by position. 4 decimals is roughly 11 m.
	DefaultGPSPrecision = 4

	// DefaultColocatedSNR is assumed for a co-located pair when neither node
	// reports a reading. Sharing a site is itself strong evidence of an
	// excellent link.
	DefaultColocatedSNR = 10.0

	// DefaultMaxParents caps how many inferred parents a multi-hop node may
	// receive, bounding false-edge proliferation on dense hop levels.
	DefaultMaxParents = 2
)

// Options carries the engine tunables.
type Options struct {
	GPSPrecision int
	ColocatedSNR float64
	MaxParents   int
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		GPSPrecision: DefaultGPSPrecision,
		ColocatedSNR: DefaultColocatedSNR,
		MaxParents:   DefaultMaxParents,
	}
}

// withDefaults fills zero values so a partially built Options is usable.
func (o Options) withDefaults() Options {
	if o.GPSPrecision <= 0 {
		o.GPSPrecision = DefaultGPSPrecision
	}
	if o.ColocatedSNR == 0 {
		o.ColocatedSNR = DefaultColocatedSNR
	}
	if o.MaxParents <= 0 {
		o.MaxParents = DefaultMaxParents
	}
	return o
}
