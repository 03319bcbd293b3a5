package ecs

// Config holds global tunables for the scheduler and query engine, in the
// teacher's own style of a single package-level struct rather than a parsed
// config file (config.go originally held just table.TableEvents; generalized
// here to every tunable spec §4.8/§4.4.6 names).
var Config = SchedulerConfig{
	FixedDt:          1.0 / 60.0,
	MaxSubSteps:      5,
	ClampDt:          0.25,
	SmoothFactor:     0.1,
	Timescale:        1.0,
	DeltaOverflowCap: 10000,
}

// SchedulerConfig is the default tunable set a World is constructed with;
// a World may override any field independently after construction.
type SchedulerConfig struct {
	// FixedDt is the simulation step size (spec §4.8 default 1/60).
	FixedDt float64
	// MaxSubSteps bounds sub-steps run per tick (spec §4.8 default 5).
	MaxSubSteps int
	// ClampDt bounds the real frame delta fed into the accumulator (spec
	// §4.8 default 0.25).
	ClampDt float64
	// SmoothFactor is the exponential smoothing factor applied to frame
	// delta before accumulation (spec §4.8 default 0.1).
	SmoothFactor float64
	// Timescale multiplies the smoothed delta before accumulation; 0 pauses
	// the simulation (spec §4.8 default 1).
	Timescale float64
	// DeltaOverflowCap bounds a query's delta-feed dedup sets (spec §4.4.6
	// default 10000), resolving open question 3 in favor of configurability.
	DeltaOverflowCap int
}
