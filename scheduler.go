package ecs

// Stage names the four fixed points in a simulation step a system can be
// registered against (spec §4.8 "preUpdate, update, postUpdate, cleanup").
type Stage int

const (
	PreUpdate Stage = iota
	Update
	PostUpdate
	Cleanup
	stageCount
)

func (s Stage) String() string {
	switch s {
	case PreUpdate:
		return "PreUpdate"
	case Update:
		return "Update"
	case PostUpdate:
		return "PostUpdate"
	case Cleanup:
		return "Cleanup"
	default:
		return "Unknown"
	}
}

// StepContext is passed to every system invocation, carrying the world, the
// fixed step size, and the current frame counter (spec §4.8 "a context
// carrying the world, fixedDt, current frame").
type StepContext struct {
	World *World
	Dt    float64
	Frame uint64
	Cmd   *CommandBuffer
}

// System is a registered unit of per-stage behavior. Grounded on
// plus3-ooftn/ecs/system.go's single-method System{Execute(*UpdateFrame)}
// interface, narrowed to this module's StepContext and widened with an
// explicit Stage at registration time since the spec requires four fixed
// stages rather than one undifferentiated frame.
type System interface {
	Execute(ctx *StepContext)
}

// SystemFunc adapts a plain function to System, the common case for systems
// with no persistent state.
type SystemFunc func(ctx *StepContext)

func (f SystemFunc) Execute(ctx *StepContext) { f(ctx) }

// Scheduler drives a world's simulation with a fixed-timestep accumulator
// (spec §4.8). Grounded on plus3-ooftn/ecs/scheduler.go's
// Scheduler{storage, systems}/Once/Run shape, generalized from its single
// undifferentiated system list into four ordered stage lists and from a
// variable-dt Once into the spec's clamp/smooth/accumulate/substep
// algorithm.
type Scheduler struct {
	world *World

	stages [stageCount][]System

	smoothedDt  float64
	accumulator float64
	alpha       float64
}

// newScheduler returns a scheduler bound to w, using w's current
// SchedulerConfig.
func newScheduler(w *World) *Scheduler {
	return &Scheduler{world: w}
}

// Add registers a system in the given stage, appended to that stage's
// existing order (spec §6.1 `scheduler.add(system, stage?)`).
func (s *Scheduler) Add(system System, stage Stage) {
	s.stages[stage] = append(s.stages[stage], system)
}

// SetTimescale overrides the world's timescale; 0 pauses simulation
// (spec §4.8).
func (s *Scheduler) SetTimescale(v float64) {
	s.world.cfg.Timescale = v
}

// SetFixedDt overrides the world's fixed step size.
func (s *Scheduler) SetFixedDt(v float64) {
	s.world.cfg.FixedDt = v
}

// GetAlpha returns the interpolation fraction computed by the most recent
// Tick (spec §4.8 step 5).
func (s *Scheduler) GetAlpha() float64 {
	return s.alpha
}

// Reset zeros the accumulator and smoothed delta (spec §4.8 `reset()`).
func (s *Scheduler) Reset() {
	s.accumulator = 0
	s.smoothedDt = 0
	s.alpha = 0
}

// Tick advances the world by real elapsed time frameDt, running zero or more
// fixed sub-steps and invoking renderCallback (if non-nil) with the
// resulting interpolation alpha (spec §4.8, §6.1 `scheduler.tick`).
func (s *Scheduler) Tick(frameDt float64, renderCallback func(alpha float64)) {
	cfg := s.world.cfg

	clamped := frameDt
	if clamped > cfg.ClampDt {
		clamped = cfg.ClampDt
	}
	// The first tick (or the first after Reset) seeds the smoothed delta
	// with the clamped frame delta instead of easing up from zero.
	if s.smoothedDt == 0 {
		s.smoothedDt = clamped
	} else {
		s.smoothedDt += (clamped - s.smoothedDt) * cfg.SmoothFactor
	}
	s.accumulator += s.smoothedDt * cfg.Timescale

	steps := 0
	for s.accumulator >= cfg.FixedDt && steps < cfg.MaxSubSteps {
		s.step(cfg.FixedDt)
		s.accumulator -= cfg.FixedDt
		steps++
	}

	cap := cfg.FixedDt * float64(cfg.MaxSubSteps)
	if s.accumulator > cap {
		s.accumulator = cap
	}

	s.alpha = clamp01(s.accumulator / cfg.FixedDt)
	if renderCallback != nil {
		renderCallback(s.alpha)
	}
}

// step runs one fixed-size simulation step: advance world.frame, reset every
// column's write mask so change-filtered queries only see rows actually
// written during this step (spec §3.4 "modified since last reset", §8
// invariant 7), then run every stage in order, flushing each stage's command
// buffer before moving to the next (spec §4.8 "one simulation step").
func (s *Scheduler) step(fixedDt float64) {
	w := s.world
	w.frame++
	w.resetWriteMasks()

	for stage := Stage(0); stage < stageCount; stage++ {
		cmd := NewCommandBuffer(w)
		ctx := &StepContext{World: w, Dt: fixedDt, Frame: w.frame, Cmd: cmd}
		for _, sys := range s.stages[stage] {
			sys.Execute(ctx)
		}
		cmd.Flush()
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
