package ecs

import "testing"

func TestSchedulerTickRunsBoundedSubSteps(t *testing.T) {
	w := NewWorld()
	s := w.Scheduler()

	var frames []uint64
	s.Add(SystemFunc(func(ctx *StepContext) {
		frames = append(frames, ctx.Frame)
	}), Update)

	// A 2 second frame delta against a 1/60 fixed step and a 5 sub-step cap
	// should never run more than 5 steps in one Tick (spec §4.8 worked example).
	s.Tick(2.0, nil)

	if len(frames) > 5 {
		t.Fatalf("expected at most 5 sub-steps, ran %d", len(frames))
	}
	if len(frames) == 0 {
		t.Fatalf("expected at least one sub-step")
	}
}

func TestSchedulerAccumulatorStaysBounded(t *testing.T) {
	w := NewWorld()
	s := w.Scheduler()
	s.Tick(2.0, nil)

	cfg := w.cfg
	capVal := cfg.FixedDt * float64(cfg.MaxSubSteps)
	if s.accumulator > capVal+1e-9 {
		t.Fatalf("accumulator = %f, should be clamped to at most %f", s.accumulator, capVal)
	}
}

func TestSchedulerAlphaInUnitRange(t *testing.T) {
	w := NewWorld()
	s := w.Scheduler()
	var gotAlpha float64
	s.Tick(1.0/120.0, func(alpha float64) { gotAlpha = alpha })
	if gotAlpha < 0 || gotAlpha > 1 {
		t.Fatalf("alpha = %f, want in [0,1]", gotAlpha)
	}
	if s.GetAlpha() != gotAlpha {
		t.Fatalf("GetAlpha() = %f, want %f", s.GetAlpha(), gotAlpha)
	}
}

func TestSchedulerReset(t *testing.T) {
	w := NewWorld()
	s := w.Scheduler()
	s.Tick(2.0, nil)
	s.Reset()
	if s.accumulator != 0 || s.smoothedDt != 0 || s.alpha != 0 {
		t.Fatalf("Reset should zero accumulator, smoothedDt and alpha")
	}
}

func TestSchedulerTimescaleZeroPauses(t *testing.T) {
	w := NewWorld()
	s := w.Scheduler()
	s.SetTimescale(0)

	ran := false
	s.Add(SystemFunc(func(ctx *StepContext) { ran = true }), Update)
	s.Tick(1.0, nil)

	if ran {
		t.Fatalf("a zero timescale should pause simulation: no sub-step should run")
	}
}

func TestSchedulerStageOrdering(t *testing.T) {
	w := NewWorld()
	s := w.Scheduler()

	var order []string
	s.Add(SystemFunc(func(ctx *StepContext) { order = append(order, "pre") }), PreUpdate)
	s.Add(SystemFunc(func(ctx *StepContext) { order = append(order, "update") }), Update)
	s.Add(SystemFunc(func(ctx *StepContext) { order = append(order, "post") }), PostUpdate)
	s.Add(SystemFunc(func(ctx *StepContext) { order = append(order, "cleanup") }), Cleanup)

	s.Tick(1.0/60.0, nil)

	want := []string{"pre", "update", "post", "cleanup"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestSchedulerFlushesPerStageCommandBuffer(t *testing.T) {
	w := NewWorld()
	pos := RegisterComponent[schPosition](w)
	s := w.Scheduler()

	var created Entity
	s.Add(SystemFunc(func(ctx *StepContext) {
		created = ctx.Cmd.Create(true)
		AddTyped(ctx.Cmd, created, pos, schPosition{X: 1})
	}), Update)

	var seenInPostUpdate bool
	s.Add(SystemFunc(func(ctx *StepContext) {
		seenInPostUpdate = pos.Has(ctx.World, created)
	}), PostUpdate)

	s.Tick(1.0/60.0, nil)

	if !seenInPostUpdate {
		t.Fatalf("Update stage's command buffer should be flushed before PostUpdate runs")
	}
}

type schPosition struct{ X, Y float64 }
