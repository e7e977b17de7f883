package pass

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/mantaview/internal/engine/gpu"
	"github.com/Faultbox/mantaview/internal/engine/shader"
	"github.com/Faultbox/mantaview/internal/logger"
)

// Programs resolves a pass's program by name. *shader.Library implements it.
type Programs interface {
	Get(name string) *shader.Program
}

// Timing is the outcome of one pass in one frame.
type Timing struct {
	Name     string
	Duration time.Duration
	Draws    int
	// Skipped is set when the pass's program was unavailable.
	Skipped bool
}

// Pipeline runs passes in a fixed order.
type Pipeline struct {
	passes   []Pass
	programs Programs
	log      *zap.Logger
	// unavailable remembers the last error logged per program so a broken
	// shader is reported once, not every frame.
	unavailable map[string]error
}

// Default returns the passes in draw order.
func Default() []Pass {
	return []Pass{
		ShadowPass{},
		OpaquePass{},
		LightPass{},
		SkyPass{},
		VolumetricPass{},
		BoundsPass{},
		DebugPass{},
	}
}

// NewPipeline creates a pipeline over passes, or Default() when none are given.
func NewPipeline(programs Programs, passes ...Pass) *Pipeline {
	if len(passes) == 0 {
		passes = Default()
	}
	return &Pipeline{
		passes:      passes,
		programs:    programs,
		log:         logger.Named("pass"),
		unavailable: make(map[string]error),
	}
}

// Passes returns the passes in execution order.
func (p *Pipeline) Passes() []Pass {
	return p.passes
}

// Run executes every pass. A pass whose program is missing or failed to
// build is skipped; the remaining passes still run.
func (p *Pipeline) Run(dev gpu.Device, f *Frame, items *Items) []Timing {
	timings := make([]Timing, 0, len(p.passes))
	for _, ps := range p.passes {
		t := Timing{Name: ps.Name()}
		prog := p.programs.Get(ps.Program())
		if !prog.Valid() {
			p.reportUnavailable(ps, prog)
			t.Skipped = true
			timings = append(timings, t)
			continue
		}
		if _, ok := p.unavailable[ps.Program()]; ok {
			delete(p.unavailable, ps.Program())
			p.log.Info("pass re-enabled", zap.String("pass", ps.Name()))
		}

		start := time.Now()
		dev.UseProgram(prog.Handle)
		t.Draws = ps.Render(dev, f, items)
		t.Duration = time.Since(start)
		timings = append(timings, t)
	}
	return timings
}

func (p *Pipeline) reportUnavailable(ps Pass, prog *shader.Program) {
	var err error
	if prog != nil {
		err = prog.Err
	}
	last, seen := p.unavailable[ps.Program()]
	if seen && last == err {
		return
	}
	p.unavailable[ps.Program()] = err
	p.log.Warn("skipping pass, program unavailable",
		zap.String("pass", ps.Name()),
		zap.String("program", ps.Program()),
		zap.Error(err))
}
