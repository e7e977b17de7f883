package sim

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Params are the user-tunable simulation inputs.
type Params struct {
	// Force is a constant acceleration applied where there is smoke.
	Force mgl32.Vec3
	// Decay is the fraction of density lost per step, in [0, 1].
	Decay float32
}

// Controls shares Params between the UI and the simulation goroutine.
type Controls struct {
	mu sync.RWMutex
	p  Params
}

// NewControls returns controls holding p, with Decay clamped.
func NewControls(p Params) *Controls {
	p.Decay = mgl32.Clamp(p.Decay, 0, 1)
	return &Controls{p: p}
}

// Params returns a copy of the current values.
func (c *Controls) Params() Params {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.p
}

// SetForce replaces the force.
func (c *Controls) SetForce(f mgl32.Vec3) {
	c.mu.Lock()
	c.p.Force = f
	c.mu.Unlock()
}

// SetDecay replaces the decay, clamped to [0, 1].
func (c *Controls) SetDecay(d float32) {
	c.mu.Lock()
	c.p.Decay = mgl32.Clamp(d, 0, 1)
	c.mu.Unlock()
}
