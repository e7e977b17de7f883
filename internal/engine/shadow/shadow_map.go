// Package shadow provides the shadow map target and light-space matrices
// for directional shadows.
package shadow

import (
	"fmt"

	"github.com/Faultbox/mantaview/internal/engine/gpu"
)

// DefaultResolution is the default shadow map resolution.
const DefaultResolution = 2048

// Map is a depth-only square target.
type Map struct {
	Target     *gpu.Target
	Resolution int
}

// NewMap creates the shadow target. Non-positive resolutions fall back to
// DefaultResolution.
func NewMap(dev gpu.Device, resolution int) (*Map, error) {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	t, err := dev.CreateTarget(gpu.TargetSpec{
		Name:   "shadow",
		Width:  resolution,
		Height: resolution,
		Shadow: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating shadow map: %w", err)
	}
	return &Map{Target: t, Resolution: resolution}, nil
}

// DepthState renders back faces only, which keeps acne off lit surfaces.
func DepthState() gpu.State {
	s := gpu.DefaultState()
	s.Cull = gpu.CullFront
	return s
}

// Bind makes the map the draw target, clears its depth and sets the depth
// pass state.
func (m *Map) Bind(dev gpu.Device) {
	dev.BindTarget(m.Target)
	dev.SetState(DepthState())
	dev.Clear(gpu.ClearOptions{ClearDepth: true})
}

// Texture returns the depth texture for sampling in later passes.
func (m *Map) Texture() gpu.Texture {
	if !m.Valid() {
		return 0
	}
	return m.Target.Depth
}

// Valid reports whether the map was created and not yet destroyed.
func (m *Map) Valid() bool {
	return m != nil && m.Target.Valid()
}

// Destroy releases the target.
func (m *Map) Destroy(dev gpu.Device) {
	if m.Valid() {
		dev.DeleteTarget(m.Target)
		m.Target = nil
	}
}
