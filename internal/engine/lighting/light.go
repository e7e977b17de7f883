// Package lighting describes the scene lights and how they reach shaders.
package lighting

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxLights is the size of the light array in the opaque shader.
const MaxLights = 4

// Kind is the light model. Values match the shader's light.type.
type Kind int32

const (
	Directional Kind = iota
	Point
	Spot
)

func (k Kind) String() string {
	switch k {
	case Directional:
		return "directional"
	case Point:
		return "point"
	case Spot:
		return "spot"
	}
	return fmt.Sprintf("kind(%d)", int32(k))
}

// Light is one light source. Directional and spot lights aim from Position
// at FocalPoint; falloff applies to point and spot lights.
type Light struct {
	Kind         Kind
	Strength     mgl32.Vec3
	Position     mgl32.Vec3
	FocalPoint   mgl32.Vec3
	FalloffStart float32
	FalloffEnd   float32
	SpotPower    float32
}

// DefaultDirectional is the key light of the default scene.
func DefaultDirectional() Light {
	return Light{
		Kind:         Directional,
		Strength:     mgl32.Vec3{4, 4, 4},
		Position:     mgl32.Vec3{0, 15, 10},
		FalloffStart: 1,
		FalloffEnd:   10,
		SpotPower:    64,
	}
}

// Direction is the unnormalized vector from Position to FocalPoint, the
// form the shaders expect.
func (l Light) Direction() mgl32.Vec3 {
	return l.FocalPoint.Sub(l.Position)
}

// Uniforms is the subset of a shader program a light set writes to.
type Uniforms interface {
	SetInt(name string, v int32)
	SetFloat(name string, v float32)
	SetVec3(name string, v mgl32.Vec3)
}

// Set is the bounded list of lights uploaded each frame.
type Set struct {
	Lights []Light
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{Lights: make([]Light, 0, MaxLights)}
}

// Add appends a light. Returns false if the set is full.
func (s *Set) Add(l Light) bool {
	if len(s.Lights) >= MaxLights {
		return false
	}
	s.Lights = append(s.Lights, l)
	return true
}

// Clear removes all lights.
func (s *Set) Clear() {
	s.Lights = s.Lights[:0]
}

// Len returns the number of lights.
func (s *Set) Len() int { return len(s.Lights) }

// Main returns the first light, the one that casts shadows.
func (s *Set) Main() (Light, bool) {
	if len(s.Lights) == 0 {
		return Light{}, false
	}
	return s.Lights[0], true
}

// Apply writes lightNum and the light[i] array.
func (s *Set) Apply(u Uniforms) {
	u.SetInt("lightNum", int32(len(s.Lights)))
	for i, l := range s.Lights {
		prefix := fmt.Sprintf("light[%d].", i)
		u.SetInt(prefix+"type", int32(l.Kind))
		u.SetVec3(prefix+"pos", l.Position)
		u.SetVec3(prefix+"strength", l.Strength)
		u.SetVec3(prefix+"dir", l.Direction())
		u.SetFloat(prefix+"fallStart", l.FalloffStart)
		u.SetFloat(prefix+"fallEnd", l.FalloffEnd)
		u.SetFloat(prefix+"spotPower", l.SpotPower)
	}
}
