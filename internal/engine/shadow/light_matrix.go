package shadow

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/mantaview/internal/engine/geometry"
	"github.com/Faultbox/mantaview/internal/engine/lighting"
)

// Fixed light frustum of the default scene.
const (
	DefaultHalfExtent = 20
	DefaultNear       = 0.1
	DefaultFar        = 100
)

// minDirection is the shortest light direction that still has a usable
// orientation. Shorter ones fall back to straight down.
const minDirection = 1e-4

var straightUp = mgl32.Vec3{0, 1, 0}

// upFor picks an up vector that is not parallel to dir.
func upFor(dir mgl32.Vec3) mgl32.Vec3 {
	if math32.Abs(dir.Normalize().Y()) > 0.99 {
		return mgl32.Vec3{0, 0, 1}
	}
	return mgl32.Vec3{0, 1, 0}
}

// LightViewProjection looks from the light's position at its focal point
// through a square orthographic box of the given half extent.
func LightViewProjection(l lighting.Light, halfExtent, near, far float32) mgl32.Mat4 {
	eye, dir := l.Position, l.Direction()
	if dir.Len() < minDirection {
		eye, dir = l.FocalPoint.Add(straightUp), straightUp.Mul(-1)
	}
	view := mgl32.LookAtV(eye, l.FocalPoint, upFor(dir))
	proj := mgl32.Ortho(-halfExtent, halfExtent, -halfExtent, halfExtent, near, far)
	return proj.Mul4(view)
}

// FitDirectional computes a light view-projection that encloses bounds.
// toLight is the direction towards the light; it need not be normalized.
func FitDirectional(toLight mgl32.Vec3, bounds geometry.Bounds) mgl32.Mat4 {
	dir := straightUp
	if toLight.Len() >= minDirection {
		dir = toLight.Normalize()
	}
	center := bounds.Center
	radius := bounds.Radius()
	if radius == 0 {
		radius = 1
	}

	// Far enough out that the whole box sits in front of the near plane.
	distance := radius * 2
	eye := center.Add(dir.Mul(distance))
	view := mgl32.LookAtV(eye, center, upFor(dir))

	padding := radius * 0.1
	half := radius + padding
	far := distance + radius + padding
	proj := mgl32.Ortho(-half, half, -half, half, DefaultNear, far)
	return proj.Mul4(view)
}
