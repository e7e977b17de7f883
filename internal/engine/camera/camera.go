// Package camera provides the free-fly viewer camera.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Movement is a keyboard movement direction.
type Movement int

const (
	Forward Movement = iota
	Backward
	Left
	Right
)

// Defaults used by New.
const (
	DefaultFOV         = 45.0
	DefaultNear        = 0.1
	DefaultFar         = 100.0
	DefaultAspect      = 16.0 / 9.0
	DefaultSpeed       = 2.5
	DefaultSensitivity = 0.1

	maxPitch = 89.0
)

// FPSCamera looks along yaw/pitch (degrees) from Position. Movement and
// mouse look only apply while look is active, i.e. while the look button
// is held. Matrices are computed lazily and cached until the next change.
type FPSCamera struct {
	position mgl32.Vec3
	worldUp  mgl32.Vec3
	yaw      float32
	pitch    float32

	front, right, up mgl32.Vec3

	fov, aspect, near, far float32

	Speed       float32
	Sensitivity float32

	active  bool
	lastX   float32
	lastY   float32
	hasLast bool

	dirty    bool
	version  uint64
	view     mgl32.Mat4
	proj     mgl32.Mat4
	viewProj mgl32.Mat4
}

// New creates a camera at position looking down +X.
func New(position mgl32.Vec3) *FPSCamera {
	c := &FPSCamera{
		position:    position,
		worldUp:     mgl32.Vec3{0, 1, 0},
		fov:         DefaultFOV,
		aspect:      DefaultAspect,
		near:        DefaultNear,
		far:         DefaultFar,
		Speed:       DefaultSpeed,
		Sensitivity: DefaultSensitivity,
	}
	c.updateVectors()
	return c
}

func (c *FPSCamera) updateVectors() {
	sy, cy := math32.Sincos(mgl32.DegToRad(c.yaw))
	sp, cp := math32.Sincos(mgl32.DegToRad(c.pitch))
	c.front = mgl32.Vec3{cy * cp, sp, sy * cp}.Normalize()
	c.right = c.front.Cross(c.worldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
	c.touch()
}

func (c *FPSCamera) touch() {
	c.dirty = true
	c.version++
}

// Position returns the eye position.
func (c *FPSCamera) Position() mgl32.Vec3 { return c.position }

// Front returns the unit look direction.
func (c *FPSCamera) Front() mgl32.Vec3 { return c.front }

// Right returns the unit right vector.
func (c *FPSCamera) Right() mgl32.Vec3 { return c.right }

// Up returns the unit camera up vector.
func (c *FPSCamera) Up() mgl32.Vec3 { return c.up }

// Yaw returns the yaw in degrees.
func (c *FPSCamera) Yaw() float32 { return c.yaw }

// Pitch returns the pitch in degrees.
func (c *FPSCamera) Pitch() float32 { return c.pitch }

// FOV returns the vertical field of view in degrees.
func (c *FPSCamera) FOV() float32 { return c.fov }

// Aspect returns the projection aspect ratio.
func (c *FPSCamera) Aspect() float32 { return c.aspect }

// Clip returns the near and far plane distances.
func (c *FPSCamera) Clip() (near, far float32) { return c.near, c.far }

// Active reports whether mouse look is engaged.
func (c *FPSCamera) Active() bool { return c.active }

// Version increments on every change to position, orientation or projection.
func (c *FPSCamera) Version() uint64 { return c.version }

// SetPosition moves the eye.
func (c *FPSCamera) SetPosition(p mgl32.Vec3) {
	c.position = p
	c.touch()
}

// SetAspect sets the projection aspect ratio. Non-positive values are ignored.
func (c *FPSCamera) SetAspect(aspect float32) {
	if aspect <= 0 || aspect == c.aspect {
		return
	}
	c.aspect = aspect
	c.touch()
}

// SetFOV sets the vertical field of view in degrees, clamped to [1, 120].
func (c *FPSCamera) SetFOV(deg float32) {
	c.fov = mgl32.Clamp(deg, 1, 120)
	c.touch()
}

// SetClip sets near and far plane distances. Invalid ranges are ignored.
func (c *FPSCamera) SetClip(near, far float32) {
	if near <= 0 || far <= near {
		return
	}
	c.near, c.far = near, far
	c.touch()
}

// Rotate sets yaw and pitch in degrees. Pitch is clamped to +/-89.
func (c *FPSCamera) Rotate(yaw, pitch float32) {
	c.yaw = yaw
	c.pitch = mgl32.Clamp(pitch, -maxPitch, maxPitch)
	c.updateVectors()
}

// Move translates the camera along its basis. It only moves while look is
// active.
func (c *FPSCamera) Move(dir Movement, dt float32) {
	if !c.active {
		return
	}
	v := c.Speed * dt
	switch dir {
	case Forward:
		c.position = c.position.Add(c.front.Mul(v))
	case Backward:
		c.position = c.position.Sub(c.front.Mul(v))
	case Left:
		c.position = c.position.Sub(c.right.Mul(v))
	case Right:
		c.position = c.position.Add(c.right.Mul(v))
	}
	c.touch()
}

// ProcessMouse feeds a cursor position. While held is true the cursor delta
// turns the camera; releasing the button ends look mode.
func (c *FPSCamera) ProcessMouse(x, y float32, held bool) {
	if held && c.hasLast {
		dx := (x - c.lastX) * c.Sensitivity
		dy := (y - c.lastY) * c.Sensitivity

		// Upside down the horizontal delta flips so the view still follows the cursor.
		sign := float32(1)
		if c.up.Y() < 0 {
			sign = -1
		}
		c.Rotate(c.yaw+sign*dx, c.pitch-dy)
	}
	c.active = held
	c.lastX, c.lastY = x, y
	c.hasLast = true
}

func (c *FPSCamera) refresh() {
	if !c.dirty {
		return
	}
	c.view = mgl32.LookAtV(c.position, c.position.Add(c.front), c.up)
	c.proj = mgl32.Perspective(mgl32.DegToRad(c.fov), c.aspect, c.near, c.far)
	c.viewProj = c.proj.Mul4(c.view)
	c.dirty = false
}

// View returns the world-to-view matrix.
func (c *FPSCamera) View() mgl32.Mat4 {
	c.refresh()
	return c.view
}

// Projection returns the perspective projection.
func (c *FPSCamera) Projection() mgl32.Mat4 {
	c.refresh()
	return c.proj
}

// ViewProjection returns Projection * View.
func (c *FPSCamera) ViewProjection() mgl32.Mat4 {
	c.refresh()
	return c.viewProj
}
