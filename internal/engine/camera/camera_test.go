package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-4

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.Truef(t, want.ApproxEqualThreshold(got, eps), "want %v, got %v", want, got)
}

func TestNewDefaults(t *testing.T) {
	c := New(mgl32.Vec3{-10, 5, 0})
	assertVec(t, mgl32.Vec3{-10, 5, 0}, c.Position())
	assertVec(t, mgl32.Vec3{1, 0, 0}, c.Front())
	assert.Equal(t, float32(DefaultFOV), c.FOV())
	near, far := c.Clip()
	assert.Equal(t, float32(0.1), near)
	assert.Equal(t, float32(100), far)
	assert.False(t, c.Active())
}

func TestBasisOrthonormal(t *testing.T) {
	c := New(mgl32.Vec3{})
	for _, o := range [][2]float32{{0, 0}, {-90, 0}, {37, 45}, {200, -80}, {10, 89}} {
		c.Rotate(o[0], o[1])
		f, r, u := c.Front(), c.Right(), c.Up()
		assert.InDelta(t, 1, f.Len(), eps)
		assert.InDelta(t, 1, r.Len(), eps)
		assert.InDelta(t, 1, u.Len(), eps)
		assert.InDelta(t, 0, f.Dot(r), eps)
		assert.InDelta(t, 0, f.Dot(u), eps)
		assert.InDelta(t, 0, r.Dot(u), eps)
	}
}

func TestYawMinus90LooksDownNegativeZ(t *testing.T) {
	c := New(mgl32.Vec3{})
	c.Rotate(-90, 0)
	assertVec(t, mgl32.Vec3{0, 0, -1}, c.Front())

	// A point in front of the camera projects inside clip space.
	p := c.ViewProjection().Mul4x1(mgl32.Vec4{0, 0, -10, 1})
	assert.Greater(t, p.W(), float32(0))
	assert.Less(t, math32.Abs(p.X()/p.W()), float32(1))
	assert.Less(t, math32.Abs(p.Z()/p.W()), float32(1))
}

func TestPitchClamped(t *testing.T) {
	c := New(mgl32.Vec3{})
	c.Rotate(0, 120)
	assert.Equal(t, float32(89), c.Pitch())
	c.Rotate(0, -120)
	assert.Equal(t, float32(-89), c.Pitch())
}

func TestCacheInvalidation(t *testing.T) {
	c := New(mgl32.Vec3{})
	v0 := c.Version()
	view := c.View()
	assert.Equal(t, v0, c.Version(), "reading matrices does not bump the version")

	c.SetPosition(mgl32.Vec3{1, 2, 3})
	assert.Greater(t, c.Version(), v0)
	assert.False(t, view.ApproxEqual(c.View()), "view must not be stale after a move")

	proj := c.Projection()
	c.SetAspect(1)
	assert.False(t, proj.ApproxEqual(c.Projection()))

	v1 := c.Version()
	c.SetAspect(1)
	c.SetAspect(-2)
	c.SetClip(10, 1)
	assert.Equal(t, v1, c.Version(), "no-op setters keep the cache")

	assert.True(t, c.ViewProjection().ApproxEqual(c.Projection().Mul4(c.View())))
}

func TestMoveOnlyWhileLookHeld(t *testing.T) {
	c := New(mgl32.Vec3{})
	c.Move(Forward, 1)
	assertVec(t, mgl32.Vec3{}, c.Position())

	c.ProcessMouse(100, 100, true)
	assert.True(t, c.Active())
	c.Move(Forward, 1)
	assertVec(t, mgl32.Vec3{DefaultSpeed, 0, 0}, c.Position())
	c.Move(Right, 2)
	assertVec(t, mgl32.Vec3{DefaultSpeed, 0, 2 * DefaultSpeed}, c.Position())

	c.ProcessMouse(100, 100, false)
	c.Move(Backward, 1)
	assertVec(t, mgl32.Vec3{DefaultSpeed, 0, 2 * DefaultSpeed}, c.Position())
}

func TestProcessMouse(t *testing.T) {
	c := New(mgl32.Vec3{})
	c.ProcessMouse(0, 0, false)
	c.ProcessMouse(50, 50, false)
	assert.Zero(t, c.Yaw(), "no look without the button")

	c.ProcessMouse(50, 50, true)
	c.ProcessMouse(60, 40, true)
	assert.InDelta(t, 1, c.Yaw(), eps)
	assert.InDelta(t, 1, c.Pitch(), eps)
}
