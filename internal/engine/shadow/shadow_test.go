package shadow

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mantaview/internal/engine/geometry"
	"github.com/Faultbox/mantaview/internal/engine/gpu"
	"github.com/Faultbox/mantaview/internal/engine/gpu/gputest"
	"github.com/Faultbox/mantaview/internal/engine/lighting"
)

func inClip(m mgl32.Mat4, p mgl32.Vec3) bool {
	c := m.Mul4x1(p.Vec4(1))
	for i := 0; i < 3; i++ {
		if c[i]/c[3] < -1 || c[i]/c[3] > 1 {
			return false
		}
	}
	return true
}

func TestLightViewProjection(t *testing.T) {
	l := lighting.DefaultDirectional()
	vp := LightViewProjection(l, DefaultHalfExtent, DefaultNear, DefaultFar)

	assert.True(t, inClip(vp, mgl32.Vec3{}), "focal point is inside the light frustum")
	assert.True(t, inClip(vp, mgl32.Vec3{5, 0, 5}))
	assert.False(t, inClip(vp, mgl32.Vec3{50, 0, 0}))

	// Straight down must not produce NaNs from a parallel up vector.
	l.Position = mgl32.Vec3{0, 10, 0}
	vp = LightViewProjection(l, 10, 0.1, 50)
	assert.True(t, inClip(vp, mgl32.Vec3{1, 0, 1}))
}

func TestLightOnFocalPointStaysFinite(t *testing.T) {
	l := lighting.DefaultDirectional()
	l.Position = l.FocalPoint
	bounds := geometry.Bounds{Extents: mgl32.Vec3{1, 1, 1}}

	for name, vp := range map[string]mgl32.Mat4{
		"fixed": LightViewProjection(l, DefaultHalfExtent, DefaultNear, DefaultFar),
		"fit":   FitDirectional(l.Direction(), bounds),
	} {
		for i, v := range vp {
			require.False(t, math.IsNaN(float64(v)), "%s: element %d is NaN", name, i)
		}
		assert.True(t, inClip(vp, mgl32.Vec3{}), name)
	}
}

func TestFitDirectionalEnclosesBounds(t *testing.T) {
	b := geometry.NewBounds(mgl32.Vec3{-30, 0, -20}, mgl32.Vec3{30, 5, 20})
	vp := FitDirectional(mgl32.Vec3{0, 1, 1}, b)
	for _, c := range b.Corners() {
		assert.Truef(t, inClip(vp, c), "corner %v", c)
	}

	// An empty box still yields a usable matrix.
	vp = FitDirectional(mgl32.Vec3{0, 1, 0}, geometry.Bounds{})
	assert.True(t, inClip(vp, mgl32.Vec3{}))
}

func TestMap(t *testing.T) {
	dev := gputest.New()
	m, err := NewMap(dev, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultResolution, m.Resolution)
	assert.True(t, m.Valid())
	assert.True(t, m.Texture().Valid())

	m.Bind(dev)
	assert.Contains(t, dev.Ops(), "Clear")
	assert.Equal(t, gpu.CullFront, DepthState().Cull)

	m.Destroy(dev)
	assert.False(t, m.Valid())
	assert.Zero(t, m.Texture())
	_, _, _, targets := dev.Live()
	assert.Zero(t, targets)
}

func TestMapCreateFailure(t *testing.T) {
	dev := gputest.New()
	dev.FailTarget["shadow"] = true
	_, err := NewMap(dev, 512)
	assert.ErrorIs(t, err, gputest.ErrInjected)
}
