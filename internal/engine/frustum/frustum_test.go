package frustum

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mantaview/internal/engine/camera"
	"github.com/Faultbox/mantaview/internal/engine/geometry"
)

var unitBox = geometry.NewBounds(mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5})

func perspective() mgl32.Mat4 {
	view := mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(45), 16.0/9.0, 0.1, 100)
	return proj.Mul4(view)
}

func TestPlaneNormalsAreUnit(t *testing.T) {
	matrices := map[string]mgl32.Mat4{
		"perspective": perspective(),
		"ortho":       mgl32.Ortho(-20, 20, -20, 20, 0.1, 100),
		"identity":    mgl32.Ident4(),
	}
	for name, m := range matrices {
		t.Run(name, func(t *testing.T) {
			f := ExtractFromMatrix(m)
			require.False(t, f.Degenerate())
			for i, pl := range f.Planes() {
				assert.InDeltaf(t, 1, pl.N.Len(), 1e-5, "plane %s", PlaneIndex(i))
			}
		})
	}
}

func TestNearPlaneFacesForward(t *testing.T) {
	f := ExtractFromMatrix(perspective())
	near := f.Plane(NearPlane)
	assert.InDelta(t, -1, near.N.Z(), 1e-5)
	assert.InDelta(t, 0.1, near.Distance(mgl32.Vec3{0, 0, -0.2}), 1e-3)
}

func TestClassify(t *testing.T) {
	f := ExtractFromMatrix(perspective())

	tests := []struct {
		name   string
		offset mgl32.Vec3
		want   Intersection
	}{
		{"ahead", mgl32.Vec3{0, 0, -10}, Contained},
		{"behind", mgl32.Vec3{0, 0, 10}, Disjoint},
		{"far left", mgl32.Vec3{-100, 0, -10}, Disjoint},
		{"beyond far", mgl32.Vec3{0, 0, -150}, Disjoint},
		{"straddles near", mgl32.Vec3{0, 0, -0.3}, Intersect},
		{"straddles far", mgl32.Vec3{0, 0, -100}, Intersect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.ClassifyBox(unitBox, tt.offset))
		})
	}
}

func TestClassifyUsesBoxCenter(t *testing.T) {
	f := ExtractFromMatrix(perspective())
	shifted := unitBox.Translated(mgl32.Vec3{0, 0, 20})
	assert.Equal(t, Disjoint, f.ClassifyBox(shifted, mgl32.Vec3{}))
	assert.Equal(t, Contained, f.ClassifyBox(shifted, mgl32.Vec3{0, 0, -30}))
}

func TestExtractionIsIdempotent(t *testing.T) {
	m := perspective()
	assert.Equal(t, ExtractFromMatrix(m), ExtractFromMatrix(m))
}

func TestDegenerateMatrixIsVisible(t *testing.T) {
	f := ExtractFromMatrix(mgl32.Mat4{})
	assert.True(t, f.Degenerate())
	assert.Equal(t, Intersect, f.ClassifyBox(unitBox, mgl32.Vec3{0, 0, 1000}))
	assert.Equal(t, Intersect, f.ClassifySphere(mgl32.Vec3{}, 0))
}

func TestCameraScenario(t *testing.T) {
	cam := camera.New(mgl32.Vec3{})
	cam.Rotate(-90, 0)
	f := ExtractFromMatrix(cam.ViewProjection())

	assert.Equal(t, Contained, f.ClassifyBox(unitBox, mgl32.Vec3{0, 0, -10}))
	assert.Equal(t, Disjoint, f.ClassifyBox(unitBox, mgl32.Vec3{0, 0, 10}))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "contained", Contained.String())
	assert.Equal(t, "far", FarPlane.String())
	assert.Equal(t, "unknown", PlaneIndex(9).String())
	assert.True(t, Intersect.Visible())
	assert.False(t, Disjoint.Visible())
}
