package picking

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mantaview/internal/engine/geometry"
	"github.com/Faultbox/mantaview/internal/engine/item"
)

func unitBounds(center mgl32.Vec3) geometry.Bounds {
	return geometry.Bounds{
		Min:     center.Sub(mgl32.Vec3{1, 1, 1}),
		Max:     center.Add(mgl32.Vec3{1, 1, 1}),
		Center:  center,
		Extents: mgl32.Vec3{1, 1, 1},
	}
}

func TestScreenToRayCenter(t *testing.T) {
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(45), 1, 0.1, 100)
	r := ScreenToRay(0.5, 0.5, proj.Mul4(view).Inv())

	assert.InDelta(t, 0, r.Direction[0], 1e-4)
	assert.InDelta(t, 0, r.Direction[1], 1e-4)
	assert.InDelta(t, -1, r.Direction[2], 1e-4)
	assert.InDelta(t, 4.9, r.Origin[2], 1e-3)
}

func TestScreenToRayTopIsUp(t *testing.T) {
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(45), 1, 0.1, 100)
	r := ScreenToRay(0.5, 0.1, proj.Mul4(view).Inv())
	assert.Greater(t, r.Direction[1], float32(0))
}

func TestIntersectBounds(t *testing.T) {
	box := unitBounds(mgl32.Vec3{0, 0, -5})
	tests := []struct {
		name string
		ray  Ray
		hit  bool
		t    float32
	}{
		{"head on", Ray{Origin: mgl32.Vec3{}, Direction: mgl32.Vec3{0, 0, -1}}, true, 4},
		{"behind", Ray{Origin: mgl32.Vec3{}, Direction: mgl32.Vec3{0, 0, 1}}, false, 0},
		{"miss parallel", Ray{Origin: mgl32.Vec3{3, 0, 0}, Direction: mgl32.Vec3{0, 0, -1}}, false, 0},
		{"inside", Ray{Origin: mgl32.Vec3{0, 0, -5}, Direction: mgl32.Vec3{0, 0, -1}}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectBounds(box)
			assert.Equal(t, tt.hit, hit)
			if tt.hit {
				assert.InDelta(t, tt.t, got, 1e-5)
			}
		})
	}
}

func TestIntersectPlaneY(t *testing.T) {
	r := Ray{Origin: mgl32.Vec3{0, 10, 0}, Direction: mgl32.Vec3{1, -1, 0}.Normalize()}
	x, z, ok := r.IntersectPlaneY(0)
	require.True(t, ok)
	assert.InDelta(t, 10, x, 1e-4)
	assert.InDelta(t, 0, z, 1e-4)

	_, _, ok = Ray{Direction: mgl32.Vec3{1, 0, 0}}.IntersectPlaneY(0)
	assert.False(t, ok)
}

func TestPickNearest(t *testing.T) {
	cube := geometry.Cube()
	near := item.New("near", item.Opaque, cube, nil, mgl32.Vec3{0, 0, -3})
	far := item.New("far", item.Opaque, cube, nil, mgl32.Vec3{0, 0, -8})
	sky := item.New("sky", item.Sky, cube, nil, mgl32.Vec3{})
	culled := item.New("culled", item.Opaque, cube, nil, mgl32.Vec3{0, 0, -1.5})
	culled.SetCulled(true)

	r := Ray{Direction: mgl32.Vec3{0, 0, -1}}
	got := Pick(r, []*item.RenderItem{&sky, &far, &culled, &near})
	require.NotNil(t, got)
	assert.Equal(t, "near", got.Name)

	assert.Nil(t, Pick(Ray{Direction: mgl32.Vec3{0, 1, 0}, Origin: mgl32.Vec3{5, 0, 0}}, []*item.RenderItem{&near}))
}
