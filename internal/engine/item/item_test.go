package item

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mantaview/internal/engine/geometry"
	"github.com/Faultbox/mantaview/internal/engine/gpu/gputest"
	"github.com/Faultbox/mantaview/internal/engine/material"
)

func TestUpdateWorldIsPure(t *testing.T) {
	it := New("box", Opaque, geometry.Cube(), nil, mgl32.Vec3{1, 2, 3})
	it.Scale = mgl32.Vec3{2, 3, 4}

	it.UpdateWorld()
	first := it.World()
	it.UpdateWorld()
	assert.Equal(t, first, it.World())

	want := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(2, 3, 4))
	assert.True(t, want.ApproxEqual(first))

	p := first.Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	assert.True(t, mgl32.Vec4{3, 5, 7, 1}.ApproxEqual(p))
}

func TestBounds(t *testing.T) {
	it := New("box", Opaque, geometry.Box(2, 2, 2), nil, mgl32.Vec3{0, 0, -10})
	it.Scale = mgl32.Vec3{2, 1, 1}

	local := it.LocalBounds()
	assert.Equal(t, mgl32.Vec3{2, 1, 1}, local.Extents)
	assert.Equal(t, mgl32.Vec3{}, local.Center)

	world := it.WorldBounds()
	assert.Equal(t, mgl32.Vec3{0, 0, -10}, world.Center)

	var empty RenderItem
	assert.Equal(t, geometry.Bounds{}, empty.LocalBounds())
}

func TestDrawable(t *testing.T) {
	geo := geometry.Cube()
	it := New("box", Opaque, geo, &material.Material{Name: "m"}, mgl32.Vec3{})
	assert.False(t, it.Drawable(), "not uploaded yet")

	require.NoError(t, geo.Upload(gputest.New()))
	assert.True(t, it.Drawable())

	it.Material = nil
	assert.False(t, it.Drawable())
	it = RenderItem{}
	assert.False(t, it.Drawable())
}

func TestFollowSource(t *testing.T) {
	src := New("sphere", Opaque, geometry.Box(2, 4, 2), nil, mgl32.Vec3{5, 0, 0})
	src.Scale = mgl32.Vec3{2, 2, 2}
	src.SetCulled(true)

	box := New("sphere bbox", Overlay, geometry.Cube(), nil, mgl32.Vec3{})
	box.Source = &src
	box.FollowSource()

	assert.Equal(t, mgl32.Vec3{5, 0, 0}, box.Position)
	assert.Equal(t, mgl32.Vec3{4, 8, 4}, box.Scale)
	assert.True(t, box.Culled())

	src.SetCulled(false)
	box.FollowSource()
	assert.False(t, box.Culled())
}

func TestLayer(t *testing.T) {
	assert.Equal(t, "volumetric", Volumetric.String())
	assert.Equal(t, "unknown", Layer(42).String())
	assert.True(t, Opaque.Culled())
	assert.False(t, Sky.Culled())
	assert.False(t, DebugQuad.Culled())
}
