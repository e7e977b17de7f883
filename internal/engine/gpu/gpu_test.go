package gpu_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mantaview/internal/engine/gpu"
	"github.com/Faultbox/mantaview/internal/engine/gpu/gputest"
)

func TestLayoutStride(t *testing.T) {
	assert.Equal(t, 11, gpu.StandardLayout.Stride())
	assert.Equal(t, 3, gpu.Layout{3}.Stride())
	assert.Equal(t, 0, gpu.Layout(nil).Stride())
}

func TestZeroHandlesAreInvalid(t *testing.T) {
	assert.False(t, gpu.Mesh(0).Valid())
	assert.False(t, gpu.Texture(0).Valid())
	assert.False(t, gpu.Program(0).Valid())
	assert.False(t, (*gpu.Target)(nil).Valid())
	assert.True(t, gpu.Program(7).Valid())
}

func TestRecorderTracksLifetimes(t *testing.T) {
	dev := gputest.New()

	mesh, err := dev.CreateMesh(make([]float32, 11*3), gpu.StandardLayout, []uint32{0, 1, 2})
	require.NoError(t, err)
	tex, err := dev.CreateTexture2D(image.NewRGBA(image.Rect(0, 0, 1, 1)), gpu.TextureOptions{})
	require.NoError(t, err)
	target, err := dev.CreateTarget(gpu.TargetSpec{Name: "scene", Width: 4, Height: 4, Color: true})
	require.NoError(t, err)

	m, tx, _, tg := dev.Live()
	assert.Equal(t, 1, m)
	assert.Equal(t, 3, tx) // texture + color + depth
	assert.Equal(t, 1, tg)

	dev.DeleteMesh(mesh)
	dev.DeleteTexture(tex)
	dev.DeleteTarget(target)
	m, tx, _, tg = dev.Live()
	assert.Zero(t, m+tx+tg)
}

func TestRecorderRejectsBadStride(t *testing.T) {
	dev := gputest.New()
	_, err := dev.CreateMesh(make([]float32, 10), gpu.StandardLayout, nil)
	assert.Error(t, err)
}

func TestRecorderDrawCapturesState(t *testing.T) {
	dev := gputest.New()
	p, err := dev.CompileProgram(gpu.ProgramSource{Name: "sky", Vertex: "v", Fragment: "f"})
	require.NoError(t, err)

	dev.UseProgram(p)
	dev.SetFloat("exposure", 2)
	dev.SetState(gpu.State{DepthTest: true, DepthFunc: gpu.DepthLessEqual})
	dev.BindTexture(0, gpu.TextureCube, 42)
	dev.Draw(9, 36, gpu.Triangles)

	draws := dev.DrawsFor("sky")
	require.Len(t, draws, 1)
	assert.Equal(t, gpu.DepthLessEqual, draws[0].State.DepthFunc)
	assert.Equal(t, gpu.Texture(42), draws[0].Textures[0])
	assert.Equal(t, float32(2), draws[0].Uniforms["exposure"])
	assert.Equal(t, "default", draws[0].Target)
}
