package pass

import (
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mantaview/internal/engine/geometry"
	"github.com/Faultbox/mantaview/internal/engine/gpu"
	"github.com/Faultbox/mantaview/internal/engine/gpu/gputest"
	"github.com/Faultbox/mantaview/internal/engine/item"
	"github.com/Faultbox/mantaview/internal/engine/lighting"
	"github.com/Faultbox/mantaview/internal/engine/material"
	"github.com/Faultbox/mantaview/internal/engine/shader"
	"github.com/Faultbox/mantaview/internal/engine/shadow"
	"github.com/Faultbox/mantaview/internal/engine/texture"
)

type fixture struct {
	dev   *gputest.Device
	lib   *shader.Library
	frame *Frame
	items *Items
	box   *item.RenderItem
	smoke *item.RenderItem
}

func newFixture(t *testing.T, failing ...string) *fixture {
	t.Helper()
	dev := gputest.New()
	for _, name := range failing {
		dev.FailCompile[name] = true
	}
	lib := shader.NewLibrary(dev, "")
	lib.LoadBuiltins()

	textures, err := material.NewTextures(dev)
	require.NoError(t, err)
	volume, err := textures.AddVolume("smoke", 2, 2, 2)
	require.NoError(t, err)
	face := texture.Solid(0, 0, 255, 255)
	skyTex, err := dev.CreateTextureCube([6]*image.RGBA{face, face, face, face, face, face})
	require.NoError(t, err)

	cube := geometry.Cube()
	quad := geometry.Quad()
	wire, err := geometry.NewLines("wire", []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}})
	require.NoError(t, err)
	for _, g := range []*geometry.Geometry{cube, quad, wire} {
		require.NoError(t, g.Upload(dev))
	}

	brick := &material.Material{Name: "brick", Albedo: mgl32.Vec3{1, 0, 0}}
	smokeMat := &material.Material{Name: "smoke", Density: volume}
	lightMat := &material.Material{Name: "light", Emissive: mgl32.Vec3{4, 4, 4}}
	skyMat := &material.Material{Name: "sky"}

	box := item.New("box", item.Opaque, cube, brick, mgl32.Vec3{0, 0, -5})
	hidden := item.New("hidden", item.Opaque, cube, brick, mgl32.Vec3{0, 0, 5})
	hidden.SetCulled(true)
	smoke := item.New("smoke", item.Volumetric, cube, smokeMat, mgl32.Vec3{0, 0, -8})
	lamp := item.New("lamp", item.Light, cube, lightMat, mgl32.Vec3{0, 15, 10})
	sky := item.New("sky", item.Sky, cube, skyMat, mgl32.Vec3{})
	debugQuad := item.New("debug", item.DebugQuad, quad, nil, mgl32.Vec3{})
	overlay := item.New("box bbox", item.Overlay, wire, nil, mgl32.Vec3{})
	overlay.Source = &box
	hiddenOverlay := item.New("hidden bbox", item.Overlay, wire, nil, mgl32.Vec3{})
	hiddenOverlay.Source = &hidden
	overlay.FollowSource()
	hiddenOverlay.FollowSource()

	scene, err := dev.CreateTarget(gpu.TargetSpec{Name: "scene", Width: 64, Height: 32, Color: true})
	require.NoError(t, err)
	dbg, err := dev.CreateTarget(gpu.TargetSpec{Name: "debugrt", Width: 64, Height: 32, Color: true})
	require.NoError(t, err)
	sm, err := shadow.NewMap(dev, 128)
	require.NoError(t, err)

	lights := lighting.NewSet()
	lights.Add(lighting.DefaultDirectional())

	frame := &Frame{
		View:       mgl32.LookAtV(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}),
		Proj:       mgl32.Perspective(mgl32.DegToRad(45), 2, 0.1, 100),
		Near:       0.1,
		Far:        100,
		Lights:     lights,
		Scene:      scene,
		Debug:      dbg,
		Shadow:     sm,
		Textures:   textures,
		ShowBounds: true,
		Volumetric: true,
	}
	items := &Items{
		Opaque:     []*item.RenderItem{&box, &hidden},
		Lights:     []*item.RenderItem{&lamp},
		Volumetric: []*item.RenderItem{&smoke},
		Overlay:    []*item.RenderItem{&overlay, &hiddenOverlay},
		Sky:        &sky,
		DebugQuad:  &debugQuad,
	}

	// The sky's cube map lives in the texture arena like the others.
	cubeID, err := textures.LoadCube("sky", [6]string{})
	require.NoError(t, err)
	textures.Get(cubeID).Handle = skyTex
	skyMat.Density = cubeID

	dev.Reset()
	return &fixture{dev: dev, lib: lib, frame: frame, items: items, box: &box, smoke: &smoke}
}

func programs(draws []gputest.Draw) []string {
	var out []string
	for _, d := range draws {
		if len(out) == 0 || out[len(out)-1] != d.Program {
			out = append(out, d.Program)
		}
	}
	return out
}

func TestPipelineOrder(t *testing.T) {
	fx := newFixture(t)
	p := NewPipeline(fx.lib)
	timings := p.Run(fx.dev, fx.frame, fx.items)

	require.Len(t, timings, 7)
	names := make([]string, len(timings))
	for i, tm := range timings {
		names[i] = tm.Name
		assert.False(t, tm.Skipped, tm.Name)
	}
	assert.Equal(t, []string{"shadow", "opaque", "light", "sky", "volumetric", "bounds", "debug"}, names)
	assert.Equal(t,
		[]string{shader.Shadow, shader.Opaque, shader.Light, shader.Sky, shader.Smoke, shader.BBox, shader.Debug},
		programs(fx.dev.Draws()))
}

func TestShadowDrawsCulledItems(t *testing.T) {
	fx := newFixture(t)
	NewPipeline(fx.lib).Run(fx.dev, fx.frame, fx.items)

	shadowDraws := fx.dev.DrawsFor(shader.Shadow)
	assert.Len(t, shadowDraws, 2, "culled casters still cast shadows")
	for _, d := range shadowDraws {
		assert.Equal(t, "shadow", d.Target)
		assert.Equal(t, gpu.CullFront, d.State.Cull)
	}

	opaque := fx.dev.DrawsFor(shader.Opaque)
	require.Len(t, opaque, 1)
	assert.Equal(t, "scene", opaque[0].Target)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, opaque[0].Uniforms["material.albedo"])
	assert.Equal(t, fx.frame.Shadow.Texture(), opaque[0].Textures[unitShadow])
	assert.Equal(t, int32(1), opaque[0].Uniforms["lightNum"])
}

func TestSkyDepthFuncRestored(t *testing.T) {
	fx := newFixture(t)
	NewPipeline(fx.lib).Run(fx.dev, fx.frame, fx.items)

	sky := fx.dev.DrawsFor(shader.Sky)
	require.Len(t, sky, 1)
	assert.Equal(t, gpu.DepthLessEqual, sky[0].State.DepthFunc)

	view := sky[0].Uniforms["view"].(mgl32.Mat4)
	assert.Equal(t, float32(0), view.Col(3).X(), "sky view has no translation")
	assert.Equal(t, float32(0), view.Col(3).Z())

	smoke := fx.dev.DrawsFor(shader.Smoke)
	require.Len(t, smoke, 1)
	assert.Equal(t, gpu.DepthLess, smoke[0].State.DepthFunc, "LESS is back after the sky")
}

func TestVolumetricState(t *testing.T) {
	fx := newFixture(t)
	NewPipeline(fx.lib).Run(fx.dev, fx.frame, fx.items)

	smoke := fx.dev.DrawsFor(shader.Smoke)
	require.Len(t, smoke, 1)
	d := smoke[0]
	assert.Equal(t, gpu.BlendAlpha, d.State.Blend)
	assert.False(t, d.State.DepthTest)
	assert.Equal(t, fx.frame.Textures.Handle(fx.smoke.Material.Density), d.Textures[unitDensity])
	assert.Equal(t, fx.frame.Scene.Depth, d.Textures[unitSceneDepth])
	assert.Equal(t, float32(64), d.Uniforms["xResolution"])
	assert.Equal(t, mgl32.Vec3{-0.5, -0.5, -0.5}, d.Uniforms["bbMin"])

	bbox := fx.dev.DrawsFor(shader.BBox)
	require.Len(t, bbox, 1, "overlay of the culled item is skipped")
	assert.Equal(t, gpu.BlendNone, bbox[0].State.Blend)
	assert.Equal(t, gpu.Lines, bbox[0].Prim)
}

func TestToggles(t *testing.T) {
	fx := newFixture(t)
	fx.frame.ShowBounds = false
	fx.frame.Volumetric = false
	fx.frame.DebugView = DebugOff
	NewPipeline(fx.lib).Run(fx.dev, fx.frame, fx.items)

	assert.Empty(t, fx.dev.DrawsFor(shader.BBox))
	assert.Empty(t, fx.dev.DrawsFor(shader.Smoke))
	assert.Empty(t, fx.dev.DrawsFor(shader.Debug))
}

func TestDebugSource(t *testing.T) {
	fx := newFixture(t)
	NewPipeline(fx.lib).Run(fx.dev, fx.frame, fx.items)
	dbg := fx.dev.DrawsFor(shader.Debug)
	require.Len(t, dbg, 1)
	assert.Equal(t, "debugrt", dbg[0].Target)
	assert.Equal(t, fx.frame.Scene.Depth, dbg[0].Textures[0])
	assert.Equal(t, int32(1), dbg[0].Uniforms["linearize"])

	fx.dev.Reset()
	fx.frame.DebugView = DebugShadowMap
	NewPipeline(fx.lib).Run(fx.dev, fx.frame, fx.items)
	dbg = fx.dev.DrawsFor(shader.Debug)
	require.Len(t, dbg, 1)
	assert.Equal(t, fx.frame.Shadow.Texture(), dbg[0].Textures[0])
}

func TestFailedProgramSkipsOnlyItsPass(t *testing.T) {
	fx := newFixture(t, shader.Sky)
	timings := NewPipeline(fx.lib).Run(fx.dev, fx.frame, fx.items)

	for _, tm := range timings {
		assert.Equal(t, tm.Name == "sky", tm.Skipped, tm.Name)
	}
	assert.Empty(t, fx.dev.DrawsFor(shader.Sky))
	assert.NotEmpty(t, fx.dev.DrawsFor(shader.Opaque))
	assert.NotEmpty(t, fx.dev.DrawsFor(shader.Debug))
}

func TestMissingProgramFile(t *testing.T) {
	fx := newFixture(t)
	fx.lib.Load(shader.Smoke, "missing.vert", "missing.frag")

	p := NewPipeline(fx.lib)
	for i := 0; i < 3; i++ {
		timings := p.Run(fx.dev, fx.frame, fx.items)
		assert.True(t, timings[4].Skipped)
	}
	assert.Len(t, p.unavailable, 1)
	assert.Empty(t, fx.dev.DrawsFor(shader.Smoke))
	assert.Len(t, fx.dev.DrawsFor(shader.Opaque), 3)
}

func TestItemsWithoutGeometryAreSkipped(t *testing.T) {
	fx := newFixture(t)
	fx.box.Geometry = nil
	fx.smoke.Material = nil
	timings := NewPipeline(fx.lib).Run(fx.dev, fx.frame, fx.items)

	assert.Empty(t, fx.dev.DrawsFor(shader.Opaque))
	assert.Empty(t, fx.dev.DrawsFor(shader.Smoke))
	assert.Equal(t, 1, timings[0].Draws, "the culled item still casts")
}

func TestParseDebugSource(t *testing.T) {
	for _, s := range []DebugSource{DebugSceneDepth, DebugShadowMap, DebugOff} {
		got, err := ParseDebugSource(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseDebugSource("normals")
	assert.Error(t, err)
}
