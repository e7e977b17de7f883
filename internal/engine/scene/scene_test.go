package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/mantaview/internal/config"
	"github.com/Faultbox/mantaview/internal/engine/camera"
	"github.com/Faultbox/mantaview/internal/engine/geometry"
	"github.com/Faultbox/mantaview/internal/engine/gpu"
	"github.com/Faultbox/mantaview/internal/engine/gpu/gputest"
	"github.com/Faultbox/mantaview/internal/engine/item"
	"github.com/Faultbox/mantaview/internal/engine/material"
	"github.com/Faultbox/mantaview/internal/engine/pass"
	"github.com/Faultbox/mantaview/internal/engine/shader"
	"github.com/Faultbox/mantaview/internal/sim"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Assets.Root = t.TempDir()
	cfg.Simulation.Size = [3]int{4, 8, 4}
	return cfg
}

func testOptions() Options {
	o := DefaultOptions()
	o.SceneWidth, o.SceneHeight = 64, 32
	o.DebugWidth, o.DebugHeight = 64, 32
	o.ShadowResolution = 128
	return o
}

func newDefaultScene(t *testing.T) (*gputest.Device, *Setup, *Scene) {
	t.Helper()
	dev := gputest.New()
	st, err := Default(dev, testConfig(t))
	require.NoError(t, err)
	s, err := New(dev, testOptions(), st.Resources, st.Content, st.Lights)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
		st.Resources.Release(dev)
	})
	return dev, st, s
}

func TestDefaultSceneItems(t *testing.T) {
	_, st, _ := newDefaultScene(t)
	c := st.Content

	for _, name := range []string{"Box", "Sphere", "Sphere2", "Floor", ItemSmoke, ItemLight, "Sky", "debugRT"} {
		assert.NotNil(t, c.Item(name), name)
	}
	assert.Nil(t, c.Item("Bunny"), "model file does not exist")

	assert.Equal(t, float32(5), c.Item("Floor").TextureScale)
	assert.Equal(t, mgl32.Vec3{0.25, 0.5, 0.25}, c.Item(ItemSmoke).Scale)
	assert.Equal(t, mgl32.Vec3{0.3, 0.3, 0.3}, c.Item(ItemLight).Scale)
	assert.Equal(t, st.Density, c.Item(ItemSmoke).Material.Density)

	assert.Len(t, c.Groups.Opaque, 4)
	assert.Len(t, c.Groups.Lights, 1)
	assert.Len(t, c.Groups.Volumetric, 1)
	assert.Len(t, c.Overlays(), 6)
	assert.Same(t, c.Item("Sky"), c.Groups.Sky)
	assert.Nil(t, c.Groups.DebugQuad.Material)
}

func TestDefaultSceneWithoutSimulation(t *testing.T) {
	dev := gputest.New()
	cfg := testConfig(t)
	cfg.Simulation.Enabled = false
	st, err := Default(dev, cfg)
	require.NoError(t, err)
	defer st.Resources.Release(dev)

	assert.False(t, st.Density.Valid())
	assert.Nil(t, st.Content.Item(ItemSmoke))
	assert.Empty(t, st.Content.Groups.Volumetric)
}

func TestVisiblePlusCulledIsTotal(t *testing.T) {
	_, _, s := newDefaultScene(t)
	cam := camera.New(mgl32.Vec3{-10, 5, 0})

	poses := []struct{ yaw, pitch float32 }{
		{0, 0}, {90, 0}, {180, 0}, {-90, 30}, {0, -89}, {45, 89},
	}
	sawCulled := false
	for _, p := range poses {
		cam.Rotate(p.yaw, p.pitch)
		st := s.RunFrame(cam)
		assert.Equal(t, st.Total, st.Visible+st.Culled, "yaw %v pitch %v", p.yaw, p.pitch)
		assert.Equal(t, 6, st.Total)
		assert.Len(t, s.Visible(), st.Visible)
		if st.Culled > 0 {
			sawCulled = true
		}
	}
	assert.True(t, sawCulled, "looking away should cull something")
}

func TestOverlaysMirrorCulled(t *testing.T) {
	_, st, s := newDefaultScene(t)
	cam := camera.New(mgl32.Vec3{-10, 5, 0})
	cam.Rotate(180, 0)
	s.RunFrame(cam)

	for _, ov := range st.Content.Overlays() {
		require.NotNil(t, ov.Source)
		assert.Equal(t, ov.Source.Culled(), ov.Culled(), ov.Name)
		want := ov.Source.WorldBounds().Center
		assert.InDelta(t, want.X(), ov.Position.X(), 1e-5)
		assert.InDelta(t, want.Y(), ov.Position.Y(), 1e-5)
		assert.InDelta(t, want.Z(), ov.Position.Z(), 1e-5)
	}
}

// cubeScene builds a scene with a single 2x2x2 box at pos.
func cubeScene(t *testing.T, dev *gputest.Device, pos mgl32.Vec3) (*Scene, *item.RenderItem) {
	t.Helper()
	res, err := NewResources(dev, "")
	require.NoError(t, err)
	res.Shaders.LoadBuiltins()
	box := geometry.Box(2, 2, 2)
	box.Name = "box2"
	_, err = res.Geometries.Add(box)
	require.NoError(t, err)
	require.NoError(t, res.Geometries.UploadAll(dev))
	_, err = res.Materials.Add(material.Material{Name: "m", Albedo: mgl32.Vec3{1, 1, 1}})
	require.NoError(t, err)

	b := NewBuilder()
	b.Overlay = ""
	b.Add(ItemSpec{Name: "target", Layer: item.Opaque, Geometry: "box2", Material: "m", Position: pos})
	content, err := b.Build(res)
	require.NoError(t, err)

	s, err := New(dev, testOptions(), res, content, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
		res.Release(dev)
	})
	return s, content.Item("target")
}

func TestCameraScenario(t *testing.T) {
	dev := gputest.New()
	s, target := cubeScene(t, dev, mgl32.Vec3{0, 0, -10})

	cam := camera.New(mgl32.Vec3{})
	cam.Rotate(-90, 0)
	cam.SetAspect(1)
	cam.SetClip(0.1, 100)

	st := s.RunFrame(cam)
	assert.False(t, target.Culled())
	assert.Equal(t, uint64(1), st.Frame)
	assert.Equal(t, 1, st.Total)
	assert.Equal(t, 1, st.Visible)
	assert.Zero(t, st.Culled)
	assert.Len(t, dev.DrawsFor(shader.Opaque), 1)

	target.Position = mgl32.Vec3{0, 0, 10}
	dev.Reset()
	st = s.RunFrame(cam)
	assert.True(t, target.Culled())
	assert.Equal(t, 1, st.Culled)
	assert.Empty(t, dev.DrawsFor(shader.Opaque))
	// The shadow pass still draws culled items.
	assert.Len(t, dev.DrawsFor(shader.Shadow), 1)
}

func TestFrustumRebuiltOnlyWhenCameraChanges(t *testing.T) {
	dev := gputest.New()
	s, target := cubeScene(t, dev, mgl32.Vec3{0, 0, -10})
	cam := camera.New(mgl32.Vec3{})
	cam.Rotate(-90, 0)

	s.RunFrame(cam)
	v := s.camVersion
	s.RunFrame(cam)
	assert.Equal(t, v, s.camVersion)
	assert.False(t, target.Culled())

	cam.Rotate(90, 0)
	s.RunFrame(cam)
	assert.NotEqual(t, v, s.camVersion)
	assert.True(t, target.Culled())
}

func TestMissingReference(t *testing.T) {
	dev := gputest.New()
	res, err := NewResources(dev, "")
	require.NoError(t, err)
	defer res.Release(dev)
	_, err = res.Geometries.Add(geometry.Cube())
	require.NoError(t, err)
	_, err = res.Materials.Add(material.Material{Name: "m"})
	require.NoError(t, err)

	cases := map[string]ItemSpec{
		"geometry":          {Name: "a", Layer: item.Opaque, Geometry: "nope", Material: "m"},
		"material":          {Name: "b", Layer: item.Opaque, Geometry: "cube", Material: "nope"},
		"no material":       {Name: "d", Layer: item.Opaque, Geometry: "cube"},
		"no smoke material": {Name: "e", Layer: item.Volumetric, Geometry: "cube"},
	}
	for name, spec := range cases {
		t.Run(name, func(t *testing.T) {
			b := NewBuilder()
			b.Overlay = ""
			_, err := b.Add(spec).Build(res)
			assert.ErrorIs(t, err, ErrMissingReference)
		})
	}

	t.Run("debug quad without material", func(t *testing.T) {
		b := NewBuilder()
		b.Overlay = ""
		c, err := b.Add(ItemSpec{Name: "q", Layer: item.DebugQuad, Geometry: "cube"}).Build(res)
		require.NoError(t, err)
		assert.Nil(t, c.Item("q").Material)
	})

	t.Run("overlay geometry", func(t *testing.T) {
		_, err := NewBuilder().Add(ItemSpec{Name: "c", Layer: item.Opaque, Geometry: "cube", Material: "m"}).Build(res)
		assert.ErrorIs(t, err, ErrMissingReference)
	})

	t.Run("second sky", func(t *testing.T) {
		b := NewBuilder()
		b.Overlay = ""
		_, err := b.Add(
			ItemSpec{Name: "s1", Layer: item.Sky, Geometry: "cube", Material: "m"},
			ItemSpec{Name: "s2", Layer: item.Sky, Geometry: "cube", Material: "m"},
		).Build(res)
		assert.Error(t, err)
	})
}

func TestVolumeUploadFailureKeepsPrevious(t *testing.T) {
	dev, st, s := newDefaultScene(t)
	buf, err := sim.NewBuffer(4, 8, 4)
	require.NoError(t, err)
	require.NoError(t, s.BindVolume(st.Density, buf))
	handle := st.Resources.Textures.Handle(st.Density)
	cam := camera.New(mgl32.Vec3{-10, 5, 0})

	fill := func(v float32) {
		buf.Write(func(data []float32) {
			for i := range data {
				data[i] = v
			}
		})
	}

	fill(1)
	s.RunFrame(cam)
	assert.Equal(t, float32(1), dev.Volume(handle)[0])

	dev.FailUpload = true
	fill(2)
	stats := s.RunFrame(cam)
	assert.Equal(t, 1, stats.UploadFailures)
	for _, v := range dev.Volume(handle) {
		require.Equal(t, float32(1), v)
	}
	// The volumetric pass still draws with the old content.
	assert.NotEmpty(t, dev.DrawsFor(shader.Smoke))

	dev.FailUpload = false
	stats = s.RunFrame(cam)
	assert.Zero(t, stats.UploadFailures)
	assert.Equal(t, float32(2), dev.Volume(handle)[0])
}

func TestBindVolumeSizeMismatch(t *testing.T) {
	_, st, s := newDefaultScene(t)
	buf, err := sim.NewBuffer(4, 4, 4)
	require.NoError(t, err)
	assert.ErrorIs(t, s.BindVolume(st.Density, buf), sim.ErrSizeMismatch)
	assert.ErrorIs(t, s.BindVolume(material.TextureID(999), buf), ErrMissingReference)
}

func TestVolumetricOffSkipsUpload(t *testing.T) {
	dev, st, s := newDefaultScene(t)
	buf, err := sim.NewBuffer(4, 8, 4)
	require.NoError(t, err)
	require.NoError(t, s.BindVolume(st.Density, buf))

	s.SetVolumetric(false)
	dev.Reset()
	s.RunFrame(camera.New(mgl32.Vec3{-10, 5, 0}))
	assert.NotContains(t, dev.Ops(), "UploadTexture3D")
	assert.Empty(t, dev.DrawsFor(shader.Smoke))
}

func TestSceneClearedBeforePasses(t *testing.T) {
	dev, _, s := newDefaultScene(t)
	dev.Reset()
	s.RunFrame(camera.New(mgl32.Vec3{-10, 5, 0}))

	ops := dev.Ops()
	clear, draw := -1, -1
	for i, op := range ops {
		if op == "Clear" && clear < 0 {
			clear = i
		}
		if op == "Draw" && draw < 0 {
			draw = i
		}
	}
	require.GreaterOrEqual(t, clear, 0)
	require.GreaterOrEqual(t, draw, 0)
	assert.Less(t, clear, draw)
}

type recordingPresenter struct {
	got []*gpu.Target
}

func (p *recordingPresenter) Present(t *gpu.Target) { p.got = append(p.got, t) }

func TestPresenter(t *testing.T) {
	_, _, s := newDefaultScene(t)
	p := &recordingPresenter{}
	s.SetPresenter(p)
	s.RunFrame(camera.New(mgl32.Vec3{-10, 5, 0}))
	require.Len(t, p.got, 1)
	assert.Same(t, s.SceneTarget(), p.got[0])
}

func TestPassTogglesReachFrame(t *testing.T) {
	dev, _, s := newDefaultScene(t)
	cam := camera.New(mgl32.Vec3{-10, 5, 0})

	s.SetShowBounds(true)
	s.SetDebugView(pass.DebugOff)
	dev.Reset()
	s.RunFrame(cam)
	assert.NotEmpty(t, dev.DrawsFor(shader.BBox))
	assert.Empty(t, dev.DrawsFor(shader.Debug))

	s.SetShowBounds(false)
	s.SetDebugView(pass.DebugShadowMap)
	dev.Reset()
	s.RunFrame(cam)
	assert.Empty(t, dev.DrawsFor(shader.BBox))
	assert.Len(t, dev.DrawsFor(shader.Debug), 1)
}

func TestFitShadow(t *testing.T) {
	_, _, s := newDefaultScene(t)
	fixed := s.lightViewProj()
	s.SetFitShadow(true)
	fitted := s.lightViewProj()
	assert.NotEqual(t, fixed, fitted)
}

func TestMoveLight(t *testing.T) {
	_, st, s := newDefaultScene(t)
	pos := mgl32.Vec3{1, 20, 3}
	s.MoveLight(pos)
	l, ok := s.Lights().Main()
	require.True(t, ok)
	assert.Equal(t, pos, l.Position)
	assert.Equal(t, pos, st.Content.Item(ItemLight).Position)
}

func TestMoveLightOntoFocalPoint(t *testing.T) {
	_, st, s := newDefaultScene(t)
	before, ok := s.Lights().Main()
	require.True(t, ok)

	s.MoveLight(before.FocalPoint)
	l, _ := s.Lights().Main()
	assert.Equal(t, before.Position, l.Position)
	assert.Equal(t, before.Position, st.Content.Item(ItemLight).Position)

	for _, fit := range []bool{false, true} {
		s.SetFitShadow(fit)
		assertFinite(t, s.lightViewProj())
	}
}

func assertFinite(t *testing.T, m mgl32.Mat4) {
	t.Helper()
	for i, v := range m {
		require.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0), "element %d is %v", i, v)
	}
}

func TestNewCleansUpOnFailure(t *testing.T) {
	for _, failing := range []string{"scene", "debug", "shadow"} {
		t.Run(failing, func(t *testing.T) {
			dev := gputest.New()
			st, err := Default(dev, testConfig(t))
			require.NoError(t, err)
			defer st.Resources.Release(dev)

			dev.FailTarget[failing] = true
			_, err = New(dev, testOptions(), st.Resources, st.Content, st.Lights)
			require.Error(t, err)
			_, _, _, targets := dev.Live()
			assert.Zero(t, targets)
		})
	}
}

func TestCloseReleasesTargets(t *testing.T) {
	dev := gputest.New()
	st, err := Default(dev, testConfig(t))
	require.NoError(t, err)
	s, err := New(dev, testOptions(), st.Resources, st.Content, st.Lights)
	require.NoError(t, err)

	s.Close()
	st.Resources.Release(dev)
	meshes, textures, programs, targets := dev.Live()
	assert.Zero(t, meshes)
	assert.Zero(t, textures)
	assert.Zero(t, programs)
	assert.Zero(t, targets)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Render.DebugView = "shadow"
	cfg.Render.ShowBoundingBoxes = true
	o, err := OptionsFromConfig(cfg.Render)
	require.NoError(t, err)
	assert.Equal(t, pass.DebugShadowMap, o.DebugView)
	assert.True(t, o.ShowBounds)
	assert.Equal(t, cfg.Render.SceneWidth, o.SceneWidth)

	cfg.Render.DebugView = "bogus"
	_, err = OptionsFromConfig(cfg.Render)
	assert.Error(t, err)
}
