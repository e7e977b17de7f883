package pass

import (
	"github.com/Faultbox/mantaview/internal/engine/gpu"
	"github.com/Faultbox/mantaview/internal/engine/shader"
)

// Pass draws one category of items with one program. The pipeline binds
// the program before Render; Render returns the number of draws issued.
type Pass interface {
	Name() string
	Program() string
	Render(dev gpu.Device, f *Frame, items *Items) int
}

// Texture units shared by the passes and their shaders.
const (
	unitDiffuse = 0
	unitNormal  = 1
	unitShadow  = 2

	unitDensity    = 0
	unitSceneDepth = 1
)

// ShadowPass renders every opaque item, culled or not, into the shadow map
// from the main light.
type ShadowPass struct{}

func (ShadowPass) Name() string    { return "shadow" }
func (ShadowPass) Program() string { return shader.Shadow }

func (ShadowPass) Render(dev gpu.Device, f *Frame, items *Items) int {
	if !f.Shadow.Valid() {
		return 0
	}
	f.Shadow.Bind(dev)
	dev.SetMat4("lightProjView", f.LightViewProj)

	n := 0
	for _, it := range items.Opaque {
		if !it.Drawable() {
			continue
		}
		dev.SetMat4("model", it.World())
		draw(dev, it)
		n++
	}
	return n
}

// OpaquePass shades visible opaque items into the scene target.
type OpaquePass struct{}

func (OpaquePass) Name() string    { return "opaque" }
func (OpaquePass) Program() string { return shader.Opaque }

func (OpaquePass) Render(dev gpu.Device, f *Frame, items *Items) int {
	dev.BindTarget(f.Scene)
	dev.SetState(gpu.DefaultState())

	dev.SetMat4("view", f.View)
	dev.SetMat4("proj", f.Proj)
	dev.SetVec3("eyePos", f.Eye)
	dev.SetVec4("ambientLight", f.Ambient)
	dev.SetMat4("lightProjView", f.LightViewProj)
	if f.Lights != nil {
		f.Lights.Apply(dev)
	}
	dev.SetInt("diffuseMap", unitDiffuse)
	dev.SetInt("normalMap", unitNormal)
	dev.SetInt("shadowMap", unitShadow)
	dev.BindTexture(unitShadow, gpu.Texture2D, f.shadowTexture())

	n := 0
	for _, it := range items.Opaque {
		if !visible(it) {
			continue
		}
		m := it.Material
		dev.BindTexture(unitDiffuse, gpu.Texture2D, f.texture(m.Diffuse))
		dev.BindTexture(unitNormal, gpu.Texture2D, f.texture(m.Normal))
		dev.SetMat4("model", it.World())
		dev.SetFloat("textureScale", it.TextureScale)
		dev.SetVec3("material.albedo", m.Albedo)
		dev.SetFloat("material.metallic", m.Metallic)
		dev.SetFloat("material.roughness", m.Roughness)
		dev.SetFloat("material.ao", m.AO)
		dev.SetFloat("material.useDiffuseMap", boolf(m.UseDiffuse()))
		dev.SetFloat("material.useNormalMap", boolf(m.UseNormal()))
		draw(dev, it)
		n++
	}
	return n
}

// LightPass draws a small emissive marker at each visible light item.
type LightPass struct{}

func (LightPass) Name() string    { return "light" }
func (LightPass) Program() string { return shader.Light }

func (LightPass) Render(dev gpu.Device, f *Frame, items *Items) int {
	dev.BindTarget(f.Scene)
	dev.SetState(gpu.DefaultState())
	dev.SetMat4("view", f.View)
	dev.SetMat4("proj", f.Proj)

	n := 0
	for _, it := range items.Lights {
		if !visible(it) {
			continue
		}
		dev.SetMat4("model", it.World())
		dev.SetVec3("emissive", it.Material.Emissive)
		draw(dev, it)
		n++
	}
	return n
}

// SkyPass draws the cube map behind everything. The sky sits on the far
// plane, so it needs LEQUAL; LESS is restored afterwards.
type SkyPass struct{}

func (SkyPass) Name() string    { return "sky" }
func (SkyPass) Program() string { return shader.Sky }

func (SkyPass) Render(dev gpu.Device, f *Frame, items *Items) int {
	sky := items.Sky
	if !visible(sky) {
		return 0
	}
	cube := f.texture(sky.Material.Density)
	if !cube.Valid() {
		return 0
	}

	dev.BindTarget(f.Scene)
	s := gpu.DefaultState()
	s.DepthFunc = gpu.DepthLessEqual
	dev.SetState(s)
	defer dev.SetState(gpu.DefaultState())

	dev.SetInt("skybox", 0)
	dev.BindTexture(0, gpu.TextureCube, cube)
	// Rotation only: the sky never moves with the eye.
	dev.SetMat4("view", f.View.Mat3().Mat4())
	dev.SetMat4("proj", f.Proj)
	draw(dev, sky)
	return 1
}

// VolumetricPass ray-marches each visible volumetric item's density
// texture, blended over the scene and clipped by the scene depth.
type VolumetricPass struct{}

func (VolumetricPass) Name() string    { return "volumetric" }
func (VolumetricPass) Program() string { return shader.Smoke }

func (VolumetricPass) Render(dev gpu.Device, f *Frame, items *Items) int {
	if !f.Volumetric {
		return 0
	}
	dev.BindTarget(f.Scene)
	s := gpu.DefaultState()
	s.DepthTest = false
	s.DepthWrite = false
	s.Blend = gpu.BlendAlpha
	dev.SetState(s)
	defer dev.SetState(gpu.DefaultState())

	dev.SetMat4("view", f.View)
	dev.SetMat4("proj", f.Proj)
	dev.SetVec3("eyePos", f.Eye)
	dev.SetVec3("lookDir", f.LookDir)
	dev.SetFloat("nearPlane", f.Near)
	dev.SetFloat("farPlane", f.Far)
	if f.Scene.Valid() {
		dev.SetFloat("xResolution", float32(f.Scene.Width))
		dev.SetFloat("yResolution", float32(f.Scene.Height))
	}
	if f.Lights != nil {
		if l, ok := f.Lights.Main(); ok {
			dev.SetVec3("light.pos", l.Position)
			dev.SetVec3("light.strength", l.Strength)
			dev.SetVec3("light.dir", l.Direction())
		}
	}
	dev.SetInt("densityTexture", unitDensity)
	dev.SetInt("sceneDepthTexture", unitSceneDepth)

	n := 0
	for _, it := range items.Volumetric {
		if !visible(it) {
			continue
		}
		dev.BindTexture(unitDensity, gpu.Texture3D, f.texture(it.Material.Density))
		dev.BindTexture(unitSceneDepth, gpu.Texture2D, f.sceneDepth())
		b := it.Geometry.Bounds
		dev.SetMat4("model", it.World())
		dev.SetVec3("bbMin", b.Min)
		dev.SetVec3("bbMax", b.Max)
		draw(dev, it)
		n++
	}
	return n
}

// BoundsPass outlines the bounding box of every visible item.
type BoundsPass struct{}

func (BoundsPass) Name() string    { return "bounds" }
func (BoundsPass) Program() string { return shader.BBox }

func (BoundsPass) Render(dev gpu.Device, f *Frame, items *Items) int {
	if !f.ShowBounds {
		return 0
	}
	dev.BindTarget(f.Scene)
	dev.SetState(gpu.DefaultState())
	dev.SetMat4("view", f.View)
	dev.SetMat4("proj", f.Proj)
	dev.SetVec4("color", f.BoundsColor)

	n := 0
	for _, it := range items.Overlay {
		if it == nil || it.Culled() || !it.Geometry.Valid() {
			continue
		}
		dev.SetMat4("model", it.World())
		draw(dev, it)
		n++
	}
	return n
}

// DebugPass renders a full-screen quad into the debug target showing the
// scene depth or the shadow map.
type DebugPass struct{}

func (DebugPass) Name() string    { return "debug" }
func (DebugPass) Program() string { return shader.Debug }

func (DebugPass) Render(dev gpu.Device, f *Frame, items *Items) int {
	if f.DebugView == DebugOff || !f.Debug.Valid() {
		return 0
	}
	quad := items.DebugQuad
	if quad == nil || !quad.Geometry.Valid() {
		return 0
	}

	dev.BindTarget(f.Debug)
	dev.Clear(gpu.ClearOptions{Color: [4]float32{0, 0, 0, 1}, ClearColor: true, ClearDepth: true})
	s := gpu.DefaultState()
	s.DepthTest = false
	s.DepthWrite = false
	dev.SetState(s)
	defer dev.SetState(gpu.DefaultState())

	src, linear := f.sceneDepth(), int32(1)
	if f.DebugView == DebugShadowMap {
		src, linear = f.shadowTexture(), 0
	}
	dev.SetInt("depthMap", 0)
	dev.SetInt("linearize", linear)
	dev.SetFloat("nearPlane", f.Near)
	dev.SetFloat("farPlane", f.Far)
	dev.BindTexture(0, gpu.Texture2D, src)
	draw(dev, quad)
	return 1
}

func boolf(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
