// Package pass implements the fixed sequence of render passes that draws
// one frame: shadow, opaque, light markers, sky, volumetric, bounding-box
// overlay and the debug view.
package pass

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/mantaview/internal/engine/gpu"
	"github.com/Faultbox/mantaview/internal/engine/item"
	"github.com/Faultbox/mantaview/internal/engine/lighting"
	"github.com/Faultbox/mantaview/internal/engine/material"
	"github.com/Faultbox/mantaview/internal/engine/shadow"
)

// DebugSource selects what the debug target shows.
type DebugSource int

const (
	DebugSceneDepth DebugSource = iota
	DebugShadowMap
	DebugOff
)

func (d DebugSource) String() string {
	switch d {
	case DebugSceneDepth:
		return "depth"
	case DebugShadowMap:
		return "shadow"
	case DebugOff:
		return "off"
	}
	return "unknown"
}

// ParseDebugSource parses the names produced by String.
func ParseDebugSource(s string) (DebugSource, error) {
	switch strings.ToLower(s) {
	case "depth", "":
		return DebugSceneDepth, nil
	case "shadow":
		return DebugShadowMap, nil
	case "off", "none":
		return DebugOff, nil
	}
	return DebugSceneDepth, fmt.Errorf("unknown debug view %q", s)
}

// Frame is everything a pass reads that is not an item: camera matrices,
// lights and the frame's targets. It is rebuilt every frame.
type Frame struct {
	View     mgl32.Mat4
	Proj     mgl32.Mat4
	ViewProj mgl32.Mat4
	Eye      mgl32.Vec3
	LookDir  mgl32.Vec3
	Near     float32
	Far      float32

	Lights        *lighting.Set
	LightViewProj mgl32.Mat4
	Ambient       mgl32.Vec4

	Scene  *gpu.Target
	Debug  *gpu.Target
	Shadow *shadow.Map

	Textures *material.Textures

	ShowBounds  bool
	BoundsColor mgl32.Vec4
	Volumetric  bool
	DebugView   DebugSource
}

// Items groups render items by the pass that draws them. Slices hold
// pointers into the scene's item storage.
type Items struct {
	Opaque     []*item.RenderItem
	Lights     []*item.RenderItem
	Volumetric []*item.RenderItem
	Overlay    []*item.RenderItem
	Sky        *item.RenderItem
	DebugQuad  *item.RenderItem
}

func (f *Frame) texture(id material.TextureID) gpu.Texture {
	if f.Textures == nil {
		return 0
	}
	return f.Textures.Handle(id)
}

func (f *Frame) shadowTexture() gpu.Texture {
	return f.Shadow.Texture()
}

func (f *Frame) sceneDepth() gpu.Texture {
	if !f.Scene.Valid() {
		return 0
	}
	return f.Scene.Depth
}

// visible reports whether it should be drawn by a camera pass.
func visible(it *item.RenderItem) bool {
	return it != nil && !it.Culled() && it.Drawable()
}

func draw(dev gpu.Device, it *item.RenderItem) {
	dev.Draw(it.Geometry.Mesh(), it.Geometry.DrawCount(), it.Geometry.Primitive)
}
