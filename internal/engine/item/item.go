// Package item defines the render item: one placed instance of a geometry
// with a material, a transform and per-frame visibility.
package item

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/mantaview/internal/engine/geometry"
	"github.com/Faultbox/mantaview/internal/engine/material"
)

// Layer selects which pass draws an item.
type Layer int

const (
	Opaque Layer = iota
	Light
	Sky
	Volumetric
	Overlay
	DebugQuad
)

var layerNames = [...]string{"opaque", "light", "sky", "volumetric", "overlay", "debug"}

func (l Layer) String() string {
	if l < 0 || int(l) >= len(layerNames) {
		return "unknown"
	}
	return layerNames[l]
}

// Culled layers take part in frustum culling. The sky and the debug quad
// are drawn regardless of the camera.
func (l Layer) Culled() bool {
	return l == Opaque || l == Light || l == Volumetric || l == Overlay
}

// NeedsMaterial reports whether items of the layer must reference a
// material. Overlays and the debug quad are drawn without one.
func (l Layer) NeedsMaterial() bool {
	return l != Overlay && l != DebugQuad
}

// RenderItem is a placed geometry. Geometry and Material are borrowed from
// registries that outlive the item.
type RenderItem struct {
	Name         string
	Position     mgl32.Vec3
	Scale        mgl32.Vec3
	TextureScale float32
	Layer        Layer

	Geometry *geometry.Geometry
	Material *material.Material

	// Source is the item an overlay box outlines.
	Source *RenderItem

	world  mgl32.Mat4
	culled bool
}

// New returns an item at position with unit scale and texture scale.
func New(name string, layer Layer, geo *geometry.Geometry, mat *material.Material, position mgl32.Vec3) RenderItem {
	it := RenderItem{
		Name:         name,
		Position:     position,
		Scale:        mgl32.Vec3{1, 1, 1},
		TextureScale: 1,
		Layer:        layer,
		Geometry:     geo,
		Material:     mat,
	}
	it.UpdateWorld()
	return it
}

// UpdateWorld recomputes World from Position and Scale alone, so calling it
// twice yields the same matrix.
func (it *RenderItem) UpdateWorld() {
	it.world = mgl32.Translate3D(it.Position[0], it.Position[1], it.Position[2]).
		Mul4(mgl32.Scale3D(it.Scale[0], it.Scale[1], it.Scale[2]))
}

// World returns the matrix computed by the last UpdateWorld.
func (it *RenderItem) World() mgl32.Mat4 { return it.world }

// LocalBounds is the geometry's box with Scale applied, untranslated.
func (it *RenderItem) LocalBounds() geometry.Bounds {
	if it.Geometry == nil {
		return geometry.Bounds{}
	}
	return it.Geometry.Bounds.Scaled(it.Scale)
}

// WorldBounds is LocalBounds moved to Position.
func (it *RenderItem) WorldBounds() geometry.Bounds {
	return it.LocalBounds().Translated(it.Position)
}

// Culled reports whether the last culling pass rejected the item.
func (it *RenderItem) Culled() bool { return it.culled }

// SetCulled is written by the frame orchestrator only.
func (it *RenderItem) SetCulled(c bool) { it.culled = c }

// Drawable reports whether the item has uploaded geometry and a material.
func (it *RenderItem) Drawable() bool {
	return it.Geometry.Valid() && it.Material != nil
}

// FollowSource moves an overlay box onto its source item's world bounds
// and copies its visibility.
func (it *RenderItem) FollowSource() {
	if it.Source == nil || it.Source.Geometry == nil {
		return
	}
	src := it.Source
	b := src.Geometry.Bounds
	it.Position = src.Position.Add(mgl32.Vec3{
		b.Center[0] * src.Scale[0], b.Center[1] * src.Scale[1], b.Center[2] * src.Scale[2],
	})
	size := b.Size()
	it.Scale = mgl32.Vec3{size[0] * src.Scale[0], size[1] * src.Scale[1], size[2] * src.Scale[2]}
	it.culled = src.culled
	it.UpdateWorld()
}
