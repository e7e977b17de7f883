package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/mantaview/internal/engine/debug"
	"github.com/Faultbox/mantaview/internal/engine/item"
	"github.com/Faultbox/mantaview/internal/engine/material"
	"github.com/Faultbox/mantaview/internal/engine/pass"
)

// ErrMissingReference is returned by Build when an item names a geometry
// or material that is not registered.
var ErrMissingReference = errors.New("missing reference")

// ItemSpec describes one render item by the names of its resources.
type ItemSpec struct {
	Name     string
	Layer    item.Layer
	Geometry string
	// Material may be empty for items that are drawn without one (the
	// debug quad).
	Material string
	Position mgl32.Vec3
	// Scale defaults to (1,1,1) when zero.
	Scale mgl32.Vec3
	// TextureScale defaults to 1 when zero.
	TextureScale float32
}

// Builder collects item specs and resolves them against Resources once.
type Builder struct {
	specs []ItemSpec
	// Overlay is the geometry outlining each culled item. Empty disables
	// the overlay items entirely.
	Overlay string
}

// NewBuilder returns a builder that creates overlay boxes from the
// wireframe cube.
func NewBuilder() *Builder {
	return &Builder{Overlay: debug.WireBoxName}
}

// Add appends item specs in draw order.
func (b *Builder) Add(specs ...ItemSpec) *Builder {
	b.specs = append(b.specs, specs...)
	return b
}

// Len returns the number of specs added so far.
func (b *Builder) Len() int { return len(b.specs) }

// Content is the resolved item set of a scene. Items are stored by value
// in fixed slices, so the pointers in Groups stay valid for its lifetime.
type Content struct {
	items    []item.RenderItem
	overlays []item.RenderItem
	Groups   pass.Items

	// culled are the items that take part in frustum culling, overlays
	// excluded.
	culled []*item.RenderItem
}

// Build resolves every spec. Any unknown name fails the whole build.
func (b *Builder) Build(res *Resources) (*Content, error) {
	c := &Content{items: make([]item.RenderItem, 0, len(b.specs))}

	for _, spec := range b.specs {
		it, err := resolve(res, spec)
		if err != nil {
			return nil, err
		}
		c.items = append(c.items, it)
	}

	for i := range c.items {
		it := &c.items[i]
		switch it.Layer {
		case item.Opaque:
			c.Groups.Opaque = append(c.Groups.Opaque, it)
		case item.Light:
			c.Groups.Lights = append(c.Groups.Lights, it)
		case item.Volumetric:
			c.Groups.Volumetric = append(c.Groups.Volumetric, it)
		case item.Sky:
			if c.Groups.Sky != nil {
				return nil, fmt.Errorf("item %q: scene already has sky %q", it.Name, c.Groups.Sky.Name)
			}
			c.Groups.Sky = it
		case item.DebugQuad:
			if c.Groups.DebugQuad != nil {
				return nil, fmt.Errorf("item %q: scene already has debug quad %q", it.Name, c.Groups.DebugQuad.Name)
			}
			c.Groups.DebugQuad = it
		case item.Overlay:
			c.Groups.Overlay = append(c.Groups.Overlay, it)
			continue
		}
		if it.Layer.Culled() {
			c.culled = append(c.culled, it)
		}
	}

	if b.Overlay == "" {
		return c, nil
	}
	h, ok := res.Geometries.Lookup(b.Overlay)
	if !ok {
		return nil, fmt.Errorf("overlay geometry %q: %w", b.Overlay, ErrMissingReference)
	}
	wire := res.Geometries.Get(h)
	c.overlays = make([]item.RenderItem, 0, len(c.culled))
	for _, src := range c.culled {
		ov := item.New(src.Name+" bounds", item.Overlay, wire, nil, src.Position)
		ov.Source = src
		c.overlays = append(c.overlays, ov)
	}
	for i := range c.overlays {
		c.overlays[i].FollowSource()
		c.Groups.Overlay = append(c.Groups.Overlay, &c.overlays[i])
	}
	return c, nil
}

func resolve(res *Resources, spec ItemSpec) (item.RenderItem, error) {
	if spec.Name == "" {
		return item.RenderItem{}, errors.New("item with empty name")
	}
	h, ok := res.Geometries.Lookup(spec.Geometry)
	if !ok {
		return item.RenderItem{}, fmt.Errorf("item %q: geometry %q: %w", spec.Name, spec.Geometry, ErrMissingReference)
	}
	var mat *material.Material
	if spec.Material != "" || spec.Layer.NeedsMaterial() {
		id, ok := res.Materials.Lookup(spec.Material)
		if !ok {
			return item.RenderItem{}, fmt.Errorf("item %q: material %q: %w", spec.Name, spec.Material, ErrMissingReference)
		}
		mat = res.Materials.Get(id)
	}

	it := item.New(spec.Name, spec.Layer, res.Geometries.Get(h), mat, spec.Position)
	if spec.Scale != (mgl32.Vec3{}) {
		it.Scale = spec.Scale
	}
	if spec.TextureScale != 0 {
		it.TextureScale = spec.TextureScale
	}
	it.UpdateWorld()
	return it, nil
}

// Items returns every non-overlay item in build order.
func (c *Content) Items() []*item.RenderItem {
	out := make([]*item.RenderItem, len(c.items))
	for i := range c.items {
		out[i] = &c.items[i]
	}
	return out
}

// Item returns the first item with the given name, or nil.
func (c *Content) Item(name string) *item.RenderItem {
	for i := range c.items {
		if c.items[i].Name == name {
			return &c.items[i]
		}
	}
	return nil
}

// Overlays returns the bounding-box items, one per culled item.
func (c *Content) Overlays() []*item.RenderItem {
	out := make([]*item.RenderItem, len(c.overlays))
	for i := range c.overlays {
		out[i] = &c.overlays[i]
	}
	return out
}
