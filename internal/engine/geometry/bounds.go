package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Bounds is an axis-aligned bounding box. Center and Extents (half sizes)
// are kept alongside the corners so culling never recomputes them.
type Bounds struct {
	Min     mgl32.Vec3
	Max     mgl32.Vec3
	Center  mgl32.Vec3
	Extents mgl32.Vec3
}

// NewBounds builds a box from two corners in any order.
func NewBounds(a, b mgl32.Vec3) Bounds {
	min := mgl32.Vec3{minf(a[0], b[0]), minf(a[1], b[1]), minf(a[2], b[2])}
	max := mgl32.Vec3{maxf(a[0], b[0]), maxf(a[1], b[1]), maxf(a[2], b[2])}
	return Bounds{
		Min:     min,
		Max:     max,
		Center:  min.Add(max).Mul(0.5),
		Extents: max.Sub(min).Mul(0.5),
	}
}

// BoundsFromPoints returns the tightest box around points. An empty slice
// yields the zero box at the origin.
func BoundsFromPoints(points []mgl32.Vec3) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	min, max := points[0], points[0]
	for _, p := range points[1:] {
		for i := 0; i < 3; i++ {
			min[i] = minf(min[i], p[i])
			max[i] = maxf(max[i], p[i])
		}
	}
	return NewBounds(min, max)
}

// Radius is the length of the half-extent vector, the radius of the
// circumscribed sphere.
func (b Bounds) Radius() float32 {
	return b.Extents.Len()
}

// Size returns the full edge lengths.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Extents.Mul(2)
}

// Scaled scales the box about the origin. Negative factors mirror it.
func (b Bounds) Scaled(s mgl32.Vec3) Bounds {
	return NewBounds(
		mgl32.Vec3{b.Min[0] * s[0], b.Min[1] * s[1], b.Min[2] * s[2]},
		mgl32.Vec3{b.Max[0] * s[0], b.Max[1] * s[1], b.Max[2] * s[2]},
	)
}

// Translated moves the box by offset.
func (b Bounds) Translated(offset mgl32.Vec3) Bounds {
	return Bounds{
		Min:     b.Min.Add(offset),
		Max:     b.Max.Add(offset),
		Center:  b.Center.Add(offset),
		Extents: b.Extents,
	}
}

// Union returns the smallest box containing both.
func (b Bounds) Union(o Bounds) Bounds {
	return NewBounds(
		mgl32.Vec3{minf(b.Min[0], o.Min[0]), minf(b.Min[1], o.Min[1]), minf(b.Min[2], o.Min[2])},
		mgl32.Vec3{maxf(b.Max[0], o.Max[0]), maxf(b.Max[1], o.Max[1]), maxf(b.Max[2], o.Max[2])},
	)
}

// Contains reports whether p lies inside or on the box.
func (b Bounds) Contains(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Corners returns the eight corners, bottom face first.
func (b Bounds) Corners() [8]mgl32.Vec3 {
	lo, hi := b.Min, b.Max
	return [8]mgl32.Vec3{
		{lo[0], lo[1], lo[2]}, {hi[0], lo[1], lo[2]}, {hi[0], lo[1], hi[2]}, {lo[0], lo[1], hi[2]},
		{lo[0], hi[1], lo[2]}, {hi[0], hi[1], lo[2]}, {hi[0], hi[1], hi[2]}, {lo[0], hi[1], hi[2]},
	}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
