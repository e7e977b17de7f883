// Package picking provides ray casting and object picking utilities.
package picking

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/mantaview/internal/engine/geometry"
	"github.com/Faultbox/mantaview/internal/engine/item"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3 // Normalized direction
}

// ScreenToRay converts normalized image coordinates to a world-space ray.
// u and v run from 0 to 1 with v = 0 at the top of the image.
// invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(u, v float32, invViewProj mgl32.Mat4) Ray {
	ndcX := 2*u - 1
	ndcY := 1 - 2*v // Flip Y

	near := unproject(invViewProj, mgl32.Vec4{ndcX, ndcY, -1, 1})
	far := unproject(invViewProj, mgl32.Vec4{ndcX, ndcY, 1, 1})

	dir := far.Sub(near)
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}
	return Ray{Origin: near, Direction: dir}
}

func unproject(inv mgl32.Mat4, p mgl32.Vec4) mgl32.Vec3 {
	w := inv.Mul4x1(p)
	if w[3] != 0 {
		return w.Vec3().Mul(1 / w[3])
	}
	return w.Vec3()
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectPlaneY intersects a ray with a horizontal plane at the given Y level.
// Returns the intersection point (X, Z) and whether the intersection is valid.
func (r Ray) IntersectPlaneY(planeY float32) (x, z float32, ok bool) {
	if math32.Abs(r.Direction[1]) < 0.001 {
		return 0, 0, false // Ray parallel to plane
	}

	t := (planeY - r.Origin[1]) / r.Direction[1]
	if t < 0 {
		return 0, 0, false // Intersection behind ray origin
	}

	p := r.At(t)
	return p[0], p[2], true
}

// IntersectBounds tests the ray against an axis-aligned box with the slab
// method. It returns the entry distance, or the exit distance when the ray
// starts inside the box.
func (r Ray) IntersectBounds(box geometry.Bounds) (t float32, hit bool) {
	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)

	for k := 0; k < 3; k++ {
		if r.Direction[k] == 0 {
			if r.Origin[k] < box.Min[k] || r.Origin[k] > box.Max[k] {
				return 0, false
			}
			continue
		}
		t1 := (box.Min[k] - r.Origin[k]) / r.Direction[k]
		t2 := (box.Max[k] - r.Origin[k]) / r.Direction[k]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// Pickable reports whether an item can be selected by clicking it. The
// sky, the debug quad and overlay boxes cannot.
func Pickable(it *item.RenderItem) bool {
	switch it.Layer {
	case item.Opaque, item.Light, item.Volumetric:
		return it.Geometry != nil
	}
	return false
}

// Pick returns the nearest visible pickable item whose world bounds the
// ray hits, or nil.
func Pick(r Ray, items []*item.RenderItem) *item.RenderItem {
	var best *item.RenderItem
	bestT := float32(math32.MaxFloat32)
	for _, it := range items {
		if !Pickable(it) || it.Culled() {
			continue
		}
		if t, ok := r.IntersectBounds(it.WorldBounds()); ok && t < bestT {
			best, bestT = it, t
		}
	}
	return best
}
