// Package frustum extracts view frustum planes from a view-projection
// matrix and classifies bounding volumes against them.
package frustum

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/mantaview/internal/engine/geometry"
)

// Intersection is the result of a containment test.
type Intersection int

const (
	Disjoint Intersection = iota
	Intersect
	Contained
)

func (i Intersection) String() string {
	switch i {
	case Disjoint:
		return "disjoint"
	case Intersect:
		return "intersect"
	case Contained:
		return "contained"
	}
	return "unknown"
}

// Visible reports whether anything of the volume may be on screen.
func (i Intersection) Visible() bool { return i != Disjoint }

// PlaneIndex names the six planes.
type PlaneIndex int

const (
	LeftPlane PlaneIndex = iota
	RightPlane
	BottomPlane
	TopPlane
	NearPlane
	FarPlane
)

var planeNames = [6]string{"left", "right", "bottom", "top", "near", "far"}

func (p PlaneIndex) String() string {
	if p < 0 || int(p) >= len(planeNames) {
		return "unknown"
	}
	return planeNames[p]
}

// Plane is n·p + D = 0 with a unit inward normal N.
type Plane struct {
	N mgl32.Vec3
	D float32
}

// Distance returns the signed distance of p, positive inside.
func (pl Plane) Distance(p mgl32.Vec3) float32 {
	return pl.N.Dot(p) + pl.D
}

// Frustum holds six inward-facing planes. A frustum extracted from a
// singular matrix is degenerate and reports everything as intersecting.
type Frustum struct {
	planes     [6]Plane
	degenerate bool
}

// ExtractFromMatrix builds the frustum of m (Gribb/Hartmann). With m a
// view-projection matrix the planes are in world space, with m a
// model-view-projection matrix they are in that model's local space.
func ExtractFromMatrix(m mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)
	raw := [6]mgl32.Vec4{
		LeftPlane:   r3.Add(r0),
		RightPlane:  r3.Sub(r0),
		BottomPlane: r3.Add(r1),
		TopPlane:    r3.Sub(r1),
		NearPlane:   r3.Add(r2),
		FarPlane:    r3.Sub(r2),
	}

	var f Frustum
	for i, p := range raw {
		n := p.Vec3()
		l := n.Len()
		if l == 0 || math32.IsNaN(l) || math32.IsInf(l, 0) {
			f.degenerate = true
			continue
		}
		f.planes[i] = Plane{N: n.Mul(1 / l), D: p.W() / l}
	}
	return f
}

// Planes returns the six planes in PlaneIndex order.
func (f Frustum) Planes() [6]Plane { return f.planes }

// Plane returns one plane.
func (f Frustum) Plane(i PlaneIndex) Plane { return f.planes[i] }

// Degenerate reports whether extraction hit a zero-length plane normal.
func (f Frustum) Degenerate() bool { return f.degenerate }

// ClassifySphere tests a sphere. Any plane with the sphere fully outside
// makes it disjoint; fully inside all six makes it contained.
func (f Frustum) ClassifySphere(center mgl32.Vec3, radius float32) Intersection {
	if f.degenerate {
		return Intersect
	}
	inside := 0
	for _, pl := range f.planes {
		d := pl.Distance(center)
		switch {
		case d < -radius:
			return Disjoint
		case d > radius:
			inside++
		}
	}
	if inside == len(f.planes) {
		return Contained
	}
	return Intersect
}

// ClassifyBox tests the circumscribed sphere of box after translating it by
// originOffset. Narrow boxes are over-reported as visible, never culled in
// error.
func (f Frustum) ClassifyBox(box geometry.Bounds, originOffset mgl32.Vec3) Intersection {
	return f.ClassifySphere(box.Center.Add(originOffset), box.Radius())
}
