// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/mantaview/internal/engine/geometry"
)

// WireBoxName is the geometry name of the unit wireframe cube.
const WireBoxName = "wirebox"

// WireBoxVertexCount is the number of line endpoints in a box (12 edges x 2).
const WireBoxVertexCount = 24

// WireBoxPoints returns the line endpoints of the 12 edges of the box
// spanning min..max.
func WireBoxPoints(min, max mgl32.Vec3) []mgl32.Vec3 {
	c := func(x, y, z bool) mgl32.Vec3 {
		p := min
		if x {
			p[0] = max[0]
		}
		if y {
			p[1] = max[1]
		}
		if z {
			p[2] = max[2]
		}
		return p
	}
	return []mgl32.Vec3{
		// Bottom face
		c(false, false, false), c(true, false, false),
		c(true, false, false), c(true, false, true),
		c(true, false, true), c(false, false, true),
		c(false, false, true), c(false, false, false),
		// Top face
		c(false, true, false), c(true, true, false),
		c(true, true, false), c(true, true, true),
		c(true, true, true), c(false, true, true),
		c(false, true, true), c(false, true, false),
		// Vertical edges
		c(false, false, false), c(false, true, false),
		c(true, false, false), c(true, true, false),
		c(true, false, true), c(true, true, true),
		c(false, false, true), c(false, true, true),
	}
}

// WireBox returns a unit wireframe cube centered on the origin. Overlay
// items scale it to their source's bounds.
func WireBox() (*geometry.Geometry, error) {
	h := float32(0.5)
	return geometry.NewLines(WireBoxName, WireBoxPoints(mgl32.Vec3{-h, -h, -h}, mgl32.Vec3{h, h, h}))
}
