package geometry

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Quad returns a screen-space quad covering NDC [-1,1] at z=0, used to
// present offscreen targets.
func Quad() *Geometry {
	vertices := []Vertex{
		{Position: mgl32.Vec3{-1, -1, 0}, Normal: mgl32.Vec3{0, 0, 1}, Tangent: mgl32.Vec3{1, 0, 0}, TexCoord: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{1, -1, 0}, Normal: mgl32.Vec3{0, 0, 1}, Tangent: mgl32.Vec3{1, 0, 0}, TexCoord: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{1, 1, 0}, Normal: mgl32.Vec3{0, 0, 1}, Tangent: mgl32.Vec3{1, 0, 0}, TexCoord: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec3{-1, 1, 0}, Normal: mgl32.Vec3{0, 0, 1}, Tangent: mgl32.Vec3{1, 0, 0}, TexCoord: mgl32.Vec2{0, 1}},
	}
	g, _ := New("quad", vertices, []uint32{0, 1, 2, 0, 2, 3})
	return g
}

// boxFace is one side of a box: outward normal n and in-plane axes u, v
// with u x v = n, so corners listed -u-v, +u-v, +u+v, -u+v wind CCW.
type boxFace struct {
	n, u, v mgl32.Vec3
}

var boxFaces = [6]boxFace{
	{n: mgl32.Vec3{1, 0, 0}, u: mgl32.Vec3{0, 0, -1}, v: mgl32.Vec3{0, 1, 0}},
	{n: mgl32.Vec3{-1, 0, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{0, 1, 0}},
	{n: mgl32.Vec3{0, 1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, -1}},
	{n: mgl32.Vec3{0, -1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, 1}},
	{n: mgl32.Vec3{0, 0, 1}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
	{n: mgl32.Vec3{0, 0, -1}, u: mgl32.Vec3{-1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
}

// Box returns a box centered at the origin with 24 vertices, so every face
// has its own normal and texture coordinates.
func Box(width, height, depth float32) *Geometry {
	half := mgl32.Vec3{width / 2, height / 2, depth / 2}
	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)

	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	uvs := [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	for _, f := range boxFaces {
		base := uint32(len(vertices))
		for i, c := range corners {
			p := mul(f.n, half).Add(mul(f.u, half).Mul(c[0])).Add(mul(f.v, half).Mul(c[1]))
			vertices = append(vertices, Vertex{
				Position: p,
				Normal:   f.n,
				Tangent:  f.u,
				TexCoord: uvs[i],
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	g, _ := New(fmt.Sprintf("box %gx%gx%g", width, height, depth), vertices, indices)
	return g
}

// Cube is a unit box.
func Cube() *Geometry {
	g := Box(1, 1, 1)
	g.Name = "cube"
	return g
}

// Grid returns a width x depth plane in XZ facing +Y with m rows and n
// columns of vertices. Texture coordinates span [0,1] over the whole grid.
func Grid(width, depth float32, m, n int) (*Geometry, error) {
	if m < 2 || n < 2 {
		return nil, fmt.Errorf("grid needs at least 2x2 vertices, got %dx%d", m, n)
	}

	halfW, halfD := width/2, depth/2
	dx := width / float32(n-1)
	dz := depth / float32(m-1)
	du := 1 / float32(n-1)
	dv := 1 / float32(m-1)

	vertices := make([]Vertex, 0, m*n)
	for i := 0; i < m; i++ {
		z := halfD - float32(i)*dz
		for j := 0; j < n; j++ {
			x := -halfW + float32(j)*dx
			vertices = append(vertices, Vertex{
				Position: mgl32.Vec3{x, 0, z},
				Normal:   mgl32.Vec3{0, 1, 0},
				Tangent:  mgl32.Vec3{1, 0, 0},
				TexCoord: mgl32.Vec2{float32(j) * du, float32(i) * dv},
			})
		}
	}

	indices := make([]uint32, 0, (m-1)*(n-1)*6)
	for i := 0; i < m-1; i++ {
		for j := 0; j < n-1; j++ {
			a := uint32(i*n + j)
			b := uint32((i+1)*n + j)
			indices = append(indices,
				a, a+1, b,
				b, a+1, b+1,
			)
		}
	}

	return New(fmt.Sprintf("grid %dx%d", m, n), vertices, indices)
}

// Sphere returns a UV sphere centered at the origin.
func Sphere(radius float32, slices, stacks int) (*Geometry, error) {
	if slices < 3 || stacks < 2 {
		return nil, fmt.Errorf("sphere needs at least 3 slices and 2 stacks, got %d and %d", slices, stacks)
	}

	vertices := make([]Vertex, 0, (stacks+1)*(slices+1))
	for i := 0; i <= stacks; i++ {
		phi := float32(i) * math32.Pi / float32(stacks)
		sinPhi, cosPhi := math32.Sincos(phi)
		for j := 0; j <= slices; j++ {
			theta := float32(j) * 2 * math32.Pi / float32(slices)
			sinTheta, cosTheta := math32.Sincos(theta)

			normal := mgl32.Vec3{sinPhi * cosTheta, cosPhi, sinPhi * sinTheta}
			tangent := mgl32.Vec3{-sinTheta, 0, cosTheta}
			vertices = append(vertices, Vertex{
				Position: normal.Mul(radius),
				Normal:   normal,
				Tangent:  tangent,
				TexCoord: mgl32.Vec2{float32(j) / float32(slices), float32(i) / float32(stacks)},
			})
		}
	}

	ring := uint32(slices + 1)
	indices := make([]uint32, 0, stacks*slices*6)
	for i := 0; i < stacks; i++ {
		for j := 0; j < slices; j++ {
			a := uint32(i)*ring + uint32(j)
			b := a + ring
			indices = append(indices,
				a, a+1, b,
				a+1, b+1, b,
			)
		}
	}

	return New(fmt.Sprintf("sphere r%g", radius), vertices, indices)
}

func mul(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
