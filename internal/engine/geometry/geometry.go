// Package geometry holds mesh data, its bounding box and the GPU buffers
// built from it. Geometry is immutable once built; GPU buffers are created
// once by Upload and never rewritten.
package geometry

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/mantaview/internal/engine/gpu"
)

// ErrIndexOutOfRange is returned when an index does not address a vertex.
var ErrIndexOutOfRange = errors.New("index out of range")

// Vertex is one interleaved vertex in gpu.StandardLayout order.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Tangent  mgl32.Vec3
	TexCoord mgl32.Vec2
}

// Geometry is a named vertex/index set with a derived bounding box.
type Geometry struct {
	Name      string
	Vertices  []Vertex
	Indices   []uint32
	Primitive gpu.Primitive
	Bounds    Bounds

	mesh gpu.Mesh
}

// New validates the index set and computes bounds. An empty index slice
// draws the vertices in order.
func New(name string, vertices []Vertex, indices []uint32) (*Geometry, error) {
	return build(name, vertices, indices, gpu.Triangles)
}

// NewLines builds an unindexed line list from endpoint pairs.
func NewLines(name string, points []mgl32.Vec3) (*Geometry, error) {
	if len(points)%2 != 0 {
		return nil, fmt.Errorf("geometry %s: line list needs an even number of points, got %d", name, len(points))
	}
	vertices := make([]Vertex, len(points))
	for i, p := range points {
		vertices[i] = Vertex{Position: p}
	}
	return build(name, vertices, nil, gpu.Lines)
}

func build(name string, vertices []Vertex, indices []uint32, prim gpu.Primitive) (*Geometry, error) {
	if len(vertices) == 0 {
		return nil, fmt.Errorf("geometry %s: no vertices", name)
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("geometry %s: index %d = %d with %d vertices: %w",
				name, i, idx, len(vertices), ErrIndexOutOfRange)
		}
	}

	points := make([]mgl32.Vec3, len(vertices))
	for i, v := range vertices {
		points[i] = v.Position
	}

	return &Geometry{
		Name:      name,
		Vertices:  vertices,
		Indices:   indices,
		Primitive: prim,
		Bounds:    BoundsFromPoints(points),
	}, nil
}

// Mesh returns the GPU buffer handle, zero before Upload or after a failed one.
func (g *Geometry) Mesh() gpu.Mesh {
	if g == nil {
		return 0
	}
	return g.mesh
}

// Valid reports whether the geometry has live GPU buffers.
func (g *Geometry) Valid() bool {
	return g.Mesh().Valid()
}

// DrawCount is the number of indices, or vertices when unindexed.
func (g *Geometry) DrawCount() int {
	if len(g.Indices) > 0 {
		return len(g.Indices)
	}
	return len(g.Vertices)
}

// Upload creates the GPU buffers. Calling it again is a no-op.
func (g *Geometry) Upload(dev gpu.Device) error {
	if g.mesh.Valid() {
		return nil
	}
	mesh, err := dev.CreateMesh(Interleave(g.Vertices), gpu.StandardLayout, g.Indices)
	if err != nil {
		return fmt.Errorf("uploading geometry %s: %w", g.Name, err)
	}
	g.mesh = mesh
	return nil
}

// Release frees the GPU buffers. The CPU-side data stays intact.
func (g *Geometry) Release(dev gpu.Device) {
	if g.mesh.Valid() {
		dev.DeleteMesh(g.mesh)
		g.mesh = 0
	}
}

// Interleave flattens vertices into gpu.StandardLayout.
func Interleave(vertices []Vertex) []float32 {
	out := make([]float32, 0, len(vertices)*gpu.StandardLayout.Stride())
	for _, v := range vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.Tangent[0], v.Tangent[1], v.Tangent[2],
			v.TexCoord[0], v.TexCoord[1],
		)
	}
	return out
}

// ComputeTangents fills per-vertex tangents from texture coordinate
// gradients, accumulated over every triangle that uses the vertex.
func ComputeTangents(vertices []Vertex, indices []uint32) {
	acc := make([]mgl32.Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		v0, v1, v2 := vertices[i0], vertices[i1], vertices[i2]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		du1, dv1 := v1.TexCoord[0]-v0.TexCoord[0], v1.TexCoord[1]-v0.TexCoord[1]
		du2, dv2 := v2.TexCoord[0]-v0.TexCoord[0], v2.TexCoord[1]-v0.TexCoord[1]

		det := du1*dv2 - du2*dv1
		if det == 0 {
			continue
		}
		t := e1.Mul(dv2).Sub(e2.Mul(dv1)).Mul(1 / det)
		acc[i0] = acc[i0].Add(t)
		acc[i1] = acc[i1].Add(t)
		acc[i2] = acc[i2].Add(t)
	}

	for i := range vertices {
		n := vertices[i].Normal
		t := acc[i]
		// Gram-Schmidt against the normal
		t = t.Sub(n.Mul(n.Dot(t)))
		if t.Len() < 1e-6 {
			t = fallbackTangent(n)
		}
		vertices[i].Tangent = t.Normalize()
	}
}

func fallbackTangent(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if math32.Abs(n[0]) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	t := axis.Sub(n.Mul(n.Dot(axis)))
	if t.Len() < 1e-6 {
		return axis
	}
	return t
}
