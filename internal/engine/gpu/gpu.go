// Package gpu defines the device boundary between the render passes and the
// graphics backend. Handles are plain integers; the zero value of every
// handle means "no resource" and is what failed loads degrade to.
package gpu

import (
	"errors"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidHandle is returned when an operation receives a zero handle.
var ErrInvalidHandle = errors.New("gpu: invalid handle")

// Mesh identifies an uploaded vertex/index buffer pair.
type Mesh uint32

// Valid reports whether the mesh refers to a live buffer pair.
func (m Mesh) Valid() bool { return m != 0 }

// Texture identifies a texture object of any kind.
type Texture uint32

// Valid reports whether the texture refers to a live texture.
func (t Texture) Valid() bool { return t != 0 }

// Program identifies a linked shader program.
type Program uint32

// Valid reports whether the program linked successfully.
func (p Program) Valid() bool { return p != 0 }

// Primitive selects how a mesh's vertices are assembled.
type Primitive int

const (
	Triangles Primitive = iota
	Lines
)

// TextureKind selects the binding point for BindTexture.
type TextureKind int

const (
	Texture2D TextureKind = iota
	TextureCube
	Texture3D
)

func (k TextureKind) String() string {
	switch k {
	case TextureCube:
		return "cube"
	case Texture3D:
		return "3d"
	default:
		return "2d"
	}
}

// Layout lists the float component count of each vertex attribute, in
// attribute-location order.
type Layout []int

// StandardLayout is position, normal, tangent and texture coordinate.
var StandardLayout = Layout{3, 3, 3, 2}

// Stride returns the number of floats per vertex.
func (l Layout) Stride() int {
	n := 0
	for _, c := range l {
		n += c
	}
	return n
}

// ProgramSource is the GLSL text of one program.
type ProgramSource struct {
	Name     string
	Vertex   string
	Fragment string
}

// TextureOptions controls sampling of 2D textures.
type TextureOptions struct {
	Repeat  bool
	Mipmaps bool
}

// TargetSpec describes an offscreen render target.
type TargetSpec struct {
	Name   string
	Width  int
	Height int
	// Color adds an RGBA8 color texture.
	Color bool
	// Shadow clamps depth lookups to a border of 1.0, so samples outside
	// the map read as unshadowed.
	Shadow bool
}

// Target is an offscreen surface. Depth is always a sampleable texture so
// later passes can read it (volumetric ray marching, debug view, shadows).
type Target struct {
	Name   string
	ID     uint32
	Color  Texture
	Depth  Texture
	Width  int
	Height int
}

// Valid reports whether the target was created.
func (t *Target) Valid() bool {
	return t != nil && t.ID != 0
}

// DepthFunc is the depth comparison used when depth testing is enabled.
type DepthFunc int

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
	DepthAlways
)

// BlendMode selects color blending.
type BlendMode int

const (
	BlendNone BlendMode = iota
	// BlendAlpha is source-over: src*a + dst*(1-a).
	BlendAlpha
)

// CullMode selects which faces are discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

// State is the fixed-function state a pass draws with.
type State struct {
	DepthTest  bool
	DepthWrite bool
	DepthFunc  DepthFunc
	Blend      BlendMode
	Cull       CullMode
}

// DefaultState is depth-tested opaque drawing with LESS.
func DefaultState() State {
	return State{
		DepthTest:  true,
		DepthWrite: true,
		DepthFunc:  DepthLess,
		Blend:      BlendNone,
		Cull:       CullNone,
	}
}

// ClearOptions selects which attachments of the bound target are cleared.
type ClearOptions struct {
	Color      [4]float32
	ClearColor bool
	ClearDepth bool
}

// Device is everything the renderer needs from a graphics backend. All
// methods must be called from the goroutine that owns the context.
type Device interface {
	CreateMesh(vertices []float32, layout Layout, indices []uint32) (Mesh, error)
	DeleteMesh(m Mesh)

	CreateTexture2D(img *image.RGBA, opts TextureOptions) (Texture, error)
	CreateTextureCube(faces [6]*image.RGBA) (Texture, error)
	CreateTexture3D(nx, ny, nz int) (Texture, error)
	// UploadTexture3D replaces the contents of a 3D texture. On error the
	// previous contents are left untouched.
	UploadTexture3D(t Texture, nx, ny, nz int, data []float32) error
	DeleteTexture(t Texture)

	CompileProgram(src ProgramSource) (Program, error)
	DeleteProgram(p Program)
	UseProgram(p Program)
	SetMat4(name string, m mgl32.Mat4)
	SetVec3(name string, v mgl32.Vec3)
	SetVec4(name string, v mgl32.Vec4)
	SetFloat(name string, f float32)
	SetInt(name string, i int32)

	CreateTarget(spec TargetSpec) (*Target, error)
	DeleteTarget(t *Target)
	// BindTarget makes t the draw surface and sets the viewport to its
	// size. A nil target selects the default surface.
	BindTarget(t *Target)
	SetViewport(x, y, width, height int)
	Clear(opts ClearOptions)
	SetState(s State)

	BindTexture(unit int, kind TextureKind, t Texture)
	// Draw issues count indices (or vertices for unindexed meshes).
	Draw(m Mesh, count int, prim Primitive)

	// ReadPixels returns the RGBA8 color attachment of t, bottom row first.
	ReadPixels(t *Target) []byte
	// Blit copies the color attachment of src to the default surface,
	// scaled to width x height.
	Blit(src *Target, width, height int)
}
