// Package gputest provides an in-memory gpu.Device that records every call,
// for testing passes and the frame orchestrator without a graphics context.
package gputest

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/mantaview/internal/engine/gpu"
)

// ErrInjected is returned by operations a test asked to fail.
var ErrInjected = errors.New("gputest: injected failure")

// Call is one recorded device operation.
type Call struct {
	Op     string
	Detail string
}

// Draw is one recorded draw with the state it was issued under.
type Draw struct {
	Program string
	Target  string
	Mesh    gpu.Mesh
	Count   int
	Prim    gpu.Primitive
	State   gpu.State
	// Textures bound per unit at draw time.
	Textures map[int]gpu.Texture
	// Uniforms set on the program before the draw.
	Uniforms map[string]any
}

// Device records calls and tracks live resources.
type Device struct {
	// FailCompile makes CompileProgram fail for the named programs.
	FailCompile map[string]bool
	// FailUpload makes UploadTexture3D fail.
	FailUpload bool
	// FailTarget makes CreateTarget fail for the named targets.
	FailTarget map[string]bool

	mu       sync.Mutex
	next     uint32
	calls    []Call
	draws    []Draw
	meshes   map[gpu.Mesh]int
	textures map[gpu.Texture]gpu.TextureKind
	volumes  map[gpu.Texture][]float32
	programs map[gpu.Program]string
	targets  map[uint32]*gpu.Target

	program  gpu.Program
	target   *gpu.Target
	state    gpu.State
	bound    map[int]gpu.Texture
	uniforms map[gpu.Program]map[string]any
}

// New returns an empty recording device.
func New() *Device {
	return &Device{
		FailCompile: make(map[string]bool),
		FailTarget:  make(map[string]bool),
		meshes:      make(map[gpu.Mesh]int),
		textures:    make(map[gpu.Texture]gpu.TextureKind),
		volumes:     make(map[gpu.Texture][]float32),
		programs:    make(map[gpu.Program]string),
		targets:     make(map[uint32]*gpu.Target),
		state:       gpu.DefaultState(),
		bound:       make(map[int]gpu.Texture),
		uniforms:    make(map[gpu.Program]map[string]any),
	}
}

func (d *Device) id() uint32 {
	d.next++
	return d.next
}

func (d *Device) record(op, format string, args ...any) {
	d.calls = append(d.calls, Call{Op: op, Detail: fmt.Sprintf(format, args...)})
}

// CreateMesh implements gpu.Device.
func (d *Device) CreateMesh(vertices []float32, layout gpu.Layout, indices []uint32) (gpu.Mesh, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	stride := layout.Stride()
	if stride == 0 || len(vertices)%stride != 0 {
		return 0, fmt.Errorf("vertex data length %d is not a multiple of stride %d", len(vertices), stride)
	}
	m := gpu.Mesh(d.id())
	d.meshes[m] = len(vertices) / stride
	d.record("CreateMesh", "%d vertices %d indices", len(vertices)/stride, len(indices))
	return m, nil
}

// DeleteMesh implements gpu.Device.
func (d *Device) DeleteMesh(m gpu.Mesh) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.meshes, m)
	d.record("DeleteMesh", "%d", m)
}

// CreateTexture2D implements gpu.Device.
func (d *Device) CreateTexture2D(img *image.RGBA, opts gpu.TextureOptions) (gpu.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if img == nil {
		return 0, errors.New("nil image")
	}
	t := gpu.Texture(d.id())
	d.textures[t] = gpu.Texture2D
	d.record("CreateTexture2D", "%dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	return t, nil
}

// CreateTextureCube implements gpu.Device.
func (d *Device) CreateTextureCube(faces [6]*image.RGBA) (gpu.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, f := range faces {
		if f == nil {
			return 0, fmt.Errorf("cube face %d is nil", i)
		}
	}
	t := gpu.Texture(d.id())
	d.textures[t] = gpu.TextureCube
	d.record("CreateTextureCube", "")
	return t, nil
}

// CreateTexture3D implements gpu.Device.
func (d *Device) CreateTexture3D(nx, ny, nz int) (gpu.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := gpu.Texture(d.id())
	d.textures[t] = gpu.Texture3D
	d.volumes[t] = make([]float32, nx*ny*nz)
	d.record("CreateTexture3D", "%dx%dx%d", nx, ny, nz)
	return t, nil
}

// UploadTexture3D implements gpu.Device.
func (d *Device) UploadTexture3D(t gpu.Texture, nx, ny, nz int, data []float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("UploadTexture3D", "%d", t)
	if d.FailUpload {
		return ErrInjected
	}
	vol, ok := d.volumes[t]
	if !ok {
		return gpu.ErrInvalidHandle
	}
	if len(data) != nx*ny*nz || len(vol) != len(data) {
		return fmt.Errorf("upload of %d samples into %d", len(data), len(vol))
	}
	copy(vol, data)
	return nil
}

// DeleteTexture implements gpu.Device.
func (d *Device) DeleteTexture(t gpu.Texture) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.textures, t)
	delete(d.volumes, t)
	d.record("DeleteTexture", "%d", t)
}

// CompileProgram implements gpu.Device.
func (d *Device) CompileProgram(src gpu.ProgramSource) (gpu.Program, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CompileProgram", "%s", src.Name)
	if d.FailCompile[src.Name] {
		return 0, fmt.Errorf("%s: %w", src.Name, ErrInjected)
	}
	if src.Vertex == "" || src.Fragment == "" {
		return 0, fmt.Errorf("%s: empty shader source", src.Name)
	}
	p := gpu.Program(d.id())
	d.programs[p] = src.Name
	return p, nil
}

// DeleteProgram implements gpu.Device.
func (d *Device) DeleteProgram(p gpu.Program) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.programs, p)
	d.record("DeleteProgram", "%d", p)
}

// UseProgram implements gpu.Device.
func (d *Device) UseProgram(p gpu.Program) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.program = p
	if d.uniforms[p] == nil {
		d.uniforms[p] = make(map[string]any)
	}
	d.record("UseProgram", "%s", d.programs[p])
}

func (d *Device) setUniform(name string, v any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if u := d.uniforms[d.program]; u != nil {
		u[name] = v
	}
}

// SetMat4 implements gpu.Device.
func (d *Device) SetMat4(name string, m mgl32.Mat4) { d.setUniform(name, m) }

// SetVec3 implements gpu.Device.
func (d *Device) SetVec3(name string, v mgl32.Vec3) { d.setUniform(name, v) }

// SetVec4 implements gpu.Device.
func (d *Device) SetVec4(name string, v mgl32.Vec4) { d.setUniform(name, v) }

// SetFloat implements gpu.Device.
func (d *Device) SetFloat(name string, f float32) { d.setUniform(name, f) }

// SetInt implements gpu.Device.
func (d *Device) SetInt(name string, i int32) { d.setUniform(name, i) }

// CreateTarget implements gpu.Device.
func (d *Device) CreateTarget(spec gpu.TargetSpec) (*gpu.Target, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CreateTarget", "%s %dx%d", spec.Name, spec.Width, spec.Height)
	if d.FailTarget[spec.Name] {
		return nil, fmt.Errorf("%s: %w", spec.Name, ErrInjected)
	}
	t := &gpu.Target{
		Name:   spec.Name,
		ID:     d.id(),
		Depth:  gpu.Texture(d.id()),
		Width:  spec.Width,
		Height: spec.Height,
	}
	d.textures[t.Depth] = gpu.Texture2D
	if spec.Color {
		t.Color = gpu.Texture(d.id())
		d.textures[t.Color] = gpu.Texture2D
	}
	d.targets[t.ID] = t
	return t, nil
}

// DeleteTarget implements gpu.Device.
func (d *Device) DeleteTarget(t *gpu.Target) {
	if t == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.targets, t.ID)
	delete(d.textures, t.Color)
	delete(d.textures, t.Depth)
	d.record("DeleteTarget", "%s", t.Name)
}

// BindTarget implements gpu.Device.
func (d *Device) BindTarget(t *gpu.Target) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.target = t
	d.record("BindTarget", "%s", targetName(t))
}

// SetViewport implements gpu.Device.
func (d *Device) SetViewport(x, y, width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("SetViewport", "%d %d %d %d", x, y, width, height)
}

// Clear implements gpu.Device.
func (d *Device) Clear(opts gpu.ClearOptions) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Clear", "%s color=%v depth=%v", targetName(d.target), opts.ClearColor, opts.ClearDepth)
}

// SetState implements gpu.Device.
func (d *Device) SetState(s gpu.State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = s
	d.record("SetState", "%+v", s)
}

// BindTexture implements gpu.Device.
func (d *Device) BindTexture(unit int, kind gpu.TextureKind, t gpu.Texture) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bound[unit] = t
	d.record("BindTexture", "%d %s %d", unit, kind, t)
}

// Draw implements gpu.Device.
func (d *Device) Draw(m gpu.Mesh, count int, prim gpu.Primitive) {
	d.mu.Lock()
	defer d.mu.Unlock()
	textures := make(map[int]gpu.Texture, len(d.bound))
	for k, v := range d.bound {
		textures[k] = v
	}
	uniforms := make(map[string]any, len(d.uniforms[d.program]))
	for k, v := range d.uniforms[d.program] {
		uniforms[k] = v
	}
	d.draws = append(d.draws, Draw{
		Program:  d.programs[d.program],
		Target:   targetName(d.target),
		Mesh:     m,
		Count:    count,
		Prim:     prim,
		State:    d.state,
		Textures: textures,
		Uniforms: uniforms,
	})
	d.record("Draw", "%s mesh=%d", d.programs[d.program], m)
}

// ReadPixels implements gpu.Device.
func (d *Device) ReadPixels(t *gpu.Target) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("ReadPixels", "%s", targetName(t))
	if t == nil {
		return nil
	}
	return make([]byte, t.Width*t.Height*4)
}

// Blit implements gpu.Device.
func (d *Device) Blit(src *gpu.Target, width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Blit", "%s %dx%d", targetName(src), width, height)
}

// Calls returns a copy of every recorded call.
func (d *Device) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// Ops returns the operation names of every recorded call.
func (d *Device) Ops() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	ops := make([]string, len(d.calls))
	for i, c := range d.calls {
		ops[i] = c.Op
	}
	return ops
}

// Draws returns a copy of every recorded draw.
func (d *Device) Draws() []Draw {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Draw(nil), d.draws...)
}

// DrawsFor returns the draws issued with the named program.
func (d *Device) DrawsFor(program string) []Draw {
	var out []Draw
	for _, dr := range d.Draws() {
		if dr.Program == program {
			out = append(out, dr)
		}
	}
	return out
}

// Reset forgets recorded calls and draws but keeps live resources.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = nil
	d.draws = nil
}

// Volume returns a copy of the current contents of a 3D texture.
func (d *Device) Volume(t gpu.Texture) []float32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]float32(nil), d.volumes[t]...)
}

// Live returns the number of live meshes, textures, programs and targets.
func (d *Device) Live() (meshes, textures, programs, targets int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.meshes), len(d.textures), len(d.programs), len(d.targets)
}

func targetName(t *gpu.Target) string {
	if t == nil {
		return "default"
	}
	return t.Name
}

var _ gpu.Device = (*Device)(nil)
