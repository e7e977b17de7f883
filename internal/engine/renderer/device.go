// Package renderer implements gpu.Device on OpenGL 4.1 core.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/mantaview/internal/engine/gpu"
	"github.com/Faultbox/mantaview/internal/logger"
)

type glMesh struct {
	vao, vbo, ebo uint32
	indexed       bool
}

// Device is the OpenGL backend. Every method must be called on the
// goroutine that owns the GL context.
type Device struct {
	log *zap.Logger

	meshes   map[gpu.Mesh]glMesh
	uniforms map[uint32]map[string]int32
	program  uint32

	state      gpu.State
	stateValid bool
	bound      *gpu.Target
	surfaceW   int
	surfaceH   int
}

// New loads the GL function pointers. IMPORTANT: the GL context must be
// current before calling it.
func New(width, height int) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	d := &Device{
		log:      logger.Named("gl"),
		meshes:   make(map[gpu.Mesh]glMesh),
		uniforms: make(map[uint32]map[string]int32),
		surfaceW: width,
		surfaceH: height,
	}
	d.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)

	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)
	d.SetState(gpu.DefaultState())
	return d, nil
}

// Resize records the size of the default surface.
func (d *Device) Resize(width, height int) {
	d.surfaceW, d.surfaceH = width, height
	if d.bound == nil {
		gl.Viewport(0, 0, int32(width), int32(height))
	}
	d.log.Debug("surface resized", zap.Int("width", width), zap.Int("height", height))
}

// Invalidate forgets the cached pipeline state. Call it when other code,
// such as the ImGui renderer, has touched the context since the last frame.
func (d *Device) Invalidate() {
	d.stateValid = false
	gl.Disable(gl.SCISSOR_TEST)
	gl.BlendEquation(gl.FUNC_ADD)
	d.SetState(gpu.DefaultState())
}

// BindTarget implements gpu.Device.
func (d *Device) BindTarget(t *gpu.Target) {
	d.bound = t
	if !t.Valid() {
		d.bound = nil
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(0, 0, int32(d.surfaceW), int32(d.surfaceH))
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.ID)
	gl.Viewport(0, 0, int32(t.Width), int32(t.Height))
}

// SetViewport implements gpu.Device.
func (d *Device) SetViewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

// Clear implements gpu.Device. The depth mask is forced on for the clear
// and restored afterwards, so a pass that disabled depth writes cannot
// block it.
func (d *Device) Clear(opts gpu.ClearOptions) {
	var mask uint32
	if opts.ClearColor {
		c := opts.Color
		gl.ClearColor(c[0], c[1], c[2], c[3])
		mask |= gl.COLOR_BUFFER_BIT
	}
	if opts.ClearDepth {
		gl.DepthMask(true)
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask == 0 {
		return
	}
	gl.Clear(mask)
	if opts.ClearDepth && d.stateValid && !d.state.DepthWrite {
		gl.DepthMask(false)
	}
}

// SetState implements gpu.Device.
func (d *Device) SetState(s gpu.State) {
	if d.stateValid && s == d.state {
		return
	}
	d.state, d.stateValid = s, true

	if s.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(s.DepthWrite)
	switch s.DepthFunc {
	case gpu.DepthLessEqual:
		gl.DepthFunc(gl.LEQUAL)
	case gpu.DepthAlways:
		gl.DepthFunc(gl.ALWAYS)
	default:
		gl.DepthFunc(gl.LESS)
	}

	switch s.Blend {
	case gpu.BlendAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	default:
		gl.Disable(gl.BLEND)
	}

	switch s.Cull {
	case gpu.CullBack:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	case gpu.CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	default:
		gl.Disable(gl.CULL_FACE)
	}
}

// glError drains the GL error queue and reports the first error.
func glError(op string) error {
	var first uint32
	for {
		e := gl.GetError()
		if e == gl.NO_ERROR {
			break
		}
		if first == 0 {
			first = e
		}
	}
	if first != 0 {
		return fmt.Errorf("%s: GL error 0x%x", op, first)
	}
	return nil
}

var _ gpu.Device = (*Device)(nil)
