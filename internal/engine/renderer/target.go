package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/mantaview/internal/engine/gpu"
)

// CreateTarget implements gpu.Device. Depth is a sampleable
// DEPTH_COMPONENT24 texture; shadow targets clamp to a border of 1.0.
func (d *Device) CreateTarget(spec gpu.TargetSpec) (*gpu.Target, error) {
	if spec.Width < 1 || spec.Height < 1 {
		return nil, fmt.Errorf("target %s: bad size %dx%d", spec.Name, spec.Width, spec.Height)
	}
	t := &gpu.Target{Name: spec.Name, Width: spec.Width, Height: spec.Height}
	w, h := int32(spec.Width), int32(spec.Height)

	gl.GenFramebuffers(1, &t.ID)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.ID)

	if spec.Color {
		var color uint32
		gl.GenTextures(1, &color)
		gl.BindTexture(gl.TEXTURE_2D, color)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, w, h, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, color, 0)
		t.Color = gpu.Texture(color)
	} else {
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
	}

	var depth uint32
	gl.GenTextures(1, &depth)
	gl.BindTexture(gl.TEXTURE_2D, depth)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, w, h, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	if spec.Shadow {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
		border := []float32{1, 1, 1, 1}
		gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	}
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, depth, 0)
	t.Depth = gpu.Texture(depth)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	d.restoreBinding()
	if status != gl.FRAMEBUFFER_COMPLETE {
		d.DeleteTarget(t)
		return nil, fmt.Errorf("target %s: framebuffer incomplete: 0x%x", spec.Name, status)
	}
	if err := glError("create target " + spec.Name); err != nil {
		d.DeleteTarget(t)
		return nil, err
	}

	d.log.Debug("target created", zap.String("name", spec.Name), zap.Int("width", spec.Width), zap.Int("height", spec.Height))
	return t, nil
}

func (d *Device) restoreBinding() {
	if d.bound.Valid() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, d.bound.ID)
	} else {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}
}

// DeleteTarget implements gpu.Device.
func (d *Device) DeleteTarget(t *gpu.Target) {
	if t == nil {
		return
	}
	if d.bound == t {
		d.BindTarget(nil)
	}
	if t.ID != 0 {
		gl.DeleteFramebuffers(1, &t.ID)
		t.ID = 0
	}
	for _, tex := range []*gpu.Texture{&t.Color, &t.Depth} {
		if tex.Valid() {
			id := uint32(*tex)
			gl.DeleteTextures(1, &id)
			*tex = 0
		}
	}
}

// ReadPixels implements gpu.Device.
func (d *Device) ReadPixels(t *gpu.Target) []byte {
	if !t.Valid() || !t.Color.Valid() {
		return nil
	}
	pixels := make([]byte, t.Width*t.Height*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, t.ID)
	gl.ReadPixels(0, 0, int32(t.Width), int32(t.Height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	d.restoreBinding()
	return pixels
}

// Blit implements gpu.Device.
func (d *Device) Blit(src *gpu.Target, width, height int) {
	if !src.Valid() || !src.Color.Valid() {
		return
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, src.ID)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(0, 0, int32(src.Width), int32(src.Height),
		0, 0, int32(width), int32(height), gl.COLOR_BUFFER_BIT, gl.LINEAR)
	d.restoreBinding()
}
