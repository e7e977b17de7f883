package renderer

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/mantaview/internal/engine/gpu"
)

// CreateTexture2D implements gpu.Device.
func (d *Device) CreateTexture2D(img *image.RGBA, opts gpu.TextureOptions) (gpu.Texture, error) {
	if img == nil || img.Rect.Empty() {
		return 0, fmt.Errorf("create texture: empty image")
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	wrap := int32(gl.CLAMP_TO_EDGE)
	if opts.Repeat {
		wrap = gl.REPEAT
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	if opts.Mipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if err := glError("create texture"); err != nil {
		gl.DeleteTextures(1, &tex)
		return 0, err
	}
	return gpu.Texture(tex), nil
}

// CreateTextureCube implements gpu.Device. Faces are in +X, -X, +Y, -Y,
// +Z, -Z order.
func (d *Device) CreateTextureCube(faces [6]*image.RGBA) (gpu.Texture, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, tex)
	for i, img := range faces {
		if img == nil {
			gl.DeleteTextures(1, &tex)
			return 0, fmt.Errorf("create cube map: face %d missing", i)
		}
		gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
		gl.TexImage2D(uint32(gl.TEXTURE_CUBE_MAP_POSITIVE_X+i), 0, gl.RGBA8,
			int32(img.Rect.Dx()), int32(img.Rect.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	}
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)

	if err := glError("create cube map"); err != nil {
		gl.DeleteTextures(1, &tex)
		return 0, err
	}
	return gpu.Texture(tex), nil
}

// CreateTexture3D implements gpu.Device. The texture is single-channel
// half float, zero-filled, clamped and linearly filtered.
func (d *Device) CreateTexture3D(nx, ny, nz int) (gpu.Texture, error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return 0, fmt.Errorf("create volume: bad size %dx%dx%d", nx, ny, nz)
	}
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_3D, tex)
	zero := make([]float32, nx*ny*nz)
	gl.TexImage3D(gl.TEXTURE_3D, 0, gl.R16F, int32(nx), int32(ny), int32(nz), 0, gl.RED, gl.FLOAT, gl.Ptr(zero))
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_3D, 0)

	if err := glError("create volume"); err != nil {
		gl.DeleteTextures(1, &tex)
		return 0, err
	}
	return gpu.Texture(tex), nil
}

// UploadTexture3D implements gpu.Device.
func (d *Device) UploadTexture3D(t gpu.Texture, nx, ny, nz int, data []float32) error {
	if !t.Valid() {
		return gpu.ErrInvalidHandle
	}
	if len(data) != nx*ny*nz {
		return fmt.Errorf("upload volume: %d samples for %dx%dx%d", len(data), nx, ny, nz)
	}
	gl.BindTexture(gl.TEXTURE_3D, uint32(t))
	gl.TexSubImage3D(gl.TEXTURE_3D, 0, 0, 0, 0, int32(nx), int32(ny), int32(nz), gl.RED, gl.FLOAT, gl.Ptr(data))
	gl.BindTexture(gl.TEXTURE_3D, 0)
	return glError("upload volume")
}

// DeleteTexture implements gpu.Device.
func (d *Device) DeleteTexture(t gpu.Texture) {
	if !t.Valid() {
		return
	}
	tex := uint32(t)
	gl.DeleteTextures(1, &tex)
}

// BindTexture implements gpu.Device. A zero handle unbinds the unit.
func (d *Device) BindTexture(unit int, kind gpu.TextureKind, t gpu.Texture) {
	gl.ActiveTexture(uint32(gl.TEXTURE0 + unit))
	switch kind {
	case gpu.TextureCube:
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, uint32(t))
	case gpu.Texture3D:
		gl.BindTexture(gl.TEXTURE_3D, uint32(t))
	default:
		gl.BindTexture(gl.TEXTURE_2D, uint32(t))
	}
}
