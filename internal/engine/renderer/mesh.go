package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/mantaview/internal/engine/gpu"
)

// CreateMesh implements gpu.Device. Attribute i of layout is bound to
// location i.
func (d *Device) CreateMesh(vertices []float32, layout gpu.Layout, indices []uint32) (gpu.Mesh, error) {
	if len(vertices) == 0 || len(layout) == 0 {
		return 0, gpu.ErrInvalidHandle
	}
	var m glMesh
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	stride := int32(layout.Stride() * 4)
	offset := 0
	for loc, n := range layout {
		gl.VertexAttribPointerWithOffset(uint32(loc), int32(n), gl.FLOAT, false, stride, uintptr(offset*4))
		gl.EnableVertexAttribArray(uint32(loc))
		offset += n
	}

	if len(indices) > 0 {
		gl.GenBuffers(1, &m.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
		m.indexed = true
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if err := glError("create mesh"); err != nil {
		d.deleteMesh(m)
		return 0, err
	}
	h := gpu.Mesh(m.vao)
	d.meshes[h] = m
	return h, nil
}

// DeleteMesh implements gpu.Device.
func (d *Device) DeleteMesh(h gpu.Mesh) {
	m, ok := d.meshes[h]
	if !ok {
		return
	}
	delete(d.meshes, h)
	d.deleteMesh(m)
}

func (d *Device) deleteMesh(m glMesh) {
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
}

// Draw implements gpu.Device.
func (d *Device) Draw(h gpu.Mesh, count int, prim gpu.Primitive) {
	m, ok := d.meshes[h]
	if !ok || count <= 0 {
		return
	}
	mode := uint32(gl.TRIANGLES)
	if prim == gpu.Lines {
		mode = gl.LINES
	}
	gl.BindVertexArray(m.vao)
	if m.indexed {
		gl.DrawElements(mode, int32(count), gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(mode, 0, int32(count))
	}
	gl.BindVertexArray(0)
}
