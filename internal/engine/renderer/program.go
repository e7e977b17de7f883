package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/mantaview/internal/engine/gpu"
)

// CompileProgram implements gpu.Device. The error carries the compiler or
// linker log.
func (d *Device) CompileProgram(src gpu.ProgramSource) (gpu.Program, error) {
	vertShader, err := compileShader(src.Vertex, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, fmt.Errorf("%s: %w", src.Name, err)
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(src.Fragment, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, fmt.Errorf("%s: %w", src.Name, err)
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%s: link: %s", src.Name, gl.GoStr(&log[0]))
	}

	d.uniforms[program] = make(map[string]int32)
	return gpu.Program(program), nil
}

// compileShader compiles a single shader of the given type.
func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, gl.GoStr(&log[0]))
	}

	return shader, nil
}

// DeleteProgram implements gpu.Device.
func (d *Device) DeleteProgram(p gpu.Program) {
	if !p.Valid() {
		return
	}
	if d.program == uint32(p) {
		gl.UseProgram(0)
		d.program = 0
	}
	delete(d.uniforms, uint32(p))
	gl.DeleteProgram(uint32(p))
}

// UseProgram implements gpu.Device.
func (d *Device) UseProgram(p gpu.Program) {
	d.program = uint32(p)
	gl.UseProgram(d.program)
}

// location returns the cached uniform location in the current program.
// Uniforms the compiler optimized out resolve to -1, which GL ignores.
func (d *Device) location(name string) int32 {
	cache := d.uniforms[d.program]
	if cache == nil {
		return -1
	}
	if loc, ok := cache[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(d.program, gl.Str(name+"\x00"))
	cache[name] = loc
	return loc
}

// SetMat4 implements gpu.Device.
func (d *Device) SetMat4(name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(d.location(name), 1, false, &m[0])
}

// SetVec3 implements gpu.Device.
func (d *Device) SetVec3(name string, v mgl32.Vec3) {
	gl.Uniform3f(d.location(name), v[0], v[1], v[2])
}

// SetVec4 implements gpu.Device.
func (d *Device) SetVec4(name string, v mgl32.Vec4) {
	gl.Uniform4f(d.location(name), v[0], v[1], v[2], v[3])
}

// SetFloat implements gpu.Device.
func (d *Device) SetFloat(name string, f float32) {
	gl.Uniform1f(d.location(name), f)
}

// SetInt implements gpu.Device.
func (d *Device) SetInt(name string, i int32) {
	gl.Uniform1i(d.location(name), i)
}
