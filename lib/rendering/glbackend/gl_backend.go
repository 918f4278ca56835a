package glbackend

import (
	"bytes"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/yanuz/graphics/lib/gfx"
)

// Backend forwards gfx.Backend calls to the loaded OpenGL 4.1 core
// procedures. Init must have succeeded on the calling thread first.
type Backend struct{}

var _ gfx.Backend = Backend{}

func (Backend) GenVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (Backend) BindVertexArray(vao uint32) {
	gl.BindVertexArray(vao)
}

func (Backend) DeleteVertexArray(vao uint32) {
	gl.DeleteVertexArrays(1, &vao)
}

func (Backend) GenBuffer() uint32 {
	var buffer uint32
	gl.GenBuffers(1, &buffer)
	return buffer
}

func (Backend) BindBuffer(target uint32, buffer uint32) {
	gl.BindBuffer(target, buffer)
}

func (Backend) BufferData(target uint32, data []float32, usage uint32) {
	gl.BufferData(target, len(data)*gfx.SizeOfFloat32, gl.Ptr(data), usage)
}

func (Backend) DeleteBuffer(buffer uint32) {
	gl.DeleteBuffers(1, &buffer)
}

func (Backend) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	gl.VertexAttribPointerWithOffset(index, size, xtype, normalized, stride, offset)
}

func (Backend) EnableVertexAttribArray(index uint32) {
	gl.EnableVertexAttribArray(index)
}

func (Backend) CreateShader(xtype uint32) uint32 {
	return gl.CreateShader(xtype)
}

func (Backend) ShaderSource(shader uint32, source string) {
	csources, free := gl.Strs(source)
	size := int32(len(source))
	gl.ShaderSource(shader, 1, csources, &size)
	free()
}

func (Backend) CompileShader(shader uint32) {
	gl.CompileShader(shader)
}

func (Backend) GetShaderiv(shader uint32, pname uint32) int32 {
	var v int32
	gl.GetShaderiv(shader, pname, &v)
	return v
}

func (Backend) DeleteShader(shader uint32) {
	gl.DeleteShader(shader)
}

func (Backend) CreateProgram() uint32 {
	return gl.CreateProgram()
}

func (Backend) AttachShader(program uint32, shader uint32) {
	gl.AttachShader(program, shader)
}

func (Backend) LinkProgram(program uint32) {
	gl.LinkProgram(program)
}

func (Backend) GetProgramiv(program uint32, pname uint32) int32 {
	var v int32
	gl.GetProgramiv(program, pname, &v)
	return v
}

func (Backend) GetAttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func (Backend) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (Backend) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

func (b Backend) FetchDiagnostic(object uint32, kind gfx.LogKind) string {
	var logLength int32
	switch kind {
	case gfx.ShaderLog:
		logLength = b.GetShaderiv(object, gl.INFO_LOG_LENGTH)
	case gfx.ProgramLog:
		logLength = b.GetProgramiv(object, gl.INFO_LOG_LENGTH)
	}
	if logLength <= 0 {
		return ""
	}

	buf := make([]byte, logLength+1)
	switch kind {
	case gfx.ShaderLog:
		gl.GetShaderInfoLog(object, logLength, nil, &buf[0])
	case gfx.ProgramLog:
		gl.GetProgramInfoLog(object, logLength, nil, &buf[0])
	}
	return string(bytes.TrimRight(buf, "\x00"))
}

func (Backend) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (Backend) Clear(mask uint32) {
	gl.Clear(mask)
}

func (Backend) DrawArrays(mode uint32, first int32, count int32) {
	gl.DrawArrays(mode, first, count)
}
