package gfx

import "errors"

// ErrAllocation is returned (wrapped) whenever the backend hands out a zero
// object name. Nothing can be drawn without the object, so callers treat it
// as fatal.
var ErrAllocation = errors.New("gpu object allocation failed")

// LogKind selects which info log FetchDiagnostic reads.
type LogKind int

const (
	ShaderLog LogKind = iota
	ProgramLog
)

func (k LogKind) String() string {
	switch k {
	case ShaderLog:
		return "shader"
	case ProgramLog:
		return "program"
	default:
		return "unknown"
	}
}

// Backend is the set of GL entry points the renderer uses. It is passed
// explicitly to every component that talks to the GPU so a fake can stand in
// for the driver.
type Backend interface {
	GenVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)

	GenBuffer() uint32
	BindBuffer(target uint32, buffer uint32)
	BufferData(target uint32, data []float32, usage uint32)
	DeleteBuffer(buffer uint32)

	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr)
	EnableVertexAttribArray(index uint32)

	CreateShader(xtype uint32) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	GetShaderiv(shader uint32, pname uint32) int32
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program uint32, shader uint32)
	LinkProgram(program uint32)
	GetProgramiv(program uint32, pname uint32) int32
	GetAttribLocation(program uint32, name string) int32
	UseProgram(program uint32)
	DeleteProgram(program uint32)

	// FetchDiagnostic reads the info log of a shader or program object:
	// the length is queried first, then the log is read and decoded
	// without its trailing NUL.
	FetchDiagnostic(object uint32, kind LogKind) string

	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	DrawArrays(mode uint32, first int32, count int32)
}
