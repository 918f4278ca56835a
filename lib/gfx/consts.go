package gfx

// GL enum values as defined by the OpenGL 4.1 core registry. They are kept
// numerically identical so the GL backend can pass them straight through.
const (
	False int32 = 0
	True  int32 = 1

	ArrayBuffer uint32 = 0x8892
	StaticDraw  uint32 = 0x88E4
	Float       uint32 = 0x1406

	VertexShader   uint32 = 0x8B31
	FragmentShader uint32 = 0x8B30

	CompileStatus uint32 = 0x8B81
	LinkStatus    uint32 = 0x8B82
	InfoLogLength uint32 = 0x8B84

	ColorBufferBit uint32 = 0x00004000
	Triangles      uint32 = 0x0004
)

// SizeOfFloat32 is the byte size of one GL float
const SizeOfFloat32 = 4
