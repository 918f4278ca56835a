package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/yanuz/graphics/lib/gfx"
)

// Layout describes the single position attribute of a mesh. Stride and
// component count must agree with the vertex shader's declaration; the GL
// binding model does not check that.
type Layout struct {
	Index      uint32
	Name       string
	Components int32
	Type       uint32
	Normalized bool
	Stride     int32
	Offset     uintptr
}

// PositionLayout is attribute 0: three floats per vertex, tightly packed.
var PositionLayout = Layout{
	Index:      0,
	Name:       "pos",
	Components: 3,
	Type:       gfx.Float,
	Normalized: false,
	Stride:     3 * gfx.SizeOfFloat32,
	Offset:     0,
}

// Triangle is the one mesh this program draws.
var Triangle = []mgl32.Vec3{
	{0.0, 0.5, 0.0},
	{0.5, -0.5, 0.0},
	{-0.5, -0.5, 0.0},
}

type Buffer struct {
	Vertices []mgl32.Vec3
	Layout   Layout
	VAO      uint32
	VBO      uint32

	gfx gfx.Backend
}

// Create uploads vertices into a new static buffer and records the position
// layout in a new vertex array.
func Create(b gfx.Backend, vertices []mgl32.Vec3) (*Buffer, error) {
	if len(vertices) == 0 {
		return nil, fmt.Errorf("mesh needs at least one vertex")
	}

	m := &Buffer{
		Vertices: vertices,
		Layout:   PositionLayout,
		gfx:      b,
	}

	m.VAO = b.GenVertexArray()
	if m.VAO == 0 {
		return nil, fmt.Errorf("could not create vertex array: %w", gfx.ErrAllocation)
	}
	b.BindVertexArray(m.VAO)

	m.VBO = b.GenBuffer()
	if m.VBO == 0 {
		b.BindVertexArray(0)
		b.DeleteVertexArray(m.VAO)
		return nil, fmt.Errorf("could not create vertex buffer: %w", gfx.ErrAllocation)
	}
	b.BindBuffer(gfx.ArrayBuffer, m.VBO)
	b.BufferData(gfx.ArrayBuffer, Flatten(vertices), gfx.StaticDraw)

	l := m.Layout
	b.VertexAttribPointer(l.Index, l.Components, l.Type, l.Normalized, l.Stride, l.Offset)
	b.EnableVertexAttribArray(l.Index)

	return m, nil
}

// Flatten lays vertices out as consecutive x, y, z floats.
func Flatten(vertices []mgl32.Vec3) []float32 {
	data := make([]float32, 0, len(vertices)*3)
	for _, v := range vertices {
		data = append(data, v.X(), v.Y(), v.Z())
	}
	return data
}

func (m *Buffer) Bind() {
	m.gfx.BindVertexArray(m.VAO)
}

func (m *Buffer) Count() int32 {
	return int32(len(m.Vertices))
}

func (m *Buffer) Release() {
	if m == nil {
		return
	}
	if m.VBO != 0 {
		m.gfx.DeleteBuffer(m.VBO)
		m.VBO = 0
	}
	if m.VAO != 0 {
		m.gfx.DeleteVertexArray(m.VAO)
		m.VAO = 0
	}
}
