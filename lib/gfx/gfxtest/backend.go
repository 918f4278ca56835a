// Package gfxtest provides an in-memory gfx.Backend that keeps track of every
// object it hands out, so tests can check for leaks, call ordering and the
// diagnostics a real driver would produce.
package gfxtest

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/yanuz/graphics/lib/gfx"
)

// Attrib is the recorded state of one VertexAttribPointer call.
type Attrib struct {
	Size       int32
	Type       uint32
	Normalized bool
	Stride     int32
	Offset     uintptr
	Buffer     uint32
}

// Draw is one recorded DrawArrays call.
type Draw struct {
	Program     uint32
	VertexArray uint32
	Mode        uint32
	First       int32
	Count       int32
}

type shader struct {
	kind     uint32
	source   string
	compiled bool
	log      string
}

type program struct {
	attached []uint32
	linked   bool
	log      string
	attribs  map[string]int32
}

type vertexArray struct {
	attribs map[uint32]Attrib
	enabled map[uint32]bool
}

// Backend is a fake GL driver. The Zero* switches make the matching
// allocation return 0, as a driver without resources would.
type Backend struct {
	ZeroVertexArrays bool
	ZeroBuffers      bool
	ZeroShaders      bool
	ZeroPrograms     bool

	// Calls lists every backend method invoked, in order.
	Calls []string
	// Errors collects the GL errors a real driver would have raised.
	Errors []string

	BoundVertexArray uint32
	BoundBuffer      uint32
	CurrentProgram   uint32
	ClearColorValue  [4]float32
	Clears           int
	Draws            []Draw

	next         uint32
	vertexArrays map[uint32]*vertexArray
	buffers      map[uint32][]float32
	shaders      map[uint32]*shader
	programs     map[uint32]*program
}

var _ gfx.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{
		vertexArrays: make(map[uint32]*vertexArray),
		buffers:      make(map[uint32][]float32),
		shaders:      make(map[uint32]*shader),
		programs:     make(map[uint32]*program),
	}
}

// LiveObjects is the number of objects created and not yet deleted.
func (b *Backend) LiveObjects() int {
	return len(b.vertexArrays) + len(b.buffers) + len(b.shaders) + len(b.programs)
}

// BufferContents returns a copy of what was last uploaded to buffer.
func (b *Backend) BufferContents(buffer uint32) []float32 {
	return slices.Clone(b.buffers[buffer])
}

// AttribOf returns the pointer state recorded on vao for the given slot.
func (b *Backend) AttribOf(vao uint32, index uint32) (Attrib, bool) {
	va, ok := b.vertexArrays[vao]
	if !ok {
		return Attrib{}, false
	}
	a, ok := va.attribs[index]
	return a, ok
}

func (b *Backend) AttribEnabled(vao uint32, index uint32) bool {
	va, ok := b.vertexArrays[vao]
	return ok && va.enabled[index]
}

func (b *Backend) ShaderSourceOf(shader uint32) string {
	if s, ok := b.shaders[shader]; ok {
		return s.source
	}
	return ""
}

// CountCalls returns how many times the named method was called.
func (b *Backend) CountCalls(name string) int {
	n := 0
	for _, c := range b.Calls {
		if c == name {
			n++
		}
	}
	return n
}

func (b *Backend) record(name string) {
	b.Calls = append(b.Calls, name)
}

func (b *Backend) fail(format string, args ...any) {
	b.Errors = append(b.Errors, fmt.Sprintf(format, args...))
}

func (b *Backend) alloc() uint32 {
	b.next++
	return b.next
}

func (b *Backend) GenVertexArray() uint32 {
	b.record("GenVertexArray")
	if b.ZeroVertexArrays {
		return 0
	}
	id := b.alloc()
	b.vertexArrays[id] = &vertexArray{
		attribs: make(map[uint32]Attrib),
		enabled: make(map[uint32]bool),
	}
	return id
}

func (b *Backend) BindVertexArray(vao uint32) {
	b.record("BindVertexArray")
	if _, ok := b.vertexArrays[vao]; !ok && vao != 0 {
		b.fail("GL_INVALID_OPERATION: BindVertexArray(%d) unknown name", vao)
		return
	}
	b.BoundVertexArray = vao
}

func (b *Backend) DeleteVertexArray(vao uint32) {
	b.record("DeleteVertexArray")
	delete(b.vertexArrays, vao)
	if b.BoundVertexArray == vao {
		b.BoundVertexArray = 0
	}
}

func (b *Backend) GenBuffer() uint32 {
	b.record("GenBuffer")
	if b.ZeroBuffers {
		return 0
	}
	id := b.alloc()
	b.buffers[id] = nil
	return id
}

func (b *Backend) BindBuffer(target uint32, buffer uint32) {
	b.record("BindBuffer")
	if target != gfx.ArrayBuffer {
		b.fail("GL_INVALID_ENUM: BindBuffer target 0x%x", target)
		return
	}
	if _, ok := b.buffers[buffer]; !ok && buffer != 0 {
		b.fail("GL_INVALID_OPERATION: BindBuffer(%d) unknown name", buffer)
		return
	}
	b.BoundBuffer = buffer
}

func (b *Backend) BufferData(target uint32, data []float32, usage uint32) {
	b.record("BufferData")
	if target != gfx.ArrayBuffer || usage != gfx.StaticDraw {
		b.fail("GL_INVALID_ENUM: BufferData target 0x%x usage 0x%x", target, usage)
		return
	}
	if b.BoundBuffer == 0 {
		b.fail("GL_INVALID_OPERATION: BufferData with no buffer bound")
		return
	}
	b.buffers[b.BoundBuffer] = slices.Clone(data)
}

func (b *Backend) DeleteBuffer(buffer uint32) {
	b.record("DeleteBuffer")
	delete(b.buffers, buffer)
	if b.BoundBuffer == buffer {
		b.BoundBuffer = 0
	}
}

func (b *Backend) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	b.record("VertexAttribPointer")
	va, ok := b.vertexArrays[b.BoundVertexArray]
	if !ok {
		b.fail("GL_INVALID_OPERATION: VertexAttribPointer with no vertex array bound")
		return
	}
	if b.BoundBuffer == 0 {
		b.fail("GL_INVALID_OPERATION: VertexAttribPointer with no array buffer bound")
		return
	}
	va.attribs[index] = Attrib{
		Size:       size,
		Type:       xtype,
		Normalized: normalized,
		Stride:     stride,
		Offset:     offset,
		Buffer:     b.BoundBuffer,
	}
}

func (b *Backend) EnableVertexAttribArray(index uint32) {
	b.record("EnableVertexAttribArray")
	va, ok := b.vertexArrays[b.BoundVertexArray]
	if !ok {
		b.fail("GL_INVALID_OPERATION: EnableVertexAttribArray with no vertex array bound")
		return
	}
	va.enabled[index] = true
}

func (b *Backend) CreateShader(xtype uint32) uint32 {
	b.record("CreateShader")
	if xtype != gfx.VertexShader && xtype != gfx.FragmentShader {
		b.fail("GL_INVALID_ENUM: CreateShader type 0x%x", xtype)
		return 0
	}
	if b.ZeroShaders {
		return 0
	}
	id := b.alloc()
	b.shaders[id] = &shader{kind: xtype}
	return id
}

func (b *Backend) ShaderSource(id uint32, source string) {
	b.record("ShaderSource")
	s, ok := b.shaders[id]
	if !ok {
		b.fail("GL_INVALID_VALUE: ShaderSource(%d)", id)
		return
	}
	s.source = source
}

func (b *Backend) CompileShader(id uint32) {
	b.record("CompileShader")
	s, ok := b.shaders[id]
	if !ok {
		b.fail("GL_INVALID_VALUE: CompileShader(%d)", id)
		return
	}
	s.log = checkSource(s.source)
	s.compiled = s.log == ""
}

func (b *Backend) GetShaderiv(id uint32, pname uint32) int32 {
	b.record("GetShaderiv")
	s, ok := b.shaders[id]
	if !ok {
		b.fail("GL_INVALID_VALUE: GetShaderiv(%d)", id)
		return 0
	}
	switch pname {
	case gfx.CompileStatus:
		if s.compiled {
			return gfx.True
		}
		return gfx.False
	case gfx.InfoLogLength:
		return logLength(s.log)
	default:
		b.fail("GL_INVALID_ENUM: GetShaderiv pname 0x%x", pname)
		return 0
	}
}

func (b *Backend) DeleteShader(id uint32) {
	b.record("DeleteShader")
	delete(b.shaders, id)
}

func (b *Backend) CreateProgram() uint32 {
	b.record("CreateProgram")
	if b.ZeroPrograms {
		return 0
	}
	id := b.alloc()
	b.programs[id] = &program{attribs: make(map[string]int32)}
	return id
}

func (b *Backend) AttachShader(programID uint32, shaderID uint32) {
	b.record("AttachShader")
	p, ok := b.programs[programID]
	if !ok {
		b.fail("GL_INVALID_VALUE: AttachShader program %d", programID)
		return
	}
	if _, ok := b.shaders[shaderID]; !ok {
		b.fail("GL_INVALID_VALUE: AttachShader shader %d", shaderID)
		return
	}
	p.attached = append(p.attached, shaderID)
}

func (b *Backend) LinkProgram(programID uint32) {
	b.record("LinkProgram")
	p, ok := b.programs[programID]
	if !ok {
		b.fail("GL_INVALID_VALUE: LinkProgram(%d)", programID)
		return
	}
	p.log, p.attribs = b.link(p)
	p.linked = p.log == ""
}

func (b *Backend) GetProgramiv(programID uint32, pname uint32) int32 {
	b.record("GetProgramiv")
	p, ok := b.programs[programID]
	if !ok {
		b.fail("GL_INVALID_VALUE: GetProgramiv(%d)", programID)
		return 0
	}
	switch pname {
	case gfx.LinkStatus:
		if p.linked {
			return gfx.True
		}
		return gfx.False
	case gfx.InfoLogLength:
		return logLength(p.log)
	default:
		b.fail("GL_INVALID_ENUM: GetProgramiv pname 0x%x", pname)
		return 0
	}
}

func (b *Backend) GetAttribLocation(programID uint32, name string) int32 {
	b.record("GetAttribLocation")
	p, ok := b.programs[programID]
	if !ok || !p.linked {
		b.fail("GL_INVALID_OPERATION: GetAttribLocation on unlinked program %d", programID)
		return -1
	}
	if loc, ok := p.attribs[name]; ok {
		return loc
	}
	return -1
}

func (b *Backend) UseProgram(programID uint32) {
	b.record("UseProgram")
	if _, ok := b.programs[programID]; !ok && programID != 0 {
		b.fail("GL_INVALID_VALUE: UseProgram(%d)", programID)
		return
	}
	b.CurrentProgram = programID
}

func (b *Backend) DeleteProgram(programID uint32) {
	b.record("DeleteProgram")
	delete(b.programs, programID)
	if b.CurrentProgram == programID {
		b.CurrentProgram = 0
	}
}

func (b *Backend) FetchDiagnostic(object uint32, kind gfx.LogKind) string {
	b.record("FetchDiagnostic")
	switch kind {
	case gfx.ShaderLog:
		if s, ok := b.shaders[object]; ok {
			return s.log
		}
	case gfx.ProgramLog:
		if p, ok := b.programs[object]; ok {
			return p.log
		}
	}
	b.fail("GL_INVALID_VALUE: no %s object %d", kind, object)
	return ""
}

func (b *Backend) ClearColor(r, g, bl, a float32) {
	b.record("ClearColor")
	b.ClearColorValue = [4]float32{r, g, bl, a}
}

func (b *Backend) Clear(mask uint32) {
	b.record("Clear")
	if mask&^gfx.ColorBufferBit != 0 {
		b.fail("GL_INVALID_VALUE: Clear mask 0x%x", mask)
		return
	}
	b.Clears++
}

func (b *Backend) DrawArrays(mode uint32, first int32, count int32) {
	b.record("DrawArrays")
	if b.BoundVertexArray == 0 {
		b.fail("GL_INVALID_OPERATION: DrawArrays with no vertex array bound")
		return
	}
	p, ok := b.programs[b.CurrentProgram]
	if !ok {
		b.fail("GL_INVALID_OPERATION: DrawArrays with no current program")
		return
	}
	if !p.linked {
		b.fail("GL_INVALID_OPERATION: DrawArrays with unlinked program %d", b.CurrentProgram)
		return
	}
	b.Draws = append(b.Draws, Draw{
		Program:     b.CurrentProgram,
		VertexArray: b.BoundVertexArray,
		Mode:        mode,
		First:       first,
		Count:       count,
	})
}

func logLength(log string) int32 {
	if log == "" {
		return 0
	}
	return int32(len(log) + 1)
}

var (
	attribRe = regexp.MustCompile(`(?m)^\s*(?:layout\s*\(\s*location\s*=\s*(\d+)\s*\)\s*)?in\s+\w+\s+(\w+)\s*;`)
	outputRe = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?out\s+\w+\s+\w+\s*;`)
	mainRe   = regexp.MustCompile(`void\s+main\s*\(`)
)

// checkSource mimics the front end of a GLSL compiler closely enough to
// produce a diagnostic for sources that are obviously broken.
func checkSource(source string) string {
	if !strings.HasPrefix(strings.TrimLeft(source, " \t\r\n"), "#version") {
		return "0:1(1): error: missing #version directive"
	}

	var stack []rune
	pairs := map[rune]rune{')': '(', '}': '{', ']': '['}
	line := 1
	for _, r := range source {
		switch r {
		case '\n':
			line++
		case '(', '{', '[':
			stack = append(stack, r)
		case ')', '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[r] {
				return fmt.Sprintf("0:%d(1): error: syntax error, unexpected '%c'", line, r)
			}
			stack = stack[:len(stack)-1]
		case '@', '$', '`':
			return fmt.Sprintf("0:%d(1): error: syntax error, unexpected character '%c'", line, r)
		}
	}
	if len(stack) > 0 {
		return fmt.Sprintf("0:%d(1): error: syntax error, unexpected end of file", line)
	}
	return ""
}

func (b *Backend) link(p *program) (string, map[string]int32) {
	var vertex, fragment *shader
	for _, id := range p.attached {
		s, ok := b.shaders[id]
		if !ok {
			continue
		}
		if !s.compiled {
			return "error: linking with uncompiled/unspecialized shader", nil
		}
		switch s.kind {
		case gfx.VertexShader:
			vertex = s
		case gfx.FragmentShader:
			fragment = s
		}
	}
	if vertex == nil || fragment == nil {
		return "error: program needs both a vertex and a fragment shader", nil
	}
	if !mainRe.MatchString(vertex.source) {
		return "error: vertex shader lacks `main'", nil
	}
	if !mainRe.MatchString(fragment.source) {
		return "error: fragment shader lacks `main'", nil
	}
	if !outputRe.MatchString(fragment.source) {
		return "error: fragment shader does not write to any output", nil
	}

	attribs := make(map[string]int32)
	next := int32(0)
	for _, m := range attribRe.FindAllStringSubmatch(vertex.source, -1) {
		if m[1] != "" {
			var loc int32
			fmt.Sscanf(m[1], "%d", &loc)
			attribs[m[2]] = loc
			continue
		}
		attribs[m[2]] = next
		next++
	}
	return "", attribs
}
