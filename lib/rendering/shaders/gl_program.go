package shaders

import (
	"fmt"

	"github.com/yanuz/graphics/lib/gfx"
)

type LinkError struct {
	Message string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program: %s", e.Message)
}

// Program owns the two units it was linked from and releases them with it.
type Program struct {
	Vertex   *Unit
	Fragment *Unit
	Handle   uint32
	Linked   bool

	gfx gfx.Backend
}

// Link always attempts the link, whatever the units' compile status; a unit
// that failed to compile shows up as a link diagnostic. A failed link still
// returns a program that can be activated.
func Link(b gfx.Backend, vertex, fragment *Unit) (*Program, error) {
	handle := b.CreateProgram()
	if handle == 0 {
		return nil, fmt.Errorf("could not create program: %w", gfx.ErrAllocation)
	}

	p := &Program{
		Vertex:   vertex,
		Fragment: fragment,
		Handle:   handle,
		gfx:      b,
	}

	b.AttachShader(handle, vertex.Handle)
	b.AttachShader(handle, fragment.Handle)
	b.LinkProgram(handle)

	if b.GetProgramiv(handle, gfx.LinkStatus) == gfx.False {
		return p, &LinkError{Message: b.FetchDiagnostic(handle, gfx.ProgramLog)}
	}

	p.Linked = true
	return p, nil
}

// Activate makes p the current pipeline.
func (p *Program) Activate() {
	p.gfx.UseProgram(p.Handle)
}

// AttribLocation is -1 for unlinked programs and unknown names.
func (p *Program) AttribLocation(name string) int32 {
	if !p.Linked {
		return -1
	}
	return p.gfx.GetAttribLocation(p.Handle, name)
}

func (p *Program) Release() {
	if p == nil {
		return
	}
	if p.Handle != 0 {
		p.gfx.DeleteProgram(p.Handle)
		p.Handle = 0
	}
	p.Linked = false
	p.Vertex.Release()
	p.Fragment.Release()
}

// Build compiles both stages of src and links them. Compile and link
// failures come back as diagnostics next to a usable program; the last
// return value is only set when an object could not be allocated.
func Build(b gfx.Backend, src Sources) (*Program, []error, error) {
	var diagnostics []error

	vertex, err := Compile(b, Vertex, src.Vertex)
	if vertex == nil {
		return nil, nil, err
	}
	if err != nil {
		diagnostics = append(diagnostics, err)
	}

	fragment, err := Compile(b, Fragment, src.Fragment)
	if fragment == nil {
		vertex.Release()
		return nil, nil, err
	}
	if err != nil {
		diagnostics = append(diagnostics, err)
	}

	program, err := Link(b, vertex, fragment)
	if program == nil {
		vertex.Release()
		fragment.Release()
		return nil, nil, err
	}
	if err != nil {
		diagnostics = append(diagnostics, err)
	}

	return program, diagnostics, nil
}
