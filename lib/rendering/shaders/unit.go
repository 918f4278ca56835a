package shaders

import (
	"fmt"

	"github.com/yanuz/graphics/lib/gfx"
)

type Stage int

const (
	Vertex Stage = iota
	Fragment
)

func (s Stage) String() string {
	switch s {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

func (s Stage) glType() uint32 {
	if s == Fragment {
		return gfx.FragmentShader
	}
	return gfx.VertexShader
}

// CompileError carries the driver's info log for a stage that failed to
// compile. It is a diagnostic, not a reason to stop.
type CompileError struct {
	Stage   Stage
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, e.Message)
}

// Unit is one shader stage. It is compiled exactly once, by Compile.
type Unit struct {
	Stage    Stage
	Source   string
	Handle   uint32
	Compiled bool

	gfx gfx.Backend
}

// Compile creates a shader object for stage and compiles source into it.
// A compile failure returns the unit together with a *CompileError; only a
// failed allocation returns a nil unit.
func Compile(b gfx.Backend, stage Stage, source string) (*Unit, error) {
	handle := b.CreateShader(stage.glType())
	if handle == 0 {
		return nil, fmt.Errorf("could not create %s shader: %w", stage, gfx.ErrAllocation)
	}

	u := &Unit{
		Stage:  stage,
		Source: source,
		Handle: handle,
		gfx:    b,
	}

	b.ShaderSource(handle, source)
	b.CompileShader(handle)

	if b.GetShaderiv(handle, gfx.CompileStatus) == gfx.False {
		return u, &CompileError{
			Stage:   stage,
			Message: b.FetchDiagnostic(handle, gfx.ShaderLog),
		}
	}

	u.Compiled = true
	return u, nil
}

func (u *Unit) Release() {
	if u == nil || u.Handle == 0 {
		return
	}
	u.gfx.DeleteShader(u.Handle)
	u.Handle = 0
	u.Compiled = false
}
