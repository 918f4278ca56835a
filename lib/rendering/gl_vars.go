package rendering

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/yanuz/graphics/lib/gfx"
	"github.com/yanuz/graphics/lib/metrics"
	"github.com/yanuz/graphics/lib/rendering/mesh"
	"github.com/yanuz/graphics/lib/rendering/shaders"
	"github.com/yanuz/graphics/lib/utils"
)

// GLVars holds the GPU side of one frame: the triangle mesh, the shader
// program drawing it and the colour the frame is cleared to.
type GLVars struct {
	Sources  shaders.Sources
	BGColour utils.Colour

	Mesh    *mesh.Buffer
	Program *shaders.Program

	gfx    gfx.Backend
	logger *slog.Logger
}

func NewGLVars(b gfx.Backend, sources shaders.Sources, bgColour utils.Colour) *GLVars {
	return &GLVars{
		Sources:  sources,
		BGColour: bgColour,
		gfx:      b,
		logger:   slog.Default().With(slog.String("module", "rendering")),
	}
}

// SetLogger replaces the logger diagnostics are written to.
func (g *GLVars) SetLogger(l *slog.Logger) {
	g.logger = l.With(slog.String("module", "rendering"))
}

// Build uploads the mesh and builds the program. The returned diagnostics
// have already been logged; the error is only set on allocation failure.
func (g *GLVars) Build() ([]error, error) {
	m, err := mesh.Create(g.gfx, mesh.Triangle)
	if err != nil {
		return nil, fmt.Errorf("could not create mesh: %w", err)
	}
	metrics.MeshUploads.Inc()

	g.Mesh.Release()
	g.Mesh = m

	diagnostics, err := g.BuildProgram()
	if err != nil {
		g.Mesh.Release()
		g.Mesh = nil
		return nil, err
	}
	return diagnostics, nil
}

// BuildProgram replaces the current program with one built from Sources.
func (g *GLVars) BuildProgram() ([]error, error) {
	program, diagnostics, err := shaders.Build(g.gfx, g.Sources)
	if err != nil {
		return nil, fmt.Errorf("could not build shader program: %w", err)
	}
	metrics.PipelineBuilds.Inc()

	for _, d := range diagnostics {
		g.report(d)
	}
	if program.Linked {
		g.checkLayout(program)
	}

	g.Program.Release()
	g.Program = program
	return diagnostics, nil
}

func (g *GLVars) report(err error) {
	var compileErr *shaders.CompileError
	var linkErr *shaders.LinkError
	switch {
	case errors.As(err, &compileErr):
		metrics.ShaderDiagnostics.WithLabelValues(compileErr.Stage.String()).Inc()
	case errors.As(err, &linkErr):
		metrics.ShaderDiagnostics.WithLabelValues("link").Inc()
	}
	g.logger.Error(err.Error())
}

// checkLayout warns when the vertex stage does not read the mesh's position
// from the slot the mesh feeds. GL would silently draw garbage.
func (g *GLVars) checkLayout(program *shaders.Program) {
	layout := mesh.PositionLayout
	if g.Mesh != nil {
		layout = g.Mesh.Layout
	}
	loc := program.AttribLocation(layout.Name)
	if loc != int32(layout.Index) {
		g.logger.Warn(fmt.Sprintf(
			"vertex shader declares %q at location %d, mesh feeds location %d",
			layout.Name, loc, layout.Index,
		))
	}
}

// ClearFrame clears the colour buffer to the background colour.
func (g *GLVars) ClearFrame() {
	c := g.BGColour
	g.gfx.ClearColor(c.R, c.G, c.B, c.A)
	g.gfx.Clear(gfx.ColorBufferBit)
}

// Draw activates the program and draws the mesh.
func (g *GLVars) Draw() {
	g.Program.Activate()
	g.gfx.Clear(gfx.ColorBufferBit)
	g.Mesh.Bind()
	g.gfx.DrawArrays(gfx.Triangles, 0, g.Mesh.Count())
}

func (g *GLVars) Release() {
	g.Program.Release()
	g.Program = nil
	g.Mesh.Release()
	g.Mesh = nil
}
