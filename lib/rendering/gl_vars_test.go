package rendering

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanuz/graphics/lib/gfx"
	"github.com/yanuz/graphics/lib/gfx/gfxtest"
	"github.com/yanuz/graphics/lib/metrics"
	"github.com/yanuz/graphics/lib/rendering/shaders"
	"github.com/yanuz/graphics/lib/utils"
)

var background = utils.Colour{R: 0.2, G: 0.3, B: 0.3, A: 1}

func defaultSources(t *testing.T) shaders.Sources {
	t.Helper()
	s, err := shaders.NewShaderer()
	require.NoError(t, err)
	src, err := s.LoadSources("", "", &shaders.ShaderData{
		GLSLVersion:  shaders.GLSLVersion,
		PositionName: "pos",
		Colour:       utils.Colour{R: 1, G: 0.5, B: 0.2, A: 1},
	})
	require.NoError(t, err)
	return src
}

func newTestGLVars(t *testing.T, b gfx.Backend, src shaders.Sources) (*GLVars, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	g := NewGLVars(b, src, background)
	g.SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	return g, &logs
}

func TestDrawValidPipeline(t *testing.T) {
	b := gfxtest.New()
	g, logs := newTestGLVars(t, b, defaultSources(t))

	diagnostics, err := g.Build()
	require.NoError(t, err)
	assert.Empty(t, diagnostics)
	require.NotNil(t, g.Mesh)
	require.NotNil(t, g.Program)

	g.ClearFrame()
	g.Draw()

	assert.Empty(t, b.Errors)
	assert.Empty(t, logs.String())
	assert.Equal(t, [4]float32{0.2, 0.3, 0.3, 1}, b.ClearColorValue)
	assert.Equal(t, 2, b.Clears)
	require.Len(t, b.Draws, 1)
	assert.Equal(t, gfxtest.Draw{
		Program:     g.Program.Handle,
		VertexArray: g.Mesh.VAO,
		Mode:        gfx.Triangles,
		First:       0,
		Count:       3,
	}, b.Draws[0])
}

func TestBuildLogsDiagnostics(t *testing.T) {
	b := gfxtest.New()
	src := defaultSources(t)
	src.Fragment = "#version 410 core\nvoid main() {\n}\n"
	g, logs := newTestGLVars(t, b, src)

	before := testutil.ToFloat64(metrics.ShaderDiagnostics.WithLabelValues("link"))

	diagnostics, err := g.Build()
	require.NoError(t, err)
	require.Len(t, diagnostics, 1)
	assert.Contains(t, logs.String(), "failed to link program")
	assert.Contains(t, logs.String(), "module=rendering")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ShaderDiagnostics.WithLabelValues("link")))

	// the broken program is still used; the driver refuses the draw
	g.ClearFrame()
	g.Draw()
	assert.Equal(t, g.Program.Handle, b.CurrentProgram)
	assert.Empty(t, b.Draws)
}

func TestLayoutMismatchWarns(t *testing.T) {
	b := gfxtest.New()
	src := defaultSources(t)
	src.Vertex = "#version 410 core\nlayout(location = 2) in vec3 pos;\nvoid main() {\n    gl_Position = vec4(pos, 1.0);\n}\n"
	g, logs := newTestGLVars(t, b, src)

	diagnostics, err := g.Build()
	require.NoError(t, err)
	assert.Empty(t, diagnostics)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "location 2")
}

func TestLayoutCheckUsesDrawnMesh(t *testing.T) {
	b := gfxtest.New()
	src := defaultSources(t)
	src.Vertex = "#version 410 core\nlayout(location = 1) in vec3 pos;\nvoid main() {\n    gl_Position = vec4(pos, 1.0);\n}\n"
	g, logs := newTestGLVars(t, b, src)

	_, err := g.Build()
	require.NoError(t, err)
	require.Contains(t, logs.String(), "mesh feeds location 0")

	logs.Reset()
	g.Mesh.Layout.Index = 1
	_, err = g.BuildProgram()
	require.NoError(t, err)
	assert.Empty(t, logs.String())
}

func TestBuildProgramReplacesProgram(t *testing.T) {
	b := gfxtest.New()
	g, _ := newTestGLVars(t, b, defaultSources(t))

	_, err := g.Build()
	require.NoError(t, err)
	old := g.Program.Handle
	live := b.LiveObjects()

	_, err = g.BuildProgram()
	require.NoError(t, err)
	assert.NotEqual(t, old, g.Program.Handle)
	assert.Equal(t, live, b.LiveObjects())
}

func TestBuildAllocationFailure(t *testing.T) {
	b := gfxtest.New()
	b.ZeroShaders = true
	g, _ := newTestGLVars(t, b, defaultSources(t))

	_, err := g.Build()
	assert.ErrorIs(t, err, gfx.ErrAllocation)
	assert.Nil(t, g.Mesh)
	assert.Nil(t, g.Program)
	assert.Zero(t, b.LiveObjects())
}

func TestRelease(t *testing.T) {
	b := gfxtest.New()
	g, _ := newTestGLVars(t, b, defaultSources(t))

	_, err := g.Build()
	require.NoError(t, err)
	require.Equal(t, 5, b.LiveObjects())

	g.Release()
	assert.Zero(t, b.LiveObjects())
	assert.Nil(t, g.Mesh)
	assert.Nil(t, g.Program)
}
