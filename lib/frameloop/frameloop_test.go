package frameloop

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanuz/graphics/lib/gfx"
	"github.com/yanuz/graphics/lib/gfx/gfxtest"
	"github.com/yanuz/graphics/lib/rendering"
	"github.com/yanuz/graphics/lib/rendering/shaders"
	"github.com/yanuz/graphics/lib/utils"
	"github.com/yanuz/graphics/lib/windowing"
	"github.com/yanuz/graphics/lib/windowing/windowingtest"
)

type harness struct {
	gl     *gfxtest.Backend
	wb     *windowingtest.Backend
	window *windowingtest.Window
	glvars *rendering.GLVars
	loop   *FrameLoop
	logs   *bytes.Buffer
}

func sources(t *testing.T) shaders.Sources {
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

func newHarness(t *testing.T, src shaders.Sources, script func(poll int) []windowing.Event) *harness {
	t.Helper()
	h := &harness{
		gl:   gfxtest.New(),
		wb:   &windowingtest.Backend{Script: script},
		logs: &bytes.Buffer{},
	}
	require.NoError(t, h.wb.Init())
	w, err := h.wb.CreateWindow(windowing.WindowCfg{Width: 800, Height: 600, Title: "test"})
	require.NoError(t, err)
	h.window = w.(*windowingtest.Window)
	w.MakeCurrent()

	logger := slog.New(slog.NewTextHandler(h.logs, nil))
	h.glvars = rendering.NewGLVars(h.gl, src, utils.Colour{R: 0.2, G: 0.3, B: 0.3, A: 1})
	h.glvars.SetLogger(logger)
	h.loop = New(h.wb, w, h.glvars)
	h.loop.SetLogger(logger)
	return h
}

func closeAt(n int, ev windowing.Event) func(int) []windowing.Event {
	return func(poll int) []windowing.Event {
		if poll == n {
			return []windowing.Event{ev}
		}
		return nil
	}
}

func TestCloseEventEndsLoop(t *testing.T) {
	h := newHarness(t, sources(t), closeAt(3, windowing.CloseEvent{}))

	require.NoError(t, h.loop.Run())

	// the frame that saw the close event is still finished
	assert.Equal(t, 3, h.wb.Polls)
	assert.Equal(t, 3, h.window.Swaps)
	assert.Len(t, h.gl.Draws, 3)
	assert.Equal(t, Closing, h.loop.State())
	assert.Zero(t, h.gl.LiveObjects())
	assert.Empty(t, h.gl.Errors)
	assert.Zero(t, h.window.CloseResets)
	assert.Equal(t, uint64(3), h.loop.Stats.Snapshot().Frames)
}

func TestEscapeEndsLoop(t *testing.T) {
	h := newHarness(t, sources(t), closeAt(2, windowing.KeyEvent{Key: windowing.KeyEscape, Action: windowing.Press}))

	require.NoError(t, h.loop.Run())
	assert.Equal(t, 2, h.window.Swaps)
	assert.Zero(t, h.gl.LiveObjects())
}

func TestOtherEventsKeepRunning(t *testing.T) {
	h := newHarness(t, sources(t), func(poll int) []windowing.Event {
		switch poll {
		case 1:
			return []windowing.Event{
				windowing.KeyEvent{Key: windowing.KeyEscape, Action: windowing.Release},
				windowing.KeyEvent{Key: windowing.KeyQ, Action: windowing.Press},
			}
		case 4:
			return []windowing.Event{windowing.CloseEvent{}}
		}
		return nil
	})

	require.NoError(t, h.loop.Run())
	assert.Equal(t, 4, h.window.Swaps)
}

func TestFrameCallOrder(t *testing.T) {
	h := newHarness(t, sources(t), nil)
	require.NoError(t, h.loop.Start())
	h.gl.Calls = nil

	require.NoError(t, h.loop.Step())

	assert.Equal(t, []string{
		"ClearColor",
		"Clear",
		"UseProgram",
		"Clear",
		"BindVertexArray",
		"DrawArrays",
	}, h.gl.Calls)
	assert.Equal(t, 1, h.wb.Polls)
	assert.Equal(t, 1, h.window.Swaps)
	assert.Equal(t, [4]float32{0.2, 0.3, 0.3, 1}, h.gl.ClearColorValue)
	require.Len(t, h.gl.Draws, 1)
	assert.Equal(t, gfx.Triangles, h.gl.Draws[0].Mode)
	assert.Equal(t, int32(3), h.gl.Draws[0].Count)
}

func TestHoistedBuildsOnce(t *testing.T) {
	h := newHarness(t, sources(t), closeAt(5, windowing.CloseEvent{}))

	require.NoError(t, h.loop.Run())
	assert.Equal(t, 1, h.gl.CountCalls("CreateProgram"))
	assert.Equal(t, 1, h.gl.CountCalls("BufferData"))
	assert.Equal(t, uint64(1), h.loop.Stats.Snapshot().PipelineBuilds)
}

func TestRecreatePerFrame(t *testing.T) {
	h := newHarness(t, sources(t), closeAt(4, windowing.CloseEvent{}))
	h.loop.RecreatePerFrame = true

	require.NoError(t, h.loop.Start())
	assert.Zero(t, h.gl.LiveObjects())

	require.NoError(t, h.loop.Step())
	assert.Zero(t, h.gl.LiveObjects(), "frame resources must not outlive the frame")

	require.NoError(t, h.loop.Run())
	// one frame per poll, including the one above
	assert.Equal(t, 4, h.gl.CountCalls("CreateProgram"))
	assert.Equal(t, 4, h.gl.CountCalls("BufferData"))
	assert.Len(t, h.gl.Draws, 4)
	assert.Zero(t, h.gl.LiveObjects())
	assert.Empty(t, h.gl.Errors)
}

func TestLinkFailureKeepsWindowResponsive(t *testing.T) {
	src := sources(t)
	src.Fragment = "#version 410 core\nvoid main() {\n}\n"
	h := newHarness(t, src, closeAt(5, windowing.CloseEvent{}))

	require.NoError(t, h.loop.Run())

	assert.Contains(t, h.logs.String(), "failed to link program: error:")
	assert.Equal(t, 5, h.window.Swaps)
	assert.Empty(t, h.gl.Draws)
	assert.Zero(t, h.gl.LiveObjects())

	snap := h.loop.Stats.Snapshot()
	assert.Equal(t, uint64(1), snap.LinkFailures)
	assert.NotEmpty(t, snap.LastDiagnostic)
}

func TestCompileFailureEveryFrame(t *testing.T) {
	src := sources(t)
	src.Vertex = "#version 410 core\nvoid main() {\n"
	h := newHarness(t, src, closeAt(3, windowing.CloseEvent{}))
	h.loop.RecreatePerFrame = true

	require.NoError(t, h.loop.Run())

	snap := h.loop.Stats.Snapshot()
	assert.Equal(t, uint64(3), snap.CompileFailures)
	assert.Equal(t, uint64(3), snap.LinkFailures)
	assert.Equal(t, 3, h.window.Swaps)
}

func TestRequestClose(t *testing.T) {
	h := newHarness(t, sources(t), nil)
	h.loop.RequestClose()

	require.NoError(t, h.loop.Run())
	assert.Equal(t, 1, h.window.Swaps)
	assert.True(t, h.window.ShouldClose())
}

func TestShouldCloseIsMonotonic(t *testing.T) {
	h := newHarness(t, sources(t), func(poll int) []windowing.Event {
		if poll == 1 {
			return []windowing.Event{windowing.CloseEvent{}}
		}
		return []windowing.Event{windowing.KeyEvent{Key: windowing.KeyQ, Action: windowing.Press}}
	})
	require.NoError(t, h.loop.Start())

	for i := 0; i < 5; i++ {
		require.NoError(t, h.loop.Step())
		assert.True(t, h.window.ShouldClose())
	}
	assert.Zero(t, h.window.CloseResets)
	h.glvars.Release()
}

func TestReloadFromChannel(t *testing.T) {
	h := newHarness(t, sources(t), nil)
	reloads := make(chan shaders.Sources, 1)
	h.loop.Reloads = reloads
	require.NoError(t, h.loop.Start())
	old := h.glvars.Program.Handle
	live := h.gl.LiveObjects()

	src := sources(t)
	src.Fragment = "#version 410 core\nout vec4 c;\nvoid main() {\n    c = vec4(0.0, 1.0, 0.0, 1.0);\n}\n"
	reloads <- src
	require.NoError(t, h.loop.Step())

	assert.NotEqual(t, old, h.glvars.Program.Handle)
	assert.Equal(t, src, h.glvars.Sources)
	assert.Equal(t, live, h.gl.LiveObjects())
	assert.Equal(t, h.glvars.Program.Handle, h.gl.Draws[0].Program)
	assert.Equal(t, uint64(2), h.loop.Stats.Snapshot().PipelineBuilds)
	h.glvars.Release()
}

func TestRequestReloadUsesLoader(t *testing.T) {
	h := newHarness(t, sources(t), nil)
	loads := 0
	h.loop.Loader = func() (shaders.Sources, error) {
		loads++
		if loads == 2 {
			return shaders.Sources{}, errors.New("file vanished")
		}
		return sources(t), nil
	}
	require.NoError(t, h.loop.Start())

	h.loop.RequestReload()
	require.NoError(t, h.loop.Step())
	assert.Equal(t, uint64(2), h.loop.Stats.Snapshot().PipelineBuilds)

	h.loop.RequestReload()
	require.NoError(t, h.loop.Step())
	assert.Equal(t, uint64(2), h.loop.Stats.Snapshot().PipelineBuilds)
	assert.Contains(t, h.logs.String(), "file vanished")

	// no request, no load
	require.NoError(t, h.loop.Step())
	assert.Equal(t, 2, loads)
	h.glvars.Release()
}

func TestAllocationFailureIsFatal(t *testing.T) {
	h := newHarness(t, sources(t), nil)
	h.gl.ZeroPrograms = true

	err := h.loop.Run()
	assert.ErrorIs(t, err, gfx.ErrAllocation)
	assert.Equal(t, Closing, h.loop.State())
	assert.Zero(t, h.window.Swaps)
	assert.Zero(t, h.gl.LiveObjects())
}

func TestAllocationFailureMidLoop(t *testing.T) {
	h := newHarness(t, sources(t), nil)
	h.loop.RecreatePerFrame = true
	h.gl.ZeroBuffers = true

	err := h.loop.Run()
	assert.ErrorIs(t, err, gfx.ErrAllocation)
	assert.Zero(t, h.window.Swaps)
	assert.Zero(t, h.gl.LiveObjects())
}
