// Package frameloop drives the render loop: poll events, clear, draw,
// present, until the window is asked to close.
package frameloop

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/yanuz/graphics/lib/kbdctl"
	"github.com/yanuz/graphics/lib/metrics"
	"github.com/yanuz/graphics/lib/rendering"
	"github.com/yanuz/graphics/lib/rendering/shaders"
	"github.com/yanuz/graphics/lib/stats"
	"github.com/yanuz/graphics/lib/utils"
	"github.com/yanuz/graphics/lib/windowing"
)

type State int

const (
	Running State = iota
	Closing
)

func (s State) String() string {
	if s == Closing {
		return "closing"
	}
	return "running"
}

// Poller is the part of the windowing backend the loop needs.
type Poller interface {
	PollEvents()
}

type FrameLoop struct {
	// RecreatePerFrame rebuilds mesh and program at the start of every
	// frame and releases them after the swap, instead of building them
	// once before the loop.
	RecreatePerFrame bool

	// Reloads delivers new shader sources, typically from a shaderwatch
	// Watcher. May be nil.
	Reloads <-chan shaders.Sources
	// Loader re-reads shader sources on RequestReload. May be nil.
	Loader func() (shaders.Sources, error)

	Stats *stats.Stats

	poller Poller
	window windowing.Window
	glvars *rendering.GLVars

	state           State
	closeRequested  atomic.Bool
	reloadRequested atomic.Bool
	deltaTimer      utils.DeltaTimer
	logger          *slog.Logger
}

func New(poller Poller, window windowing.Window, glvars *rendering.GLVars) *FrameLoop {
	return &FrameLoop{
		Stats:  stats.New(),
		poller: poller,
		window: window,
		glvars: glvars,
		logger: slog.Default().With(slog.String("module", "frameloop")),
	}
}

func (l *FrameLoop) SetLogger(logger *slog.Logger) {
	l.logger = logger.With(slog.String("module", "frameloop"))
}

func (l *FrameLoop) State() State {
	return l.state
}

// RequestClose asks the loop to close the window at its next event check.
// Safe to call from any goroutine.
func (l *FrameLoop) RequestClose() {
	l.closeRequested.Store(true)
}

// RequestReload asks the loop to reload its shaders through Loader before
// the next frame. Safe to call from any goroutine.
func (l *FrameLoop) RequestReload() {
	l.reloadRequested.Store(true)
}

// Run draws frames until the window's should-close flag is set, then
// releases every GPU object it created. Only allocation failures are
// returned; shader diagnostics are logged and the loop carries on.
func (l *FrameLoop) Run() error {
	defer l.glvars.Release()

	err := l.Start()
	if err != nil {
		l.state = Closing
		return err
	}

	for !l.window.ShouldClose() {
		err := l.Step()
		if err != nil {
			l.state = Closing
			return err
		}
	}

	l.state = Closing
	l.logger.Info("window closed, shutting down")
	return nil
}

// Start enters the Running state, building mesh and program unless they
// are recreated every frame.
func (l *FrameLoop) Start() error {
	l.state = Running
	if l.RecreatePerFrame {
		return nil
	}
	return l.build()
}

// Step runs one iteration of the loop. Start must have been called.
func (l *FrameLoop) Step() error {
	l.poller.PollEvents()
	for _, ev := range l.window.Events() {
		if kbdctl.RequestsClose(ev) {
			l.window.SetShouldClose(true)
		}
	}
	if l.closeRequested.Load() {
		l.window.SetShouldClose(true)
	}

	err := l.applyReload()
	if err != nil {
		return err
	}

	l.glvars.ClearFrame()

	if l.RecreatePerFrame {
		err := l.build()
		if err != nil {
			return err
		}
	}

	l.glvars.Draw()
	l.window.SwapBuffers()

	if l.RecreatePerFrame {
		l.glvars.Release()
	}

	dt := l.deltaTimer.Next()
	if dt > 0 {
		metrics.FrameTime.Observe(dt.Seconds())
	}
	metrics.FramesDrawn.Inc()
	l.Stats.Update()
	return nil
}

func (l *FrameLoop) build() error {
	diagnostics, err := l.glvars.Build()
	if err != nil {
		return err
	}
	l.Stats.AddBuild(diagnostics)
	return nil
}

func (l *FrameLoop) applyReload() error {
	changed := false

	select {
	case src := <-l.Reloads:
		l.glvars.Sources = src
		changed = true
	default:
	}

	if l.reloadRequested.Swap(false) && l.Loader != nil {
		src, err := l.Loader()
		if err != nil {
			l.logger.Error(fmt.Sprintf("could not reload shaders: %s", err))
		} else {
			l.glvars.Sources = src
			changed = true
		}
	}

	// per-frame mode picks the new sources up on its own
	if !changed || l.RecreatePerFrame {
		return nil
	}

	l.logger.Info("rebuilding shader program")
	diagnostics, err := l.glvars.BuildProgram()
	if err != nil {
		return err
	}
	l.Stats.AddBuild(diagnostics)
	return nil
}
