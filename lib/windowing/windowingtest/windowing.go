// Package windowingtest provides a scripted windowing.Backend.
package windowingtest

import (
	"fmt"

	"github.com/yanuz/graphics/lib/windowing"
)

// Backend hands out a single Window. Script, when set, is called on every
// PollEvents with the number of polls so far (starting at 1) and returns
// the events to queue.
type Backend struct {
	Script func(poll int) []windowing.Event

	FailInit   bool
	FailCreate bool

	Initialized bool
	Terminated  bool
	Polls       int
	Window      *Window
}

var _ windowing.Backend = (*Backend)(nil)

func (b *Backend) Init() error {
	if b.FailInit {
		return fmt.Errorf("no display")
	}
	b.Initialized = true
	return nil
}

func (b *Backend) CreateWindow(cfg windowing.WindowCfg) (windowing.Window, error) {
	if !b.Initialized {
		return nil, fmt.Errorf("backend not initialised")
	}
	if b.FailCreate {
		return nil, fmt.Errorf("could not create %dx%d window", cfg.Width, cfg.Height)
	}
	b.Window = &Window{Cfg: cfg}
	return b.Window, nil
}

func (b *Backend) PollEvents() {
	b.Polls++
	if b.Script == nil || b.Window == nil {
		return
	}
	b.Window.queue = append(b.Window.queue, b.Script(b.Polls)...)
}

func (b *Backend) Terminate() {
	b.Terminated = true
}

type Window struct {
	Cfg windowing.WindowCfg

	Current   bool
	Swaps     int
	Destroyed bool
	// CloseResets counts SetShouldClose(false) calls made after the flag
	// was already set.
	CloseResets int

	shouldClose bool
	queue       []windowing.Event
}

var _ windowing.Window = (*Window)(nil)

func (w *Window) MakeCurrent() {
	w.Current = true
}

func (w *Window) ShouldClose() bool {
	return w.shouldClose
}

func (w *Window) SetShouldClose(v bool) {
	if w.shouldClose && !v {
		w.CloseResets++
	}
	w.shouldClose = v
}

func (w *Window) SwapBuffers() {
	w.Swaps++
}

func (w *Window) Events() []windowing.Event {
	events := w.queue
	w.queue = nil
	return events
}

func (w *Window) Destroy() {
	w.Destroyed = true
}
