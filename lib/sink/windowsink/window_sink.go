package windowsink

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/yanuz/graphics/lib/windowing"
)

// Backend is the GLFW implementation of windowing.Backend. All of its
// methods must be called from the main, OS-locked thread.
type Backend struct{}

var _ windowing.Backend = Backend{}

func (Backend) Init() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %w", err)
	}
	return nil
}

func (Backend) CreateWindow(cfg windowing.WindowCfg) (windowing.Window, error) {
	slog.Debug(fmt.Sprintf("Initializing %dx%d window", cfg.Width, cfg.Height), slog.String("module", "windowsink"))

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	w := &WindowSink{Window: window, vsync: cfg.VSync}
	window.SetCloseCallback(func(_ *glfw.Window) {
		w.push(windowing.CloseEvent{})
	})
	window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		w.push(windowing.KeyEvent{
			Key:      windowing.Key(key),
			Scancode: scancode,
			Action:   windowing.Action(action),
			Mods:     windowing.ModifierKey(mods),
		})
	})
	return w, nil
}

func (Backend) PollEvents() {
	glfw.PollEvents()
}

func (Backend) Terminate() {
	glfw.Terminate()
}

// WindowSink is a GLFW window whose callbacks feed an event queue.
type WindowSink struct {
	Window *glfw.Window

	vsync  bool
	events []windowing.Event
}

func (w *WindowSink) push(ev windowing.Event) {
	w.events = append(w.events, ev)
}

func (w *WindowSink) MakeCurrent() {
	w.Window.MakeContextCurrent()
	if w.vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
}

func (w *WindowSink) ShouldClose() bool {
	return w.Window.ShouldClose()
}

func (w *WindowSink) SetShouldClose(v bool) {
	w.Window.SetShouldClose(v)
}

func (w *WindowSink) SwapBuffers() {
	w.Window.SwapBuffers()
}

func (w *WindowSink) Events() []windowing.Event {
	events := w.events
	w.events = nil
	return events
}

func (w *WindowSink) Destroy() {
	w.Window.Destroy()
}
