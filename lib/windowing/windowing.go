// Package windowing is the boundary between the renderer and whatever
// provides its native window, GL context and input events.
package windowing

// Key codes follow GLFW's numbering so backends can convert directly.
type Key int

const (
	KeyQ      Key = 81
	KeyEscape Key = 256
)

type Action int

const (
	Release Action = 0
	Press   Action = 1
	Repeat  Action = 2
)

type ModifierKey int

const (
	ModShift   ModifierKey = 0x0001
	ModControl ModifierKey = 0x0002
)

// Event is one of CloseEvent or KeyEvent.
type Event interface {
	isEvent()
}

// CloseEvent is sent when the user clicks the window's close control.
type CloseEvent struct{}

type KeyEvent struct {
	Key      Key
	Scancode int
	Action   Action
	Mods     ModifierKey
}

func (CloseEvent) isEvent() {}
func (KeyEvent) isEvent()   {}

// WindowCfg is what CreateWindow needs. The context version and profile are
// not part of it: they are fixed by the backend.
type WindowCfg struct {
	Width  int
	Height int
	Title  string
	VSync  bool
}

type Backend interface {
	Init() error
	CreateWindow(cfg WindowCfg) (Window, error)
	// PollEvents processes pending events without blocking and queues
	// them on their window.
	PollEvents()
	Terminate()
}

type Window interface {
	MakeCurrent()
	ShouldClose() bool
	SetShouldClose(bool)
	SwapBuffers()
	// Events drains the events queued by the last PollEvents.
	Events() []Event
	Destroy()
}
