package kbdctl

import (
	"log/slog"

	"github.com/yanuz/graphics/lib/windowing"
)

// RequestsClose reports whether ev asks the window to close: the close
// control, Escape pressed, or Ctrl+Shift+Q released.
func RequestsClose(ev windowing.Event) bool {
	switch e := ev.(type) {
	case windowing.CloseEvent:
		return true
	case windowing.KeyEvent:
		if e.Action == windowing.Press && e.Key == windowing.KeyEscape {
			return true
		}
		if e.Action == windowing.Release &&
			e.Key == windowing.KeyQ &&
			e.Mods&windowing.ModControl != 0 &&
			e.Mods&windowing.ModShift != 0 {
			slog.Info("told to quit, exiting", slog.String("module", "kbdctl"))
			return true
		}
	}
	return false
}
