package shaderwatch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/jhenstridge/go-inotify"
	"github.com/yanuz/graphics/lib/rendering/shaders"
)

// settleTime gives editors a moment to finish writing before we read.
const settleTime = 100 * time.Millisecond

// Watcher reloads shader sources whenever one of the watched files is
// written and offers them on Updates. Only the newest pending sources are
// kept.
type Watcher struct {
	Updates chan shaders.Sources

	paths []string
	load  func() (shaders.Sources, error)
}

func New(load func() (shaders.Sources, error), paths ...string) *Watcher {
	var nonEmpty []string
	for _, p := range paths {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return &Watcher{
		Updates: make(chan shaders.Sources, 1),
		paths:   nonEmpty,
		load:    load,
	}
}

// Start installs inotify watches on the directories holding the shader
// files and processes events in the background until ctx is done. Watching
// the directory keeps reloads working when an editor saves by renaming a
// temporary file over the original.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := inotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create inotify watcher: %w", err)
	}

	for dir := range w.files() {
		_, err = watcher.AddWatch(dir, watchMask|inotify.IN_ONLYDIR)
		if err != nil {
			_ = watcher.Close()
			return fmt.Errorf("could not watch %s: %w", dir, err)
		}
	}

	go w.run(ctx, watcher)
	return nil
}

// watchMask covers in-place writes and files renamed into place.
const watchMask = inotify.IN_CLOSE_WRITE | inotify.IN_MOVED_TO

// files maps each watched directory to the shader file names in it.
func (w *Watcher) files() map[string]map[string]bool {
	dirs := make(map[string]map[string]bool)
	for _, p := range w.paths {
		dir, name := filepath.Split(filepath.Clean(p))
		dir = filepath.Clean(dir)
		if dirs[dir] == nil {
			dirs[dir] = make(map[string]bool)
		}
		dirs[dir][name] = true
	}
	return dirs
}

func (w *Watcher) run(ctx context.Context, watcher *inotify.Watcher) {
	defer func(watcher *inotify.Watcher) {
		err := watcher.Close()
		if err != nil {
			slog.Debug(fmt.Sprintf("could not close inotify watcher: %s", err), slog.String("module", "shaderwatch"))
		}
	}(watcher)

	dirs := w.files()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Event:
			if !ok {
				return
			}
			if !w.relevant(dirs, ev) {
				continue
			}
			slog.Debug(fmt.Sprintf("Reloading shaders due to inotify event on %s", ev.Name), slog.String("module", "shaderwatch"))
			time.Sleep(settleTime)
			w.reload()
		}
	}
}

func (w *Watcher) relevant(dirs map[string]map[string]bool, ev inotify.Event) bool {
	if ev.Mask&watchMask == 0 || ev.Watch == nil {
		return false
	}
	return dirs[filepath.Clean(ev.Watch.Path)][ev.Name]
}

func (w *Watcher) reload() {
	src, err := w.load()
	if err != nil {
		slog.Error(fmt.Sprintf("Error loading shaders: %s", err), slog.String("module", "shaderwatch"))
		return
	}
	w.Offer(src)
}

// Offer queues src, replacing anything not yet picked up.
func (w *Watcher) Offer(src shaders.Sources) {
	for {
		select {
		case w.Updates <- src:
			return
		default:
		}
		select {
		case <-w.Updates:
		default:
		}
	}
}
