// Package app wires configuration, window, renderer, shader watcher and API
// into one running program.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yanuz/graphics/lib/api"
	"github.com/yanuz/graphics/lib/config"
	"github.com/yanuz/graphics/lib/frameloop"
	"github.com/yanuz/graphics/lib/gfx"
	"github.com/yanuz/graphics/lib/rendering"
	"github.com/yanuz/graphics/lib/rendering/mesh"
	"github.com/yanuz/graphics/lib/rendering/shaders"
	"github.com/yanuz/graphics/lib/shaderwatch"
	"github.com/yanuz/graphics/lib/windowing"
)

// GLInit loads the GL entry points for the context made current on the
// window and returns the driver to render with.
type GLInit func() (gfx.Backend, error)

// Run opens the window described by cfg and draws until it is closed or
// ctx is cancelled. It must be called from the thread that owns the GL
// context.
func Run(ctx context.Context, cfg *config.Config, wb windowing.Backend, glInit GLInit) error {
	logger := slog.Default().With(slog.String("module", "app"))

	err := wb.Init()
	if err != nil {
		return fmt.Errorf("could not initialise windowing: %w", err)
	}
	defer wb.Terminate()

	window, err := wb.CreateWindow(windowing.WindowCfg{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Title:  cfg.Window.Title,
		VSync:  cfg.Window.VSync,
	})
	if err != nil {
		return fmt.Errorf("could not create window: %w", err)
	}
	defer window.Destroy()

	window.MakeCurrent()

	backend, err := glInit()
	if err != nil {
		return fmt.Errorf("could not initialise renderer: %w", err)
	}

	loader, err := newLoader(cfg)
	if err != nil {
		return err
	}
	sources, err := loader()
	if err != nil {
		return fmt.Errorf("could not load shaders: %w", err)
	}

	glvars := rendering.NewGLVars(backend, sources, cfg.BackgroundColour)
	loop := frameloop.New(wb, window, glvars)
	loop.RecreatePerFrame = cfg.RecreatePerFrame
	loop.Loader = loader

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Shaders != nil && cfg.Shaders.Watch {
		watcher := shaderwatch.New(loader, string(cfg.Shaders.Vertex), string(cfg.Shaders.Fragment))
		err = watcher.Start(ctx)
		if err != nil {
			logger.Warn(fmt.Sprintf("shader hot reload disabled: %s", err))
		} else {
			loop.Reloads = watcher.Updates
		}
	}

	theApi := api.ServeInBackground(cfg, loop, loop.Stats)
	if theApi != nil {
		defer func() {
			_ = theApi.Close()
		}()
	}

	go func() {
		<-ctx.Done()
		loop.RequestClose()
	}()

	logger.Info(fmt.Sprintf("rendering %dx%d window %q", cfg.Window.Width, cfg.Window.Height, cfg.Window.Title))
	return loop.Run()
}

func newLoader(cfg *config.Config) (func() (shaders.Sources, error), error) {
	shaderer, err := shaders.NewShaderer()
	if err != nil {
		return nil, fmt.Errorf("could not parse shader templates: %w", err)
	}

	data := &shaders.ShaderData{
		GLSLVersion:   shaders.GLSLVersion,
		PositionIndex: mesh.PositionLayout.Index,
		PositionName:  mesh.PositionLayout.Name,
		Colour:        cfg.TriangleColour,
	}

	var vertexPath, fragmentPath string
	if cfg.Shaders != nil {
		vertexPath = string(cfg.Shaders.Vertex)
		fragmentPath = string(cfg.Shaders.Fragment)
	}

	return func() (shaders.Sources, error) {
		return shaderer.LoadSources(vertexPath, fragmentPath, data)
	}, nil
}
