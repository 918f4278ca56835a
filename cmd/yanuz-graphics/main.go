package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"github.com/yanuz/graphics/lib/app"
	"github.com/yanuz/graphics/lib/config"
	"github.com/yanuz/graphics/lib/gfx"
	ylog "github.com/yanuz/graphics/lib/log"
	"github.com/yanuz/graphics/lib/rendering/glbackend"
	"github.com/yanuz/graphics/lib/sink/windowsink"
	"golang.org/x/sys/unix"
)

func init() {
	// The OpenGL stuff must be in one thread
	runtime.LockOSThread()
}

func main() {
	if len(os.Args) > 2 {
		log.Fatalf("Usage: %s [config file]", os.Args[0])
	}

	cfg := config.Default()
	if len(os.Args) == 2 {
		var err error
		cfg, err = config.Parse(os.Args[1])
		if err != nil {
			log.Fatal(err)
		}
	}

	level, err := ylog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	slog.SetDefault(slog.New(ylog.NewHandler(&slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)
	defer stop()

	err = app.Run(ctx, cfg, windowsink.Backend{}, func() (gfx.Backend, error) {
		err := glbackend.Init()
		if err != nil {
			return nil, err
		}
		return glbackend.Backend{}, nil
	})
	if err != nil {
		log.Fatalf("could not run: %s", err)
	}
}
