package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	yaml "github.com/goccy/go-yaml"
	"github.com/yanuz/graphics/lib/log"
	"github.com/yanuz/graphics/lib/utils"
)

type Config struct {
	Window           WindowCfg
	BackgroundColour utils.Colour `yaml:"background_colour"`
	TriangleColour   utils.Colour `yaml:"triangle_colour"`
	Shaders          *ShadersCfg
	RecreatePerFrame bool `yaml:"recreate_per_frame"`
	Api              *ApiCfg
	LogLevel         string `yaml:"log_level"`
}

type WindowCfg struct {
	Width  int
	Height int
	Title  string
	VSync  bool `yaml:"vsync"`
}

type ShadersCfg struct {
	Vertex   CfgPath
	Fragment CfgPath
	Watch    bool
}

type ApiCfg struct {
	Bind           string
	EnableProfiler bool `yaml:"enable_profiler"`
}

const maxWindowSize = 16384

// Default is the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Window: WindowCfg{
			Width:  800,
			Height: 600,
			Title:  "Yanuz's Graphics",
			VSync:  true,
		},
		BackgroundColour: utils.Colour{R: 0.2, G: 0.3, B: 0.3, A: 1.0},
		TriangleColour:   utils.Colour{R: 1.0, G: 0.5, B: 0.2, A: 1.0},
		LogLevel:         "info",
	}
}

// Parse reads filename on top of Default and validates the result.
func Parse(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %s", filename, err)
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
			slog.Warn(fmt.Sprintf("could not close %s: %s", filename, err), slog.String("module", "config"))
		}
	}(f)

	absFilename, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("somehow, %s is malformed: %w", filename, err)
	}
	UnmarshalBase = filepath.Dir(absFilename)

	m := yaml.NewDecoder(f)
	cfg := Default()
	err = m.Decode(cfg)
	if err != nil {
		return nil, err
	}
	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return cfg, err
}

func (c *Config) Validate() error {
	err := c.Window.Validate()
	if err != nil {
		return fmt.Errorf("window is invalid: %w", err)
	}
	if err := c.BackgroundColour.Validate(); err != nil {
		return fmt.Errorf("background_colour is invalid: %w", err)
	}
	if err := c.TriangleColour.Validate(); err != nil {
		return fmt.Errorf("triangle_colour is invalid: %w", err)
	}
	if c.Shaders != nil {
		err = c.Shaders.Validate()
		if err != nil {
			return fmt.Errorf("shaders are invalid: %w", err)
		}
	}
	if c.Api != nil {
		err = c.Api.Validate()
		if err != nil {
			return fmt.Errorf("api is invalid: %w", err)
		}
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Window:\n")
	b.WriteString(fmt.Sprintf("  %dx%d %q (vsync %t)\n", c.Window.Width, c.Window.Height, c.Window.Title, c.Window.VSync))

	b.WriteString("\nColours:\n")
	b.WriteString(fmt.Sprintf("  background %s\n", c.BackgroundColour))
	b.WriteString(fmt.Sprintf("  triangle   %s\n", c.TriangleColour))

	b.WriteString("\nShaders:\n")
	if c.Shaders == nil {
		b.WriteString("  built-in\n")
	} else {
		b.WriteString(fmt.Sprintf("  vertex   %s\n", c.Shaders.Vertex.OrBuiltin()))
		b.WriteString(fmt.Sprintf("  fragment %s\n", c.Shaders.Fragment.OrBuiltin()))
		b.WriteString(fmt.Sprintf("  watch    %t\n", c.Shaders.Watch))
	}

	b.WriteString("\nResources:\n")
	if c.RecreatePerFrame {
		b.WriteString("  recreated every frame\n")
	} else {
		b.WriteString("  built once\n")
	}

	if c.Api != nil {
		b.WriteString(fmt.Sprintf("\nApi:\n  %s\n", c.Api.Bind))
	}

	return b.String()
}

func (w *WindowCfg) Validate() error {
	if w.Width <= 0 || w.Height <= 0 {
		return fmt.Errorf("size must be positive, got %dx%d", w.Width, w.Height)
	}
	if w.Width > maxWindowSize || w.Height > maxWindowSize {
		return fmt.Errorf("size %dx%d is larger than %d", w.Width, w.Height, maxWindowSize)
	}
	if w.Title == "" {
		return fmt.Errorf("title must be specified")
	}
	return nil
}

func (s *ShadersCfg) Validate() error {
	if s.Watch && s.Vertex == "" && s.Fragment == "" {
		return fmt.Errorf("cannot watch shaders without a vertex or fragment path")
	}
	return nil
}

func (a *ApiCfg) Validate() error {
	if a.Bind == "" {
		return fmt.Errorf("bind address must be specified")
	}
	return nil
}
