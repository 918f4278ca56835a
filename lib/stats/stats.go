package stats

import (
	"errors"
	"sync"
	"time"

	"github.com/yanuz/graphics/lib/rendering/shaders"
)

// Snapshot is the JSON form served by the API.
type Snapshot struct {
	Frames          uint64  `json:"frames"`
	FPS             uint64  `json:"fps"`
	Uptime          float64 `json:"uptime"`
	PipelineBuilds  uint64  `json:"pipeline_builds"`
	CompileFailures uint64  `json:"compile_failures"`
	LinkFailures    uint64  `json:"link_failures"`
	LastDiagnostic  string  `json:"last_diagnostic,omitempty"`
	WsClients       int     `json:"ws_clients"`
}

// Stats is written by the render loop and read by API goroutines.
type Stats struct {
	mu  sync.Mutex
	cur Snapshot

	frameCounter uint64
	frameTimer   time.Time
	start        time.Time

	now func() time.Time
}

func New() *Stats {
	s := &Stats{now: time.Now}
	s.start = s.now()
	s.frameTimer = s.start
	return s
}

// Update is called once per presented frame.
func (s *Stats) Update() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.cur.Frames++
	s.frameCounter++
	if now.Sub(s.frameTimer) >= 1*time.Second {
		s.cur.FPS = s.frameCounter
		s.frameCounter = 0
		s.frameTimer = now
	}

	s.cur.Uptime = float64(now.Sub(s.start).Nanoseconds()) / 1e9
}

// AddBuild records one program build and the diagnostics it produced.
func (s *Stats) AddBuild(diagnostics []error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur.PipelineBuilds++
	for _, d := range diagnostics {
		var compileErr *shaders.CompileError
		var linkErr *shaders.LinkError
		switch {
		case errors.As(d, &compileErr):
			s.cur.CompileFailures++
		case errors.As(d, &linkErr):
			s.cur.LinkFailures++
		}
		s.cur.LastDiagnostic = d.Error()
	}
}

func (s *Stats) SetWsClients(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.WsClients = n
}

func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}
