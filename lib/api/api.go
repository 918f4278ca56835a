package api

//go:generate go tool swag init -g api.go -o docs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "github.com/yanuz/graphics/lib/api/docs"
	"github.com/yanuz/graphics/lib/config"
	"github.com/yanuz/graphics/lib/metrics"
	"github.com/yanuz/graphics/lib/stats"
)

// Controller is the part of the render loop the API may poke. Both calls
// only latch a request; the loop acts on it between frames.
type Controller interface {
	RequestClose()
	RequestReload()
}

// @title			yanuz-graphics
// @version		1.0
// @description	Control and status API of the triangle renderer
type Api struct {
	srv  http.Server
	mux  *http.ServeMux
	cfg  *config.Config
	loop Controller

	Stats *stats.Stats

	wsMutex   sync.Mutex
	wsClients map[*websocket.Conn]bool
}

func New(cfg *config.Config, loop Controller, s *stats.Stats) *Api {
	a := &Api{}
	a.cfg = cfg
	a.mux = http.NewServeMux()
	a.loop = loop
	a.srv.Addr = cfg.Api.Bind
	a.srv.Handler = a.mux
	a.wsClients = make(map[*websocket.Conn]bool)
	a.Stats = s

	if cfg.Api.EnableProfiler {
		a.mux.HandleFunc("/prof", a.profileCPU)
	}
	a.mux.HandleFunc("/api/kill", a.suicide)
	a.mux.HandleFunc("/api/reload", a.reload)
	a.mux.HandleFunc("/api/stats", a.getStats)
	a.mux.HandleFunc("/api/config", a.handleConfig)
	a.mux.HandleFunc("/api/ws", a.handleWebsocket)
	a.mux.Handle("/metrics", metrics.Handler())
	a.mux.Handle("/swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	return a
}

func (a *Api) Handler() http.Handler {
	return a.mux
}

func (a *Api) Serve() error {
	return a.srv.ListenAndServe()
}

func (a *Api) log(msg string, args ...any) {
	slog.Info(fmt.Sprintf(msg, args...), slog.String("module", "api"))
}

func (a *Api) profileCPU(w http.ResponseWriter, _ *http.Request) {
	err := pprof.StartCPUProfile(w)
	if err != nil {
		http.Error(w, fmt.Sprintf("Could not start CPU profile: %s", err), http.StatusInternalServerError)
		return
	}
	time.Sleep(10 * time.Second)
	pprof.StopCPUProfile()
}

// @Summary	Get render statistics
// @Router		/api/stats [get]
// @Tags		base
// @Produce	json
// @Success	200	{object}	stats.Snapshot
func (a *Api) getStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	err := encoder.Encode(a.Stats.Snapshot())
	if err != nil {
		http.Error(w, fmt.Sprintf("could encode stats: %s", err), http.StatusInternalServerError)
		return
	}
}

type Config struct {
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	Title            string `json:"title"`
	VertexShader     string `json:"vertex_shader"`
	FragmentShader   string `json:"fragment_shader"`
	RecreatePerFrame bool   `json:"recreate_per_frame"`
}

// @Summary	Get the running configuration
// @Router		/api/config [get]
// @Tags		base
// @Produce	json
// @Success	200	{object}	api.Config
func (a *Api) handleConfig(w http.ResponseWriter, _ *http.Request) {
	result := &Config{
		Width:            a.cfg.Window.Width,
		Height:           a.cfg.Window.Height,
		Title:            a.cfg.Window.Title,
		VertexShader:     "built-in",
		FragmentShader:   "built-in",
		RecreatePerFrame: a.cfg.RecreatePerFrame,
	}
	if a.cfg.Shaders != nil {
		result.VertexShader = a.cfg.Shaders.Vertex.OrBuiltin()
		result.FragmentShader = a.cfg.Shaders.Fragment.OrBuiltin()
	}
	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	err := encoder.Encode(result)
	if err != nil {
		http.Error(w, fmt.Sprintf("couldn't encode config: %s", err), http.StatusInternalServerError)
		return
	}
}

// ServeInBackground starts the API when cfg.Api is set and returns nil
// otherwise.
func ServeInBackground(cfg *config.Config, loop Controller, s *stats.Stats) *Api {
	var theApi *Api
	if cfg.Api != nil {
		theApi = New(cfg, loop, s)

		theApi.log("starting web server on %s", cfg.Api.Bind)
		go func() {
			err := theApi.Serve()
			if err != nil && err != http.ErrServerClosed {
				slog.Error(fmt.Sprintf("could not start web server: %s", err), slog.String("module", "api"))
			}
		}()
	}
	return theApi
}

func (a *Api) Close() error {
	return a.srv.Close()
}
