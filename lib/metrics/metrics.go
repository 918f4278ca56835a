package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FramesDrawn = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yanuz_frames_drawn_total",
		Help: "Total number of frames presented",
	})
	PipelineBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yanuz_pipeline_builds_total",
		Help: "Total number of times the shader program was built",
	})
	MeshUploads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yanuz_mesh_uploads_total",
		Help: "Total number of vertex buffer uploads",
	})
	ShaderDiagnostics = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yanuz_shader_diagnostics_total",
		Help: "Total number of shader compile and program link failures",
	}, []string{"kind"})
	FrameTime = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "yanuz_frame_duration_seconds",
		Help:    "Time between two presented frames",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
	})
)

// Handler should usually be mounted at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
