package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics exposes the published render statistics
type metrics struct {
	registry  *prometheus.Registry
	frameTime prometheus.Histogram
	events    *prometheus.CounterVec
}

func newMetrics(d *display) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		frameTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "reflax",
			Name:      "frame_time_seconds",
			Help:      "Render time of completed live frames.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reflax",
			Name:      "input_events_total",
			Help:      "Input events received by the web display, by type.",
		}, []string{"type"}),
	}

	stat := func(name, help string, value func(Snapshot) float64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "reflax",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(d.get()) })
	}
	gauge := func(name, help string, value func(Snapshot) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "reflax",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(d.get()) })
	}

	m.registry.MustRegister(
		m.frameTime,
		m.events,
		stat("passes_total", "Completed render passes.", func(s Snapshot) float64 { return float64(s.Stats.Passes) }),
		stat("pixels_total", "Rendered pixels.", func(s Snapshot) float64 { return float64(s.Stats.Pixels) }),
		stat("rays_total", "Primary rays traced.", func(s Snapshot) float64 { return float64(s.Stats.Rays) }),
		gauge("blended_frames", "Frames blended into the still image.", func(s Snapshot) float64 { return float64(s.Status.BlendedFrames) }),
		gauge("progress_percent", "Progress of the pass in progress.", func(s Snapshot) float64 { return s.Status.Progress }),
	)
	return m
}
