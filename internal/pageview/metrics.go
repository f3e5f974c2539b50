package pageview

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	windowReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "folio",
		Subsystem: "viewport",
		Name:      "window_reloads_total",
		Help:      "Window replacements, by cause.",
	}, []string{"cause"})

	windowSuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "folio",
		Subsystem: "viewport",
		Name:      "window_suppressed_total",
		Help:      "Organic window changes dropped by hysteresis.",
	})

	navigationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "folio",
		Subsystem: "viewport",
		Name:      "navigations_total",
		Help:      "Explicit navigation requests, by outcome.",
	}, []string{"outcome"})

	pageRendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "folio",
		Subsystem: "viewport",
		Name:      "page_renders_total",
		Help:      "Page render results reported back to the viewport, by status.",
	}, []string{"status"})

	materializedPages = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "folio",
		Subsystem: "viewport",
		Name:      "materialized_pages",
		Help:      "Pages currently materialized, including retained ones.",
	})
)
