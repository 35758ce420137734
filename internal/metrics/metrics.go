// Package metrics holds the Prometheus collectors shared by the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "weave"

var (
	GraphSyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "graph_sync_total",
		Help:      "Graph saves by result.",
	}, []string{"result"})

	DroppedEdges = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "graph_sync_dropped_edges_total",
		Help:      "Submitted edges left out because an endpoint did not resolve.",
	})

	GraphSyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "graph_sync_duration_seconds",
		Help:      "Time spent replacing a workflow graph.",
		Buckets:   prometheus.DefBuckets,
	})

	Dispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "executions_dispatched_total",
		Help:      "Run requests sent to the execution engine by result.",
	}, []string{"result"})

	ProgressPolls = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "execution_progress_polls_total",
		Help:      "Progress lookups served.",
	})

	StageEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_stage_events_total",
		Help:      "Upload stage events consumed, by stage and result.",
	}, []string{"stage", "result"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// GinMiddleware records request latency keyed by the matched route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
