// Package telemetry records per-request metrics. Counters and latency
// histograms are exported through the prometheus default registry; the ops
// mux serves them at /metrics. Slow requests additionally get a warn log.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"aino/pkg/logger"
	"aino/pkg/pipeline"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aino_requests_total",
		Help: "Requests processed by the pipeline, by method and status.",
	}, []string{"method", "status"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aino_request_duration_seconds",
		Help:    "Pipeline processing time per request.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	haltsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aino_halts_total",
		Help: "Requests short-circuited by a middleware halt.",
	})
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, haltsTotal)
}

const slowThreshold = 200 * time.Millisecond

const startKey = "telemetry_start"

// Start records the request start time. Place it first in the pipeline.
func Start(ctx *pipeline.Context) *pipeline.Context {
	ctx.Bag[startKey] = time.Now()
	return ctx
}

// Finish observes duration and outcome. Wire it with pipeline.IgnoreHalt as
// the last entry so halted requests are still counted.
func Finish(ctx *pipeline.Context) *pipeline.Context {
	start, ok := ctx.Bag[startKey].(time.Time)
	if !ok {
		return ctx
	}
	dur := time.Since(start)
	requestsTotal.WithLabelValues(ctx.Method, strconv.Itoa(ctx.Status)).Inc()
	requestDuration.WithLabelValues(ctx.Method).Observe(dur.Seconds())
	if ctx.Halt {
		haltsTotal.Inc()
	}
	if dur > slowThreshold {
		logger.Warn("slow_request", "method", ctx.Method, "status", ctx.Status,
			"duration_ms", dur.Milliseconds(), "request_id", ctx.Bag["request_id"])
	}
	return ctx
}
