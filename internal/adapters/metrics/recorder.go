// Package metrics records pipeline activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/kiln/internal/core/ports"
)

const namespace = "kiln"

var _ ports.MetricsRecorder = (*Recorder)(nil)

// Recorder implements ports.MetricsRecorder on a private Prometheus registry.
type Recorder struct {
	reg           *prom.Registry
	taskDuration  *prom.HistogramVec
	taskResults   *prom.CounterVec
	watchTriggers *prom.CounterVec
	reloads       prom.Counter
	optimized     *prom.CounterVec
}

// NewRecorder registers kiln's metrics on reg. A nil reg gets a fresh registry.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	r := &Recorder{
		reg: reg,
		taskDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Duration of transform runs",
			Buckets:   prom.DefBuckets,
		}, []string{"task"}),
		taskResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "task_results_total",
			Help:      "Transform runs by outcome",
		}, []string{"task", "result"}),
		watchTriggers: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "watch_triggers_total",
			Help:      "Debounced watch triggers by reaction task",
		}, []string{"reaction"}),
		reloads: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Reload notifications sent to preview clients",
		}),
		optimized: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "optimized_documents_total",
			Help:      "Documents processed by the post-optimizer by outcome",
		}, []string{"result"}),
	}
	reg.MustRegister(r.taskDuration, r.taskResults, r.watchTriggers, r.reloads, r.optimized)
	return r
}

// ObserveTask records a finished transform run.
func (r *Recorder) ObserveTask(name string, d time.Duration, err error) {
	r.taskDuration.WithLabelValues(name).Observe(d.Seconds())
	r.taskResults.WithLabelValues(name, result(err)).Inc()
}

// IncWatchTrigger counts a debounced trigger.
func (r *Recorder) IncWatchTrigger(reaction string) {
	r.watchTriggers.WithLabelValues(reaction).Inc()
}

// IncReload counts a reload notification.
func (r *Recorder) IncReload() {
	r.reloads.Inc()
}

// ObserveOptimize counts one processed document.
func (r *Recorder) ObserveOptimize(err error) {
	r.optimized.WithLabelValues(result(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func result(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}

// Nop is a MetricsRecorder that records nothing.
type Nop struct{}

// ObserveTask does nothing.
func (Nop) ObserveTask(string, time.Duration, error) {}

// IncWatchTrigger does nothing.
func (Nop) IncWatchTrigger(string) {}

// IncReload does nothing.
func (Nop) IncReload() {}

// ObserveOptimize does nothing.
func (Nop) ObserveOptimize(error) {}
