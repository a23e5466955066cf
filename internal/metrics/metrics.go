package metrics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"clockdrift/internal/analysis"
	"clockdrift/internal/filter"
)

// Skip reasons recorded on clockdrift_events_skipped_total.
const (
	ReasonNoReference        = "no_reference"
	ReasonNoPreferredChannel = "no_preferred_channel"
	ReasonOrphanRows         = "orphan_rows"
)

// Recorder owns a private registry with the batch counters.
type Recorder struct {
	registry *prometheus.Registry

	picksLoaded   prometheus.Counter
	stageRows     *prometheus.CounterVec
	stageDropped  *prometheus.CounterVec
	pairOutcomes  *prometheus.CounterVec
	eventsSkipped *prometheus.CounterVec
	rowsPlotted   *prometheus.CounterVec
	batchDuration prometheus.Gauge
	lastSuccess   prometheus.Gauge
}

// NewRecorder builds a Recorder with every collector registered.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	r := &Recorder{
		registry: registry,
		picksLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clockdrift_picks_loaded_total",
			Help: "Pick rows read from the input table.",
		}),
		stageRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clockdrift_stage_rows_total",
			Help: "Rows that survived each filter stage.",
		}, []string{"stage"}),
		stageDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clockdrift_stage_dropped_total",
			Help: "Rows removed by each filter stage.",
		}, []string{"stage"}),
		pairOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clockdrift_pairs_total",
			Help: "Reference/target pairs by outcome.",
		}, []string{"outcome"}),
		eventsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clockdrift_events_skipped_total",
			Help: "Events or rows skipped during reference broadcast, by reason.",
		}, []string{"reason"}),
		rowsPlotted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clockdrift_rows_plotted_total",
			Help: "Relative residual rows produced per target network.",
		}, []string{"network"}),
		batchDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clockdrift_batch_duration_seconds",
			Help: "Wall time of the last analysis batch.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clockdrift_last_success_timestamp_seconds",
			Help: "Unix time of the last completed analysis batch.",
		}),
	}
	registry.MustRegister(
		r.picksLoaded,
		r.stageRows,
		r.stageDropped,
		r.pairOutcomes,
		r.eventsSkipped,
		r.rowsPlotted,
		r.batchDuration,
		r.lastSuccess,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObservePicks counts rows loaded from the input.
func (r *Recorder) ObservePicks(n int) {
	r.picksLoaded.Add(float64(n))
}

// ObserveStages records per-stage survivors and drops.
func (r *Recorder) ObserveStages(counts []filter.StageCount) {
	for _, c := range counts {
		r.stageRows.WithLabelValues(c.Name).Add(float64(c.After))
		r.stageDropped.WithLabelValues(c.Name).Add(float64(c.Dropped()))
	}
}

// ObserveRunSummary records pair outcomes and the batch duration.
func (r *Recorder) ObserveRunSummary(summary analysis.RunSummary) {
	for _, p := range summary.Pairs {
		r.pairOutcomes.WithLabelValues(p.Outcome).Inc()
	}
	r.batchDuration.Set(summary.Duration.Seconds())
	r.lastSuccess.Set(float64(time.Now().Unix()))
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Sink adapts a Recorder to the analysis sink interface.
type Sink struct {
	Recorder *Recorder
}

// Name identifies the sink in logs.
func (s Sink) Name() string { return "metrics" }

// Consume records the per-pair stage counts and skips.
func (s Sink) Consume(_ context.Context, res *analysis.Result) error {
	r := s.Recorder
	r.ObserveStages(res.Stages)
	r.eventsSkipped.WithLabelValues(ReasonNoReference).Add(float64(res.Broadcast.NoReference))
	r.eventsSkipped.WithLabelValues(ReasonNoPreferredChannel).Add(float64(res.Broadcast.NoPreferredChannel))
	r.eventsSkipped.WithLabelValues(ReasonOrphanRows).Add(float64(res.Orphans))
	r.rowsPlotted.WithLabelValues(res.Pair.Target.Network).Add(float64(len(res.Rows)))
	return nil
}
