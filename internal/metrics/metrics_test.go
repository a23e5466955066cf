package metrics_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"clockdrift/internal/analysis"
	"clockdrift/internal/filter"
	"clockdrift/internal/metrics"
	"clockdrift/internal/picks"
	"clockdrift/internal/residual"
)

func newResult() *analysis.Result {
	return &analysis.Result{
		Pair:      analysis.Pair{Reference: picks.StationID{Network: "AU", Station: "ARMA"}, Target: picks.NewTargetSet("7D")},
		Rows:      make([]residual.Row, 4),
		Stages:    []filter.StageCount{{Name: filter.StageQuality, Before: 100, After: 90}},
		Broadcast: residual.Summary{Events: 5, Broadcast: 3, NoReference: 1, NoPreferredChannel: 1},
		Orphans:   2,
	}
}

func TestRecorderPairOutcomes(t *testing.T) {
	rec := metrics.NewRecorder()
	rec.ObserveRunSummary(analysis.RunSummary{
		Pairs: []analysis.PairOutcome{
			{Outcome: analysis.OutcomeAnalyzed},
			{Outcome: analysis.OutcomeNoCommon},
			{Outcome: analysis.OutcomeAnalyzed},
		},
		Duration: 2 * time.Second,
	})

	expected := `
# HELP clockdrift_pairs_total Reference/target pairs by outcome.
# TYPE clockdrift_pairs_total counter
clockdrift_pairs_total{outcome="analyzed"} 2
clockdrift_pairs_total{outcome="no_common_events"} 1
`
	if err := testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected), "clockdrift_pairs_total"); err != nil {
		t.Fatalf("pair outcomes: %v", err)
	}
}

func TestSinkRecordsSkipsAndStages(t *testing.T) {
	rec := metrics.NewRecorder()
	rec.ObservePicks(120)
	rec.ObserveStages([]filter.StageCount{{Name: filter.StageChannel, Before: 120, After: 100}})
	if err := (metrics.Sink{Recorder: rec}).Consume(context.Background(), newResult()); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	expected := `
# HELP clockdrift_events_skipped_total Events or rows skipped during reference broadcast, by reason.
# TYPE clockdrift_events_skipped_total counter
clockdrift_events_skipped_total{reason="no_preferred_channel"} 1
clockdrift_events_skipped_total{reason="no_reference"} 1
clockdrift_events_skipped_total{reason="orphan_rows"} 2
# HELP clockdrift_stage_dropped_total Rows removed by each filter stage.
# TYPE clockdrift_stage_dropped_total counter
clockdrift_stage_dropped_total{stage="channel"} 20
clockdrift_stage_dropped_total{stage="quality"} 10
# HELP clockdrift_rows_plotted_total Relative residual rows produced per target network.
# TYPE clockdrift_rows_plotted_total counter
clockdrift_rows_plotted_total{network="7D"} 4
`
	names := []string{"clockdrift_events_skipped_total", "clockdrift_stage_dropped_total", "clockdrift_rows_plotted_total"}
	if err := testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected), names...); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}

func TestWriteTextfile(t *testing.T) {
	rec := metrics.NewRecorder()
	rec.ObservePicks(7)
	path := filepath.Join(t.TempDir(), "textfile", "clockdrift.prom")
	if err := rec.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "clockdrift_picks_loaded_total 7") {
		t.Fatalf("textfile missing picks counter:\n%s", data)
	}
}
