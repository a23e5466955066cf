package analysis_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"clockdrift/internal/analysis"
	"clockdrift/internal/config"
	"clockdrift/internal/filter"
	"clockdrift/internal/picks"
	"clockdrift/internal/testsupport"
)

var arma = picks.StationID{Network: "AU", Station: "ARMA"}

func scenario() []picks.Pick {
	var rows []picks.Pick
	for i, ev := range []string{"e1", "e2", "e3"} {
		origin := testsupport.BaseOrigin.Add(time.Duration(i) * 24 * time.Hour)
		rows = append(rows,
			testsupport.NewPick(ev, "AU", "ARMA", "BHZ", float64(i), testsupport.WithOrigin(origin), testsupport.WithQuality(0, 0, 0)),
			testsupport.NewPick(ev, "7D", "M01", "BHZ", 2, testsupport.WithOrigin(origin)),
			testsupport.NewPick(ev, "7D", "M02", "BHZ", -2, testsupport.WithOrigin(origin)),
		)
	}
	rows = append(rows, testsupport.NewPick("no-ref", "7D", "M01", "BHZ", 5))
	return append(rows, testsupport.FillerPicks("XX", 10)...)
}

func options() analysis.Options {
	cfg := config.Default()
	opts := analysis.OptionsFromConfig(&cfg, nil)
	opts.Thresholds.MinQualityPicks = 5
	return opts
}

func TestAnalyzeComputesRelativeResiduals(t *testing.T) {
	pair := analysis.Pair{Reference: arma, Target: picks.NewTargetSet("7D")}
	res, err := analysis.Analyze(context.Background(), scenario(), pair, options())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Rows) != 6 {
		t.Fatalf("expected 6 target rows, got %d", len(res.Rows))
	}
	for _, r := range res.Rows {
		if r.Network != "7D" {
			t.Fatalf("unexpected non-target row: %+v", r.Pick)
		}
		if r.EventID == "no-ref" {
			t.Fatal("event without reference must be excluded")
		}
		if math.Abs(r.Rel-(r.TTResidual-r.Ref)) > 1e-9 {
			t.Fatalf("rel mismatch: %+v", r)
		}
	}
	if res.Rows[0].EventID != "e1" || res.Rows[0].Ref != 0 || res.Rows[2].Ref != 1 {
		t.Fatalf("unexpected ordering or reference values: %+v", res.Rows[:3])
	}
	if !res.Range.Start.Equal(testsupport.BaseOrigin) || res.Range.Days() != 2 {
		t.Fatalf("unexpected range: %+v", res.Range)
	}
	if res.Broadcast.Broadcast != 3 {
		t.Fatalf("unexpected broadcast summary: %+v", res.Broadcast)
	}
}

func TestAnalyzeExcludesReferenceStationFromOwnNetwork(t *testing.T) {
	rows := []picks.Pick{
		testsupport.NewPick("e1", "AU", "ARMA", "BHZ", 1),
		testsupport.NewPick("e1", "AU", "QIS", "BHZ", 3),
	}
	rows = append(rows, testsupport.FillerPicks("XX", 10)...)
	pair := analysis.Pair{Reference: arma, Target: picks.NewTargetSet("AU")}
	res, err := analysis.Analyze(context.Background(), rows, pair, options())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Rows) != 1 || res.Rows[0].Station != "QIS" || res.Rows[0].Rel != 2 {
		t.Fatalf("unexpected rows: %+v", res.Rows)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	pair := analysis.Pair{Reference: picks.StationID{Network: "AU", Station: "NONE"}, Target: picks.NewTargetSet("7D")}
	if _, err := analysis.Analyze(context.Background(), scenario(), pair, options()); !errors.Is(err, analysis.ErrNoCommonEvents) {
		t.Fatalf("expected ErrNoCommonEvents, got %v", err)
	}

	opts := options()
	opts.Thresholds.MinQualityPicks = 1000
	if _, err := analysis.Analyze(context.Background(), scenario(), pair, opts); !errors.Is(err, filter.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestPrepareAppliesGlobalStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	rows := []picks.Pick{
		testsupport.NewPick("e1", "AU", "ARMA", "BHZ", 1),
		testsupport.NewPick("e1", "AU", "ARMA", "HHZ", 1),
		testsupport.NewPick("e1", "7G", "G01", "BHZ", 1, testsupport.WithOrigin(time.Date(2009, 12, 31, 0, 0, 0, 0, time.UTC))),
		testsupport.NewPick("e1", "AU", "QIS", "BHZ", 1, testsupport.WithDistance(12)),
	}
	out, counts := analysis.Prepare(rows, cfg, nil)
	if len(out) != 1 || len(counts) != 3 {
		t.Fatalf("unexpected prepare output: %d rows, %+v", len(out), counts)
	}
}

func TestPairsDefaults(t *testing.T) {
	rows := []picks.Pick{
		testsupport.NewPick("e1", "AU", "QIS", "BHZ", 1),
		testsupport.NewPick("e1", "AU", "ARMA", "BHZ", 1),
		testsupport.NewPick("e1", "7D", "M01", "BHZ", 1),
	}
	pairs := analysis.Pairs(rows, "AU", nil, nil)
	if len(pairs) != 2 || pairs[0].String() != "AU.ARMA->AU" || pairs[1].String() != "AU.QIS->AU" {
		t.Fatalf("unexpected default pairs: %v", pairs)
	}
	pairs = analysis.Pairs(rows, "AU", []string{"ARMA"}, []string{"7D", "AU"})
	if len(pairs) != 2 || pairs[0].Target.Network != "7D" || pairs[1].Target.Network != "AU" {
		t.Fatalf("unexpected explicit pairs: %v", pairs)
	}
}

type recordingSink struct {
	results []*analysis.Result
	err     error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Consume(_ context.Context, res *analysis.Result) error {
	s.results = append(s.results, res)
	return s.err
}

func TestRunnerSkipsAndForwards(t *testing.T) {
	sink := &recordingSink{}
	runner := &analysis.Runner{Options: options(), Sinks: []analysis.Sink{sink}}
	pairs := []analysis.Pair{
		{Reference: arma, Target: picks.NewTargetSet("7D")},
		{Reference: arma, Target: picks.NewTargetSet("ZZ")},
	}
	summary, err := runner.Run(context.Background(), scenario(), pairs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Analyzed != 1 || summary.Skipped != 1 || len(sink.results) != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Pairs[1].Outcome != analysis.OutcomeNoCommon {
		t.Fatalf("expected no-common outcome, got %+v", summary.Pairs[1])
	}
}

func TestRunnerAbortsOnSinkError(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	runner := &analysis.Runner{Options: options(), Sinks: []analysis.Sink{sink}}
	_, err := runner.Run(context.Background(), scenario(), []analysis.Pair{{Reference: arma, Target: picks.NewTargetSet("7D")}})
	if err == nil || !errors.Is(err, sink.err) {
		t.Fatalf("expected sink error, got %v", err)
	}
}

func TestRunnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := &analysis.Runner{Options: options()}
	if _, err := runner.Run(ctx, scenario(), []analysis.Pair{{Reference: arma, Target: picks.NewTargetSet("7D")}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
