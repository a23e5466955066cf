package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"clockdrift/internal/logging"
	"clockdrift/internal/picks"
)

// Sink consumes the result of one analysed pair.
type Sink interface {
	Name() string
	Consume(ctx context.Context, res *Result) error
}

// Pair outcomes reported in a RunSummary.
const (
	OutcomeAnalyzed = "analyzed"
	OutcomeNoCommon = "no_common_events"
	OutcomeEmpty    = "empty"
)

// PairOutcome records how a single pair finished.
type PairOutcome struct {
	Pair    Pair
	Outcome string
	Rows    int
}

// RunSummary aggregates a batch of pairs.
type RunSummary struct {
	Pairs    []PairOutcome
	Analyzed int
	Skipped  int
	Duration time.Duration
}

// Runner analyses each pair in turn and hands results to its sinks.
type Runner struct {
	Options Options
	Sinks   []Sink
	Logger  *slog.Logger
}

// Run analyses pairs in order. Pairs without common events or without
// plottable rows are skipped with a warning; insufficient data, sink
// failures and cancellation abort the batch.
func (r *Runner) Run(ctx context.Context, rows []picks.Pick, pairs []Pair) (RunSummary, error) {
	logger := logging.NewComponentLogger(r.Logger, "analysis")
	opts := r.Options
	opts.Logger = logger

	start := time.Now()
	var summary RunSummary
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		res, err := Analyze(ctx, rows, pair, opts)
		switch {
		case errors.Is(err, ErrNoCommonEvents):
			logging.WarnWithContext(logger, "no common events; skipping pair", "pair_skipped",
				logging.String(logging.FieldPair, pair.String()),
				logging.String(logging.FieldImpact, "no plot produced for this pair"),
			)
			summary.Skipped++
			summary.Pairs = append(summary.Pairs, PairOutcome{Pair: pair, Outcome: OutcomeNoCommon})
			continue
		case err != nil:
			return summary, fmt.Errorf("analyze %s: %w", pair, err)
		}
		if len(res.Rows) == 0 {
			logging.WarnWithContext(logger, "no plottable target rows; skipping pair", "pair_skipped",
				logging.String(logging.FieldPair, pair.String()),
				logging.Int("events_without_reference", res.Broadcast.Skipped()),
				logging.String(logging.FieldImpact, "no plot produced for this pair"),
			)
			summary.Skipped++
			summary.Pairs = append(summary.Pairs, PairOutcome{Pair: pair, Outcome: OutcomeEmpty})
			continue
		}
		for _, sink := range r.Sinks {
			if err := sink.Consume(ctx, res); err != nil {
				return summary, fmt.Errorf("%s sink for %s: %w", sink.Name(), pair, err)
			}
		}
		summary.Analyzed++
		summary.Pairs = append(summary.Pairs, PairOutcome{Pair: pair, Outcome: OutcomeAnalyzed, Rows: len(res.Rows)})
	}
	summary.Duration = time.Since(start)
	logger.Info("analysis batch complete",
		logging.Int("pairs", len(pairs)),
		logging.Int("analyzed", summary.Analyzed),
		logging.Int("skipped", summary.Skipped),
		logging.Duration("duration", summary.Duration),
	)
	return summary, nil
}
