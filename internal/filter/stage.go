package filter

import (
	"log/slog"

	"clockdrift/internal/logging"
	"clockdrift/internal/picks"
)

// Stage is a named filtering step.
type Stage struct {
	Name      string
	Predicate Predicate
}

// StageCount records row counts around one stage.
type StageCount struct {
	Name   string
	Before int
	After  int
}

// Dropped returns the number of rows the stage removed.
func (s StageCount) Dropped() int {
	return s.Before - s.After
}

// Keep returns the picks accepted by pred, preserving input order.
func Keep(rows []picks.Pick, pred Predicate) []picks.Pick {
	out := make([]picks.Pick, 0, len(rows))
	for _, p := range rows {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

// Apply runs stages in order and records before/after counts for each.
func Apply(rows []picks.Pick, stages ...Stage) ([]picks.Pick, []StageCount) {
	counts := make([]StageCount, 0, len(stages))
	for _, stage := range stages {
		before := len(rows)
		rows = Keep(rows, stage.Predicate)
		counts = append(counts, StageCount{Name: stage.Name, Before: before, After: len(rows)})
	}
	return rows, counts
}

// LogCounts writes one INFO record per stage.
func LogCounts(logger *slog.Logger, counts []StageCount) {
	if logger == nil {
		return
	}
	for _, c := range counts {
		logger.Info("filter stage applied",
			logging.String(logging.FieldStage, c.Name),
			logging.Int("before", c.Before),
			logging.Int("after", c.After),
		)
	}
}
