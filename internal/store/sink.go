package store

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"clockdrift/internal/analysis"
	"clockdrift/internal/logging"
)

// Sink archives every analysed pair of one batch under a shared batch id.
type Sink struct {
	Store     *Store
	BatchID   string
	InputPath string
	// PlotPath optionally resolves the image written for a pair.
	PlotPath func(analysis.Pair) string
	Logger   *slog.Logger
}

// NewSink returns a Sink with a fresh batch id.
func NewSink(s *Store, inputPath string, logger *slog.Logger) *Sink {
	return &Sink{
		Store:     s,
		BatchID:   uuid.NewString(),
		InputPath: inputPath,
		Logger:    logging.NewComponentLogger(logger, "store"),
	}
}

// Name identifies the sink in logs.
func (k *Sink) Name() string { return "store" }

// Consume saves res as a run.
func (k *Sink) Consume(ctx context.Context, res *analysis.Result) error {
	run := &Run{
		BatchID:       k.BatchID,
		Reference:     res.Pair.Reference.String(),
		Target:        res.Pair.Target.String(),
		InputPath:     k.InputPath,
		Events:        res.Broadcast.Broadcast,
		SkippedEvents: res.Broadcast.Skipped(),
		OrphanRows:    res.Orphans,
		RangeStart:    res.Range.Start,
		RangeEnd:      res.Range.End,
	}
	if k.PlotPath != nil {
		run.PlotPath = k.PlotPath(res.Pair)
	}
	if err := k.Store.SaveRun(ctx, run, res.Rows); err != nil {
		return err
	}
	k.Logger.Debug("run archived",
		logging.String("run_id", run.ID),
		logging.String(logging.FieldPair, res.Pair.String()),
	)
	return nil
}
