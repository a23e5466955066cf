package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldPair identifies the reference/target pair under analysis (e.g. AU.ARMA->AU).
	FieldPair = "pair"
	// FieldStage is the standardized key for filter stage names.
	FieldStage = "stage"
	// FieldEventID is the standardized key for seismic event identifiers.
	FieldEventID = "event_id"
	// FieldRank is the standardized key for harvester worker ranks.
	FieldRank = "rank"
	// FieldEventType classifies warnings and errors for log filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

type contextKey int

const (
	pairKey contextKey = iota
	rankKey
)

// WithPair annotates ctx with the reference/target pair label.
func WithPair(ctx context.Context, pair string) context.Context {
	return context.WithValue(ctx, pairKey, pair)
}

// WithRank annotates ctx with a harvester worker rank.
func WithRank(ctx context.Context, rank int) context.Context {
	return context.WithValue(ctx, rankKey, rank)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if pair, ok := ctx.Value(pairKey).(string); ok && pair != "" {
		fields = append(fields, slog.String(FieldPair, pair))
	}
	if rank, ok := ctx.Value(rankKey).(int); ok {
		fields = append(fields, slog.Int(FieldRank, rank))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
