package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"clockdrift/internal/picks"
	"clockdrift/internal/residual"
)

// ErrAmbiguousID indicates a run id prefix matched more than one run.
var ErrAmbiguousID = errors.New("run id prefix is ambiguous")

// Run is one archived reference/target analysis.
type Run struct {
	ID            string    `json:"id"`
	BatchID       string    `json:"batch_id"`
	Reference     string    `json:"reference"`
	Target        string    `json:"target"`
	InputPath     string    `json:"input_path,omitempty"`
	Rows          int       `json:"rows"`
	Events        int       `json:"events"`
	SkippedEvents int       `json:"skipped_events"`
	OrphanRows    int       `json:"orphan_rows"`
	RangeStart    time.Time `json:"range_start"`
	RangeEnd      time.Time `json:"range_end"`
	PlotPath      string    `json:"plot_path,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Residual is one archived target pick.
type Residual struct {
	EventID     string    `json:"event_id"`
	Origin      time.Time `json:"origin"`
	Magnitude   float64   `json:"magnitude"`
	Network     string    `json:"network"`
	Station     string    `json:"station"`
	Channel     string    `json:"channel"`
	SNR         float64   `json:"snr"`
	TTResidual  float64   `json:"tt_residual"`
	RefResidual float64   `json:"ref_residual"`
	RelResidual float64   `json:"rel_residual"`
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const runColumns = "id, batch_id, reference, target, input_path, row_count, event_count, skipped_events, orphan_rows, range_start, range_end, plot_path, created_at"

// SaveRun inserts run and its residual rows in one transaction. An empty
// ID is filled with a new UUID and a zero CreatedAt with the current time.
func (s *Store) SaveRun(ctx context.Context, run *Run, rows []residual.Row) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.Rows = len(rows)

	return retryOnBusy(ctx, func() error {
		return s.insertRun(ctx, run, rows)
	})
}

func (s *Store) insertRun(ctx context.Context, run *Run, rows []residual.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.BatchID,
		run.Reference,
		run.Target,
		nullableString(run.InputPath),
		run.Rows,
		run.Events,
		run.SkippedEvents,
		run.OrphanRows,
		nullableTime(run.RangeStart),
		nullableTime(run.RangeEnd),
		nullableString(run.PlotPath),
		run.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO residuals (
            run_id, seq, event_id, origin_ts, magnitude, network, station, channel,
            snr, tt_residual, ref_residual, rel_residual
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare residual insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			run.ID, i, r.EventID, r.OriginTimestamp, r.Magnitude,
			r.Network, r.Station, r.Channel,
			r.SNR, r.TTResidual, r.Ref, r.Rel,
		); err != nil {
			return fmt.Errorf("insert residual %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches a run by id or unique id prefix. It returns nil when no run
// matches.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? || '%' ESCAPE '\' ORDER BY id LIMIT 2`,
		id, likeEscaper.Replace(id))
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.ID == id {
			return run, nil
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
}

// Residuals returns the archived rows of a run in insertion order.
func (s *Store) Residuals(ctx context.Context, runID string) ([]Residual, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, origin_ts, magnitude, network, station, channel, snr, tt_residual, ref_residual, rel_residual
         FROM residuals WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query residuals: %w", err)
	}
	defer rows.Close()

	var out []Residual
	for rows.Next() {
		var (
			r      Residual
			origin float64
		)
		if err := rows.Scan(&r.EventID, &origin, &r.Magnitude, &r.Network, &r.Station, &r.Channel,
			&r.SNR, &r.TTResidual, &r.RefResidual, &r.RelResidual); err != nil {
			return nil, fmt.Errorf("scan residual: %w", err)
		}
		r.Origin = picks.Timestamp(origin)
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run        Run
		inputPath  sql.NullString
		rangeStart sql.NullString
		rangeEnd   sql.NullString
		plotPath   sql.NullString
		createdRaw string
	)
	if err := scanner.Scan(
		&run.ID,
		&run.BatchID,
		&run.Reference,
		&run.Target,
		&inputPath,
		&run.Rows,
		&run.Events,
		&run.SkippedEvents,
		&run.OrphanRows,
		&rangeStart,
		&rangeEnd,
		&plotPath,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	run.InputPath = inputPath.String
	run.PlotPath = plotPath.String
	if t, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		run.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, rangeStart.String); err == nil {
		run.RangeStart = t
	}
	if t, err := time.Parse(time.RFC3339Nano, rangeEnd.String); err == nil {
		run.RangeEnd = t
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC().Format(timeLayout)
}
