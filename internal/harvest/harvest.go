package harvest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml/v2"

	"clockdrift/internal/fileutil"
	"clockdrift/internal/logging"
	"clockdrift/internal/picks"
)

const (
	// EnsembleFileName is the merged pick table written to the output directory.
	EnsembleFileName = "ensemble.p.txt"
	// DefaultPattern selects per-source pick tables.
	DefaultPattern  = "*.txt"
	paramTimeLayout = "06-01-02.T15.04"
)

// ErrNoInput indicates the source tree held no matching files.
var ErrNoInput = errors.New("no input files matched")

// Harvester merges many pick tables into one using a fixed pool of ranks.
type Harvester struct {
	Workers int
	Pattern string
	Logger  *slog.Logger
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
}

// Parameters is the record written before work starts.
type Parameters struct {
	SourceDir  string    `toml:"source_dir"`
	OutputPath string    `toml:"output_path"`
	Pattern    string    `toml:"pattern"`
	Workers    int       `toml:"workers"`
	StartedAt  time.Time `toml:"started_at"`
}

// RankStat reports one rank's share of the work.
type RankStat struct {
	Rank  int `json:"rank"`
	Files int `json:"files"`
	Picks int `json:"picks"`
}

// Report summarises a harvest.
type Report struct {
	Files      int        `json:"files"`
	Picks      int        `json:"picks"`
	Ranks      []RankStat `json:"ranks"`
	ParamsPath string     `json:"params_path"`
	OutputPath string     `json:"output_path"`
}

// ParamsFileName names the parameter record for a start time.
func ParamsFileName(t time.Time) string {
	return "pick." + t.UTC().Format(paramTimeLayout) + ".cfg"
}

// Run harvests every file under sourceDir matching the pattern into
// outputDir/ensemble.p.txt. The file list is partitioned once; each rank
// parses its share and results are gathered in rank order. Any rank error
// fails the harvest.
func (h *Harvester) Run(ctx context.Context, sourceDir, outputDir string) (*Report, error) {
	logger := logging.NewComponentLogger(h.Logger, "harvest")
	workers := h.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pattern := h.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	params := Parameters{
		SourceDir:  sourceDir,
		OutputPath: outputDir,
		Pattern:    pattern,
		Workers:    workers,
		StartedAt:  now().UTC().Truncate(time.Second),
	}
	paramsPath := filepath.Join(outputDir, ParamsFileName(params.StartedAt))
	if err := writeParameters(paramsPath, params); err != nil {
		return nil, err
	}

	files, err := RecursiveGlob(sourceDir, pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrNoInput, pattern, sourceDir)
	}
	workload := SplitList(files, workers)
	logger.Info("harvest started",
		logging.Int("files", len(files)),
		logging.Int("workers", workers),
		logging.String("params", paramsPath),
	)

	results := make([][]picks.Pick, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for rank := 0; rank < workers; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			rankCtx := logging.WithRank(ctx, rank)
			results[rank], errs[rank] = harvestRank(rankCtx, workload[rank], logging.WithContext(rankCtx, logger))
		}(rank)
	}
	wg.Wait()

	var merr *multierror.Error
	for rank, err := range errs {
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("rank %d: %w", rank, err))
		}
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}

	report := &Report{Files: len(files), ParamsPath: paramsPath}
	var merged []picks.Pick
	for rank, rows := range results {
		merged = append(merged, rows...)
		report.Ranks = append(report.Ranks, RankStat{Rank: rank, Files: len(workload[rank]), Picks: len(rows)})
	}
	report.Picks = len(merged)
	report.OutputPath = filepath.Join(outputDir, EnsembleFileName)
	if err := picks.WriteFile(report.OutputPath, merged); err != nil {
		return nil, err
	}
	logger.Info("harvest complete",
		logging.Int("picks", report.Picks),
		logging.String("output", report.OutputPath),
	)
	return report, nil
}

func harvestRank(ctx context.Context, files []string, logger *slog.Logger) ([]picks.Pick, error) {
	logger.Debug("rank processing files", logging.Int("files", len(files)))
	var out []picks.Pick
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := picks.ReadFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

func writeParameters(path string, params Parameters) error {
	err := fileutil.WriteAtomic(path, func(w io.Writer) error {
		return toml.NewEncoder(w).Encode(params)
	})
	if err != nil {
		return fmt.Errorf("write parameters: %w", err)
	}
	return nil
}
