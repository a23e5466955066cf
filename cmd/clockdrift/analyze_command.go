package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"clockdrift/internal/analysis"
	"clockdrift/internal/catalog"
	"clockdrift/internal/config"
	"clockdrift/internal/export"
	"clockdrift/internal/fileutil"
	"clockdrift/internal/logging"
	"clockdrift/internal/metrics"
	"clockdrift/internal/plot"
	"clockdrift/internal/report"
	"clockdrift/internal/store"
)

type analyzeFlags struct {
	refNetwork     string
	refStations    []string
	targetNetworks []string
	display        bool
	outputDir      string
	parquetDir     string
	noStore        bool
	noEvents       bool
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var flags analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze <pickfile>",
		Short: "Compute relative travel-time residuals and plot them per station pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := flags.apply(base)
			if err != nil {
				return err
			}
			return runAnalyze(cmd, cfg, args[0], ctx.logger())
		},
	}

	cmd.Flags().StringVar(&flags.refNetwork, "ref-network", "", "Reference network code (overrides analysis.reference_network)")
	cmd.Flags().StringArrayVar(&flags.refStations, "ref-station", nil, "Reference station code (repeatable; default every station of the network)")
	cmd.Flags().StringArrayVar(&flags.targetNetworks, "target-network", nil, "Target network code (repeatable; default the reference network)")
	cmd.Flags().BoolVar(&flags.display, "display", false, "Print residual tables instead of writing plot images")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "Directory for plot images")
	cmd.Flags().StringVar(&flags.parquetDir, "parquet-dir", "", "Write one Parquet file per pair into this directory")
	cmd.Flags().BoolVar(&flags.noStore, "no-store", false, "Do not archive results in the SQLite store")
	cmd.Flags().BoolVar(&flags.noEvents, "no-events", false, "Do not draw significant-event markers")
	return cmd
}

// apply returns a copy of base with the command-line overrides applied.
func (f analyzeFlags) apply(base *config.Config) (*config.Config, error) {
	cfg := *base
	if v := strings.TrimSpace(f.refNetwork); v != "" {
		cfg.Analysis.ReferenceNetwork = config.NormalizeCode(v)
	}
	if len(f.refStations) > 0 {
		cfg.Analysis.ReferenceStations = normalizeCodes(f.refStations)
	}
	if len(f.targetNetworks) > 0 {
		cfg.Analysis.TargetNetworks = normalizeCodes(f.targetNetworks)
	}
	if f.display {
		cfg.Plot.Mode = config.PlotModeDisplay
	}
	if v := strings.TrimSpace(f.outputDir); v != "" {
		expanded, err := config.ExpandPath(v)
		if err != nil {
			return nil, fmt.Errorf("resolve output dir: %w", err)
		}
		cfg.Paths.OutputDir = expanded
	}
	if v := strings.TrimSpace(f.parquetDir); v != "" {
		expanded, err := config.ExpandPath(v)
		if err != nil {
			return nil, fmt.Errorf("resolve parquet dir: %w", err)
		}
		cfg.Export.ParquetDir = expanded
	}
	if f.noStore {
		cfg.Store.Enabled = false
	}
	if f.noEvents {
		cfg.Events.Enabled = false
	}
	if cfg.Analysis.ReferenceNetwork == "" {
		return nil, errors.New("reference network is required (set analysis.reference_network or --ref-network)")
	}
	return &cfg, nil
}

func normalizeCodes(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if code := config.NormalizeCode(v); code != "" {
			out = append(out, code)
		}
	}
	return out
}

func runAnalyze(cmd *cobra.Command, cfg *config.Config, pickPath string, logger *slog.Logger) error {
	rows, err := loadPicks(pickPath)
	if err != nil {
		return err
	}
	logger.Info("picks loaded", logging.String("path", pickPath), logging.Int("rows", len(rows)))

	lock, err := fileutil.LockDir(cfg.Paths.OutputDir)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	recorder := metrics.NewRecorder()
	recorder.ObservePicks(len(rows))

	prepared, counts := analysis.Prepare(rows, cfg, logger)
	recorder.ObserveStages(counts)

	pairs := analysis.Pairs(prepared, cfg.Analysis.ReferenceNetwork, cfg.Analysis.ReferenceStations, cfg.Analysis.TargetNetworks)
	if len(pairs) == 0 {
		return fmt.Errorf("no stations of reference network %s survive the global filters", cfg.Analysis.ReferenceNetwork)
	}

	var sinks []analysis.Sink
	fileMode := cfg.Plot.Mode != config.PlotModeDisplay
	if fileMode {
		var events []catalog.SignificantEvent
		if cfg.Events.Enabled {
			events = catalog.Significant(rows, catalog.Options{
				MinMagnitude: cfg.Events.MinMagnitude,
				MinPickCount: cfg.Events.MinPickCount,
				Names:        cfg.Events.Names,
			})
		}
		sinks = append(sinks, plot.NewRenderer(cfg, events, logger))
	} else {
		sinks = append(sinks, report.NewPrinter(cmd.OutOrStdout()))
	}

	if cfg.Store.Enabled {
		st, err := store.Open(cfg.Paths.StorePath)
		if err != nil {
			return fmt.Errorf("open results store: %w", err)
		}
		defer st.Close()
		sink := store.NewSink(st, pickPath, logger)
		if fileMode {
			sink.PlotPath = func(p analysis.Pair) string {
				return plot.FilePath(cfg.Paths.OutputDir, p, cfg.Plot.FileLabel)
			}
		}
		sinks = append(sinks, sink)
	}
	if cfg.Export.ParquetDir != "" {
		sinks = append(sinks, export.NewSink(cfg.Export.ParquetDir, logger))
	}
	sinks = append(sinks, metrics.Sink{Recorder: recorder})

	runner := &analysis.Runner{
		Options: analysis.OptionsFromConfig(cfg, logger),
		Sinks:   sinks,
		Logger:  logger,
	}
	summary, err := runner.Run(cmd.Context(), prepared, pairs)
	if err != nil {
		return err
	}
	recorder.ObserveRunSummary(summary)
	if cfg.Metrics.Textfile != "" {
		if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	tableRows := make([][]string, 0, len(summary.Pairs))
	for _, p := range summary.Pairs {
		tableRows = append(tableRows, []string{p.Pair.Reference.String(), p.Pair.Target.String(), p.Outcome, strconv.Itoa(p.Rows)})
	}
	fmt.Fprintln(out, renderTable(tableRows, col("Reference"), col("Target"), col("Outcome"), num("Rows")))
	fmt.Fprintf(out, "Analyzed %d of %d pairs (%d skipped)\n", summary.Analyzed, len(summary.Pairs), summary.Skipped)
	return nil
}
