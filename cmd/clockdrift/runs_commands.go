package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"clockdrift/internal/store"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect archived analysis runs",
	}
	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	return runsCmd
}

func (c *commandContext) withStore(fn func(*store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Paths.StorePath)
	if err != nil {
		return fmt.Errorf("open results store: %w", err)
	}
	defer st.Close()
	return fn(st)
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				runs, err := st.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					if runs == nil {
						runs = []*store.Run{}
					}
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs archived")
					return nil
				}
				tableRows := make([][]string, 0, len(runs))
				for _, r := range runs {
					tableRows = append(tableRows, []string{
						shortID(r.ID),
						r.Reference,
						r.Target,
						strconv.Itoa(r.Rows),
						strconv.Itoa(r.Events),
						strconv.Itoa(r.SkippedEvents),
						r.CreatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(out, renderTable(tableRows, col("ID"), col("Reference"), col("Target"), num("Rows"), num("Events"), num("Skipped"), col("Created")))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

type runDetail struct {
	Run       *store.Run       `json:"run"`
	Residuals []store.Residual `json:"residuals"`
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run and its residual rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withStore(func(st *store.Store) error {
				run, err := st.GetRun(cmd.Context(), id)
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", id)
				}
				residuals, err := st.Residuals(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, runDetail{Run: run, Residuals: residuals})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run %s (batch %s)\n", run.ID, run.BatchID)
				fmt.Fprintf(out, "Pair: %s -> %s\n", run.Reference, run.Target)
				if run.InputPath != "" {
					fmt.Fprintf(out, "Input: %s\n", run.InputPath)
				}
				if run.PlotPath != "" {
					fmt.Fprintf(out, "Plot: %s\n", run.PlotPath)
				}
				fmt.Fprintf(out, "Range: %s to %s\n", run.RangeStart.Format(dateLayout), run.RangeEnd.Format(dateLayout))
				fmt.Fprintf(out, "Events: %d broadcast, %d skipped, %d orphan rows\n\n", run.Events, run.SkippedEvents, run.OrphanRows)

				tableRows := make([][]string, 0, len(residuals))
				for _, r := range residuals {
					tableRows = append(tableRows, []string{
						r.EventID,
						r.Origin.Format("2006-01-02 15:04:05"),
						r.Network + "." + r.Station,
						r.Channel,
						strconv.FormatFloat(r.SNR, 'f', 1, 64),
						strconv.FormatFloat(r.RelResidual, 'f', 3, 64),
					})
				}
				fmt.Fprintln(out, renderTable(tableRows, col("Event"), col("Origin"), col("Station"), col("Channel"), num("SNR"), num("Relative (s)")))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
