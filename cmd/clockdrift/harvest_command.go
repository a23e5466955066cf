package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clockdrift/internal/harvest"
)

func newHarvestCommand(ctx *commandContext) *cobra.Command {
	var pattern string
	var workers int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "harvest <source-dir> <output-dir>",
		Short: "Merge per-station pick files into one ensemble table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := &harvest.Harvester{
				Workers: workers,
				Pattern: pattern,
				Logger:  ctx.logger(),
			}
			rep, err := h.Run(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, rep)
			}

			out := cmd.OutOrStdout()
			tableRows := make([][]string, 0, len(rep.Ranks))
			for _, r := range rep.Ranks {
				tableRows = append(tableRows, []string{strconv.Itoa(r.Rank), strconv.Itoa(r.Files), strconv.Itoa(r.Picks)})
			}
			fmt.Fprintln(out, renderTable(tableRows, num("Rank"), num("Files"), num("Picks")))
			fmt.Fprintf(out, "Harvested %d picks from %d files into %s\n", rep.Picks, rep.Files, rep.OutputPath)
			fmt.Fprintf(out, "Parameters: %s\n", rep.ParamsPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&pattern, "pattern", harvest.DefaultPattern, "File name glob to harvest")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
