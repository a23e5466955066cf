package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clockdrift/internal/catalog"
)

func newEventsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "events <pickfile>",
		Short: "List significant earthquakes found in a pick table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rows, err := loadPicks(args[0])
			if err != nil {
				return err
			}
			events := catalog.Significant(rows, catalog.Options{
				MinMagnitude: cfg.Events.MinMagnitude,
				MinPickCount: cfg.Events.MinPickCount,
				Names:        cfg.Events.Names,
			})
			if asJSON {
				if events == nil {
					events = []catalog.SignificantEvent{}
				}
				return writeJSON(cmd, events)
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintf(out, "No days with at least %d picks of magnitude %.1f or more\n", cfg.Events.MinPickCount, cfg.Events.MinMagnitude)
				return nil
			}
			tableRows := make([][]string, 0, len(events))
			for _, e := range events {
				tableRows = append(tableRows, []string{e.Date.Format(dateLayout), strconv.Itoa(e.Count), e.Label()})
			}
			fmt.Fprintln(out, renderTable(tableRows, col("Date"), num("Picks"), col("Event")))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
