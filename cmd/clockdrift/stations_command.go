package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"clockdrift/internal/config"
	"clockdrift/internal/picks"
	"clockdrift/internal/stations"
)

const dateLayout = "2006-01-02"

func newStationsCommand(ctx *commandContext) *cobra.Command {
	var network string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stations <pickfile>",
		Short: "Summarise the stations and date coverage of a network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			net := config.NormalizeCode(network)
			if net == "" {
				return fmt.Errorf("--network is required")
			}
			rows, err := loadPicks(args[0])
			if err != nil {
				return err
			}
			summary, ok := stations.Summarize(rows, net)
			if !ok {
				return fmt.Errorf("network %s has no picks in %s", net, args[0])
			}
			if asJSON {
				return writeJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Network %s: %d picks, %d events, %d stations\n", summary.Network, summary.Picks, summary.Events, len(summary.Stations))
			fmt.Fprintf(out, "Mean position: lat %.3f lon %.3f\n", summary.MeanLat, summary.MeanLon)
			fmt.Fprintf(out, "Date range: %s\n\n", formatRange(summary.Range))

			tableRows := make([][]string, 0, len(summary.Stations))
			for _, sta := range summary.Stations {
				tableRows = append(tableRows, []string{
					sta.Station,
					strconv.Itoa(sta.Picks),
					sta.Range.Start.Format(dateLayout),
					sta.Range.End.Format(dateLayout),
					strconv.Itoa(sta.Range.Days()),
				})
			}
			fmt.Fprintln(out, renderTable(tableRows, col("Station"), num("Picks"), col("First"), col("Last"), num("Days")))
			return nil
		},
	}

	cmd.Flags().StringVarP(&network, "network", "n", "", "Network code")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newOverlapCommand(ctx *commandContext) *cobra.Command {
	var refFlag string
	var targetFlag string

	cmd := &cobra.Command{
		Use:   "overlap <pickfile>",
		Short: "Show the date range a reference station shares with a target network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := picks.ParseStationID(strings.ToUpper(refFlag))
			if err != nil {
				return err
			}
			target := config.NormalizeCode(targetFlag)
			if target == "" {
				return fmt.Errorf("--target is required")
			}
			rows, err := loadPicks(args[0])
			if err != nil {
				return err
			}
			dr, ok := stations.OverlappingDateRange(rows, ref, picks.NewTargetSet(target))
			if !ok {
				return fmt.Errorf("%s and %s share no picks", ref, target)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s: %s\n", ref, target, formatRange(dr))
			return nil
		},
	}

	cmd.Flags().StringVar(&refFlag, "ref", "", "Reference station as NET.STA")
	cmd.Flags().StringVar(&targetFlag, "target", "", "Target network code")
	return cmd
}

func formatRange(dr stations.DateRange) string {
	return fmt.Sprintf("%s to %s (%d days)", dr.Start.Format(dateLayout), dr.End.Format(dateLayout), dr.Days())
}
