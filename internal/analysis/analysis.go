package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"clockdrift/internal/config"
	"clockdrift/internal/filter"
	"clockdrift/internal/logging"
	"clockdrift/internal/picks"
	"clockdrift/internal/residual"
	"clockdrift/internal/stations"
)

// ErrNoCommonEvents indicates no event was observed by both the reference
// station and the target set after filtering.
var ErrNoCommonEvents = errors.New("no events common to reference and target")

// Pair is one reference station analysed against one target set.
type Pair struct {
	Reference picks.StationID
	Target    picks.TargetSet
}

func (p Pair) String() string {
	return p.Reference.String() + "->" + p.Target.String()
}

// Options holds the per-pair filtering parameters.
type Options struct {
	ChannelPreference []string
	Thresholds        filter.Thresholds
	Logger            *slog.Logger
}

// OptionsFromConfig derives analysis options from the filter configuration.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		ChannelPreference: cfg.Filter.ChannelPreference,
		Thresholds: filter.Thresholds{
			MinRefSNR:       cfg.Filter.MinRefSNR,
			CWT:             cfg.Filter.CWTCutoff,
			Slope:           cfg.Filter.SlopeCutoff,
			NSigma:          cfg.Filter.NSigmaCutoff,
			MinQualityPicks: cfg.Filter.MinQualityPicks,
		},
		Logger: logger,
	}
}

// Result is the outcome of analysing one pair.
type Result struct {
	Pair Pair
	// Rows are the target picks, excluding the reference station, that carry
	// a finite relative residual, ordered by event and origin time.
	Rows []residual.Row
	// Range spans the origin times of every row that reached the broadcast
	// step, reference rows included.
	Range     stations.DateRange
	Stages    []filter.StageCount
	Broadcast residual.Summary
	// Orphans counts target rows dropped for lacking a reference value.
	Orphans int
}

// Prepare applies the table-wide stages: channel allow-list, per-network
// start dates and the teleseismic window.
func Prepare(rows []picks.Pick, cfg *config.Config, logger *slog.Logger) ([]picks.Pick, []filter.StageCount) {
	out, counts := filter.Apply(rows, filter.GlobalStages(
		cfg.Filter.ChannelPreference,
		cfg.NetworkMinTimes(),
		cfg.Filter.MinDistanceDeg,
		cfg.Filter.MaxDistanceDeg,
	)...)
	filter.LogCounts(logger, counts)
	return out, counts
}

// Analyze computes relative residuals of pair.Target against
// pair.Reference. ErrInsufficientData from the quality filter is fatal for a
// batch; ErrNoCommonEvents only skips the pair.
func Analyze(ctx context.Context, rows []picks.Pick, pair Pair, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx = logging.WithPair(ctx, pair.String())
	logger := logging.WithContext(ctx, opts.Logger)

	qual, counts, err := filter.QualityFilter(rows, pair.Reference, opts.Thresholds)
	if err != nil {
		return nil, err
	}
	narrowed, narrowCounts := filter.Narrow(qual, pair.Reference, pair.Target)
	counts = append(counts, narrowCounts...)
	filter.LogCounts(logger, counts)
	if len(narrowed) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCommonEvents, pair)
	}

	broadcast, summary := residual.Broadcast(narrowed, pair.Reference, opts.ChannelPreference, logger)
	if err := residual.Verify(broadcast); err != nil {
		return nil, err
	}
	residual.ComputeRelative(broadcast)

	span, _ := stations.RangeOf(narrowed)

	targets := make([]residual.Row, 0, len(broadcast))
	for _, r := range broadcast {
		if pair.Target.Contains(r.Pick) && !pair.Reference.Matches(r.Pick) {
			targets = append(targets, r)
		}
	}
	plottable, orphans := residual.Plottable(targets)
	sort.SliceStable(plottable, func(i, j int) bool {
		if plottable[i].EventID != plottable[j].EventID {
			return plottable[i].EventID < plottable[j].EventID
		}
		return plottable[i].OriginTimestamp < plottable[j].OriginTimestamp
	})
	if orphans > 0 {
		logger.Info("dropped target picks without reference residual",
			logging.Int("dropped", orphans),
			logging.Int("events_without_reference", summary.Skipped()),
		)
	}
	logger.Info("relative residuals computed",
		logging.Int("rows", len(plottable)),
		logging.Int("events", summary.Broadcast),
	)

	return &Result{
		Pair:      pair,
		Rows:      plottable,
		Range:     span,
		Stages:    counts,
		Broadcast: summary,
		Orphans:   orphans,
	}, nil
}

// Pairs crosses the reference stations with the target networks. Empty
// refStations selects every station of refNetwork present in rows; empty
// targetNetworks selects refNetwork itself.
func Pairs(rows []picks.Pick, refNetwork string, refStations, targetNetworks []string) []Pair {
	if len(refStations) == 0 {
		refStations = stations.NetworkStations(rows, refNetwork)
	}
	if len(targetNetworks) == 0 {
		targetNetworks = []string{refNetwork}
	}
	pairs := make([]Pair, 0, len(refStations)*len(targetNetworks))
	for _, sta := range refStations {
		for _, net := range targetNetworks {
			pairs = append(pairs, Pair{
				Reference: picks.StationID{Network: refNetwork, Station: sta},
				Target:    picks.NewTargetSet(net),
			})
		}
	}
	return pairs
}
