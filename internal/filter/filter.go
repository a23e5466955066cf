package filter

import (
	"errors"
	"fmt"
	"time"

	"clockdrift/internal/picks"
)

// ErrInsufficientData indicates too few picks survived quality filtering.
var ErrInsufficientData = errors.New("insufficient picks after quality filter")

// Stage names.
const (
	StageChannel    = "channel"
	StageNetworkDay = "network_date"
	StageDistance   = "teleseismic"
	StageRefSNR     = "ref_snr"
	StageQuality    = "quality"
	StageRefTarget  = "ref_or_target"
	StageCommon     = "common_events"
)

// Thresholds holds the quality cutoffs applied per reference station.
type Thresholds struct {
	MinRefSNR       float64
	CWT             float64
	Slope           float64
	NSigma          int
	MinQualityPicks int
}

// GlobalStages returns the stages applied once to the whole table: channel
// allow-list, per-network start dates and the teleseismic distance window.
func GlobalStages(channels []string, minTimes map[string]time.Time, minDeg, maxDeg float64) []Stage {
	return []Stage{
		{Name: StageChannel, Predicate: ChannelIn(channels)},
		{Name: StageNetworkDay, Predicate: NetworkNotBefore(minTimes)},
		{Name: StageDistance, Predicate: DistanceBetween(minDeg, maxDeg)},
	}
}

// QualityFilter drops low SNR reference picks and low quality non-reference
// picks. It fails with ErrInsufficientData unless more than
// th.MinQualityPicks rows remain.
func QualityFilter(rows []picks.Pick, ref picks.StationID, th Thresholds) ([]picks.Pick, []StageCount, error) {
	out, counts := Apply(rows,
		Stage{Name: StageRefSNR, Predicate: ReferenceSNRAtLeast(ref, th.MinRefSNR)},
		Stage{Name: StageQuality, Predicate: QualityAtLeast(ref, th.CWT, th.Slope, th.NSigma)},
	)
	if len(out) <= th.MinQualityPicks {
		return out, counts, fmt.Errorf("%w: %d picks remain for reference %s, need more than %d",
			ErrInsufficientData, len(out), ref, th.MinQualityPicks)
	}
	return out, counts, nil
}

// ReferenceOrTarget keeps picks from the reference station or the target set.
func ReferenceOrTarget(ref picks.StationID, target picks.TargetSet) Predicate {
	return Or(IsStation(ref), InTarget(target))
}

// CommonEvents keeps only picks of events observed both by the reference
// station and by the target set. A reference pick also counts as a target
// pick when the reference belongs to the target set.
func CommonEvents(rows []picks.Pick, ref picks.StationID, target picks.TargetSet) []picks.Pick {
	hasRef := make(map[string]bool)
	hasTarget := make(map[string]bool)
	for _, p := range rows {
		if ref.Matches(p) {
			hasRef[p.EventID] = true
		}
		if target.Contains(p) {
			hasTarget[p.EventID] = true
		}
	}
	return Keep(rows, func(p picks.Pick) bool {
		return hasRef[p.EventID] && hasTarget[p.EventID]
	})
}

// Narrow keeps reference and target rows, then restricts them to common
// events.
func Narrow(rows []picks.Pick, ref picks.StationID, target picks.TargetSet) ([]picks.Pick, []StageCount) {
	out, counts := Apply(rows, Stage{Name: StageRefTarget, Predicate: ReferenceOrTarget(ref, target)})
	before := len(out)
	out = CommonEvents(out, ref, target)
	counts = append(counts, StageCount{Name: StageCommon, Before: before, After: len(out)})
	return out, counts
}
