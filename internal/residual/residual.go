package residual

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"clockdrift/internal/filter"
	"clockdrift/internal/logging"
	"clockdrift/internal/picks"
)

var (
	// ErrNoReference indicates an event has no pick from the reference station.
	ErrNoReference = errors.New("no reference pick for event")
	// ErrNoPreferredChannel indicates the reference picks of an event are all
	// on channels outside the preference list.
	ErrNoPreferredChannel = errors.New("no reference pick on a preferred channel")
	// ErrInconsistentReference indicates an event carries more than one
	// broadcast reference value.
	ErrInconsistentReference = errors.New("inconsistent reference residual within event")
)

// Row is a pick annotated with its event's reference residual and the
// resulting relative residual.
type Row struct {
	picks.Pick
	// Ref is the reference station residual of the pick's event. Valid only
	// when HasRef is set.
	Ref    float64
	HasRef bool
	// Rel is TTResidual - Ref, or NaN when the event has no reference.
	Rel float64
}

// Summary counts the outcome of a broadcast.
type Summary struct {
	Events             int
	Broadcast          int
	NoReference        int
	NoPreferredChannel int
}

// Skipped returns the number of events left without a reference value.
func (s Summary) Skipped() int {
	return s.NoReference + s.NoPreferredChannel
}

// SelectReference chooses the reference pick of one event. The earliest
// preferred channel present among the reference picks wins; among picks on
// that channel the smallest absolute residual wins, ties going to the
// earliest row. Non-finite residuals rank after every finite one.
func SelectReference(group []picks.Pick, ref picks.StationID, prefs []string) (picks.Pick, error) {
	var candidates []picks.Pick
	for _, p := range group {
		if ref.Matches(p) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return picks.Pick{}, ErrNoReference
	}

	best := -1
	for _, p := range candidates {
		idx := filter.ChannelIndex(prefs, p.Channel)
		if idx >= 0 && (best < 0 || idx < best) {
			best = idx
		}
	}
	if best < 0 {
		return picks.Pick{}, fmt.Errorf("%w: available %s, allowed %s",
			ErrNoPreferredChannel, strings.Join(channels(candidates), ","), strings.Join(prefs, ","))
	}

	var (
		chosen picks.Pick
		found  bool
	)
	for _, p := range candidates {
		if p.Channel != prefs[best] {
			continue
		}
		if !found || closerToZero(p.TTResidual, chosen.TTResidual) {
			chosen = p
			found = true
		}
	}
	return chosen, nil
}

// closerToZero reports whether a ranks strictly before b. NaN and infinite
// values rank last.
func closerToZero(a, b float64) bool {
	if !isFinite(a) {
		return false
	}
	if !isFinite(b) {
		return true
	}
	return math.Abs(a) < math.Abs(b)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func channels(rows []picks.Pick) []string {
	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0, len(rows))
	for _, p := range rows {
		if _, ok := seen[p.Channel]; ok {
			continue
		}
		seen[p.Channel] = struct{}{}
		out = append(out, p.Channel)
	}
	sort.Strings(out)
	return out
}

// Broadcast sets the reference residual on every row of each event. Events
// without a reference pick are left unset silently; events whose reference
// picks use no preferred channel are left unset with a warning.
func Broadcast(rows []picks.Pick, ref picks.StationID, prefs []string, logger *slog.Logger) ([]Row, Summary) {
	if logger == nil {
		logger = logging.NewNop()
	}
	out := make([]Row, len(rows))
	for i, p := range rows {
		out[i] = Row{Pick: p, Rel: math.NaN()}
	}

	var summary Summary
	for _, group := range picks.GroupByEvent(rows) {
		summary.Events++
		members := make([]picks.Pick, len(group.Rows))
		for i, idx := range group.Rows {
			members[i] = rows[idx]
		}
		chosen, err := SelectReference(members, ref, prefs)
		switch {
		case errors.Is(err, ErrNoReference):
			summary.NoReference++
			continue
		case errors.Is(err, ErrNoPreferredChannel):
			summary.NoPreferredChannel++
			logging.WarnWithContext(logger, "reference channel not in preference list; skipping event",
				"reference_channel",
				logging.String(logging.FieldEventID, group.EventID),
				logging.String("reference", ref.String()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "add the reference channel to filter.channel_preference"),
				logging.String(logging.FieldImpact, "event excluded from relative residuals"),
			)
			continue
		}
		summary.Broadcast++
		for _, idx := range group.Rows {
			out[idx].Ref = chosen.TTResidual
			out[idx].HasRef = true
		}
	}
	return out, summary
}

// Verify checks that every event carries exactly one broadcast value, with
// a missing reference counting as a value and all NaNs counting as one.
func Verify(rows []Row) error {
	type value struct {
		has bool
		ref float64
	}
	same := func(a, b value) bool {
		if a.has != b.has {
			return false
		}
		return a.ref == b.ref || (math.IsNaN(a.ref) && math.IsNaN(b.ref))
	}
	seen := make(map[string]value)
	for _, r := range rows {
		v := value{has: r.HasRef}
		if r.HasRef {
			v.ref = r.Ref
		}
		prev, ok := seen[r.EventID]
		if !ok {
			seen[r.EventID] = v
			continue
		}
		if !same(prev, v) {
			return fmt.Errorf("%w: event %s", ErrInconsistentReference, r.EventID)
		}
	}
	return nil
}

// ComputeRelative sets Rel = TTResidual - Ref on every row. Rows without a
// reference get NaN.
func ComputeRelative(rows []Row) {
	for i := range rows {
		if rows[i].HasRef {
			rows[i].Rel = rows[i].TTResidual - rows[i].Ref
		} else {
			rows[i].Rel = math.NaN()
		}
	}
}

// Plottable returns the rows with a finite relative residual and the number
// of rows dropped.
func Plottable(rows []Row) ([]Row, int) {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if math.IsNaN(r.Rel) || math.IsInf(r.Rel, 0) {
			continue
		}
		out = append(out, r)
	}
	return out, len(rows) - len(out)
}
