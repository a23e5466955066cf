package filter

import (
	"slices"
	"time"

	"clockdrift/internal/picks"
)

// Predicate decides whether a pick is kept.
type Predicate func(picks.Pick) bool

// And keeps a pick only when every predicate keeps it.
func And(preds ...Predicate) Predicate {
	return func(p picks.Pick) bool {
		for _, pred := range preds {
			if !pred(p) {
				return false
			}
		}
		return true
	}
}

// Or keeps a pick when any predicate keeps it.
func Or(preds ...Predicate) Predicate {
	return func(p picks.Pick) bool {
		for _, pred := range preds {
			if pred(p) {
				return true
			}
		}
		return false
	}
}

// Not inverts a predicate.
func Not(pred Predicate) Predicate {
	return func(p picks.Pick) bool { return !pred(p) }
}

// IsStation matches picks recorded at id.
func IsStation(id picks.StationID) Predicate {
	return id.Matches
}

// InTarget matches picks belonging to the target set.
func InTarget(target picks.TargetSet) Predicate {
	return target.Contains
}

// ChannelIn keeps picks whose channel code is listed in channels.
func ChannelIn(channels []string) Predicate {
	return func(p picks.Pick) bool {
		return ChannelIndex(channels, p.Channel) >= 0
	}
}

// ChannelIndex returns the position of channel in the priority list, or -1.
// Codes compare literally, so "B?Z" only matches a channel named "B?Z".
func ChannelIndex(channels []string, channel string) int {
	return slices.Index(channels, channel)
}

// NetworkNotBefore drops picks whose origin time precedes their network's
// earliest valid date. Networks without an entry always pass.
func NetworkNotBefore(minTimes map[string]time.Time) Predicate {
	return func(p picks.Pick) bool {
		start, ok := minTimes[p.Network]
		if !ok {
			return true
		}
		return !p.OriginTime().Before(start)
	}
}

// DistanceBetween keeps picks with min <= distance <= max.
func DistanceBetween(min, max float64) Predicate {
	return func(p picks.Pick) bool {
		return p.Distance >= min && p.Distance <= max
	}
}

// ReferenceSNRAtLeast requires reference station picks to reach min SNR.
// Other picks pass.
func ReferenceSNRAtLeast(ref picks.StationID, min float64) Predicate {
	return func(p picks.Pick) bool {
		if !ref.Matches(p) {
			return true
		}
		return p.SNR >= min
	}
}

// QualityAtLeast applies the CWT, slope and sigma thresholds to non-reference
// picks. Reference picks always pass since their scores may be zero.
func QualityAtLeast(ref picks.StationID, cwt, slope float64, nsigma int) Predicate {
	return func(p picks.Pick) bool {
		if ref.Matches(p) {
			return true
		}
		return p.QualityCWT >= cwt && p.QualitySlope >= slope && p.NSigma >= nsigma
	}
}
