// Package stations answers windowing questions about networks and stations
// in a pick table: membership, mean position and date coverage.
package stations

import (
	"sort"
	"time"

	"clockdrift/internal/filter"
	"clockdrift/internal/picks"
)

// DateRange is an inclusive span of origin times.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the whole number of days spanned.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// NetworkStations returns the sorted distinct station codes of a network.
func NetworkStations(rows []picks.Pick, network string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range rows {
		if p.Network != network {
			continue
		}
		if _, ok := seen[p.Station]; ok {
			continue
		}
		seen[p.Station] = struct{}{}
		out = append(out, p.Station)
	}
	sort.Strings(out)
	return out
}

// NetworkMean returns the mean station latitude and longitude over every pick
// of a network. ok is false when the network has no picks.
func NetworkMean(rows []picks.Pick, network string) (lat, lon float64, ok bool) {
	var n int
	for _, p := range rows {
		if p.Network != network {
			continue
		}
		lat += p.StationLat
		lon += p.StationLon
		n++
	}
	if n == 0 {
		return 0, 0, false
	}
	return lat / float64(n), lon / float64(n), true
}

// NetworkDateRange returns the origin time span of a network's picks.
func NetworkDateRange(rows []picks.Pick, network string) (DateRange, bool) {
	return rangeOf(rows, func(p picks.Pick) bool { return p.Network == network })
}

// StationDateRange returns the origin time span of one station's picks.
func StationDateRange(rows []picks.Pick, id picks.StationID) (DateRange, bool) {
	return rangeOf(rows, id.Matches)
}

// OverlappingDateRange returns the origin time span of reference and target
// picks restricted to events both observed.
func OverlappingDateRange(rows []picks.Pick, ref picks.StationID, target picks.TargetSet) (DateRange, bool) {
	narrowed, _ := filter.Narrow(rows, ref, target)
	return rangeOf(narrowed, func(picks.Pick) bool { return true })
}

// RangeOf returns the origin time span of all rows.
func RangeOf(rows []picks.Pick) (DateRange, bool) {
	return rangeOf(rows, func(picks.Pick) bool { return true })
}

func rangeOf(rows []picks.Pick, keep filter.Predicate) (DateRange, bool) {
	var (
		minTS, maxTS float64
		found        bool
	)
	for _, p := range rows {
		if !keep(p) {
			continue
		}
		if !found || p.OriginTimestamp < minTS {
			minTS = p.OriginTimestamp
		}
		if !found || p.OriginTimestamp > maxTS {
			maxTS = p.OriginTimestamp
		}
		found = true
	}
	if !found {
		return DateRange{}, false
	}
	return DateRange{Start: picks.Timestamp(minTS), End: picks.Timestamp(maxTS)}, true
}

// StationCoverage is the date span and pick count of one station.
type StationCoverage struct {
	Station string    `json:"station"`
	Picks   int       `json:"picks"`
	Range   DateRange `json:"range"`
}

// NetworkSummary collects the windowing answers for one network.
type NetworkSummary struct {
	Network  string            `json:"network"`
	Picks    int               `json:"picks"`
	Events   int               `json:"events"`
	MeanLat  float64           `json:"mean_lat"`
	MeanLon  float64           `json:"mean_lon"`
	Range    DateRange         `json:"range"`
	Stations []StationCoverage `json:"stations"`
}

// Summarize builds a NetworkSummary. ok is false when the network has no picks.
func Summarize(rows []picks.Pick, network string) (NetworkSummary, bool) {
	lat, lon, ok := NetworkMean(rows, network)
	if !ok {
		return NetworkSummary{Network: network}, false
	}
	dr, _ := NetworkDateRange(rows, network)
	summary := NetworkSummary{
		Network: network,
		MeanLat: lat,
		MeanLon: lon,
		Range:   dr,
	}
	events := make(map[string]struct{})
	counts := make(map[string]int)
	for _, p := range rows {
		if p.Network != network {
			continue
		}
		summary.Picks++
		events[p.EventID] = struct{}{}
		counts[p.Station]++
	}
	summary.Events = len(events)
	for _, sta := range NetworkStations(rows, network) {
		sr, _ := StationDateRange(rows, picks.StationID{Network: network, Station: sta})
		summary.Stations = append(summary.Stations, StationCoverage{Station: sta, Picks: counts[sta], Range: sr})
	}
	return summary, true
}
