// Package catalog derives the significant earthquakes of a pick table: days
// on which very large events produced many picks.
package catalog

import (
	"sort"
	"time"

	"clockdrift/internal/picks"
)

const dateLayout = "2006-01-02"

// SignificantEvent is a UTC day with many picks from large earthquakes.
type SignificantEvent struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
	Name  string    `json:"name"`
}

// Label returns the event name, or its date when it has none.
func (e SignificantEvent) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Date.Format(dateLayout)
}

// Options configures event detection.
type Options struct {
	MinMagnitude float64
	MinPickCount int
	// Names maps YYYY-MM-DD to a display name.
	Names map[string]string
}

// Significant groups picks with magnitude >= MinMagnitude by origin day and
// returns the days with at least MinPickCount picks, sorted by date.
func Significant(rows []picks.Pick, opts Options) []SignificantEvent {
	counts := make(map[time.Time]int)
	for _, p := range rows {
		if p.Magnitude < opts.MinMagnitude {
			continue
		}
		t := p.OriginTime()
		counts[time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)]++
	}

	var out []SignificantEvent
	for d, n := range counts {
		if n < opts.MinPickCount {
			continue
		}
		out = append(out, SignificantEvent{Date: d, Count: n, Name: opts.Names[d.Format(dateLayout)]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Within returns the events with start <= date < end.
func Within(events []SignificantEvent, start, end time.Time) []SignificantEvent {
	var out []SignificantEvent
	for _, e := range events {
		if !e.Date.Before(start) && e.Date.Before(end) {
			out = append(out, e)
		}
	}
	return out
}
