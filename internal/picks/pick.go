package picks

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Pick is one seismic arrival observation of one event at one station.
type Pick struct {
	EventID         string
	OriginTimestamp float64
	Magnitude       float64
	OriginLon       float64
	OriginLat       float64
	OriginDepthKm   float64
	Network         string
	Station         string
	Channel         string
	PickTimestamp   float64
	Phase           string
	StationLon      float64
	StationLat      float64
	Azimuth         float64
	BackAzimuth     float64
	// Distance is the angular event-station distance in degrees.
	Distance float64
	// TTResidual is observed minus model-predicted travel time, in seconds.
	TTResidual   float64
	SNR          float64
	QualityCWT   float64
	DominantFreq float64
	QualitySlope float64
	BandIndex    int
	NSigma       int
}

// OriginTime returns the event origin time in UTC.
func (p Pick) OriginTime() time.Time {
	return Timestamp(p.OriginTimestamp)
}

// PickTime returns the arrival pick time in UTC.
func (p Pick) PickTime() time.Time {
	return Timestamp(p.PickTimestamp)
}

// StationID returns the pick's (network, station) pair.
func (p Pick) StationID() StationID {
	return StationID{Network: p.Network, Station: p.Station}
}

// Timestamp converts float seconds since the epoch to a UTC time.
func Timestamp(seconds float64) time.Time {
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9))).UTC()
}

// StationID names a station within a network.
type StationID struct {
	Network string
	Station string
}

func (s StationID) String() string {
	return s.Network + "." + s.Station
}

// Matches reports whether p was recorded at this station.
func (s StationID) Matches(p Pick) bool {
	return p.Network == s.Network && p.Station == s.Station
}

// ParseStationID parses the NET.STA form.
func ParseStationID(value string) (StationID, error) {
	net, sta, ok := strings.Cut(strings.TrimSpace(value), ".")
	if !ok || net == "" || sta == "" || strings.Contains(sta, ".") {
		return StationID{}, fmt.Errorf("station id %q: expected NET.STA", value)
	}
	return StationID{Network: net, Station: sta}, nil
}

// TargetSet is a network and a set of its stations. An empty station set
// selects every station of the network.
type TargetSet struct {
	Network  string
	Stations map[string]struct{}
}

// NewTargetSet builds a TargetSet for network restricted to stations.
func NewTargetSet(network string, stations ...string) TargetSet {
	set := TargetSet{Network: network}
	if len(stations) > 0 {
		set.Stations = make(map[string]struct{}, len(stations))
		for _, sta := range stations {
			set.Stations[sta] = struct{}{}
		}
	}
	return set
}

// Contains reports whether p belongs to the target set.
func (t TargetSet) Contains(p Pick) bool {
	if p.Network != t.Network {
		return false
	}
	if len(t.Stations) == 0 {
		return true
	}
	_, ok := t.Stations[p.Station]
	return ok
}

func (t TargetSet) String() string {
	return t.Network
}

// EventGroup lists the row indices that share an event identifier.
type EventGroup struct {
	EventID string
	Rows    []int
}

// GroupByEvent groups row indices by event id, in first-seen order.
func GroupByEvent(rows []Pick) []EventGroup {
	index := make(map[string]int)
	var groups []EventGroup
	for i, p := range rows {
		pos, ok := index[p.EventID]
		if !ok {
			pos = len(groups)
			index[p.EventID] = pos
			groups = append(groups, EventGroup{EventID: p.EventID})
		}
		groups[pos].Rows = append(groups[pos].Rows, i)
	}
	return groups
}
