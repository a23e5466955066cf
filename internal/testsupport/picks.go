package testsupport

import (
	"fmt"
	"time"

	"clockdrift/internal/picks"
)

// BaseOrigin is the default origin time of fixture events.
var BaseOrigin = time.Date(2011, 3, 11, 5, 46, 24, 0, time.UTC)

// PickOption adjusts a fixture pick.
type PickOption func(*picks.Pick)

// NewPick returns a teleseismic, high quality pick that passes every default
// filter stage.
func NewPick(eventID, network, station, channel string, residual float64, opts ...PickOption) picks.Pick {
	origin := float64(BaseOrigin.Unix())
	p := picks.Pick{
		EventID:         eventID,
		OriginTimestamp: origin,
		Magnitude:       6.5,
		OriginLon:       142.4,
		OriginLat:       38.3,
		OriginDepthKm:   24,
		Network:         network,
		Station:         station,
		Channel:         channel,
		PickTimestamp:   origin + 600,
		Phase:           "P",
		StationLon:      133.9,
		StationLat:      -23.7,
		Azimuth:         190,
		BackAzimuth:     12,
		Distance:        62,
		TTResidual:      residual,
		SNR:             30,
		QualityCWT:      20,
		DominantFreq:    1,
		QualitySlope:    5,
		BandIndex:       1,
		NSigma:          6,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithOrigin sets the origin time and shifts the pick time with it.
func WithOrigin(t time.Time) PickOption {
	return func(p *picks.Pick) {
		origin := float64(t.Unix()) + float64(t.Nanosecond())/1e9
		p.PickTimestamp = origin + (p.PickTimestamp - p.OriginTimestamp)
		p.OriginTimestamp = origin
	}
}

// WithMagnitude sets the event magnitude.
func WithMagnitude(mag float64) PickOption {
	return func(p *picks.Pick) { p.Magnitude = mag }
}

// WithSNR sets the signal-to-noise ratio.
func WithSNR(snr float64) PickOption {
	return func(p *picks.Pick) { p.SNR = snr }
}

// WithQuality sets the CWT, slope and sigma quality scores.
func WithQuality(cwt, slope float64, nsigma int) PickOption {
	return func(p *picks.Pick) {
		p.QualityCWT = cwt
		p.QualitySlope = slope
		p.NSigma = nsigma
	}
}

// WithDistance sets the angular distance in degrees.
func WithDistance(deg float64) PickOption {
	return func(p *picks.Pick) { p.Distance = deg }
}

// WithLocation sets the station coordinates.
func WithLocation(lon, lat float64) PickOption {
	return func(p *picks.Pick) {
		p.StationLon = lon
		p.StationLat = lat
	}
}

// FillerPicks returns n good picks on distinct events of a network that no
// analysis pair uses, so quality thresholds can be exceeded by small fixtures.
func FillerPicks(network string, n int) []picks.Pick {
	rows := make([]picks.Pick, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, NewPick(fmt.Sprintf("filler-%03d", i), network, fmt.Sprintf("F%02d", i%10), "BHZ", 0.1))
	}
	return rows
}
