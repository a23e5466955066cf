package picks

import (
	"fmt"
	"math"
	"strconv"
)

// Column header names of the pick table schema.
const (
	ColEventID         = "#eventID"
	ColOriginTimestamp = "originTimestamp"
	ColMagnitude       = "mag"
	ColOriginLon       = "originLon"
	ColOriginLat       = "originLat"
	ColOriginDepthKm   = "originDepthKm"
	ColNetwork         = "net"
	ColStation         = "sta"
	ColChannel         = "cha"
	ColPickTimestamp   = "pickTimestamp"
	ColPhase           = "phase"
	ColStationLon      = "stationLon"
	ColStationLat      = "stationLat"
	ColAzimuth         = "az"
	ColBackAzimuth     = "baz"
	ColDistance        = "distance"
	ColTTResidual      = "ttResidual"
	ColSNR             = "snr"
	ColQualityCWT      = "qualityMeasureCWT"
	ColDominantFreq    = "domFreq"
	ColQualitySlope    = "qualityMeasureSlope"
	ColBandIndex       = "bandIndex"
	ColNSigma          = "nSigma"
)

// emptyToken stands in for empty string values so rows keep their width.
const emptyToken = "-"

type column struct {
	name     string
	required bool
	set      func(*Pick, string) error
	get      func(Pick) string
}

func floatColumn(name string, required bool, field func(*Pick) *float64) column {
	return column{
		name:     name,
		required: required,
		set: func(p *Pick, raw string) error {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*field(p) = v
			return nil
		},
		get: func(p Pick) string {
			return strconv.FormatFloat(*field(&p), 'g', -1, 64)
		},
	}
}

func intColumn(name string, required bool, field func(*Pick) *int) column {
	return column{
		name:     name,
		required: required,
		set: func(p *Pick, raw string) error {
			v, err := parseInt(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*field(p) = v
			return nil
		},
		get: func(p Pick) string {
			return strconv.Itoa(*field(&p))
		},
	}
}

func stringColumn(name string, required bool, field func(*Pick) *string) column {
	return column{
		name:     name,
		required: required,
		set: func(p *Pick, raw string) error {
			if raw == emptyToken {
				raw = ""
			}
			*field(p) = raw
			return nil
		},
		get: func(p Pick) string {
			if v := *field(&p); v != "" {
				return v
			}
			return emptyToken
		},
	}
}

// parseInt accepts integral values written either as integers or as floats
// such as "4.0".
func parseInt(raw string) (int, error) {
	if v, err := strconv.Atoi(raw); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("value %q is not integral", raw)
	}
	return int(f), nil
}

// schema lists every column in canonical output order.
var schema = []column{
	stringColumn(ColEventID, true, func(p *Pick) *string { return &p.EventID }),
	floatColumn(ColOriginTimestamp, true, func(p *Pick) *float64 { return &p.OriginTimestamp }),
	floatColumn(ColMagnitude, true, func(p *Pick) *float64 { return &p.Magnitude }),
	floatColumn(ColOriginLon, false, func(p *Pick) *float64 { return &p.OriginLon }),
	floatColumn(ColOriginLat, false, func(p *Pick) *float64 { return &p.OriginLat }),
	floatColumn(ColOriginDepthKm, false, func(p *Pick) *float64 { return &p.OriginDepthKm }),
	stringColumn(ColNetwork, true, func(p *Pick) *string { return &p.Network }),
	stringColumn(ColStation, true, func(p *Pick) *string { return &p.Station }),
	stringColumn(ColChannel, true, func(p *Pick) *string { return &p.Channel }),
	floatColumn(ColPickTimestamp, false, func(p *Pick) *float64 { return &p.PickTimestamp }),
	stringColumn(ColPhase, false, func(p *Pick) *string { return &p.Phase }),
	floatColumn(ColStationLon, true, func(p *Pick) *float64 { return &p.StationLon }),
	floatColumn(ColStationLat, true, func(p *Pick) *float64 { return &p.StationLat }),
	floatColumn(ColAzimuth, false, func(p *Pick) *float64 { return &p.Azimuth }),
	floatColumn(ColBackAzimuth, false, func(p *Pick) *float64 { return &p.BackAzimuth }),
	floatColumn(ColDistance, true, func(p *Pick) *float64 { return &p.Distance }),
	floatColumn(ColTTResidual, true, func(p *Pick) *float64 { return &p.TTResidual }),
	floatColumn(ColSNR, true, func(p *Pick) *float64 { return &p.SNR }),
	floatColumn(ColQualityCWT, true, func(p *Pick) *float64 { return &p.QualityCWT }),
	floatColumn(ColDominantFreq, false, func(p *Pick) *float64 { return &p.DominantFreq }),
	floatColumn(ColQualitySlope, true, func(p *Pick) *float64 { return &p.QualitySlope }),
	intColumn(ColBandIndex, false, func(p *Pick) *int { return &p.BandIndex }),
	intColumn(ColNSigma, true, func(p *Pick) *int { return &p.NSigma }),
}

// Header returns the canonical column names in output order.
func Header() []string {
	names := make([]string, len(schema))
	for i, col := range schema {
		names[i] = col.name
	}
	return names
}
