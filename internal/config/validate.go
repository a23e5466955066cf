package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFilter(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validatePlot(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFilter() error {
	if c.Filter.MinQualityPicks < 0 {
		return errors.New("filter.min_quality_picks must be >= 0")
	}
	if c.Filter.MinDistanceDeg < 0 || c.Filter.MaxDistanceDeg > 180 {
		return errors.New("filter distance window must lie within 0..180 degrees")
	}
	if c.Filter.MinDistanceDeg > c.Filter.MaxDistanceDeg {
		return fmt.Errorf("filter.min_distance_deg (%g) exceeds filter.max_distance_deg (%g)", c.Filter.MinDistanceDeg, c.Filter.MaxDistanceDeg)
	}
	for net, date := range c.Filter.NetworkMinDates {
		if _, err := time.Parse(dateLayout, date); err != nil {
			return fmt.Errorf("filter.network_min_dates.%s: expected YYYY-MM-DD, got %q", net, date)
		}
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.ReferenceNetwork == "" {
		return errors.New("analysis.reference_network must be set")
	}
	return nil
}

func (c *Config) validatePlot() error {
	switch c.Plot.Mode {
	case PlotModeFile, PlotModeDisplay:
	default:
		return fmt.Errorf("plot.mode: unsupported value %q (want %q or %q)", c.Plot.Mode, PlotModeFile, PlotModeDisplay)
	}
	if c.Plot.TTScale <= 0 {
		return errors.New("plot.tt_scale must be positive")
	}
	if c.Plot.SNRMax <= c.Plot.SNRMin {
		return errors.New("plot.snr_max must exceed plot.snr_min")
	}
	if c.Plot.WidthIn <= 0 || c.Plot.HeightIn <= 0 {
		return errors.New("plot.width_in and plot.height_in must be positive")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if c.Events.MinPickCount < 0 {
		return errors.New("events.min_pick_count must be >= 0")
	}
	for date := range c.Events.Names {
		if _, err := time.Parse(dateLayout, date); err != nil {
			return fmt.Errorf("events.names: key %q is not a YYYY-MM-DD date", date)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
