package config

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upperCaser = cases.Upper(language.Und)

// NormalizeCode upper-cases and trims a network, station or channel code.
func NormalizeCode(code string) string {
	return upperCaser.String(strings.TrimSpace(code))
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFilter()
	c.normalizeAnalysis()
	c.normalizePlot()
	if err := c.normalizeExport(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("CLOCKDRIFT_OUTPUT_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.OutputDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StorePath) == "" {
		c.Paths.StorePath = defaultStorePath
	}
	if c.Paths.StorePath, err = expandPath(c.Paths.StorePath); err != nil {
		return fmt.Errorf("paths.store_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeFilter() {
	prefs := make([]string, 0, len(c.Filter.ChannelPreference))
	seen := make(map[string]struct{}, len(c.Filter.ChannelPreference))
	for _, ch := range c.Filter.ChannelPreference {
		normalized := NormalizeCode(ch)
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		prefs = append(prefs, normalized)
	}
	if len(prefs) == 0 {
		prefs = DefaultChannelPreference()
	}
	c.Filter.ChannelPreference = prefs

	if len(c.Filter.NetworkMinDates) > 0 {
		dates := make(map[string]string, len(c.Filter.NetworkMinDates))
		for net, date := range c.Filter.NetworkMinDates {
			dates[NormalizeCode(net)] = strings.TrimSpace(date)
		}
		c.Filter.NetworkMinDates = dates
	}
}

func (c *Config) normalizeAnalysis() {
	c.Analysis.ReferenceNetwork = NormalizeCode(c.Analysis.ReferenceNetwork)
	c.Analysis.ReferenceStations = normalizeCodes(c.Analysis.ReferenceStations)
	c.Analysis.TargetNetworks = normalizeCodes(c.Analysis.TargetNetworks)
}

func (c *Config) normalizePlot() {
	c.Plot.Mode = strings.ToLower(strings.TrimSpace(c.Plot.Mode))
	if c.Plot.Mode == "" {
		c.Plot.Mode = defaultPlotMode
	}
	c.Plot.FileLabel = strings.TrimSpace(c.Plot.FileLabel)
}

func (c *Config) normalizeExport() error {
	var err error
	if strings.TrimSpace(c.Export.ParquetDir) != "" {
		if c.Export.ParquetDir, err = expandPath(strings.TrimSpace(c.Export.ParquetDir)); err != nil {
			return fmt.Errorf("export.parquet_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Metrics.Textfile) != "" {
		if c.Metrics.Textfile, err = expandPath(strings.TrimSpace(c.Metrics.Textfile)); err != nil {
			return fmt.Errorf("metrics.textfile: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("CLOCKDRIFT_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizeCodes(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		normalized := NormalizeCode(v)
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
