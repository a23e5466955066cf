package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output and state locations.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	StorePath string `toml:"store_path"`
}

// Filter contains the pick quality and channel thresholds.
type Filter struct {
	// ChannelPreference lists trusted channel codes, most preferred first.
	// Codes compare literally.
	ChannelPreference []string `toml:"channel_preference"`
	// MinRefSNR is the minimum signal-to-noise ratio for reference station picks.
	MinRefSNR float64 `toml:"min_ref_snr"`
	// CWTCutoff is the minimum continuous wavelet transform quality score.
	CWTCutoff float64 `toml:"cwt_cutoff"`
	// SlopeCutoff is the minimum slope quality score.
	SlopeCutoff float64 `toml:"slope_cutoff"`
	// NSigmaCutoff is the minimum sigma count.
	NSigmaCutoff int `toml:"nsigma_cutoff"`
	// MinQualityPicks is the number of picks the quality filter must exceed.
	MinQualityPicks int `toml:"min_quality_picks"`
	// MinDistanceDeg and MaxDistanceDeg bound the teleseismic window (inclusive).
	MinDistanceDeg float64 `toml:"min_distance_deg"`
	MaxDistanceDeg float64 `toml:"max_distance_deg"`
	// NetworkMinDates maps a network code to its earliest valid date (YYYY-MM-DD).
	NetworkMinDates map[string]string `toml:"network_min_dates"`
}

// Analysis selects the reference stations and target networks.
type Analysis struct {
	ReferenceNetwork  string   `toml:"reference_network"`
	ReferenceStations []string `toml:"reference_stations"`
	TargetNetworks    []string `toml:"target_networks"`
}

// Plot contains rendering settings for relative residual scatter plots.
type Plot struct {
	// Mode is "file" to write PNG images or "display" to print residual tables.
	Mode         string  `toml:"mode"`
	TTScale      float64 `toml:"tt_scale"`
	SNRMin       float64 `toml:"snr_min"`
	SNRMax       float64 `toml:"snr_max"`
	MinMagnitude float64 `toml:"min_magnitude"`
	SizeScale    float64 `toml:"size_scale"`
	MinPointSize float64 `toml:"min_point_size"`
	WidthIn      float64 `toml:"width_in"`
	HeightIn     float64 `toml:"height_in"`
	FileLabel    string  `toml:"file_label"`
}

// Events configures the significant-earthquake marker catalog.
type Events struct {
	Enabled      bool              `toml:"enabled"`
	MinMagnitude float64           `toml:"min_magnitude"`
	MinPickCount int               `toml:"min_pick_count"`
	Names        map[string]string `toml:"names"`
}

// Store configures the SQLite results archive.
type Store struct {
	Enabled bool `toml:"enabled"`
}

// Export configures optional Parquet export of residual rows.
type Export struct {
	ParquetDir string `toml:"parquet_dir"`
}

// Metrics configures the Prometheus textfile written after a batch.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for clockdrift.
//
// Configuration sections by concern:
//   - Paths: plot output directory, log directory, results database
//   - Filter: channel priority and pick quality thresholds
//   - Analysis: reference station selection and target networks
//   - Plot: scatter styling and file/display mode
//   - Events: significant earthquake markers
//   - Store, Export, Metrics: optional result sinks
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Filter   Filter   `toml:"filter"`
	Analysis Analysis `toml:"analysis"`
	Plot     Plot     `toml:"plot"`
	Events   Events   `toml:"events"`
	Store    Store    `toml:"store"`
	Export   Export   `toml:"export"`
	Metrics  Metrics  `toml:"metrics"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clockdrift/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and codes normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("clockdrift.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output and log directories. The store
// directory is only created when the archive is enabled.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Store.Enabled && strings.TrimSpace(c.Paths.StorePath) != "" {
		dir := filepath.Dir(c.Paths.StorePath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store directory %q: %w", dir, err)
		}
	}
	return nil
}

// NetworkMinTimes returns the parsed per-network earliest valid dates.
// Dates were validated during Load, so unparsable entries are skipped.
func (c *Config) NetworkMinTimes() map[string]time.Time {
	out := make(map[string]time.Time, len(c.Filter.NetworkMinDates))
	for net, value := range c.Filter.NetworkMinDates {
		t, err := time.Parse(dateLayout, value)
		if err != nil {
			continue
		}
		out[net] = t.UTC()
	}
	return out
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
