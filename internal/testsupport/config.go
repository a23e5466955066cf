package testsupport

import (
	"path/filepath"
	"testing"

	"clockdrift/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The results archive is disabled unless WithStore is supplied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StorePath = filepath.Join(base, "state", "results.db")
	cfgVal.Store.Enabled = false
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithStore enables the SQLite results archive under the temp directory.
func WithStore() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Enabled = true
	}
}

// WithMinQualityPicks lowers the quality filter floor so small fixtures pass.
func WithMinQualityPicks(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Filter.MinQualityPicks = n
	}
}

// WithReference sets the reference network and optional stations.
func WithReference(network string, stations ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Analysis.ReferenceNetwork = network
		b.cfg.Analysis.ReferenceStations = stations
	}
}

// WithParquetDir enables Parquet export into a temp subdirectory.
func WithParquetDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Export.ParquetDir = filepath.Join(b.baseDir, "parquet")
	}
}

// WithMetricsTextfile enables the Prometheus textfile under the temp directory.
func WithMetricsTextfile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.Textfile = filepath.Join(b.baseDir, "metrics", "clockdrift.prom")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
