package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"clockdrift/internal/config"
	"clockdrift/internal/picks"
	"clockdrift/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	pickPath   string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("CLOCKDRIFT_OUTPUT_DIR", "")
	t.Setenv("CLOCKDRIFT_LOG_LEVEL", "")
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithMinQualityPicks(5)}, opts...)...)
	base := testsupport.BaseDir(cfg)
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)

	env := &cliTestEnv{
		cfg:        cfg,
		configPath: filepath.Join(base, "clockdrift.toml"),
		baseDir:    base,
	}
	env.writeConfig(t)
	env.pickPath = testsupport.WritePickFile(t, base, "picks.txt", scenarioPicks())
	return env
}

func (e *cliTestEnv) writeConfig(t *testing.T) {
	t.Helper()
	data, err := toml.Marshal(e.cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(e.configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// scenarioPicks has three events recorded by AU.ARMA and two 7D stations,
// one 7D-only event and filler rows from an unrelated network.
func scenarioPicks() []picks.Pick {
	var rows []picks.Pick
	for i, ev := range []string{"e1", "e2", "e3"} {
		origin := testsupport.BaseOrigin.Add(time.Duration(i) * 24 * time.Hour)
		rows = append(rows,
			testsupport.NewPick(ev, "AU", "ARMA", "BHZ", float64(i), testsupport.WithOrigin(origin), testsupport.WithMagnitude(9)),
			testsupport.NewPick(ev, "7D", "M01", "BHZ", 2, testsupport.WithOrigin(origin), testsupport.WithMagnitude(9)),
			testsupport.NewPick(ev, "7D", "M02", "BHZ", -2, testsupport.WithOrigin(origin), testsupport.WithMagnitude(9)),
		)
	}
	rows = append(rows, testsupport.NewPick("no-ref", "7D", "M01", "BHZ", 5))
	return append(rows, testsupport.FillerPicks("XX", 10)...)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
