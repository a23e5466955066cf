package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"clockdrift/internal/harvest"
	"clockdrift/internal/picks"
	"clockdrift/internal/testsupport"
)

func TestHarvestMergesStationFiles(t *testing.T) {
	env := setupCLITestEnv(t)
	src := filepath.Join(env.baseDir, "source")
	for _, sub := range []string{"AU", "7D"} {
		if err := os.MkdirAll(filepath.Join(src, sub), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	testsupport.WritePickFile(t, filepath.Join(src, "AU"), "ARMA.txt", []picks.Pick{testsupport.NewPick("e1", "AU", "ARMA", "BHZ", 1)})
	testsupport.WritePickFile(t, filepath.Join(src, "7D"), "M01.txt", []picks.Pick{
		testsupport.NewPick("e1", "7D", "M01", "BHZ", 2),
		testsupport.NewPick("e2", "7D", "M01", "BHZ", 3),
	})
	if err := os.WriteFile(filepath.Join(src, "notes.md"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}
	outDir := filepath.Join(env.baseDir, "ensemble")

	out, _, err := runCLI(t, []string{"harvest", src, outDir, "--workers", "2", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("harvest: %v", err)
	}
	var rep harvest.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if rep.Files != 2 || rep.Picks != 3 || len(rep.Ranks) != 2 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	merged, err := picks.ReadFile(filepath.Join(outDir, harvest.EnsembleFileName))
	if err != nil {
		t.Fatalf("read ensemble: %v", err)
	}
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged picks, got %d", len(merged))
	}
	if _, err := os.Stat(rep.ParamsPath); err != nil {
		t.Fatalf("expected parameter record: %v", err)
	}
}

func TestHarvestFailsWithoutInput(t *testing.T) {
	env := setupCLITestEnv(t)
	src := t.TempDir()
	if _, _, err := runCLI(t, []string{"harvest", src, filepath.Join(env.baseDir, "ensemble")}, env.configPath); err == nil {
		t.Fatal("expected error for empty source directory")
	}
}
