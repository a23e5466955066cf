package report_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"clockdrift/internal/analysis"
	"clockdrift/internal/picks"
	"clockdrift/internal/report"
	"clockdrift/internal/residual"
)

func rows(ids ...string) []residual.Row {
	out := make([]residual.Row, len(ids))
	for i, id := range ids {
		out[i] = residual.Row{Pick: picks.Pick{EventID: id, Network: "7D", Station: "M01", Channel: "BHZ"}, HasRef: true, Rel: 1.25}
	}
	return out
}

func TestEventBlocksAlternate(t *testing.T) {
	blocks := report.EventBlocks(rows("a", "a", "b", "c", "c", "c", "a"))
	if len(blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %+v", blocks)
	}
	wantShade := []int{0, 1, 0, 1}
	wantLen := []int{2, 1, 3, 1}
	for i, b := range blocks {
		if b.Shade != wantShade[i] || b.End-b.Start != wantLen[i] {
			t.Fatalf("block %d: %+v", i, b)
		}
	}
	if len(report.EventBlocks(nil)) != 0 {
		t.Fatal("expected no blocks for empty input")
	}
}

func TestRenderColorizesAlternateBlocks(t *testing.T) {
	plain := report.Render(rows("a", "b"), false)
	if strings.Contains(plain, "\x1b[") {
		t.Fatalf("expected no ANSI codes without colour:\n%s", plain)
	}
	if !strings.Contains(plain, "Rel Res") || !strings.Contains(plain, "1.250") {
		t.Fatalf("unexpected table:\n%s", plain)
	}

	colored := report.Render(rows("a", "b"), true)
	var shadedLines int
	for _, line := range strings.Split(colored, "\n") {
		if strings.Contains(line, "\x1b[") {
			shadedLines++
		}
	}
	if shadedLines != 1 {
		t.Fatalf("expected only the second block shaded, got %d lines:\n%s", shadedLines, colored)
	}
}

func TestPrinterConsume(t *testing.T) {
	if report.ShouldColorize(io.Discard) {
		t.Fatal("io.Discard is not a terminal")
	}
	var buf bytes.Buffer
	p := report.NewPrinter(&buf)
	res := &analysis.Result{
		Pair: analysis.Pair{Reference: picks.StationID{Network: "AU", Station: "ARMA"}, Target: picks.NewTargetSet("7D")},
		Rows: rows("a"),
	}
	if err := p.Consume(context.Background(), res); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "== AU.ARMA->7D: 1 picks") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}
