package residual_test

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"clockdrift/internal/config"
	"clockdrift/internal/picks"
	"clockdrift/internal/residual"
	"clockdrift/internal/testsupport"
)

var (
	ref   = picks.StationID{Network: "AU", Station: "ARMA"}
	prefs = config.DefaultChannelPreference()
)

func TestBroadcastThreeEvents(t *testing.T) {
	var rows []picks.Pick
	refs := map[string]float64{"e1": 1.5, "e2": -2.0, "e3": 0.25}
	for _, ev := range []string{"e1", "e2", "e3"} {
		rows = append(rows,
			testsupport.NewPick(ev, "7D", "M01", "BHZ", 3.0),
			testsupport.NewPick(ev, "AU", "ARMA", "BHZ", refs[ev]),
			testsupport.NewPick(ev, "7D", "M02", "BHZ", -1.0),
		)
	}
	rows = append(rows, testsupport.NewPick("orphan", "7D", "M01", "BHZ", 9))

	out, summary := residual.Broadcast(rows, ref, prefs, nil)
	if summary.Events != 4 || summary.Broadcast != 3 || summary.NoReference != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if err := residual.Verify(out); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	residual.ComputeRelative(out)
	plottable, dropped := residual.Plottable(out)
	if dropped != 1 || len(plottable) != 9 {
		t.Fatalf("expected 9 plottable rows and 1 dropped, got %d and %d", len(plottable), dropped)
	}
	for _, r := range plottable {
		if r.EventID == "orphan" {
			t.Fatal("event without reference must not be plotted")
		}
		want := r.TTResidual - refs[r.EventID]
		if math.Abs(r.Rel-want) > 1e-9 {
			t.Fatalf("event %s station %s: rel %v want %v", r.EventID, r.Station, r.Rel, want)
		}
	}
	if !math.IsNaN(out[len(out)-1].Rel) {
		t.Fatalf("expected NaN rel for orphan row, got %v", out[len(out)-1].Rel)
	}
}

func TestSelectReferencePrefersEarlierPattern(t *testing.T) {
	group := []picks.Pick{
		testsupport.NewPick("e", "AU", "ARMA", "BHZ", 0.1),
		testsupport.NewPick("e", "AU", "ARMA", "BHZ_00", 5.0),
		testsupport.NewPick("e", "AU", "ARMA", "SHZ", 0.0),
	}
	got, err := residual.SelectReference(group, ref, prefs)
	if err != nil {
		t.Fatalf("SelectReference: %v", err)
	}
	if got.Channel != "BHZ_00" {
		t.Fatalf("expected BHZ_00, got %s", got.Channel)
	}
}

func TestSelectReferenceFallsThroughToSHZ(t *testing.T) {
	group := []picks.Pick{
		testsupport.NewPick("e", "AU", "ARMA", "SHZ", 0.7),
		testsupport.NewPick("e", "AU", "QIS", "BHZ", 0.1),
	}
	got, err := residual.SelectReference(group, ref, prefs)
	if err != nil {
		t.Fatalf("SelectReference: %v", err)
	}
	if got.Channel != "SHZ" || got.TTResidual != 0.7 {
		t.Fatalf("unexpected reference: %+v", got)
	}
}

func TestSelectReferenceDuplicatePicks(t *testing.T) {
	group := []picks.Pick{
		testsupport.NewPick("e", "AU", "ARMA", "BHZ", 2.0, testsupport.WithSNR(11)),
		testsupport.NewPick("e", "AU", "ARMA", "BHZ", -0.5, testsupport.WithSNR(12)),
		testsupport.NewPick("e", "AU", "ARMA", "BHZ", 0.5, testsupport.WithSNR(13)),
	}
	got, err := residual.SelectReference(group, ref, prefs)
	if err != nil {
		t.Fatalf("SelectReference: %v", err)
	}
	if got.TTResidual != -0.5 || got.SNR != 12 {
		t.Fatalf("expected first smallest residual, got %+v", got)
	}
}

func TestSelectReferenceErrors(t *testing.T) {
	if _, err := residual.SelectReference([]picks.Pick{testsupport.NewPick("e", "AU", "QIS", "BHZ", 0)}, ref, prefs); !errors.Is(err, residual.ErrNoReference) {
		t.Fatalf("expected ErrNoReference, got %v", err)
	}
	group := []picks.Pick{testsupport.NewPick("e", "AU", "ARMA", "HHZ", 0)}
	_, err := residual.SelectReference(group, ref, prefs)
	if !errors.Is(err, residual.ErrNoPreferredChannel) {
		t.Fatalf("expected ErrNoPreferredChannel, got %v", err)
	}
	if !strings.Contains(err.Error(), "HHZ") || !strings.Contains(err.Error(), "BHZ_00") {
		t.Fatalf("expected available and allowed channels in error, got %v", err)
	}
}

func TestBroadcastWarnsOnUnpreferredReferenceChannel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	rows := []picks.Pick{
		testsupport.NewPick("e1", "AU", "ARMA", "HHZ", 1),
		testsupport.NewPick("e1", "7D", "M01", "BHZ", 2),
		testsupport.NewPick("e2", "AU", "ARMA", "BHZ", 1),
		testsupport.NewPick("e2", "7D", "M01", "BHZ", 2),
	}
	out, summary := residual.Broadcast(rows, ref, prefs, logger)
	if summary.NoPreferredChannel != 1 || summary.Broadcast != 1 || summary.Skipped() != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if out[0].HasRef || out[1].HasRef || !out[3].HasRef {
		t.Fatalf("unexpected broadcast flags: %+v", out)
	}
	logged := buf.String()
	if !strings.Contains(logged, "level=WARN") || !strings.Contains(logged, "event_id=e1") {
		t.Fatalf("expected warning for e1, got %q", logged)
	}
}

func TestVerifyDetectsInconsistentGroups(t *testing.T) {
	rows := []residual.Row{
		{Pick: picks.Pick{EventID: "e"}, Ref: 1, HasRef: true},
		{Pick: picks.Pick{EventID: "e"}, Ref: 2, HasRef: true},
	}
	if err := residual.Verify(rows); !errors.Is(err, residual.ErrInconsistentReference) {
		t.Fatalf("expected ErrInconsistentReference, got %v", err)
	}
	rows[1] = residual.Row{Pick: picks.Pick{EventID: "e"}}
	if err := residual.Verify(rows); !errors.Is(err, residual.ErrInconsistentReference) {
		t.Fatalf("expected mixed missing/present to be inconsistent, got %v", err)
	}
}

func TestSelectReferenceTreatsChannelCodesLiterally(t *testing.T) {
	group := []picks.Pick{
		testsupport.NewPick("e", "AU", "ARMA", "SHZ", 5),
		testsupport.NewPick("e", "AU", "ARMA", "BLZ", 9),
	}
	got, err := residual.SelectReference(group, ref, prefs)
	if err != nil {
		t.Fatalf("SelectReference: %v", err)
	}
	if got.Channel != "SHZ" || got.TTResidual != 5 {
		t.Fatalf("expected SHZ/5, got %s/%v", got.Channel, got.TTResidual)
	}

	if _, err := residual.SelectReference(group[1:], ref, prefs); !errors.Is(err, residual.ErrNoPreferredChannel) {
		t.Fatalf("expected BLZ alone to be rejected, got %v", err)
	}
}

func TestSelectReferenceRanksNaNLast(t *testing.T) {
	group := []picks.Pick{
		testsupport.NewPick("e", "AU", "ARMA", "BHZ", math.NaN()),
		testsupport.NewPick("e", "AU", "ARMA", "BHZ", 3),
	}
	got, err := residual.SelectReference(group, ref, prefs)
	if err != nil {
		t.Fatalf("SelectReference: %v", err)
	}
	if got.TTResidual != 3 {
		t.Fatalf("expected finite residual to win, got %v", got.TTResidual)
	}
}

func TestVerifyAcceptsNaNReference(t *testing.T) {
	rows := []picks.Pick{
		testsupport.NewPick("e1", "AU", "ARMA", "BHZ", math.NaN()),
		testsupport.NewPick("e1", "AU", "QIS", "BHZ", 1),
	}
	out, summary := residual.Broadcast(rows, ref, prefs, nil)
	if summary.Broadcast != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if err := residual.Verify(out); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	residual.ComputeRelative(out)
	plottable, dropped := residual.Plottable(out)
	if len(plottable) != 0 || dropped != 2 {
		t.Fatalf("expected NaN-referenced rows to be dropped, got %d kept, %d dropped", len(plottable), dropped)
	}
}
