package export_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/reader"

	"clockdrift/internal/analysis"
	"clockdrift/internal/export"
	"clockdrift/internal/picks"
	"clockdrift/internal/residual"
	"clockdrift/internal/testsupport"
)

func TestSinkWritesReadableParquet(t *testing.T) {
	dir := t.TempDir()
	res := &analysis.Result{
		Pair: analysis.Pair{Reference: picks.StationID{Network: "AU", Station: "ARMA"}, Target: picks.NewTargetSet("7D")},
		Rows: []residual.Row{
			{Pick: testsupport.NewPick("e1", "7D", "M01", "BHZ", 2), Ref: 0.5, HasRef: true, Rel: 1.5},
			{Pick: testsupport.NewPick("e2", "7D", "M02", "BHZ", -1), Ref: 1, HasRef: true, Rel: -2},
		},
	}
	if err := export.NewSink(dir, nil).Consume(context.Background(), res); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	path := export.FilePath(dir, res.Pair)
	if path != filepath.Join(dir, "7D", "7D_AU.ARMA_residuals.parquet") {
		t.Fatalf("unexpected path %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data[:4]) != "PAR1" || string(data[len(data)-4:]) != "PAR1" {
		t.Fatal("missing parquet magic bytes")
	}

	fr, err := buffer.NewBufferFile(data)
	if err != nil {
		t.Fatalf("NewBufferFile: %v", err)
	}
	pr, err := reader.NewParquetReader(fr, new(export.Record), 1)
	if err != nil {
		t.Fatalf("NewParquetReader: %v", err)
	}
	defer pr.ReadStop()
	if n := pr.GetNumRows(); n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
	records := make([]export.Record, 2)
	if err := pr.Read(&records); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if records[1].Station != "M02" || records[1].RelResidual != -2 || records[0].Pair != "AU.ARMA->7D" {
		t.Fatalf("unexpected records: %+v", records)
	}
	if records[0].Origin != testsupport.BaseOrigin.UnixMilli() {
		t.Fatalf("origin mismatch: %d", records[0].Origin)
	}
}

func TestWriteParquetEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	if err := export.WriteParquet(path, nil); err != nil {
		t.Fatalf("WriteParquet: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file: %v", err)
	}
}
