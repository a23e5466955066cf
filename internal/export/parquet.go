package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"clockdrift/internal/analysis"
	"clockdrift/internal/fileutil"
	"clockdrift/internal/logging"
	"clockdrift/internal/residual"
	"clockdrift/internal/textutil"
)

// Record is the Parquet row layout of one relative residual.
type Record struct {
	Pair         string  `parquet:"name=pair,type=BYTE_ARRAY,convertedtype=UTF8"`
	EventID      string  `parquet:"name=event_id,type=BYTE_ARRAY,convertedtype=UTF8"`
	Origin       int64   `parquet:"name=origin,type=INT64,convertedtype=TIMESTAMP_MILLIS"`
	Magnitude    float64 `parquet:"name=magnitude,type=DOUBLE"`
	Network      string  `parquet:"name=network,type=BYTE_ARRAY,convertedtype=UTF8"`
	Station      string  `parquet:"name=station,type=BYTE_ARRAY,convertedtype=UTF8"`
	Channel      string  `parquet:"name=channel,type=BYTE_ARRAY,convertedtype=UTF8"`
	Distance     float64 `parquet:"name=distance,type=DOUBLE"`
	SNR          float64 `parquet:"name=snr,type=DOUBLE"`
	TTResidual   float64 `parquet:"name=tt_residual,type=DOUBLE"`
	RefResidual  float64 `parquet:"name=ref_residual,type=DOUBLE"`
	RelResidual  float64 `parquet:"name=rel_residual,type=DOUBLE"`
	QualityCWT   float64 `parquet:"name=quality_cwt,type=DOUBLE"`
	QualitySlope float64 `parquet:"name=quality_slope,type=DOUBLE"`
	NSigma       int32   `parquet:"name=n_sigma,type=INT32"`
}

// Records converts residual rows to Parquet records labelled with pair.
func Records(pair string, rows []residual.Row) []Record {
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = Record{
			Pair:         pair,
			EventID:      r.EventID,
			Origin:       r.OriginTime().UnixMilli(),
			Magnitude:    r.Magnitude,
			Network:      r.Network,
			Station:      r.Station,
			Channel:      r.Channel,
			Distance:     r.Distance,
			SNR:          r.SNR,
			TTResidual:   r.TTResidual,
			RefResidual:  r.Ref,
			RelResidual:  r.Rel,
			QualityCWT:   r.QualityCWT,
			QualitySlope: r.QualitySlope,
			NSigma:       int32(r.NSigma),
		}
	}
	return out
}

// WriteParquet writes records to path as a single SNAPPY compressed row
// group.
func WriteParquet(path string, records []Record) (err error) {
	buf := new(bytes.Buffer)
	rowGroup := int64(len(records))
	if rowGroup == 0 {
		rowGroup = 1
	}
	pw, err := writer.NewParquetWriterFromWriter(buf, new(Record), rowGroup)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := range records {
		if err := pw.Write(records[i]); err != nil {
			return fmt.Errorf("write parquet record %d: %w", i, err)
		}
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("parquet writer panicked during WriteStop: %v", r)
			}
		}()
		if stopErr := pw.WriteStop(); stopErr != nil {
			err = fmt.Errorf("finalize parquet: %w", stopErr)
		}
	}()
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(path, func(w io.Writer) error {
		_, err := buf.WriteTo(w)
		return err
	})
}

// FilePath returns the export file for a pair under dir.
func FilePath(dir string, pair analysis.Pair) string {
	network := textutil.SanitizeToken(pair.Target.Network)
	name := textutil.SanitizeFileName(network + "_" + pair.Reference.String() + "_residuals.parquet")
	return filepath.Join(dir, network, name)
}

// Sink writes one Parquet file per analysed pair.
type Sink struct {
	Dir    string
	Logger *slog.Logger
}

// NewSink returns a Parquet sink rooted at dir.
func NewSink(dir string, logger *slog.Logger) *Sink {
	return &Sink{Dir: dir, Logger: logging.NewComponentLogger(logger, "export")}
}

// Name identifies the sink in logs.
func (s *Sink) Name() string { return "parquet" }

// Consume exports the rows of res.
func (s *Sink) Consume(_ context.Context, res *analysis.Result) error {
	path := FilePath(s.Dir, res.Pair)
	if err := WriteParquet(path, Records(res.Pair.String(), res.Rows)); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	s.Logger.Info("parquet export written",
		logging.String(logging.FieldPair, res.Pair.String()),
		logging.String("path", path),
		logging.Int("rows", len(res.Rows)),
	)
	return nil
}
