package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"clockdrift/internal/analysis"
	"clockdrift/internal/residual"
)

var headers = []string{
	"Event", "Origin (UTC)", "Mag", "Net", "Sta", "Cha", "Dist", "SNR",
	"TT Res", "Ref Res", "Rel Res", "CWT", "Slope", "nSigma",
}

// first column that is right aligned
const numericFrom = 6

var shadeColors = text.Colors{text.BgHiBlack, text.FgHiWhite}

// ShouldColorize reports whether writer is a terminal.
func ShouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Render formats rows as a table. With colorize set, alternate event blocks
// get a shaded background.
func Render(rows []residual.Row, colorize bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, block := range EventBlocks(rows) {
		for _, row := range rows[block.Start:block.End] {
			cells := formatRow(row)
			out := make(table.Row, len(cells))
			for i, cell := range cells {
				if colorize && block.Shade == 1 {
					out[i] = shadeColors.Sprint(cell)
				} else {
					out[i] = cell
				}
			}
			tw.AppendRow(out)
		}
	}

	configs := make([]table.ColumnConfig, 0, len(headers))
	for i := range headers {
		align := text.AlignLeft
		if i >= numericFrom {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func formatRow(r residual.Row) []string {
	return []string{
		r.EventID,
		r.OriginTime().Format("2006-01-02 15:04:05"),
		strconv.FormatFloat(r.Magnitude, 'f', 1, 64),
		r.Network,
		r.Station,
		r.Channel,
		strconv.FormatFloat(r.Distance, 'f', 2, 64),
		strconv.FormatFloat(r.SNR, 'f', 1, 64),
		strconv.FormatFloat(r.TTResidual, 'f', 3, 64),
		strconv.FormatFloat(r.Ref, 'f', 3, 64),
		strconv.FormatFloat(r.Rel, 'f', 3, 64),
		strconv.FormatFloat(r.QualityCWT, 'f', 1, 64),
		strconv.FormatFloat(r.QualitySlope, 'f', 1, 64),
		strconv.Itoa(r.NSigma),
	}
}

// Printer writes each pair's residual table to W.
type Printer struct {
	W        io.Writer
	Colorize bool
}

// NewPrinter returns a Printer that colours output only on terminals.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{W: w, Colorize: ShouldColorize(w)}
}

// Name identifies the sink in logs.
func (p *Printer) Name() string { return "table" }

// Consume prints the pair heading and its residual table.
func (p *Printer) Consume(_ context.Context, res *analysis.Result) error {
	_, err := fmt.Fprintf(p.W, "== %s: %d picks, %s to %s ==\n%s\n",
		res.Pair, len(res.Rows),
		res.Range.Start.Format("2006-01-02"), res.Range.End.Format("2006-01-02"),
		Render(res.Rows, p.Colorize))
	return err
}
