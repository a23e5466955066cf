package plot

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	gonumplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"clockdrift/internal/analysis"
	"clockdrift/internal/catalog"
	"clockdrift/internal/config"
	"clockdrift/internal/fileutil"
	"clockdrift/internal/logging"
	"clockdrift/internal/residual"
	"clockdrift/internal/textutil"
)

const (
	yAxisLabel = "Relative TT residual (sec)"
	xAxisLabel = "Event Origin Timestamp"
	dateFormat = "2006-01-02"
	dpi        = 150
	pointAlpha = 0.5
)

var (
	markerColor = color.NRGBA{G: 0x80, A: 0x80}
	labelColor  = color.NRGBA{G: 0x80, A: 0xc0}
	gridColor   = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x80}
)

// FileName returns the image name for a target network plotted against a
// reference station.
func FileName(network, reference, label string) string {
	yLabel := strings.ReplaceAll(yAxisLabel, " ", "")
	return textutil.SanitizeFileName(network + "_" + reference + "_" + yLabel + label + ".png")
}

// FilePath returns where a pair's image is written under outputDir. Each
// target network gets its own subfolder.
func FilePath(outputDir string, pair analysis.Pair, label string) string {
	network := textutil.SanitizeToken(pair.Target.Network)
	return filepath.Join(outputDir, network, FileName(network, pair.Reference.String(), label))
}

// PointRadius converts a magnitude to a glyph radius. The configured size is
// a marker area in square points.
func PointRadius(mag float64, settings config.Plot) vg.Length {
	area := math.Max(settings.SizeScale*(mag-settings.MinMagnitude), settings.MinPointSize)
	return vg.Points(math.Sqrt(area) / 2)
}

// Renderer draws relative residual scatter plots.
type Renderer struct {
	OutputDir         string
	Settings          config.Plot
	Filter            config.Filter
	ChannelPreference []string
	Events            []catalog.SignificantEvent
	Logger            *slog.Logger
}

// NewRenderer builds a renderer from configuration. events may be nil.
func NewRenderer(cfg *config.Config, events []catalog.SignificantEvent, logger *slog.Logger) *Renderer {
	return &Renderer{
		OutputDir:         cfg.Paths.OutputDir,
		Settings:          cfg.Plot,
		Filter:            cfg.Filter,
		ChannelPreference: cfg.Filter.ChannelPreference,
		Events:            events,
		Logger:            logging.NewComponentLogger(logger, "plot"),
	}
}

// Name identifies the sink in logs.
func (r *Renderer) Name() string { return "plot" }

// Consume renders res and writes it under the output directory.
func (r *Renderer) Consume(_ context.Context, res *analysis.Result) error {
	path, err := r.Save(res)
	if err != nil {
		return err
	}
	r.Logger.Info("plot written",
		logging.String(logging.FieldPair, res.Pair.String()),
		logging.String("path", path),
		logging.Int("points", len(res.Rows)),
	)
	return nil
}

// Save renders res to its PNG path and returns the path.
func (r *Renderer) Save(res *analysis.Result) (string, error) {
	p, err := r.Render(res)
	if err != nil {
		return "", err
	}
	path := FilePath(r.OutputDir, res.Pair, r.Settings.FileLabel)
	width := vg.Length(r.Settings.WidthIn) * vg.Inch
	height := vg.Length(r.Settings.HeightIn) * vg.Inch
	err = fileutil.WriteAtomic(path, func(w io.Writer) error {
		canvas := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(dpi))
		p.Draw(draw.New(canvas))
		_, err := vgimg.PngCanvas{Canvas: canvas}.WriteTo(w)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("write plot %s: %w", path, err)
	}
	return path, nil
}

// Render builds the scatter plot for one pair without writing it.
func (r *Renderer) Render(res *analysis.Result) (*gonumplot.Plot, error) {
	s := r.Settings
	p := gonumplot.New()
	p.Title.Text = r.title(res)
	p.X.Label.Text = xAxisLabel
	p.Y.Label.Text = yAxisLabel
	p.X.Tick.Marker = gonumplot.TimeTicks{Format: dateFormat, Time: gonumplot.UTCUnixTime}

	xmin, xmax := unixSeconds(res.Range.Start), unixSeconds(res.Range.End)
	if xmax <= xmin {
		xmin -= 12 * 3600
		xmax += 12 * 3600
	}
	p.X.Min, p.X.Max = xmin, xmax
	p.Y.Min, p.Y.Max = -s.TTScale, s.TTScale

	grid := plotter.NewGrid()
	grid.Vertical.Color = gridColor
	grid.Horizontal.Color = gridColor
	grid.Vertical.Dashes = []vg.Length{vg.Points(1), vg.Points(2)}
	grid.Horizontal.Dashes = []vg.Length{vg.Points(1), vg.Points(2)}
	p.Add(grid)

	points := visible(res.Rows, s.TTScale)
	if len(points) > 0 {
		scatter, err := r.scatter(points)
		if err != nil {
			return nil, err
		}
		p.Add(scatter)
		p.Legend.Add(fmt.Sprintf("Point size = Mag - %g, Color = SNR (%g..%g)", s.MinMagnitude, s.SNRMin, s.SNRMax), scatter)
		p.Legend.Top = true
	}

	if err := r.addEventMarkers(p, res.Range.Start, res.Range.End); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Renderer) title(res *analysis.Result) string {
	f := r.Filter
	lines := []string{
		fmt.Sprintf("Network %s TT residual relative to %s (filtering: ref SNR ≥ %g, CWT ≥ %g, slope ≥ %g, nσ ≥ %d)",
			res.Pair.Target.Network, res.Pair.Reference, f.MinRefSNR, f.CWTCutoff, f.SlopeCutoff, f.NSigmaCutoff),
		fmt.Sprintf("Channel selection: %s", strings.Join(r.ChannelPreference, ", ")),
		fmt.Sprintf("Start date: %s   End date: %s",
			res.Range.Start.Format(time.DateTime), res.Range.End.Format(time.DateTime)),
	}
	return strings.Join(lines, "\n")
}

// visible returns rows inside the y window, lowest SNR first so the
// strongest picks are drawn on top.
func visible(rows []residual.Row, ttScale float64) []residual.Row {
	out := make([]residual.Row, 0, len(rows))
	for _, row := range rows {
		if math.Abs(row.Rel) <= ttScale {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SNR < out[j].SNR })
	return out
}

func (r *Renderer) scatter(points []residual.Row) (*plotter.Scatter, error) {
	s := r.Settings
	xys := make(plotter.XYs, len(points))
	for i, row := range points {
		xys[i].X = row.OriginTimestamp
		xys[i].Y = row.Rel
	}
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("build scatter: %w", err)
	}

	cmap := snrColorMap(s.SNRMin, s.SNRMax)
	scatter.GlyphStyle = draw.GlyphStyle{
		Color:  color.NRGBA{R: 0x80, A: 0xff},
		Radius: vg.Points(4),
		Shape:  draw.CircleGlyph{},
	}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  snrColor(cmap, points[i].SNR),
			Radius: PointRadius(points[i].Magnitude, s),
			Shape:  draw.CircleGlyph{},
		}
	}
	return scatter, nil
}

func snrColorMap(min, max float64) palette.ColorMap {
	cmap := moreland.ExtendedBlackBody()
	cmap.SetMax(max)
	cmap.SetMin(min)
	cmap.SetAlpha(pointAlpha)
	return cmap
}

// snrColor maps snr through cmap, clamping it into the colormap range.
func snrColor(cmap palette.ColorMap, snr float64) color.Color {
	v := math.Min(math.Max(snr, cmap.Min()), cmap.Max())
	c, err := cmap.At(v)
	if err != nil {
		return color.Gray{Y: 0x80}
	}
	return c
}

// addEventMarkers draws a dashed vertical line and a rotated label for each
// significant event with start <= date < end.
func (r *Renderer) addEventMarkers(p *gonumplot.Plot, start, end time.Time) error {
	events := catalog.Within(r.Events, start, end)
	if len(events) == 0 {
		return nil
	}
	ymin, ymax := p.Y.Min, p.Y.Max
	labelY := ymin + 0.01*(ymax-ymin)

	labelXYs := make(plotter.XYs, 0, len(events))
	labelText := make([]string, 0, len(events))
	for _, event := range events {
		x := unixSeconds(event.Date)
		line, err := plotter.NewLine(plotter.XYs{{X: x, Y: ymin}, {X: x, Y: ymax}})
		if err != nil {
			return fmt.Errorf("event marker %s: %w", event.Label(), err)
		}
		line.LineStyle.Color = markerColor
		line.LineStyle.Width = vg.Points(1)
		line.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		p.Add(line)

		labelXYs = append(labelXYs, plotter.XY{X: x, Y: labelY})
		labelText = append(labelText, event.Label())
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: labelXYs, Labels: labelText})
	if err != nil {
		return fmt.Errorf("event labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = labelColor
		labels.TextStyle[i].Rotation = math.Pi / 2
		labels.TextStyle[i].XAlign = text.XLeft
		labels.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(labels)
	return nil
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
