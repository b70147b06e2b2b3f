package charts

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"tankreport/internal/report"
)

// Default image size
const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

var (
	barColor   = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	pointColor = color.RGBA{R: 31, G: 119, B: 180, A: 200}
	trendColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// Renderer turns report chart series into images
type Renderer struct {
	Width  vg.Length
	Height vg.Length
	logger *slog.Logger
}

// NewRenderer creates a renderer with the default image size
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Renderer{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		logger: logger.With(slog.String("component", "chart_renderer")),
	}
}

// Plot builds the plot for one chart
func (r *Renderer) Plot(c report.Chart) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel

	var err error
	switch c.Kind {
	case report.KindBar:
		err = addBars(p, c)
	case report.KindGroupedBar:
		err = addGroupedBars(p, c)
	case report.KindScatter:
		err = addScatter(p, c)
	default:
		err = fmt.Errorf("unsupported chart kind %q", c.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", c.Name, err)
	}
	return p, nil
}

// WritePNG renders the chart as PNG into out
func (r *Renderer) WritePNG(out io.Writer, c report.Chart) error {
	p, err := r.Plot(c)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(r.Width, r.Height, "png")
	if err != nil {
		return fmt.Errorf("chart %s: %w", c.Name, err)
	}
	_, err = wt.WriteTo(out)
	return err
}

// SaveAll writes every chart as <name>.png under dir and returns the paths
func (r *Renderer) SaveAll(dir string, charts []report.Chart) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	paths := make([]string, 0, len(charts))
	for _, c := range charts {
		p, err := r.Plot(c)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, c.Name+".png")
		if err := p.Save(r.Width, r.Height, path); err != nil {
			return paths, fmt.Errorf("save %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	r.logger.Info("charts written", slog.Int("count", len(paths)), slog.String("dir", dir))
	return paths, nil
}

func addBars(p *plot.Plot, c report.Chart) error {
	values := make(plotter.Values, len(c.Bars))
	labels := make([]string, len(c.Bars))
	for i, b := range c.Bars {
		values[i] = finite(b.Value)
		labels[i] = b.Label
	}
	if len(values) == 0 {
		return nil
	}

	bars, err := plotter.NewBarChart(values, barWidth(len(values), 1))
	if err != nil {
		return err
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	p.NominalX(labels...)
	rotateTicks(p, labels)
	p.Y.Min = 0
	return nil
}

func addGroupedBars(p *plot.Plot, c report.Chart) error {
	if len(c.Groups) == 0 || len(c.Series) == 0 {
		return nil
	}

	w := barWidth(len(c.Groups), len(c.Series))
	n := float64(len(c.Series))
	for i, s := range c.Series {
		values := make(plotter.Values, len(c.Groups))
		for j := range values {
			if j < len(s.Values) {
				values[j] = finite(s.Values[j])
			}
		}

		bars, err := plotter.NewBarChart(values, w)
		if err != nil {
			return err
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Length(float64(i)-(n-1)/2) * w

		p.Add(bars)
		p.Legend.Add(s.Name, bars)
	}

	p.Legend.Top = true
	p.NominalX(c.Groups...)
	rotateTicks(p, c.Groups)
	p.Y.Min = 0
	return nil
}

func addScatter(p *plot.Plot, c report.Chart) error {
	if c.Scatter == nil {
		return fmt.Errorf("missing scatter series")
	}
	s := c.Scatter

	var xys plotter.XYs
	var labels []string
	var sizes []float64
	maxSize := 0.0
	for _, pt := range s.Points {
		if !pt.X.Valid() || !pt.Y.Valid() {
			continue
		}
		xys = append(xys, plotter.XY{X: pt.X.Float(), Y: pt.Y.Float()})
		labels = append(labels, pt.Label)
		size := 0.0
		if pt.Size.Valid() {
			size = pt.Size.Float()
		}
		sizes = append(sizes, size)
		maxSize = math.Max(maxSize, size)
	}
	if len(xys) == 0 {
		return nil
	}

	for i := range xys {
		dot, err := plotter.NewScatter(plotter.XYs{xys[i]})
		if err != nil {
			return err
		}
		dot.GlyphStyle.Color = pointColor
		dot.GlyphStyle.Shape = draw.CircleGlyph{}
		dot.GlyphStyle.Radius = glyphRadius(sizes[i], maxSize)
		p.Add(dot)
	}

	names, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return err
	}
	p.Add(names)
	p.Add(plotter.NewGrid())

	if s.Trend.Slope.Valid() {
		line := plotter.NewFunction(s.Trend.At)
		line.Color = trendColor
		line.Width = vg.Points(1.5)
		line.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("OLS trend (R² = %.3f)", s.Trend.RSquared.Float()), line)
		p.Legend.Top = true
	}
	return nil
}

// glyphRadius scales marker area with the point size; unsized points use
// the smallest marker
func glyphRadius(size, maxSize float64) vg.Length {
	const minR, maxR = 3.0, 14.0
	if size <= 0 || maxSize <= 0 {
		return vg.Points(minR)
	}
	return vg.Points(minR + (maxR-minR)*math.Sqrt(size/maxSize))
}

// barWidth narrows bars as categories grow so a chart stays readable
func barWidth(categories, series int) vg.Length {
	w := 40.0 / float64(series)
	if categories > 10 {
		w = 14.0 / float64(series)
	}
	return vg.Points(w)
}

func rotateTicks(p *plot.Plot, labels []string) {
	long := len(labels) > 6
	for _, l := range labels {
		if len(l) > 14 {
			long = true
			break
		}
	}
	if !long {
		return
	}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

func finite(n report.Number) float64 {
	if !n.Valid() {
		return 0
	}
	return n.Float()
}
