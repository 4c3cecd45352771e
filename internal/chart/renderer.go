package chart

import (
	"image/color"
	"math"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Chart file names. The numeric prefix keeps them in presentation order.
const (
	FileRFMDistribution       = "01_rfm_distribution.png"
	FileSegments              = "02_rfm_segments.png"
	FileSegmentCharacteristic = "03_segment_characteristics.png"
	FileRFMScatter            = "04_rfm_scatter.png"
	FileClusters              = "05_kmeans_clusters.png"
	FileTopCustomers          = "06_top_customers_clv.png"
	FileSegmentValue          = "07_segment_value_analysis.png"
	FileTimeline              = "08_transaction_timeline.png"
)

// DefaultDPI matches the resolution the figures have always been published at.
const DefaultDPI = 300

// Renderer writes chart artifacts into OutputDir. Every method is independent
// of the others and safe to call concurrently.
type Renderer struct {
	OutputDir string
	DPI       int
}

func NewRenderer(outputDir string, dpi int) *Renderer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Renderer{OutputDir: outputDir, DPI: dpi}
}

func (r *Renderer) Path(name string) string {
	return filepath.Join(r.OutputDir, name)
}

func (r *Renderer) surface(widthIn, heightIn float64) *Surface {
	return NewSurface(widthIn, heightIn, r.DPI)
}

func (r *Renderer) save(s *Surface, name string) (string, error) {
	path := r.Path(name)
	if err := s.Save(path); err != nil {
		return "", failed(name, err)
	}
	return path, nil
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.Text = yLabel
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)
	return p
}

// addGrid draws light grid lines behind the data.
func addGrid(p *plot.Plot, vertical, horizontal bool) {
	grid := plotter.NewGrid()
	grid.Vertical.Color = gridColor
	grid.Horizontal.Color = gridColor
	if !vertical {
		grid.Vertical.Color = nil
	}
	if !horizontal {
		grid.Horizontal.Color = nil
	}
	p.Add(grid)
}

// bars adds one bar per value at positions 0..n-1, each with its own color.
// NaN values leave their slot empty.
func bars(p *plot.Plot, values []float64, colors []color.Color, width vg.Length, horizontal bool) error {
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		bar, err := plotter.NewBarChart(plotter.Values{v}, width)
		if err != nil {
			return err
		}
		bar.XMin = float64(i)
		bar.Horizontal = horizontal
		bar.Color = withAlpha(colors[i%len(colors)], 0.8)
		bar.LineStyle.Color = edgeColor
		bar.LineStyle.Width = vg.Points(0.5)
		p.Add(bar)
	}
	return nil
}

// barLabels annotates the end of each bar.
func barLabels(p *plot.Plot, values []float64, labels []string, horizontal bool) error {
	xys := make(plotter.XYs, 0, len(values))
	shown := make([]string, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if horizontal {
			xys = append(xys, plotter.XY{X: v, Y: float64(i)})
		} else {
			xys = append(xys, plotter.XY{X: float64(i), Y: v})
		}
		shown = append(shown, labels[i])
	}
	if len(xys) == 0 {
		return nil
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: shown})
	if err != nil {
		return err
	}
	for i := range l.TextStyle {
		l.TextStyle[i] = textStyle(9)
		if horizontal {
			l.TextStyle[i].XAlign = text.XLeft
			l.TextStyle[i].YAlign = text.YCenter
		} else {
			l.TextStyle[i].XAlign = text.XCenter
			l.TextStyle[i].YAlign = text.YBottom
		}
	}
	if horizontal {
		l.Offset = vg.Point{X: vg.Points(3)}
	} else {
		l.Offset = vg.Point{Y: vg.Points(3)}
	}
	p.Add(l)
	return nil
}

// headroom extends an axis so labels drawn past the largest bar stay inside
// the plot.
func headroom(values []float64, factor float64) float64 {
	top := 0.0
	for _, v := range values {
		if !math.IsNaN(v) {
			top = math.Max(top, v)
		}
	}
	if top == 0 {
		return 1
	}
	return top * factor
}

func rotateTicks(axis *plot.Axis) {
	axis.Tick.Label.Rotation = math.Pi / 4
	axis.Tick.Label.XAlign = text.XRight
	axis.Tick.Label.YAlign = text.YCenter
}
