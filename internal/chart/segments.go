package chart

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"ecommerce-clv-report/internal/aggregate"
	"ecommerce-clv-report/internal/dataset"
)

const histogramBins = 50

// RFMDistribution draws one histogram per RFM metric with a dashed line at
// the metric's mean.
func (r *Renderer) RFMDistribution(metrics []dataset.CustomerMetrics) (string, error) {
	if len(metrics) == 0 {
		return "", emptyInput(FileRFMDistribution, "customers")
	}

	panels := []struct {
		title, xLabel, meanFormat string
		fill                      color.Color
		value                     func(dataset.CustomerMetrics) float64
	}{
		{"Recency Distribution", "Recency (days)", "Mean: %.1f", skyBlue,
			func(m dataset.CustomerMetrics) float64 { return m.Recency }},
		{"Frequency Distribution", "Frequency (purchases)", "Mean: %.1f", lightGreen,
			func(m dataset.CustomerMetrics) float64 { return m.Frequency }},
		{"Monetary Distribution", "Monetary ($)", "Mean: $%.2f", salmon,
			func(m dataset.CustomerMetrics) float64 { return m.Monetary }},
	}

	row := make([]*plot.Plot, 0, len(panels))
	for _, panel := range panels {
		values := make(plotter.Values, 0, len(metrics))
		for _, m := range metrics {
			if v := panel.value(m); !math.IsNaN(v) {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return "", emptyInput(FileRFMDistribution, panel.xLabel+" values")
		}

		p := newPlot(panel.title, panel.xLabel, "Number of Customers")
		addGrid(p, true, true)

		hist, err := plotter.NewHist(values, histogramBins)
		if err != nil {
			return "", failed(FileRFMDistribution, err)
		}
		hist.FillColor = withAlpha(panel.fill, 0.7)
		hist.LineStyle.Color = edgeColor
		hist.LineStyle.Width = vg.Points(0.5)
		p.Add(hist)

		peak := 0.0
		for _, bin := range hist.Bins {
			peak = math.Max(peak, bin.Weight)
		}
		mean := 0.0
		for _, v := range values {
			mean += v
		}
		mean /= float64(len(values))

		line, err := plotter.NewLine(plotter.XYs{{X: mean, Y: 0}, {X: mean, Y: peak}})
		if err != nil {
			return "", failed(FileRFMDistribution, err)
		}
		line.LineStyle.Color = meanColor
		line.LineStyle.Width = vg.Points(2)
		line.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		p.Add(line)
		p.Legend.Add(fmt.Sprintf(panel.meanFormat, mean), line)
		p.Legend.Top = true

		row = append(row, p)
	}

	s := r.surface(18, 5)
	s.Title("RFM Metrics Distribution")
	s.Grid([][]*plot.Plot{row})
	return r.save(s, FileRFMDistribution)
}

// Segments draws customer counts per segment as a bar chart next to a pie of
// the same shares.
func (r *Renderer) Segments(counts aggregate.SegmentCounts) (string, error) {
	if len(counts) == 0 {
		return "", emptyInput(FileSegments, "segments")
	}

	colors := listed(set3, len(counts))
	values := make([]float64, len(counts))
	labels := make([]string, len(counts))
	for i, entry := range counts {
		values[i] = float64(entry.Count)
		labels[i] = strconv.Itoa(entry.Count)
	}

	bar := newPlot("Customer Count by Segment", "Customer Segment", "Number of Customers")
	addGrid(bar, false, true)
	if err := bars(bar, values, colors, vg.Points(28), false); err != nil {
		return "", failed(FileSegments, err)
	}
	if err := barLabels(bar, values, labels, false); err != nil {
		return "", failed(FileSegments, err)
	}
	bar.NominalX(counts.Labels()...)
	rotateTicks(&bar.X)
	bar.Y.Min = 0
	bar.Y.Max = headroom(values, 1.12)

	pie := newPlot("Customer Distribution by Segment", "", "")
	pie.HideAxes()
	pie.Add(NewPie(values, counts.Labels(), colors))

	s := r.surface(16, 6)
	s.Title("Customer Segmentation Analysis")
	s.Grid([][]*plot.Plot{{bar, pie}})
	return r.save(s, FileSegments)
}

// statsGrid exposes segment means as a heat map grid: one column per segment,
// rows Monetary, Frequency, Recency from bottom to top.
type statsGrid aggregate.SegmentStats

var statsRows = []string{"Monetary", "Frequency", "Recency"}

func (g statsGrid) Dims() (c, r int) { return len(g), len(statsRows) }
func (g statsGrid) X(c int) float64  { return float64(c) }
func (g statsGrid) Y(r int) float64  { return float64(r) }

func (g statsGrid) Z(c, r int) float64 {
	switch r {
	case 0:
		return g[c].Monetary
	case 1:
		return g[c].Frequency
	default:
		return g[c].Recency
	}
}

// SegmentCharacteristics draws the mean RFM metrics of each segment as an
// annotated heat map with a color bar.
func (r *Renderer) SegmentCharacteristics(stats aggregate.SegmentStats) (string, error) {
	if len(stats) == 0 {
		return "", emptyInput(FileSegmentCharacteristic, "segments")
	}

	grid := statsGrid(stats)
	cols, rows := grid.Dims()
	lo, hi := math.Inf(1), math.Inf(-1)
	xys := make(plotter.XYs, 0, cols*rows)
	labels := make([]string, 0, cols*rows)
	for c := 0; c < cols; c++ {
		for row := 0; row < rows; row++ {
			z := grid.Z(c, row)
			if math.IsNaN(z) {
				continue
			}
			lo, hi = math.Min(lo, z), math.Max(hi, z)
			xys = append(xys, plotter.XY{X: grid.X(c), Y: grid.Y(row)})
			labels = append(labels, fmt.Sprintf("%.1f", z))
		}
	}
	if len(xys) == 0 {
		return "", emptyInput(FileSegmentCharacteristic, "segment means")
	}
	if hi <= lo {
		hi = lo + 1
	}

	cmap := ylOrRd.clone()
	cmap.SetMin(lo)
	cmap.SetMax(hi)

	p := newPlot("Average RFM Metrics by Segment", "Customer Segment", "RFM Metric")
	heat := plotter.NewHeatMap(grid, cmap.Palette(256))
	heat.Min, heat.Max = lo, hi
	p.Add(heat)

	annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return "", failed(FileSegmentCharacteristic, err)
	}
	for i := range annotations.TextStyle {
		annotations.TextStyle[i] = textStyle(11)
		annotations.TextStyle[i].XAlign = text.XCenter
		annotations.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(annotations)
	p.NominalX(stats.Labels()...)
	p.NominalY(statsRows...)

	bar := plot.New()
	bar.HideX()
	bar.Y.Label.Text = "Value"
	bar.Add(&plotter.ColorBar{ColorMap: cmap, Vertical: true, Colors: 256})

	s := r.surface(12, 8)
	body, strip := s.SplitRight(vg.Inch * 1.4)
	p.Draw(draw.Crop(body, vg.Millimeter*2, -vg.Millimeter*4, vg.Millimeter*2, -vg.Millimeter*2))
	bar.Draw(draw.Crop(strip, 0, -vg.Millimeter*4, vg.Millimeter*30, -vg.Millimeter*14))
	return r.save(s, FileSegmentCharacteristic)
}

// RFMScatter plots Recency against Frequency, one series per segment, with
// bubble area proportional to Monetary.
func (r *Renderer) RFMScatter(sample []dataset.SegmentedCustomer) (string, error) {
	if len(sample) == 0 {
		return "", emptyInput(FileRFMScatter, "customers")
	}

	segments := []string{}
	groups := map[string][]dataset.SegmentedCustomer{}
	for _, row := range sample {
		if math.IsNaN(row.Recency) || math.IsNaN(row.Frequency) {
			continue
		}
		if _, ok := groups[row.Segment]; !ok {
			segments = append(segments, row.Segment)
		}
		groups[row.Segment] = append(groups[row.Segment], row)
	}
	if len(segments) == 0 {
		return "", emptyInput(FileRFMScatter, "customers with Recency and Frequency")
	}
	colors := listed(set3, len(segments))

	p := newPlot("RFM Scatter Plot (bubble size = Monetary value)", "Recency (days)", "Frequency (purchases)")
	addGrid(p, true, true)
	p.Legend.Top = true

	for i, segment := range segments {
		members := groups[segment]
		xys := make(plotter.XYs, len(members))
		for j, row := range members {
			xys[j] = plotter.XY{X: row.Recency, Y: row.Frequency}
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return "", failed(FileRFMScatter, err)
		}
		fill := withAlpha(colors[i], 0.6)
		sc.GlyphStyle = draw.GlyphStyle{Color: fill, Radius: vg.Points(4), Shape: draw.CircleGlyph{}}
		sc.GlyphStyleFunc = func(j int) draw.GlyphStyle {
			return draw.GlyphStyle{Color: fill, Radius: bubbleRadius(members[j].Monetary), Shape: draw.CircleGlyph{}}
		}
		p.Add(sc)
		p.Legend.Add(segment, sc)
	}

	s := r.surface(12, 10)
	s.Grid([][]*plot.Plot{{p}})
	return r.save(s, FileRFMScatter)
}

// bubbleRadius turns a marker area of Monetary/5 square points into a radius.
func bubbleRadius(monetary float64) vg.Length {
	area := monetary / 5
	if math.IsNaN(area) || area < 1 {
		area = 1
	}
	return vg.Points(math.Sqrt(area / math.Pi))
}
