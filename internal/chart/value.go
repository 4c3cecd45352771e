package chart

import (
	"fmt"
	"image/color"
	"strconv"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"ecommerce-clv-report/internal/aggregate"
	"ecommerce-clv-report/internal/dataset"
	"ecommerce-clv-report/internal/numfmt"
)

func (r *Renderer) Clusters(counts aggregate.ClusterCounts) (string, error) {
	if len(counts) == 0 {
		return "", emptyInput(FileClusters, "clusters")
	}

	values := make([]float64, len(counts))
	labels := make([]string, len(counts))
	ticks := make([]string, len(counts))
	for i, entry := range counts {
		values[i] = float64(entry.Count)
		labels[i] = numfmt.Int(entry.Count)
		ticks[i] = strconv.Itoa(entry.Cluster)
	}

	p := newPlot(fmt.Sprintf("K-Means Clustering Results (%d Clusters)", len(counts)), "Cluster ID", "Number of Customers")
	addGrid(p, false, true)
	if err := bars(p, values, clusterColors, vg.Points(60), false); err != nil {
		return "", failed(FileClusters, err)
	}
	if err := barLabels(p, values, labels, false); err != nil {
		return "", failed(FileClusters, err)
	}
	p.NominalX(ticks...)
	p.Y.Min = 0
	p.Y.Max = headroom(values, 1.1)

	s := r.surface(12, 8)
	s.Grid([][]*plot.Plot{{p}})
	return r.save(s, FileClusters)
}

// TopCustomers draws ranked horizontal bars of predicted CLV, annotated with
// the dollar value at the end of each bar.
func (r *Renderer) TopCustomers(top []dataset.CustomerCLV) (string, error) {
	if len(top) == 0 {
		return "", emptyInput(FileTopCustomers, "customers")
	}

	values := make([]float64, len(top))
	labels := make([]string, len(top))
	ticks := make([]string, len(top))
	for i, row := range top {
		values[i] = row.PredictedCLV
		labels[i] = fmt.Sprintf("$%.2f", row.PredictedCLV)
		ticks[i] = fmt.Sprintf("Customer %d", i+1)
	}

	p := newPlot(fmt.Sprintf("Top %d Customers by Predicted CLV", len(top)), "Predicted CLV ($)", "")
	addGrid(p, true, false)
	if err := bars(p, values, viridis.colors(len(top)), vg.Points(14), true); err != nil {
		return "", failed(FileTopCustomers, err)
	}
	if err := barLabels(p, values, labels, true); err != nil {
		return "", failed(FileTopCustomers, err)
	}
	p.NominalY(ticks...)
	p.X.Min = 0
	p.X.Max = headroom(values, 1.18)

	s := r.surface(14, 8)
	s.Grid([][]*plot.Plot{{p}})
	return r.save(s, FileTopCustomers)
}

// SegmentValue draws total and average Monetary per segment side by side.
func (r *Renderer) SegmentValue(values aggregate.SegmentValues) (string, error) {
	if len(values) == 0 {
		return "", emptyInput(FileSegmentValue, "segments")
	}

	colors := spectral.colors(len(values))
	totals := make([]float64, len(values))
	means := make([]float64, len(values))
	totalLabels := make([]string, len(values))
	meanLabels := make([]string, len(values))
	for i, entry := range values {
		totals[i] = entry.Total
		means[i] = entry.Mean
		totalLabels[i] = numfmt.Money(entry.Total, 0)
		meanLabels[i] = fmt.Sprintf("$%.2f", entry.Mean)
	}

	panels := []struct {
		title, yLabel string
		values        []float64
		labels        []string
	}{
		{"Total Revenue by Segment", "Total Value ($)", totals, totalLabels},
		{"Average Customer Value by Segment", "Average Value ($)", means, meanLabels},
	}

	row := make([]*plot.Plot, 0, len(panels))
	for _, panel := range panels {
		p := newPlot(panel.title, "", panel.yLabel)
		addGrid(p, false, true)
		if err := bars(p, panel.values, colors, vg.Points(28), false); err != nil {
			return "", failed(FileSegmentValue, err)
		}
		if err := barLabels(p, panel.values, panel.labels, false); err != nil {
			return "", failed(FileSegmentValue, err)
		}
		p.NominalX(values.Labels()...)
		rotateTicks(&p.X)
		p.Y.Min = 0
		p.Y.Max = headroom(panel.values, 1.12)
		row = append(row, p)
	}

	s := r.surface(16, 6)
	s.Title("Segment Value Analysis")
	s.Grid([][]*plot.Plot{row})
	return r.save(s, FileSegmentValue)
}

// Timeline draws daily revenue above daily transaction counts, each as a line
// over a filled area.
func (r *Renderer) Timeline(timeline aggregate.Timeline) (string, error) {
	if len(timeline) == 0 {
		return "", emptyInput(FileTimeline, "transactions")
	}

	revenue := make(plotter.XYs, len(timeline))
	counts := make(plotter.XYs, len(timeline))
	for i, point := range timeline {
		x := float64(point.Date.Unix())
		revenue[i] = plotter.XY{X: x, Y: point.Revenue}
		counts[i] = plotter.XY{X: x, Y: float64(point.Count)}
	}

	panels := []struct {
		title, xLabel, yLabel string
		xys                   plotter.XYs
		stroke                color.Color
	}{
		{"Daily Revenue Trend", "", "Daily Revenue ($)", revenue, revenueColor},
		{"Daily Transaction Count Trend", "Date", "Transaction Count", counts, countColor},
	}

	rows := make([][]*plot.Plot, 0, len(panels))
	for _, panel := range panels {
		p := newPlot(panel.title, panel.xLabel, panel.yLabel)
		addGrid(p, true, true)
		line, err := plotter.NewLine(panel.xys)
		if err != nil {
			return "", failed(FileTimeline, err)
		}
		line.LineStyle.Color = withAlpha(panel.stroke, 0.8)
		line.LineStyle.Width = vg.Points(2)
		line.FillColor = withAlpha(panel.stroke, 0.3)
		p.Add(line)
		p.X.Tick.Marker = plot.TimeTicks{Format: time.DateOnly}
		rotateTicks(&p.X)
		p.Y.Min = 0
		rows = append(rows, []*plot.Plot{p})
	}

	s := r.surface(16, 10)
	s.Title("Transaction Timeline Analysis")
	s.Grid(rows)
	return r.save(s, FileTimeline)
}
