package chart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Pie draws wedges counter-clockwise from StartAngle, each labelled with its
// name outside the rim and its share of the total inside.
type Pie struct {
	Values     []float64
	Labels     []string
	Colors     []color.Color
	StartAngle float64 // radians

	LineStyle draw.LineStyle
	TextStyle text.Style
}

var (
	_ plot.Plotter    = (*Pie)(nil)
	_ plot.DataRanger = (*Pie)(nil)
)

func NewPie(values []float64, labels []string, colors []color.Color) *Pie {
	return &Pie{
		Values:     values,
		Labels:     labels,
		Colors:     colors,
		StartAngle: math.Pi / 2,
		LineStyle:  draw.LineStyle{Color: color.White, Width: vg.Points(1)},
		TextStyle:  textStyle(10),
	}
}

func (p *Pie) Plot(c draw.Canvas, plt *plot.Plot) {
	total := 0.0
	for _, v := range p.Values {
		total += v
	}
	if total <= 0 {
		return
	}

	trX, trY := plt.Transforms(&c)
	center := vg.Point{X: trX(0), Y: trY(0)}
	radius := trX(1) - trX(0)
	if r := trY(1) - trY(0); r < radius {
		radius = r
	}

	sty := p.TextStyle
	sty.XAlign = text.XCenter
	sty.YAlign = text.YCenter

	start := p.StartAngle
	for i, v := range p.Values {
		sweep := 2 * math.Pi * v / total

		var wedge vg.Path
		wedge.Move(center)
		wedge.Arc(center, radius, start, sweep)
		wedge.Close()
		c.SetColor(p.Colors[i%len(p.Colors)])
		c.Fill(wedge)
		c.SetLineStyle(p.LineStyle)
		c.Stroke(wedge)

		mid := start + sweep/2
		cos, sin := vg.Length(math.Cos(mid)), vg.Length(math.Sin(mid))
		c.FillText(sty, vg.Point{X: center.X + cos*radius*0.6, Y: center.Y + sin*radius*0.6},
			fmt.Sprintf("%.1f%%", v/total*100))

		outer := sty
		if math.Cos(mid) < 0 {
			outer.XAlign = text.XRight
		} else {
			outer.XAlign = text.XLeft
		}
		if i < len(p.Labels) {
			c.FillText(outer, vg.Point{X: center.X + cos*radius*1.08, Y: center.Y + sin*radius*1.08}, p.Labels[i])
		}
		start += sweep
	}
}

// DataRange leaves room around the unit circle for the outer labels.
func (p *Pie) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -1.6, 1.6, -1.25, 1.25
}
