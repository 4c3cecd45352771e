package chart

import (
	"image/color"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
)

var (
	set3     = mustBrewer("Set3", 12)
	spectral = newGradient(mustBrewer("Spectral", 11))
	ylOrRd   = newGradient(mustBrewer("YlOrRd", 9))
	viridis  = newGradient([]color.Color{
		color.NRGBA{R: 0x44, G: 0x01, B: 0x54, A: 0xff},
		color.NRGBA{R: 0x3b, G: 0x52, B: 0x8b, A: 0xff},
		color.NRGBA{R: 0x21, G: 0x91, B: 0x8c, A: 0xff},
		color.NRGBA{R: 0x5e, G: 0xc9, B: 0x62, A: 0xff},
		color.NRGBA{R: 0xfd, G: 0xe7, B: 0x25, A: 0xff},
	})

	clusterColors = []color.Color{
		color.NRGBA{R: 0xFF, G: 0x6B, B: 0x6B, A: 0xff},
		color.NRGBA{R: 0x4E, G: 0xCD, B: 0xC4, A: 0xff},
		color.NRGBA{R: 0x45, G: 0xB7, B: 0xD1, A: 0xff},
	}

	revenueColor = color.NRGBA{R: 0x2E, G: 0x86, B: 0xAB, A: 0xff}
	countColor   = color.NRGBA{R: 0xA2, G: 0x3B, B: 0x72, A: 0xff}
	meanColor    = color.NRGBA{R: 0xff, A: 0xff}
	gridColor    = color.Gray{Y: 0xd9}
	edgeColor    = color.Black

	skyBlue    = color.NRGBA{R: 0x87, G: 0xce, B: 0xeb, A: 0xff}
	lightGreen = color.NRGBA{R: 0x90, G: 0xee, B: 0x90, A: 0xff}
	salmon     = color.NRGBA{R: 0xfa, G: 0x80, B: 0x72, A: 0xff}
)

func mustBrewer(name string, n int) []color.Color {
	p, err := brewer.GetPalette(brewer.TypeAny, name, n)
	if err != nil {
		panic(err)
	}
	return p.Colors()
}

// listed picks n colors evenly spread over a discrete palette, the way a
// listed colormap is sampled at evenly spaced points in [0, 1].
func listed(colors []color.Color, n int) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		x := 0.0
		if n > 1 {
			x = float64(i) / float64(n-1)
		}
		idx := int(x * float64(len(colors)))
		if idx >= len(colors) {
			idx = len(colors) - 1
		}
		out[i] = colors[idx]
	}
	return out
}

// withAlpha returns c with its opacity scaled to alpha.
func withAlpha(c color.Color, alpha float64) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(float64(n.A) * alpha))
	return n
}

// gradient is a continuous colormap interpolating linearly between stops.
type gradient struct {
	stops    []color.NRGBA
	min, max float64
	alpha    float64
}

var _ palette.ColorMap = (*gradient)(nil)

func newGradient(stops []color.Color) *gradient {
	g := &gradient{max: 1, alpha: 1}
	for _, stop := range stops {
		g.stops = append(g.stops, color.NRGBAModel.Convert(stop).(color.NRGBA))
	}
	return g
}

// clone returns an independent copy so concurrent charts can set their own
// ranges.
func (g *gradient) clone() *gradient {
	c := *g
	return &c
}

func (g *gradient) At(v float64) (color.Color, error) {
	if math.IsNaN(v) {
		return nil, errors.New("colormap: NaN value")
	}
	t := 0.0
	if g.max > g.min {
		t = (v - g.min) / (g.max - g.min)
	}
	return g.sample(math.Max(0, math.Min(1, t))), nil
}

func (g *gradient) sample(t float64) color.Color {
	pos := t * float64(len(g.stops)-1)
	i := int(pos)
	if i >= len(g.stops)-1 {
		return withAlpha(g.stops[len(g.stops)-1], g.alpha)
	}
	f := pos - float64(i)
	a, b := g.stops[i], g.stops[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f))
	}
	return withAlpha(color.NRGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 0xff}, g.alpha)
}

func (g *gradient) Max() float64       { return g.max }
func (g *gradient) Min() float64       { return g.min }
func (g *gradient) SetMax(v float64)   { g.max = v }
func (g *gradient) SetMin(v float64)   { g.min = v }
func (g *gradient) Alpha() float64     { return g.alpha }
func (g *gradient) SetAlpha(a float64) { g.alpha = a }

// Palette returns n colors evenly spaced over the whole gradient.
func (g *gradient) Palette(n int) palette.Palette {
	return colorList(g.colors(n))
}

func (g *gradient) colors(n int) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = g.sample(t)
	}
	return out
}

type colorList []color.Color

func (l colorList) Colors() []color.Color { return l }
