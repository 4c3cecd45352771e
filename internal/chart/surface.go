package chart

import (
	"image/color"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Surface is the raster drawing area backing one chart file. Plots are drawn
// onto it and the image is written once by Save; nothing is shared between
// surfaces.
type Surface struct {
	img  *vgimg.Canvas
	area draw.Canvas
}

// NewSurface allocates a white canvas of the given size in inches.
func NewSurface(widthIn, heightIn float64, dpi int) *Surface {
	img := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(dpi),
	)
	return &Surface{img: img, area: draw.New(img)}
}

// Title draws a figure title across the top and removes its band from the
// drawable area.
func (s *Surface) Title(title string) {
	sty := textStyle(16)
	sty.XAlign = text.XCenter
	sty.YAlign = text.YTop
	pad := vg.Points(8)
	at := vg.Point{X: (s.area.Min.X + s.area.Max.X) / 2, Y: s.area.Max.Y - pad}
	s.area.FillText(sty, at, title)
	s.area = draw.Crop(s.area, 0, 0, 0, -(sty.Height(title) + 2*pad))
}

func (s *Surface) Grid(rows [][]*plot.Plot) {
	if len(rows) == 0 {
		return
	}
	tiles := draw.Tiles{
		Rows:      len(rows),
		Cols:      len(rows[0]),
		PadX:      vg.Millimeter * 8,
		PadY:      vg.Millimeter * 8,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(rows, tiles, s.area)
	for j := range rows {
		for i := range rows[j] {
			if rows[j][i] != nil {
				rows[j][i].Draw(canvases[j][i])
			}
		}
	}
}

// SplitRight divides the drawable area into a main region and a strip of the
// given width on the right.
func (s *Surface) SplitRight(width vg.Length) (main, strip draw.Canvas) {
	total := s.area.Max.X - s.area.Min.X
	main = draw.Crop(s.area, 0, -width, 0, 0)
	strip = draw.Crop(s.area, total-width, 0, 0, 0)
	return main, strip
}

// Save encodes the surface as PNG. The image goes to a temporary file in the
// same directory that replaces path only once fully written.
func (s *Surface) Save(path string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "create chart file")
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	png := vgimg.PngCanvas{Canvas: s.img}
	if _, err = png.WriteTo(tmp); err != nil {
		return errors.Wrap(err, "encode png")
	}
	if err = tmp.Chmod(0o644); err != nil {
		return errors.Wrap(err, "chmod chart file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close chart file")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "replace chart file")
	}
	return nil
}

func textStyle(size float64) text.Style {
	return text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, vg.Points(size)),
		Handler: plot.DefaultTextHandler,
	}
}
