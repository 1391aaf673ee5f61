package backend

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/iburimskiy/ambient-garden/internal/garden"
)

// ImageCanvas rasterises in software with gg, for headless snapshots.
type ImageCanvas struct {
	dc  *gg.Context
	dpr float64
}

func NewImageCanvas() *ImageCanvas {
	return &ImageCanvas{dpr: 1}
}

func (c *ImageCanvas) Resize(width, height int, dpr float64) {
	bw, bh := garden.BackingSize(width, height, dpr)
	c.dc = gg.NewContext(bw, bh)
	c.dc.Scale(dpr, dpr)
	c.dpr = dpr
}

func (c *ImageCanvas) Clear() {
	if c.dc == nil {
		return
	}
	c.dc.SetColor(color.Transparent)
	c.dc.Clear()
}

func (c *ImageCanvas) FillVerticalGradient(stops []garden.ColorStop) {
	if c.dc == nil {
		return
	}
	// gg samples patterns in device pixels, so the gradient spans the
	// backing height rather than the logical one.
	grad := gg.NewLinearGradient(0, 0, 0, float64(c.dc.Height()))
	for _, s := range stops {
		grad.AddColorStop(s.Offset, s.Color)
	}
	c.dc.SetFillStyle(grad)
	c.dc.DrawRectangle(0, 0, float64(c.dc.Width())/c.dpr, float64(c.dc.Height())/c.dpr)
	c.dc.Fill()
}

func (c *ImageCanvas) StrokeQuad(x0, y0, cx, cy, x1, y1, width float64, col color.NRGBA) {
	if c.dc == nil {
		return
	}
	c.dc.MoveTo(x0, y0)
	c.dc.QuadraticTo(cx, cy, x1, y1)
	// line width is not affected by the context scale
	c.dc.SetLineWidth(width * c.dpr)
	c.dc.SetColor(col)
	c.dc.Stroke()
}

func (c *ImageCanvas) FillCircle(x, y, r float64, col color.NRGBA) {
	if c.dc == nil {
		return
	}
	c.dc.DrawCircle(x, y, r)
	c.dc.SetColor(col)
	c.dc.Fill()
}

// Image returns the rendered pixels, nil before the first Resize.
func (c *ImageCanvas) Image() image.Image {
	if c.dc == nil {
		return nil
	}
	return c.dc.Image()
}

// SavePNG writes the current frame to path.
func (c *ImageCanvas) SavePNG(path string) error {
	if c.dc == nil {
		return ErrNotSized
	}
	return c.dc.SavePNG(path)
}
