package backend

import (
	"image"
	"image/color"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/ambient-garden/internal/garden"
)

// EbitenCanvas draws into an offscreen ebiten image sized to the backing
// buffer. The host blits Image onto the screen each frame.
type EbitenCanvas struct {
	img   *ebiten.Image
	scale float32

	// 1px-wide gradient strip, rebuilt only when the stops or height change
	strip      *ebiten.Image
	stripStops []garden.ColorStop

	white    *ebiten.Image
	path     vector.Path
	vertices []ebiten.Vertex
	indices  []uint16
}

func NewEbitenCanvas() *EbitenCanvas {
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	return &EbitenCanvas{
		scale: 1,
		white: white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
	}
}

// Image is the backing buffer, nil before the first Resize.
func (c *EbitenCanvas) Image() *ebiten.Image {
	return c.img
}

func (c *EbitenCanvas) Resize(width, height int, dpr float64) {
	bw, bh := garden.BackingSize(width, height, dpr)
	c.scale = float32(dpr)

	if c.img != nil {
		b := c.img.Bounds()
		if b.Dx() == bw && b.Dy() == bh {
			return
		}
		c.img.Deallocate()
	}
	c.img = ebiten.NewImage(bw, bh)
	c.dropStrip()
}

func (c *EbitenCanvas) Clear() {
	if c.img == nil {
		return
	}
	c.img.Clear()
}

func (c *EbitenCanvas) FillVerticalGradient(stops []garden.ColorStop) {
	if c.img == nil {
		return
	}
	b := c.img.Bounds()
	if c.strip == nil || !slices.Equal(c.stripStops, stops) {
		c.dropStrip()
		c.strip = ebiten.NewImage(1, b.Dy())
		c.strip.WritePixels(gradientPixels(stops, b.Dy()))
		c.stripStops = slices.Clone(stops)
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(b.Dx()), 1)
	c.img.DrawImage(c.strip, op)
}

func (c *EbitenCanvas) StrokeQuad(x0, y0, cx, cy, x1, y1, width float64, col color.NRGBA) {
	if c.img == nil {
		return
	}
	s := c.scale

	c.path = vector.Path{}
	c.path.MoveTo(float32(x0)*s, float32(y0)*s)
	c.path.QuadTo(float32(cx)*s, float32(cy)*s, float32(x1)*s, float32(y1)*s)

	c.vertices, c.indices = c.path.AppendVerticesAndIndicesForStroke(c.vertices[:0], c.indices[:0], &vector.StrokeOptions{
		Width: float32(width) * s,
	})

	r, g, bl, a := straight(col)
	for i := range c.vertices {
		c.vertices[i].SrcX = 1
		c.vertices[i].SrcY = 1
		c.vertices[i].ColorR = r
		c.vertices[i].ColorG = g
		c.vertices[i].ColorB = bl
		c.vertices[i].ColorA = a
	}

	c.img.DrawTriangles(c.vertices, c.indices, c.white, &ebiten.DrawTrianglesOptions{
		AntiAlias: true,
	})
}

func (c *EbitenCanvas) FillCircle(x, y, r float64, col color.NRGBA) {
	if c.img == nil {
		return
	}
	s := c.scale
	vector.DrawFilledCircle(c.img, float32(x)*s, float32(y)*s, float32(r)*s, col, true)
}

func (c *EbitenCanvas) dropStrip() {
	if c.strip != nil {
		c.strip.Deallocate()
	}
	c.strip = nil
	c.stripStops = nil
}

// gradientPixels renders stops into a premultiplied RGBA column of height rows.
func gradientPixels(stops []garden.ColorStop, height int) []byte {
	pix := make([]byte, 4*height)
	for y := 0; y < height; y++ {
		off := (float64(y) + 0.5) / float64(height)
		r, g, b, a := garden.GradientAt(stops, off).RGBA()
		pix[4*y] = byte(r >> 8)
		pix[4*y+1] = byte(g >> 8)
		pix[4*y+2] = byte(b >> 8)
		pix[4*y+3] = byte(a >> 8)
	}
	return pix
}

func straight(c color.NRGBA) (r, g, b, a float32) {
	return float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255
}
