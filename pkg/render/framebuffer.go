// Package render draws hull and mesh wireframes into a half-block terminal
// framebuffer.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Framebuffer is a row-major pixel grid. In the terminal every cell shows
// two stacked pixels, so Height is twice the number of rows drawn.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []color.RGBA
}

// Point is a vertex projected to pixel coordinates. Visible is false when the
// vertex is off screen or behind the camera.
type Point struct {
	X, Y    int
	Visible bool
}

// NewFramebuffer creates a framebuffer of width×height pixels.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// Resize changes the dimensions, reusing the pixel storage when it is large
// enough. Contents are undefined afterwards.
func (fb *Framebuffer) Resize(width, height int) {
	fb.Width, fb.Height = width, height
	if n := width * height; n <= cap(fb.Pixels) {
		fb.Pixels = fb.Pixels[:n]
	} else {
		fb.Pixels = make([]color.RGBA, n)
	}
}

func (fb *Framebuffer) offset(x, y int) (int, bool) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return 0, false
	}
	return y*fb.Width + x, true
}

// Clear fills the framebuffer with c.
func (fb *Framebuffer) Clear(c color.RGBA) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

// SetPixel colors (x, y). Writes outside the buffer are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if i, ok := fb.offset(x, y); ok {
		fb.Pixels[i] = c
	}
}

// GetPixel returns the color at (x, y), or transparent black outside the
// buffer.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if i, ok := fb.offset(x, y); ok {
		return fb.Pixels[i]
	}
	return color.RGBA{}
}

// DrawLine draws a line from (x0, y0) to (x1, y1) with Bresenham's algorithm.
// Pixels outside the buffer are clipped one by one.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx, sx := span(x0, x1)
	dy, sy := span(y0, y1)
	dy = -dy
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// span returns |b-a| and the unit step from a towards b.
func span(a, b int) (int, int) {
	if b < a {
		return a - b, -1
	}
	return b - a, 1
}

// DrawTriangleEdges draws every undirected edge of n indexed triangles over
// projected points once. tri returns the point indices of triangle i. Edges
// with an invisible end are skipped. It returns the number of edges drawn.
func (fb *Framebuffer) DrawTriangleEdges(pts []Point, tri func(i int) [3]int, n int, c color.RGBA) int {
	type edge struct{ a, b int }
	seen := make(map[edge]struct{}, n*3/2)
	drawn := 0

	for i := range n {
		t := tri(i)
		for k := range 3 {
			e := edge{t[k], t[(k+1)%3]}
			if e.a > e.b {
				e.a, e.b = e.b, e.a
			}
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}

			p, q := pts[e.a], pts[e.b]
			if !p.Visible || !q.Visible {
				continue
			}
			fb.DrawLine(p.X, p.Y, q.X, q.Y, c)
			drawn++
		}
	}
	return drawn
}

// ToImage copies the framebuffer into an image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, p := range fb.Pixels {
		img.Pix[i*4] = p.R
		img.Pix[i*4+1] = p.G
		img.Pix[i*4+2] = p.B
		img.Pix[i*4+3] = p.A
	}
	return img
}

// SavePNG writes the framebuffer to path as a PNG image.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, fb.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
