// Package preview renders feature thumbnails.
package preview

import (
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/woozymasta/dragmap/internal/geo"

	"github.com/chai2010/webp"
	"golang.org/x/image/vector"
)

// padding around the shape, fraction of the image size
const padding = 0.08

var (
	// Fill matches the floating layer colour of the web client.
	Fill = color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}
	// Background is left transparent.
	Background = color.Transparent
)

// Render rasterises g into a size x size image, fitted and centred.
// Longitudes and latitudes are scaled by the same factor so the shape keeps
// its plate carrée proportions.
func Render(g geo.Geometry, size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	b := g.Bound()
	w, h := b.Right()-b.Left(), b.Top()-b.Bottom()
	if size <= 0 || (w <= 0 && h <= 0) {
		return img
	}

	inner := float64(size) * (1 - 2*padding)
	k := inner / max(w, h)
	offX := (float64(size) - w*k) / 2
	offY := (float64(size) - h*k) / 2

	project := func(p geo.Position) (float32, float32) {
		x := offX + (p.Lng-b.Left())*k
		y := offY + (b.Top()-p.Lat)*k
		return float32(x), float32(y)
	}

	z := vector.NewRasterizer(size, size)
	for _, ring := range rings(g) {
		for i, p := range ring {
			x, y := project(p)
			if i == 0 {
				z.MoveTo(x, y)
			} else {
				z.LineTo(x, y)
			}
		}
		z.ClosePath()
	}

	z.Draw(img, img.Bounds(), image.NewUniform(Fill), image.Point{})
	return img
}

// Encode writes img as a lossy WebP.
func Encode(w io.Writer, img image.Image) error {
	return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: 85})
}

// rings flattens the geometry into its rings, whatever the nesting depth.
func rings(g geo.Geometry) [][]geo.Position {
	var out [][]geo.Position

	var walk func(c geo.Coords)
	walk = func(c geo.Coords) {
		if c.Depth() == 1 {
			ring := make([]geo.Position, 0, c.Len())
			c.Walk(func(p geo.Position) { ring = append(ring, p) })
			if len(ring) > 2 {
				out = append(out, ring)
			}
			return
		}
		for _, child := range c.Children() {
			walk(child)
		}
	}
	walk(g.Coords)

	return out
}
