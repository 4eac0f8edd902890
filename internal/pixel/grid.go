package pixel

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedPixelFormat indicates an image that cannot be represented as
// an RGB sample grid.
var ErrUnsupportedPixelFormat = errors.New("unsupported pixel format")

// Grid is an RGB raster of 8-bit samples.
type Grid struct {
	// Width is the grid width in pixels.
	Width int
	// Height is the grid height in pixels.
	Height int
	// Pix holds Width*Height*3 samples, row-major, RGB interleaved.
	Pix []uint8
}

// NewGrid allocates a zeroed (black) grid.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: empty raster %dx%d", ErrUnsupportedPixelFormat, width, height)
	}
	return &Grid{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}, nil
}

// FromImage converts any decoded image to an RGB grid.
//
// The image is first normalised to 8-bit non-premultiplied RGBA, so paletted,
// grayscale, YCbCr and 16-bit sources are all accepted. Alpha is dropped.
func FromImage(img image.Image) (*Grid, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrUnsupportedPixelFormat)
	}
	b := img.Bounds()
	g, err := NewGrid(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	nrgba := imaging.Clone(img)
	i := 0
	for y := 0; y < g.Height; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < g.Width; x++ {
			g.Pix[i] = row[x*4]
			g.Pix[i+1] = row[x*4+1]
			g.Pix[i+2] = row[x*4+2]
			i += 3
		}
	}
	return g, nil
}

// ToImage returns an opaque NRGBA image holding the grid samples.
func (g *Grid) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	i := 0
	for y := 0; y < g.Height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < g.Width; x++ {
			row[x*4] = g.Pix[i]
			row[x*4+1] = g.Pix[i+1]
			row[x*4+2] = g.Pix[i+2]
			row[x*4+3] = 0xFF
			i += 3
		}
	}
	return img
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	pix := make([]uint8, len(g.Pix))
	copy(pix, g.Pix)
	return &Grid{Width: g.Width, Height: g.Height, Pix: pix}
}

// Validate checks that the sample buffer matches the declared dimensions.
func (g *Grid) Validate() error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", ErrUnsupportedPixelFormat)
	}
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: empty raster %dx%d", ErrUnsupportedPixelFormat, g.Width, g.Height)
	}
	if len(g.Pix) != g.Width*g.Height*3 {
		return fmt.Errorf("%w: %d samples for %dx%d RGB raster",
			ErrUnsupportedPixelFormat, len(g.Pix), g.Width, g.Height)
	}
	return nil
}

// Equal reports whether both grids have the same size and samples.
func (g *Grid) Equal(o *Grid) bool {
	return g.Width == o.Width && g.Height == o.Height && bytes.Equal(g.Pix, o.Pix)
}

// Sample returns the sample of channel c (Red, Green or Blue) at (x, y).
func (g *Grid) Sample(x, y, c int) uint8 {
	return g.Pix[g.offset(x, y, c)]
}

// SetSample overwrites one sample.
func (g *Grid) SetSample(x, y, c int, v uint8) {
	g.Pix[g.offset(x, y, c)] = v
}

// Capacity is the number of carrier bits addressable with selector c.
func (g *Grid) Capacity(c Channel) int {
	return g.Width * g.Height * c.SamplesPerPixel()
}

func (g *Grid) offset(x, y, c int) int {
	return (y*g.Width+x)*3 + c
}
