package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-stego-mcp/internal/pixel"
)

// MaxBitPlaneScale bounds the enlargement factor of a bit-plane view.
const MaxBitPlaneScale = 16.0

// maxViewSide bounds either side of a scaled bit-plane view in pixels.
const maxViewSide = 16384

// ErrInvalidScale indicates a bit-plane scale outside (0, MaxBitPlaneScale]
// or one that would produce an oversized view.
var ErrInvalidScale = errors.New("invalid bit plane scale")

// BitPlaneResult contains a rendered bit plane.
type BitPlaneResult struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Channel     string  `json:"channel"`
	BitPlane    int     `json:"bit_plane"`
	OnesRatio   float64 `json:"ones_ratio"`
	ImageBase64 string  `json:"image_base64"`
	MimeType    string  `json:"mime_type"`
}

// BitPlaneView renders one bit plane of g as a PNG.
//
// For a single channel each pixel is white where the bit is 1 and black where
// it is 0. For ChannelAll each output channel shows the bit of the matching
// input channel, so a region written with payload appears as colour noise.
// OnesRatio is the fraction of rendered bits that are 1; random-looking
// payload data sits near 0.5.
//
// scale must lie in (0, MaxBitPlaneScale]. A scale other than 1 resizes the result with nearest-neighbour sampling so
// individual bits stay sharp.
func BitPlaneView(g *pixel.Grid, c pixel.Channel, p pixel.Plane, scale float64) (*BitPlaneResult, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := pixel.ValidateSelection(c, p); err != nil {
		return nil, err
	}
	if !(scale > 0 && scale <= MaxBitPlaneScale) {
		return nil, fmt.Errorf("%w: %v not in (0, %v]", ErrInvalidScale, scale, MaxBitPlaneScale)
	}
	newWidth := int(float64(g.Width) * scale)
	newHeight := int(float64(g.Height) * scale)
	if newWidth < 1 || newHeight < 1 {
		return nil, fmt.Errorf("%w: %.3f collapses %dx%d image", ErrInvalidScale, scale, g.Width, g.Height)
	}
	if newWidth > maxViewSide || newHeight > maxViewSide {
		return nil, fmt.Errorf("%w: %.3f gives a %dx%d view, limit is %d per side",
			ErrInvalidScale, scale, newWidth, newHeight, maxViewSide)
	}

	view, err := pixel.NewGrid(g.Width, g.Height)
	if err != nil {
		return nil, err
	}
	ones, total := 0, 0
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			for ch := pixel.Red; ch <= pixel.Blue; ch++ {
				if c != pixel.ChannelAll && ch != int(c)-1 {
					continue
				}
				bit := pixel.ReadBit(g, pixel.Position{X: x, Y: y, Channel: ch}, p)
				total++
				if bit == 0 {
					continue
				}
				ones++
				if c == pixel.ChannelAll {
					view.SetSample(x, y, ch, 0xFF)
					continue
				}
				for k := pixel.Red; k <= pixel.Blue; k++ {
					view.SetSample(x, y, k, 0xFF)
				}
			}
		}
	}

	var out image.Image = view.ToImage()
	if scale != 1.0 {
		out = imaging.Resize(out, newWidth, newHeight, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode bit plane: %w", err)
	}

	return &BitPlaneResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		Channel:     c.String(),
		BitPlane:    int(p),
		OnesRatio:   float64(ones) / float64(total),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
