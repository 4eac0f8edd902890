package imaging

import (
	"fmt"

	"github.com/ironsheep/image-stego-mcp/internal/header"
	"github.com/ironsheep/image-stego-mcp/internal/pixel"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// BitTriple holds the value of one bit plane in each channel of a pixel.
type BitTriple struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// LabeledPoint represents a pixel coordinate with an optional descriptive label.
type LabeledPoint struct {
	X     int    // X coordinate (0-based)
	Y     int    // Y coordinate (0-based)
	Label string // Optional descriptive label for this point
}

// PixelSample describes one pixel as a carrier.
type PixelSample struct {
	Label string   `json:"label,omitempty"`
	X     int      `json:"x"`
	Y     int      `json:"y"`
	Hex   string   `json:"hex"` // "#RRGGBB"
	RGB   RGBColor `json:"rgb"`

	// Bits is the selected bit plane of each channel.
	Bits BitTriple `json:"bits"`

	// CarrierIndex is the index of the first carrier bit stored in this pixel
	// for the selected channel. With ChannelAll the pixel holds three
	// consecutive carrier bits (R, G, B); otherwise it holds one.
	CarrierIndex int `json:"carrier_index"`

	// InHeader is true when this pixel carries part of the 64-bit header.
	InHeader bool `json:"in_header"`
}

// PixelSampleResult contains samples in input order.
type PixelSampleResult struct {
	Channel  string        `json:"channel"`
	BitPlane int           `json:"bit_plane"`
	Samples  []PixelSample `json:"samples"`
}

// SamplePixels reports the color and carrier bits at each point.
//
// Parameters:
//   - g: The grid to sample.
//   - points: Coordinates to sample, 0-based with origin at top-left.
//   - c, p: The channel selector and bit plane a payload would use.
//
// Returns an error, and no partial results, if any point is outside the grid.
//
// # Example
//
//	points := []imaging.LabeledPoint{
//	    {X: 0, Y: 0, Label: "first"},
//	    {X: 22, Y: 0, Label: "after header"},
//	}
//	result, err := imaging.SamplePixels(g, points, pixel.ChannelAll, 0)
func SamplePixels(g *pixel.Grid, points []LabeledPoint, c pixel.Channel, p pixel.Plane) (*PixelSampleResult, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := pixel.ValidateSelection(c, p); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no points to sample")
	}

	samples := make([]PixelSample, 0, len(points))
	for _, pt := range points {
		if pt.X < 0 || pt.X >= g.Width || pt.Y < 0 || pt.Y >= g.Height {
			return nil, fmt.Errorf("point (%d,%d) outside %dx%d image", pt.X, pt.Y, g.Width, g.Height)
		}

		r := g.Sample(pt.X, pt.Y, pixel.Red)
		gr := g.Sample(pt.X, pt.Y, pixel.Green)
		b := g.Sample(pt.X, pt.Y, pixel.Blue)

		index := (pt.Y*g.Width + pt.X) * c.SamplesPerPixel()
		samples = append(samples, PixelSample{
			Label: pt.Label,
			X:     pt.X,
			Y:     pt.Y,
			Hex:   fmt.Sprintf("#%02X%02X%02X", r, gr, b),
			RGB:   RGBColor{R: r, G: gr, B: b},
			Bits: BitTriple{
				R: (r >> p) & 1,
				G: (gr >> p) & 1,
				B: (b >> p) & 1,
			},
			CarrierIndex: index,
			InHeader:     index < header.Bits,
		})
	}

	return &PixelSampleResult{
		Channel:  c.String(),
		BitPlane: int(p),
		Samples:  samples,
	}, nil
}
