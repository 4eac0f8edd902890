package pixel

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidChannel indicates a channel selector outside the known set.
	ErrInvalidChannel = errors.New("invalid channel selector")
	// ErrInvalidPlane indicates a bit plane outside 0-7.
	ErrInvalidPlane = errors.New("invalid bit plane")
)

// Channel selects which samples of each pixel carry payload bits.
//
// The zero value is ChannelAll.
type Channel int

const (
	// ChannelAll cycles red, green, blue within each pixel.
	ChannelAll Channel = iota
	// ChannelRed uses only the red sample of each pixel.
	ChannelRed
	// ChannelGreen uses only the green sample of each pixel.
	ChannelGreen
	// ChannelBlue uses only the blue sample of each pixel.
	ChannelBlue
)

// Sample indexes within a pixel.
const (
	Red   = 0
	Green = 1
	Blue  = 2
)

// ParseChannel accepts "all", "red", "green" or "blue" (case-insensitive) and
// the single-letter forms "r", "g", "b". An empty string selects ChannelAll.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "rgb":
		return ChannelAll, nil
	case "red", "r":
		return ChannelRed, nil
	case "green", "g":
		return ChannelGreen, nil
	case "blue", "b":
		return ChannelBlue, nil
	default:
		return ChannelAll, fmt.Errorf("%w: %q", ErrInvalidChannel, s)
	}
}

// String returns the name accepted by ParseChannel.
func (c Channel) String() string {
	switch c {
	case ChannelAll:
		return "all"
	case ChannelRed:
		return "red"
	case ChannelGreen:
		return "green"
	case ChannelBlue:
		return "blue"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Valid reports whether c is one of the defined selectors.
func (c Channel) Valid() bool {
	return c >= ChannelAll && c <= ChannelBlue
}

// SamplesPerPixel is the number of carrier bits each pixel contributes.
func (c Channel) SamplesPerPixel() int {
	if c == ChannelAll {
		return 3
	}
	return 1
}

// sample returns the fixed sample index for single-channel selectors.
func (c Channel) sample() int {
	return int(c) - 1
}

// Plane is the bit index (0 = least significant) used within each sample.
type Plane uint8

// LSB is the least significant bit plane.
const LSB Plane = 0

// Valid reports whether p addresses a bit of an 8-bit sample.
func (p Plane) Valid() bool {
	return p <= 7
}

// Mask clears the plane bit when ANDed with a sample.
func (p Plane) Mask() uint8 {
	return ^(uint8(1) << p)
}

// ValidateSelection checks a channel/plane pair.
func ValidateSelection(c Channel, p Plane) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, int(c))
	}
	if !p.Valid() {
		return fmt.Errorf("%w: %d (must be 0-7)", ErrInvalidPlane, p)
	}
	return nil
}
