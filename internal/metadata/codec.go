// Package metadata frames structured values for the pixel carrier and reads
// them back.
//
// A frame is the 8-byte header followed by the canonical JSON payload. Encoding
// refuses frames larger than the carrier instead of writing a truncated copy.
// Decoding distinguishes three outcomes: Absent (magic mismatch), Corrupt
// (magic present, payload unreadable) and Found.
package metadata

import (
	"errors"
	"fmt"
	"math"

	"github.com/ironsheep/image-stego-mcp/internal/bitstream"
	"github.com/ironsheep/image-stego-mcp/internal/header"
	"github.com/ironsheep/image-stego-mcp/internal/pixel"
)

var (
	// ErrCorrupt indicates a valid header followed by an unreadable payload.
	ErrCorrupt = errors.New("metadata corrupt")
	// ErrCapacityExceeded indicates the frame does not fit in the carrier.
	ErrCapacityExceeded = errors.New("metadata exceeds image capacity")
	// ErrEncoding indicates a value that cannot be serialised.
	ErrEncoding = errors.New("metadata not serializable")
)

// Status is the result of looking for a frame in a grid.
type Status int

const (
	// Absent means the header magic did not match.
	Absent Status = iota
	// Corrupt means the magic matched but the payload could not be decoded.
	Corrupt
	// Found means a complete payload was decoded.
	Found
)

// String returns a lower-case name for the status.
func (s Status) String() string {
	switch s {
	case Absent:
		return "absent"
	case Corrupt:
		return "corrupt"
	case Found:
		return "found"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is what Decode observed.
type Outcome struct {
	Status Status
	// Value is set when Status is Found.
	Value any
	// Header is the header as read, valid or not.
	Header header.Header
	// Err explains a Corrupt outcome and wraps ErrCorrupt.
	Err error
}

// Frame returns header bytes followed by the canonical payload of v.
func Frame(v any) ([]byte, error) {
	payload, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: payload of %d bytes overflows the length field", ErrEncoding, len(payload))
	}
	frame := make([]byte, 0, header.Size+len(payload))
	frame = append(frame, header.New(uint32(len(payload))).Bytes()...)
	return append(frame, payload...), nil
}

// Encode returns the carrier bits for v: header then payload, MSB first.
func Encode(v any) ([]uint8, error) {
	frame, err := Frame(v)
	if err != nil {
		return nil, err
	}
	return bitstream.ToBits(frame), nil
}

// FrameBits is the number of carrier bits a payload of n bytes needs.
func FrameBits(n int) int {
	return header.Bits + n*8
}

// Write encodes v into g in place, starting at carrier bit 0, and returns the
// number of carrier bits consumed. g is not modified when an error is returned.
func Write(g *pixel.Grid, v any, c pixel.Channel, p pixel.Plane) (int, error) {
	bits, err := Encode(v)
	if err != nil {
		return 0, err
	}
	if capacity := g.Capacity(c); len(bits) > capacity {
		return 0, fmt.Errorf("%w: need %d bits, %dx%d image holds %d with channel %s",
			ErrCapacityExceeded, len(bits), g.Width, g.Height, capacity, c)
	}
	cur := pixel.NewCursor(g, c)
	pixel.WriteBits(g, cur, p, bits)
	return cur.Consumed(), nil
}

// Decode reads the frame at carrier bit 0 of g.
func Decode(g *pixel.Grid, c pixel.Channel, p pixel.Plane) Outcome {
	cur := pixel.NewCursor(g, c)

	hbits := pixel.ReadBits(g, cur, p, header.Bits)
	h, err := header.Decode(hbits)
	if err != nil || !h.Valid() {
		return Outcome{Status: Absent, Header: h}
	}

	need := h.PayloadBits()
	if need > int64(cur.Remaining()) {
		return Outcome{
			Status: Corrupt,
			Header: h,
			Err: fmt.Errorf("%w: declared length %d bytes exceeds the %d remaining carrier bits",
				ErrCorrupt, h.PayloadLength, cur.Remaining()),
		}
	}

	payload := bitstream.FromBits(pixel.ReadBits(g, cur, p, int(need)))
	v, err := Unmarshal(payload)
	if err != nil {
		return Outcome{Status: Corrupt, Header: h, Err: err}
	}
	return Outcome{Status: Found, Value: v, Header: h}
}

// Present reads only the 32-bit magic field. It confirms that a header is
// there, not that the payload behind it decodes.
func Present(g *pixel.Grid, c pixel.Channel, p pixel.Plane) bool {
	bits := pixel.ReadBits(g, pixel.NewCursor(g, c), p, header.MagicBits)
	m, ok := header.MagicFromBits(bits)
	return ok && m == header.Magic
}
