// Package header implements the fixed 8-byte frame that precedes every
// embedded payload.
//
// Byte layout:
//
//	0-3: Magic (big-endian uint32, 0x4D455441 "META")
//	4-7: PayloadLength in bytes (big-endian uint32)
//
// The header is always the first 64 carrier bits, whatever channel selector or
// bit plane is in use. A magic mismatch means "no metadata here", not a decode
// failure; callers decide how to report absence.
package header

import (
	"encoding/binary"
	"errors"

	"github.com/ironsheep/image-stego-mcp/internal/bitstream"
)

const (
	// Magic identifies a frame written by this codec.
	Magic uint32 = 0x4D455441
	// Size is the header length in bytes.
	Size = 8
	// Bits is the header length in carrier bits.
	Bits = Size * 8
	// MagicBits is the number of leading bits holding the magic field.
	MagicBits = 32
)

// ErrTooShort indicates fewer than Size bytes were supplied to Parse.
var ErrTooShort = errors.New("header too short")

// Header is a decoded frame header.
type Header struct {
	Magic         uint32
	PayloadLength uint32
}

// New returns a header carrying the codec magic and the given payload length.
func New(payloadLength uint32) Header {
	return Header{Magic: Magic, PayloadLength: payloadLength}
}

// Encode writes magic then length, both big-endian.
func Encode(magic, payloadLength uint32) []byte {
	b := make([]byte, Size)
	binary.BigEndian.PutUint32(b[0:4], magic)
	binary.BigEndian.PutUint32(b[4:8], payloadLength)
	return b
}

// Bytes returns the 8-byte wire form of h.
func (h Header) Bytes() []byte {
	return Encode(h.Magic, h.PayloadLength)
}

// Valid reports whether the magic field matches the codec constant.
func (h Header) Valid() bool {
	return h.Magic == Magic
}

// PayloadBits is the number of carrier bits the declared payload occupies.
// It is 64-bit so a hostile length cannot wrap on 32-bit platforms.
func (h Header) PayloadBits() int64 {
	return int64(h.PayloadLength) * 8
}

// Parse decodes the first Size bytes of b.
func Parse(b []byte) (Header, error) {
	if len(b) < Size {
		return Header{}, ErrTooShort
	}
	return Header{
		Magic:         binary.BigEndian.Uint32(b[0:4]),
		PayloadLength: binary.BigEndian.Uint32(b[4:8]),
	}, nil
}

// Decode parses a header from its 64-bit carrier form.
func Decode(bits []uint8) (Header, error) {
	if len(bits) < Bits {
		return Header{}, ErrTooShort
	}
	return Parse(bitstream.FromBits(bits[:Bits]))
}

// MagicFromBits reads only the magic field from the first 32 bits. It returns
// false when fewer than 32 bits are available.
func MagicFromBits(bits []uint8) (uint32, bool) {
	if len(bits) < MagicBits {
		return 0, false
	}
	return binary.BigEndian.Uint32(bitstream.FromBits(bits[:MagicBits])), true
}
