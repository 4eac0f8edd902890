// Package bitstream converts between byte slices and ordered single-bit
// sequences. Bits are ordered most-significant-bit first within each byte and
// bytes keep their input order, which is the order the pixel carrier is filled in.
package bitstream

// ToBits expands data into one element per bit, each element 0 or 1.
func ToBits(data []byte) []uint8 {
	bits := make([]uint8, len(data)*8)
	for i, b := range data {
		offset := i * 8
		for j := 0; j < 8; j++ {
			bits[offset+j] = (b >> (7 - j)) & 1
		}
	}
	return bits
}

// FromBits packs bits back into bytes, MSB first. A trailing group shorter than
// eight bits is padded with zeros on the right. Any non-zero element counts as 1.
func FromBits(bits []uint8) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit != 0 {
			out[i/8] |= 1 << (7 - i%8)
		}
	}
	return out
}
