// Package pixel provides the RGB sample grid that carries embedded payloads and
// the mapping from a logical carrier-bit index to a physical sample.
//
// # Grid Layout
//
// A Grid stores Width x Height x 3 samples (R, G, B), row-major: y is the outer
// loop, x the inner loop, and the three channels of one pixel are adjacent.
// Alpha is not part of the grid; conversion from an image.Image discards it.
//
// # Carrier Order
//
// Carrier bits are visited in row-major pixel order. With ChannelAll the red,
// green and blue samples of a pixel are consumed, in that order, before moving
// to the next pixel. With a single channel only that sample of each pixel is used.
//
// # Bit Planes
//
// A Plane selects which bit of each 8-bit sample holds the payload bit; plane 0
// is the least significant bit. WriteBit changes exactly that bit of exactly one
// sample and leaves every other bit of the grid untouched.
//
// # Thread Safety
//
// A Grid is a plain value with no internal locking. Operations that modify a
// grid work on a copy owned by the caller (see Grid.Clone).
package pixel
