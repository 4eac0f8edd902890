// Package imaging is the image I/O layer around the metadata codec.
//
// It loads image files into RGB pixel grids, persists modified grids in a
// lossless format, and provides inspection helpers used by the MCP tools:
// image information with embedding capacity, bit-plane visualisation,
// per-pixel carrier bit sampling, and distortion metrics between a cover image
// and its modified copy.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Images whose bounds do not
// start at the origin are normalised when converted to a grid.
//
// # Supported Formats
//
// Decoding: PNG, JPEG, GIF, BMP and TIFF. Encoding: PNG and BMP only. Embedded
// bits do not survive lossy recompression, so any other output extension is
// rewritten to ".png" (see OutputPath).
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The remaining functions are
// stateless and can be called concurrently on different images.
//
// # Error Handling
//
// Files that cannot be opened or decoded produce errors wrapping
// ErrSourceUnreadable. Images that cannot be represented as RGB grids produce
// errors wrapping pixel.ErrUnsupportedPixelFormat.
package imaging
