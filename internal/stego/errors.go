package stego

import (
	"context"
	"errors"
	"fmt"

	"github.com/ironsheep/image-stego-mcp/internal/imaging"
	"github.com/ironsheep/image-stego-mcp/internal/metadata"
	"github.com/ironsheep/image-stego-mcp/internal/pixel"
)

// Re-exported so callers of this package need not import the codec layers.
var (
	ErrCorrupt                = metadata.ErrCorrupt
	ErrCapacityExceeded       = metadata.ErrCapacityExceeded
	ErrEncoding               = metadata.ErrEncoding
	ErrUnsupportedPixelFormat = pixel.ErrUnsupportedPixelFormat
	ErrSourceUnreadable       = imaging.ErrSourceUnreadable

	// ErrNotObject indicates Update found existing metadata that is not an
	// object and therefore cannot be merged.
	ErrNotObject = fmt.Errorf("%w: existing metadata is not an object", metadata.ErrEncoding)
)

// ErrorKind classifies failures. Absent metadata is not a failure and has no kind.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindSourceUnreadable
	KindUnsupportedPixelFormat
	KindMetadataCorrupt
	KindCapacityExceeded
	KindEncoding
	KindInvalidOptions
	KindCanceled
	KindInternal
)

// String returns the snake_case name used in tool output.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindSourceUnreadable:
		return "source_unreadable"
	case KindUnsupportedPixelFormat:
		return "unsupported_pixel_format"
	case KindMetadataCorrupt:
		return "metadata_corrupt"
	case KindCapacityExceeded:
		return "capacity_exceeded"
	case KindEncoding:
		return "encoding_error"
	case KindInvalidOptions:
		return "invalid_options"
	case KindCanceled:
		return "canceled"
	default:
		return "internal"
	}
}

// MarshalText lets kinds appear by name in JSON results.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// KindOf classifies err. A nil error is KindNone; unknown errors are KindInternal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, imaging.ErrSourceUnreadable):
		return KindSourceUnreadable
	case errors.Is(err, pixel.ErrUnsupportedPixelFormat):
		return KindUnsupportedPixelFormat
	case errors.Is(err, metadata.ErrCorrupt):
		return KindMetadataCorrupt
	case errors.Is(err, metadata.ErrCapacityExceeded):
		return KindCapacityExceeded
	case errors.Is(err, metadata.ErrEncoding):
		return KindEncoding
	case errors.Is(err, pixel.ErrInvalidChannel), errors.Is(err, pixel.ErrInvalidPlane):
		return KindInvalidOptions
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}
