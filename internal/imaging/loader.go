package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder

	"github.com/ironsheep/image-stego-mcp/internal/header"
	"github.com/ironsheep/image-stego-mcp/internal/pixel"
)

// ErrSourceUnreadable indicates an image file that cannot be opened or decoded.
var ErrSourceUnreadable = errors.New("source image unreadable")

// ImageCache provides thread-safe caching of loaded images to avoid redundant disk reads.
//
// The cache stores decoded image.Image objects keyed by their file path. Once an image
// is loaded, subsequent Load() calls for the same path return the cached copy without
// disk I/O. SaveGrid evicts the path it writes, so a later Load sees the new file.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	grid, err := cache.LoadGrid("/path/to/image.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// Parameters:
//   - path: Absolute or relative file path to the image. Supported formats are
//     PNG, JPEG, GIF, BMP and TIFF.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: Non-nil, wrapping ErrSourceUnreadable, if the file cannot be
//     opened or decoded.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open image: %w", ErrSourceUnreadable, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image %s: %w", ErrSourceUnreadable, path, err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// LoadGrid loads an image and converts it to a fresh RGB grid. The grid is
// owned by the caller; the cached image is never modified.
func (c *ImageCache) LoadGrid(path string) (*pixel.Grid, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	g, err := pixel.FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// SaveGrid writes g to path (see Save) and evicts path from the cache.
func (c *ImageCache) SaveGrid(path string, g *pixel.Grid) error {
	defer c.Evict(path)
	return Save(path, g)
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Capacity lists how many payload bytes fit with each channel selector once
// the 8-byte header is accounted for.
type Capacity struct {
	All   int `json:"all"`
	Red   int `json:"red"`
	Green int `json:"green"`
	Blue  int `json:"blue"`
}

// PayloadCapacity returns the largest payload, in bytes, a width x height image
// can carry with channel c.
func PayloadCapacity(width, height int, c pixel.Channel) int {
	bits := width*height*c.SamplesPerPixel() - header.Bits
	if bits < 0 {
		return 0
	}
	return bits / 8
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format: "png", "jpeg", "gif", "bmp", "tiff"
	// or "unknown". Detection is based on file extension, not file contents.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the image has an alpha channel. Alpha is
	// discarded when metadata is embedded.
	HasAlpha bool `json:"has_alpha"`

	// Lossless is false for formats whose re-encoding would destroy embedded bits.
	Lossless bool `json:"lossless"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`

	// CapacityBytes is the maximum payload size per channel selector.
	CapacityBytes Capacity `json:"capacity_bytes"`
}

// LoadImageInfo loads an image and returns information about it, including
// how much metadata it can carry.
//
// # Color Depth Detection
//
// Color depth is determined by the Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := formatFromExt(path)

	hasAlpha := false
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	w, h := bounds.Dx(), bounds.Dy()
	return &ImageInfo{
		Width:         w,
		Height:        h,
		Format:        format,
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		Lossless:      format == "png" || format == "bmp" || format == "tiff",
		FileSizeBytes: stat.Size(),
		CapacityBytes: Capacity{
			All:   PayloadCapacity(w, h, pixel.ChannelAll),
			Red:   PayloadCapacity(w, h, pixel.ChannelRed),
			Green: PayloadCapacity(w, h, pixel.ChannelGreen),
			Blue:  PayloadCapacity(w, h, pixel.ChannelBlue),
		},
	}, nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	default:
		return "unknown"
	}
}
