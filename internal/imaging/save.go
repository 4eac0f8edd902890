package imaging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/ironsheep/image-stego-mcp/internal/pixel"
)

// embeddedSuffix is appended to the source name when no output path is given.
const embeddedSuffix = "_embedded"

// Save encodes g losslessly to path, creating parent directories as needed.
// A ".bmp" path is written as BMP; every other path is written as PNG.
func Save(path string, g *pixel.Grid) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	encoder := imgio.PNGEncoder()
	if strings.EqualFold(filepath.Ext(path), ".bmp") {
		encoder = imgio.BMPEncoder()
	}
	if err := imgio.Save(path, g.ToImage(), encoder); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}

// OutputPath decides where a modified image is written.
//
//   - A non-empty out is used as given.
//   - Otherwise, with overwrite, the source path is reused.
//   - Otherwise "<base>_embedded<ext>" next to the source.
//
// In every case an extension other than .png or .bmp is replaced by .png,
// because lossy or paletted encoders would destroy the embedded bits.
func OutputPath(src, out string, overwrite bool) string {
	path := out
	if path == "" {
		if overwrite {
			path = src
		} else {
			ext := filepath.Ext(src)
			path = strings.TrimSuffix(src, ext) + embeddedSuffix + ext
		}
	}
	return losslessExt(path)
}

// BatchOutputPath places src's file name inside dir, with a lossless extension.
func BatchOutputPath(dir, src string) string {
	return losslessExt(filepath.Join(dir, filepath.Base(src)))
}

func losslessExt(path string) string {
	ext := filepath.Ext(path)
	switch strings.ToLower(ext) {
	case ".png", ".bmp":
		return path
	default:
		return strings.TrimSuffix(path, ext) + ".png"
	}
}
