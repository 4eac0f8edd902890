package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ironsheep/image-stego-mcp/internal/pixel"
)

// createTestImage writes a solid-colour PNG into a temp directory and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "test-image.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// createTestGrid returns a grid with a deterministic, varied pattern.
func createTestGrid(t *testing.T, width, height int) *pixel.Grid {
	t.Helper()
	g, err := pixel.NewGrid(width, height)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	for i := range g.Pix {
		g.Pix[i] = uint8(i*31 + 7)
	}
	return g
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.images == nil {
		t.Fatal("NewImageCache did not initialize images map")
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 100, 100, color.RGBA{255, 0, 0, 255})

	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	bounds := img1.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x100", bounds.Dx(), bounds.Dy())
	}

	// Second load should return cached image
	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	_, err := cache.Load("/nonexistent/path/to/image.png")
	if !errors.Is(err, ErrSourceUnreadable) {
		t.Errorf("expected ErrSourceUnreadable, got %v", err)
	}
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	cache := NewImageCache()

	path := filepath.Join(t.TempDir(), "invalid.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := cache.Load(path)
	if !errors.Is(err, ErrSourceUnreadable) {
		t.Errorf("expected ErrSourceUnreadable, got %v", err)
	}
}

func TestImageCache_LoadGrid(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 20, 10, color.RGBA{255, 0, 0, 255})

	g, err := cache.LoadGrid(imgPath)
	if err != nil {
		t.Fatalf("LoadGrid failed: %v", err)
	}
	if g.Width != 20 || g.Height != 10 {
		t.Errorf("dimensions: got %dx%d", g.Width, g.Height)
	}
	if g.Sample(5, 5, pixel.Red) != 255 || g.Sample(5, 5, pixel.Blue) != 0 {
		t.Errorf("unexpected samples at (5,5): %v", g.Pix[(5*20+5)*3:(5*20+5)*3+3])
	}

	// Each call returns an independent grid
	g.SetSample(0, 0, pixel.Red, 0)
	again, _ := cache.LoadGrid(imgPath)
	if again.Sample(0, 0, pixel.Red) != 255 {
		t.Error("LoadGrid returned a grid sharing storage with a previous call")
	}
}

func TestImageCache_SaveGridEvicts(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 8, 8, color.RGBA{10, 10, 10, 255})

	if _, err := cache.Load(imgPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	g := createTestGrid(t, 8, 8)
	if err := cache.SaveGrid(imgPath, g); err != nil {
		t.Fatalf("SaveGrid failed: %v", err)
	}

	back, err := cache.LoadGrid(imgPath)
	if err != nil {
		t.Fatalf("LoadGrid failed: %v", err)
	}
	if !back.Equal(g) {
		t.Error("cache served the stale image after SaveGrid")
	}
}

func TestImageCache_Clear(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{0, 255, 0, 255})

	if _, err := cache.Load(imgPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Clear()

	cache.mu.RLock()
	count := len(cache.images)
	cache.mu.RUnlock()

	if count != 0 {
		t.Errorf("Clear did not empty cache: %d images remain", count)
	}
}

func TestImageCache_Evict(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{0, 0, 255, 255})

	if _, err := cache.Load(imgPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Evict(imgPath)

	cache.mu.RLock()
	_, exists := cache.images[imgPath]
	cache.mu.RUnlock()

	if exists {
		t.Error("Evict did not remove image from cache")
	}

	// Evicting an unknown path must not panic
	cache.Evict("/nonexistent/path")
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{128, 128, 128, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.LoadGrid(imgPath); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent LoadGrid error: %v", err)
	}
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 200, 150, color.RGBA{255, 128, 64, 255})

	info, err := LoadImageInfo(cache, imgPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}

	if info.Width != 200 || info.Height != 150 {
		t.Errorf("dimensions: got %dx%d, want 200x150", info.Width, info.Height)
	}
	if info.Format != "png" || !info.Lossless {
		t.Errorf("Format: got %s lossless=%v", info.Format, info.Lossless)
	}
	if info.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes should be positive")
	}

	// 200*150*3 bits minus the 64-bit header, in bytes
	if want := (200*150*3 - 64) / 8; info.CapacityBytes.All != want {
		t.Errorf("CapacityBytes.All: got %d, want %d", info.CapacityBytes.All, want)
	}
	if want := (200*150 - 64) / 8; info.CapacityBytes.Red != want {
		t.Errorf("CapacityBytes.Red: got %d, want %d", info.CapacityBytes.Red, want)
	}
}

func TestLoadImageInfo_FormatDetection(t *testing.T) {
	cache := NewImageCache()

	tests := []struct {
		ext      string
		format   string
		lossless bool
	}{
		{".png", "png", true},
		{".jpg", "jpeg", false},
		{".JPEG", "jpeg", false},
		{".gif", "gif", false},
		{".bmp", "bmp", true},
		{".xyz", "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			// A valid PNG regardless of extension
			tmpPath := filepath.Join(t.TempDir(), "test-format"+tt.ext)
			f, err := os.Create(tmpPath)
			if err != nil {
				t.Fatalf("failed to create file: %v", err)
			}
			png.Encode(f, image.NewRGBA(image.Rect(0, 0, 10, 10)))
			f.Close()

			info, err := LoadImageInfo(cache, tmpPath)
			if err != nil {
				t.Fatalf("LoadImageInfo failed: %v", err)
			}
			if info.Format != tt.format || info.Lossless != tt.lossless {
				t.Errorf("got %s/%v, want %s/%v", info.Format, info.Lossless, tt.format, tt.lossless)
			}
		})
	}
}

func TestLoadImageInfo_NonExistent(t *testing.T) {
	cache := NewImageCache()
	if _, err := LoadImageInfo(cache, "/nonexistent/image.png"); err == nil {
		t.Error("LoadImageInfo should fail for non-existent file")
	}
}

func TestPayloadCapacity(t *testing.T) {
	if got := PayloadCapacity(4, 4, pixel.ChannelRed); got != 0 {
		t.Errorf("16 carrier bits cannot hold a header: got %d", got)
	}
	if got := PayloadCapacity(100, 100, pixel.ChannelAll); got != 3742 {
		t.Errorf("100x100 all: got %d, want 3742", got)
	}
}

// solid returns a grid with every pixel set to one colour.
func solid(t *testing.T, width, height int, r, g, b uint8) *pixel.Grid {
	t.Helper()
	grid, err := pixel.NewGrid(width, height)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	for i := 0; i < len(grid.Pix); i += 3 {
		grid.Pix[i], grid.Pix[i+1], grid.Pix[i+2] = r, g, b
	}
	return grid
}
