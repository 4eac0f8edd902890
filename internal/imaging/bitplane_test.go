package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/png"
	"math"
	"testing"

	"github.com/ironsheep/image-stego-mcp/internal/pixel"
)

func TestBitPlaneView_SingleChannel(t *testing.T) {
	g := solid(t, 4, 2, 0x00, 0xFF, 0x00)
	g.SetSample(1, 0, pixel.Red, 0x01)

	result, err := BitPlaneView(g, pixel.ChannelRed, pixel.LSB, 1.0)
	if err != nil {
		t.Fatalf("BitPlaneView failed: %v", err)
	}
	if result.Width != 4 || result.Height != 2 {
		t.Errorf("dimensions: got %dx%d, want 4x2", result.Width, result.Height)
	}
	if result.MimeType != "image/png" || result.Channel != "red" {
		t.Errorf("unexpected metadata: %+v", result)
	}
	if result.OnesRatio != 1.0/8.0 {
		t.Errorf("OnesRatio: got %f, want 0.125", result.OnesRatio)
	}

	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if r, _, _, _ := img.At(1, 0).RGBA(); r>>8 != 0xFF {
		t.Error("bit set at (1,0) should render white")
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); r != 0 {
		t.Error("clear bit at (0,0) should render black")
	}
}

func TestBitPlaneView_AllChannels(t *testing.T) {
	g := solid(t, 1, 1, 0x02, 0x00, 0x02)

	result, err := BitPlaneView(g, pixel.ChannelAll, 1, 1.0)
	if err != nil {
		t.Fatalf("BitPlaneView failed: %v", err)
	}
	data, _ := base64.StdEncoding.DecodeString(result.ImageBase64)
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	r, gr, b, _ := img.At(0, 0).RGBA()
	if r>>8 != 0xFF || gr != 0 || b>>8 != 0xFF {
		t.Errorf("expected magenta, got %d,%d,%d", r>>8, gr>>8, b>>8)
	}
}

func TestBitPlaneView_Scale(t *testing.T) {
	g := createTestGrid(t, 10, 5)
	result, err := BitPlaneView(g, pixel.ChannelGreen, 3, 3.0)
	if err != nil {
		t.Fatalf("BitPlaneView failed: %v", err)
	}
	if result.Width != 30 || result.Height != 15 {
		t.Errorf("scaled dimensions: got %dx%d, want 30x15", result.Width, result.Height)
	}

	if _, err := BitPlaneView(g, pixel.ChannelGreen, 3, 0.01); !errors.Is(err, ErrInvalidScale) {
		t.Errorf("a scale that collapses the image should fail with ErrInvalidScale, got %v", err)
	}
}

func TestBitPlaneView_ScaleBounds(t *testing.T) {
	small := createTestGrid(t, 4, 4)
	large := createTestGrid(t, 2000, 1)

	tests := []struct {
		name  string
		g     *pixel.Grid
		scale float64
		ok    bool
	}{
		{"max scale", small, MaxBitPlaneScale, true},
		{"above max", small, MaxBitPlaneScale + 0.5, false},
		{"huge", small, 1e12, false},
		{"infinite", small, math.Inf(1), false},
		{"nan", small, math.NaN(), false},
		{"zero", small, 0, false},
		{"negative", small, -2, false},
		{"oversized view", large, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := BitPlaneView(tt.g, pixel.ChannelRed, pixel.LSB, tt.scale)
			if tt.ok {
				if err != nil {
					t.Fatalf("BitPlaneView failed: %v", err)
				}
				if result.Width != 64 || result.Height != 64 {
					t.Errorf("dimensions: got %dx%d, want 64x64", result.Width, result.Height)
				}
				return
			}
			if !errors.Is(err, ErrInvalidScale) {
				t.Errorf("expected ErrInvalidScale, got %v", err)
			}
		})
	}
}

func TestBitPlaneView_InvalidSelection(t *testing.T) {
	g := createTestGrid(t, 2, 2)
	if _, err := BitPlaneView(g, pixel.ChannelAll, 8, 1.0); !errors.Is(err, pixel.ErrInvalidPlane) {
		t.Errorf("expected ErrInvalidPlane, got %v", err)
	}
}
