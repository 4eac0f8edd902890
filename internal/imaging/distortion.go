package imaging

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-stego-mcp/internal/pixel"
)

// DistortionResult compares a cover image with a modified copy.
type DistortionResult struct {
	// Identical is true when every sample matches.
	Identical bool `json:"identical"`

	// PSNR is the peak signal-to-noise ratio in dB over all RGB samples. It is
	// omitted for identical images, where it is infinite.
	PSNR *float64 `json:"psnr_db,omitempty"`

	// MSE is the mean squared error per sample.
	MSE float64 `json:"mse"`

	// ChangedSamples counts samples that differ.
	ChangedSamples int `json:"changed_samples"`

	// ChangedPixels counts pixels with at least one differing sample.
	ChangedPixels int `json:"changed_pixels"`

	// MeanDeltaE is the mean CIE L*a*b* distance over all pixels.
	MeanDeltaE float64 `json:"mean_delta_e"`

	// MaxDeltaE is the largest CIE L*a*b* distance of any pixel.
	MaxDeltaE float64 `json:"max_delta_e"`
}

// MeasureDistortion reports how far modified deviates from original. Both
// grids must have the same dimensions.
func MeasureDistortion(original, modified *pixel.Grid) (*DistortionResult, error) {
	if err := original.Validate(); err != nil {
		return nil, fmt.Errorf("original: %w", err)
	}
	if err := modified.Validate(); err != nil {
		return nil, fmt.Errorf("modified: %w", err)
	}
	if original.Width != modified.Width || original.Height != modified.Height {
		return nil, fmt.Errorf("dimension mismatch: %dx%d vs %dx%d",
			original.Width, original.Height, modified.Width, modified.Height)
	}

	res := &DistortionResult{}
	var sumSq, sumDeltaE float64
	for i := 0; i < len(original.Pix); i += 3 {
		changed := false
		for c := 0; c < 3; c++ {
			diff := float64(original.Pix[i+c]) - float64(modified.Pix[i+c])
			if diff != 0 {
				res.ChangedSamples++
				changed = true
				sumSq += diff * diff
			}
		}
		if !changed {
			continue
		}
		res.ChangedPixels++

		d := toColorful(original.Pix[i : i+3]).DistanceLab(toColorful(modified.Pix[i : i+3]))
		sumDeltaE += d
		if d > res.MaxDeltaE {
			res.MaxDeltaE = d
		}
	}

	pixels := float64(original.Width * original.Height)
	res.MSE = sumSq / (pixels * 3)
	res.MeanDeltaE = sumDeltaE / pixels

	if res.ChangedSamples == 0 {
		res.Identical = true
		return res, nil
	}
	psnr := 20 * math.Log10(255.0/math.Sqrt(res.MSE))
	res.PSNR = &psnr
	return res, nil
}

func toColorful(rgb []uint8) colorful.Color {
	return colorful.Color{
		R: float64(rgb[0]) / 255.0,
		G: float64(rgb[1]) / 255.0,
		B: float64(rgb[2]) / 255.0,
	}
}
