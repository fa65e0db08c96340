package calibrate

import "math"

// Params holds tuning for reference-object detection.
type Params struct {
	// Hough circle detection
	HoughDP     float64
	HoughParam1 float64
	HoughParam2 float64

	// Radius band in pixels, derived from image size via WithImageSize.
	MinRadiusPx int
	MaxRadiusPx int
	// Minimum separation between candidate centers.
	MinDistPx float64

	// Seed acceptance: a candidate qualifies when the seed lies within the
	// candidate's own radius and within max(SeedSlackFrac×radius, SeedSlackPx)
	// of its center.
	SeedSlackFrac float64
	SeedSlackPx   float64

	// Contour fallback
	FallbackMinAreaFrac    float64 // fraction of image area
	FallbackMaxAreaFrac    float64
	FallbackCircularityMin float64

	// Square reference flood fill: intensity tolerance in levels.
	SquareTolerance uint8
}

// DefaultParams returns detection parameters tuned for a coin or printed
// square photographed next to the drape tester. Radius bounds are
// placeholders until WithImageSize derives them from the capture.
func DefaultParams() Params {
	return Params{
		HoughDP:     1.2,
		HoughParam1: 100,
		HoughParam2: 40,

		MinRadiusPx: 10,
		MaxRadiusPx: 100,
		MinDistPx:   20,

		SeedSlackFrac: 0.9,
		SeedSlackPx:   12,

		FallbackMinAreaFrac:    0.0001, // 0.01% of image area
		FallbackMaxAreaFrac:    0.05,   // 5% of image area
		FallbackCircularityMin: 0.6,

		SquareTolerance: 10,
	}
}

// WithImageSize returns a copy of params with the radius band derived from
// the capture dimensions: the coin is expected between 1% and 15% of the
// image diagonal, with a 10px floor for tiny captures.
func (p Params) WithImageSize(width, height int) Params {
	diag := math.Hypot(float64(width), float64(height))

	minR := int(diag * 0.01)
	if minR < 10 {
		minR = 10
	}
	p.MinRadiusPx = minR
	p.MaxRadiusPx = int(diag * 0.15)
	if p.MaxRadiusPx <= p.MinRadiusPx {
		p.MaxRadiusPx = p.MinRadiusPx * 2
	}
	p.MinDistPx = float64(2 * p.MinRadiusPx)
	return p
}

// WithHough returns a copy of params with custom Hough tuning.
func (p Params) WithHough(dp, param1, param2 float64) Params {
	p.HoughDP = dp
	p.HoughParam1 = param1
	p.HoughParam2 = param2
	return p
}
