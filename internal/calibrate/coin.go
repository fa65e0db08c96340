package calibrate

import (
	"fmt"
	"image"
	"log/slog"
	"math"

	"gocv.io/x/gocv"

	"drape-meter/internal/drape"
	"drape-meter/pkg/geometry"
)

// DetectCoin locates the reference coin near the seed click in a BGR Mat.
// The primary strategy is Hough circle voting over edge gradients; when no
// Hough candidate survives the seed-proximity rule, a contour-based fallback
// binarizes the image and fits minimum enclosing circles to round blobs.
func DetectCoin(src gocv.Mat, seed geometry.PointInt, params Params, logger *slog.Logger) (geometry.Circle, error) {
	if src.Empty() {
		return geometry.Circle{}, fmt.Errorf("empty image")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	candidates := houghCandidates(gray, params)
	if c, ok := selectNearSeed(candidates, seed.ToFloat(), params); ok {
		return c, nil
	}

	if len(candidates) > 0 {
		logger.Debug("hough found circles but none near seed",
			"candidates", len(candidates), "seed_x", seed.X, "seed_y", seed.Y)
	}

	// Fallback: threshold + contour fit. Handles matte or worn coins whose
	// edge gradients are too weak for the Hough accumulator.
	fallback := contourCandidates(gray, params)
	if c, ok := selectNearSeed(fallback, seed.ToFloat(), params); ok {
		logger.Debug("coin located by contour fallback",
			"cx", c.Center.X, "cy", c.Center.Y, "radius", c.Radius)
		return c, nil
	}

	if len(candidates) == 0 && len(fallback) == 0 {
		return geometry.Circle{}, fmt.Errorf("%w: no circular candidates detected", ErrReferenceNotFound)
	}
	return geometry.Circle{}, fmt.Errorf("%w: %d candidates, none near seed (%d,%d)",
		ErrReferenceNotFound, len(candidates)+len(fallback), seed.X, seed.Y)
}

// houghCandidates runs Hough circle detection over the blurred grayscale
// image, restricted to the radius band in params.
func houghCandidates(gray gocv.Mat, params Params) []geometry.Circle {
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: 9, Y: 9}, 2, 2, gocv.BorderDefault)

	circles := gocv.NewMat()
	defer circles.Close()

	gocv.HoughCirclesWithParams(blurred, &circles, gocv.HoughGradient,
		params.HoughDP, params.MinDistPx,
		params.HoughParam1, params.HoughParam2,
		params.MinRadiusPx, params.MaxRadiusPx)

	if circles.Empty() || circles.Cols() == 0 {
		return nil
	}

	out := make([]geometry.Circle, 0, circles.Cols())
	for i := 0; i < circles.Cols(); i++ {
		out = append(out, geometry.Circle{
			Center: geometry.Point2D{
				X: float64(circles.GetFloatAt(0, i*3)),
				Y: float64(circles.GetFloatAt(0, i*3+1)),
			},
			Radius: float64(circles.GetFloatAt(0, i*3+2)),
		})
	}
	return out
}

// contourCandidates binarizes with an Otsu threshold, closes small gaps and
// fits a minimum enclosing circle to every sufficiently round contour in the
// configured area band.
func contourCandidates(gray gocv.Mat, params Params) []geometry.Circle {
	// Inverted polarity: the reference sits dark on a lit table, and
	// contour extraction needs it as foreground.
	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: 5, Y: 5})
	defer kernel.Close()
	gocv.MorphologyEx(binary, &binary, gocv.MorphClose, kernel)

	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	imgArea := float64(gray.Rows() * gray.Cols())
	minArea := params.FallbackMinAreaFrac * imgArea
	maxArea := params.FallbackMaxAreaFrac * imgArea

	var out []geometry.Circle
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)

		area := gocv.ContourArea(contour)
		if area < minArea || area > maxArea {
			continue
		}

		perimeter := gocv.ArcLength(contour, true)
		if drape.Circularity(area, perimeter) <= params.FallbackCircularityMin {
			continue
		}

		x, y, r := gocv.MinEnclosingCircle(contour)
		out = append(out, geometry.Circle{
			Center: geometry.Point2D{X: float64(x), Y: float64(y)},
			Radius: float64(r),
		})
	}
	return out
}

// selectNearSeed picks the candidate whose center is closest to the seed,
// among those where the seed falls inside the circle and within
// max(SeedSlackFrac×radius, SeedSlackPx) of the center.
func selectNearSeed(candidates []geometry.Circle, seed geometry.Point2D, params Params) (geometry.Circle, bool) {
	best := geometry.Circle{}
	bestDist := math.MaxFloat64
	found := false

	for _, c := range candidates {
		if !c.Contains(seed) {
			continue
		}
		dist := c.Center.Distance(seed)
		slack := math.Max(params.SeedSlackFrac*c.Radius, params.SeedSlackPx)
		if dist > slack {
			continue
		}
		if dist < bestDist {
			best = c
			bestDist = dist
			found = true
		}
	}
	return best, found
}
