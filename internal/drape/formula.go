// Package drape implements the drape-coefficient formulas and category
// classification used by the measurement pipeline.
//
// All functions are pure and total: they never fail on well-formed numeric
// input. Degenerate geometry collapses to zero rather than erroring, so
// invalid configuration must be rejected at the caller boundary before the
// coefficient is trusted.
package drape

import "math"

// CircleArea returns the area in cm² of a circle with the given diameter in cm.
func CircleArea(diameterCm float64) float64 {
	r := diameterCm / 2
	return math.Pi * r * r
}

// Coefficient computes the drape coefficient percentage from the measured
// total shadow area and the known disk and fabric diameters.
//
// The formula follows the Cusick drape test: the input is the total projected
// shadow area including the disk footprint.
//
//	coefficient = (Af - As) / (totalShadowArea - As) × 100
//
// where As and Af are the disk and fabric areas. Degenerate geometry
// (non-positive shadow area, shadow not exceeding the disk, or fabric not
// exceeding the disk) yields 0. Noisy segmentation can push the raw ratio
// outside the physically meaningful range, so the result is clamped to
// [0, 100].
func Coefficient(totalShadowAreaCm2, diskDiameterCm, fabricDiameterCm float64) float64 {
	as := CircleArea(diskDiameterCm)
	af := CircleArea(fabricDiameterCm)

	numerator := af - as
	denominator := totalShadowAreaCm2 - as

	if totalShadowAreaCm2 <= 0 || denominator <= 0 || numerator <= 0 {
		return 0
	}

	return clamp(numerator/denominator*100, 0, 100)
}

// PixelAreaToCm2 converts a pixel area to cm² using a pixels-per-centimeter
// scale factor.
func PixelAreaToCm2(pixelArea, scaleFactor float64) float64 {
	return pixelArea / (scaleFactor * scaleFactor)
}

// Cm2ToPixelArea is the inverse of PixelAreaToCm2.
func Cm2ToPixelArea(areaCm2, scaleFactor float64) float64 {
	return areaCm2 * scaleFactor * scaleFactor
}

// Circularity returns the shape-quality heuristic 4π·area/perimeter²,
// equal to 1 for a perfect circle and lower for irregular shapes.
func Circularity(area, perimeter float64) float64 {
	if perimeter == 0 {
		return 0
	}
	return 4 * math.Pi * area / (perimeter * perimeter)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
