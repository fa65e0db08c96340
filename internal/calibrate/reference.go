// Package calibrate locates a known-size reference object near a user click
// and derives the pixels-per-centimeter scale factor from it.
package calibrate

import (
	"errors"
	"fmt"
	"math"

	"drape-meter/pkg/geometry"
)

var (
	// ErrReferenceNotFound means neither the primary nor the fallback
	// strategy located a reference object near the seed point.
	ErrReferenceNotFound = errors.New("reference object not found near seed")

	// ErrCalibrationInvalid means a reference was found but produced a
	// non-finite or non-positive scale factor.
	ErrCalibrationInvalid = errors.New("calibration produced invalid scale factor")
)

// Reference is the active reference object for a capture. Exactly one is
// active per session; selecting a new one discards the old.
type Reference interface {
	isReference()
}

// Coin is a circular reference of known diameter.
type Coin struct {
	Circle geometry.Circle
}

// Square is a printed square reference of known side length, measured by
// its flood-filled pixel area.
type Square struct {
	PixelArea float64
	SideCm    float64
}

func (Coin) isReference()   {}
func (Square) isReference() {}

// ScaleFactor derives pixels-per-centimeter from the reference object.
// referenceDiameterCm is the physical coin diameter; it is ignored for a
// square reference, which carries its own side length.
func ScaleFactor(ref Reference, referenceDiameterCm float64) (float64, error) {
	var scale float64
	switch r := ref.(type) {
	case Coin:
		if referenceDiameterCm <= 0 {
			return 0, fmt.Errorf("%w: reference diameter %.3fcm", ErrCalibrationInvalid, referenceDiameterCm)
		}
		scale = (2 * r.Circle.Radius) / referenceDiameterCm
	case Square:
		if r.SideCm <= 0 {
			return 0, fmt.Errorf("%w: square side %.3fcm", ErrCalibrationInvalid, r.SideCm)
		}
		scale = math.Sqrt(r.PixelArea / (r.SideCm * r.SideCm))
	default:
		return 0, fmt.Errorf("%w: unknown reference kind %T", ErrCalibrationInvalid, ref)
	}

	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return 0, fmt.Errorf("%w: %g px/cm", ErrCalibrationInvalid, scale)
	}
	return scale, nil
}
