package session

import (
	"errors"
	"fmt"
)

// ErrConfigurationInvalid means the operator-supplied physical constants
// fail validation. The pipeline refuses to run until they are corrected.
var ErrConfigurationInvalid = errors.New("invalid session configuration")

// Config holds the operator-supplied physical constants for a measurement
// session. All values are centimeters.
type Config struct {
	ReferenceDiameterCm float64
	DiskDiameterCm      float64
	FabricDiameterCm    float64

	// SquareSideCm is the printed square's side length, used only when the
	// operator selects a square reference.
	SquareSideCm float64
}

// Validate checks the constants the coefficient formula depends on.
// It runs before any image analysis is attempted.
func (c Config) Validate() error {
	if c.DiskDiameterCm <= 0 {
		return fmt.Errorf("%w: disk diameter %.3fcm", ErrConfigurationInvalid, c.DiskDiameterCm)
	}
	if c.FabricDiameterCm <= 0 {
		return fmt.Errorf("%w: fabric diameter %.3fcm", ErrConfigurationInvalid, c.FabricDiameterCm)
	}
	if c.FabricDiameterCm <= c.DiskDiameterCm {
		return fmt.Errorf("%w: fabric diameter %.3fcm must exceed disk diameter %.3fcm",
			ErrConfigurationInvalid, c.FabricDiameterCm, c.DiskDiameterCm)
	}
	return nil
}
