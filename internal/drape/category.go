package drape

// Category classifies a drape coefficient into a qualitative bucket.
type Category int

const (
	// Stiff fabrics barely collapse: coefficient below 30%.
	Stiff Category = iota
	// MediumDrape covers coefficients in [30, 60).
	MediumDrape
	// GoodDrape covers coefficients in [60, 85).
	GoodDrape
	// ExcellentDrape covers coefficients in [85, 100].
	ExcellentDrape
)

// Classify maps a coefficient percentage onto its drape category.
// Boundaries are inclusive-lower/exclusive-upper except the final bucket,
// which includes 100.
func Classify(coefficientPct float64) Category {
	switch {
	case coefficientPct < 30:
		return Stiff
	case coefficientPct < 60:
		return MediumDrape
	case coefficientPct < 85:
		return GoodDrape
	default:
		return ExcellentDrape
	}
}

// String returns the category name.
func (c Category) String() string {
	switch c {
	case Stiff:
		return "stiff"
	case MediumDrape:
		return "medium"
	case GoodDrape:
		return "good"
	case ExcellentDrape:
		return "excellent"
	default:
		return "unknown"
	}
}
