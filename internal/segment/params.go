package segment

// Params holds tuning for silhouette segmentation.
type Params struct {
	// Edge-based primary strategy
	BlurKernel  int
	CannyLow    float32
	CannyHigh   float32
	DilateSize  int
	// MinCircularity is deliberately low: the draped silhouette is an
	// irregular lobed shape, not a clean circle.
	MinCircularity float64

	// Expected-area band relative to the configured diameters.
	MinAreaFactor float64 // × disk area
	MaxAreaFactor float64 // × fabric area

	// Intensity-band fallback strategy
	BandLowFrac    float64 // of the grayscale range above minimum
	BandHighFrac   float64
	MinRawAreaPx   float64

	// Disk search: accepted radius band around the expected disk radius.
	DiskRadiusSlack float64
	DiskHoughDP     float64
	DiskHoughParam1 float64
	DiskHoughParam2 float64
}

// DefaultParams returns segmentation parameters tuned for overhead captures
// of a draped sample on a lit table.
func DefaultParams() Params {
	return Params{
		BlurKernel:     5,
		CannyLow:       50,
		CannyHigh:      150,
		DilateSize:     3,
		MinCircularity: 0.3,

		MinAreaFactor: 1.2,  // shadow must be meaningfully larger than the disk
		MaxAreaFactor: 0.95, // shadow cannot exceed the original fabric extent

		BandLowFrac:  0.25,
		BandHighFrac: 0.65,
		MinRawAreaPx: 1000,

		DiskRadiusSlack: 0.25,
		DiskHoughDP:     1.2,
		DiskHoughParam1: 100,
		DiskHoughParam2: 40,
	}
}
