// Package segment locates the draped-fabric silhouette in a calibrated
// capture and measures its area.
//
// Two strategies run in order: an edge-based contour search, then an
// intensity-banding fallback for low-contrast captures. When the support
// disk can be located inside the silhouette its footprint is subtracted to
// produce the fabric-only area; otherwise the result is flagged degraded.
package segment

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"drape-meter/internal/drape"
	"drape-meter/pkg/geometry"
)

// ErrDrapeNotDetected means neither segmentation strategy found a contour
// inside the expected area band. The operator should check the configured
// diameters or re-capture with better contrast.
var ErrDrapeNotDetected = errors.New("drape silhouette not detected")

// Strategy identifies which segmentation strategy produced a result.
type Strategy int

const (
	// StrategyEdge is the primary Canny/contour strategy.
	StrategyEdge Strategy = iota
	// StrategyIntensityBand is the mid-intensity fallback.
	StrategyIntensityBand
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyEdge:
		return "edge"
	case StrategyIntensityBand:
		return "intensity-band"
	default:
		return "unknown"
	}
}

// Result holds the measured silhouette areas for one capture.
type Result struct {
	TotalShadowPx float64
	FabricOnlyPx  float64

	TotalShadowCm2 float64
	FabricOnlyCm2  float64

	// Disk is the detected support-disk circle, nil when the disk search
	// failed and the result is Degraded.
	Disk     *geometry.Circle
	Degraded bool

	// Contour is the accepted silhouette outline, for overlay drawing.
	Contour  []geometry.Point2D
	Strategy Strategy

	// Grayscale statistics of the capture, for quality reporting.
	MeanIntensity float64
	StdIntensity  float64
}

// Detect segments the draped-fabric silhouette from a BGR Mat and converts
// its pixel areas to cm² via the scale factor.
func Detect(src gocv.Mat, scaleFactor, diskDiameterCm, fabricDiameterCm float64, params Params, logger *slog.Logger) (Result, error) {
	if src.Empty() {
		return Result{}, fmt.Errorf("empty image")
	}
	if scaleFactor <= 0 {
		return Result{}, fmt.Errorf("invalid scale factor %g", scaleFactor)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	// Expected pixel-area band for the shadow contour. The silhouette must
	// exceed the disk footprint and cannot exceed the undraped fabric.
	diskRadiusPx := (diskDiameterCm / 2) * scaleFactor
	fabricRadiusPx := (fabricDiameterCm / 2) * scaleFactor
	diskAreaPx := math.Pi * diskRadiusPx * diskRadiusPx
	fabricAreaPx := math.Pi * fabricRadiusPx * fabricRadiusPx
	minAreaPx := params.MinAreaFactor * diskAreaPx
	maxAreaPx := params.MaxAreaFactor * fabricAreaPx

	res := Result{Strategy: StrategyEdge}
	res.MeanIntensity, res.StdIntensity = intensityStats(gray)

	mask, outline, areaPx, ok := detectByEdges(gray, minAreaPx, maxAreaPx, params)
	if !ok {
		mask.Close()
		logger.Debug("edge strategy found no silhouette, trying intensity band",
			"min_area_px", minAreaPx, "max_area_px", maxAreaPx)
		mask, outline, areaPx, ok = detectByIntensityBand(gray, minAreaPx, maxAreaPx, params)
		res.Strategy = StrategyIntensityBand
	}
	if !ok {
		return Result{}, fmt.Errorf("%w: no contour in [%.0f, %.0f] px²",
			ErrDrapeNotDetected, minAreaPx, maxAreaPx)
	}
	defer mask.Close()

	res.TotalShadowPx = areaPx
	res.Contour = outline

	// Disk subtraction. A miss is non-fatal: the fabric-only figure then
	// includes the disk and the result is flagged degraded.
	disk, found := detectDisk(gray, diskRadiusPx, params)
	if found {
		overlap := diskOverlapPx(mask, disk)
		res.Disk = &disk
		res.FabricOnlyPx = res.TotalShadowPx - overlap
		if res.FabricOnlyPx < 0 {
			res.FabricOnlyPx = 0
		}
	} else {
		res.Degraded = true
		res.FabricOnlyPx = res.TotalShadowPx
		logger.Warn("support disk not detected, fabric-only area includes disk",
			"expected_radius_px", diskRadiusPx)
	}

	res.TotalShadowCm2 = drape.PixelAreaToCm2(res.TotalShadowPx, scaleFactor)
	res.FabricOnlyCm2 = drape.PixelAreaToCm2(res.FabricOnlyPx, scaleFactor)

	return res, nil
}

// detectByEdges runs the primary strategy: blur, Canny, dilate to close
// small gaps, then pick the largest sufficiently round contour inside the
// area band. Returns a filled silhouette mask owned by the caller.
func detectByEdges(gray gocv.Mat, minAreaPx, maxAreaPx float64, params Params) (gocv.Mat, []geometry.Point2D, float64, bool) {
	blurred := gocv.NewMat()
	defer blurred.Close()
	k := params.BlurKernel
	gocv.GaussianBlur(gray, &blurred, image.Point{X: k, Y: k}, 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, params.CannyLow, params.CannyHigh)

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: params.DilateSize, Y: params.DilateSize})
	defer kernel.Close()
	gocv.Dilate(edges, &edges, kernel)

	// Full hierarchy: the silhouette may sit inside a table-edge contour.
	contours := gocv.FindContours(edges, gocv.RetrievalList, gocv.ChainApproxSimple)
	defer contours.Close()

	bestIdx := -1
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area < minAreaPx || area > maxAreaPx {
			continue
		}
		perimeter := gocv.ArcLength(contour, true)
		if drape.Circularity(area, perimeter) <= params.MinCircularity {
			continue
		}
		// Largest accepted area wins; first-found wins ties.
		if area > bestArea {
			bestArea = area
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		return gocv.NewMat(), nil, 0, false
	}

	mask := gocv.Zeros(gray.Rows(), gray.Cols(), gocv.MatTypeCV8UC1)
	gocv.DrawContours(&mask, contours, bestIdx, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	return mask, contourPoints(contours.At(bestIdx)), bestArea, true
}

// detectByIntensityBand runs the fallback strategy. The shadow region is
// assumed visually intermediate between the dark disk and the light fabric,
// so a mid-band of the observed intensity range is thresholded out, cleaned
// morphologically, and the largest convex hull inside the area band wins.
func detectByIntensityBand(gray gocv.Mat, minAreaPx, maxAreaPx float64, params Params) (gocv.Mat, []geometry.Point2D, float64, bool) {
	minVal, maxVal, _, _ := gocv.MinMaxLoc(gray)
	span := float64(maxVal - minVal)
	lo := float32(float64(minVal) + params.BandLowFrac*span)
	hi := float32(float64(minVal) + params.BandHighFrac*span)

	// Two thresholds combined with a logical AND select the mid band.
	above := gocv.NewMat()
	defer above.Close()
	gocv.Threshold(gray, &above, lo, 255, gocv.ThresholdBinary)

	below := gocv.NewMat()
	defer below.Close()
	gocv.Threshold(gray, &below, hi, 255, gocv.ThresholdBinaryInv)

	band := gocv.NewMat()
	defer band.Close()
	gocv.BitwiseAnd(above, below, &band)

	closeKernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: 7, Y: 7})
	defer closeKernel.Close()
	gocv.MorphologyEx(band, &band, gocv.MorphClose, closeKernel)

	openKernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: 5, Y: 5})
	defer openKernel.Close()
	gocv.MorphologyEx(band, &band, gocv.MorphOpen, openKernel)

	contours := gocv.FindContours(band, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var bestHull []geometry.Point2D
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		if gocv.ContourArea(contour) <= params.MinRawAreaPx {
			continue
		}

		hull := geometry.ConvexHull(contourPoints(contour))
		hullArea := geometry.PolygonArea(hull)
		if hullArea < minAreaPx || hullArea > maxAreaPx {
			continue
		}
		if hullArea > bestArea {
			bestArea = hullArea
			bestHull = hull
		}
	}

	if bestHull == nil {
		return gocv.NewMat(), nil, 0, false
	}

	mask := gocv.Zeros(gray.Rows(), gray.Cols(), gocv.MatTypeCV8UC1)
	fillPolygon(&mask, bestHull)

	return mask, bestHull, bestArea, true
}

// diskOverlapPx counts silhouette-mask pixels covered by the disk circle.
func diskOverlapPx(mask gocv.Mat, disk geometry.Circle) float64 {
	diskMask := gocv.Zeros(mask.Rows(), mask.Cols(), gocv.MatTypeCV8UC1)
	defer diskMask.Close()
	gocv.Circle(&diskMask,
		image.Point{X: int(disk.Center.X + 0.5), Y: int(disk.Center.Y + 0.5)},
		int(disk.Radius+0.5),
		color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	overlap := gocv.NewMat()
	defer overlap.Close()
	gocv.BitwiseAnd(mask, diskMask, &overlap)

	return float64(gocv.CountNonZero(overlap))
}

// contourPoints converts a gocv contour to geometry points.
func contourPoints(contour gocv.PointVector) []geometry.Point2D {
	pts := make([]geometry.Point2D, contour.Size())
	for i := 0; i < contour.Size(); i++ {
		p := contour.At(i)
		pts[i] = geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
	}
	return pts
}

// fillPolygon rasterizes a filled polygon into a single-channel mask.
func fillPolygon(mask *gocv.Mat, polygon []geometry.Point2D) {
	pts := make([]image.Point, len(polygon))
	for i, p := range polygon {
		pts[i] = image.Point{X: int(p.X + 0.5), Y: int(p.Y + 0.5)}
	}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()
	gocv.FillPoly(mask, pv, color.RGBA{R: 255, G: 255, B: 255, A: 255})
}

// intensityStats computes the mean and standard deviation of the grayscale
// histogram, weighted by bin counts.
func intensityStats(gray gocv.Mat) (mean, std float64) {
	var hist [256]float64
	rows, cols := gray.Rows(), gray.Cols()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			hist[gray.GetUCharAt(y, x)]++
		}
	}

	levels := make([]float64, 256)
	for i := range levels {
		levels[i] = float64(i)
	}
	mean = stat.Mean(levels, hist[:])
	std = math.Sqrt(stat.Variance(levels, hist[:]))
	return mean, std
}
