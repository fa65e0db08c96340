package segment

import (
	"image"
	"math"

	"gocv.io/x/gocv"

	"drape-meter/pkg/geometry"
)

// detectDisk searches for the support disk with a radius-constrained Hough
// pass. Candidates are scored by distance from the image center plus twice
// the radius error against the expected disk radius; the lowest score wins.
func detectDisk(gray gocv.Mat, expectedRadiusPx float64, params Params) (geometry.Circle, bool) {
	minR := int(expectedRadiusPx * (1 - params.DiskRadiusSlack))
	maxR := int(expectedRadiusPx * (1 + params.DiskRadiusSlack))
	if minR < 1 || maxR <= minR {
		return geometry.Circle{}, false
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: 9, Y: 9}, 2, 2, gocv.BorderDefault)

	circles := gocv.NewMat()
	defer circles.Close()
	gocv.HoughCirclesWithParams(blurred, &circles, gocv.HoughGradient,
		params.DiskHoughDP, expectedRadiusPx, // disks cannot overlap: one expected radius apart
		params.DiskHoughParam1, params.DiskHoughParam2,
		minR, maxR)

	if circles.Empty() || circles.Cols() == 0 {
		return geometry.Circle{}, false
	}

	imageCenter := geometry.Point2D{
		X: float64(gray.Cols()) / 2,
		Y: float64(gray.Rows()) / 2,
	}

	best := geometry.Circle{}
	bestScore := math.MaxFloat64
	for i := 0; i < circles.Cols(); i++ {
		c := geometry.Circle{
			Center: geometry.Point2D{
				X: float64(circles.GetFloatAt(0, i*3)),
				Y: float64(circles.GetFloatAt(0, i*3+1)),
			},
			Radius: float64(circles.GetFloatAt(0, i*3+2)),
		}

		// The disk sits near the frame center in a normal capture; prefer
		// central candidates with a radius close to expectation.
		score := c.Center.Distance(imageCenter) + 2*math.Abs(c.Radius-expectedRadiusPx)
		if score < bestScore {
			bestScore = score
			best = c
		}
	}

	return best, true
}
