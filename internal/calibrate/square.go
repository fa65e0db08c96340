package calibrate

import (
	"fmt"
	"image"

	"drape-meter/internal/imgutil"
	"drape-meter/pkg/geometry"
)

// DetectSquare measures the printed square reference by flood-filling from
// the seed point over the grayscale image, keeping pixels within
// params.SquareTolerance intensity levels of the seed. The square's interior
// is locally uniform, so a fill from a known interior point is more robust
// than contour search when the outer edge contrast varies.
//
// Returns the filled pixel area.
func DetectSquare(img image.Image, seed geometry.PointInt, params Params) (float64, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if seed.X < bounds.Min.X || seed.X >= bounds.Max.X ||
		seed.Y < bounds.Min.Y || seed.Y >= bounds.Max.Y {
		return 0, fmt.Errorf("%w: seed (%d,%d) outside image bounds",
			ErrReferenceNotFound, seed.X, seed.Y)
	}

	seedVal := int(imgutil.GrayAt(img, seed.X, seed.Y))
	tol := int(params.SquareTolerance)

	match := func(x, y int) bool {
		d := int(imgutil.GrayAt(img, x, y)) - seedVal
		return d >= -tol && d <= tol
	}

	visited := make([]bool, w*h)
	stack := []image.Point{{X: seed.X, Y: seed.Y}}
	pixelCount := 0

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		x, y := p.X, p.Y
		if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}

		idx := (y-bounds.Min.Y)*w + (x - bounds.Min.X)
		if visited[idx] {
			continue
		}
		if !match(x, y) {
			continue
		}

		visited[idx] = true
		pixelCount++

		// 4-connected neighbors
		stack = append(stack,
			image.Point{X: x + 1, Y: y},
			image.Point{X: x - 1, Y: y},
			image.Point{X: x, Y: y + 1},
			image.Point{X: x, Y: y - 1},
		)
	}

	if pixelCount <= 0 {
		return 0, fmt.Errorf("%w: no pixels matched at seed point", ErrReferenceNotFound)
	}

	return float64(pixelCount), nil
}
