// Package overlay renders measurement annotations onto a capture for
// operator review.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"

	"drape-meter/internal/history"
	"drape-meter/internal/segment"
	"drape-meter/pkg/geometry"
)

// CategoryColor maps a coefficient percentage onto a hue ramp from red
// (stiff, 0%) to green (excellent drape, 100%).
func CategoryColor(coefficientPct float64) color.RGBA {
	hue := 120 * coefficientPct / 100 // 0 = red, 120 = green
	c := colorful.Hsv(hue, 0.9, 0.9)
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Render draws the silhouette outline, disk circle, reference circle and a
// summary label onto a copy of the capture. The caller owns the returned Mat.
func Render(src gocv.Mat, seg *segment.Result, coin *geometry.Circle, m *history.Measurement) gocv.Mat {
	out := src.Clone()

	if seg != nil {
		accent := color.RGBA{R: 255, G: 160, B: 0, A: 255}
		if m != nil {
			accent = CategoryColor(m.CoefficientPct)
		}
		drawPolyline(&out, seg.Contour, accent)

		if seg.Disk != nil {
			drawCircle(&out, *seg.Disk, color.RGBA{R: 0, G: 120, B: 255, A: 255})
		}
	}

	if coin != nil {
		drawCircle(&out, *coin, color.RGBA{R: 255, G: 255, B: 0, A: 255})
	}

	if m != nil {
		label := fmt.Sprintf("%.1f%% (%s) %.1f cm2", m.CoefficientPct, m.Category, m.AreaCm2)
		gocv.PutText(&out, label, labelAnchor(seg, out.Cols()),
			gocv.FontHersheySimplex, 0.8, CategoryColor(m.CoefficientPct), 2)
	}

	return out
}

// labelAnchor places the summary label just above the silhouette, centered
// on it, falling back to the top-left corner when there is no contour.
func labelAnchor(seg *segment.Result, imgWidth int) image.Point {
	if seg == nil || len(seg.Contour) == 0 {
		return image.Point{X: 10, Y: 30}
	}

	box := geometry.BoundingBox(seg.Contour)
	center := geometry.Centroid(seg.Contour)

	x := int(center.X) - 120
	if x < 10 {
		x = 10
	}
	if x > imgWidth-240 {
		x = imgWidth - 240
	}
	y := int(box.Y) - 12
	if y < 30 {
		y = 30
	}
	return image.Point{X: x, Y: y}
}

// Save writes the annotated capture to disk.
func Save(path string, annotated gocv.Mat) error {
	if ok := gocv.IMWrite(path, annotated); !ok {
		return fmt.Errorf("failed to write overlay image %s", path)
	}
	return nil
}

func drawCircle(dst *gocv.Mat, c geometry.Circle, col color.RGBA) {
	gocv.Circle(dst,
		image.Point{X: int(c.Center.X + 0.5), Y: int(c.Center.Y + 0.5)},
		int(c.Radius+0.5), col, 2)
}

func drawPolyline(dst *gocv.Mat, pts []geometry.Point2D, col color.RGBA) {
	if len(pts) < 2 {
		return
	}
	for i := 0; i < len(pts); i++ {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		gocv.Line(dst,
			image.Point{X: int(a.X + 0.5), Y: int(a.Y + 0.5)},
			image.Point{X: int(b.X + 0.5), Y: int(b.Y + 0.5)},
			col, 2)
	}
}
