package overlay

import (
	"testing"

	"drape-meter/internal/segment"
	"drape-meter/pkg/geometry"
)

func TestCategoryColorRamp(t *testing.T) {
	stiff := CategoryColor(0)
	excellent := CategoryColor(100)

	// 0% is red-dominant, 100% is green-dominant.
	if stiff.R <= stiff.G {
		t.Errorf("0%% color = %+v, want red-dominant", stiff)
	}
	if excellent.G <= excellent.R {
		t.Errorf("100%% color = %+v, want green-dominant", excellent)
	}

	mid := CategoryColor(50)
	if mid.R == 0 || mid.G == 0 {
		t.Errorf("50%% color = %+v, want a mix of red and green", mid)
	}
}

func squareContour(x, y, side float64) []geometry.Point2D {
	return []geometry.Point2D{
		{X: x, Y: y}, {X: x + side, Y: y},
		{X: x + side, Y: y + side}, {X: x, Y: y + side},
	}
}

func TestLabelAnchorAboveSilhouette(t *testing.T) {
	seg := &segment.Result{Contour: squareContour(200, 300, 200)}
	p := labelAnchor(seg, 700)

	// Centered on the contour centroid, sitting above its bounding box.
	if p.X != 300-120 {
		t.Errorf("anchor X = %d, want %d", p.X, 300-120)
	}
	if p.Y != 300-12 {
		t.Errorf("anchor Y = %d, want %d", p.Y, 300-12)
	}
}

func TestLabelAnchorClampsToFrame(t *testing.T) {
	// Silhouette hugging the top-left corner: the label must stay in frame.
	seg := &segment.Result{Contour: squareContour(0, 0, 40)}
	p := labelAnchor(seg, 700)
	if p.X < 10 || p.Y < 30 {
		t.Errorf("anchor = %+v, want clamped inside the frame", p)
	}

	if p := labelAnchor(nil, 700); p.X != 10 || p.Y != 30 {
		t.Errorf("anchor without contour = %+v, want (10,30)", p)
	}
}

func TestLabelAnchorClampsRightEdge(t *testing.T) {
	seg := &segment.Result{Contour: squareContour(600, 300, 90)}
	p := labelAnchor(seg, 700)
	if p.X > 700-240 {
		t.Errorf("anchor X = %d, want <= %d so the label fits", p.X, 700-240)
	}
}
