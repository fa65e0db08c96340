package geometry

import (
	"math"
	"testing"
)

func TestCircleArea(t *testing.T) {
	c := Circle{Center: Point2D{X: 10, Y: 10}, Radius: 50}
	want := math.Pi * 2500
	if math.Abs(c.Area()-want) > 1e-9 {
		t.Errorf("Area() = %g, want %g", c.Area(), want)
	}
}

func TestCircleContains(t *testing.T) {
	c := Circle{Center: Point2D{X: 100, Y: 100}, Radius: 20}
	if !c.Contains(Point2D{X: 110, Y: 110}) {
		t.Error("point inside circle not contained")
	}
	if !c.Contains(Point2D{X: 120, Y: 100}) {
		t.Error("point on circle boundary not contained")
	}
	if c.Contains(Point2D{X: 130, Y: 130}) {
		t.Error("point outside circle contained")
	}
}

func TestPointDistance(t *testing.T) {
	a := Point2D{X: 0, Y: 0}
	b := Point2D{X: 3, Y: 4}
	if d := a.Distance(b); d != 5 {
		t.Errorf("Distance = %g, want 5", d)
	}
}

func TestPolygonAreaSquare(t *testing.T) {
	sq := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if got := PolygonArea(sq); got != 100 {
		t.Errorf("PolygonArea(square) = %g, want 100", got)
	}
	// Vertex order must not matter.
	rev := []Point2D{{0, 10}, {10, 10}, {10, 0}, {0, 0}}
	if got := PolygonArea(rev); got != 100 {
		t.Errorf("PolygonArea(reversed square) = %g, want 100", got)
	}
}

func TestPolygonAreaDegenerate(t *testing.T) {
	if got := PolygonArea([]Point2D{{0, 0}, {1, 1}}); got != 0 {
		t.Errorf("PolygonArea(2 points) = %g, want 0", got)
	}
}

func TestPolygonPerimeter(t *testing.T) {
	sq := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if got := PolygonPerimeter(sq); got != 40 {
		t.Errorf("PolygonPerimeter(square) = %g, want 40", got)
	}
}

func TestConvexHullSquareWithInterior(t *testing.T) {
	pts := []Point2D{
		{0, 0}, {10, 0}, {10, 10}, {0, 10},
		{5, 5}, {3, 7}, {6, 2}, // interior points must not appear on the hull
	}
	hull := ConvexHull(pts)
	if len(hull) != 4 {
		t.Fatalf("hull has %d vertices, want 4: %v", len(hull), hull)
	}
	if got := PolygonArea(hull); got != 100 {
		t.Errorf("hull area = %g, want 100", got)
	}
}

func TestConvexHullCircleApproximation(t *testing.T) {
	pts := make([]Point2D, 64)
	for i := range pts {
		angle := float64(i) * 2 * math.Pi / 64
		pts[i] = Point2D{X: 100 + 50*math.Cos(angle), Y: 100 + 50*math.Sin(angle)}
	}
	hull := ConvexHull(pts)
	area := PolygonArea(hull)
	want := math.Pi * 2500
	// A 64-gon underestimates the circle by < 1%.
	if area > want || area < want*0.99 {
		t.Errorf("hull area of 64-gon = %g, want just below %g", area, want)
	}
}

func TestBoundingBox(t *testing.T) {
	pts := []Point2D{{3, 7}, {-2, 4}, {9, -1}}
	r := BoundingBox(pts)
	if r.X != -2 || r.Y != -1 || r.Width != 11 || r.Height != 8 {
		t.Errorf("BoundingBox = %+v", r)
	}
}

func TestCentroid(t *testing.T) {
	pts := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	c := Centroid(pts)
	if c.X != 5 || c.Y != 5 {
		t.Errorf("Centroid = %+v, want (5,5)", c)
	}
}
