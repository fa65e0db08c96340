package segment

import (
	"image"
	"image/color"
	"log/slog"
	"math"
	"testing"

	"gocv.io/x/gocv"

	"drape-meter/internal/imgutil"
)

var testLogger = slog.New(slog.DiscardHandler)

func matToGray(t *testing.T, mat gocv.Mat) gocv.Mat {
	t.Helper()
	gray := gocv.NewMat()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)
	return gray
}

func grayColor(v uint8) color.RGBA {
	return color.RGBA{R: v, G: v, B: v, A: 255}
}

func fillCircle(img *image.RGBA, cx, cy, r int, c color.Color) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.Set(x, y, c)
			}
		}
	}
}

func background(w, h int, v uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	c := grayColor(v)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// drapeScene draws an overhead capture: light table, mid-gray draped shadow,
// dark support disk. Radii in pixels.
func drapeScene(w, h, shadowR, diskR int) *image.RGBA {
	img := background(w, h, 230)
	cx, cy := w/2, h/2
	fillCircle(img, cx, cy, shadowR, grayColor(120))
	if diskR > 0 {
		fillCircle(img, cx, cy, diskR, grayColor(40))
	}
	return img
}

// Calibration fixture: 20 px/cm, 18cm disk (180px radius), 30cm fabric.
const (
	testScale  = 20.0
	testDiskCm = 18.0
	testFabCm  = 30.0
)

func TestDetectEdgeStrategy(t *testing.T) {
	img := drapeScene(700, 700, 220, 180)
	mat, err := imgutil.ToMat(img)
	if err != nil {
		t.Fatalf("ToMat: %v", err)
	}
	defer mat.Close()

	res, err := Detect(mat, testScale, testDiskCm, testFabCm, DefaultParams(), testLogger)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if res.Strategy != StrategyEdge {
		t.Errorf("strategy = %v, want edge", res.Strategy)
	}

	wantTotal := math.Pi * 220 * 220
	if math.Abs(res.TotalShadowPx-wantTotal) > 0.05*wantTotal {
		t.Errorf("total shadow = %.0f px², want %.0f ± 5%%", res.TotalShadowPx, wantTotal)
	}

	if res.Degraded {
		t.Fatal("disk should have been detected")
	}
	if res.Disk == nil {
		t.Fatal("Disk is nil")
	}
	if math.Abs(res.Disk.Radius-180) > 180*0.1 {
		t.Errorf("disk radius = %.1f, want 180 ± 10%%", res.Disk.Radius)
	}

	wantFabric := res.TotalShadowPx - math.Pi*180*180
	if math.Abs(res.FabricOnlyPx-wantFabric) > 0.05*res.TotalShadowPx {
		t.Errorf("fabric-only = %.0f px², want about %.0f", res.FabricOnlyPx, wantFabric)
	}

	// cm² conversion consistency.
	if math.Abs(res.TotalShadowCm2-res.TotalShadowPx/(testScale*testScale)) > 1e-9 {
		t.Errorf("cm² conversion mismatch: %g vs %g", res.TotalShadowCm2, res.TotalShadowPx/(testScale*testScale))
	}
}

func TestDetectDegradedWithoutDisk(t *testing.T) {
	// Shadow only; the configured 10cm disk (100px radius) is absent, so the
	// constrained disk search must come up empty.
	img := drapeScene(700, 700, 220, 0)
	mat, err := imgutil.ToMat(img)
	if err != nil {
		t.Fatalf("ToMat: %v", err)
	}
	defer mat.Close()

	res, err := Detect(mat, testScale, 10.0, testFabCm, DefaultParams(), testLogger)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if !res.Degraded {
		t.Fatal("expected degraded mode without a disk in frame")
	}
	if res.Disk != nil {
		t.Errorf("Disk = %+v, want nil", res.Disk)
	}
	if res.FabricOnlyPx != res.TotalShadowPx {
		t.Errorf("degraded fabric-only = %.0f, want exactly total %.0f",
			res.FabricOnlyPx, res.TotalShadowPx)
	}
}

func TestDetectNoSilhouette(t *testing.T) {
	img := background(700, 700, 230)
	mat, err := imgutil.ToMat(img)
	if err != nil {
		t.Fatalf("ToMat: %v", err)
	}
	defer mat.Close()

	_, err = Detect(mat, testScale, testDiskCm, testFabCm, DefaultParams(), testLogger)
	if err == nil {
		t.Fatal("expected DrapeNotDetected on a featureless capture")
	}
}

func TestDetectRejectsBadScale(t *testing.T) {
	img := drapeScene(700, 700, 220, 180)
	mat, err := imgutil.ToMat(img)
	if err != nil {
		t.Fatalf("ToMat: %v", err)
	}
	defer mat.Close()

	if _, err := Detect(mat, 0, testDiskCm, testFabCm, DefaultParams(), testLogger); err == nil {
		t.Fatal("expected failure for zero scale factor")
	}
}

func TestIntensityBandFallback(t *testing.T) {
	// Low-contrast scene tuned for the fallback: dark disk, mid shadow,
	// light background. The mid band isolates the shadow annulus; its
	// convex hull recovers the full silhouette.
	img := background(700, 700, 240)
	fillCircle(img, 350, 350, 220, grayColor(128))
	fillCircle(img, 350, 350, 120, grayColor(20))

	mat, err := imgutil.ToMat(img)
	if err != nil {
		t.Fatalf("ToMat: %v", err)
	}
	defer mat.Close()

	gray := matToGray(t, mat)
	defer gray.Close()

	diskRadiusPx := (testDiskCm / 2) * testScale
	fabricRadiusPx := (testFabCm / 2) * testScale
	minArea := 1.2 * math.Pi * diskRadiusPx * diskRadiusPx
	maxArea := 0.95 * math.Pi * fabricRadiusPx * fabricRadiusPx

	mask, hull, area, ok := detectByIntensityBand(gray, minArea, maxArea, DefaultParams())
	if !ok {
		t.Fatal("fallback found no silhouette")
	}
	defer mask.Close()

	wantArea := math.Pi * 220 * 220
	if math.Abs(area-wantArea) > 0.05*wantArea {
		t.Errorf("hull area = %.0f px², want %.0f ± 5%%", area, wantArea)
	}
	if len(hull) < 8 {
		t.Errorf("hull has only %d vertices", len(hull))
	}
}

func TestIntensityStats(t *testing.T) {
	img := background(100, 100, 77)
	mat, err := imgutil.ToMat(img)
	if err != nil {
		t.Fatalf("ToMat: %v", err)
	}
	defer mat.Close()

	gray := matToGray(t, mat)
	defer gray.Close()

	mean, std := intensityStats(gray)
	if math.Abs(mean-77) > 1 {
		t.Errorf("mean = %g, want 77", mean)
	}
	if std > 1 {
		t.Errorf("std = %g, want ~0 for a uniform image", std)
	}
}

func TestStrategyString(t *testing.T) {
	if StrategyEdge.String() != "edge" || StrategyIntensityBand.String() != "intensity-band" {
		t.Error("strategy names changed")
	}
}
