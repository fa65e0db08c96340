// Command drapetest runs the full measurement pipeline on a capture with
// verbose stage output.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"drape-meter/internal/history"
	"drape-meter/internal/imgutil"
	"drape-meter/internal/session"
	"drape-meter/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to capture (PNG, JPEG, TIFF, or BMP)")
	seedX := flag.Int("seed-x", -1, "Reference seed X in image-pixel coordinates")
	seedY := flag.Int("seed-y", -1, "Reference seed Y in image-pixel coordinates")
	refKind := flag.String("ref", "coin", "Reference kind: coin or square")
	refDiam := flag.Float64("ref-diameter", 2.5, "Coin diameter in cm")
	diskDiam := flag.Float64("disk", 18, "Support disk diameter in cm")
	fabricDiam := flag.Float64("fabric", 30, "Fabric sample diameter in cm")
	squareSide := flag.Float64("square-side", 5.0, "Printed square side in cm")
	flag.Parse()

	if *imagePath == "" || *seedX < 0 || *seedY < 0 {
		fmt.Println("Usage: drapetest -image <path> -seed-x <px> -seed-y <px> [-disk 18] [-fabric 30]")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	img, format, err := imgutil.LoadImage(*imagePath, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	bounds := img.Bounds()
	fmt.Printf("Loaded %s capture: %dx%d pixels\n", format, bounds.Dx(), bounds.Dy())

	kind := session.RefCoin
	if *refKind == "square" {
		kind = session.RefSquare
	}

	sess := session.New(session.Config{
		ReferenceDiameterCm: *refDiam,
		DiskDiameterCm:      *diskDiam,
		FabricDiameterCm:    *fabricDiam,
		SquareSideCm:        *squareSide,
	}, history.New(0), logger)
	defer sess.Close()

	if err := sess.SetImage(img); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load capture: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("State: %s\n", sess.State())

	m, err := sess.Measure(geometry.PointInt{X: *seedX, Y: *seedY}, kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Measurement failed (state %s): %v\n", sess.State(), err)
		os.Exit(1)
	}

	seg := sess.LastSegmentation()
	scale := sess.ScaleFactor()
	fmt.Printf("State: %s\n", sess.State())
	fmt.Printf("Scale factor:       %.2f px/cm\n", scale)
	fmt.Printf("Strategy:           %s\n", seg.Strategy)
	fmt.Printf("Shadow area:        %.0f px² = %.2f cm²\n", seg.TotalShadowPx, seg.TotalShadowCm2)
	fmt.Printf("Shadow perimeter:   %.1f cm\n", geometry.PolygonPerimeter(seg.Contour)/scale)
	fmt.Printf("Fabric-only area:   %.0f px² = %.2f cm²\n", seg.FabricOnlyPx, seg.FabricOnlyCm2)
	if seg.Disk != nil {
		fmt.Printf("Disk:               center (%.1f, %.1f), radius %.1f px, area %.2f cm²\n",
			seg.Disk.Center.X, seg.Disk.Center.Y, seg.Disk.Radius, seg.Disk.Area()/(scale*scale))
	} else {
		fmt.Printf("Disk:               not detected (degraded mode)\n")
	}
	fmt.Printf("Intensity:          mean %.1f, stddev %.1f\n", seg.MeanIntensity, seg.StdIntensity)
	fmt.Printf("Drape coefficient:  %.1f%% (%s)\n", m.CoefficientPct, m.Category)
}
