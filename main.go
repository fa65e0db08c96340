// Command drape-meter measures the drape coefficient of a fabric sample
// from an overhead capture: one click on the size reference calibrates the
// pixel scale, segmentation finds the draped silhouette, and the Cusick
// formula turns its area into a coefficient percentage.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"

	"drape-meter/internal/calibrate"
	"drape-meter/internal/config"
	"drape-meter/internal/export"
	"drape-meter/internal/history"
	"drape-meter/internal/imgutil"
	"drape-meter/internal/overlay"
	"drape-meter/internal/session"
	"drape-meter/internal/version"
	"drape-meter/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to capture (PNG, JPEG, TIFF, or BMP)")
	seedX := flag.Int("seed-x", -1, "Reference seed X in image-pixel coordinates")
	seedY := flag.Int("seed-y", -1, "Reference seed Y in image-pixel coordinates")
	refKind := flag.String("ref", "coin", "Reference kind: coin or square")
	refDiam := flag.Float64("ref-diameter", 0, "Coin diameter in cm (overrides config)")
	diskDiam := flag.Float64("disk", 0, "Support disk diameter in cm (overrides config)")
	fabricDiam := flag.Float64("fabric", 0, "Fabric sample diameter in cm (overrides config)")
	squareSide := flag.Float64("square-side", 0, "Printed square side in cm (overrides config)")
	csvPath := flag.String("csv", "", "Export measurement history as CSV to this path")
	overlayPath := flag.String("overlay", "", "Write annotated capture to this path")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if *imagePath == "" || *seedX < 0 || *seedY < 0 {
		fmt.Println("Usage: drape-meter -image <path> -seed-x <px> -seed-y <px> [-ref coin|square] ...")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	applyOverride(&cfg.ReferenceDiameterCm, *refDiam)
	applyOverride(&cfg.DiskDiameterCm, *diskDiam)
	applyOverride(&cfg.FabricDiameterCm, *fabricDiam)
	applyOverride(&cfg.SquareSideCm, *squareSide)

	logger := NewLogger(parseLevel(cfg.LogLevel))

	kind := session.RefCoin
	if *refKind == "square" {
		kind = session.RefSquare
	}

	img, format, err := imgutil.LoadImage(*imagePath, cfg.MaxImageDim)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	bounds := img.Bounds()
	fmt.Printf("Loaded %s capture: %dx%d pixels\n", format, bounds.Dx(), bounds.Dy())

	hist, err := history.Load(cfg.HistoryPath, cfg.HistoryCapacity)
	if err != nil {
		logger.Warn("history unreadable, starting fresh", "path", cfg.HistoryPath, "error", err)
		hist = history.New(cfg.HistoryCapacity)
	}

	sess := session.New(session.Config{
		ReferenceDiameterCm: cfg.ReferenceDiameterCm,
		DiskDiameterCm:      cfg.DiskDiameterCm,
		FabricDiameterCm:    cfg.FabricDiameterCm,
		SquareSideCm:        cfg.SquareSideCm,
	}, hist, logger)
	defer sess.Close()

	if err := sess.SetImage(img); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load capture: %v\n", err)
		os.Exit(1)
	}

	m, err := sess.Measure(geometry.PointInt{X: *seedX, Y: *seedY}, kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Measurement failed: %v\n", err)
		os.Exit(1)
	}

	seg := sess.LastSegmentation()
	fmt.Printf("\nScale factor:      %.2f px/cm\n", sess.ScaleFactor())
	fmt.Printf("Shadow area:       %.2f cm² (%.0f px², %s strategy)\n",
		seg.TotalShadowCm2, seg.TotalShadowPx, seg.Strategy)
	fmt.Printf("Fabric-only area:  %.2f cm²", seg.FabricOnlyCm2)
	if seg.Degraded {
		fmt.Printf("  [disk not detected: includes disk footprint]")
	}
	fmt.Printf("\nDrape coefficient: %.1f%% (%s)\n", m.CoefficientPct, m.Category)

	if err := hist.Save(cfg.HistoryPath); err != nil {
		logger.Warn("failed to save history", "path", cfg.HistoryPath, "error", err)
	}

	if *csvPath != "" {
		if err := exportCSV(*csvPath, hist); err != nil {
			fmt.Fprintf(os.Stderr, "CSV export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("History exported to %s\n", *csvPath)
	}

	if *overlayPath != "" {
		if err := writeOverlay(*overlayPath, img, sess); err != nil {
			fmt.Fprintf(os.Stderr, "Overlay failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Overlay written to %s\n", *overlayPath)
	}
}

func applyOverride(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

func exportCSV(path string, hist *history.History) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.WriteCSV(f, hist.Items())
}

func writeOverlay(path string, img image.Image, sess *session.Session) error {
	mat, err := imgutil.ToMat(img)
	if err != nil {
		return err
	}
	defer mat.Close()

	var coin *geometry.Circle
	if c, ok := sess.Reference().(calibrate.Coin); ok {
		coin = &c.Circle
	}

	annotated := overlay.Render(mat, sess.LastSegmentation(), coin, sess.LastMeasurement())
	defer annotated.Close()

	return overlay.Save(path, annotated)
}
