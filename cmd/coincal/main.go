// Command coincal runs reference calibration on a capture and reports the
// derived scale factor.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"drape-meter/internal/calibrate"
	"drape-meter/internal/imgutil"
	"drape-meter/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to capture (PNG, JPEG, TIFF, or BMP)")
	seedX := flag.Int("seed-x", -1, "Seed X in image-pixel coordinates")
	seedY := flag.Int("seed-y", -1, "Seed Y in image-pixel coordinates")
	refKind := flag.String("ref", "coin", "Reference kind: coin or square")
	refDiam := flag.Float64("ref-diameter", 2.5, "Coin diameter in cm")
	squareSide := flag.Float64("square-side", 5.0, "Printed square side in cm")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	if *imagePath == "" || *seedX < 0 || *seedY < 0 {
		fmt.Println("Usage: coincal -image <path> -seed-x <px> -seed-y <px> [-ref coin|square]")
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	img, format, err := imgutil.LoadImage(*imagePath, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	bounds := img.Bounds()
	fmt.Printf("Loaded %s capture: %dx%d pixels\n", format, bounds.Dx(), bounds.Dy())

	seed := geometry.PointInt{X: *seedX, Y: *seedY}
	params := calibrate.DefaultParams().WithImageSize(bounds.Dx(), bounds.Dy())
	fmt.Printf("Radius band: %d-%d px, min separation %.0f px\n",
		params.MinRadiusPx, params.MaxRadiusPx, params.MinDistPx)

	var ref calibrate.Reference
	switch *refKind {
	case "coin":
		mat, err := imgutil.ToMat(img)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Conversion failed: %v\n", err)
			os.Exit(1)
		}
		defer mat.Close()

		circle, err := calibrate.DetectCoin(mat, seed, params, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Calibration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Coin: center (%.1f, %.1f), radius %.1f px\n",
			circle.Center.X, circle.Center.Y, circle.Radius)
		ref = calibrate.Coin{Circle: circle}
	case "square":
		area, err := calibrate.DetectSquare(img, seed, params)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Calibration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Square: %.0f px filled\n", area)
		ref = calibrate.Square{PixelArea: area, SideCm: *squareSide}
	default:
		fmt.Fprintf(os.Stderr, "Unknown reference kind %q\n", *refKind)
		os.Exit(1)
	}

	scale, err := calibrate.ScaleFactor(ref, *refDiam)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Calibration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Scale factor: %.2f px/cm\n", scale)
}
