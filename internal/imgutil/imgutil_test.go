package imgutil

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestGrayAt(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{R: 0, G: 0, B: 0, A: 255})

	if v := GrayAt(img, 0, 0); v != 255 {
		t.Errorf("white GrayAt = %d, want 255", v)
	}
	if v := GrayAt(img, 1, 0); v != 0 {
		t.Errorf("black GrayAt = %d, want 0", v)
	}

	// Pure green weighs in at the BT.601 green coefficient.
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	v := GrayAt(img, 0, 0)
	if v < 145 || v > 155 {
		t.Errorf("green GrayAt = %d, want ≈150", v)
	}
}

func TestToMatDimensions(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 17))
	mat, err := ToMat(img)
	if err != nil {
		t.Fatalf("ToMat: %v", err)
	}
	defer mat.Close()

	if mat.Cols() != 32 || mat.Rows() != 17 {
		t.Errorf("mat is %dx%d, want 32x17", mat.Cols(), mat.Rows())
	}
}

func TestToMatChannelOrder(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	mat, err := ToMat(img)
	if err != nil {
		t.Fatalf("ToMat: %v", err)
	}
	defer mat.Close()

	// BGR order for OpenCV.
	if b := mat.GetUCharAt(0, 0); b != 30 {
		t.Errorf("B = %d, want 30", b)
	}
	if g := mat.GetUCharAt(0, 1); g != 20 {
		t.Errorf("G = %d, want 20", g)
	}
	if r := mat.GetUCharAt(0, 2); r != 10 {
		t.Errorf("R = %d, want 10", r)
	}
}

func TestToMatRejectsEmpty(t *testing.T) {
	if _, err := ToMat(image.NewRGBA(image.Rect(0, 0, 0, 0))); err == nil {
		t.Fatal("expected error for empty image")
	}
}

func writeTestPNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	path := filepath.Join(t.TempDir(), "capture.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadImage(t *testing.T) {
	path := writeTestPNG(t, 64, 48)

	img, format, err := LoadImage(path, 0)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("size = %dx%d, want 64x48", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestLoadImageDownscales(t *testing.T) {
	path := writeTestPNG(t, 400, 200)

	img, _, err := LoadImage(path, 100)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	b := img.Bounds()
	if b.Dx() > 100 || b.Dy() > 100 {
		t.Errorf("size = %dx%d, want both axes <= 100", b.Dx(), b.Dy())
	}
	// Aspect ratio is preserved.
	if b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("size = %dx%d, want 100x50", b.Dx(), b.Dy())
	}
}

func TestLoadImageMissingFile(t *testing.T) {
	if _, _, err := LoadImage(filepath.Join(t.TempDir(), "nope.png"), 0); err == nil {
		t.Fatal("expected error for missing file")
	}
}
