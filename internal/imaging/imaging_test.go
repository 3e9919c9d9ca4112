package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/erazemk/izposoja/internal/errs"
)

func createTestJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTransparentPNG(w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestProcessJPEG(t *testing.T) {
	photo, err := ProcessPhoto(bytes.NewReader(createTestJPEG(100, 80)))
	if err != nil {
		t.Fatalf("ProcessPhoto: %v", err)
	}
	if photo.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", photo.MIME)
	}
	if photo.Width != 100 || photo.Height != 80 {
		t.Errorf("expected 100x80, got %dx%d", photo.Width, photo.Height)
	}
}

func TestProcessTransparentPNGFlattensToWhite(t *testing.T) {
	photo, err := ProcessPhoto(bytes.NewReader(createTransparentPNG(20, 20)))
	if err != nil {
		t.Fatalf("ProcessPhoto: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(photo.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	r, g, b, _ := img.At(10, 10).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("expected white background, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestProcessDownscale(t *testing.T) {
	photo, err := ProcessPhoto(bytes.NewReader(createTestJPEG(2560, 1280)))
	if err != nil {
		t.Fatalf("ProcessPhoto: %v", err)
	}
	if photo.Width != MaxDimension || photo.Height != MaxDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", MaxDimension, MaxDimension/2, photo.Width, photo.Height)
	}
}

func TestThumbnail(t *testing.T) {
	thumb, err := Thumbnail(createTestJPEG(480, 960))
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	if thumb.Height != ThumbnailDimension || thumb.Width != ThumbnailDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", ThumbnailDimension/2, ThumbnailDimension, thumb.Width, thumb.Height)
	}
}

func TestProcessRejectsNonImage(t *testing.T) {
	_, err := ProcessPhoto(bytes.NewReader([]byte("this is not an image")))
	if err == nil {
		t.Fatal("expected error for text input")
	}
	if errs.KindOf(err) != errs.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestProcessRejectsOversized(t *testing.T) {
	data := make([]byte, MaxUploadBytes+10)
	copy(data, createTestJPEG(10, 10))
	_, err := ProcessPhoto(bytes.NewReader(data))
	if errs.KindOf(err) != errs.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{100, 100, 200, 100, 100},
		{400, 200, 200, 200, 100},
		{200, 400, 200, 100, 200},
		{5000, 1, 100, 100, 1},
	}
	for _, tt := range tests {
		w, h := scaledSize(tt.w, tt.h, tt.max)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("scaledSize(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.max, w, h, tt.wantW, tt.wantH)
		}
	}
}
