package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, solid(w, h, color.RGBA{255, 0, 0, 255}), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func encodePNG(w, h int) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, solid(w, h, color.RGBA{0, 0, 255, 255}))
	return buf.Bytes()
}

func TestProcessPhotoJPEG(t *testing.T) {
	photo, err := ProcessPhoto(bytes.NewReader(encodeJPEG(100, 100)))
	if err != nil {
		t.Fatalf("ProcessPhoto JPEG: %v", err)
	}
	if photo.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", photo.MIME)
	}
	if len(photo.Data) == 0 {
		t.Error("expected non-empty data")
	}
}

func TestProcessPhotoPNGBecomesJPEG(t *testing.T) {
	photo, err := ProcessPhoto(bytes.NewReader(encodePNG(100, 60)))
	if err != nil {
		t.Fatalf("ProcessPhoto PNG: %v", err)
	}
	if photo.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", photo.MIME)
	}
	if photo.Width != 100 || photo.Height != 60 {
		t.Errorf("expected 100x60, got %dx%d", photo.Width, photo.Height)
	}
}

func TestProcessPhotoDownscalesKeepingAspect(t *testing.T) {
	photo, err := ProcessPhoto(bytes.NewReader(encodeJPEG(1600, 400)))
	if err != nil {
		t.Fatalf("ProcessPhoto large image: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(photo.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != MaxDimension || b.Dy() != 200 {
		t.Errorf("expected %dx200, got %dx%d", MaxDimension, b.Dx(), b.Dy())
	}
}

func TestProcessPhotoSmallImageNotUpscaled(t *testing.T) {
	photo, err := ProcessPhoto(bytes.NewReader(encodeJPEG(50, 50)))
	if err != nil {
		t.Fatalf("ProcessPhoto small image: %v", err)
	}
	if photo.Width != 50 || photo.Height != 50 {
		t.Errorf("small image should not be resized: got %dx%d", photo.Width, photo.Height)
	}
}

func TestProcessPhotoRejectsUnsupported(t *testing.T) {
	for name, data := range map[string][]byte{
		"text": []byte("not an image"),
		"gif":  []byte("GIF89a..."),
	} {
		_, err := ProcessPhoto(bytes.NewReader(data))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("%s: expected ErrUnsupportedFormat, got %v", name, err)
		}
	}
}

func TestProcessPhotoRejectsOversizedUpload(t *testing.T) {
	data := make([]byte, MaxUploadSize+10)
	copy(data, encodeJPEG(10, 10))
	_, err := ProcessPhoto(bytes.NewReader(data))
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}
