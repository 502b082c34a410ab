package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func decodeResult(t *testing.T, r *CropResult) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(r.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	return img
}

func TestCrop(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)
	img.Set(10, 20, color.Black)

	result, err := Crop(img, image.Rect(10, 20, 60, 50), 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if result.Width != 50 || result.Height != 30 {
		t.Errorf("dimensions: got %dx%d, want 50x30", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s", result.MimeType)
	}
	if r, _, _, _ := decodeResult(t, result).At(0, 0).RGBA(); r != 0 {
		t.Error("crop origin should be the black pixel")
	}
}

func TestCrop_Scale(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)
	result, err := Crop(img, image.Rect(0, 0, 50, 50), 2.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if result.Width != 100 || result.Height != 100 {
		t.Errorf("scaled dimensions: got %dx%d, want 100x100", result.Width, result.Height)
	}
}

func TestCrop_InvalidRegion(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)
	tests := []struct {
		name string
		r    image.Rectangle
	}{
		{"outside", image.Rect(50, 50, 150, 150)},
		{"negative", image.Rect(-1, 0, 10, 10)},
		{"empty", image.Rect(10, 10, 10, 20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Crop(img, tt.r, 1.0); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPreview(t *testing.T) {
	img := createInMemoryImage(1000, 1500, color.White)

	result, err := Preview(img, 0)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if result.Width != DefaultPreviewWidth || result.Height != 525 {
		t.Errorf("dimensions: got %dx%d, want 350x525", result.Width, result.Height)
	}

	result, err = Preview(img, 100)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if result.Width != 100 || result.Height != 150 {
		t.Errorf("dimensions: got %dx%d, want 100x150", result.Width, result.Height)
	}

	if _, err := Preview(image.NewNRGBA(image.Rectangle{}), 100); err == nil {
		t.Error("expected error for empty image")
	}
}
