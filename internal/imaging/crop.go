package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultPreviewWidth is the thumbnail width used when none is given.
const DefaultPreviewWidth = 350

// CropResult contains an encoded excerpt of an image.
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Crop extracts r from img, optionally scaled, as base64 PNG. r must lie
// inside img and have positive area.
func Crop(img image.Image, r image.Rectangle, scale float64) (*CropResult, error) {
	bounds := img.Bounds()
	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", r, bounds)
	}
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: empty", r)
	}

	cropped := imaging.Crop(img, r)
	if scale != 1.0 && scale > 0 {
		w := max(int(float64(cropped.Bounds().Dx())*scale), 1)
		h := max(int(float64(cropped.Bounds().Dy())*scale), 1)
		cropped = imaging.Resize(cropped, w, h, imaging.Lanczos)
	}
	return encodeResult(cropped)
}

// Preview scales img to width pixels wide, keeping its aspect ratio, as
// base64 PNG. A width of zero or less means DefaultPreviewWidth.
func Preview(img image.Image, width int) (*CropResult, error) {
	if width <= 0 {
		width = DefaultPreviewWidth
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("cannot preview an empty image")
	}
	return encodeResult(imaging.Resize(img, width, 0, imaging.Lanczos))
}

func encodeResult(img *image.NRGBA) (*CropResult, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &CropResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
