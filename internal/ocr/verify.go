package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// minTextHeight is the crop height below which a region is upscaled before
// recognition.
const minTextHeight = 64

// Verification is the outcome of reading one region back.
type Verification struct {
	Label      string  `json:"label"`
	Expected   string  `json:"expected"`
	Recognized string  `json:"recognized"`
	WordRecall float64 `json:"word_recall"`
	Language   string  `json:"language"`
}

// RegionPNG crops r from img, pads it with white, and scales it up when it
// is short, returning PNG bytes ready for recognition.
func RegionPNG(img image.Image, r image.Rectangle) ([]byte, error) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("region outside image")
	}
	crop := imaging.Crop(img, r)
	if h := crop.Bounds().Dy(); h < minTextHeight {
		crop = imaging.Resize(crop, 0, minTextHeight, imaging.Lanczos)
	}
	pad := 10
	canvas := imaging.New(crop.Bounds().Dx()+2*pad, crop.Bounds().Dy()+2*pad, color.White)
	canvas = imaging.Paste(canvas, crop, image.Pt(pad, pad))

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode region: %w", err)
	}
	return buf.Bytes(), nil
}

// VerifyRegion reads r of img back and scores it against expected.
func VerifyRegion(img image.Image, r image.Rectangle, label, expected, language string) (*Verification, error) {
	data, err := RegionPNG(img, r)
	if err != nil {
		return nil, err
	}
	text, err := Recognize(data, language)
	if err != nil {
		return nil, err
	}
	return &Verification{
		Label:      label,
		Expected:   expected,
		Recognized: text,
		WordRecall: WordRecall(expected, text),
		Language:   language,
	}, nil
}
