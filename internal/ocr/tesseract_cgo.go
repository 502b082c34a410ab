//go:build cgo

package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Recognize returns the text Tesseract reads from a PNG image. The region is
// treated as a single block of text.
func Recognize(png []byte, language string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(Languages(language)...); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("failed to set page segmentation: %w", err)
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// GetOCRInfo reports the linked Tesseract version.
func GetOCRInfo() Info {
	client := gosseract.NewClient()
	defer client.Close()
	return Info{
		Available: true,
		Version:   client.Version(),
		Backend:   "gosseract",
	}
}
