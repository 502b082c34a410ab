//go:build !cgo

package ocr

// Recognize always fails with ErrUnavailable in builds without cgo.
func Recognize(png []byte, language string) (string, error) {
	return "", ErrUnavailable
}

// GetOCRInfo reports that OCR is not compiled in.
func GetOCRInfo() Info {
	return Info{
		Backend: "none",
		Error:   "built without cgo",
	}
}
