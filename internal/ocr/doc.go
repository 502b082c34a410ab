// Package ocr reads rendered label regions back with Tesseract to check
// that the text drawn there is legible.
//
// Verification is diagnostic only: it never changes a rendered image and a
// failed or unavailable recognition never fails a render.
//
// # Prerequisites
//
// Recognition needs cgo and a system Tesseract install with the language
// data for every language requested:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng tesseract-ocr-hin
//   - macOS: brew install tesseract tesseract-lang
//
// Binaries built without cgo report ErrUnavailable from every recognition
// call; GetOCRInfo says which case applies.
//
// # Languages
//
// Languages use Tesseract codes joined with "+", e.g. "eng+hin" for the
// English and Hindi texts of the demo jurisdictions.
package ocr
