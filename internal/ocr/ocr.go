package ocr

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DefaultLanguage covers the English and Devanagari rule texts.
const DefaultLanguage = "eng+hin"

// ErrUnavailable is returned when the binary was built without OCR support.
var ErrUnavailable = errors.New("ocr: tesseract unavailable")

// Info describes the OCR subsystem.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Backend   string `json:"backend"`
	Error     string `json:"error,omitempty"`
}

// Languages splits a "+"-joined language string, dropping empty parts.
// An empty string yields DefaultLanguage.
func Languages(lang string) []string {
	if strings.TrimSpace(lang) == "" {
		lang = DefaultLanguage
	}
	var out []string
	for _, l := range strings.Split(lang, "+") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Words splits text into comparable words: NFC-normalized, lowercased, and
// cut at anything that is not a letter, mark or digit.
func Words(text string) []string {
	text = strings.ToLower(norm.NFC.String(text))
	return strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r))
	})
}

// WordRecall returns the fraction of expected words found in recognized,
// counting repeated words separately. Empty expected text scores 1.
func WordRecall(expected, recognized string) float64 {
	want := Words(expected)
	if len(want) == 0 {
		return 1
	}
	have := make(map[string]int)
	for _, w := range Words(recognized) {
		have[w]++
	}
	found := 0
	for _, w := range want {
		if have[w] > 0 {
			have[w]--
			found++
		}
	}
	return float64(found) / float64(len(want))
}
