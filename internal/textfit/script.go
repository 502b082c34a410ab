package textfit

import (
	"unicode"

	"github.com/go-text/typesetting/language"
	"golang.org/x/text/unicode/norm"
)

// Script is the script tag a text is classified into. It selects the font
// candidate list used for fitting.
type Script string

const (
	ScriptDevanagari   Script = "devanagari"
	ScriptBengali      Script = "bengali"
	ScriptLatinDefault Script = "latin-default"
)

// Unicode blocks checked by Classify.
const (
	devanagariFirst = '\u0900'
	devanagariLast  = '\u097F'
	bengaliFirst    = '\u0980'
	bengaliLast     = '\u09FF'
)

// Classify reports the script of text.
//
// Any code point in the Devanagari block (U+0900-U+097F) makes the text
// devanagari, even when Bengali or Latin characters are also present.
// Otherwise any code point in the Bengali block (U+0980-U+09FF) makes it
// bengali. Everything else, including the empty string and scripts with no
// dedicated candidate list, is latin-default.
func Classify(text string) Script {
	if containsRange(text, devanagariFirst, devanagariLast) {
		return ScriptDevanagari
	}
	if containsRange(text, bengaliFirst, bengaliLast) {
		return ScriptBengali
	}
	return ScriptLatinDefault
}

func containsRange(text string, lo, hi rune) bool {
	for _, r := range text {
		if r >= lo && r <= hi {
			return true
		}
	}
	return false
}

// ScriptsIn returns the distinct Unicode scripts used by text, in order of
// first appearance. Characters shared between scripts (punctuation, digits,
// spaces, combining marks) are ignored.
//
// It is reported next to the fitted font so mixed-script values are easy to
// spot; MissingScripts applies the same lookup to font coverage.
func ScriptsIn(text string) []string {
	seen := make(map[language.Script]bool)
	var out []string
	for _, r := range text {
		s := language.LookupScript(r)
		if s == language.Common || s == language.Inherited || s == language.Unknown {
			continue
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s.String())
	}
	return out
}

// Normalize returns text in Unicode normalization form C. Rule values are
// normalized before fitting and drawing so precomposed and decomposed
// spellings (Devanagari nukta forms, accented Latin) measure the same.
func Normalize(text string) string {
	return norm.NFC.String(text)
}

// MissingScripts returns the scripts of the letters and combining marks in
// text that src has no glyph for, in order of first appearance. A combining
// mark counts toward the script of the letter it follows. An empty result
// means src covers every letter and mark of text.
func MissingScripts(src *Source, text string) []string {
	seen := make(map[language.Script]bool)
	var out []string
	base := language.Common
	for _, r := range text {
		s := language.LookupScript(r)
		if s != language.Common && s != language.Inherited && s != language.Unknown {
			base = s
		} else if unicode.IsMark(r) {
			s = base
		}
		if !unicode.IsLetter(r) && !unicode.IsMark(r) {
			continue
		}
		if src.Covers(r) || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s.String())
	}
	return out
}
