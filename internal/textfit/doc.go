// Package textfit selects a font and size for a piece of label text so that it
// fills a pixel box without overflowing it.
//
// The package is organised leaf-first:
//
//   - Classify inspects a string and reports its script (devanagari, bengali
//     or latin-default).
//   - Candidates maps a script and a host platform to an ordered, de-duplicated
//     list of font references: bundled keys first, then well-known system
//     fonts, then platform fallbacks, then the universal bundled fallback.
//   - Loader resolves a reference through a ranked list of strategies
//     (bundle, filesystem path, system font name) and produces faces at a
//     requested size.
//   - Fitter binary-searches the size of every candidate that supports the
//     text and keeps the best-scoring one, falling back to a built-in bitmap
//     face when nothing supports the text.
//
// # Coordinate System
//
// Measurements are in whole pixels relative to the baseline origin of the
// first line of text: MinY is negative for glyphs that rise above the
// baseline. Font sizes are pixels (faces are created at 72 DPI).
//
// # Thread Safety
//
// Loader caches parsed fonts and is safe for concurrent use. Faces returned
// by Loader are not shared: each call creates a fresh face, so concurrent
// renders never contend on glyph buffers.
package textfit
