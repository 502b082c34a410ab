// Package render places rule texts onto master label images.
//
// A Renderer walks a template's regions in order. For each region whose
// label has a rule in the chosen jurisdiction it converts the percentage
// rectangle to pixels, fits the text with a textfit.Fitter, anchors it at a
// left inset and vertically centered, and draws it in opaque black. Regions
// without a rule are left untouched. The finished canvas is flattened to
// opaque pixels and written as PNG.
//
// Structural problems (an unreadable master, an unknown jurisdiction) fail
// the whole render before any pixel is drawn. Per-region problems never do:
// a region whose text no font supports is drawn with the built-in face and
// flagged as degraded in the Report.
package render
