// Package imaging provides the raster side of label rendering: decoding
// master labels, the working canvas regions are drawn onto, debug outlines,
// previews, and region comparison between a master and its rendered output.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Rectangles follow
// image.Rectangle: Min is inclusive, Max is exclusive. DrawOutline is the one
// exception and paints both edges inclusively.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Cached images are shared and must
// be treated as read-only; NewCanvas copies its source so drawing never
// touches a cached master.
//
// # Output
//
// Everything this package writes is PNG, whatever the input format, so
// rendered labels never pass through a lossy encoder.
package imaging
