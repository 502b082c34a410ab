package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// ImageCache provides thread-safe caching of decoded master labels.
//
// Images are decoded with EXIF auto-orientation, so a photographed label
// is placed upright before any percentage region is converted to pixels.
// Entries are keyed by the exact path string given to Load.
//
// # Memory Management
//
// Cached images remain in memory until removed via Evict or Clear. A
// long-running server rendering many distinct masters should evict them
// once a batch is done.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load returns the decoded image at path, reading it from disk on first use.
//
// Parameters:
//   - path: file path of a PNG, JPEG, GIF, BMP or TIFF image.
//
// Returns:
//   - image.Image: the decoded, upright image. Callers must not modify it.
//   - error: non-nil if the file cannot be opened or decoded. The error
//     wraps the underlying *fs.PathError when the file is missing.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes the image loaded under path, if any. Rendering to the same
// path as a cached master should be followed by Evict so the next Load sees
// the new file.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a master label file.
type ImageInfo struct {
	// Width is the image width in pixels, after orientation.
	Width int `json:"width"`

	// Height is the image height in pixels, after orientation.
	Height int `json:"height"`

	// Format is the format implied by the file extension: "png", "jpeg",
	// "gif", "bmp", "tiff", or "unknown".
	Format string `json:"format"`

	// HasAlpha reports whether any pixel is not fully opaque. Such masters
	// are flattened before the output is written.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads path through cache and describes it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format, err := imaging.FormatFromFilename(path)
	name := "unknown"
	if err == nil {
		name = strings.ToLower(format.String())
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        name,
		HasAlpha:      !isOpaque(img),
		FileSizeBytes: stat.Size(),
	}, nil
}

// isOpaque uses the image's own Opaque method when it has one.
func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}

// IsImageFile reports whether path has an extension the decoder accepts.
func IsImageFile(path string) bool {
	_, err := imaging.FormatFromExtension(filepath.Ext(path))
	return err == nil
}
