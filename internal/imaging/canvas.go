package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// Canvas is the working surface a label is rendered onto: a private NRGBA
// copy of the master, re-based at the origin.
type Canvas struct {
	img *image.NRGBA
}

// NewCanvas copies src. The source is never modified.
func NewCanvas(src image.Image) *Canvas {
	return &Canvas{img: imaging.Clone(src)}
}

// Image returns the canvas pixels. Drawing onto it draws onto the canvas.
func (c *Canvas) Image() *image.NRGBA { return c.img }

// Bounds returns the canvas bounds, always anchored at (0,0).
func (c *Canvas) Bounds() image.Rectangle { return c.img.Bounds() }

// Dst returns the canvas as a draw target.
func (c *Canvas) Dst() draw.Image { return c.img }

// Flatten makes every pixel fully opaque, keeping its straight color. Pixels
// that were transparent keep whatever color they carried.
func (c *Canvas) Flatten() {
	pix := c.img.Pix
	for i := 3; i < len(pix); i += 4 {
		pix[i] = 0xff
	}
}

// At returns the color at (x, y) as NRGBA.
func (c *Canvas) At(x, y int) color.NRGBA {
	return c.img.NRGBAAt(x, y)
}

// EncodePNG writes the canvas as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if err := imaging.Encode(w, c.img, imaging.PNG); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// PNG returns the PNG encoding of the canvas.
func (c *Canvas) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the canvas to path as PNG regardless of its extension. The
// file is written to a temporary name first and renamed, so a failed render
// never leaves a truncated output behind.
func (c *Canvas) Save(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".label-*.png")
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := c.EncodePNG(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
