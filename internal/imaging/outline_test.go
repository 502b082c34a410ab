package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestDrawOutline_InclusiveEdges(t *testing.T) {
	white := color.NRGBA{255, 255, 255, 255}
	img := createInMemoryImage(20, 20, white)
	red := color.NRGBA{255, 0, 0, 255}
	DrawOutline(img, image.Rect(2, 3, 10, 8), red)

	tests := []struct {
		x, y int
		want color.NRGBA
	}{
		{2, 3, red},    // top-left corner
		{10, 3, red},   // top-right corner, inclusive Max.X
		{2, 8, red},    // bottom-left corner, inclusive Max.Y
		{10, 8, red},   // bottom-right corner
		{6, 3, red},    // top edge
		{6, 8, red},    // bottom edge
		{2, 5, red},    // left edge
		{10, 5, red},   // right edge
		{6, 5, white},  // interior
		{11, 5, white}, // outside
		{1, 3, white},
	}
	for _, tt := range tests {
		if got := img.NRGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDrawOutline_ClipsToImage(t *testing.T) {
	img := createInMemoryImage(10, 10, color.White)
	// Must not panic.
	DrawOutline(img, image.Rect(-5, -5, 20, 20), color.Black)
	DrawOutline(img, image.Rect(5, 5, 9, 9), color.Black)
	if got := img.NRGBAAt(9, 9); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("(9,9) = %v, want black", got)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#FF0000", color.NRGBA{255, 0, 0, 255}, false},
		{"00ff80", color.NRGBA{0, 255, 128, 255}, false},
		{"#0f0", color.NRGBA{0, 255, 0, 255}, false},
		{"", DefaultOutlineColor, false},
		{"#GG0000", color.NRGBA{}, true},
		{"#12345", color.NRGBA{}, true},
		{"#1234567", color.NRGBA{}, true},
		{"#ff00", color.NRGBA{}, true},
		{"12", color.NRGBA{}, true},
		{"#-10000", color.NRGBA{}, true},
		{"#ABCDEF", color.NRGBA{171, 205, 239, 255}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
