package textfit

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

//go:generate sh ../../scripts/fetch-fonts.sh fonts

// Keys of the fonts compiled into the binary. The Go fonts come from
// x/image; the others are the files of the fonts directory of this package.
const (
	BundleGoRegular      = "go-regular"
	BundleGoBold         = "go-bold"
	BundleGoMono         = "go-mono"
	BundleNotoDevanagari = "NotoSansDevanagari-Regular.ttf"
	BundleNotoBengali    = "NotoSansBengali-Regular.ttf"
	BundleGoNoto         = "GoNotoCurrent-Regular.ttf"
)

//go:embed fonts
var fontFS embed.FS

var embeddedFonts = loadEmbedded(fontFS)

func loadEmbedded(fsys fs.FS) map[string][]byte {
	fonts := map[string][]byte{
		BundleGoRegular: goregular.TTF,
		BundleGoBold:    gobold.TTF,
		BundleGoMono:    gomono.TTF,
	}
	entries, err := fs.ReadDir(fsys, "fonts")
	if err != nil {
		return fonts
	}
	for _, e := range entries {
		ext := strings.ToLower(path.Ext(e.Name()))
		if e.IsDir() || (ext != ".ttf" && ext != ".otf") {
			continue
		}
		data, err := fs.ReadFile(fsys, "fonts/"+e.Name())
		if err != nil || len(data) == 0 {
			continue
		}
		fonts[e.Name()] = data
	}
	return fonts
}

// EmbeddedKeys returns the bundle keys compiled into the binary, sorted.
func EmbeddedKeys() []string {
	keys := make([]string, 0, len(embeddedFonts))
	for k := range embeddedFonts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
