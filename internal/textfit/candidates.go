package textfit

import "runtime"

// Platform is the host operating system family. It selects the platform
// fallback fonts appended to every candidate list.
type Platform string

const (
	PlatformMacOS   Platform = "macos"
	PlatformWindows Platform = "windows"
	PlatformUnix    Platform = "unix"
)

// PlatformFor maps a GOOS value to its platform family.
func PlatformFor(goos string) Platform {
	switch goos {
	case "darwin", "ios":
		return PlatformMacOS
	case "windows":
		return PlatformWindows
	default:
		return PlatformUnix
	}
}

// HostPlatform returns the platform family of the running binary.
func HostPlatform() Platform {
	return PlatformFor(runtime.GOOS)
}

// BundlePrefix marks a candidate reference as a key into the font bundle.
const BundlePrefix = "bundle:"

// UniversalFallback is the bundled Unicode font near the end of every
// candidate list. It covers Latin, Devanagari and Bengali among others.
const UniversalFallback = BundlePrefix + BundleGoNoto

// BuiltinFallback ends every candidate list. It is compiled in from x/image
// and loads on any build, but covers Latin, Greek and Cyrillic only.
const BuiltinFallback = BundlePrefix + BundleGoRegular

// Candidate is a font reference considered during fitting. Ref is either a
// bundle key ("bundle:<name>"), a filesystem path, or a bare font file name
// to be looked up in the host font directories.
type Candidate struct {
	Ref    string `json:"ref"`
	Script Script `json:"script"`
}

var scriptFonts = map[Script][]string{
	ScriptDevanagari: {
		BundlePrefix + BundleNotoDevanagari,
		BundlePrefix + "Lohit-Devanagari.ttf",
		BundlePrefix + "Mukta-Regular.ttf",
		"Devanagari Sangam MN.ttf",
		"Mangal.ttf",
		"Nirmala.ttf",
		"Arial Unicode.ttf",
		"/usr/share/fonts/truetype/noto/NotoSansDevanagari-Regular.ttf",
		"/usr/share/fonts/truetype/lohit-devanagari/Lohit-Devanagari.ttf",
		"/Library/Fonts/Devanagari Sangam MN.ttf",
		"/System/Library/Fonts/Supplemental/Devanagari Sangam MN.ttf",
		"DejaVuSans.ttf",
	},
	ScriptBengali: {
		BundlePrefix + BundleNotoBengali,
		BundlePrefix + "Lohit-Bengali.ttf",
		"Vrinda.ttf",
		"Bangla Sangam MN.ttf",
		"/usr/share/fonts/truetype/noto/NotoSansBengali-Regular.ttf",
		"/usr/share/fonts/truetype/lohit-bengali/Lohit-Bengali.ttf",
		"DejaVuSans.ttf",
	},
	ScriptLatinDefault: {
		BundlePrefix + "DejaVuSans.ttf",
		BundlePrefix + BundleGoRegular,
		"DejaVuSans.ttf",
		"Arial.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	},
}

var platformFonts = map[Platform][]string{
	PlatformMacOS: {
		"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
		"/Library/Fonts/Arial Unicode.ttf",
	},
	PlatformWindows: {
		"C:/Windows/Fonts/arialuni.ttf",
		"C:/Windows/Fonts/Mangal.ttf",
		"C:/Windows/Fonts/Nirmala.ttf",
	},
	PlatformUnix: {
		"/usr/share/fonts/truetype/freefont/FreeSans.ttf",
		"/usr/share/fonts/opentype/noto/NotoSans-Regular.ttf",
	},
}

// Candidates returns the ordered font candidates for a script on a platform.
//
// The order is: the script's bundled keys, the script's well-known system
// fonts, the platform fallbacks, UniversalFallback and finally
// BuiltinFallback. Duplicates are removed keeping the first occurrence. The
// result is never empty; an unknown script gets the latin-default list.
//
// Candidates is a pure function of its arguments.
func Candidates(script Script, platform Platform) []Candidate {
	fonts, ok := scriptFonts[script]
	if !ok {
		script = ScriptLatinDefault
		fonts = scriptFonts[ScriptLatinDefault]
	}

	refs := make([]string, 0, len(fonts)+4)
	refs = append(refs, fonts...)
	refs = append(refs, platformFonts[platform]...)
	refs = append(refs, UniversalFallback, BuiltinFallback)

	seen := make(map[string]bool, len(refs))
	out := make([]Candidate, 0, len(refs))
	for _, ref := range refs {
		if seen[ref] {
			continue
		}
		seen[ref] = true
		out = append(out, Candidate{Ref: ref, Script: script})
	}
	return out
}
