// Package iconset declares the icon tables for each target platform.
//
// The tables are plain data: every platform is a Set of Specs, each
// naming one output file relative to the platform's output root and the
// pixel size it must be rendered at.
package iconset

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

// Platform names.
const (
	Android = "android"
	IOS     = "ios"
	Web     = "web"
)

// iOS asset catalog idioms.
const (
	IdiomPhone     = "iphone"
	IdiomMarketing = "ios-marketing"
)

// Spec describes one output icon.
//
// Either Width/Height are set directly, or Size and Scale are set and the
// pixel size is Size×Scale rounded to the nearest integer.
type Spec struct {
	Path   string
	Width  int
	Height int

	Size  float64 // nominal point size (iOS)
	Scale int     // 1, 2, 3 (iOS)
	Idiom string  // asset catalog idiom (iOS)
}

// Scaled reports whether the pixel size derives from Size and Scale.
func (s Spec) Scaled() bool {
	return s.Scale > 0
}

// Pixels returns the target pixel dimensions.
func (s Spec) Pixels() (w, h int) {
	if s.Scaled() {
		px := int(math.Round(s.Size * float64(s.Scale)))
		return px, px
	}
	return s.Width, s.Height
}

// SizeLabel formats the nominal size the way asset catalogs expect,
// e.g. "60x60" or "83.5x83.5".
func (s Spec) SizeLabel() string {
	n := strconv.FormatFloat(s.Size, 'f', -1, 64)
	return n + "x" + n
}

// ScaleLabel formats the scale, e.g. "3x".
func (s Spec) ScaleLabel() string {
	return strconv.Itoa(s.Scale) + "x"
}

// Set is the ordered collection of specs for one platform.
type Set struct {
	Platform string
	Specs    []Spec
}

// Duplicates returns output paths that appear more than once, in order of
// their second appearance. Later specs overwrite earlier ones on disk.
func (s Set) Duplicates() []string {
	seen := make(map[string]int, len(s.Specs))
	var dups []string
	for _, sp := range s.Specs {
		p := filepath.Clean(sp.Path)
		seen[p]++
		if seen[p] == 2 {
			dups = append(dups, p)
		}
	}
	return dups
}

// Validate checks that the set is non-empty and that every spec resolves
// to positive dimensions and a relative path inside the output root.
func (s Set) Validate() error {
	if len(s.Specs) == 0 {
		return fmt.Errorf("%s: icon set is empty", s.Platform)
	}
	for i, sp := range s.Specs {
		if sp.Path == "" {
			return fmt.Errorf("%s: spec %d has no path", s.Platform, i+1)
		}
		c := filepath.Clean(sp.Path)
		if filepath.IsAbs(c) || c == ".." || strings.HasPrefix(c, ".."+string(filepath.Separator)) {
			return fmt.Errorf("%s: spec %d path %q escapes the output root", s.Platform, i+1, sp.Path)
		}
		if w, h := sp.Pixels(); w <= 0 || h <= 0 {
			return fmt.Errorf("%s: spec %d (%s) resolves to %dx%d", s.Platform, i+1, sp.Path, w, h)
		}
	}
	return nil
}

// Platforms lists the built-in platforms in generation order.
func Platforms() []string {
	return []string{Android, IOS, Web}
}

// ByName returns the built-in set for a platform.
func ByName(platform string) (Set, bool) {
	switch platform {
	case Android:
		return AndroidSet(), true
	case IOS:
		return IOSSet(), true
	case Web:
		return WebSet(), true
	}
	return Set{}, false
}
