package iconset

import (
	"fmt"
	"path"
	"strconv"
)

// androidDensities maps density buckets to launcher icon sizes.
var androidDensities = []struct {
	Bucket string
	Pixels int
}{
	{"mdpi", 48},
	{"hdpi", 72},
	{"xhdpi", 96},
	{"xxhdpi", 144},
	{"xxxhdpi", 192},
}

// iosIcons lists nominal size / scale pairs for the app icon set.
var iosIcons = []struct {
	Size   float64
	Scales []int
	Idiom  string
}{
	{20, []int{1, 2, 3}, IdiomPhone},
	{29, []int{1, 2, 3}, IdiomPhone},
	{40, []int{1, 2, 3}, IdiomPhone},
	{50, []int{1, 2}, IdiomPhone},
	{57, []int{1, 2}, IdiomPhone},
	{60, []int{2, 3}, IdiomPhone},
	{72, []int{1, 2}, IdiomPhone},
	{76, []int{1, 2}, IdiomPhone},
	{83.5, []int{2}, IdiomPhone},
	{1024, []int{1}, IdiomMarketing},
}

// webIcons lists web icons by output path.
var webIcons = []struct {
	Path   string
	Pixels int
}{
	{"favicon.png", 32},
	{"icons/Icon-192.png", 192},
	{"icons/Icon-512.png", 512},
	{"icons/Icon-maskable-192.png", 192},
	{"icons/Icon-maskable-512.png", 512},
}

// AndroidSet returns one ic_launcher.png per mipmap density bucket.
func AndroidSet() Set {
	s := Set{Platform: Android}
	for _, d := range androidDensities {
		s.Specs = append(s.Specs, Spec{
			Path:   path.Join("mipmap-"+d.Bucket, "ic_launcher.png"),
			Width:  d.Pixels,
			Height: d.Pixels,
		})
	}
	return s
}

// IOSSet returns the AppIcon.appiconset icons.
func IOSSet() Set {
	s := Set{Platform: IOS}
	for _, ic := range iosIcons {
		for _, scale := range ic.Scales {
			s.Specs = append(s.Specs, Spec{
				Path:  IOSFileName(ic.Size, scale),
				Size:  ic.Size,
				Scale: scale,
				Idiom: ic.Idiom,
			})
		}
	}
	return s
}

// WebSet returns the favicon and PWA icons.
func WebSet() Set {
	s := Set{Platform: Web}
	for _, w := range webIcons {
		s.Specs = append(s.Specs, Spec{Path: w.Path, Width: w.Pixels, Height: w.Pixels})
	}
	return s
}

// IOSFileName returns the conventional file name for a nominal size and
// scale, e.g. "Icon-App-83.5x83.5@2x.png".
func IOSFileName(size float64, scale int) string {
	n := strconv.FormatFloat(size, 'f', -1, 64)
	return fmt.Sprintf("Icon-App-%sx%s@%dx.png", n, n, scale)
}
