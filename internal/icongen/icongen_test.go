package icongen

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/Mavwarf/appicons/internal/iconset"
)

// writeSource writes a w×h PNG with an opaque diagonal gradient.
func writeSource(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x + y), A: 255})
		}
	}
	p := filepath.Join(dir, "logo.png")
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return p
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}

// pngColorType returns the colour type byte of the IHDR chunk: the
// 8-byte signature, chunk length and "IHDR" tag, width, height and bit
// depth come first.
func pngColorType(t *testing.T, path string) byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 26 || !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("%s is not a PNG", path)
	}
	return data[25]
}

// colorTypeRGBA is PNG colour type 6, truecolour with alpha.
const colorTypeRGBA = 6

func countFiles(t *testing.T, root string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		t.Fatal(err)
	}
	return n
}

func TestGenerateAndroid(t *testing.T) {
	src := writeSource(t, t.TempDir(), 512, 512)
	out := filepath.Join(t.TempDir(), "res")

	res, err := Generate(src, iconset.AndroidSet(), out)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Attempted != 5 || len(res.Written()) != 5 || !res.OK() {
		t.Fatalf("attempted=%d written=%d failed=%v", res.Attempted, len(res.Written()), res.Failed())
	}
	if n := countFiles(t, out); n != 5 {
		t.Errorf("files on disk = %d, want 5", n)
	}

	want := map[string]int{
		"mipmap-mdpi":    48,
		"mipmap-hdpi":    72,
		"mipmap-xhdpi":   96,
		"mipmap-xxhdpi":  144,
		"mipmap-xxxhdpi": 192,
	}
	for dir, px := range want {
		img := decodePNG(t, filepath.Join(out, dir, "ic_launcher.png"))
		if b := img.Bounds(); b.Dx() != px || b.Dy() != px {
			t.Errorf("%s = %dx%d, want %d", dir, b.Dx(), b.Dy(), px)
		}
		if ct := pngColorType(t, filepath.Join(out, dir, "ic_launcher.png")); ct != colorTypeRGBA {
			t.Errorf("%s colour type = %d, want %d (RGBA)", dir, ct, colorTypeRGBA)
		}
		if _, ok := img.(*image.NRGBA); !ok {
			t.Errorf("%s decoded as %T, want *image.NRGBA", dir, img)
		}
	}
}

func TestGenerateIOSScaledSize(t *testing.T) {
	src := writeSource(t, t.TempDir(), 256, 256)
	out := t.TempDir()
	set := iconset.Set{Platform: iconset.IOS, Specs: []iconset.Spec{
		{Path: iconset.IOSFileName(60, 3), Size: 60, Scale: 3, Idiom: iconset.IdiomPhone},
		{Path: iconset.IOSFileName(83.5, 2), Size: 83.5, Scale: 2, Idiom: iconset.IdiomPhone},
	}}

	res, err := Generate(src, set, out)
	if err != nil {
		t.Fatal(err)
	}
	if !res.OK() {
		t.Fatalf("failures: %v", res.Failed())
	}

	img := decodePNG(t, filepath.Join(out, "Icon-App-60x60@3x.png"))
	if b := img.Bounds(); b.Dx() != 180 || b.Dy() != 180 {
		t.Errorf("60@3x = %dx%d, want 180x180", b.Dx(), b.Dy())
	}
	img = decodePNG(t, filepath.Join(out, "Icon-App-83.5x83.5@2x.png"))
	if b := img.Bounds(); b.Dx() != 167 || b.Dy() != 167 {
		t.Errorf("83.5@2x = %dx%d, want 167x167", b.Dx(), b.Dy())
	}
}

func TestGenerateExactDimensions(t *testing.T) {
	src := writeSource(t, t.TempDir(), 100, 60)
	out := t.TempDir()

	sizes := [][2]int{{1, 1}, {3, 7}, {100, 1}, {17, 300}, {64, 64}, {100, 60}}
	set := iconset.Set{Platform: "test"}
	for _, s := range sizes {
		set.Specs = append(set.Specs, iconset.Spec{
			Path:  fmt.Sprintf("sizes/%dx%d.png", s[0], s[1]),
			Width: s[0], Height: s[1],
		})
	}

	res, err := Generate(src, set, out)
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range res.Outcomes {
		if o.Err != nil {
			t.Errorf("%s: %v", o.Path, o.Err)
			continue
		}
		b := decodePNG(t, o.Path).Bounds()
		if b.Dx() != o.Spec.Width || b.Dy() != o.Spec.Height {
			t.Errorf("%s = %dx%d, want %dx%d", o.Path, b.Dx(), b.Dy(), o.Spec.Width, o.Spec.Height)
		}
		if o.Width != o.Spec.Width || o.Height != o.Spec.Height {
			t.Errorf("outcome reports %dx%d", o.Width, o.Height)
		}
	}
}

func TestGenerateIdempotent(t *testing.T) {
	src := writeSource(t, t.TempDir(), 300, 300)
	out := t.TempDir()

	if _, err := Generate(src, iconset.WebSet(), out); err != nil {
		t.Fatal(err)
	}
	first := make(map[string][]byte)
	for _, sp := range iconset.WebSet().Specs {
		data, err := os.ReadFile(filepath.Join(out, sp.Path))
		if err != nil {
			t.Fatal(err)
		}
		first[sp.Path] = data
	}

	if _, err := Generate(src, iconset.WebSet(), out); err != nil {
		t.Fatal(err)
	}
	for p, want := range first {
		got, err := os.ReadFile(filepath.Join(out, p))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("%s differs between runs", p)
		}
	}
}

func TestGenerateDuplicatePathLastWins(t *testing.T) {
	src := writeSource(t, t.TempDir(), 64, 64)
	out := t.TempDir()
	set := iconset.Set{Platform: "test", Specs: []iconset.Spec{
		{Path: "icon.png", Width: 16, Height: 16},
		{Path: "icon.png", Width: 32, Height: 24},
	}}

	res, err := Generate(src, set, out)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Written()) != 2 {
		t.Fatalf("written = %d, want 2", len(res.Written()))
	}
	b := decodePNG(t, filepath.Join(out, "icon.png")).Bounds()
	if b.Dx() != 32 || b.Dy() != 24 {
		t.Errorf("icon.png = %dx%d, want 32x24 (last spec)", b.Dx(), b.Dy())
	}
	if n := countFiles(t, out); n != 1 {
		t.Errorf("files = %d, want 1", n)
	}
}

func TestGenerateMissingSource(t *testing.T) {
	out := t.TempDir()
	existing := filepath.Join(out, "keep.png")
	if err := os.WriteFile(existing, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := Generate(filepath.Join(t.TempDir(), "nope.png"), iconset.AndroidSet(), out)
	if res != nil {
		t.Errorf("result = %+v, want nil", res)
	}
	var missing *MissingSourceError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v (%T), want *MissingSourceError", err, err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err should wrap fs.ErrNotExist: %v", err)
	}
	if n := countFiles(t, out); n != 1 {
		t.Errorf("files = %d, want only the pre-existing one", n)
	}
	data, _ := os.ReadFile(existing)
	if string(data) != "old" {
		t.Errorf("pre-existing file modified: %q", data)
	}
}

func TestGenerateMissingSourceDoesNotCreateRoot(t *testing.T) {
	out := filepath.Join(t.TempDir(), "not-yet")
	_, err := Generate(filepath.Join(t.TempDir(), "nope.png"), iconset.WebSet(), out)
	if err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output root created: %v", err)
	}
}

func TestGenerateSourceIsDirectory(t *testing.T) {
	src := filepath.Join(t.TempDir(), "logo.png")
	if err := os.Mkdir(src, 0755); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "out")

	_, err := Generate(src, iconset.WebSet(), out)
	var missing *MissingSourceError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v (%T), want *MissingSourceError", err, err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output root created: %v", err)
	}
}

func TestGenerateUnsupportedFormat(t *testing.T) {
	src := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(src, []byte("this is not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "out")

	_, err := Generate(src, iconset.WebSet(), out)
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("err = %v (%T), want *UnsupportedFormatError", err, err)
	}
	if unsupported.Path != src {
		t.Errorf("Path = %q, want %q", unsupported.Path, src)
	}
	if n := countFiles(t, out); n != 0 {
		t.Errorf("files = %d, want 0", n)
	}
}

func TestGenerateInvalidDimensionContinues(t *testing.T) {
	src := writeSource(t, t.TempDir(), 64, 64)
	out := t.TempDir()
	set := iconset.Set{Platform: "test", Specs: []iconset.Spec{
		{Path: "zero.png", Width: 0, Height: 16},
		{Path: "ok.png", Width: 16, Height: 16},
		{Path: "scaled-zero.png", Size: 0, Scale: 2},
	}}

	res, err := Generate(src, set, out)
	if err != nil {
		t.Fatal(err)
	}
	if res.Attempted != 3 {
		t.Errorf("Attempted = %d, want 3", res.Attempted)
	}
	failed := res.Failed()
	if len(failed) != 2 {
		t.Fatalf("failed = %d, want 2", len(failed))
	}
	for _, f := range failed {
		var dim *InvalidDimensionError
		if !errors.As(f.Err, &dim) {
			t.Errorf("%s: err = %v, want *InvalidDimensionError", f.Path, f.Err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "ok.png")); err != nil {
		t.Errorf("ok.png not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "zero.png")); !os.IsNotExist(err) {
		t.Error("zero.png should not exist")
	}
}

func TestGenerateWriteErrorContinues(t *testing.T) {
	src := writeSource(t, t.TempDir(), 64, 64)
	out := t.TempDir()
	// A regular file where a directory is needed makes MkdirAll fail.
	if err := os.WriteFile(filepath.Join(out, "blocked"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	set := iconset.Set{Platform: "test", Specs: []iconset.Spec{
		{Path: "blocked/icon.png", Width: 16, Height: 16},
		{Path: "fine/icon.png", Width: 16, Height: 16},
	}}

	res, err := Generate(src, set, out)
	if err != nil {
		t.Fatal(err)
	}
	failed := res.Failed()
	if len(failed) != 1 {
		t.Fatalf("failed = %d, want 1", len(failed))
	}
	var werr *WriteError
	if !errors.As(failed[0].Err, &werr) {
		t.Errorf("err = %v, want *WriteError", failed[0].Err)
	}
	if res.OK() {
		t.Error("OK() = true with a failure")
	}
	if _, err := os.Stat(filepath.Join(out, "fine", "icon.png")); err != nil {
		t.Errorf("fine/icon.png not written: %v", err)
	}
}

func TestGeneratePreservesTransparency(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	// Opaque square in the middle, transparent border.
	for y := 16; y < 48; y++ {
		for x := 16; x < 48; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	src := filepath.Join(dir, "logo.png")
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	out := t.TempDir()
	set := iconset.Set{Platform: "test", Specs: []iconset.Spec{{Path: "icon.png", Width: 32, Height: 32}}}
	if _, err := Generate(src, set, out); err != nil {
		t.Fatal(err)
	}

	got := decodePNG(t, filepath.Join(out, "icon.png"))
	if _, _, _, a := got.At(0, 0).RGBA(); a != 0 {
		t.Errorf("corner alpha = %d, want 0 (no background added)", a)
	}
	if _, _, _, a := got.At(16, 16).RGBA(); a < 0xf000 {
		t.Errorf("center alpha = %d, want opaque", a)
	}
}

func TestLoadConvertsJPEG(t *testing.T) {
	dir := t.TempDir()
	src := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			src.Set(x, y, color.RGBA{R: 90, G: 120, B: 200, A: 255})
		}
	}
	p := filepath.Join(dir, "logo.jpg")
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	if err := jpeg.Encode(f, src, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatal(err)
	}
	f.Close()

	img, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 || b.Min != (image.Point{}) {
		t.Errorf("bounds = %v", b)
	}
	if a := img.NRGBAAt(5, 5).A; a != 255 {
		t.Errorf("alpha = %d, want 255", a)
	}
}

func TestToNRGBAKeepsNRGBA(t *testing.T) {
	n := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	if got := toNRGBA(n); got != n {
		t.Error("NRGBA input should be returned as-is")
	}
}

func TestToNRGBAOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 14, 12))
	src.Set(10, 10, color.RGBA{R: 255, A: 255})
	got := toNRGBA(src)
	if got.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Fatalf("bounds = %v", got.Bounds())
	}
	if c := got.NRGBAAt(0, 0); c.R != 255 || c.A != 255 {
		t.Errorf("pixel = %+v", c)
	}
}

func TestGenerateJPEGSourceWritesRGBA(t *testing.T) {
	dir := t.TempDir()
	src := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			src.Set(x, y, color.RGBA{R: uint8(4 * x), G: 80, B: uint8(4 * y), A: 255})
		}
	}
	p := filepath.Join(dir, "logo.jpg")
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	out := t.TempDir()
	res, err := Generate(p, iconset.WebSet(), out)
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range res.Written() {
		if ct := pngColorType(t, o.Path); ct != colorTypeRGBA {
			t.Errorf("%s colour type = %d, want %d", o.Spec.Path, ct, colorTypeRGBA)
		}
	}
	if len(res.Written()) != len(iconset.WebSet().Specs) {
		t.Errorf("written = %d", len(res.Written()))
	}
}
