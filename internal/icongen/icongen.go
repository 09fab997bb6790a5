// Package icongen renders an icon set from a single source image.
//
// Every output is recomputed and overwritten on each run, so reruns are
// idempotent. When two specs share an output path the later one wins.
package icongen

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Mavwarf/appicons/internal/iconset"
	"github.com/Mavwarf/appicons/internal/paths"
)

// Outcome is the result of rendering one spec.
type Outcome struct {
	Spec   iconset.Spec
	Path   string // outputRoot joined with Spec.Path
	Width  int
	Height int
	Err    error // nil on success
}

// Result summarises one platform run.
type Result struct {
	Platform  string
	Attempted int
	Outcomes  []Outcome
}

// Written returns the successful outcomes in spec order.
func (r *Result) Written() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err == nil {
			out = append(out, o)
		}
	}
	return out
}

// Failed returns the failed outcomes in spec order.
func (r *Result) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// OK reports whether every spec was written.
func (r *Result) OK() bool {
	return len(r.Failed()) == 0
}

// Load opens and decodes the source image and converts it to NRGBA so
// that transparency survives resizing.
func Load(sourcePath string) (*image.NRGBA, error) {
	fi, err := os.Stat(sourcePath)
	if err != nil {
		return nil, &MissingSourceError{Path: sourcePath, Err: err}
	}
	if !fi.Mode().IsRegular() {
		return nil, &MissingSourceError{Path: sourcePath, Err: errNotRegular}
	}
	f, err := os.Open(sourcePath)
	if err != nil {
		return nil, &MissingSourceError{Path: sourcePath, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &UnsupportedFormatError{Path: sourcePath, Err: err}
	}
	return toNRGBA(img), nil
}

var errNotRegular = errors.New("not a regular file")

// withAlpha reports the wrapped image as never opaque, so png.Encode
// writes colour type 6 (RGBA) even when every pixel is opaque.
type withAlpha struct{ image.Image }

func (withAlpha) Opaque() bool { return false }

// toNRGBA returns img as non-premultiplied RGBA with its origin at 0,0.
// Images that already are NRGBA are returned unchanged.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Generate renders every spec in set from the image at sourcePath into
// outputRoot. A missing or undecodable source aborts before any write and
// is returned as the error. Per-spec failures are collected in the result
// and do not stop the remaining specs.
func Generate(sourcePath string, set iconset.Set, outputRoot string) (*Result, error) {
	src, err := Load(sourcePath)
	if err != nil {
		return nil, err
	}
	return Render(src, set, outputRoot), nil
}

// Render is Generate for an already decoded source.
func Render(src image.Image, set iconset.Set, outputRoot string) *Result {
	res := &Result{Platform: set.Platform, Attempted: len(set.Specs)}
	for _, sp := range set.Specs {
		res.Outcomes = append(res.Outcomes, renderOne(src, sp, outputRoot))
	}
	return res
}

func renderOne(src image.Image, sp iconset.Spec, outputRoot string) Outcome {
	dest := filepath.Join(outputRoot, filepath.FromSlash(sp.Path))
	w, h := sp.Pixels()
	out := Outcome{Spec: sp, Path: dest, Width: w, Height: h}

	if w <= 0 || h <= 0 {
		out.Err = &InvalidDimensionError{Path: dest, Width: w, Height: h}
		return out
	}

	resized := resize.Resize(uint(w), uint(h), src, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, withAlpha{resized}); err != nil {
		out.Err = &WriteError{Path: dest, Err: err}
		return out
	}
	if err := paths.AtomicWrite(dest, buf.Bytes()); err != nil {
		out.Err = &WriteError{Path: dest, Err: err}
	}
	return out
}
