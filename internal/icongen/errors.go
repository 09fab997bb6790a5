package icongen

import "fmt"

// MissingSourceError reports a source image that does not exist or cannot
// be opened. It aborts the run before anything is written.
type MissingSourceError struct {
	Path string
	Err  error
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("source image %s: %v", e.Path, e.Err)
}

func (e *MissingSourceError) Unwrap() error { return e.Err }

// UnsupportedFormatError reports a source file that could not be decoded
// as an image. It aborts the run before anything is written.
type UnsupportedFormatError struct {
	Path string
	Err  error
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Path, e.Err)
}

func (e *UnsupportedFormatError) Unwrap() error { return e.Err }

// InvalidDimensionError reports a spec that resolves to a non-positive
// pixel size. Only that spec fails.
type InvalidDimensionError struct {
	Path          string
	Width, Height int
}

func (e *InvalidDimensionError) Error() string {
	return fmt.Sprintf("%s: invalid dimensions %dx%d", e.Path, e.Width, e.Height)
}

// WriteError reports an output that could not be encoded or written.
// Only that spec fails.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
