// Package manifest writes the Contents.json descriptor of an iOS app icon
// set.
package manifest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/Mavwarf/appicons/internal/iconset"
	"github.com/Mavwarf/appicons/internal/paths"
)

// FileName is the asset catalog descriptor name.
const FileName = "Contents.json"

// Image is one entry of the images array.
type Image struct {
	Filename string `json:"filename"`
	Idiom    string `json:"idiom"`
	Scale    string `json:"scale"`
	Size     string `json:"size"`
}

// Info identifies the generator of the catalog.
type Info struct {
	Author  string `json:"author"`
	Version int    `json:"version"`
}

// Manifest is the Contents.json document.
type Manifest struct {
	Images []Image `json:"images"`
	Info   Info    `json:"info"`
}

// Build returns the manifest for the scale-based specs of set, ordered by
// nominal size and then scale. Specs without a scale are skipped.
func Build(set iconset.Set) Manifest {
	specs := make([]iconset.Spec, 0, len(set.Specs))
	for _, sp := range set.Specs {
		if sp.Scaled() {
			specs = append(specs, sp)
		}
	}
	sort.SliceStable(specs, func(i, j int) bool {
		if specs[i].Size != specs[j].Size {
			return specs[i].Size < specs[j].Size
		}
		return specs[i].Scale < specs[j].Scale
	})

	m := Manifest{
		Images: make([]Image, 0, len(specs)),
		Info:   Info{Author: "xcode", Version: 1},
	}
	for _, sp := range specs {
		idiom := sp.Idiom
		if idiom == "" {
			idiom = iconset.IdiomPhone
		}
		m.Images = append(m.Images, Image{
			Filename: filepath.Base(filepath.FromSlash(sp.Path)),
			Idiom:    idiom,
			Scale:    sp.ScaleLabel(),
			Size:     sp.SizeLabel(),
		})
	}
	return m
}

// Marshal encodes m with two-space indentation and a trailing newline.
func Marshal(m Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Write regenerates outputRoot/Contents.json for set, replacing any
// existing file in full. It returns the path written.
func Write(set iconset.Set, outputRoot string) (string, error) {
	data, err := Marshal(Build(set))
	if err != nil {
		return "", fmt.Errorf("manifest: encode: %w", err)
	}
	p := filepath.Join(outputRoot, FileName)
	if err := paths.AtomicWrite(p, data); err != nil {
		return "", fmt.Errorf("manifest: %w", err)
	}
	return p, nil
}
