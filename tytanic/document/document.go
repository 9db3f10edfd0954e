// Copyright 2024 The Authors (see AUTHORS file)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package document implements the in-memory representation of a rendered
// document as an ordered sequence of raster pages, and the codec that
// loads/saves that representation as a directory of numbered PNGs.
//
// Per spec §1/§6, the PNG encode/decode step itself is treated as an
// external, narrow interface ("PNG codec interface (consumed)"); no
// example repo in the corpus imports an image-handling library, so the
// standard library's image/png package is used as that interface's
// reference implementation.
package document

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/typst-community/tytanic/internal/fsutil"
)

// Page is a single rendered page: a row-major RGBA8 raster image.
type Page struct {
	Width, Height int
	// Pix holds the pixels in R, G, B, A, R, G, B, A, ... order, one row
	// at a time, matching image.RGBA.Pix's layout exactly so pages can be
	// wrapped in an *image.RGBA without copying.
	Pix []byte
}

// NewPage returns a Page of the given dimensions, initialized to fully
// transparent black.
func NewPage(width, height int) Page {
	return Page{Width: width, Height: height, Pix: make([]byte, width*height*4)}
}

// FromImage converts a standard library image.Image into a Page, forcing
// it to RGBA8 if it isn't already.
func FromImage(img image.Image) Page {
	if rgba, ok := img.(*image.RGBA); ok {
		b := rgba.Bounds()
		if b.Min.X == 0 && b.Min.Y == 0 && rgba.Stride == b.Dx()*4 {
			return Page{Width: b.Dx(), Height: b.Dy(), Pix: rgba.Pix}
		}
	}

	b := img.Bounds()
	p := NewPage(b.Dx(), b.Dy())
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			off := (y*p.Width + x) * 4
			p.Pix[off+0] = byte(r >> 8)
			p.Pix[off+1] = byte(g >> 8)
			p.Pix[off+2] = byte(bl >> 8)
			p.Pix[off+3] = byte(a >> 8)
		}
	}
	return p
}

// Image returns p as a standard library image, suitable for PNG encoding
// or for use with image/draw.
func (p Page) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    p.Pix,
		Stride: p.Width * 4,
		Rect:   image.Rect(0, 0, p.Width, p.Height),
	}
}

// At returns the RGBA channel values of the pixel at (x, y).
func (p Page) At(x, y int) (r, g, b, a uint8) {
	off := (y*p.Width + x) * 4
	return p.Pix[off], p.Pix[off+1], p.Pix[off+2], p.Pix[off+3]
}

// Document is an ordered sequence of pages, as produced by rendering a
// compiled source or as loaded from a stored reference.
type Document struct {
	Pages []Page
}

// Len returns the number of pages.
func (d Document) Len() int { return len(d.Pages) }

// MissingPagesError is returned by Load when the numbered PNGs in a
// directory have gaps, e.g. 1.png and 3.png present but not 2.png.
type MissingPagesError struct {
	// Found holds the page numbers that were actually present, in
	// ascending order.
	Found []int
}

func (e *MissingPagesError) Error() string {
	return fmt.Sprintf("missing pages: found page numbers %v, expected a contiguous run starting at 1", e.Found)
}

// pngEntry pairs a discovered file with its parsed page number.
type pngEntry struct {
	num  int
	name string
}

// discoverPages lists dir for files named "<positive integer>.png" and
// returns them sorted by page number.
func discoverPages(fsys fsutil.FS, dir string) ([]pngEntry, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("document: reading %s: %w", dir, err)
	}

	var found []pngEntry
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if !strings.HasSuffix(name, ".png") {
			continue
		}
		base := strings.TrimSuffix(name, ".png")
		num, err := strconv.Atoi(base)
		if err != nil || num < 1 {
			continue
		}
		found = append(found, pngEntry{num: num, name: name})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].num < found[j].num })
	return found, nil
}
