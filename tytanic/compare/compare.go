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

// Package compare implements the visual comparison strategy: per-channel
// pixel deviation counting with configurable tolerances, dimension-aware
// handling of unequal page sizes, and optional diff image emission.
package compare

import (
	"context"
	"fmt"

	"github.com/typst-community/tytanic/internal/fsutil"
	"github.com/typst-community/tytanic/tytanic/document"
)

// Direction is the reading direction used to align pages of differing
// widths when emitting diff images.
type Direction int

const (
	// Ltr aligns narrower pages to the left.
	Ltr Direction = iota
	// Rtl aligns narrower pages to the right.
	Rtl
)

func (d Direction) String() string {
	if d == Rtl {
		return "rtl"
	}
	return "ltr"
}

// Strategy configures a single comparison run.
type Strategy struct {
	// MaxDelta is the maximum per-channel absolute difference a pixel may
	// have before it counts as a deviation.
	MaxDelta uint8
	// MaxDeviations is the number of deviating pixels a page may contain
	// before the page is recorded as failing.
	MaxDeviations int
	// Direction controls diff image alignment for pages of unequal width.
	Direction Direction
}

// Dim is a page's dimensions, used in dimension-mismatch errors.
type Dim struct {
	Width, Height int
}

func dimOf(p document.Page) Dim { return Dim{Width: p.Width, Height: p.Height} }

// PageError describes why a single page pair failed comparison.
type PageError struct {
	Page int

	// Dimensions is set when the output and reference pages differ in
	// size; in that case Deviations is zero and was not computed.
	Dimensions bool
	Output     Dim
	Reference  Dim

	// Deviations is the count of pixels whose maximum per-channel delta
	// exceeded the strategy's MaxDelta, set only when Dimensions is false.
	Deviations int
}

func (e *PageError) Error() string {
	if e.Dimensions {
		return fmt.Sprintf("page %d: dimension mismatch: output %dx%d, reference %dx%d",
			e.Page, e.Output.Width, e.Output.Height, e.Reference.Width, e.Reference.Height)
	}
	return fmt.Sprintf("page %d: %d deviating pixels", e.Page, e.Deviations)
}

// DimensionsError is a run-level error emitted when the output and
// reference documents have different page counts; per-page comparison
// does not run in that case.
type DimensionsError struct {
	Output, Reference int
}

func (e *DimensionsError) Error() string {
	return fmt.Sprintf("page count mismatch: output has %d pages, reference has %d", e.Output, e.Reference)
}

// Result is the outcome of comparing an output document to a reference.
type Result struct {
	// PageErrors holds one entry per page that failed, in ascending page
	// index order. A nil/empty slice means the documents matched.
	PageErrors []*PageError
}

// Failed reports whether any page recorded an error.
func (r Result) Failed() bool { return len(r.PageErrors) > 0 }

// Compare compares out against ref under strategy, returning a
// *DimensionsError if the page counts differ, or a Result detailing any
// per-page failures otherwise.
func Compare(strategy Strategy, out, ref document.Document) (Result, error) {
	if out.Len() != ref.Len() {
		return Result{}, &DimensionsError{Output: out.Len(), Reference: ref.Len()}
	}

	var result Result
	n := out.Len()
	if ref.Len() < n {
		n = ref.Len()
	}

	for i := 0; i < n; i++ {
		op, rp := out.Pages[i], ref.Pages[i]
		if op.Width != rp.Width || op.Height != rp.Height {
			result.PageErrors = append(result.PageErrors, &PageError{
				Page:       i,
				Dimensions: true,
				Output:     dimOf(op),
				Reference:  dimOf(rp),
			})
			continue
		}

		deviations := countDeviations(op, rp, strategy.MaxDelta)
		if deviations > strategy.MaxDeviations {
			result.PageErrors = append(result.PageErrors, &PageError{
				Page:       i,
				Deviations: deviations,
			})
		}
	}

	return result, nil
}

func countDeviations(a, b document.Page, maxDelta uint8) int {
	count := 0
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			ar, ag, ab, aa := a.At(x, y)
			br, bg, bb, ba := b.At(x, y)
			if maxChannelDelta(ar, ag, ab, aa, br, bg, bb, ba) > maxDelta {
				count++
			}
		}
	}
	return count
}

func maxChannelDelta(ar, ag, ab, aa, br, bg, bb, ba uint8) uint8 {
	m := absDelta(ar, br)
	if d := absDelta(ag, bg); d > m {
		m = d
	}
	if d := absDelta(ab, bb); d > m {
		m = d
	}
	if d := absDelta(aa, ba); d > m {
		m = d
	}
	return m
}

func absDelta(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// EmitDiffs writes a diff PNG into dir for every failing page in result,
// per spec: the diff width is the maximum of the two page widths, content
// is the output layered atop the reference with deviating pixels
// highlighted, and pages of unequal width are aligned according to
// strategy.Direction (left for Ltr, right for Rtl).
func EmitDiffs(ctx context.Context, fsys fsutil.FS, dir string, strategy Strategy, out, ref document.Document, result Result) error {
	return emitDiffs(ctx, fsys, dir, strategy, out, ref, result)
}
