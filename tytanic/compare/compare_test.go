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

package compare

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/typst-community/tytanic/internal/fsutil"
	"github.com/typst-community/tytanic/tytanic/document"
)

func page(w, h int, c color.RGBA) document.Page {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return document.FromImage(img)
}

func TestCompareIdentical(t *testing.T) {
	t.Parallel()

	doc := document.Document{Pages: []document.Page{page(2, 2, color.RGBA{1, 2, 3, 255})}}
	result, err := Compare(Strategy{MaxDelta: 0, MaxDeviations: 0}, doc, doc)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if result.Failed() {
		t.Errorf("identical documents reported as failing: %+v", result.PageErrors)
	}
}

func TestCompareDeviationsExceedTolerance(t *testing.T) {
	t.Parallel()

	out := document.Document{Pages: []document.Page{page(2, 2, color.RGBA{0, 0, 0, 255})}}
	ref := document.Document{Pages: []document.Page{page(2, 2, color.RGBA{255, 255, 255, 255})}}

	result, err := Compare(Strategy{MaxDelta: 10, MaxDeviations: 0}, out, ref)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if !result.Failed() {
		t.Fatal("expected failure for fully-divergent pages")
	}
	if got := result.PageErrors[0].Deviations; got != 4 {
		t.Errorf("Deviations = %d, want 4", got)
	}
}

func TestCompareWithinTolerancePasses(t *testing.T) {
	t.Parallel()

	out := document.Document{Pages: []document.Page{page(2, 2, color.RGBA{100, 100, 100, 255})}}
	ref := document.Document{Pages: []document.Page{page(2, 2, color.RGBA{105, 105, 105, 255})}}

	result, err := Compare(Strategy{MaxDelta: 10, MaxDeviations: 0}, out, ref)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if result.Failed() {
		t.Errorf("small delta within tolerance reported as failing: %+v", result.PageErrors)
	}
}

func TestComparePageCountMismatch(t *testing.T) {
	t.Parallel()

	out := document.Document{Pages: []document.Page{page(2, 2, color.RGBA{})}}
	ref := document.Document{Pages: []document.Page{page(2, 2, color.RGBA{}), page(2, 2, color.RGBA{})}}

	_, err := Compare(Strategy{}, out, ref)
	var dimErr *DimensionsError
	if !errors.As(err, &dimErr) {
		t.Fatalf("Compare() error = %v, want *DimensionsError", err)
	}
	if dimErr.Output != 1 || dimErr.Reference != 2 {
		t.Errorf("DimensionsError = %+v, want {Output:1 Reference:2}", dimErr)
	}
}

func TestComparePageDimensionMismatch(t *testing.T) {
	t.Parallel()

	out := document.Document{Pages: []document.Page{page(2, 2, color.RGBA{})}}
	ref := document.Document{Pages: []document.Page{page(3, 3, color.RGBA{})}}

	result, err := Compare(Strategy{}, out, ref)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if !result.Failed() {
		t.Fatal("expected dimension mismatch to fail")
	}
	if !result.PageErrors[0].Dimensions {
		t.Errorf("expected Dimensions error, got %+v", result.PageErrors[0])
	}
}

func TestEmitDiffsWritesFailingPagesOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fsys := &fsutil.RealFS{}

	out := document.Document{Pages: []document.Page{
		page(2, 2, color.RGBA{0, 0, 0, 255}),
		page(2, 2, color.RGBA{10, 10, 10, 255}),
	}}
	ref := document.Document{Pages: []document.Page{
		page(2, 2, color.RGBA{255, 255, 255, 255}),
		page(2, 2, color.RGBA{10, 10, 10, 255}),
	}}

	strategy := Strategy{MaxDelta: 0, MaxDeviations: 0}
	result, err := Compare(strategy, out, ref)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(result.PageErrors) != 1 {
		t.Fatalf("len(PageErrors) = %d, want 1", len(result.PageErrors))
	}

	if err := EmitDiffs(context.Background(), fsys, dir, strategy, out, ref, result); err != nil {
		t.Fatalf("EmitDiffs: %v", err)
	}

	if exists, _ := fsutil.Exists(fsys, dir+"/1.png"); !exists {
		t.Error("expected diff for failing page 1")
	}
	if exists, _ := fsutil.Exists(fsys, dir+"/2.png"); exists {
		t.Error("did not expect diff for passing page 2")
	}
}
