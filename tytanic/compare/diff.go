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
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"path/filepath"

	"github.com/typst-community/tytanic/internal/fsutil"
	"github.com/typst-community/tytanic/tytanic/document"
)

// highlight is the color painted over deviating pixels in a diff image.
var highlight = color.RGBA{R: 255, G: 0, B: 255, A: 255}

func emitDiffs(ctx context.Context, fsys fsutil.FS, dir string, strategy Strategy, out, ref document.Document, result Result) error {
	if len(result.PageErrors) == 0 {
		return nil
	}

	if err := fsys.MkdirAll(dir, fsutil.OwnerRWXPerms); err != nil {
		return fmt.Errorf("compare: creating diff dir %s: %w", dir, err)
	}

	for _, pe := range result.PageErrors {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if pe.Page >= out.Len() || pe.Page >= ref.Len() {
			continue
		}

		img := renderDiff(strategy, out.Pages[pe.Page], ref.Pages[pe.Page])

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("compare: encoding diff for page %d: %w", pe.Page+1, err)
		}

		name := fmt.Sprintf("%d.png", pe.Page+1)
		path := filepath.Join(dir, name)
		if err := fsys.WriteFile(path, buf.Bytes(), fsutil.OwnerRWPerms); err != nil {
			return fmt.Errorf("compare: writing diff %s: %w", path, err)
		}
	}

	return nil
}

// renderDiff draws the reference page, then the output page layered atop
// it, highlighting pixels that deviate beyond the strategy's tolerance.
// The canvas width is the wider of the two pages; for unequal widths the
// narrower page is aligned to the left (Ltr) or right (Rtl).
func renderDiff(strategy Strategy, out, ref document.Page) *image.RGBA {
	width := ref.Width
	if out.Width > width {
		width = out.Width
	}
	height := ref.Height
	if out.Height > height {
		height = out.Height
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))

	refOff := alignOffset(strategy.Direction, width, ref.Width)
	outOff := alignOffset(strategy.Direction, width, out.Width)

	draw.Draw(canvas, image.Rect(refOff, 0, refOff+ref.Width, ref.Height), ref.Image(), image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(outOff, 0, outOff+out.Width, out.Height), out.Image(), image.Point{}, draw.Over)

	if out.Width == ref.Width && out.Height == ref.Height {
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				or, og, ob, oa := out.At(x, y)
				rr, rg, rb, ra := ref.At(x, y)
				if maxChannelDelta(or, og, ob, oa, rr, rg, rb, ra) > strategy.MaxDelta {
					canvas.SetRGBA(x+outOff, y, highlight)
				}
			}
		}
	}

	return canvas
}

func alignOffset(dir Direction, canvasWidth, pageWidth int) int {
	if dir == Rtl {
		return canvasWidth - pageWidth
	}
	return 0
}
