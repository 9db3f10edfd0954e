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

package document

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"path/filepath"

	"github.com/typst-community/tytanic/internal/fsutil"
)

// Load reads every regular file in dir named "<positive integer>.png",
// decodes each as RGBA8, and returns them as a Document sorted by numeric
// name. A directory that doesn't exist is treated like an empty one.
//
// If the discovered page numbers aren't a non-empty contiguous run
// starting at 1, Load returns a *MissingPagesError naming the page
// numbers that were actually found (this also covers the empty-directory
// case: Found is the empty slice).
func Load(fsys fsutil.FS, dir string) (Document, error) {
	entries, err := discoverPages(fsys, dir)
	if err != nil {
		return Document{}, err
	}

	found := make([]int, len(entries))
	for i, e := range entries {
		found[i] = e.num
	}
	if len(found) == 0 || !isContiguousFrom1(found) {
		return Document{}, &MissingPagesError{Found: found}
	}

	doc := Document{Pages: make([]Page, len(entries))}
	for i, e := range entries {
		raw, err := fsys.ReadFile(filepath.Join(dir, e.name))
		if err != nil {
			return Document{}, fmt.Errorf("document: reading %s: %w", e.name, err)
		}
		img, err := png.Decode(bytes.NewReader(raw))
		if err != nil {
			return Document{}, fmt.Errorf("document: decoding %s: %w", e.name, err)
		}
		doc.Pages[i] = FromImage(img)
	}

	return doc, nil
}

func isContiguousFrom1(found []int) bool {
	for i, n := range found {
		if n != i+1 {
			return false
		}
	}
	return true
}

// Optimizer is the narrow, consumed interface to an external PNG
// optimizer (see spec §6, "PNG codec interface (consumed)":
// optimize(in_path, out_path, options)).
type Optimizer interface {
	Optimize(ctx context.Context, inPath, outPath string) error
}

// Save writes doc's pages to dir as 1.png, 2.png, and so on, creating dir
// if necessary. If optimizer is non-nil, each written PNG is additionally
// passed through it. A failure partway through aborts with the
// underlying error; pages already written are left in place (the caller
// is expected to be working in a fresh output/reference directory, not
// one shared with other state).
func Save(ctx context.Context, fsys fsutil.FS, dir string, doc Document, optimizer Optimizer) error {
	if err := fsys.MkdirAll(dir, fsutil.OwnerRWXPerms); err != nil {
		return fmt.Errorf("document: creating %s: %w", dir, err)
	}

	for i, page := range doc.Pages {
		name := fmt.Sprintf("%d.png", i+1)
		path := filepath.Join(dir, name)

		var buf bytes.Buffer
		if err := png.Encode(&buf, page.Image()); err != nil {
			return fmt.Errorf("document: encoding %s: %w", name, err)
		}
		if err := fsys.WriteFile(path, buf.Bytes(), fsutil.OwnerRWPerms); err != nil {
			return fmt.Errorf("document: writing %s: %w", path, err)
		}

		if optimizer != nil {
			if err := optimizer.Optimize(ctx, path, path); err != nil {
				return fmt.Errorf("document: optimizing %s: %w", path, err)
			}
		}
	}

	return nil
}
