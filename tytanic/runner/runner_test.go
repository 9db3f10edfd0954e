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

package runner

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/typst-community/tytanic/internal/fsutil"
	"github.com/typst-community/tytanic/tytanic/compare"
	"github.com/typst-community/tytanic/tytanic/diag"
	"github.com/typst-community/tytanic/tytanic/document"
	"github.com/typst-community/tytanic/tytanic/id"
	"github.com/typst-community/tytanic/tytanic/kind"
	"github.com/typst-community/tytanic/tytanic/paths"
	"github.com/typst-community/tytanic/tytanic/store"
	"github.com/typst-community/tytanic/tytanic/vcs"
	"github.com/typst-community/tytanic/tytanic/world"
)

type fakeWorld struct{}

func (fakeWorld) Source(id world.FileID) (world.Source, error) { return world.Source{}, nil }
func (fakeWorld) File(id world.FileID) ([]byte, error)         { return nil, nil }
func (fakeWorld) Font(int) (world.Font, bool)                  { return world.Font{}, false }
func (fakeWorld) Today(*time.Location) (time.Time, bool)        { return time.Time{}, false }
func (fakeWorld) Book() world.FontBook                          { return nil }
func (fakeWorld) Library() world.Library                        { return nil }
func (fakeWorld) Main() world.FileID                            { return world.FileID{Value: "main"} }

type fakeCompiler struct {
	fail bool
}

func (c fakeCompiler) Compile(ctx context.Context, src world.Source, w world.World) (world.CompileResult, *diag.CompileError) {
	if c.fail {
		return world.CompileResult{}, &diag.CompileError{Diagnostics: []diag.Diagnostic{{Message: "boom"}}}
	}
	return world.CompileResult{Pages: 1}, nil
}

type fakeRenderer struct {
	page document.Page
}

func (r fakeRenderer) Render(ctx context.Context, res world.CompileResult) (document.Document, error) {
	return document.Document{Pages: []document.Page{r.page}}, nil
}

func solidPage(c color.RGBA) document.Page {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return document.FromImage(img)
}

func newFixtureStore(t *testing.T) *store.Store {
	t.Helper()
	root := t.TempDir()
	p := paths.New(root)
	fsys := &fsutil.RealFS{}
	gate := vcs.New(fsys, root)
	return store.New(fsys, p, gate)
}

func basePolicy(renderer fakeRenderer, compiler fakeCompiler) Policy {
	return Policy{
		Compiler: compiler,
		Renderer: renderer,
		WorldFor: func(t *store.Test, source []byte) (world.World, error) { return fakeWorld{}, nil },
		Compare:  compare.Strategy{MaxDelta: 0, MaxDeviations: 0},
		Clock:    clock.NewMock(),
		Jobs:     2,
	}
}

func TestRunPassingCompileOnly(t *testing.T) {
	t.Parallel()

	s := newFixtureStore(t)
	test, err := s.Create(id.MustParse("a"), kind.CompileOnly, []byte("src"), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	r := New(s, basePolicy(fakeRenderer{page: solidPage(color.RGBA{1, 2, 3, 255})}, fakeCompiler{}))
	results, err := r.Run(context.Background(), []*store.Test{test}, nil, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 || results[0].Stage != StagePassedCompilation {
		t.Fatalf("results = %+v, want one StagePassedCompilation", results)
	}
}

func TestRunPersistentMatch(t *testing.T) {
	t.Parallel()

	s := newFixtureStore(t)
	test, err := s.Create(id.MustParse("b"), kind.Persistent, []byte("src"), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	page := solidPage(color.RGBA{9, 9, 9, 255})
	if err := s.SaveReferenceDocument(test, document.Document{Pages: []document.Page{page}}, nil); err != nil {
		t.Fatalf("SaveReferenceDocument: %v", err)
	}

	r := New(s, basePolicy(fakeRenderer{page: page}, fakeCompiler{}))
	results, err := r.Run(context.Background(), []*store.Test{test}, nil, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 || results[0].Stage != StagePassedComparison {
		t.Fatalf("results = %+v, want one StagePassedComparison", results)
	}
}

func TestRunPersistentMismatch(t *testing.T) {
	t.Parallel()

	s := newFixtureStore(t)
	test, err := s.Create(id.MustParse("c"), kind.Persistent, []byte("src"), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ref := solidPage(color.RGBA{0, 0, 0, 255})
	if err := s.SaveReferenceDocument(test, document.Document{Pages: []document.Page{ref}}, nil); err != nil {
		t.Fatalf("SaveReferenceDocument: %v", err)
	}

	out := solidPage(color.RGBA{255, 255, 255, 255})
	r := New(s, basePolicy(fakeRenderer{page: out}, fakeCompiler{}))
	results, err := r.Run(context.Background(), []*store.Test{test}, nil, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 || results[0].Stage != StageFailedComparison {
		t.Fatalf("results = %+v, want one StageFailedComparison", results)
	}
}

func TestRunCompileFailure(t *testing.T) {
	t.Parallel()

	s := newFixtureStore(t)
	test, err := s.Create(id.MustParse("d"), kind.CompileOnly, []byte("src"), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	r := New(s, basePolicy(fakeRenderer{page: solidPage(color.RGBA{})}, fakeCompiler{fail: true}))
	results, err := r.Run(context.Background(), []*store.Test{test}, nil, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 || results[0].Stage != StageFailedCompilation {
		t.Fatalf("results = %+v, want one StageFailedCompilation", results)
	}
}

func TestRunFilteredOutCarriedThrough(t *testing.T) {
	t.Parallel()

	s := newFixtureStore(t)
	matched, err := s.Create(id.MustParse("e"), kind.CompileOnly, []byte("src"), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	skipped, err := s.Create(id.MustParse("f"), kind.CompileOnly, []byte("src"), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	r := New(s, basePolicy(fakeRenderer{page: solidPage(color.RGBA{})}, fakeCompiler{}))
	results, err := r.Run(context.Background(), []*store.Test{matched}, []*store.Test{skipped}, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}

	var sawFiltered bool
	for _, res := range results {
		if res.ID.String() == "f" && res.Stage == StageFiltered {
			sawFiltered = true
		}
	}
	if !sawFiltered {
		t.Error("expected test f to be reported as StageFiltered")
	}
}

func TestUpdateRefusesMultipleMatches(t *testing.T) {
	t.Parallel()

	s := newFixtureStore(t)
	a, err := s.Create(id.MustParse("g"), kind.CompileOnly, []byte("src"), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := s.Create(id.MustParse("h"), kind.CompileOnly, []byte("src"), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	policy := basePolicy(fakeRenderer{page: solidPage(color.RGBA{})}, fakeCompiler{})
	policy.Update = true
	r := New(s, policy)

	_, err = r.Run(context.Background(), []*store.Test{a, b}, nil, false)
	var multi *MultipleMatchesError
	if err == nil {
		t.Fatal("expected MultipleMatchesError")
	}
	if _, ok := err.(*MultipleMatchesError); !ok {
		_ = multi
		t.Fatalf("Run() error = %v, want *MultipleMatchesError", err)
	}
}
