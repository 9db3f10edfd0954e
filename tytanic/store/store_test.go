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

package store

import (
	"errors"
	"testing"

	"github.com/typst-community/tytanic/internal/fsutil"
	"github.com/typst-community/tytanic/testutil"
	"github.com/typst-community/tytanic/tytanic/id"
	"github.com/typst-community/tytanic/tytanic/kind"
	"github.com/typst-community/tytanic/tytanic/paths"
	"github.com/typst-community/tytanic/tytanic/vcs"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	p := paths.New(root)
	fsys := &fsutil.RealFS{}
	gate := vcs.New(fsys, root)
	return New(fsys, p, gate), root
}

func TestCreatePersistentAndCollect(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ident := id.MustParse("foo")

	created, err := s.Create(ident, kind.Persistent, []byte("content"), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.RefKind != kind.Persistent {
		t.Errorf("RefKind = %v, want Persistent", created.RefKind)
	}

	tests, nested, err := s.Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(nested) != 0 {
		t.Errorf("unexpected nested tests: %v", nested)
	}
	if len(tests) != 1 {
		t.Fatalf("len(tests) = %d, want 1", len(tests))
	}
	if tests[0].RefKind != kind.Persistent {
		t.Errorf("collected RefKind = %v, want Persistent", tests[0].RefKind)
	}
}

func TestCreateEphemeral(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ident := id.MustParse("bar")

	_, err := s.Create(ident, kind.Ephemeral, []byte("src"), []byte("ref-src"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tests, _, err := s.Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(tests) != 1 || tests[0].RefKind != kind.Ephemeral {
		t.Fatalf("collected tests = %+v, want one Ephemeral test", tests)
	}
}

// TestCreateOnDiskShape asserts the exact file tree spec §3's kind
// table requires, for each kind, with no VCS directory present (so no
// ignore file is written).
func TestCreateOnDiskShape(t *testing.T) {
	t.Parallel()

	s, root := newTestStore(t)

	if _, err := s.Create(id.MustParse("p"), kind.Persistent, []byte("src"), nil); err != nil {
		t.Fatalf("Create persistent: %v", err)
	}
	if _, err := s.Create(id.MustParse("e"), kind.Ephemeral, []byte("src"), []byte("ref-src")); err != nil {
		t.Fatalf("Create ephemeral: %v", err)
	}
	if _, err := s.Create(id.MustParse("c"), kind.CompileOnly, []byte("src"), nil); err != nil {
		t.Fatalf("Create compile-only: %v", err)
	}

	got := testutil.LoadDirWithoutMode(t, root)
	want := map[string]string{
		"tests/p/test.typ": "src",
		"tests/e/test.typ": "src",
		"tests/e/ref.typ":  "ref-src",
		"tests/c/test.typ": "src",
	}
	for name, contents := range want {
		if got[platformKey(name)] != contents {
			t.Errorf("%s = %q, want %q", name, got[platformKey(name)], contents)
		}
	}
	for _, absent := range []string{"tests/e/ref", "tests/c/ref", "tests/c/ref.typ"} {
		if _, ok := got[platformKey(absent)]; ok {
			t.Errorf("%s should not exist", absent)
		}
	}
}

func platformKey(s string) string {
	keys := []string{s}
	testutil.ToPlatformPaths(keys)
	return keys[0]
}

func TestCreateExistsFails(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ident := id.MustParse("dup")

	if _, err := s.Create(ident, kind.CompileOnly, []byte("src"), nil); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := s.Create(ident, kind.CompileOnly, []byte("src"), nil)
	var exists *ExistsError
	if !errors.As(err, &exists) {
		t.Fatalf("second Create error = %v, want *ExistsError", err)
	}
}

func TestIgnoredAnnotation(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ident := id.MustParse("skipme")

	source := []byte("/// [ignored]\n/// because flaky\n#set page(width: 1pt)")
	if _, err := s.Create(ident, kind.CompileOnly, source, nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tests, _, err := s.Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(tests) != 1 || !tests[0].Ignored {
		t.Fatalf("collected tests = %+v, want one Ignored test", tests)
	}
}

func TestMakeKindPersistentToCompileOnly(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ident := id.MustParse("convert")

	test, err := s.Create(ident, kind.Persistent, []byte("src"), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.MakeKind(test, kind.CompileOnly); err != nil {
		t.Fatalf("MakeKind: %v", err)
	}
	if test.RefKind != kind.CompileOnly {
		t.Errorf("RefKind = %v, want CompileOnly", test.RefKind)
	}

	if exists, _ := fsutil.Exists(&fsutil.RealFS{}, s.paths.ReferenceDir(ident)); exists {
		t.Error("reference dir should have been removed")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ident := id.MustParse("gone")

	test, err := s.Create(ident, kind.CompileOnly, []byte("src"), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Delete(test); err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	if err := s.Delete(test); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestCollectNestedTests(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	outer := id.MustParse("outer")
	inner := id.MustParse("outer/inner")

	if _, err := s.Create(outer, kind.CompileOnly, []byte("src"), nil); err != nil {
		t.Fatalf("Create outer: %v", err)
	}
	if _, err := s.Create(inner, kind.CompileOnly, []byte("src"), nil); err != nil {
		t.Fatalf("Create inner: %v", err)
	}

	_, nested, err := s.Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(nested) == 0 {
		t.Fatal("expected nested test to be reported")
	}
}
