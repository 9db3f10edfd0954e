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
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/typst-community/tytanic/internal/fsutil"
	"github.com/typst-community/tytanic/tytanic/document"
	"github.com/typst-community/tytanic/tytanic/id"
	"github.com/typst-community/tytanic/tytanic/kind"
	"github.com/typst-community/tytanic/tytanic/paths"
	"github.com/typst-community/tytanic/tytanic/vcs"
)

// ExistsError is returned by Create when the target test directory
// already exists.
type ExistsError struct {
	ID id.Identifier
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("store: test %s already exists", e.ID)
}

// NestedTestError is reported by Collect when a test directory contains
// another test directory. Nested tests are detected but not loaded.
type NestedTestError struct {
	Parent, Child id.Identifier
}

func (e *NestedTestError) Error() string {
	return fmt.Sprintf("store: test %s is nested inside test %s", e.Child, e.Parent)
}

// Store exposes on-disk CRUD over the Test entity, keeping VCS ignore
// files in sync with each test's kind.
type Store struct {
	fsys  fsutil.FS
	paths paths.Paths
	gate  *vcs.Gate
}

// New returns a Store rooted at paths, using gate to manage VCS ignore
// files.
func New(fsys fsutil.FS, p paths.Paths, gate *vcs.Gate) *Store {
	return &Store{fsys: fsys, paths: p, gate: gate}
}

// Paths returns the path layout the Store is rooted at, for callers
// (e.g. the runner) that need to locate output/diff directories
// alongside the reference artefacts the Store manages directly.
func (s *Store) Paths() paths.Paths { return s.paths }

// FS returns the filesystem abstraction the Store operates on, for
// callers that need to write adjacent artefacts (e.g. diff images) using
// the same fake in tests.
func (s *Store) FS() fsutil.FS { return s.fsys }

// Create makes a new test directory for ident with the given kind,
// writing source as test.typ and referenceSource as ref.typ when kind is
// Ephemeral. It fails with *ExistsError if the test directory already
// exists.
func (s *Store) Create(ident id.Identifier, k kind.ReferenceKind, source, referenceSource []byte) (*Test, error) {
	dir := s.paths.UnitTestDir(ident)
	if exists, err := fsutil.Exists(s.fsys, dir); err != nil {
		return nil, fmt.Errorf("store: checking %s: %w", dir, err)
	} else if exists {
		return nil, &ExistsError{ID: ident}
	}

	if err := s.fsys.MkdirAll(dir, fsutil.OwnerRWXPerms); err != nil {
		return nil, fmt.Errorf("store: creating %s: %w", dir, err)
	}
	if err := s.fsys.WriteFile(s.paths.TestScript(ident), source, fsutil.OwnerRWPerms); err != nil {
		return nil, fmt.Errorf("store: writing test script: %w", err)
	}

	switch k {
	case kind.Ephemeral:
		refSrc := referenceSource
		if refSrc == nil {
			refSrc = source
		}
		if err := s.fsys.WriteFile(s.paths.ReferenceScript(ident), refSrc, fsutil.OwnerRWPerms); err != nil {
			return nil, fmt.Errorf("store: writing reference script: %w", err)
		}
	case kind.Persistent:
		if err := s.fsys.MkdirAll(s.paths.ReferenceDir(ident), fsutil.OwnerRWXPerms); err != nil {
			return nil, fmt.Errorf("store: creating reference dir: %w", err)
		}
	case kind.CompileOnly:
		// No additional artefacts.
	}

	if err := s.gate.Ignore(dir, k); err != nil {
		return nil, fmt.Errorf("store: ignoring %s: %w", dir, err)
	}

	return &Test{ID: ident, RefKind: k, Ignored: isIgnored(source)}, nil
}

// Delete removes t's test directory recursively. A missing directory is
// not an error.
func (s *Store) Delete(t *Test) error {
	dir := s.paths.UnitTestDir(t.ID)
	if err := fsutil.RemoveAllIgnoreNotFound(s.fsys, dir); err != nil {
		return fmt.Errorf("store: deleting %s: %w", dir, err)
	}
	return nil
}

// LoadSource reads t's test.typ.
func (s *Store) LoadSource(t *Test) ([]byte, error) {
	data, err := s.fsys.ReadFile(s.paths.TestScript(t.ID))
	if err != nil {
		return nil, fmt.Errorf("store: reading test script for %s: %w", t.ID, err)
	}
	return data, nil
}

// LoadReferenceSource reads t's ref.typ. Only meaningful for Ephemeral
// tests.
func (s *Store) LoadReferenceSource(t *Test) ([]byte, error) {
	data, err := s.fsys.ReadFile(s.paths.ReferenceScript(t.ID))
	if err != nil {
		return nil, fmt.Errorf("store: reading reference script for %s: %w", t.ID, err)
	}
	return data, nil
}

// LoadReferenceDocument loads t's stored reference pages. Only
// meaningful for Persistent tests.
func (s *Store) LoadReferenceDocument(t *Test) (document.Document, error) {
	return document.Load(s.fsys, s.paths.ReferenceDir(t.ID))
}

// SaveReferenceDocument writes doc as t's stored reference pages,
// optionally optimizing each page, via document.Save.
func (s *Store) SaveReferenceDocument(t *Test, doc document.Document, optimizer document.Optimizer) error {
	return document.Save(context.Background(), s.fsys, s.paths.ReferenceDir(t.ID), doc, optimizer)
}

// CleanArtifacts removes out/ and diff/ (and ref/ for Ephemeral tests)
// recursively, ignoring not-found.
func (s *Store) CleanArtifacts(t *Test) error {
	dirs := []string{s.paths.OutputDir(t.ID), s.paths.DiffDir(t.ID)}
	if t.RefKind == kind.Ephemeral {
		dirs = append(dirs, s.paths.ReferenceDir(t.ID))
	}
	for _, dir := range dirs {
		if err := fsutil.RemoveAllIgnoreNotFound(s.fsys, dir); err != nil {
			return fmt.Errorf("store: cleaning %s: %w", dir, err)
		}
	}
	return nil
}

// MakeKind converts t to target kind k: it deletes all reference
// artefacts, creates the ones required by k (copying test.typ to ref.typ
// for Ephemeral), rewrites the VCS ignore file for k, then mutates t.RefKind in
// place. The deletion-then-creation ordering, rather than an
// overwrite-in-place, is what keeps a half-finished conversion
// recoverable by simply re-running MakeKind.
func (s *Store) MakeKind(t *Test, k kind.ReferenceKind) error {
	if err := s.deleteReferenceArtifacts(t); err != nil {
		return err
	}

	switch k {
	case kind.Ephemeral:
		source, err := s.LoadSource(t)
		if err != nil {
			return err
		}
		if err := s.fsys.WriteFile(s.paths.ReferenceScript(t.ID), source, fsutil.OwnerRWPerms); err != nil {
			return fmt.Errorf("store: writing reference script for %s: %w", t.ID, err)
		}
	case kind.Persistent:
		if err := s.fsys.MkdirAll(s.paths.ReferenceDir(t.ID), fsutil.OwnerRWXPerms); err != nil {
			return fmt.Errorf("store: creating reference dir for %s: %w", t.ID, err)
		}
	case kind.CompileOnly:
		// No artefacts required.
	}

	if err := s.gate.Ignore(s.paths.UnitTestDir(t.ID), k); err != nil {
		return fmt.Errorf("store: re-ignoring %s: %w", t.ID, err)
	}

	t.RefKind = k
	return nil
}

func (s *Store) deleteReferenceArtifacts(t *Test) error {
	if err := fsutil.RemoveAllIgnoreNotFound(s.fsys, s.paths.ReferenceScript(t.ID)); err != nil {
		return fmt.Errorf("store: deleting reference script for %s: %w", t.ID, err)
	}
	if err := fsutil.RemoveAllIgnoreNotFound(s.fsys, s.paths.ReferenceDir(t.ID)); err != nil {
		return fmt.Errorf("store: deleting reference dir for %s: %w", t.ID, err)
	}
	return nil
}

// Collect walks the test root and returns every discovered test, sorted
// by identifier, plus any nested-test conflicts found along the way.
// A test is any directory containing test.typ; its identifier is the
// directory's path relative to the test root. The kind is inferred from
// presence of ref.typ (Ephemeral), else ref/ (Persistent), else
// CompileOnly.
func (s *Store) Collect() ([]*Test, []*NestedTestError, error) {
	root := s.paths.TestRoot()
	testDirs, err := discoverTestDirs(s.fsys, root)
	if err != nil {
		return nil, nil, err
	}

	var (
		tests  []*Test
		nested []*NestedTestError
	)

	for _, dir := range testDirs {
		relative := strings.TrimPrefix(dir, root+"/")
		if relative == "" || relative == root {
			continue
		}
		ident, err := id.Parse(filepath.ToSlash(relative))
		if err != nil {
			return nil, nil, fmt.Errorf("store: invalid test identifier for %s: %w", dir, err)
		}

		isNested := false
		for _, other := range testDirs {
			if other == dir {
				continue
			}
			if isAncestorDir(other, dir) {
				isNested = true
				otherRelative := strings.TrimPrefix(other, root+"/")
				otherID, err := id.Parse(filepath.ToSlash(otherRelative))
				if err == nil {
					nested = append(nested, &NestedTestError{Parent: otherID, Child: ident})
				}
			}
		}
		if isNested {
			continue
		}

		source, err := s.fsys.ReadFile(filepath.Join(dir, paths.TestScriptName))
		if err != nil {
			return nil, nil, fmt.Errorf("store: reading %s: %w", dir, err)
		}

		k, err := inferKind(s.fsys, dir)
		if err != nil {
			return nil, nil, err
		}

		tests = append(tests, &Test{ID: ident, RefKind: k, Ignored: isIgnored(source)})
	}

	sort.Slice(tests, func(i, j int) bool { return tests[i].ID.Less(tests[j].ID) })
	return tests, nested, nil
}

func discoverTestDirs(fsys fsutil.FS, root string) ([]string, error) {
	if exists, err := fsutil.Exists(fsys, root); err != nil {
		return nil, fmt.Errorf("store: checking test root %s: %w", root, err)
	} else if !exists {
		return nil, nil
	}

	var dirs []string
	err := fs.WalkDir(fsys, root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("store: walking %s: %w", path, err)
		}
		if de.IsDir() {
			return nil
		}
		if de.Name() == paths.TestScriptName {
			dirs = append(dirs, filepath.Dir(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}

func isAncestorDir(ancestor, descendant string) bool {
	rel, err := filepath.Rel(ancestor, descendant)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}

func inferKind(fsys fsutil.FS, dir string) (kind.ReferenceKind, error) {
	hasRefScript, err := fsutil.Exists(fsys, filepath.Join(dir, paths.ReferenceScriptName))
	if err != nil {
		return 0, fmt.Errorf("store: checking %s: %w", dir, err)
	}
	if hasRefScript {
		return kind.Ephemeral, nil
	}

	hasRefDir, err := fsutil.Exists(fsys, filepath.Join(dir, paths.ReferenceDirName))
	if err != nil {
		return 0, fmt.Errorf("store: checking %s: %w", dir, err)
	}
	if hasRefDir {
		return kind.Persistent, nil
	}

	return kind.CompileOnly, nil
}

// isIgnored scans the leading run of "///"-prefixed comment lines in
// source for the literal marker "[ignored]".
func isIgnored(source []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(source))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "///") {
			break
		}
		if strings.Contains(line, "[ignored]") {
			return true
		}
	}
	return false
}
