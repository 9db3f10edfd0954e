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

// Package vcs abstracts ignore-file management for Git-compatible and
// Mercurial-compatible hosts, so that ephemeral and generated test
// artefacts (out/, diff/, and ref/ for non-persistent tests) are not
// accidentally committed.
//
// The detection logic (walking up from the project root looking for
// .git/.jj/.hg) is grounded on the ancestor-search style used by
// templates/common/templatesource/git.go in the teacher repo; the exact
// ignore-file contents are grounded on
// original_source/crates/tytanic-core/src/project/vcs.rs.
package vcs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/typst-community/tytanic/internal/fsutil"
	"github.com/typst-community/tytanic/tytanic/kind"
)

// Kind identifies which VCS (if any) governs a project.
type Kind int

const (
	// None means no recognized VCS was found; Gate operations are no-ops.
	None Kind = iota
	Git
	Mercurial
)

// ignoreFileName is the name of the generated ignore file written inside
// each test's directory.
const ignoreFileName = ".gitignore"

// hgIgnoreFileName is used instead of ignoreFileName when the detected
// VCS is Mercurial.
const hgIgnoreFileName = ".hgignore"

// header marks the file as machine-generated; the file is always
// rewritten wholesale, never merged with user edits.
const header = "# File generated by tytanic; do not edit.\n"

// Gate is the VCS abstraction used by the store. Detection of which VCS
// (if any) governs the project is performed once, lazily, and cached for
// the Gate's lifetime, per spec §4.2 ("Detection is cached for the
// lifetime of a run").
type Gate struct {
	fsys fsutil.FS
	root string // project root; detection walks upward from here

	detected bool
	kind     Kind
}

// New returns a Gate that lazily detects the VCS kind by walking upward
// from root.
func New(fsys fsutil.FS, root string) *Gate {
	return &Gate{fsys: fsys, root: root}
}

// String returns the lowercase name used in status output.
func (k Kind) String() string {
	switch k {
	case Git:
		return "git"
	case Mercurial:
		return "mercurial"
	default:
		return "none"
	}
}

// DetectedKind returns the VCS kind governing the project, detecting and
// caching it on first call.
func (g *Gate) DetectedKind() Kind {
	if !g.detected {
		g.kind = detect(g.fsys, g.root)
		g.detected = true
	}
	return g.kind
}

// detect walks upward from dir looking for a .git, .jj or .hg entry,
// stopping at the filesystem root.
func detect(fsys fsutil.FS, dir string) Kind {
	markers := []struct {
		name string
		kind Kind
	}{
		{".git", Git},
		{".jj", Git}, // jj repos are Git-ignore-compatible
		{".hg", Mercurial},
	}

	dir = filepath.Clean(dir)
	for {
		for _, m := range markers {
			if ok, _ := fsutil.Exists(fsys, filepath.Join(dir, m.name)); ok {
				return m.kind
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return None
		}
		dir = parent
	}
}

// ignoreFileName returns the name of the ignore file for the detected
// VCS kind.
func (g *Gate) ignoreFileName() string {
	if g.DetectedKind() == Mercurial {
		return hgIgnoreFileName
	}
	return ignoreFileName
}

// Ignore writes a single ignore file inside testDir covering diff/,
// out/, and (for non-persistent tests) ref/. It is idempotent: writing
// twice produces byte-identical contents, since the file is always
// rewritten wholesale rather than merged.
func (g *Gate) Ignore(testDir string, k kind.ReferenceKind) error {
	if g.DetectedKind() == None {
		return nil
	}

	var b strings.Builder
	if g.DetectedKind() == Mercurial {
		b.WriteString("syntax: glob\n")
	}
	b.WriteString(header)
	b.WriteString("diff/**\n")
	b.WriteString("out/**\n")
	if k != kind.Persistent {
		b.WriteString("ref/**\n")
	}

	path := filepath.Join(testDir, g.ignoreFileName())
	if err := g.fsys.WriteFile(path, []byte(b.String()), fsutil.OwnerRWPerms); err != nil {
		return fmt.Errorf("vcs: writing ignore file %s: %w", path, err)
	}
	return nil
}

// Unignore removes the ignore file from testDir. A missing file is not
// an error.
func (g *Gate) Unignore(testDir string) error {
	if g.DetectedKind() == None {
		return nil
	}

	path := filepath.Join(testDir, g.ignoreFileName())
	if err := g.fsys.RemoveAll(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("vcs: removing ignore file %s: %w", path, err)
	}
	return nil
}
