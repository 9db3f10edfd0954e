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

// Package paths maps a project root and a test identifier to every path
// the rest of the core needs: the test dir and the files/dirs under it.
package paths

import (
	"path/filepath"

	"github.com/typst-community/tytanic/tytanic/id"
)

const (
	testsDirName = "tests"

	TestScriptName      = "test.typ"
	ReferenceScriptName = "ref.typ"
	ReferenceDirName    = "ref"
	OutputDirName       = "out"
	DiffDirName         = "diff"
)

// Paths is a value object bound to one project root. It exposes the
// total, deterministic mapping from a test Identifier to its on-disk
// locations described in spec §3.
type Paths struct {
	root string
}

// New returns a Paths rooted at root. root should be an absolute path to
// the project root (the directory that contains the "tests" directory),
// but New does not itself validate or resolve it.
func New(root string) Paths {
	return Paths{root: root}
}

// Root returns the project root directory.
func (p Paths) Root() string {
	return p.root
}

// TestRoot returns the directory under which all tests live.
func (p Paths) TestRoot() string {
	return filepath.Join(p.root, testsDirName)
}

// UnitTestDir returns the directory for the given identifier, i.e. the
// test root extended by each of the identifier's segments as a directory
// component. This is what enables a hierarchical test layout.
func (p Paths) UnitTestDir(i id.Identifier) string {
	segs := i.Segments()
	parts := make([]string, 0, len(segs)+1)
	parts = append(parts, p.TestRoot())
	parts = append(parts, segs...)
	return filepath.Join(parts...)
}

// TestScript returns the path of the test's main source script.
func (p Paths) TestScript(i id.Identifier) string {
	return filepath.Join(p.UnitTestDir(i), TestScriptName)
}

// ReferenceScript returns the path of the test's reference script, used
// only by ephemeral tests.
func (p Paths) ReferenceScript(i id.Identifier) string {
	return filepath.Join(p.UnitTestDir(i), ReferenceScriptName)
}

// ReferenceDir returns the directory holding persistent reference PNGs.
func (p Paths) ReferenceDir(i id.Identifier) string {
	return filepath.Join(p.UnitTestDir(i), ReferenceDirName)
}

// OutputDir returns the directory where rendered output PNGs are written.
func (p Paths) OutputDir(i id.Identifier) string {
	return filepath.Join(p.UnitTestDir(i), OutputDirName)
}

// DiffDir returns the directory where comparison diff PNGs are written.
func (p Paths) DiffDir(i id.Identifier) string {
	return filepath.Join(p.UnitTestDir(i), DiffDirName)
}
