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

// Package store implements on-disk CRUD for tests: creation, collection
// from disk, kind conversion, artefact cleanup, and source/document
// loading and saving, keeping the VCS ignore file in sync throughout.
package store

import (
	"github.com/typst-community/tytanic/tytanic/id"
	"github.com/typst-community/tytanic/tytanic/kind"
)

// Test is a single test's in-memory state. RefKind must always reflect
// the on-disk artefacts present under its test directory; every Store
// mutation that changes artefacts also updates this field.
type Test struct {
	ID      id.Identifier
	RefKind kind.ReferenceKind
	Ignored bool
}

// Identifier, Kind, Tags, and IsSkip satisfy the filter.Test interface so
// a *Test can be evaluated directly against a compiled test-set
// expression without an adapter type.
func (t *Test) Identifier() id.Identifier { return t.ID }

func (t *Test) Kind() kind.ReferenceKind { return t.RefKind }

// Tags returns the test's annotation tags. Only "ignored" is currently
// derived from source comments; user-defined tags are a natural
// extension the on-disk format doesn't yet carry.
func (t *Test) Tags() []string {
	if t.Ignored {
		return []string{"ignored"}
	}
	return nil
}

// IsSkip reports whether the test is annotated to be skipped by default.
func (t *Test) IsSkip() bool { return t.Ignored }
