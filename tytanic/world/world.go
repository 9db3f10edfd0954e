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

// Package world defines the narrow interfaces the core consumes from the
// typesetting compiler: compiling a source into a Document, and the
// World a compilation runs against (sources, fonts, the standard
// library, the clock). None of this is implemented here — per spec §1
// and §6 the compiler itself is an external collaborator — but the core
// packages (runner, in particular) are written against these interfaces
// so a real compiler binding can be swapped in without touching them.
package world

import (
	"context"
	"time"

	"github.com/typst-community/tytanic/tytanic/diag"
	"github.com/typst-community/tytanic/tytanic/document"
)

// FileID identifies a file within a World; re-exported from diag so
// callers of this package don't need to import diag just to name a file.
type FileID = diag.FileID

// Source is a single parsed or unparsed source file's contents.
type Source struct {
	ID   FileID
	Text string
}

// Font is an opaque handle to a loaded font face; its internals are the
// compiler's concern.
type Font struct {
	Index int
	Name  string
}

// FontBook indexes the fonts available to a compilation.
type FontBook interface {
	Font(index int) (Font, bool)
	Len() int
}

// Library is the compiler's standard library/scope; opaque to the core.
type Library interface {
	Name() string
}

// World is everything a single compilation needs from its environment.
type World interface {
	Source(id FileID) (Source, error)
	File(id FileID) ([]byte, error)
	Font(index int) (Font, bool)
	Today(loc *time.Location) (time.Time, bool)
	Book() FontBook
	Library() Library
	Main() FileID
}

// CompileResult is the rasterizable output of a successful compilation.
type CompileResult struct {
	// Pages are abstract, not yet rasterized; RenderStrategy.Render turns
	// them into a document.Document at a given resolution.
	Pages int
}

// Compiler compiles a source against a World.
type Compiler interface {
	Compile(ctx context.Context, source Source, w World) (CompileResult, *diag.CompileError)
}

// RenderStrategy rasterises a CompileResult at a configurable
// pixels-per-inch, producing the in-memory Document the comparator and
// store operate on.
type RenderStrategy interface {
	Render(ctx context.Context, result CompileResult) (document.Document, error)
}
