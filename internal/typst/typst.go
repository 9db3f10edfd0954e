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

// Package typst is the seam where a real typesetting-compiler binding
// plugs in. tytanic/world defines the Compiler/World/RenderStrategy
// interfaces the core consumes; nothing in this repository implements
// the compiler itself, per spec §1's "out of scope: the typesetting
// compiler and document model". Backend bundles the three hooks a
// command needs to build a Runner, and Unlinked provides the default
// this binary ships with until a real binding is registered.
package typst

import (
	"context"
	"fmt"

	"github.com/typst-community/tytanic/tytanic/diag"
	"github.com/typst-community/tytanic/tytanic/document"
	"github.com/typst-community/tytanic/tytanic/store"
	"github.com/typst-community/tytanic/tytanic/world"
)

// Backend supplies everything a runner.Policy needs from the compiler
// side: how to compile a source, how to rasterise the result, and how
// to build the World a given test compiles against.
type Backend interface {
	Compiler() world.Compiler
	Renderer() world.RenderStrategy
	WorldFor(t *store.Test, source []byte) (world.World, error)
}

// Unlinked is the Backend wired by default. Every method reports a
// configuration error rather than silently no-oping, so a run fails
// loudly instead of reporting every test as passing.
type Unlinked struct{}

var errNotLinked = fmt.Errorf("typst: no compiler backend is linked into this build")

func (Unlinked) Compiler() world.Compiler             { return unlinkedCompiler{} }
func (Unlinked) Renderer() world.RenderStrategy       { return unlinkedRenderer{} }
func (Unlinked) WorldFor(*store.Test, []byte) (world.World, error) {
	return nil, errNotLinked
}

type unlinkedCompiler struct{}

func (unlinkedCompiler) Compile(context.Context, world.Source, world.World) (world.CompileResult, *diag.CompileError) {
	return world.CompileResult{}, &diag.CompileError{
		Diagnostics: []diag.Diagnostic{{
			Severity: diag.SeverityError,
			Message:  errNotLinked.Error(),
		}},
	}
}

type unlinkedRenderer struct{}

func (unlinkedRenderer) Render(context.Context, world.CompileResult) (document.Document, error) {
	return document.Document{}, errNotLinked
}
