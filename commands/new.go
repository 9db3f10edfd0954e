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

package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/abcxyz/pkg/cli"

	"github.com/typst-community/tytanic/tytanic/id"
	"github.com/typst-community/tytanic/tytanic/kind"
	"github.com/typst-community/tytanic/tytanic/store"

	"github.com/typst-community/tytanic/flags"
)

// defaultTestSource is used when no @template test is present (or
// --no-template was given).
const defaultTestSource = "Hello World\n"

// NewCommand creates a new test, writing its initial files and
// registering it with the VCS gate.
type NewCommand struct {
	cli.BaseCommand

	global      *flags.GlobalFlags
	ephemeral   bool
	compileOnly bool
	noTemplate  bool
}

func (c *NewCommand) Desc() string { return "create a new test" }

func (c *NewCommand) Help() string {
	return `
Usage: {{ COMMAND }} TEST

Creates a new persistent test named TEST. The default reference is an
empty ref/ directory, populated by a later "update"; pass --ephemeral to
compile a sibling ref.typ instead, or --compile-only for a test with no
reference at all.

The new test.typ starts from the project's @template test (see
"tests/@template/test.typ"), unless --no-template is given, in which
case it starts from a minimal placeholder document.
`
}

func (c *NewCommand) Flags() *cli.FlagSet {
	set := c.NewFlagSet()
	c.global = &flags.GlobalFlags{}
	c.global.Register(set)

	s := set.NewSection("NEW OPTIONS")
	s.BoolVar(&cli.BoolVar{
		Name:   "ephemeral",
		Target: &c.ephemeral,
		Usage:  "Create the test with an ephemeral (compiled-on-the-fly) reference.",
	})
	s.BoolVar(&cli.BoolVar{
		Name:   "compile-only",
		Target: &c.compileOnly,
		Usage:  "Create the test with no reference; success means it compiles.",
	})
	s.BoolVar(&cli.BoolVar{
		Name:   "no-template",
		Target: &c.noTemplate,
		Usage:  "Don't seed test.typ from the project's @template test.",
	})
	return set
}

func (c *NewCommand) Run(ctx context.Context, args []string) error {
	set := c.Flags()
	if err := set.Parse(args); err != nil {
		return userErr(fmt.Errorf("parsing flags: %w", err))
	}
	if c.ephemeral && c.compileOnly {
		return userErr(fmt.Errorf("--ephemeral and --compile-only are mutually exclusive"))
	}

	if set.Arg(0) == "" {
		return userErr(fmt.Errorf("new: a test name is required"))
	}
	ident, err := id.Parse(set.Arg(0))
	if err != nil {
		return userErr(fmt.Errorf("new: %w", err))
	}

	proj, err := openProject(c.global)
	if err != nil {
		return err
	}

	k := kind.Persistent
	switch {
	case c.ephemeral:
		k = kind.Ephemeral
	case c.compileOnly:
		k = kind.CompileOnly
	}

	source := []byte(defaultTestSource)
	if !c.noTemplate {
		if tmpl, ok := proj.Suite.Get(id.Template()); ok {
			src, err := proj.Store.LoadSource(tmpl)
			if err != nil {
				return userErr(fmt.Errorf("new: loading @template source: %w", err))
			}
			source = src
		}
	}

	t, err := proj.Store.Create(ident, k, source, nil)
	if err != nil {
		var exists *store.ExistsError
		if errors.As(err, &exists) {
			return userErr(fmt.Errorf("new: %w", err))
		}
		return userErr(err)
	}

	fmt.Fprintf(c.Stdout(), "added %s [%s]\n", t.ID, t.RefKind)
	return nil
}
