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
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/abcxyz/pkg/cli"

	"github.com/typst-community/tytanic/tytanic/id"

	"github.com/typst-community/tytanic/flags"
)

// StatusCommand prints a project summary: the package name derived from
// the root, the detected VCS kind, every collected test, and whether a
// @template test is present.
type StatusCommand struct {
	cli.BaseCommand

	global *flags.GlobalFlags
	json   bool
}

func (c *StatusCommand) Desc() string { return "print a summary of the project" }

func (c *StatusCommand) Help() string {
	return `
Usage: {{ COMMAND }}

Prints the project's package name, detected VCS, and every collected
test, pretty-printed or as JSON when --json is given.
`
}

func (c *StatusCommand) Flags() *cli.FlagSet {
	set := c.NewFlagSet()
	c.global = &flags.GlobalFlags{}
	c.global.Register(set)

	s := set.NewSection("STATUS OPTIONS")
	s.BoolVar(&cli.BoolVar{
		Name:   "json",
		Target: &c.json,
		Usage:  "Print {package, vcs, tests[], template_test} as JSON instead of a pretty tree.",
	})
	return set
}

type statusTest struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	IsSkip bool   `json:"is_skip"`
}

type statusOutput struct {
	Package      string       `json:"package"`
	VCS          string       `json:"vcs"`
	Tests        []statusTest `json:"tests"`
	TemplateTest *string      `json:"template_test"`
}

func (c *StatusCommand) Run(ctx context.Context, args []string) error {
	if err := c.Flags().Parse(args); err != nil {
		return userErr(fmt.Errorf("parsing flags: %w", err))
	}

	proj, err := openProject(c.global)
	if err != nil {
		return err
	}

	out := statusOutput{
		// The manifest parser that would resolve a declared package name
		// is an external collaborator (spec §1); fall back to the
		// project directory's name.
		Package: filepath.Base(proj.Root),
		VCS:     proj.Gate.DetectedKind().String(),
	}
	for _, t := range proj.Suite.All() {
		out.Tests = append(out.Tests, statusTest{
			ID:     t.ID.String(),
			Kind:   t.RefKind.String(),
			IsSkip: t.IsSkip(),
		})
	}
	if tmpl, ok := proj.Suite.Get(id.Template()); ok {
		name := tmpl.ID.String()
		out.TemplateTest = &name
	}

	if c.json {
		enc := json.NewEncoder(c.Stdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encoding status: %w", err)
		}
		return nil
	}

	fmt.Fprintf(c.Stdout(), "package: %s\n", out.Package)
	fmt.Fprintf(c.Stdout(), "vcs: %s\n", out.VCS)
	if out.TemplateTest != nil {
		fmt.Fprintf(c.Stdout(), "template: %s\n", *out.TemplateTest)
	}
	fmt.Fprintf(c.Stdout(), "tests (%d):\n", len(out.Tests))
	for _, t := range out.Tests {
		skip := ""
		if t.IsSkip {
			skip = " (skip)"
		}
		fmt.Fprintf(c.Stdout(), "  %s [%s]%s\n", t.ID, t.Kind, skip)
	}
	if len(proj.Suite.Nested) > 0 {
		fmt.Fprintf(c.Stdout(), "nested tests (%d):\n", len(proj.Suite.Nested))
		for _, n := range proj.Suite.Nested {
			fmt.Fprintf(c.Stdout(), "  %s is nested inside %s\n", n.Child, n.Parent)
		}
	}
	return nil
}
