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

	"github.com/abcxyz/pkg/cli"

	"github.com/typst-community/tytanic/tytanic/store"

	"github.com/typst-community/tytanic/flags"
)

// ListCommand prints the tests matched by the active filter.
type ListCommand struct {
	cli.BaseCommand

	global *flags.GlobalFlags
	filter *flags.FilterFlags
	json   bool
}

func (c *ListCommand) Desc() string { return "list the tests matched by the current filter" }

func (c *ListCommand) Help() string {
	return `
Usage: {{ COMMAND }} [TESTS...]

Prints every test matched by --expression (or the explicit TESTs), one
per line, or as a JSON array when --json is given.
`
}

func (c *ListCommand) Flags() *cli.FlagSet {
	set := c.NewFlagSet()
	c.global = &flags.GlobalFlags{}
	c.filter = &flags.FilterFlags{}
	c.global.Register(set)
	c.filter.Register(set)

	s := set.NewSection("LIST OPTIONS")
	s.BoolVar(&cli.BoolVar{
		Name:   "json",
		Target: &c.json,
		Usage:  "Print a JSON array of {id, kind, is_skip, path} instead of plain text.",
	})
	return set
}

// listEntry is the JSON shape of a single matched test, per spec §6's
// "Machine output (--json)" table for list.
type listEntry struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	IsSkip bool   `json:"is_skip"`
	Path   string `json:"path"`
}

func (c *ListCommand) Run(ctx context.Context, args []string) error {
	if err := c.Flags().Parse(args); err != nil {
		return userErr(fmt.Errorf("parsing flags: %w", err))
	}

	proj, err := openProject(c.global)
	if err != nil {
		return err
	}

	partition, err := c.filter.Partition(proj.Suite)
	if err != nil {
		return userErr(err)
	}

	if c.json {
		return c.writeJSON(proj, partition.Matched)
	}
	return c.writePlain(proj, partition.Matched)
}

func (c *ListCommand) writeJSON(proj *project, tests []*store.Test) error {
	entries := make([]listEntry, len(tests))
	for i, t := range tests {
		entries[i] = listEntry{
			ID:     t.ID.String(),
			Kind:   t.RefKind.String(),
			IsSkip: t.IsSkip(),
			Path:   proj.Paths.UnitTestDir(t.ID),
		}
	}
	enc := json.NewEncoder(c.Stdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encoding tests: %w", err)
	}
	return nil
}

func (c *ListCommand) writePlain(proj *project, tests []*store.Test) error {
	for _, t := range tests {
		fmt.Fprintln(c.Stdout(), t.ID.String())
	}
	return nil
}
