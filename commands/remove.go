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
	"fmt"

	"github.com/abcxyz/pkg/cli"

	"github.com/typst-community/tytanic/flags"
)

// RemoveCommand deletes the matched tests. It refuses to remove more
// than one test unless --all is given, mirroring update's
// single-match-by-default guard.
type RemoveCommand struct {
	cli.BaseCommand

	global *flags.GlobalFlags
	filter *flags.FilterFlags
	all    bool
}

func (c *RemoveCommand) Desc() string { return "delete tests" }

func (c *RemoveCommand) Help() string {
	return `
Usage: {{ COMMAND }} [TESTS...]

Deletes the matched tests' directories recursively. Refuses to act on
more than one test at a time unless --all is given.
`
}

func (c *RemoveCommand) Flags() *cli.FlagSet {
	set := c.NewFlagSet()
	c.global = &flags.GlobalFlags{}
	c.filter = &flags.FilterFlags{}
	c.global.Register(set)
	c.filter.Register(set)

	s := set.NewSection("REMOVE OPTIONS")
	s.BoolVar(&cli.BoolVar{
		Name:   "all",
		Target: &c.all,
		Usage:  "Allow deleting more than one test in a single invocation.",
	})
	return set
}

func (c *RemoveCommand) Run(ctx context.Context, args []string) error {
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

	if len(partition.Matched) == 0 {
		return userErr(fmt.Errorf("remove: no tests matched"))
	}
	if len(partition.Matched) > 1 && !c.all {
		return userErr(fmt.Errorf("remove: %d tests matched, pass --all to delete more than one", len(partition.Matched)))
	}

	for _, t := range partition.Matched {
		if err := proj.Store.Delete(t); err != nil {
			return userErr(fmt.Errorf("remove: deleting %s: %w", t.ID, err))
		}
		fmt.Fprintf(c.Stdout(), "removed %s\n", t.ID)
	}
	return nil
}
