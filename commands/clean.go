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

// CleanCommand removes the out/ and diff/ trees (and, for ephemeral
// tests, the generated ref/ tree) of every matched test.
type CleanCommand struct {
	cli.BaseCommand

	global *flags.GlobalFlags
	filter *flags.FilterFlags
}

func (c *CleanCommand) Desc() string { return "remove generated out/ and diff/ artifacts" }

func (c *CleanCommand) Help() string {
	return `
Usage: {{ COMMAND }} [TESTS...]

Removes the out/ and diff/ directories (and ref/ for ephemeral tests)
of every matched test.
`
}

func (c *CleanCommand) Flags() *cli.FlagSet {
	set := c.NewFlagSet()
	c.global = &flags.GlobalFlags{}
	c.filter = &flags.FilterFlags{}
	c.global.Register(set)
	c.filter.Register(set)
	return set
}

func (c *CleanCommand) Run(ctx context.Context, args []string) error {
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

	for _, t := range partition.Matched {
		if err := proj.Store.CleanArtifacts(t); err != nil {
			return userErr(fmt.Errorf("util clean: cleaning %s: %w", t.ID, err))
		}
	}
	fmt.Fprintf(c.Stdout(), "cleaned %d test(s)\n", len(partition.Matched))
	return nil
}
