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
	"io"
	"os"
	"time"

	"github.com/abcxyz/pkg/cli"

	"github.com/typst-community/tytanic/internal/typst"
	"github.com/typst-community/tytanic/tytanic/document"
	"github.com/typst-community/tytanic/tytanic/junit"
	"github.com/typst-community/tytanic/tytanic/reporter"
	"github.com/typst-community/tytanic/tytanic/runner"

	"github.com/typst-community/tytanic/flags"
)

// RunCommand compiles and compares the matched tests against their
// references, failing the process if any test doesn't pass.
type RunCommand struct {
	cli.BaseCommand

	global *flags.GlobalFlags
	filter *flags.FilterFlags
	run    *flags.RunFlags
}

func (c *RunCommand) Desc() string { return "compile and compare tests against their references" }

func (c *RunCommand) Help() string {
	return `
Usage: {{ COMMAND }} [TESTS...]

Compiles the matched tests and compares the rendered output against
their stored references. Exits 1 if any test fails.
`
}

func (c *RunCommand) Flags() *cli.FlagSet {
	set := c.NewFlagSet()
	c.global = &flags.GlobalFlags{}
	c.filter = &flags.FilterFlags{}
	c.run = &flags.RunFlags{}
	c.global.Register(set)
	c.filter.Register(set)
	c.run.Register(set)
	return set
}

func (c *RunCommand) Run(ctx context.Context, args []string) error {
	if err := c.Flags().Parse(args); err != nil {
		return userErr(fmt.Errorf("parsing flags: %w", err))
	}
	return runOrUpdate(ctx, c.Stdout(), c.global, c.filter, c.run, false)
}

// UpdateCommand compiles the matched tests and overwrites their stored
// references with the freshly rendered output.
type UpdateCommand struct {
	cli.BaseCommand

	global *flags.GlobalFlags
	filter *flags.FilterFlags
	run    *flags.RunFlags
	all    bool
}

func (c *UpdateCommand) Desc() string { return "compile tests and overwrite their references" }

func (c *UpdateCommand) Help() string {
	return `
Usage: {{ COMMAND }} [TESTS...]

Compiles the matched tests and replaces their stored references with
the freshly rendered output. Refuses to update more than one test at a
time unless --all is given.
`
}

func (c *UpdateCommand) Flags() *cli.FlagSet {
	set := c.NewFlagSet()
	c.global = &flags.GlobalFlags{}
	c.filter = &flags.FilterFlags{}
	c.run = &flags.RunFlags{}
	c.global.Register(set)
	c.filter.Register(set)
	c.run.Register(set)

	s := set.NewSection("UPDATE OPTIONS")
	s.BoolVar(&cli.BoolVar{
		Name:   "all",
		Target: &c.all,
		Usage:  "Allow updating more than one test's reference in a single invocation.",
	})
	return set
}

func (c *UpdateCommand) Run(ctx context.Context, args []string) error {
	if err := c.Flags().Parse(args); err != nil {
		return userErr(fmt.Errorf("parsing flags: %w", err))
	}
	return runOrUpdate(ctx, c.Stdout(), c.global, c.filter, c.run, true, c.all)
}

func runOrUpdate(ctx context.Context, stdout io.Writer, g *flags.GlobalFlags, f *flags.FilterFlags, r *flags.RunFlags, update bool, allowMultiple ...bool) error {
	proj, err := openProject(g)
	if err != nil {
		return err
	}

	partition, err := f.Partition(proj.Suite)
	if err != nil {
		return userErr(err)
	}

	strategy, err := r.CompareStrategy()
	if err != nil {
		return userErr(err)
	}

	backend := typst.Unlinked{}

	policy := runner.Policy{
		Compiler:            backend.Compiler(),
		Renderer:            backend.Renderer(),
		WorldFor:            backend.WorldFor,
		Compare:             strategy,
		EmitDiffs:           !r.NoDiff,
		Update:              update,
		AllowMultipleUpdate: len(allowMultiple) > 0 && allowMultiple[0],
		Jobs:                g.JobsOr(proj.Config, 0),
	}
	if !r.NoOptimize && proj.Config.OptimizeOnUpdateOr(true) {
		policy.Optimizer = &document.ExternalOptimizer{}
	}

	run := runner.New(proj.Store, policy)

	start := time.Now()
	results, err := run.Run(ctx, partition.Matched, partition.FilteredOut, r.FailFast)
	if err != nil {
		var mm *runner.MultipleMatchesError
		if errors.As(err, &mm) {
			return userErr(err)
		}
		return runErr(err)
	}
	elapsed := time.Since(start)

	format := reporter.FormatPretty
	rep := reporter.New(stdout, format, reporter.AutoColor(stdout))
	rep.Results(results)

	if r.JUnitPath != "" {
		if err := writeJUnit(proj, results, r.JUnitPath); err != nil {
			return userErr(err)
		}
	}

	summary := reporter.Summarize(results, elapsed)
	rep.WriteSummary(summary, update, true)

	if !summary.IsOK() {
		failed := summary.Run() - summary.Passed - summary.Updated
		return runErr(fmt.Errorf("%d of %d test(s) failed", failed, summary.Run()))
	}
	return nil
}

func writeJUnit(proj *project, results []runner.TestResult, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating junit report %s: %w", path, err)
	}
	defer f.Close()
	return junit.Write(f, "tytanic", proj.Paths, results, time.Now())
}
