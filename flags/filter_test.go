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

package flags

import (
	"testing"

	"github.com/abcxyz/pkg/cli"

	"github.com/typst-community/tytanic/internal/fsutil"
	"github.com/typst-community/tytanic/tytanic/id"
	"github.com/typst-community/tytanic/tytanic/kind"
	"github.com/typst-community/tytanic/tytanic/paths"
	"github.com/typst-community/tytanic/tytanic/store"
	"github.com/typst-community/tytanic/tytanic/suite"
	"github.com/typst-community/tytanic/tytanic/vcs"
)

type filterTestCommand struct {
	cli.BaseCommand
	FilterFlags
}

func (c *filterTestCommand) Flags() *cli.FlagSet {
	set := c.NewFlagSet()
	c.FilterFlags.Register(set)
	return set
}

func TestFilterFlagsDefaultSkip(t *testing.T) {
	t.Parallel()

	c := &filterTestCommand{}
	if err := c.Flags().Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !c.AutoSkip() {
		t.Error("AutoSkip() = false, want true by default")
	}
}

func TestFilterFlagsNoSkip(t *testing.T) {
	t.Parallel()

	c := &filterTestCommand{}
	if err := c.Flags().Parse([]string{"--no-skip"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.AutoSkip() {
		t.Error("AutoSkip() = true after --no-skip, want false")
	}
}

func newFixtureSuite(t *testing.T) *suite.Suite {
	t.Helper()

	root := t.TempDir()
	p := paths.New(root)
	fsys := &fsutil.RealFS{}
	gate := vcs.New(fsys, root)
	s := store.New(fsys, p, gate)

	if _, err := s.Create(id.MustParse("a"), kind.CompileOnly, []byte("src"), nil); err != nil {
		t.Fatalf("Create a: %v", err)
	}
	if _, err := s.Create(id.MustParse("b"), kind.Persistent, []byte("src"), nil); err != nil {
		t.Fatalf("Create b: %v", err)
	}

	suite, err := suite.Collect(s)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return suite
}

func TestPartitionExplicitPositional(t *testing.T) {
	t.Parallel()

	f := &FilterFlags{Tests: []string{"a"}}
	part, err := f.Partition(newFixtureSuite(t))
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if len(part.Matched) != 1 || part.Matched[0].ID.String() != "a" {
		t.Errorf("Matched = %+v, want just test a", part.Matched)
	}
}

func TestPartitionExpression(t *testing.T) {
	t.Parallel()

	f := &FilterFlags{Expression: "persistent()", Skip: true}
	part, err := f.Partition(newFixtureSuite(t))
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if len(part.Matched) != 1 || part.Matched[0].ID.String() != "b" {
		t.Errorf("Matched = %+v, want just test b", part.Matched)
	}
}
