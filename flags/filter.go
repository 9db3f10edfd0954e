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
	"fmt"
	"strings"

	"github.com/abcxyz/pkg/cli"

	"github.com/typst-community/tytanic/tytanic/filter"
	"github.com/typst-community/tytanic/tytanic/id"
	"github.com/typst-community/tytanic/tytanic/suite"
)

// FilterFlags selects which tests in a suite a command applies to:
// either an explicit list of identifiers (positional TESTs) or a
// compiled test-set expression (--expression), never both.
type FilterFlags struct {
	Expression string
	Skip       bool
	NoSkip     bool
	Tests      []string
}

func (f *FilterFlags) Register(set *cli.FlagSet) {
	s := set.NewSection("FILTER OPTIONS")

	s.StringVar(&cli.StringVar{
		Name:    "expression",
		Aliases: []string{"e"},
		Example: "ephemeral() & !skip()",
		Target:  &f.Expression,
		Default: "all()",
		Usage:   "A test-set expression selecting which tests to operate on. Builtins: " + strings.Join(filter.BuiltinNames(), ", ") + ".",
	})

	s.BoolVar(&cli.BoolVar{
		Name:    "skip",
		Target:  &f.Skip,
		Default: true,
		Usage:   "Automatically exclude tests matched by skip().",
	})

	s.BoolVar(&cli.BoolVar{
		Name:    "no-skip",
		Target:  &f.NoSkip,
		Default: false,
		Usage:   "Include tests matched by skip() instead of excluding them.",
	})

	set.AfterParse(func(existingErr error) error {
		f.Tests = set.Args()
		return nil
	})
}

// AutoSkip reports whether skip()-matching tests should be excluded.
func (f *FilterFlags) AutoSkip() bool {
	return f.Skip && !f.NoSkip
}

// Partition resolves this flag set against s: explicit positional
// TESTs take precedence over --expression (they are mutually exclusive
// selection modes, per spec §4.7), and fall back to --expression
// (default "all()") otherwise.
func (f *FilterFlags) Partition(s *suite.Suite) (suite.Partition, error) {
	if len(f.Tests) > 0 {
		ids := make([]id.Identifier, len(f.Tests))
		for i, raw := range f.Tests {
			parsed, err := id.Parse(raw)
			if err != nil {
				return suite.Partition{}, fmt.Errorf("flags: invalid test identifier %q: %w", raw, err)
			}
			ids[i] = parsed
		}
		return s.FilterExplicit(ids)
	}

	expr := f.Expression
	if expr == "" {
		expr = "all()"
	}
	set, err := filter.Compile(expr)
	if err != nil {
		return suite.Partition{}, fmt.Errorf("flags: compiling --expression: %w", err)
	}
	return s.FilterSet(set, f.AutoSkip()), nil
}
