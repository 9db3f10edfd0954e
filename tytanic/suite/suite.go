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

// Package suite collects tests discovered on disk and partitions them
// according to a filter, either an explicit identifier set or a compiled
// test-set expression.
package suite

import (
	"fmt"
	"sort"

	"github.com/typst-community/tytanic/tytanic/filter"
	"github.com/typst-community/tytanic/tytanic/id"
	"github.com/typst-community/tytanic/tytanic/store"
)

// Suite is the full collection of tests under a project, plus the
// nested-test conflicts observed while collecting them.
type Suite struct {
	tests  map[string]*store.Test // keyed by id.Identifier.String()
	order  []id.Identifier
	Nested []*store.NestedTestError
}

// Collect populates a Suite from s.
func Collect(s *store.Store) (*Suite, error) {
	tests, nested, err := s.Collect()
	if err != nil {
		return nil, fmt.Errorf("suite: collecting: %w", err)
	}

	suite := &Suite{
		tests:  make(map[string]*store.Test, len(tests)),
		order:  make([]id.Identifier, 0, len(tests)),
		Nested: nested,
	}
	for _, t := range tests {
		suite.tests[t.ID.String()] = t
		suite.order = append(suite.order, t.ID)
	}
	sort.Slice(suite.order, func(i, j int) bool { return suite.order[i].Less(suite.order[j]) })

	return suite, nil
}

// Len returns the number of tests in the suite.
func (s *Suite) Len() int { return len(s.order) }

// All returns every test in identifier order.
func (s *Suite) All() []*store.Test {
	out := make([]*store.Test, len(s.order))
	for i, ident := range s.order {
		out[i] = s.tests[ident.String()]
	}
	return out
}

// Get returns the test with the given identifier, if present.
func (s *Suite) Get(ident id.Identifier) (*store.Test, bool) {
	t, ok := s.tests[ident.String()]
	return t, ok
}

// MissingError is returned by FilterExplicit when one or more requested
// identifiers aren't present in the suite.
type MissingError struct {
	IDs []id.Identifier
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("suite: %d test(s) not found: %v", len(e.IDs), e.IDs)
}

// Partition is the result of applying a filter to a Suite: the tests
// that matched, and the tests that were filtered out, both in
// identifier order.
type Partition struct {
	Matched    []*store.Test
	FilteredOut []*store.Test
}

// FilterExplicit selects exactly the tests named by ids. Any identifier
// absent from the suite is reported via *MissingError; the returned
// Partition is still populated with whatever matched.
func (s *Suite) FilterExplicit(ids []id.Identifier) (Partition, error) {
	wanted := make(map[string]bool, len(ids))
	for _, i := range ids {
		wanted[i.String()] = true
	}

	var part Partition
	var missing []id.Identifier
	for _, i := range ids {
		if _, ok := s.tests[i.String()]; !ok {
			missing = append(missing, i)
		}
	}

	for _, ident := range s.order {
		t := s.tests[ident.String()]
		if wanted[ident.String()] {
			part.Matched = append(part.Matched, t)
		} else {
			part.FilteredOut = append(part.FilteredOut, t)
		}
	}

	if len(missing) > 0 {
		return part, &MissingError{IDs: missing}
	}
	return part, nil
}

// FilterSet applies a compiled test-set expression to every test in the
// suite. When autoSkip is true, tests matched by skip() are additionally
// excluded, by intersecting the supplied set with !skip() — the
// "optional automatic diff with skip()" named in spec §4.7.
func (s *Suite) FilterSet(set filter.Set, autoSkip bool) Partition {
	var part Partition
	for _, ident := range s.order {
		t := s.tests[ident.String()]
		matched := set.Contains(t)
		if matched && autoSkip && t.IsSkip() {
			matched = false
		}
		if matched {
			part.Matched = append(part.Matched, t)
		} else {
			part.FilteredOut = append(part.FilteredOut, t)
		}
	}
	return part
}
