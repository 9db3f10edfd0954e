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

package suite

import (
	"sort"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Suggest returns up to max identifiers in the suite textually closest
// to name, for "did you mean" hints after a *MissingError. Closeness is
// scored the same way as a character-wise diff score: the total length
// of the non-equal diff segments between name and the candidate, fewest
// edits first.
func (s *Suite) Suggest(name string, max int) []string {
	type scored struct {
		id    string
		score int
	}

	dmp := diffmatchpatch.New()
	candidates := make([]scored, 0, len(s.order))
	for _, ident := range s.order {
		other := ident.String()
		diffs := dmp.DiffMain(name, other, false)
		score := 0
		for _, d := range diffs {
			if d.Type != diffmatchpatch.DiffEqual {
				score += len(d.Text)
			}
		}
		candidates = append(candidates, scored{id: other, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score < candidates[j].score })

	if max > len(candidates) {
		max = len(candidates)
	}
	out := make([]string, max)
	for i := 0; i < max; i++ {
		out[i] = candidates[i].id
	}
	return out
}
