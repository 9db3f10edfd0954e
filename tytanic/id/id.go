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

// Package id implements the test identifier grammar: a slash-separated,
// validated name that maps 1:1 to a directory under the test root.
package id

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/exp/slices"
)

// TemplateSegment is the reserved segment name for the template test. It
// may only appear as the entire (single-segment) identifier.
const TemplateSegment = "@template"

// segmentRe matches one valid path segment.
var segmentRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ErrInvalid is returned (wrapped) by Parse when the input doesn't satisfy
// the identifier grammar.
var ErrInvalid = errors.New("invalid identifier")

// Identifier is a validated, slash-separated test name. The zero value is
// not a valid Identifier; always construct one with Parse.
type Identifier struct {
	segments []string
}

// Parse validates s against the identifier grammar and returns the parsed
// Identifier. s must be non-empty, made of one or more segments separated
// by single "/" characters (no leading, trailing, or consecutive
// separators), each segment matching [A-Za-z0-9_.-]+. The literal segment
// "@template" is only valid as the sole segment of the identifier.
func Parse(s string) (Identifier, error) {
	if s == "" {
		return Identifier{}, fmt.Errorf("%w: %q: empty identifier", ErrInvalid, s)
	}
	if strings.HasPrefix(s, "/") || strings.HasSuffix(s, "/") {
		return Identifier{}, fmt.Errorf("%w: %q: leading or trailing separator", ErrInvalid, s)
	}

	segments := strings.Split(s, "/")
	for i, seg := range segments {
		if seg == "" {
			return Identifier{}, fmt.Errorf("%w: %q: consecutive separators", ErrInvalid, s)
		}
		if seg == TemplateSegment {
			if len(segments) != 1 {
				return Identifier{}, fmt.Errorf("%w: %q: %q is only valid as the whole identifier", ErrInvalid, s, TemplateSegment)
			}
			continue
		}
		if !segmentRe.MatchString(seg) {
			return Identifier{}, fmt.Errorf("%w: %q: segment %d (%q) contains invalid characters", ErrInvalid, s, i, seg)
		}
	}

	return Identifier{segments: segments}, nil
}

// MustParse is like Parse but panics on error. Intended for literals in
// tests and static initializers.
func MustParse(s string) Identifier {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Template returns the reserved identifier for the template test.
func Template() Identifier {
	return Identifier{segments: []string{TemplateSegment}}
}

// IsTemplate reports whether id is the reserved template identifier.
func (i Identifier) IsTemplate() bool {
	return len(i.segments) == 1 && i.segments[0] == TemplateSegment
}

// Segments returns the path segments of id. The caller must not mutate the
// returned slice.
func (i Identifier) Segments() []string {
	return i.segments
}

// String returns the canonical slash-separated form of id.
func (i Identifier) String() string {
	return strings.Join(i.segments, "/")
}

// Equal reports whether i and o refer to the same identifier.
func (i Identifier) Equal(o Identifier) bool {
	return i.String() == o.String()
}

// Less implements the lexicographic-over-segments ordering used for
// deterministic suite iteration.
func (i Identifier) Less(o Identifier) bool {
	for idx := 0; idx < len(i.segments) && idx < len(o.segments); idx++ {
		if i.segments[idx] != o.segments[idx] {
			return i.segments[idx] < o.segments[idx]
		}
	}
	return len(i.segments) < len(o.segments)
}

// Parent returns the identifier formed by dropping the last segment, and
// true, or the zero Identifier and false if i has only one segment.
func (i Identifier) Parent() (Identifier, bool) {
	if len(i.segments) <= 1 {
		return Identifier{}, false
	}
	parent := make([]string, len(i.segments)-1)
	copy(parent, i.segments[:len(i.segments)-1])
	return Identifier{segments: parent}, true
}

// Name returns the last segment of i, e.g. the "baz" of "foo/bar/baz".
func (i Identifier) Name() string {
	if len(i.segments) == 0 {
		return ""
	}
	return i.segments[len(i.segments)-1]
}

// IsValid reports whether i was constructed via Parse/MustParse/Template
// (as opposed to being the zero value).
func (i Identifier) IsValid() bool {
	return len(i.segments) > 0
}

// Sort sorts ids in place using the lexicographic-over-segments order.
func Sort(ids []Identifier) {
	slices.SortFunc(ids, func(a, b Identifier) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})
}
