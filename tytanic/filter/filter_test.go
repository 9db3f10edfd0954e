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

package filter

import (
	"errors"
	"testing"

	"github.com/typst-community/tytanic/tytanic/id"
	"github.com/typst-community/tytanic/tytanic/kind"
)

type fakeTest struct {
	ident id.Identifier
	k     kind.ReferenceKind
	tags  []string
	skip  bool
}

func (f fakeTest) Identifier() id.Identifier   { return f.ident }
func (f fakeTest) Kind() kind.ReferenceKind    { return f.k }
func (f fakeTest) Tags() []string              { return f.tags }
func (f fakeTest) IsSkip() bool                { return f.skip }

func mustTest(t *testing.T, s string, k kind.ReferenceKind, tags []string, skip bool) fakeTest {
	t.Helper()
	ident, err := id.Parse(s)
	if err != nil {
		t.Fatalf("id.Parse(%q): %v", s, err)
	}
	return fakeTest{ident: ident, k: k, tags: tags, skip: skip}
}

func TestCompileAndContains(t *testing.T) {
	t.Parallel()

	a := mustTest(t, "group/a", kind.Persistent, []string{"slow"}, false)
	b := mustTest(t, "group/b", kind.Ephemeral, nil, true)

	cases := []struct {
		expr string
		test fakeTest
		want bool
	}{
		{"all()", a, true},
		{"none()", a, false},
		{"persistent()", a, true},
		{"persistent()", b, false},
		{"ephemeral()", b, true},
		{"skip()", b, true},
		{"skip()", a, false},
		{`tag("slow")`, a, true},
		{`tag("slow")`, b, false},
		{":slow", a, true},
		{`exact("group/a")`, a, true},
		{`exact("group/a")`, b, false},
		{`contains("group")`, b, true},
		{`persistent() | ephemeral()`, b, true},
		{`persistent() & ephemeral()`, a, false},
		{`all() ~ ephemeral()`, b, false},
		{`all() ~ ephemeral()`, a, true},
		{`!skip()`, b, false},
		{`!skip()`, a, true},
		{`persistent() ^ skip()`, a, true},
	}

	for _, c := range cases {
		set, err := Compile(c.expr)
		if err != nil {
			t.Fatalf("Compile(%q): %v", c.expr, err)
		}
		if got := set.Contains(c.test); got != c.want {
			t.Errorf("Compile(%q).Contains(%v) = %v, want %v", c.expr, c.test.ident, got, c.want)
		}
	}
}

func TestCompileUnknownIdentifier(t *testing.T) {
	t.Parallel()

	_, err := Compile("bogus()")
	var unknown *UnknownIdentifierError
	if !errors.As(err, &unknown) {
		t.Fatalf("Compile() error = %v, want *UnknownIdentifierError", err)
	}
}

func TestCompileInvalidArgumentCount(t *testing.T) {
	t.Parallel()

	_, err := Compile(`tag()`)
	var invalid *InvalidArgumentCountError
	if !errors.As(err, &invalid) {
		t.Fatalf("Compile() error = %v, want *InvalidArgumentCountError", err)
	}
}

func TestCompileTypeMismatch(t *testing.T) {
	t.Parallel()

	_, err := Compile(`tag(1)`)
	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Compile() error = %v, want *TypeMismatchError", err)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	t.Parallel()

	exprs := []string{
		`all()`,
		`persistent() | ephemeral()`,
		`!skip() & tag("slow")`,
		`:foo`,
		`exact("group/a") ~ persistent()`,
	}

	a := mustTest(t, "group/a", kind.Persistent, []string{"foo", "slow"}, false)

	for _, src := range exprs {
		e1, err := Parse(src)
		if err != nil {
			t.Fatalf("Parse(%q): %v", src, err)
		}
		formatted := Format(e1)
		e2, err := Parse(formatted)
		if err != nil {
			t.Fatalf("Parse(Format(%q)=%q): %v", src, formatted, err)
		}

		s1, err := compile(e1)
		if err != nil {
			t.Fatalf("compile(e1): %v", err)
		}
		s2, err := compile(e2)
		if err != nil {
			t.Fatalf("compile(e2): %v", err)
		}
		if s1.Contains(a) != s2.Contains(a) {
			t.Errorf("round trip of %q via %q changed evaluation", src, formatted)
		}
	}
}

func TestOperatorWordAliases(t *testing.T) {
	t.Parallel()

	a := mustTest(t, "group/a", kind.Persistent, nil, false)

	sym, err := Compile("persistent() | ephemeral()")
	if err != nil {
		t.Fatal(err)
	}
	word, err := Compile("persistent() or ephemeral()")
	if err != nil {
		t.Fatal(err)
	}
	if sym.Contains(a) != word.Contains(a) {
		t.Error("'|' and 'or' should evaluate identically")
	}
}

func TestParseError(t *testing.T) {
	t.Parallel()

	_, err := Compile("persistent() &")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Compile() error = %v, want *ParseError", err)
	}
}
