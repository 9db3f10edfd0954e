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
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/typst-community/tytanic/tytanic/id"
	"github.com/typst-community/tytanic/tytanic/kind"
)

// Test is the narrow view of a test that the DSL evaluates against. The
// suite package's test entity satisfies this.
type Test interface {
	Identifier() id.Identifier
	Kind() kind.ReferenceKind
	Tags() []string
	IsSkip() bool
}

// Set is a compiled test-set expression. Evaluation is pure and lazy:
// Contains computes its answer on demand rather than materializing a
// membership set up front.
type Set interface {
	Contains(t Test) bool
}

type setFunc func(t Test) bool

func (f setFunc) Contains(t Test) bool { return f(t) }

// UnknownIdentifierError is returned by Compile when an expression
// references a name that isn't a built-in constant or function.
type UnknownIdentifierError struct {
	Name     string
	Position Pos
}

func (e *UnknownIdentifierError) Error() string {
	return e.Position.Errorf("unknown identifier %q", e.Name).Error()
}

// InvalidArgumentCountError is returned when a built-in function is called
// with the wrong number of arguments.
type InvalidArgumentCountError struct {
	Name     string
	Expected int
	IsMin    bool
	Found    int
	Position Pos
}

func (e *InvalidArgumentCountError) Error() string {
	cmp := "exactly"
	if e.IsMin {
		cmp = "at least"
	}
	return e.Position.Errorf("%s() expects %s %d argument(s), found %d", e.Name, cmp, e.Expected, e.Found).Error()
}

// TypeMismatchError is returned when a built-in function argument has the
// wrong literal type.
type TypeMismatchError struct {
	Expected string
	Found    string
	Position Pos
}

func (e *TypeMismatchError) Error() string {
	return e.Position.Errorf("expected a %s argument, found %s", e.Expected, e.Found).Error()
}

// Compile parses and resolves src into an evaluatable Set.
func Compile(src string) (Set, error) {
	expr, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return compile(expr)
}

func compile(expr Expr) (Set, error) {
	switch e := expr.(type) {
	case *BinaryExpr:
		left, err := compile(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := compile(e.Right)
		if err != nil {
			return nil, err
		}
		return compileBinary(e.Op, left, right), nil

	case *NotExpr:
		x, err := compile(e.X)
		if err != nil {
			return nil, err
		}
		return setFunc(func(t Test) bool { return !x.Contains(t) }), nil

	case *TagExpr:
		value := e.Value
		return setFunc(func(t Test) bool { return hasTag(t, value) }), nil

	case *IdentExpr:
		fn, ok := builtinConstants[e.Name]
		if !ok {
			return nil, &UnknownIdentifierError{Name: e.Name, Position: e.Position}
		}
		return fn(), nil

	case *CallExpr:
		return compileCall(e)

	default:
		return nil, fmt.Errorf("filter: unhandled expression node %T", expr)
	}
}

func compileBinary(op BinaryOp, left, right Set) Set {
	switch op {
	case OpUnion:
		return setFunc(func(t Test) bool { return left.Contains(t) || right.Contains(t) })
	case OpIntersect:
		return setFunc(func(t Test) bool { return left.Contains(t) && right.Contains(t) })
	case OpDifference:
		return setFunc(func(t Test) bool { return left.Contains(t) && !right.Contains(t) })
	case OpSymmetricDifference:
		return setFunc(func(t Test) bool { return left.Contains(t) != right.Contains(t) })
	default:
		return setFunc(func(Test) bool { return false })
	}
}

func hasTag(t Test, tag string) bool {
	for _, g := range t.Tags() {
		if g == tag {
			return true
		}
	}
	return false
}

var builtinConstants = map[string]func() Set{
	"all":  func() Set { return setFunc(func(Test) bool { return true }) },
	"none": func() Set { return setFunc(func(Test) bool { return false }) },
	"skip": func() Set { return setFunc(func(t Test) bool { return t.IsSkip() }) },
	"compile-only": func() Set {
		return setFunc(func(t Test) bool { return t.Kind() == kind.CompileOnly })
	},
	"ephemeral": func() Set {
		return setFunc(func(t Test) bool { return t.Kind() == kind.Ephemeral })
	},
	"persistent": func() Set {
		return setFunc(func(t Test) bool { return t.Kind() == kind.Persistent })
	},
	"ignored": func() Set { return setFunc(func(t Test) bool { return t.IsSkip() }) },
}

// BuiltinNames returns the names of the zero-argument set constants
// (all, none, skip, ...), sorted for stable help/completion output.
func BuiltinNames() []string {
	names := maps.Keys(builtinConstants)
	slices.Sort(names)
	return names
}

func compileCall(e *CallExpr) (Set, error) {
	switch e.Name {
	case "exact":
		s, err := stringArg(e, 0)
		if err != nil {
			return nil, err
		}
		return setFunc(func(t Test) bool { return t.Identifier().String() == s }), nil

	case "contains":
		s, err := stringArg(e, 0)
		if err != nil {
			return nil, err
		}
		return setFunc(func(t Test) bool { return strings.Contains(t.Identifier().String(), s) }), nil

	case "regex":
		s, err := stringArg(e, 0)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(s)
		if err != nil {
			return nil, e.Position.Errorf("invalid regular expression: %w", err)
		}
		return setFunc(func(t Test) bool { return re.MatchString(t.Identifier().String()) }), nil

	case "tag":
		s, err := stringArg(e, 0)
		if err != nil {
			return nil, err
		}
		return setFunc(func(t Test) bool { return hasTag(t, s) }), nil

	case "kind":
		s, err := stringArg(e, 0)
		if err != nil {
			return nil, err
		}
		k, ok := kind.Parse(s)
		if !ok {
			return nil, &TypeMismatchError{Expected: "a kind name (persistent, ephemeral, compile-only)", Found: fmt.Sprintf("%q", s), Position: e.Position}
		}
		return setFunc(func(t Test) bool { return t.Kind() == k }), nil

	// All built-in constants are also callable with zero arguments, e.g.
	// `all()`, matching the grammar's `f(args)` production.
	case "all", "none", "skip", "compile-only", "ephemeral", "persistent", "ignored":
		if len(e.Args) != 0 {
			return nil, &InvalidArgumentCountError{Name: e.Name, Expected: 0, Found: len(e.Args), Position: e.Position}
		}
		return builtinConstants[e.Name](), nil

	default:
		return nil, &UnknownIdentifierError{Name: e.Name, Position: e.Position}
	}
}

func stringArg(e *CallExpr, i int) (string, error) {
	if len(e.Args) != 1 {
		return "", &InvalidArgumentCountError{Name: e.Name, Expected: 1, Found: len(e.Args), Position: e.Position}
	}
	arg := e.Args[i]
	if !arg.IsString {
		return "", &TypeMismatchError{Expected: "string", Found: "integer", Position: arg.Position}
	}
	return arg.Str, nil
}
