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

// Expr is a node in a parsed test-set expression.
type Expr interface {
	pos() Pos
}

// BinaryOp names a binary set operator.
type BinaryOp int

const (
	OpUnion BinaryOp = iota
	OpIntersect
	OpDifference
	OpSymmetricDifference
)

type BinaryExpr struct {
	Op          BinaryOp
	Left, Right Expr
	Position    Pos
}

func (e *BinaryExpr) pos() Pos { return e.Position }

type NotExpr struct {
	X        Expr
	Position Pos
}

func (e *NotExpr) pos() Pos { return e.Position }

// TagExpr is the `:value` prefix sugar for `tag("value")`.
type TagExpr struct {
	Value    string
	Position Pos
}

func (e *TagExpr) pos() Pos { return e.Position }

// CallExpr is a function call, e.g. exact("foo") or a nullary built-in
// constant like all().
type CallExpr struct {
	Name     string
	Args     []Arg
	Position Pos
}

func (e *CallExpr) pos() Pos { return e.Position }

// IdentExpr is a bare identifier resolved against built-in constants.
type IdentExpr struct {
	Name     string
	Position Pos
}

func (e *IdentExpr) pos() Pos { return e.Position }

// Arg is a single call argument: either a string or integer literal.
type Arg struct {
	IsString bool
	Str      string
	Int      int
	Position Pos
}
