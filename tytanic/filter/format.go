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
	"strconv"
	"strings"
)

// Format renders expr back to DSL syntax, parenthesizing defensively so
// that re-parsing Format(e) always yields an equivalent expression
// regardless of the original source's own parenthesization.
func Format(expr Expr) string {
	switch e := expr.(type) {
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", Format(e.Left), binaryOpSymbol(e.Op), Format(e.Right))
	case *NotExpr:
		return "!" + Format(e.X)
	case *TagExpr:
		return ":" + e.Value
	case *IdentExpr:
		return e.Name
	case *CallExpr:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			if a.IsString {
				args[i] = strconv.Quote(a.Str)
			} else {
				args[i] = strconv.Itoa(a.Int)
			}
		}
		return fmt.Sprintf("%s(%s)", e.Name, strings.Join(args, ", "))
	default:
		return ""
	}
}

func binaryOpSymbol(op BinaryOp) string {
	switch op {
	case OpUnion:
		return "|"
	case OpIntersect:
		return "&"
	case OpDifference:
		return "~"
	case OpSymmetricDifference:
		return "^"
	default:
		return "?"
	}
}
