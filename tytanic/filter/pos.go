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

import "fmt"

// Pos is a byte offset into an expression string, used to point parse and
// evaluation errors at the offending text.
type Pos struct {
	Offset int
}

// Errorf returns an error prepended with position information, mirroring
// the teacher's ConfigPos.Errorf for YAML parse errors.
func (p Pos) Errorf(fmtStr string, args ...any) error {
	return fmt.Errorf("at offset %d: %w", p.Offset, fmt.Errorf(fmtStr, args...))
}
