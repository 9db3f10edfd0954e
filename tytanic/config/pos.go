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

package config

// This file deals with tracking line/column information in the config
// YAML to support helpful error messages, mirroring the teacher's
// templates/model ConfigPos/yamlPos.

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Pos stores the position of a config value so errors can point back
// at the offending line. The zero value means "position unknown."
type Pos struct {
	Line   int
	Column int
}

func yamlPos(n *yaml.Node) Pos {
	return Pos{Line: n.Line, Column: n.Column}
}

// Errorf returns an error prepended with the config file's position
// information, if available.
func (p Pos) Errorf(fmtStr string, args ...any) error {
	err := fmt.Errorf(fmtStr, args...)
	if p == (Pos{}) {
		return err
	}
	return fmt.Errorf("at line %d column %d: %w", p.Line, p.Column, err)
}
