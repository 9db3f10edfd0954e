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

package paths

import (
	"path/filepath"
	"testing"

	"github.com/typst-community/tytanic/tytanic/id"
)

func TestPaths(t *testing.T) {
	t.Parallel()

	p := New("/project")
	i := id.MustParse("group/nested-test")

	cases := []struct {
		name string
		got  string
		want string
	}{
		{"UnitTestDir", p.UnitTestDir(i), filepath.Join("/project", "tests", "group", "nested-test")},
		{"TestScript", p.TestScript(i), filepath.Join("/project", "tests", "group", "nested-test", "test.typ")},
		{"ReferenceScript", p.ReferenceScript(i), filepath.Join("/project", "tests", "group", "nested-test", "ref.typ")},
		{"ReferenceDir", p.ReferenceDir(i), filepath.Join("/project", "tests", "group", "nested-test", "ref")},
		{"OutputDir", p.OutputDir(i), filepath.Join("/project", "tests", "group", "nested-test", "out")},
		{"DiffDir", p.DiffDir(i), filepath.Join("/project", "tests", "group", "nested-test", "diff")},
	}

	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s = %q, want %q", tc.name, tc.got, tc.want)
		}
	}
}
