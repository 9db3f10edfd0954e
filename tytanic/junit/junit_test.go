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

package junit

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/typst-community/tytanic/tytanic/diag"
	"github.com/typst-community/tytanic/tytanic/id"
	"github.com/typst-community/tytanic/tytanic/paths"
	"github.com/typst-community/tytanic/tytanic/runner"
)

func TestWriteBasic(t *testing.T) {
	t.Parallel()

	results := []runner.TestResult{
		{ID: id.MustParse("group/a"), Stage: runner.StagePassedComparison, Duration: 10 * time.Millisecond},
		{
			ID:       id.MustParse("group/b"),
			Stage:    runner.StageFailedCompilation,
			Duration: 5 * time.Millisecond,
			CompileError: &diag.CompileError{
				Diagnostics: []diag.Diagnostic{{Severity: diag.SeverityError, Message: "syntax error"}},
			},
		},
		{ID: id.MustParse("c"), Stage: runner.StageFiltered},
	}

	var buf bytes.Buffer
	when := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := paths.New("/project")
	if err := Write(&buf, "tytanic", p, results, when); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `tests="3"`) {
		t.Errorf("output missing tests=3: %s", out)
	}
	if !strings.Contains(out, `failures="1"`) {
		t.Errorf("output missing failures=1: %s", out)
	}
	if !strings.Contains(out, `skipped="1"`) {
		t.Errorf("output missing skipped=1: %s", out)
	}
	if !strings.Contains(out, `name="b"`) || !strings.Contains(out, "syntax error") {
		t.Errorf("output missing failing case b's message: %s", out)
	}
	if !strings.Contains(out, `classname="group"`) {
		t.Errorf("output missing classname=group: %s", out)
	}
	if !strings.Contains(out, `timestamp="2026-01-02T03:04:05Z"`) {
		t.Errorf("output missing timestamp: %s", out)
	}
}

func TestWriteNoFailures(t *testing.T) {
	t.Parallel()

	results := []runner.TestResult{
		{ID: id.MustParse("a"), Stage: runner.StagePassedComparison},
	}

	var buf bytes.Buffer
	p := paths.New("/project")
	if err := Write(&buf, "tytanic", p, results, time.Now()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if strings.Contains(buf.String(), "<failure") {
		t.Error("output contains <failure> for an all-passing run")
	}
}
