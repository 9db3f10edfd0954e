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

// Package runner drives the matched set of a suite through the per-test
// state machine (load, compile, render, compare or update), in parallel,
// with fail-fast cancellation.
package runner

import (
	"time"

	"github.com/typst-community/tytanic/tytanic/diag"
	"github.com/typst-community/tytanic/tytanic/id"
)

// Stage names the terminal state a test run reached.
type Stage int

const (
	StageSkipped Stage = iota
	StageFiltered
	StageFailedCompilation
	StageFailedComparison
	StagePassedCompilation
	StagePassedComparison
	StageUpdated
)

func (s Stage) String() string {
	switch s {
	case StageSkipped:
		return "skipped"
	case StageFiltered:
		return "filtered"
	case StageFailedCompilation:
		return "failed-compilation"
	case StageFailedComparison:
		return "failed-comparison"
	case StagePassedCompilation:
		return "passed-compilation"
	case StagePassedComparison:
		return "passed-comparison"
	case StageUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// TestResult is the outcome of running a single test.
type TestResult struct {
	ID       id.Identifier
	Stage    Stage
	Warnings []diag.Diagnostic

	// IsReference is set on StageFailedCompilation when the reference
	// script (not the test script) is what failed to compile.
	IsReference bool
	// CompileError is set on StageFailedCompilation.
	CompileError *diag.CompileError
	// CompareError is set on StageFailedComparison.
	CompareError error
	// Optimized is set on StageUpdated to report whether the written
	// reference pages were additionally optimized.
	Optimized bool

	Duration time.Duration
}
