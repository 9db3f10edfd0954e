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

package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/abcxyz/pkg/workerpool"
	"github.com/benbjohnson/clock"
	"github.com/jinzhu/copier"

	"github.com/typst-community/tytanic/tytanic/compare"
	"github.com/typst-community/tytanic/tytanic/diag"
	"github.com/typst-community/tytanic/tytanic/document"
	"github.com/typst-community/tytanic/tytanic/kind"
	"github.com/typst-community/tytanic/tytanic/store"
	"github.com/typst-community/tytanic/tytanic/world"
)

// MultipleMatchesError is returned by Run when Policy.Update is set but
// more than one test matched and the caller didn't confirm an explicit
// scope, per spec §4.8.
type MultipleMatchesError struct {
	Count int
}

func (e *MultipleMatchesError) Error() string {
	return fmt.Sprintf("runner: update refused: %d tests matched, expected exactly one (pass an explicit scope to confirm)", e.Count)
}

// Policy configures a single run: the compiler and renderer to use, how
// to build a World for a given test, the comparison strategy, and
// whether to update references instead of comparing.
type Policy struct {
	Compiler world.Compiler
	Renderer world.RenderStrategy
	WorldFor func(t *store.Test, source []byte) (world.World, error)

	Compare   compare.Strategy
	EmitDiffs bool
	Optimizer document.Optimizer

	// Update, when true, writes the rendered output as the new reference
	// instead of comparing. AllowMultipleUpdate must also be true when
	// more than one test matched.
	Update              bool
	AllowMultipleUpdate bool

	// Jobs is the worker count; zero defaults to runtime.NumCPU().
	Jobs int

	// Clock provides Now() for duration measurement; defaults to the
	// real clock. Tests inject a mock clock for determinism.
	Clock clock.Clock
}

// Runner executes a matched set of tests under a Policy.
type Runner struct {
	store  *store.Store
	policy Policy

	failFast  atomic.Bool
	cancelled atomic.Bool
}

// New returns a Runner backed by s.
func New(s *store.Store, policy Policy) *Runner {
	if policy.Clock == nil {
		policy.Clock = clock.New()
	}
	if policy.Jobs <= 0 {
		policy.Jobs = runtime.NumCPU()
	}
	return &Runner{store: s, policy: policy}
}

// Cancel sets the process-wide cancellation flag; workers still
// in-flight terminate their current test with StageSkipped at the next
// stage boundary (after compilation or after rendering), and no new
// test starts.
func (r *Runner) Cancel() { r.cancelled.Store(true) }

// Run executes tests in parallel, one worker per Policy.Jobs, returning
// one TestResult per test in tests plus any already-filtered tests
// carried through as StageFiltered. failFast, when true, stops scheduling
// new tests after the first failure; in-flight tests still run to
// completion.
func (r *Runner) Run(ctx context.Context, tests []*store.Test, filteredOut []*store.Test, failFast bool) ([]TestResult, error) {
	if r.policy.Update && len(tests) > 1 && !r.policy.AllowMultipleUpdate {
		return nil, &MultipleMatchesError{Count: len(tests)}
	}

	pool := workerpool.New[TestResult](&workerpool.Config{
		Concurrency: int64(r.policy.Jobs),
	})

	for _, t := range tests {
		// Snapshot the test so the in-flight job never observes a later
		// MakeKind mutation racing with other workers.
		var snapshot store.Test
		if err := copier.Copy(&snapshot, t); err != nil {
			return nil, fmt.Errorf("runner: snapshotting test %s: %w", t.ID, err)
		}

		job := func() (TestResult, error) {
			if r.cancelled.Load() {
				return TestResult{ID: snapshot.ID, Stage: StageSkipped}, nil
			}
			if failFast && r.failFast.Load() {
				return TestResult{ID: snapshot.ID, Stage: StageSkipped}, nil
			}

			result := r.runOne(ctx, &snapshot)
			if failFast && isFailure(result.Stage) {
				r.failFast.Store(true)
			}
			return result, nil
		}

		if err := pool.Do(ctx, job); err != nil {
			return nil, fmt.Errorf("runner: scheduling %s: %w", t.ID, err)
		}
	}

	poolResults, err := pool.Done(ctx)
	if err != nil {
		return nil, fmt.Errorf("runner: %w", err)
	}

	results := make([]TestResult, 0, len(poolResults)+len(filteredOut))
	for _, pr := range poolResults {
		if pr.Error != nil {
			return nil, fmt.Errorf("runner: %w", pr.Error)
		}
		results = append(results, pr.Value)
	}
	for _, t := range filteredOut {
		results = append(results, TestResult{ID: t.ID, Stage: StageFiltered})
	}

	return results, nil
}

func isFailure(s Stage) bool {
	return s == StageFailedCompilation || s == StageFailedComparison
}

// runOne drives a single test through LOAD -> COMPILE -> RENDER ->
// COMPARE|UPDATE, per the state machine in spec §4.8.
func (r *Runner) runOne(ctx context.Context, t *store.Test) TestResult {
	start := r.policy.Clock.Now()
	result := TestResult{ID: t.ID}
	finish := func() TestResult {
		result.Duration = r.policy.Clock.Now().Sub(start)
		return result
	}

	source, err := r.store.LoadSource(t)
	if err != nil {
		result.Stage = StageFailedCompilation
		result.CompileError = compileErrorFromErr(err)
		return finish()
	}

	w, err := r.policy.WorldFor(t, source)
	if err != nil {
		result.Stage = StageFailedCompilation
		result.CompileError = compileErrorFromErr(err)
		return finish()
	}

	compileSource := world.Source{ID: w.Main(), Text: string(source)}
	compiled, compErr := r.policy.Compiler.Compile(ctx, compileSource, w)
	if compErr != nil {
		result.Stage = StageFailedCompilation
		result.CompileError = compErr
		result.Warnings = compErr.Diagnostics
		return finish()
	}
	if r.cancelled.Load() {
		result.Stage = StageSkipped
		return finish()
	}

	var reference document.Document
	if t.RefKind == kind.Ephemeral {
		refSource, err := r.store.LoadReferenceSource(t)
		if err != nil {
			result.Stage = StageFailedCompilation
			result.IsReference = true
			result.CompileError = compileErrorFromErr(err)
			return finish()
		}
		refCompiled, compErr := r.policy.Compiler.Compile(ctx, world.Source{ID: w.Main(), Text: string(refSource)}, w)
		if compErr != nil {
			result.Stage = StageFailedCompilation
			result.IsReference = true
			result.CompileError = compErr
			return finish()
		}
		reference, err = r.policy.Renderer.Render(ctx, refCompiled)
		if err != nil {
			result.Stage = StageFailedCompilation
			result.IsReference = true
			result.CompileError = compileErrorFromErr(err)
			return finish()
		}
	} else if t.RefKind == kind.Persistent && !r.policy.Update {
		var err error
		reference, err = r.store.LoadReferenceDocument(t)
		if err != nil {
			result.Stage = StageFailedComparison
			result.CompareError = err
			return finish()
		}
	}

	output, err := r.policy.Renderer.Render(ctx, compiled)
	if err != nil {
		result.Stage = StageFailedCompilation
		result.CompileError = compileErrorFromErr(err)
		return finish()
	}
	if r.cancelled.Load() {
		result.Stage = StageSkipped
		return finish()
	}

	if t.RefKind == kind.CompileOnly {
		result.Stage = StagePassedCompilation
		return finish()
	}

	if r.policy.Update {
		if err := r.store.MakeKind(t, kind.Persistent); err != nil {
			result.Stage = StageFailedComparison
			result.CompareError = err
			return finish()
		}
		if err := r.store.SaveReferenceDocument(t, output, r.policy.Optimizer); err != nil {
			result.Stage = StageFailedComparison
			result.CompareError = err
			return finish()
		}
		result.Stage = StageUpdated
		result.Optimized = r.policy.Optimizer != nil
		return finish()
	}

	cmpResult, err := compare.Compare(r.policy.Compare, output, reference)
	if err != nil {
		result.Stage = StageFailedComparison
		result.CompareError = err
		return finish()
	}
	if cmpResult.Failed() {
		if r.policy.EmitDiffs {
			_ = compare.EmitDiffs(ctx, r.store.FS(), r.store.Paths().DiffDir(t.ID), r.policy.Compare, output, reference, cmpResult)
		}
		result.Stage = StageFailedComparison
		result.CompareError = fmt.Errorf("runner: %d page(s) failed comparison", len(cmpResult.PageErrors))
		return finish()
	}

	result.Stage = StagePassedComparison
	return finish()
}

// compileErrorFromErr wraps a non-diagnostic error (e.g. a filesystem
// failure while loading source) in a *diag.CompileError so callers only
// need to branch on TestResult.CompileError, not on a second error type.
func compileErrorFromErr(err error) *diag.CompileError {
	return &diag.CompileError{Diagnostics: []diag.Diagnostic{{
		Severity: diag.SeverityError,
		Message:  err.Error(),
	}}}
}
