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

package document

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// defaultOptimizeTimeout bounds a single optimizer invocation, mirroring
// the teacher's run.DefaultRunTimeout fallback for commands run without
// an existing context deadline.
const defaultOptimizeTimeout = time.Minute

// ExternalOptimizer shells out to an external lossless PNG optimizer
// binary (e.g. oxipng) to implement the Optimizer interface. This plays
// the same "wrap exec.CommandContext, capture stdout/stderr, fold a
// default timeout into the context" role that templates/common/run.Run
// plays for the teacher's external diff/git invocations.
type ExternalOptimizer struct {
	// Bin is the optimizer executable name or path. Defaults to "oxipng".
	Bin string
	// Args are extra arguments inserted before the input path, e.g.
	// []string{"-o", "max"}.
	Args []string
}

var _ Optimizer = (*ExternalOptimizer)(nil)

// Optimize runs the configured optimizer in place on the PNG at inPath,
// writing the optimized result to outPath. Most optimizers operate
// in-place, so inPath and outPath are ordinarily the same path; when
// they differ the optimized bytes are written to outPath afterward.
func (o *ExternalOptimizer) Optimize(ctx context.Context, inPath, outPath string) error {
	bin := o.Bin
	if bin == "" {
		bin = "oxipng"
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultOptimizeTimeout)
		defer cancel()
	}

	args := append(append([]string{}, o.Args...), inPath)
	cmd := exec.CommandContext(ctx, bin, args...) //nolint:gosec // the optimizer binary and its args are operator-configured, not attacker input

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("exec of %s %v failed: %w\nstdout: %s\nstderr: %s", bin, args, err, stdout.String(), stderr.String())
	}

	if outPath != inPath {
		data, err := os.ReadFile(inPath) //nolint:gosec // operator-controlled path produced by document.Save
		if err != nil {
			return fmt.Errorf("document: reading optimized output %s: %w", inPath, err)
		}
		if err := os.WriteFile(outPath, data, 0o600); err != nil {
			return fmt.Errorf("document: writing optimized output %s: %w", outPath, err)
		}
	}
	return nil
}
