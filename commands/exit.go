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

// Package commands implements the project's subcommands: status, list,
// run, update, new, remove, and util clean.
package commands

// ExitError carries the process exit code spec §7 assigns to each error
// category, alongside the underlying error. cmd/tytanic finds it with
// errors.As and exits with its Code field; an error that isn't an
// *ExitError exits 3 ("unexpected error").
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }
func (e *ExitError) ExitCode() int { return e.Code }

// userErr wraps err as a graceful operation failure (exit 2): missing
// project, unknown test, duplicate test, ambiguous update target,
// manifest/config/expression parse failures.
func userErr(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: 2, Err: err}
}

// runErr wraps err as "at least one test failed" (exit 1).
func runErr(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: 1, Err: err}
}
