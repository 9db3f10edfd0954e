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

package main

import (
	"context"
	"strings"
	"testing"

	"github.com/abcxyz/pkg/testutil"
)

func TestRootCmd(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		args       []string
		wantStderr string
		wantErr    string
	}{
		{
			name:       "help_text",
			args:       []string{"-h"},
			wantStderr: "Usage: tytanic",
		},
		{
			name:    "unknown_root",
			args:    []string{"status", "--root", "/no/such/project"},
			wantErr: "does not exist",
		},
		{
			name:    "nonexistent_subcommand",
			args:    []string{"nonexistent"},
			wantErr: `unknown command "nonexistent": run "tytanic -help" for a list of commands`,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			rc := rootCmd()
			_, _, stderr := rc.Pipe()
			err := rc.Run(ctx, tc.args)
			if diff := testutil.DiffErrString(err, tc.wantErr); diff != "" {
				t.Error(diff)
			}
			if !strings.Contains(stderr.String(), tc.wantStderr) {
				t.Errorf("stderr = %q, want substring %q", stderr.String(), tc.wantStderr)
			}
		})
	}
}
