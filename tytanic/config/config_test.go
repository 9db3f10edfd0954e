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

import (
	"path/filepath"
	"testing"

	"github.com/typst-community/tytanic/internal/fsutil"
)

func TestLoadMissingIsZeroValue(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	fsys := &fsutil.RealFS{}
	cfg, err := Load(fsys, root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Jobs != nil || cfg.Color != nil || cfg.OptimizeOnUpdate != nil {
		t.Errorf("Load of missing file = %+v, want zero value", cfg)
	}
	if got := cfg.JobsOr(4); got != 4 {
		t.Errorf("JobsOr fallback = %d, want 4", got)
	}
}

func TestLoadParsesFields(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	fsys := &fsutil.RealFS{}
	data := []byte("jobs: 8\ncolor: always\noptimize-on-update: true\n")
	if err := fsys.WriteFile(filepath.Join(root, FileName), data, fsutil.OwnerRWPerms); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(fsys, root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JobsOr(0) != 8 {
		t.Errorf("JobsOr = %d, want 8", cfg.JobsOr(0))
	}
	if cfg.ColorOr(ColorAuto) != ColorAlways {
		t.Errorf("ColorOr = %v, want ColorAlways", cfg.ColorOr(ColorAuto))
	}
	if !cfg.OptimizeOnUpdateOr(false) {
		t.Error("OptimizeOnUpdateOr = false, want true")
	}
	if cfg.Pos.Line == 0 {
		t.Error("Pos.Line = 0, want recorded document position")
	}
}

func TestParseColorModeInvalid(t *testing.T) {
	t.Parallel()

	if _, err := ParseColorMode("rainbow"); err == nil {
		t.Error("ParseColorMode(rainbow) = nil error, want error")
	}
}
