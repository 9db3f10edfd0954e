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

// Package config reads the optional ".tytanic.yaml" project file that
// supplies default flag values (jobs, color mode, optimize-on-update)
// so a project doesn't need to repeat them on every invocation.
package config

import (
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/typst-community/tytanic/internal/fsutil"
)

// FileName is the project-relative path to the config file.
const FileName = ".tytanic.yaml"

// ColorMode selects when the reporter emits ANSI color.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColorMode accepts "auto", "always" or "never".
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "auto", "":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return 0, fmt.Errorf("config: unknown color mode %q, want one of auto, always, never", s)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler for ColorMode, accepting
// a bare scalar string.
func (m *ColorMode) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return yamlPos(n).Errorf("color: %w", err)
	}
	parsed, err := ParseColorMode(s)
	if err != nil {
		return yamlPos(n).Errorf("%w", err)
	}
	*m = parsed
	return nil
}

// Config is the optional project-level default configuration. Every
// field is a pointer so the zero value ("not set in the file")
// is distinguishable from an explicit false/zero, letting flags.go
// layer CLI flags > config file > built-in defaults.
type Config struct {
	Jobs             *int       `yaml:"jobs"`
	Color            *ColorMode `yaml:"color"`
	OptimizeOnUpdate *bool      `yaml:"optimize-on-update"`

	Pos Pos `yaml:"-"`
}

// UnmarshalYAML implements yaml.Unmarshaler, recording the document's
// root position for error reporting.
func (c *Config) UnmarshalYAML(n *yaml.Node) error {
	type shadow Config
	s := (*shadow)(c)
	if err := n.Decode(s); err != nil {
		return err
	}
	c.Pos = yamlPos(n)
	return nil
}

// Load reads FileName from projectRoot via fsys. A missing file is not
// an error; it returns a zero Config so callers fall back to built-in
// defaults.
func Load(fsys fsutil.FS, projectRoot string) (Config, error) {
	path := filepath.Join(projectRoot, FileName)

	exists, err := fsutil.Exists(fsys, path)
	if err != nil {
		return Config{}, fmt.Errorf("config: checking %s: %w", path, err)
	}
	if !exists {
		return Config{}, nil
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// JobsOr returns the configured job count, or fallback if unset.
func (c Config) JobsOr(fallback int) int {
	if c.Jobs == nil {
		return fallback
	}
	return *c.Jobs
}

// ColorOr returns the configured color mode, or fallback if unset.
func (c Config) ColorOr(fallback ColorMode) ColorMode {
	if c.Color == nil {
		return fallback
	}
	return *c.Color
}

// OptimizeOnUpdateOr returns the configured optimize-on-update
// setting, or fallback if unset.
func (c Config) OptimizeOnUpdateOr(fallback bool) bool {
	if c.OptimizeOnUpdate == nil {
		return fallback
	}
	return *c.OptimizeOnUpdate
}
