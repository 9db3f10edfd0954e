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

// Package flags contains flag structs shared by several subcommands,
// following the teacher's templates/common/flags split between
// reusable flag groups and per-command flag structs.
package flags

import (
	"fmt"
	"strconv"
	"time"

	"github.com/abcxyz/pkg/cli"
	"github.com/posener/complete/v2/predict"

	"github.com/typst-community/tytanic/tytanic/config"
)

// GlobalFlags are registered on every subcommand: where the project
// lives, how parallel to run, whether to color output, and how to
// reach the typesetting compiler's resources.
type GlobalFlags struct {
	Root              string
	Jobs              int
	Color             string
	Verbosity         int
	FontPaths         []string
	PackagePath       string
	PackageCachePath  string
	Certificate       string
	CreationTimestamp string
}

func (g *GlobalFlags) Register(set *cli.FlagSet) {
	f := set.NewSection("GLOBAL OPTIONS")

	f.StringVar(&cli.StringVar{
		Name:    "root",
		Aliases: []string{"r"},
		Example: "/path/to/project",
		Target:  &g.Root,
		Default: ".",
		EnvVar:  "TYPST_ROOT",
		Predict: predict.Dirs("*"),
		Usage:   "The project root; defaults to the current directory.",
	})

	f.IntVar(&cli.IntVar{
		Name:    "jobs",
		Aliases: []string{"j"},
		Example: "4",
		Target:  &g.Jobs,
		Default: 0,
		Usage:   "The number of tests to run in parallel; 0 uses all available CPUs.",
	})

	f.StringVar(&cli.StringVar{
		Name:    "color",
		Example: "auto",
		Target:  &g.Color,
		Default: "auto",
		Predict: predict.Set([]string{"auto", "always", "never"}),
		Usage:   "Accepted values: auto, always, or never. The run and update reports do not read this setting; they color output only when stdout is a terminal.",
	})

	f.IntVar(&cli.IntVar{
		Name:    "verbose",
		Aliases: []string{"v"},
		Target:  &g.Verbosity,
		Default: 0,
		Usage:   "Logging verbosity, from 0 (default) to 5, given as a number, e.g. -v 3; repeating the short form (-vvv) is not accepted.",
	})

	c := set.NewSection("COMPILER OPTIONS")

	c.StringSliceVar(&cli.StringSliceVar{
		Name:    "font-path",
		Example: "/usr/share/fonts",
		Target:  &g.FontPaths,
		EnvVar:  "TYPST_FONT_PATHS",
		Predict: predict.Dirs("*"),
		Usage:   "Additional directory to search for fonts; may be repeated.",
	})

	c.StringVar(&cli.StringVar{
		Name:    "package-path",
		Example: "/path/to/packages",
		Target:  &g.PackagePath,
		EnvVar:  "TYPST_PACKAGE_PATH",
		Predict: predict.Dirs("*"),
		Usage:   "Custom package storage path, overriding the default data directory.",
	})

	c.StringVar(&cli.StringVar{
		Name:    "package-cache-path",
		Example: "/path/to/package-cache",
		Target:  &g.PackageCachePath,
		EnvVar:  "TYPST_PACKAGE_CACHE_PATH",
		Predict: predict.Dirs("*"),
		Usage:   "Custom package cache path, overriding the default cache directory.",
	})

	c.StringVar(&cli.StringVar{
		Name:    "certificate",
		Aliases: []string{"cert"},
		Example: "/path/to/cert.pem",
		Target:  &g.Certificate,
		EnvVar:  "TYPST_CERT",
		Predict: predict.Files("*.pem"),
		Usage:   "Path to a custom CA certificate for package downloads.",
	})

	c.StringVar(&cli.StringVar{
		Name:    "creation-timestamp",
		Example: "1704067200",
		Target:  &g.CreationTimestamp,
		EnvVar:  "SOURCE_DATE_EPOCH",
		Usage:   "Unix timestamp used as 'now' within compiled documents, for reproducible output. See https://reproducible-builds.org/specs/source-date-epoch/.",
	})
}

// ColorMode resolves the --color flag, falling back to cfg's
// configured default when unset on the command line.
func (g *GlobalFlags) ColorMode(cfg config.Config) (config.ColorMode, error) {
	if g.Color == "" || g.Color == "auto" {
		return cfg.ColorOr(config.ColorAuto), nil
	}
	return config.ParseColorMode(g.Color)
}

// JobsOr resolves the --jobs flag, falling back to cfg's configured
// default, and then to fallback, when both are unset.
func (g *GlobalFlags) JobsOr(cfg config.Config, fallback int) int {
	if g.Jobs > 0 {
		return g.Jobs
	}
	return cfg.JobsOr(fallback)
}

// CreationTime parses CreationTimestamp, if set, as a decimal Unix
// timestamp (seconds since the epoch), per SOURCE_DATE_EPOCH
// (https://reproducible-builds.org/specs/source-date-epoch/).
func (g *GlobalFlags) CreationTime() (time.Time, bool, error) {
	if g.CreationTimestamp == "" {
		return time.Time{}, false, nil
	}
	secs, err := strconv.ParseInt(g.CreationTimestamp, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("flags: --creation-timestamp must be a decimal integer: %w", err)
	}
	return time.Unix(secs, 0).UTC(), true, nil
}
