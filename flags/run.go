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

package flags

import (
	"fmt"

	"github.com/abcxyz/pkg/cli"
	"github.com/posener/complete/v2/predict"

	"github.com/typst-community/tytanic/tytanic/compare"
)

// RunFlags are shared between "run" and "update": both drive the same
// parallel pipeline, differing only in Policy.Update.
type RunFlags struct {
	FailFast      bool
	NoDiff        bool
	NoOptimize    bool
	JUnitPath     string
	MaxDelta      int
	MaxDeviations int
	Direction     string
}

// CompareStrategy builds a compare.Strategy from the parsed flag values.
func (r *RunFlags) CompareStrategy() (compare.Strategy, error) {
	dir := compare.Ltr
	switch r.Direction {
	case "", "ltr":
		dir = compare.Ltr
	case "rtl":
		dir = compare.Rtl
	default:
		return compare.Strategy{}, fmt.Errorf("flags: --direction must be \"ltr\" or \"rtl\", got %q", r.Direction)
	}
	return compare.Strategy{
		MaxDelta:      uint8(r.MaxDelta),
		MaxDeviations: r.MaxDeviations,
		Direction:     dir,
	}, nil
}

func (r *RunFlags) Register(set *cli.FlagSet) {
	s := set.NewSection("OUTPUT OPTIONS")

	s.BoolVar(&cli.BoolVar{
		Name:   "fail-fast",
		Target: &r.FailFast,
		Usage:  "Stop starting new tests after the first failure; in-flight tests still finish.",
	})

	s.BoolVar(&cli.BoolVar{
		Name:   "no-diff",
		Target: &r.NoDiff,
		Usage:  "Don't write diff images for failing comparisons.",
	})

	s.BoolVar(&cli.BoolVar{
		Name:   "no-optimize",
		Target: &r.NoOptimize,
		Usage:  "Don't run the PNG optimizer over written/updated references.",
	})

	s.StringVar(&cli.StringVar{
		Name:    "junit",
		Example: "/path/to/report.xml",
		Target:  &r.JUnitPath,
		Predict: predict.Files("*.xml"),
		Usage:   "Write a jUnit XML report to this path in addition to the console report.",
	})

	c := set.NewSection("COMPARE OPTIONS")

	c.IntVar(&cli.IntVar{
		Name:    "max-delta",
		Example: "0",
		Target:  &r.MaxDelta,
		Default: 0,
		Usage:   "Maximum per-channel pixel delta (0-255) before a pixel counts as a deviation.",
	})

	c.IntVar(&cli.IntVar{
		Name:    "max-deviations",
		Example: "0",
		Target:  &r.MaxDeviations,
		Default: 0,
		Usage:   "Maximum deviating pixels a page may contain before it counts as failing.",
	})

	c.StringVar(&cli.StringVar{
		Name:    "direction",
		Example: "ltr",
		Target:  &r.Direction,
		Default: "ltr",
		Predict: predict.Set([]string{"ltr", "rtl"}),
		Usage:   "Reading direction used to align pages of unequal width in diff images.",
	})
}
