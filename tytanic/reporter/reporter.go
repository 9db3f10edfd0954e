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

// Package reporter renders run results to a terminal: a pretty, colored,
// indented format for humans and a plain format for logs and pipes.
// Diagnostics stay structured (tytanic/diag) until they reach here, so
// this is the only place that turns them into text.
package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/typst-community/tytanic/tytanic/diag"
	"github.com/typst-community/tytanic/tytanic/runner"
)

// annotPadding is the right-aligned column width of a pretty-format
// annotation such as "passed:" or "warning:".
const annotPadding = 8

// Format selects between the pretty, human-oriented layout and the
// plain, script-friendly one.
type Format int

const (
	FormatPretty Format = iota
	FormatPlain
)

// ParseFormat accepts "pretty" or "plain", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "pretty":
		return FormatPretty, nil
	case "plain":
		return FormatPlain, nil
	default:
		return 0, fmt.Errorf("reporter: unknown format %q, want \"pretty\" or \"plain\"", s)
	}
}

// Reporter writes annotated, indented output to an underlying writer.
// It is not safe for concurrent use; callers serialize access (the
// runner reports one TestResult at a time after the pool drains).
type Reporter struct {
	w        io.Writer
	format   Format
	indent   int
	useColor bool
}

// New returns a Reporter writing to w in the given format. Color is
// enabled only when useColor is true; callers typically compute that
// from AutoColor.
func New(w io.Writer, format Format, useColor bool) *Reporter {
	return &Reporter{w: w, format: format, useColor: useColor}
}

// AutoColor reports whether w should receive ANSI color codes: only
// when it is *os.Stdout or *os.Stderr and that file descriptor is a
// terminal.
func AutoColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *Reporter) sprint(c *color.Color, a ...any) string {
	if !r.useColor {
		return fmt.Sprint(a...)
	}
	return c.Sprint(a...)
}

func bold(attrs ...color.Attribute) *color.Color {
	return color.New(append(attrs, color.Bold)...)
}

func (r *Reporter) writeIndented(s string) {
	if r.indent == 0 {
		fmt.Fprint(r.w, s)
		return
	}
	pad := strings.Repeat(" ", r.indent)
	lines := strings.SplitAfter(s, "\n")
	for _, line := range lines {
		if line == "" {
			continue
		}
		fmt.Fprint(r.w, pad, line)
	}
}

func (r *Reporter) withIndent(n int, f func()) {
	if r.format != FormatPretty {
		f()
		return
	}
	r.indent += n
	f()
	r.indent -= n
}

// writeAnnotated writes a bold, colored annotation (right-padded to
// annotPadding columns in pretty mode, bare in plain mode), then calls
// f with the indent advanced past the annotation's column.
func (r *Reporter) writeAnnotated(annot string, attr color.Attribute, f func()) {
	c := bold(attr)
	if r.format == FormatPretty {
		r.writeIndented(r.sprint(c, fmt.Sprintf("%*s ", annotPadding, annot)))
	} else {
		r.writeIndented(r.sprint(c, annot+" "))
	}
	r.withIndent(annotPadding+1, f)
}

// Warning reports a non-fatal diagnostic.
func (r *Reporter) Warning(msg string) {
	r.writeAnnotated("warning:", color.FgYellow, func() {
		r.writeIndented(msg + "\n")
	})
}

// Hint adds a suggestion; suppressed entirely in plain format.
func (r *Reporter) Hint(msg string) {
	if r.format != FormatPretty {
		return
	}
	r.writeAnnotated("hint:", color.FgCyan, func() {
		r.writeIndented(msg + "\n")
	})
}

func annotFor(s runner.Stage) (string, color.Attribute) {
	switch s {
	case runner.StagePassedCompilation, runner.StagePassedComparison:
		return "passed", color.FgGreen
	case runner.StageUpdated:
		return "updated", color.FgGreen
	case runner.StageFailedCompilation, runner.StageFailedComparison:
		return "failed", color.FgRed
	case runner.StageFiltered:
		return "filtered", color.FgYellow
	default:
		return "skipped", color.FgYellow
	}
}

// Result reports a single TestResult: the annotation, the test's
// identifier bolded, and in pretty mode the failure details and any
// warnings.
func (r *Reporter) Result(res runner.TestResult) {
	annot, c := annotFor(res.Stage)
	r.writeAnnotated(annot, c, func() {
		r.writeIndented(res.ID.String() + "\n")
		if r.format != FormatPretty {
			return
		}

		if res.CompileError != nil {
			subject := "test"
			if res.IsReference {
				subject = "references"
			}
			r.writeIndented(fmt.Sprintf("Compilation of %s failed\n", subject))
			r.withIndent(2, func() {
				for _, d := range res.CompileError.Diagnostics {
					r.writeIndented(d.String() + "\n")
					for _, h := range d.Hints {
						r.writeIndented("hint: " + h + "\n")
					}
				}
			})
		}

		if res.CompareError != nil {
			r.writeIndented(res.CompareError.Error() + "\n")
		}

		for _, w := range res.Warnings {
			r.warningLine(w)
		}
	})
}

func (r *Reporter) warningLine(d diag.Diagnostic) {
	r.withIndent(2, func() {
		r.writeIndented(d.String() + "\n")
	})
}

// Results reports each TestResult in order.
func (r *Reporter) Results(results []runner.TestResult) {
	for _, res := range results {
		r.Result(res)
	}
}

// Summary aggregates terminal counts across a run, per spec §5's run
// report.
type Summary struct {
	Total             int
	Filtered          int
	FailedCompilation int
	FailedComparison  int
	Passed            int
	Updated           int
	Time              time.Duration
}

// Run returns the number of tests actually executed (Total minus
// Filtered).
func (s Summary) Run() int { return s.Total - s.Filtered }

// IsOK reports whether every executed test passed or updated cleanly.
func (s Summary) IsOK() bool { return s.Passed+s.Updated == s.Run() }

// IsTotalFail reports whether nothing passed.
func (s Summary) IsTotalFail() bool { return s.Passed+s.Updated == 0 && s.Run() > 0 }

// Summarize builds a Summary from a completed run's results.
func Summarize(results []runner.TestResult, elapsed time.Duration) Summary {
	s := Summary{Total: len(results), Time: elapsed}
	for _, res := range results {
		switch res.Stage {
		case runner.StageFiltered:
			s.Filtered++
		case runner.StageFailedCompilation:
			s.FailedCompilation++
		case runner.StageFailedComparison:
			s.FailedComparison++
		case runner.StagePassedCompilation, runner.StagePassedComparison:
			s.Passed++
		case runner.StageUpdated:
			s.Updated++
		}
	}
	return s
}

// WriteSummary prints the "N / M passed. ..." line, always in plain
// format (force) or only in pretty format otherwise, per the teacher's
// "--force" behavior of always showing the exit summary.
func (r *Reporter) WriteSummary(s Summary, isUpdate, force bool) {
	if r.format != FormatPretty && !force {
		return
	}

	r.writeIndented(r.sprint(bold(), "Summary") + "\n")
	r.withIndent(2, func() {
		verb := "passed"
		count := s.Passed
		if isUpdate {
			verb = "updated"
			count = s.Updated
		}

		c := color.FgGreen
		if s.IsTotalFail() {
			c = color.FgRed
		} else if !s.IsOK() {
			c = color.FgYellow
		}

		r.writeIndented(r.sprint(bold(c), count))
		// The rest of the line follows the count on the same line, so it
		// isn't padded again.
		saved := r.indent
		r.indent = 0
		defer func() { r.indent = saved }()
		r.writeIndented(" / ")
		r.writeIndented(r.sprint(bold(), s.Run()))
		r.writeIndented(fmt.Sprintf(" %s.", verb))

		if s.FailedCompilation != 0 {
			r.writeIndented(" ")
			r.writeIndented(r.sprint(bold(color.FgRed), s.FailedCompilation))
			r.writeIndented(" failed compilations.")
		}
		if s.FailedComparison != 0 {
			r.writeIndented(" ")
			r.writeIndented(r.sprint(bold(color.FgRed), s.FailedComparison))
			r.writeIndented(" failed comparisons.")
		}
		if s.Filtered != 0 {
			r.writeIndented(" ")
			r.writeIndented(r.sprint(bold(color.FgYellow), s.Filtered))
			r.writeIndented(" filtered out.")
		}

		r.writeIndented(durationSuffix(s.Time))
	})
}

func durationSuffix(d time.Duration) string {
	secs := int64(d.Seconds())
	switch {
	case secs == 0:
		return "\n"
	case secs < 60:
		return fmt.Sprintf(" took %d %s\n", secs, plural(secs, "second"))
	default:
		m, s := secs/60, secs%60
		return fmt.Sprintf(" took %d %s %d %s\n", m, plural(m, "minute"), s, plural(s, "second"))
	}
}

func plural(n int64, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
