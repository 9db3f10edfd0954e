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

// Package junit renders a completed run's results as a single jUnit
// XML testsuite, for CI systems that consume that format. This is a
// narrow, fully specified output format with no ecosystem library in
// the corpus producing it, so it is written directly against
// encoding/xml.
package junit

import (
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/typst-community/tytanic/tytanic/paths"
	"github.com/typst-community/tytanic/tytanic/runner"
)

// testsuite is the XML document root jUnit consumers expect.
type testsuite struct {
	XMLName   xml.Name `xml:"testsuite"`
	Name      string   `xml:"name,attr"`
	Tests     int      `xml:"tests,attr"`
	Failures  int      `xml:"failures,attr"`
	Skipped   int      `xml:"skipped,attr"`
	Time      string   `xml:"time,attr"`
	Timestamp string   `xml:"timestamp,attr"`

	Cases []testcase `xml:"testcase"`
}

type testcase struct {
	Name      string  `xml:"name,attr"`
	Classname string  `xml:"classname,attr"`
	Time      string  `xml:"time,attr"`
	File      string  `xml:"file,attr,omitempty"`
	Skipped   *empty  `xml:"skipped,omitempty"`
	Failure   *failure `xml:"failure,omitempty"`
	SystemErr string  `xml:"system-err,omitempty"`
}

type empty struct{}

type failure struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

// Write renders results as a single jUnit testsuite named suiteName,
// timestamped at when, to w. p resolves each test's script path,
// recorded relative to the project root as the testcase's file
// attribute. classname is the identifier's directory portion (every
// segment but the last); name is the last segment.
func Write(w io.Writer, suiteName string, p paths.Paths, results []runner.TestResult, when time.Time) error {
	suite := testsuite{
		Name:      suiteName,
		Timestamp: when.UTC().Format(time.RFC3339),
	}

	var total time.Duration
	for _, res := range results {
		total += res.Duration

		classname := ""
		if parent, ok := res.ID.Parent(); ok {
			classname = parent.String()
		}

		file := ""
		if rel, err := filepath.Rel(p.Root(), p.TestScript(res.ID)); err == nil {
			file = rel
		}

		tc := testcase{
			Name:      res.ID.Name(),
			Classname: classname,
			Time:      formatSeconds(res.Duration),
			File:      file,
		}

		switch res.Stage {
		case runner.StageFiltered, runner.StageSkipped:
			tc.Skipped = &empty{}
			suite.Skipped++
		case runner.StageFailedCompilation:
			msg := "compilation failed"
			if res.IsReference {
				msg = "reference compilation failed"
			}
			tc.Failure = &failure{Message: msg, Body: compileErrorBody(res)}
			suite.Failures++
		case runner.StageFailedComparison:
			body := ""
			if res.CompareError != nil {
				body = res.CompareError.Error()
			}
			tc.Failure = &failure{Message: "comparison failed", Body: body}
			suite.Failures++
		}

		if len(res.Warnings) != 0 {
			tc.SystemErr = warningsBody(res)
		}

		suite.Cases = append(suite.Cases, tc)
	}

	suite.Tests = len(results)
	suite.Time = formatSeconds(total)

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("junit: writing header: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(suite); err != nil {
		return fmt.Errorf("junit: encoding testsuite: %w", err)
	}
	return nil
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

func compileErrorBody(res runner.TestResult) string {
	if res.CompileError == nil {
		return ""
	}
	body := ""
	for _, d := range res.CompileError.Diagnostics {
		body += d.String() + "\n"
	}
	return body
}

func warningsBody(res runner.TestResult) string {
	body := ""
	for _, w := range res.Warnings {
		body += w.String() + "\n"
	}
	return body
}
