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
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/abcxyz/pkg/cli"
	"github.com/abcxyz/pkg/logging"

	"github.com/typst-community/tytanic/commands"
	"github.com/typst-community/tytanic/internal/version"
)

const (
	defaultLogLevel  = logging.LevelWarning
	defaultLogFormat = logging.FormatText
)

var rootCmd = func() *cli.RootCommand {
	return &cli.RootCommand{
		Name:    version.Name,
		Version: version.HumanVersion,
		Commands: map[string]cli.CommandFactory{
			"status": func() cli.Command { return &commands.StatusCommand{} },
			"st":     func() cli.Command { return &commands.StatusCommand{} },
			"list":   func() cli.Command { return &commands.ListCommand{} },
			"ls":     func() cli.Command { return &commands.ListCommand{} },
			"run":    func() cli.Command { return &commands.RunCommand{} },
			"r":      func() cli.Command { return &commands.RunCommand{} },
			"update": func() cli.Command { return &commands.UpdateCommand{} },
			"new":    func() cli.Command { return &commands.NewCommand{} },
			"add":    func() cli.Command { return &commands.NewCommand{} },
			"remove": func() cli.Command { return &commands.RemoveCommand{} },
			"rm":     func() cli.Command { return &commands.RemoveCommand{} },
			"util": func() cli.Command {
				return &cli.RootCommand{
					Name:        "util",
					Description: "maintenance subcommands",
					Commands: map[string]cli.CommandFactory{
						"clean": func() cli.Command { return &commands.CleanCommand{} },
					},
				}
			},
		},
	}
}

func main() {
	ctx, done := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer done()

	setLogEnvVars()
	ctx = logging.WithLogger(ctx, logging.NewFromEnv("TYTANIC_"))

	os.Exit(realMain(ctx))
}

func setLogEnvVars() {
	if os.Getenv("TYTANIC_LOG_FORMAT") == "" {
		os.Setenv("TYTANIC_LOG_FORMAT", string(defaultLogFormat))
	}
	if os.Getenv("TYTANIC_LOG_LEVEL") == "" {
		os.Setenv("TYTANIC_LOG_LEVEL", defaultLogLevel.String())
	}
}

// realMain runs the root command and maps its error, if any, to the
// process exit code taxonomy from spec §7: a *commands.ExitError
// carries its own code, anything else is an "unexpected error" (3).
func realMain(ctx context.Context) int {
	err := rootCmd().Run(ctx, os.Args[1:])
	if err == nil {
		return 0
	}

	fmt.Fprintln(os.Stderr, err.Error())

	var exit *commands.ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	return 3
}
