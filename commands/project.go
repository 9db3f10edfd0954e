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

package commands

import (
	"fmt"
	"path/filepath"

	"github.com/typst-community/tytanic/internal/fsutil"
	"github.com/typst-community/tytanic/tytanic/config"
	"github.com/typst-community/tytanic/tytanic/paths"
	"github.com/typst-community/tytanic/tytanic/store"
	"github.com/typst-community/tytanic/tytanic/suite"
	"github.com/typst-community/tytanic/tytanic/vcs"

	"github.com/typst-community/tytanic/flags"
)

// project bundles everything a subcommand needs once it has resolved
// --root: the filesystem, the path layout, the VCS gate, the test
// store, the optional project config, and the collected suite.
type project struct {
	Root   string
	FS     fsutil.FS
	Paths  paths.Paths
	Gate   *vcs.Gate
	Store  *store.Store
	Config config.Config
	Suite  *suite.Suite
}

// openProject resolves --root, loads .tytanic.yaml, and collects the
// suite. It's the one entry point every subcommand that touches the
// store goes through, mirroring how the teacher's commands each resolve
// a template source before doing anything else.
func openProject(g *flags.GlobalFlags) (*project, error) {
	root, err := filepath.Abs(g.Root)
	if err != nil {
		return nil, userErr(fmt.Errorf("resolving --root %q: %w", g.Root, err))
	}

	fsys := &fsutil.RealFS{}
	exists, err := fsutil.Exists(fsys, root)
	if err != nil {
		return nil, userErr(fmt.Errorf("checking project root %s: %w", root, err))
	}
	if !exists {
		return nil, userErr(fmt.Errorf("project root %s does not exist", root))
	}

	cfg, err := config.Load(fsys, root)
	if err != nil {
		return nil, userErr(err)
	}

	p := paths.New(root)
	gate := vcs.New(fsys, root)
	st := store.New(fsys, p, gate)

	su, err := suite.Collect(st)
	if err != nil {
		return nil, userErr(err)
	}

	return &project{
		Root:   root,
		FS:     fsys,
		Paths:  p,
		Gate:   gate,
		Store:  st,
		Config: cfg,
		Suite:  su,
	}, nil
}
