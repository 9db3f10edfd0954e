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

package world

import (
	"fmt"
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"
	gomodsemver "golang.org/x/mod/semver"
)

// PackageSpec is a parsed `@preview/name:1.2.3`-style package specifier,
// as referenced by a test's source when it imports a package. The core
// doesn't resolve or download packages (that's the package manager's
// job, out of scope per spec §1), but it validates specifiers well
// enough to give a useful error before handing them to the compiler.
type PackageSpec struct {
	Namespace string
	Name      string
	Version   *mmsemver.Version
}

// ParsePackageSpec parses a spec of the form "@namespace/name:version".
func ParsePackageSpec(s string) (PackageSpec, error) {
	if !strings.HasPrefix(s, "@") {
		return PackageSpec{}, fmt.Errorf("world: package spec %q must start with '@'", s)
	}
	rest := s[1:]

	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return PackageSpec{}, fmt.Errorf("world: package spec %q missing '/' between namespace and name", s)
	}
	namespace, nameAndVersion := rest[:slash], rest[slash+1:]

	colon := strings.IndexByte(nameAndVersion, ':')
	if colon < 0 {
		return PackageSpec{}, fmt.Errorf("world: package spec %q missing ':' before version", s)
	}
	name, versionStr := nameAndVersion[:colon], nameAndVersion[colon+1:]

	if namespace == "" || name == "" {
		return PackageSpec{}, fmt.Errorf("world: package spec %q has an empty namespace or name", s)
	}

	if !gomodsemver.IsValid("v" + versionStr) {
		return PackageSpec{}, fmt.Errorf("world: package spec %q has an invalid version %q", s, versionStr)
	}

	version, err := mmsemver.NewVersion(versionStr)
	if err != nil {
		return PackageSpec{}, fmt.Errorf("world: package spec %q: %w", s, err)
	}

	return PackageSpec{Namespace: namespace, Name: name, Version: version}, nil
}

func (p PackageSpec) String() string {
	return fmt.Sprintf("@%s/%s:%s", p.Namespace, p.Name, p.Version.String())
}

// Satisfies reports whether p's version satisfies the given constraint
// string, e.g. ">=1.2.0, <2.0.0".
func (p PackageSpec) Satisfies(constraint string) (bool, error) {
	c, err := mmsemver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("world: invalid constraint %q: %w", constraint, err)
	}
	return c.Check(p.Version), nil
}
