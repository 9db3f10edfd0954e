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

// Package fsutil abstracts filesystem operations so the store, VCS gate
// and document codec can be tested against an in-memory fake.
package fsutil

import (
	"io/fs"
	"os"
)

// FS is the set of filesystem operations the core needs. We can't use
// os.DirFS or fs.StatFS alone because they lack some methods we need, so
// we define our own interface.
type FS interface {
	fs.StatFS

	MkdirAll(string, os.FileMode) error
	Open(string) (fs.File, error)
	OpenFile(string, int, os.FileMode) (*os.File, error)
	ReadFile(string) ([]byte, error)
	ReadDir(string) ([]fs.DirEntry, error)
	RemoveAll(string) error
	WriteFile(string, []byte, os.FileMode) error
}

// Permission bits used throughout the core for created files and dirs.
const (
	OwnerRWXPerms = 0o700
	OwnerRWPerms  = 0o600
)

// RealFS is the non-test implementation of FS, backed by the "os" package.
type RealFS struct{}

var _ FS = (*RealFS)(nil)

func (r *RealFS) MkdirAll(name string, perm os.FileMode) error {
	return os.MkdirAll(name, perm) //nolint:wrapcheck
}

func (r *RealFS) Open(name string) (fs.File, error) {
	return os.Open(name) //nolint:wrapcheck
}

func (r *RealFS) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(name, flag, perm) //nolint:wrapcheck
}

func (r *RealFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name) //nolint:wrapcheck
}

func (r *RealFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name) //nolint:wrapcheck
}

func (r *RealFS) RemoveAll(name string) error {
	return os.RemoveAll(name) //nolint:wrapcheck
}

func (r *RealFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name) //nolint:wrapcheck
}

func (r *RealFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm) //nolint:wrapcheck
}

// Exists reports whether path exists on fsys, treating a not-found error
// as "doesn't exist" rather than an error.
func Exists(fsys FS, path string) (bool, error) {
	_, err := fsys.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RemoveAllIgnoreNotFound removes path recursively, treating a not-found
// error as success.
func RemoveAllIgnoreNotFound(fsys FS, path string) error {
	if err := fsys.RemoveAll(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
