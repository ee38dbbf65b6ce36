// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package archive repackages whole-repository zip archives into
// sub-directory-scoped archives, re-rooted under a new top-level name.
package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrEmptyArchive = errors.New("archive has no entries")
	ErrPathNotFound = errors.New("path not found in archive")
)

// 🔧 Options configures repackaging.
type Options struct {
	// ExcludeGlobs are doublestar patterns matched against the
	// rewritten entry paths; matching entries are dropped.
	ExcludeGlobs []string
}

// Repack produces a new zip containing only subPath's contents from the
// source archive, re-rooted under outDirName.
//
// Zipballs contain exactly one top-level directory (`<repo>-<ref>/`);
// that root is discovered from the first entry, not assumed. An empty
// subPath means the whole repository: the input is returned unchanged.
func Repack(data []byte, subPath, outDirName string) ([]byte, error) {
	return RepackWithOptions(data, subPath, outDirName, Options{})
}

// 📦 RepackWithOptions is Repack with exclude patterns applied.
func RepackWithOptions(data []byte, subPath, outDirName string, opts Options) ([]byte, error) {
	subPath = strings.Trim(subPath, "/")
	if subPath == "" {
		return data, nil
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Errorf("opening archive: %w", err)
	}
	if len(reader.File) == 0 {
		return nil, ErrEmptyArchive
	}

	root, _, _ := strings.Cut(reader.File[0].Name, "/")
	prefix := root + "/" + subPath + "/"

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	writtenDirs := map[string]bool{}
	matched := 0

	for _, f := range reader.File {
		if !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		matched++

		rel := strings.TrimPrefix(f.Name, prefix)
		if rel == "" {
			// the sub-directory entry itself
			continue
		}
		out := outDirName + "/" + rel

		if excluded(strings.TrimSuffix(out, "/"), opts.ExcludeGlobs) {
			continue
		}

		if strings.HasSuffix(f.Name, "/") {
			if err := writeDir(w, out, writtenDirs); err != nil {
				return nil, err
			}
			continue
		}

		// Parent directories may only appear implicitly through file
		// entries; emit markers for them once each.
		if idx := strings.LastIndex(out, "/"); idx > 0 {
			if err := writeDirChain(w, out[:idx], writtenDirs); err != nil {
				return nil, err
			}
		}

		if err := copyFile(w, f, out); err != nil {
			return nil, err
		}
	}

	if matched == 0 {
		return nil, errors.Errorf("%w: %q", ErrPathNotFound, subPath)
	}

	if err := w.Close(); err != nil {
		return nil, errors.Errorf("finalizing archive: %w", err)
	}
	return buf.Bytes(), nil
}

func excluded(path string, globs []string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, path); err == nil && ok {
			return true
		}
	}
	return false
}

func writeDirChain(w *zip.Writer, dir string, written map[string]bool) error {
	parts := strings.Split(dir, "/")
	for i := range parts {
		if err := writeDir(w, strings.Join(parts[:i+1], "/"), written); err != nil {
			return err
		}
	}
	return nil
}

func writeDir(w *zip.Writer, dir string, written map[string]bool) error {
	name := strings.TrimSuffix(dir, "/") + "/"
	if written[name] {
		return nil
	}
	written[name] = true

	if _, err := w.Create(name); err != nil {
		return errors.Errorf("writing directory entry %s: %w", name, err)
	}
	return nil
}

func copyFile(w *zip.Writer, f *zip.File, name string) error {
	rc, err := f.Open()
	if err != nil {
		return errors.Errorf("opening entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	header := &zip.FileHeader{
		Name:     name,
		Method:   f.Method,
		Modified: f.Modified,
	}
	out, err := w.CreateHeader(header)
	if err != nil {
		return errors.Errorf("creating entry %s: %w", name, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		return errors.Errorf("copying entry %s: %w", name, err)
	}
	return nil
}
