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

// Package ref parses skill source URLs into repository references.
package ref

import (
	"net/url"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Host is the only code-hosting domain skill records may point at.
const Host = "github.com"

var (
	ErrInvalidHost = errors.New("source url host is not " + Host)
	ErrInvalidPath = errors.New("source url path is missing owner or repository")
)

// 📦 Reference identifies a repository, and optionally a ref and a
// sub-directory within it. Ref and Path are empty when the URL does not
// carry them; callers substitute the repository's default branch.
type Reference struct {
	Owner string
	Repo  string
	Ref   string
	Path  string
}

// RepoSlug returns the "owner/repo" form of the reference.
func (r Reference) RepoSlug() string {
	return r.Owner + "/" + r.Repo
}

// Parse parses a skill source URL into a Reference.
//
// Accepted shapes:
//
//	https://github.com/owner/repo
//	https://github.com/owner/repo.git
//	https://github.com/owner/repo/tree/<ref>/<sub/path>
//	https://github.com/owner/repo/blob/<ref>/<sub/path>
func Parse(rawURL string) (Reference, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Reference{}, errors.Errorf("parsing source url: %w", err)
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	if host != Host {
		return Reference{}, errors.Errorf("%w: %q", ErrInvalidHost, u.Hostname())
	}

	segments := splitPath(u.Path)
	if len(segments) < 2 {
		return Reference{}, errors.Errorf("%w: %q", ErrInvalidPath, u.Path)
	}

	out := Reference{
		Owner: segments[0],
		Repo:  strings.TrimSuffix(segments[1], ".git"),
	}

	// A literal tree/blob segment marks an explicit ref, with everything
	// after it being the sub-path.
	if len(segments) >= 4 && (segments[2] == "tree" || segments[2] == "blob") {
		out.Ref = segments[3]
		out.Path = strings.Join(segments[4:], "/")
	}

	return out, nil
}

func splitPath(p string) []string {
	var segments []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
