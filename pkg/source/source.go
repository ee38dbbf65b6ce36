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

// Package source defines the read operations the sync core needs from a
// code-hosting API, plus the archive download used for skill zips.
package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

// SkillFileName is the document fetched from the skill's sub-directory.
const SkillFileName = "SKILL.md"

// 📦 RepoInfo is the repository metadata snapshot used by a resync.
type RepoInfo struct {
	DefaultBranch  string
	Stars          int
	OwnerLogin     string
	OwnerAvatarURL string
}

// 👤 OwnerInfo carries the owner's display info. DisplayName may be
// empty; callers fall back to the login.
type OwnerInfo struct {
	DisplayName string
}

// 🕐 Commit is the most recent commit touching a path. The zero value
// means the history query returned nothing.
type Commit struct {
	SHA  string
	Date time.Time
}

// 🔌 Client is the interface for code-hosting API clients. All calls are
// stateless; one instance is safe to share across concurrent requests.
type Client interface {
	// GetRepoInfo returns repository metadata.
	GetRepoInfo(ctx context.Context, owner, repo string) (RepoInfo, error)

	// GetOwnerInfo returns the owner's display info for a login.
	GetOwnerInfo(ctx context.Context, login string) (OwnerInfo, error)

	// GetLatestCommit returns the newest commit on branch touching path
	// (whole repository when path is empty). A repository with no
	// matching commits yields the zero Commit, not an error.
	GetLatestCommit(ctx context.Context, owner, repo, branch, path string) (Commit, error)

	// GetFileContent fetches <path>/SKILL.md (or SKILL.md at the root
	// when path is empty). The file is optional: every failure,
	// including not-found, reports ok=false rather than an error.
	GetFileContent(ctx context.Context, owner, repo, branch, path string) (content string, ok bool)

	// FetchArchive downloads the full repository archive for a branch,
	// buffered in memory.
	FetchArchive(ctx context.Context, owner, repo, branch string) ([]byte, error)
}

// ❌ DownloadFailedError reports a non-success archive download,
// carrying the response body for diagnostics.
type DownloadFailedError struct {
	Status int
	Body   string
}

func (e *DownloadFailedError) Error() string {
	return fmt.Sprintf("archive download failed with status %d: %s", e.Status, e.Body)
}

// 🏭 Factory creates a new client with the given credential.
type Factory func(ctx context.Context, token string) (Client, error)

var (
	// 🗺️ factories is a map of client names to factories
	factories = make(map[string]Factory)
)

// 📝 Register registers a client factory.
func Register(name string, factory Factory) {
	factories[name] = factory
}

// 🎯 New creates a client by name.
func New(ctx context.Context, name, token string) (Client, error) {
	factory, ok := factories[name]
	if !ok {
		options := make([]string, 0, len(factories))
		for k := range factories {
			options = append(options, k)
		}
		return nil, errors.Errorf("source %s not found, options: %s", name, strings.Join(options, ", "))
	}
	return factory(ctx, token)
}
