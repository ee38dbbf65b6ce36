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

package github

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"path"

	"github.com/google/go-github/v55/github"
	"github.com/rs/zerolog"
	"github.com/walteh/skillsync/pkg/source"
	"gitlab.com/tozd/go/errors"
)

func init() {
	source.Register("github", New)
}

// GitHubAPI defines the GitHub API operations we need, so tests can
// swap in fakes without a network.
type GitHubAPI interface {
	GetRepo(ctx context.Context, owner, repo string) (*github.Repository, *github.Response, error)
	GetUser(ctx context.Context, login string) (*github.User, *github.Response, error)
	ListCommits(ctx context.Context, owner, repo string, opts *github.CommitsListOptions) ([]*github.RepositoryCommit, *github.Response, error)
	GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error)
	GetArchiveLink(ctx context.Context, owner, repo string, format github.ArchiveFormat, opts *github.RepositoryContentGetOptions, followRedirects bool) (*url.URL, *github.Response, error)
}

// 🎯 Client implements source.Client against the GitHub API
type Client struct {
	api        GitHubAPI
	httpClient *http.Client
	token      string
}

var _ source.Client = (*Client)(nil)

// 🏭 New creates a new GitHub client. The token may be empty for
// anonymous access to public repositories.
func New(ctx context.Context, token string) (source.Client, error) {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &Client{
		api:        &githubAPIWrapper{client: client},
		httpClient: http.DefaultClient,
		token:      token,
	}, nil
}

// githubAPIWrapper wraps the go-github client to implement our interface
type githubAPIWrapper struct {
	client *github.Client
}

func (w *githubAPIWrapper) GetRepo(ctx context.Context, owner, repo string) (*github.Repository, *github.Response, error) {
	return w.client.Repositories.Get(ctx, owner, repo)
}

func (w *githubAPIWrapper) GetUser(ctx context.Context, login string) (*github.User, *github.Response, error) {
	return w.client.Users.Get(ctx, login)
}

func (w *githubAPIWrapper) ListCommits(ctx context.Context, owner, repo string, opts *github.CommitsListOptions) ([]*github.RepositoryCommit, *github.Response, error) {
	return w.client.Repositories.ListCommits(ctx, owner, repo, opts)
}

func (w *githubAPIWrapper) GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error) {
	return w.client.Repositories.GetContents(ctx, owner, repo, path, opts)
}

func (w *githubAPIWrapper) GetArchiveLink(ctx context.Context, owner, repo string, format github.ArchiveFormat, opts *github.RepositoryContentGetOptions, followRedirects bool) (*url.URL, *github.Response, error) {
	return w.client.Repositories.GetArchiveLink(ctx, owner, repo, format, opts, followRedirects)
}

// 🔍 GetRepoInfo returns repository metadata
func (c *Client) GetRepoInfo(ctx context.Context, owner, repo string) (source.RepoInfo, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("owner", owner).Str("repo", repo).Msg("getting repository info")

	r, _, err := c.api.GetRepo(ctx, owner, repo)
	if err != nil {
		return source.RepoInfo{}, errors.Errorf("getting repository: %w", err)
	}

	return source.RepoInfo{
		DefaultBranch:  r.GetDefaultBranch(),
		Stars:          r.GetStargazersCount(),
		OwnerLogin:     r.GetOwner().GetLogin(),
		OwnerAvatarURL: r.GetOwner().GetAvatarURL(),
	}, nil
}

// 👤 GetOwnerInfo returns the owner's display info
func (c *Client) GetOwnerInfo(ctx context.Context, login string) (source.OwnerInfo, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("login", login).Msg("getting owner info")

	user, _, err := c.api.GetUser(ctx, login)
	if err != nil {
		return source.OwnerInfo{}, errors.Errorf("getting user: %w", err)
	}

	// GetName is empty when the user never set a display name. That is
	// not an error; callers fall back to the login.
	return source.OwnerInfo{DisplayName: user.GetName()}, nil
}

// 🕐 GetLatestCommit returns the newest commit on branch touching path
func (c *Client) GetLatestCommit(ctx context.Context, owner, repo, branch, subPath string) (source.Commit, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("owner", owner).Str("repo", repo).Str("branch", branch).Str("path", subPath).Msg("getting latest commit")

	opts := &github.CommitsListOptions{
		SHA:         branch,
		ListOptions: github.ListOptions{PerPage: 1},
	}
	if subPath != "" {
		opts.Path = subPath
	}

	commits, _, err := c.api.ListCommits(ctx, owner, repo, opts)
	if err != nil {
		return source.Commit{}, errors.Errorf("listing commits: %w", err)
	}
	if len(commits) == 0 {
		return source.Commit{}, nil
	}

	first := commits[0]
	return source.Commit{
		SHA:  first.GetSHA(),
		Date: first.GetCommit().GetCommitter().GetDate().Time,
	}, nil
}

// 📄 GetFileContent fetches the SKILL.md document, best effort
func (c *Client) GetFileContent(ctx context.Context, owner, repo, branch, subPath string) (string, bool) {
	logger := zerolog.Ctx(ctx)

	filePath := source.SkillFileName
	if subPath != "" {
		filePath = path.Join(subPath, source.SkillFileName)
	}

	content, _, _, err := c.api.GetContents(ctx, owner, repo, filePath, &github.RepositoryContentGetOptions{
		Ref: branch,
	})
	if err != nil {
		// The repository may legitimately lack the file. Never fail the
		// resync over it.
		logger.Debug().Err(err).Str("path", filePath).Msg("skill document not available")
		return "", false
	}
	if content == nil {
		// The path resolved to a directory listing, not a file.
		logger.Debug().Str("path", filePath).Msg("skill document path is not a file")
		return "", false
	}

	data, err := content.GetContent()
	if err != nil {
		logger.Debug().Err(err).Str("path", filePath).Msg("decoding skill document failed")
		return "", false
	}

	return data, true
}

// 📦 FetchArchive downloads the repository zipball for a branch
func (c *Client) FetchArchive(ctx context.Context, owner, repo, branch string) ([]byte, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("owner", owner).Str("repo", repo).Str("branch", branch).Msg("fetching archive")

	link, _, err := c.api.GetArchiveLink(ctx, owner, repo, github.Zipball, &github.RepositoryContentGetOptions{
		Ref: branch,
	}, true)
	if err != nil {
		return nil, errors.Errorf("getting archive link: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link.String(), nil)
	if err != nil {
		return nil, errors.Errorf("creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Errorf("downloading archive: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Errorf("reading archive body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &source.DownloadFailedError{Status: resp.StatusCode, Body: string(data)}
	}

	return data, nil
}
