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

// Package skill composes the store, the sync orchestrator and the
// archive repackager into the operations the route layer calls.
package skill

import (
	"context"
	"path"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/skillsync/pkg/archive"
	"github.com/walteh/skillsync/pkg/ref"
	"github.com/walteh/skillsync/pkg/source"
	"github.com/walteh/skillsync/pkg/store"
	syncpkg "github.com/walteh/skillsync/pkg/sync"
	"gitlab.com/tozd/go/errors"
)

// ErrDownloadNotSupported reports a download request for a record whose
// zip downloads are disabled. The route layer maps it to a 400.
var ErrDownloadNotSupported = errors.New("record does not support zip downloads")

// 🎯 Service exposes the skill operations backed by the sync core.
type Service struct {
	store        store.Store
	orchestrator *syncpkg.Orchestrator
	client       source.Client
	excludeGlobs []string
}

// 🏭 NewService creates a Service. excludeGlobs are applied when
// repackaging download archives.
func NewService(st store.Store, client source.Client, timeout time.Duration, excludeGlobs []string) *Service {
	return &Service{
		store:        st,
		orchestrator: syncpkg.NewOrchestrator(client, timeout),
		client:       client,
		excludeGlobs: excludeGlobs,
	}
}

// Get returns the record with the given id. When refresh is false this
// is a pure cache read. When refresh is true a resync is attempted:
// soft failures (network, rate limit, timeout) degrade to the cached
// record with provenance "cache"; a malformed source URL surfaces,
// since no fetch can ever succeed for that record.
func (s *Service) Get(ctx context.Context, id int64, refresh bool) (syncpkg.Result, error) {
	logger := zerolog.Ctx(ctx)

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return syncpkg.Result{}, errors.Errorf("getting record: %w", err)
	}

	if !refresh {
		return s.orchestrator.ReadCached(rec), nil
	}

	practices, err := s.store.CountListedPractices(ctx, id)
	if err != nil {
		logger.Warn().Err(err).Int64("skill_id", id).Msg("counting practices failed, using zero")
		practices = 0
	}

	result, err := s.orchestrator.Resync(ctx, rec, practices)
	if err != nil {
		if errors.Is(err, ref.ErrInvalidHost) || errors.Is(err, ref.ErrInvalidPath) {
			return syncpkg.Result{}, err
		}
		// Stale beats visibly broken on this read path.
		logger.Warn().Err(err).Int64("skill_id", id).Msg("resync failed, serving cached record")
		return s.orchestrator.ReadCached(rec), nil
	}

	// Persistence is best effort: a failed patch means the next read is
	// stale, but this caller still gets the fresh data.
	if err := s.store.Patch(ctx, id, patchFrom(result.Record)); err != nil {
		logger.Error().Err(err).Int64("skill_id", id).Msg("persisting resync patch failed")
	}

	return result, nil
}

// patchFrom builds the field patch a successful resync persists.
func patchFrom(rec store.SkillRecord) store.Patch {
	return store.Patch{
		RepoStars:          ptr(rec.RepoStars),
		RepoOwnerName:      ptr(rec.RepoOwnerName),
		RepoOwnerAvatarURL: ptr(rec.RepoOwnerAvatarURL),
		UpdatedAt:          ptr(rec.UpdatedAt),
		Markdown:           ptr(rec.Markdown),
		MarkdownRenderMode: ptr(rec.MarkdownRenderMode),
		HeatScore:          ptr(rec.HeatScore),
	}
}

func ptr[T any](v T) *T { return &v }

// Download fetches the record's repository archive and repackages it to
// the record's sub-directory. It returns the zip bytes and a suggested
// filename. There is no cache to fall back to: every failure surfaces.
func (s *Service) Download(ctx context.Context, id int64) ([]byte, string, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, "", errors.Errorf("getting record: %w", err)
	}

	if !rec.SupportsDownload {
		return nil, "", errors.Errorf("%w: id %d", ErrDownloadNotSupported, id)
	}

	parsed, err := ref.Parse(rec.SourceURL)
	if err != nil {
		return nil, "", errors.Errorf("parsing source url: %w", err)
	}

	branch := parsed.Ref
	if branch == "" {
		info, err := s.client.GetRepoInfo(ctx, parsed.Owner, parsed.Repo)
		if err != nil {
			return nil, "", errors.Errorf("resolving default branch: %w", err)
		}
		branch = info.DefaultBranch
	}

	data, err := s.client.FetchArchive(ctx, parsed.Owner, parsed.Repo, branch)
	if err != nil {
		return nil, "", errors.Errorf("fetching archive: %w", err)
	}

	outName := downloadName(rec, parsed)
	repacked, err := archive.RepackWithOptions(data, parsed.Path, outName, archive.Options{
		ExcludeGlobs: s.excludeGlobs,
	})
	if err != nil {
		return nil, "", errors.Errorf("repackaging archive: %w", err)
	}

	return repacked, outName + ".zip", nil
}

// downloadName picks the top-level directory name for a repackaged
// archive: the record name, else the sub-directory's base name, else
// the repository name.
func downloadName(rec store.SkillRecord, parsed ref.Reference) string {
	if rec.Name != "" {
		return rec.Name
	}
	if parsed.Path != "" {
		return path.Base(parsed.Path)
	}
	return parsed.Repo
}
