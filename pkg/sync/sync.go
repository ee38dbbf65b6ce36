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

// Package sync refreshes cached skill records from their source
// repository within a bounded latency budget.
package sync

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/skillsync/pkg/rank"
	"github.com/walteh/skillsync/pkg/ref"
	"github.com/walteh/skillsync/pkg/render"
	"github.com/walteh/skillsync/pkg/source"
	"github.com/walteh/skillsync/pkg/store"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout is the resync latency budget.
const DefaultTimeout = 5 * time.Second

// ErrTimeout reports that the timeout budget won the race against the
// fetch sequence.
var ErrTimeout = errors.New("resync timed out")

// Provenance tags where a returned record's data came from.
type Provenance string

const (
	ProvenanceSource Provenance = "source"
	ProvenanceCache  Provenance = "cache"
)

// 📦 Result is the outcome of a resync: the refreshed record plus a tag
// saying whether live data was actually obtained.
type Result struct {
	Record     store.SkillRecord `json:"record"`
	Provenance Provenance        `json:"provenance"`
}

// 🎯 Orchestrator composes the reference parser, the source client, the
// render classifier and the rank calculator into one resync operation.
type Orchestrator struct {
	client  source.Client
	timeout time.Duration
}

// 🏭 NewOrchestrator creates an Orchestrator. A zero timeout means
// DefaultTimeout.
func NewOrchestrator(client source.Client, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Orchestrator{client: client, timeout: timeout}
}

// ReadCached returns the record unchanged. This is the default path; no
// I/O happens and no field is ever touched.
func (o *Orchestrator) ReadCached(rec store.SkillRecord) Result {
	return Result{Record: rec, Provenance: ProvenanceCache}
}

// Resync refreshes rec from its source repository.
//
// The fetch sequence races the timeout budget; whichever finishes first
// wins. The losing fetch is not cancelled, it keeps running in the
// background and its result is discarded. Bounding caller-visible
// latency matters more here than saving the wasted call.
//
// Parse failures are returned as-is: a malformed source URL is a data
// problem, not a transient one. Every other failure (network, rate
// limit, ErrTimeout) is transient; callers fall back to the cached
// record via ReadCached.
func (o *Orchestrator) Resync(ctx context.Context, rec store.SkillRecord, practiceCount int) (Result, error) {
	parsed, err := ref.Parse(rec.SourceURL)
	if err != nil {
		return Result{}, errors.Errorf("parsing source url: %w", err)
	}

	type outcome struct {
		result Result
		err    error
	}

	// Buffered so the losing fetch can complete and be discarded.
	done := make(chan outcome, 1)
	go func() {
		result, err := o.fetch(ctx, parsed, rec, practiceCount)
		done <- outcome{result: result, err: err}
	}()

	timer := time.NewTimer(o.timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		if out.err != nil {
			return Result{}, out.err
		}
		return out.result, nil
	case <-timer.C:
		zerolog.Ctx(ctx).Warn().
			Int64("skill_id", rec.ID).
			Dur("budget", o.timeout).
			Msg("resync timed out, discarding in-flight fetch")
		return Result{}, errors.Errorf("%w after %s", ErrTimeout, o.timeout)
	}
}

// fetch runs the full refresh sequence against the source API.
func (o *Orchestrator) fetch(ctx context.Context, parsed ref.Reference, rec store.SkillRecord, practiceCount int) (Result, error) {
	info, err := o.client.GetRepoInfo(ctx, parsed.Owner, parsed.Repo)
	if err != nil {
		return Result{}, errors.Errorf("getting repository info: %w", err)
	}

	branch := parsed.Ref
	if branch == "" {
		branch = info.DefaultBranch
	}

	var (
		owner    source.OwnerInfo
		commit   source.Commit
		document string
		hasDoc   bool
	)

	// Independent of each other once the default branch is known; run
	// them together to stay inside the latency budget.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		owner, err = o.client.GetOwnerInfo(gctx, info.OwnerLogin)
		if err != nil {
			return errors.Errorf("getting owner info: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		commit, err = o.client.GetLatestCommit(gctx, parsed.Owner, parsed.Repo, branch, parsed.Path)
		if err != nil {
			return errors.Errorf("getting latest commit: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		document, hasDoc = o.client.GetFileContent(gctx, parsed.Owner, parsed.Repo, branch, parsed.Path)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	out := rec

	out.RepoStars = info.Stars
	out.RepoOwnerAvatarURL = info.OwnerAvatarURL
	out.RepoOwnerName = owner.DisplayName
	if out.RepoOwnerName == "" {
		out.RepoOwnerName = info.OwnerLogin
	}
	if !commit.Date.IsZero() {
		out.UpdatedAt = commit.Date
	}

	out.Markdown = document
	out.MarkdownRenderMode = render.ModePlain
	if hasDoc {
		out.MarkdownRenderMode = render.Classify(document)
	}

	if practiceCount < 0 {
		practiceCount = 0
	}
	stars := info.Stars
	if stars < 0 {
		stars = 0
	}
	out.HeatScore = rank.Heat(practiceCount, stars)

	return Result{Record: out, Provenance: ProvenanceSource}, nil
}
