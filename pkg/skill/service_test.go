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

package skill

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/skillsync/pkg/ref"
	"github.com/walteh/skillsync/pkg/render"
	"github.com/walteh/skillsync/pkg/source"
	"github.com/walteh/skillsync/pkg/store"
	syncpkg "github.com/walteh/skillsync/pkg/sync"
	"gitlab.com/tozd/go/errors"
)

// fakeClient implements source.Client
type fakeClient struct {
	repoInfo    source.RepoInfo
	repoInfoErr error
	ownerInfo   source.OwnerInfo
	commit      source.Commit
	document    string
	hasDoc      bool
	archive     []byte
	archiveErr  error
}

func (f *fakeClient) GetRepoInfo(ctx context.Context, owner, repo string) (source.RepoInfo, error) {
	return f.repoInfo, f.repoInfoErr
}

func (f *fakeClient) GetOwnerInfo(ctx context.Context, login string) (source.OwnerInfo, error) {
	return f.ownerInfo, nil
}

func (f *fakeClient) GetLatestCommit(ctx context.Context, owner, repo, branch, path string) (source.Commit, error) {
	return f.commit, nil
}

func (f *fakeClient) GetFileContent(ctx context.Context, owner, repo, branch, path string) (string, bool) {
	return f.document, f.hasDoc
}

func (f *fakeClient) FetchArchive(ctx context.Context, owner, repo, branch string) ([]byte, error) {
	return f.archive, f.archiveErr
}

func seedRecord() store.SkillRecord {
	return store.SkillRecord{
		ID:                 1,
		Name:               "pdf",
		SourceURL:          "https://github.com/o/r/tree/main/skills/pdf",
		RepoStars:          5,
		RepoOwnerName:      "Old Name",
		Markdown:           "old",
		MarkdownRenderMode: render.ModeMarkdown,
		HeatScore:          0.75,
		SupportsDownload:   true,
	}
}

func zipFixture(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestGet(t *testing.T) {
	t.Run("cached_read_returns_record_unchanged", func(t *testing.T) {
		st := store.NewMemStore(seedRecord())
		svc := NewService(st, &fakeClient{repoInfoErr: errors.New("must not be called")}, time.Second, nil)

		out, err := svc.Get(context.Background(), 1, false)
		require.NoError(t, err)
		assert.Equal(t, syncpkg.ProvenanceCache, out.Provenance)
		assert.Equal(t, seedRecord(), out.Record)
	})

	t.Run("unknown_id", func(t *testing.T) {
		st := store.NewMemStore()
		svc := NewService(st, &fakeClient{}, time.Second, nil)

		_, err := svc.Get(context.Background(), 99, false)
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("refresh_persists_and_returns_fresh_data", func(t *testing.T) {
		st := store.NewMemStore(seedRecord())
		st.SetPracticeCount(1, 2)
		client := &fakeClient{
			repoInfo:  source.RepoInfo{DefaultBranch: "main", Stars: 1000, OwnerLogin: "o"},
			ownerInfo: source.OwnerInfo{DisplayName: "New Name"},
			commit:    source.Commit{SHA: "abc", Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
			document:  "[x](https://example.com)",
			hasDoc:    true,
		}
		svc := NewService(st, client, time.Second, nil)

		out, err := svc.Get(context.Background(), 1, true)
		require.NoError(t, err)
		assert.Equal(t, syncpkg.ProvenanceSource, out.Provenance)
		assert.Equal(t, 1000, out.Record.RepoStars)
		assert.Equal(t, "New Name", out.Record.RepoOwnerName)
		assert.Equal(t, 2*1000+1000*0.15, out.Record.HeatScore)

		// the patch must be visible on the next cached read
		persisted, err := st.Get(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 1000, persisted.RepoStars)
		assert.Equal(t, "New Name", persisted.RepoOwnerName)
		assert.Equal(t, "[x](https://example.com)", persisted.Markdown)
	})

	t.Run("refresh_failure_falls_back_to_unmodified_cache", func(t *testing.T) {
		st := store.NewMemStore(seedRecord())
		client := &fakeClient{repoInfoErr: errors.New("network down")}
		svc := NewService(st, client, time.Second, nil)

		out, err := svc.Get(context.Background(), 1, true)
		require.NoError(t, err, "transient failures never surface on the read path")
		assert.Equal(t, syncpkg.ProvenanceCache, out.Provenance)
		assert.Equal(t, seedRecord(), out.Record, "no field may be partially updated")

		persisted, err := st.Get(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, seedRecord(), persisted, "store must be untouched")
	})

	t.Run("malformed_source_url_surfaces", func(t *testing.T) {
		rec := seedRecord()
		rec.SourceURL = "https://github.com/ownerOnly"
		st := store.NewMemStore(rec)
		svc := NewService(st, &fakeClient{}, time.Second, nil)

		_, err := svc.Get(context.Background(), 1, true)
		require.Error(t, err)
		assert.ErrorIs(t, err, ref.ErrInvalidPath)
	})
}

func TestDownload(t *testing.T) {
	fixture := func(t *testing.T) []byte {
		return zipFixture(t, map[string]string{
			"r-main/skills/pdf/SKILL.md":     "# pdf",
			"r-main/skills/pdf/scripts/x.py": "print()",
			"r-main/README.md":               "root readme",
		})
	}

	t.Run("repackages_sub_path", func(t *testing.T) {
		st := store.NewMemStore(seedRecord())
		client := &fakeClient{archive: fixture(t)}
		svc := NewService(st, client, time.Second, nil)

		data, filename, err := svc.Download(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "pdf.zip", filename)

		r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)

		names := map[string]bool{}
		for _, f := range r.File {
			names[f.Name] = true
		}
		assert.True(t, names["pdf/SKILL.md"])
		assert.True(t, names["pdf/scripts/x.py"])
		assert.False(t, names["pdf/README.md"], "entries outside the sub path are dropped")
	})

	t.Run("resolves_default_branch_when_ref_absent", func(t *testing.T) {
		rec := seedRecord()
		rec.SourceURL = "https://github.com/o/r"
		rec.Name = ""
		st := store.NewMemStore(rec)
		src := fixture(t)
		client := &fakeClient{
			repoInfo: source.RepoInfo{DefaultBranch: "main"},
			archive:  src,
		}
		svc := NewService(st, client, time.Second, nil)

		data, filename, err := svc.Download(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "r.zip", filename)
		// whole-repo download passes the archive through unchanged
		assert.Equal(t, src, data)
	})

	t.Run("downloads_disabled", func(t *testing.T) {
		rec := seedRecord()
		rec.SupportsDownload = false
		st := store.NewMemStore(rec)
		svc := NewService(st, &fakeClient{}, time.Second, nil)

		_, _, err := svc.Download(context.Background(), 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDownloadNotSupported)
	})

	t.Run("fetch_failure_surfaces", func(t *testing.T) {
		st := store.NewMemStore(seedRecord())
		client := &fakeClient{archiveErr: &source.DownloadFailedError{Status: 502, Body: "bad gateway"}}
		svc := NewService(st, client, time.Second, nil)

		_, _, err := svc.Download(context.Background(), 1)
		require.Error(t, err)

		var dlErr *source.DownloadFailedError
		assert.ErrorAs(t, err, &dlErr)
	})
}
