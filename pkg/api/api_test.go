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

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/skillsync/pkg/ref"
	"github.com/walteh/skillsync/pkg/skill"
	"github.com/walteh/skillsync/pkg/store"
	syncpkg "github.com/walteh/skillsync/pkg/sync"
	"gitlab.com/tozd/go/errors"
)

// fakeService implements SkillService
type fakeService struct {
	getFn      func(ctx context.Context, id int64, refresh bool) (syncpkg.Result, error)
	downloadFn func(ctx context.Context, id int64) ([]byte, string, error)
}

func (f *fakeService) Get(ctx context.Context, id int64, refresh bool) (syncpkg.Result, error) {
	return f.getFn(ctx, id, refresh)
}

func (f *fakeService) Download(ctx context.Context, id int64) ([]byte, string, error) {
	return f.downloadFn(ctx, id)
}

func newTestHandler(svc SkillService) http.Handler {
	reg := prometheus.NewRegistry()
	h := NewHandler(svc, reg, zerolog.Nop())
	return h.Routes(reg)
}

func TestHandleGetSkill(t *testing.T) {
	record := store.SkillRecord{ID: 1, Name: "pdf", SourceURL: "https://github.com/o/r"}

	t.Run("cached_read", func(t *testing.T) {
		svc := &fakeService{
			getFn: func(ctx context.Context, id int64, refresh bool) (syncpkg.Result, error) {
				assert.Equal(t, int64(1), id)
				assert.False(t, refresh)
				return syncpkg.Result{Record: record, Provenance: syncpkg.ProvenanceCache}, nil
			},
		}

		rec := httptest.NewRecorder()
		newTestHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/skills/1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var out syncpkg.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Equal(t, syncpkg.ProvenanceCache, out.Provenance)
		assert.Equal(t, "pdf", out.Record.Name)
	})

	t.Run("refresh_flag_forwarded", func(t *testing.T) {
		svc := &fakeService{
			getFn: func(ctx context.Context, id int64, refresh bool) (syncpkg.Result, error) {
				assert.True(t, refresh)
				return syncpkg.Result{Record: record, Provenance: syncpkg.ProvenanceSource}, nil
			},
		}

		rec := httptest.NewRecorder()
		newTestHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/skills/1?refresh=true", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bad_id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestHandler(&fakeService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/skills/abc", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not_found", func(t *testing.T) {
		svc := &fakeService{
			getFn: func(ctx context.Context, id int64, refresh bool) (syncpkg.Result, error) {
				return syncpkg.Result{}, errors.Errorf("getting record: %w", store.ErrNotFound)
			},
		}

		rec := httptest.NewRecorder()
		newTestHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/skills/9", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed_source_url", func(t *testing.T) {
		svc := &fakeService{
			getFn: func(ctx context.Context, id int64, refresh bool) (syncpkg.Result, error) {
				return syncpkg.Result{}, errors.Errorf("parsing source url: %w", ref.ErrInvalidHost)
			},
		}

		rec := httptest.NewRecorder()
		newTestHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/skills/1?refresh=true", nil))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestHandleDownload(t *testing.T) {
	t.Run("streams_zip", func(t *testing.T) {
		svc := &fakeService{
			downloadFn: func(ctx context.Context, id int64) ([]byte, string, error) {
				return []byte("PK\x03\x04data"), "pdf.zip", nil
			},
		}

		rec := httptest.NewRecorder()
		newTestHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/skills/1/download", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="pdf.zip"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "PK\x03\x04data", rec.Body.String())
	})

	t.Run("downloads_disabled_is_400", func(t *testing.T) {
		svc := &fakeService{
			downloadFn: func(ctx context.Context, id int64) ([]byte, string, error) {
				return nil, "", errors.Errorf("%w: id 1", skill.ErrDownloadNotSupported)
			},
		}

		rec := httptest.NewRecorder()
		newTestHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/skills/1/download", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("fetch_failure_is_502", func(t *testing.T) {
		svc := &fakeService{
			downloadFn: func(ctx context.Context, id int64) ([]byte, string, error) {
				return nil, "", errors.New("upstream exploded")
			},
		}

		rec := httptest.NewRecorder()
		newTestHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/skills/1/download", nil))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(&fakeService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
