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

// Package api is the thin HTTP route layer over the skill service. It
// parses query strings, maps service errors to status codes and writes
// JSON; everything interesting happens below it.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/walteh/skillsync/pkg/ref"
	"github.com/walteh/skillsync/pkg/skill"
	"github.com/walteh/skillsync/pkg/store"
	syncpkg "github.com/walteh/skillsync/pkg/sync"
	"gitlab.com/tozd/go/errors"
)

// 🔌 SkillService is what the route layer needs from the service.
type SkillService interface {
	Get(ctx context.Context, id int64, refresh bool) (syncpkg.Result, error)
	Download(ctx context.Context, id int64) ([]byte, string, error)
}

// 🎯 Handler serves the skill routes.
type Handler struct {
	service SkillService
	metrics *Metrics
	logger  zerolog.Logger
}

// 🏭 NewHandler creates a Handler registering its metrics on reg.
func NewHandler(service SkillService, reg *prometheus.Registry, logger zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		metrics: NewMetrics(reg),
		logger:  logger,
	}
}

// Routes returns the service mux, including /metrics served from reg.
func (h *Handler) Routes(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/skills/{id}", h.handleGetSkill)
	mux.HandleFunc("GET /api/skills/{id}/download", h.handleDownload)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux
}

// 📖 handleGetSkill handles GET /api/skills/{id}?refresh=true
func (h *Handler) handleGetSkill(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		h.metrics.requestDuration.WithLabelValues("get_skill").Observe(time.Since(start).Seconds())
	}()

	ctx := h.logger.WithContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid skill id")
		return
	}
	refresh := r.URL.Query().Get("refresh") == "true"

	result, err := h.service.Get(ctx, id, refresh)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "skill not found")
		case errors.Is(err, ref.ErrInvalidHost), errors.Is(err, ref.ErrInvalidPath):
			writeError(w, http.StatusUnprocessableEntity, "skill source url is malformed")
		default:
			h.logger.Error().Err(err).Int64("skill_id", id).Msg("get skill failed")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	h.metrics.resyncs.WithLabelValues(string(result.Provenance)).Inc()
	writeJSON(w, http.StatusOK, result)
}

// 📥 handleDownload handles GET /api/skills/{id}/download
func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		h.metrics.requestDuration.WithLabelValues("download").Observe(time.Since(start).Seconds())
	}()

	ctx := h.logger.WithContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid skill id")
		return
	}

	data, filename, err := h.service.Download(ctx, id)
	if err != nil {
		h.metrics.downloads.WithLabelValues("error").Inc()
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "skill not found")
		case errors.Is(err, skill.ErrDownloadNotSupported):
			writeError(w, http.StatusBadRequest, "skill does not support zip download")
		default:
			h.logger.Error().Err(err).Int64("skill_id", id).Msg("download failed")
			writeError(w, http.StatusBadGateway, "archive download failed")
		}
		return
	}

	h.metrics.downloads.WithLabelValues("ok").Inc()
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
