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

package main

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/skillsync/pkg/api"
	"github.com/walteh/skillsync/pkg/log"
	"github.com/walteh/skillsync/pkg/skill"
	"github.com/walteh/skillsync/pkg/store"
	"gitlab.com/tozd/go/errors"
)

// newServeCmd creates the serve command
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the skill API over HTTP",
		Long: `Serve loads the configured skill records into an in-memory store and
exposes them over HTTP:

  GET /api/skills/{id}           read a record (?refresh=true to resync)
  GET /api/skills/{id}/download  download the skill as a zip
  GET /healthz                   liveness probe
  GET /metrics                   prometheus metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := zerolog.Ctx(ctx)

			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			client, err := newSourceClient(ctx, cfg)
			if err != nil {
				return err
			}

			st := store.NewMemStore(cfg.Records()...)
			service := skill.NewService(st, client, cfg.Timeout(), cfg.ArchiveExcludes)

			reg := prometheus.NewRegistry()
			handler := api.NewHandler(service, reg, *logger)

			console := log.New(os.Stdout, logger.GetLevel())
			console.Header("serving skill records")
			console.Infof("listening on %s (%d skills tracked)", cfg.Listen, len(cfg.Skills))

			if err := http.ListenAndServe(cfg.Listen, handler.Routes(reg)); err != nil {
				return errors.Errorf("serving http: %w", err)
			}
			return nil
		},
	}
}
