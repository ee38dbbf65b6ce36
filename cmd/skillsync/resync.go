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
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/skillsync/pkg/log"
	"github.com/walteh/skillsync/pkg/store"
	skillsync "github.com/walteh/skillsync/pkg/sync"
	"gitlab.com/tozd/go/errors"
)

// newResyncCmd creates the resync command
func newResyncCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "resync <url>",
		Short: "Resync a single skill from its source repository",
		Long: `Resync fetches live data (stars, owner, latest commit, SKILL.md) for a
GitHub skill URL and prints the refreshed record. It uses the same
fetch sequence and latency budget as the server's ?refresh=true path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := zerolog.Ctx(ctx)
			console := log.New(os.Stdout, logger.GetLevel())

			cfg, err := resolveConfig(ctx)
			if err != nil {
				return err
			}

			client, err := newSourceClient(ctx, cfg)
			if err != nil {
				return err
			}

			rec := store.SkillRecord{ID: 1, SourceURL: args[0]}
			orchestrator := skillsync.NewOrchestrator(client, timeout)

			console.Header("resyncing skill record")

			start := time.Now()
			result, err := orchestrator.Resync(ctx, rec, 0)
			if err != nil {
				return errors.Errorf("resyncing %s: %w", args[0], err)
			}

			console.LogSkillOperation(ctx, log.SkillOperation{
				Name:       nameFor(result.Record),
				SourceURL:  args[0],
				Provenance: string(result.Provenance),
				Stars:      result.Record.RepoStars,
				HeatScore:  result.Record.HeatScore,
				Duration:   time.Since(start),
				Fallback:   result.Provenance == skillsync.ProvenanceCache,
			})
			console.Successf("owner %s, render mode %s", result.Record.RepoOwnerName, result.Record.MarkdownRenderMode)
			return nil
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "resync latency budget (default 5s)")
	return cmd
}
