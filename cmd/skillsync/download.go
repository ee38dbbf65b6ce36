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

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/skillsync/pkg/skill"
	"github.com/walteh/skillsync/pkg/store"
	"gitlab.com/tozd/go/errors"
)

// newDownloadCmd creates the download command
func newDownloadCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a skill's sub-directory as a zip archive",
		Long: `Download fetches the repository archive for a GitHub skill URL and
repackages it so that only the skill's sub-directory remains, renamed
to a clean top-level directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := resolveConfig(ctx)
			if err != nil {
				return err
			}

			client, err := newSourceClient(ctx, cfg)
			if err != nil {
				return err
			}

			rec := store.SkillRecord{ID: 1, SourceURL: args[0], SupportsDownload: true}
			st := store.NewMemStore(rec)
			service := skill.NewService(st, client, cfg.Timeout(), cfg.ArchiveExcludes)

			spinner, _ := pterm.DefaultSpinner.Start("Fetching archive...")
			data, filename, err := service.Download(ctx, rec.ID)
			if err != nil {
				spinner.Fail("Download failed")
				return errors.Errorf("downloading %s: %w", args[0], err)
			}

			if output == "" {
				output = filename
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				spinner.Fail("Write failed")
				return errors.Errorf("writing %s: %w", output, err)
			}

			spinner.Success(pterm.Sprintf("Wrote %s (%d bytes)", output, len(data)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default <skill>.zip)")
	return cmd
}
