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
	"context"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "skillsync",
		Short: "A service for syncing skill records with their source repositories",
		Long: `skillsync keeps a directory of agent skills in sync with the GitHub
repositories they were published from: star counts, owner info, the
latest SKILL.md and a heat score. It can also repackage a repository
archive down to a single skill's sub-directory for download.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Logging depends on the --debug flag, so it waits for flag parsing
			cmd.SetContext(setupLogging(cmd.Context()))
		},
	}

	addRootFlags(rootCmd)

	rootCmd.AddCommand(
		newServeCmd(),
		newResyncCmd(),
		newDownloadCmd(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(err.Error())
		os.Exit(1)
	}
}
