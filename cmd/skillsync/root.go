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
	"path"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/skillsync/pkg/config"
	"github.com/walteh/skillsync/pkg/ref"
	"github.com/walteh/skillsync/pkg/source"
	"github.com/walteh/skillsync/pkg/store"
	"gitlab.com/tozd/go/errors"

	// Register the github source driver.
	_ "github.com/walteh/skillsync/pkg/source/github"
)

var (
	// Flags
	configFile string
	debug      bool
)

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "skillsync.yaml", "config file path")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog and stashes the logger in the context
func setupLogging(ctx context.Context) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger().Level(level)
	return logger.WithContext(ctx)
}

// loadConfig loads and validates the configuration file
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// resolveConfig loads the config file when it exists, else falls back to
// defaults (github source, GITHUB_TOKEN from the environment). One-shot
// commands work without a config file; serve requires one.
func resolveConfig(ctx context.Context) (*config.Config, error) {
	if _, err := os.Stat(configFile); err == nil {
		return loadConfig(ctx)
	}
	cfg := &config.Config{}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating default config: %w", err)
	}
	return cfg, nil
}

// newSourceClient creates the configured source client
func newSourceClient(ctx context.Context, cfg *config.Config) (source.Client, error) {
	client, err := source.New(ctx, cfg.Source, cfg.Token)
	if err != nil {
		return nil, errors.Errorf("creating source client: %w", err)
	}
	return client, nil
}

// nameFor picks a display name for an ad-hoc record: the record name,
// else the last segment of its source URL path, else the repository.
func nameFor(rec store.SkillRecord) string {
	if rec.Name != "" {
		return rec.Name
	}
	parsed, err := ref.Parse(rec.SourceURL)
	if err != nil {
		return rec.SourceURL
	}
	if parsed.Path != "" {
		return path.Base(parsed.Path)
	}
	return parsed.Repo
}
