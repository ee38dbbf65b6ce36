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

// Package config loads the skillsync configuration from YAML or HCL.
package config

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/walteh/skillsync/pkg/ref"
	"github.com/walteh/skillsync/pkg/store"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📦 Skill is a seed record for the skill store.
type Skill struct {
	ID          int64  `json:"id" yaml:"id" hcl:"id"`
	Name        string `json:"name" yaml:"name" hcl:"name,label"`
	SourceURL   string `json:"source_url" yaml:"source_url" hcl:"source_url"`
	DownloadZip bool   `json:"download_zip,omitempty" yaml:"download_zip,omitempty" hcl:"download_zip,optional"`
}

// Record converts the seed into a store record.
func (s Skill) Record() store.SkillRecord {
	return store.SkillRecord{
		ID:               s.ID,
		Name:             s.Name,
		SourceURL:        s.SourceURL,
		SupportsDownload: s.DownloadZip,
	}
}

// 📚 Config represents the complete configuration
type Config struct {
	Listen          string   `json:"listen,omitempty" yaml:"listen,omitempty" hcl:"listen,optional"`
	Source          string   `json:"source,omitempty" yaml:"source,omitempty" hcl:"source,optional"`
	Token           string   `json:"token,omitempty" yaml:"token,omitempty" hcl:"token,optional"`
	SyncTimeout     string   `json:"sync_timeout,omitempty" yaml:"sync_timeout,omitempty" hcl:"sync_timeout,optional"`
	ArchiveExcludes []string `json:"archive_excludes,omitempty" yaml:"archive_excludes,omitempty" hcl:"archive_excludes,optional"`
	Skills          []Skill  `json:"skills,omitempty" yaml:"skills,omitempty" hcl:"skill,block"`
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.Source == "" {
		cfg.Source = "github"
	}
	if cfg.Token == "" {
		cfg.Token = os.Getenv("GITHUB_TOKEN")
	}

	if cfg.SyncTimeout != "" {
		if _, err := time.ParseDuration(cfg.SyncTimeout); err != nil {
			return errors.Errorf("parsing sync_timeout: %w", err)
		}
	}

	seen := map[int64]bool{}
	for _, s := range cfg.Skills {
		if s.ID == 0 {
			return errors.Errorf("skill %q: id is required", s.Name)
		}
		if seen[s.ID] {
			return errors.Errorf("skill %q: duplicate id %d", s.Name, s.ID)
		}
		seen[s.ID] = true

		// A record with an unparseable source URL can never resync;
		// reject it at load time instead.
		if _, err := ref.Parse(s.SourceURL); err != nil {
			return errors.Errorf("skill %q: %w", s.Name, err)
		}
	}

	return nil
}

// Timeout returns the resync latency budget, zero when unset (the
// orchestrator substitutes its default).
func (cfg *Config) Timeout() time.Duration {
	if cfg.SyncTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(cfg.SyncTimeout)
	if err != nil {
		return 0
	}
	return d
}

// Records returns the seed skills as store records.
func (cfg *Config) Records() []store.SkillRecord {
	out := make([]store.SkillRecord, 0, len(cfg.Skills))
	for _, s := range cfg.Skills {
		out = append(out, s.Record())
	}
	return out
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func init() {
	Register(&HCLParser{})
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var cfg Config
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
