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

// Package store defines the persisted skill record and the contract the
// surrounding application's database layer implements. The service core
// only ever reads records and writes partial patches.
package store

import (
	"context"
	"time"

	"github.com/walteh/skillsync/pkg/render"
	"gitlab.com/tozd/go/errors"
)

var ErrNotFound = errors.New("skill record not found")

// 📚 SkillRecord is the cached snapshot of an external skill repository.
type SkillRecord struct {
	ID                 int64       `json:"id" yaml:"id"`
	Name               string      `json:"name" yaml:"name"`
	SourceURL          string      `json:"source_url" yaml:"source_url"`
	RepoStars          int         `json:"repo_stars" yaml:"repo_stars,omitempty"`
	RepoOwnerName      string      `json:"repo_owner_name" yaml:"repo_owner_name,omitempty"`
	RepoOwnerAvatarURL string      `json:"repo_owner_avatar_url" yaml:"repo_owner_avatar_url,omitempty"`
	UpdatedAt          time.Time   `json:"updated_at" yaml:"updated_at,omitempty"`
	Markdown           string      `json:"markdown" yaml:"markdown,omitempty"`
	MarkdownRenderMode render.Mode `json:"markdown_render_mode" yaml:"markdown_render_mode,omitempty"`
	HeatScore          float64     `json:"heat_score" yaml:"heat_score,omitempty"`
	SupportsDownload   bool        `json:"supports_download_zip" yaml:"supports_download_zip,omitempty"`
}

// 🔧 Patch is a partial update to a skill record. Nil fields are left
// untouched by Store.Patch.
type Patch struct {
	RepoStars          *int
	RepoOwnerName      *string
	RepoOwnerAvatarURL *string
	UpdatedAt          *time.Time
	Markdown           *string
	MarkdownRenderMode *render.Mode
	HeatScore          *float64
}

// Apply copies the non-nil patch fields onto rec.
func (p Patch) Apply(rec *SkillRecord) {
	if p.RepoStars != nil {
		rec.RepoStars = *p.RepoStars
	}
	if p.RepoOwnerName != nil {
		rec.RepoOwnerName = *p.RepoOwnerName
	}
	if p.RepoOwnerAvatarURL != nil {
		rec.RepoOwnerAvatarURL = *p.RepoOwnerAvatarURL
	}
	if p.UpdatedAt != nil {
		rec.UpdatedAt = *p.UpdatedAt
	}
	if p.Markdown != nil {
		rec.Markdown = *p.Markdown
	}
	if p.MarkdownRenderMode != nil {
		rec.MarkdownRenderMode = *p.MarkdownRenderMode
	}
	if p.HeatScore != nil {
		rec.HeatScore = *p.HeatScore
	}
}

// 🗄️ Store is implemented by the application's persistence layer. Writes
// are last-write-wins field overwrites; the core adds no locking across
// concurrent resyncs of the same record.
type Store interface {
	// Get returns the record with the given id, or ErrNotFound.
	Get(ctx context.Context, id int64) (SkillRecord, error)
	// Patch applies a partial update to the record with the given id.
	Patch(ctx context.Context, id int64, p Patch) error
	// CountListedPractices returns how many published practices link to
	// the skill. Feeds the heat score.
	CountListedPractices(ctx context.Context, id int64) (int, error)
	// List returns all records, in id order.
	List(ctx context.Context) ([]SkillRecord, error)
}
