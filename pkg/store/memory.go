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

package store

import (
	"context"
	"sort"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// 🗄️ MemStore is an in-memory Store. It backs the standalone server and
// tests; the directory application supplies its own relational
// implementation.
type MemStore struct {
	mu        sync.RWMutex
	records   map[int64]SkillRecord
	practices map[int64]int
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates a MemStore seeded with the given records.
func NewMemStore(seed ...SkillRecord) *MemStore {
	s := &MemStore{
		records:   make(map[int64]SkillRecord, len(seed)),
		practices: make(map[int64]int),
	}
	for _, rec := range seed {
		s.records[rec.ID] = rec
	}
	return s
}

func (s *MemStore) Get(ctx context.Context, id int64) (SkillRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return SkillRecord{}, errors.Errorf("%w: id %d", ErrNotFound, id)
	}
	return rec, nil
}

func (s *MemStore) Patch(ctx context.Context, id int64, p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return errors.Errorf("%w: id %d", ErrNotFound, id)
	}
	p.Apply(&rec)
	s.records[id] = rec
	return nil
}

func (s *MemStore) CountListedPractices(ctx context.Context, id int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.practices[id], nil
}

func (s *MemStore) List(ctx context.Context) ([]SkillRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SkillRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SetPracticeCount sets the number of practices linked to a skill.
func (s *MemStore) SetPracticeCount(id int64, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.practices[id] = n
}
