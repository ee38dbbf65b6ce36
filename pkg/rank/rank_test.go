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

package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeat(t *testing.T) {
	assert.Equal(t, 150.0, Heat(0, 1000))
	assert.Equal(t, 1000.0, Heat(1, 0))
	assert.Equal(t, 0.0, Heat(0, 0))

	// one practice beats ~6,600 extra stars
	assert.Greater(t, Heat(1, 0), Heat(0, 6600))
}

func TestHeatMonotonicInPractices(t *testing.T) {
	for _, stars := range []int{0, 10, 5000} {
		prev := Heat(0, stars)
		for p := 1; p < 5; p++ {
			cur := Heat(p, stars)
			assert.Greater(t, cur, prev, "stars=%d practices=%d", stars, p)
			prev = cur
		}
	}
}
