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

// Package rank computes the ordering score for skill records.
package rank

// Weights for the heat score. One linked practice outranks roughly
// 6,600 stars; usage in practice is worth far more than popularity.
// Product-chosen constants, do not tune without a decision.
const (
	practiceWeight = 1000
	starWeight     = 0.15
)

// Heat computes the ranking score for a skill. Callers clamp negative
// or unknown counts to zero before calling.
func Heat(practiceCount int, starCount int) float64 {
	return float64(practiceCount)*practiceWeight + float64(starCount)*starWeight
}
