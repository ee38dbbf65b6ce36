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

package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 📊 Metrics tracks the service's request outcomes.
type Metrics struct {
	resyncs         *prometheus.CounterVec
	downloads       *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers the service metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		resyncs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skillsync",
			Name:      "resyncs_total",
			Help:      "Skill record reads by data provenance (source or cache).",
		}, []string{"provenance"}),
		downloads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skillsync",
			Name:      "downloads_total",
			Help:      "Skill archive downloads by outcome.",
		}, []string{"outcome"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "skillsync",
			Name:      "request_duration_seconds",
			Help:      "Handler latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}
