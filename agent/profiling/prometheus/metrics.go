/*
 * Copyright 2025 The Tether Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package prometheus provides the sync metrics exposed on the
// profiling server.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tether-app/tether/api/types"
	"github.com/tether-app/tether/internal/version"
)

const (
	namespace = "tether"
)

// Metrics manages the metric information of the sync agent.
type Metrics struct {
	registry      *prometheus.Registry
	agentVersion  *prometheus.GaugeVec
	syncPassTotal *prometheus.CounterVec

	uploadedTotal   *prometheus.CounterVec
	downloadedTotal *prometheus.CounterVec

	conflictsDetectedTotal *prometheus.CounterVec
	conflictsResolvedTotal *prometheus.CounterVec

	queueDrainTotal        prometheus.Counter
	queueDeadLetterTotal   prometheus.Counter
	syncPassDurationSecond prometheus.Histogram
}

// NewMetrics creates an instance of Metrics.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	metrics := &Metrics{
		registry: reg,
		agentVersion: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "version",
			Help:      "Which version is running. 1 for 'agent_version' label with current version.",
		}, []string{"agent_version"}),
		syncPassTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "pass_total",
			Help:      "The total count of sync passes.",
		}, []string{"result"}),
		uploadedTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "uploaded_documents_total",
			Help:      "The total count of documents pushed to the remote store.",
		}, []string{"collection"}),
		downloadedTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "downloaded_documents_total",
			Help:      "The total count of documents pulled from the remote store.",
		}, []string{"collection"}),
		conflictsDetectedTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "conflicts_detected_total",
			Help:      "The total count of conflicts detected during sync passes.",
		}, []string{"collection"}),
		conflictsResolvedTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "conflicts_resolved_total",
			Help:      "The total count of conflicts resolved by policy.",
		}, []string{"collection"}),
		queueDrainTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "drained_operations_total",
			Help:      "The total count of queued operations applied to the remote store.",
		}),
		queueDeadLetterTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "dead_letter_operations_total",
			Help:      "The total count of queued operations that exhausted their retries.",
		}),
		syncPassDurationSecond: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "pass_duration_seconds",
			Help:      "The duration of sync passes.",
		}),
	}
	metrics.agentVersion.With(prometheus.Labels{
		"agent_version": version.Version,
	}).Set(1)

	return metrics, nil
}

// ObserveSyncPass records the outcome and duration of one sync pass.
func (m *Metrics) ObserveSyncPass(success bool, seconds float64) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.syncPassTotal.With(prometheus.Labels{"result": result}).Inc()
	m.syncPassDurationSecond.Observe(seconds)
}

// AddUploaded adds the count of documents pushed for the collection.
func (m *Metrics) AddUploaded(collection types.Collection, count int) {
	m.uploadedTotal.With(prometheus.Labels{"collection": collection.String()}).Add(float64(count))
}

// AddDownloaded adds the count of documents pulled for the collection.
func (m *Metrics) AddDownloaded(collection types.Collection, count int) {
	m.downloadedTotal.With(prometheus.Labels{"collection": collection.String()}).Add(float64(count))
}

// AddConflictsDetected adds the count of conflicts detected for the
// collection.
func (m *Metrics) AddConflictsDetected(collection types.Collection, count int) {
	m.conflictsDetectedTotal.With(prometheus.Labels{"collection": collection.String()}).Add(float64(count))
}

// AddConflictsResolved adds the count of conflicts resolved for the
// collection.
func (m *Metrics) AddConflictsResolved(collection types.Collection, count int) {
	m.conflictsResolvedTotal.With(prometheus.Labels{"collection": collection.String()}).Add(float64(count))
}

// AddQueueDrained adds the count of queued operations applied.
func (m *Metrics) AddQueueDrained(count int) {
	m.queueDrainTotal.Add(float64(count))
}

// AddQueueDeadLettered adds the count of operations that exhausted
// their retries.
func (m *Metrics) AddQueueDeadLettered(count int) {
	m.queueDeadLetterTotal.Add(float64(count))
}

// Registry returns the registry of this metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
