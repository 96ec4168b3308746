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

package types

import (
	"time"
)

// OperationCounts sums the work done during one sync pass.
type OperationCounts struct {
	Uploaded   int `json:"uploaded"`
	Downloaded int `json:"downloaded"`
	Conflicts  int `json:"conflicts"`
}

// SyncResult is the outcome of one sync pass. The orchestrator merges
// the per-collection results into one aggregate.
type SyncResult struct {
	Success    bool            `json:"success"`
	Operations OperationCounts `json:"operations"`
	Conflicts  []*ConflictInfo `json:"conflicts,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	Error      string          `json:"error,omitempty"`
}

// NewSyncResult creates an empty successful result stamped with the
// given time.
func NewSyncResult(at time.Time) *SyncResult {
	return &SyncResult{
		Success:   true,
		Timestamp: at,
	}
}

// Merge folds the other result into this one, summing counts and
// concatenating conflict lists. A failed part fails the aggregate.
func (r *SyncResult) Merge(other *SyncResult) {
	if other == nil {
		return
	}

	r.Operations.Uploaded += other.Operations.Uploaded
	r.Operations.Downloaded += other.Operations.Downloaded
	r.Operations.Conflicts += other.Operations.Conflicts
	r.Conflicts = append(r.Conflicts, other.Conflicts...)

	if !other.Success {
		r.Success = false
	}
	if other.Error != "" {
		r.Error = other.Error
	}
}

// ConflictResolutionMode selects how detected conflicts are handled at
// the end of a collection's pass.
type ConflictResolutionMode string

const (
	// ResolutionAuto resolves conflicts with the per-collection policy
	// and writes the merged document to both stores.
	ResolutionAuto ConflictResolutionMode = "auto"

	// ResolutionManual leaves conflicts pending for an external
	// collaborator to resolve.
	ResolutionManual ConflictResolutionMode = "manual"
)

// SyncOptions tunes one orchestrated sync pass.
type SyncOptions struct {
	// Force bypasses the minimum-interval throttling between passes.
	Force bool `json:"force"`

	// Collections narrows the pass to a subset of collections,
	// processed in the given order. Empty means all known collections
	// in the default order.
	Collections []Collection `json:"collections,omitempty"`

	// ConflictResolution selects the resolution mode. Empty defaults
	// to auto.
	ConflictResolution ConflictResolutionMode `json:"conflictResolution,omitempty" validate:"omitempty,oneof=auto manual"`
}

// Mode returns the effective conflict resolution mode.
func (o SyncOptions) Mode() ConflictResolutionMode {
	if o.ConflictResolution == "" {
		return ResolutionAuto
	}
	return o.ConflictResolution
}

// TargetCollections returns the effective collection list of the pass.
func (o SyncOptions) TargetCollections() []Collection {
	if len(o.Collections) == 0 {
		return Collections()
	}
	return o.Collections
}
