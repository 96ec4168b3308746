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

	"github.com/rs/xid"
)

// ConflictType tells which sync phase detected the divergence.
type ConflictType string

const (
	// ConflictUpload marks a divergence found while uploading a pending
	// local document.
	ConflictUpload ConflictType = "upload_conflict"

	// ConflictDownload marks a divergence found while applying a remote
	// change to an existing local document.
	ConflictDownload ConflictType = "download_conflict"
)

// Resolution is the lifecycle state of a detected conflict.
type Resolution string

const (
	// ResolutionPending marks a conflict waiting for resolution.
	ResolutionPending Resolution = "pending"

	// ResolutionResolved marks a conflict whose merged document has been
	// written back to both stores.
	ResolutionResolved Resolution = "resolved"
)

// ConflictInfo describes one divergence between the local and remote
// copy of a document. Conflicts are data, not errors: they are
// collected on the SyncResult and, when unresolved, retained for
// manual resolution.
type ConflictInfo struct {
	ID         string       `json:"id"`
	Type       ConflictType `json:"type"`
	Collection Collection   `json:"collection"`
	DocumentID string       `json:"documentId"`
	Local      Entity       `json:"localData"`
	Remote     Entity       `json:"remoteData"`
	DetectedAt time.Time    `json:"detectedAt"`
	Resolution Resolution   `json:"resolution"`
}

// NewConflictInfo creates a pending ConflictInfo for the given pair of
// diverged copies.
func NewConflictInfo(
	conflictType ConflictType,
	local Entity,
	remote Entity,
	detectedAt time.Time,
) *ConflictInfo {
	return &ConflictInfo{
		ID:         xid.New().String(),
		Type:       conflictType,
		Collection: local.Collection(),
		DocumentID: local.EntityID(),
		Local:      local,
		Remote:     remote,
		DetectedAt: detectedAt,
		Resolution: ResolutionPending,
	}
}
