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

// Package types provides the domain model shared between the sync
// engine, its storage backends and the CLI.
package types

import (
	"time"
)

// SyncStatus tracks whether a locally stored document carries unsynced
// mutations.
type SyncStatus string

const (
	// StatusPending marks a document with local mutations that have not
	// been acknowledged by the remote store yet.
	StatusPending SyncStatus = "pending"

	// StatusSynced marks a document whose local and remote copies were
	// identical at the last reconciliation.
	StatusSynced SyncStatus = "synced"

	// StatusConflict marks a document whose local and remote copies
	// diverged and are waiting for resolution.
	StatusConflict SyncStatus = "conflict"
)

// Entity is a synchronized domain record. All concrete entity kinds
// embed Base and add their domain fields on top.
type Entity interface {
	// EntityID returns the stable identifier, unique per collection.
	EntityID() string

	// Owner returns the ID of the user owning the record.
	Owner() string

	// ModifiedAt returns the last modification time. It is
	// monotonically non-decreasing per writer.
	ModifiedAt() time.Time

	// Status returns the sync status of the local copy.
	Status() SyncStatus

	// SetStatus updates the sync status of the local copy.
	SetStatus(status SyncStatus)

	// Touch stamps the record with a new modification time.
	Touch(at time.Time)

	// Collection returns the collection this entity belongs to.
	Collection() Collection

	// DeepCopy returns a deep copy of the entity.
	DeepCopy() Entity
}

// Base carries the fields every synchronized record must have.
type Base struct {
	ID           string     `bson:"_id" json:"id" validate:"required"`
	UserID       string     `bson:"user_id" json:"userId" validate:"required"`
	LastModified time.Time  `bson:"last_modified" json:"lastModified"`
	SyncStatus   SyncStatus `bson:"sync_status" json:"syncStatus"`
}

// EntityID returns the stable identifier of the record.
func (b *Base) EntityID() string {
	return b.ID
}

// Owner returns the ID of the user owning the record.
func (b *Base) Owner() string {
	return b.UserID
}

// ModifiedAt returns the last modification time of the record.
func (b *Base) ModifiedAt() time.Time {
	return b.LastModified
}

// Status returns the sync status of the record.
func (b *Base) Status() SyncStatus {
	return b.SyncStatus
}

// SetStatus updates the sync status of the record.
func (b *Base) SetStatus(status SyncStatus) {
	b.SyncStatus = status
}

// Touch stamps the record with a new modification time.
func (b *Base) Touch(at time.Time) {
	b.LastModified = at
}
