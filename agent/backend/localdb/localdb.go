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

// Package localdb provides the interface of the device-local store.
// The engine owns the mutation queue and the sync watermarks stored
// here exclusively; UI code must never mutate them directly.
package localdb

import (
	"context"
	"time"

	"github.com/tether-app/tether/api/types"
	"github.com/tether-app/tether/pkg/errors"
)

var (
	// ErrEntityNotFound is returned when the entity could not be found.
	ErrEntityNotFound = errors.NotFound("entity not found").WithCode("ErrEntityNotFound")

	// ErrEntityAlreadyExists is returned when creating an entity that
	// already exists.
	ErrEntityAlreadyExists = errors.AlreadyExists("entity already exists").WithCode("ErrEntityAlreadyExists")

	// ErrOperationNotFound is returned when the queued operation could
	// not be found.
	ErrOperationNotFound = errors.NotFound("queued operation not found").WithCode("ErrOperationNotFound")
)

// Database is the device-local document store consumed by the sync
// engine.
type Database interface {
	// Close closes all resources of this database.
	Close() error

	// FindEntity returns the entity stored for the given collection and
	// id, or ErrEntityNotFound.
	FindEntity(ctx context.Context, collection types.Collection, id string) (types.Entity, error)

	// FindPendingByUser returns all documents of the user in the
	// collection whose sync status is pending.
	FindPendingByUser(ctx context.Context, collection types.Collection, userID string) ([]types.Entity, error)

	// CreateEntity stores a new entity, or returns
	// ErrEntityAlreadyExists.
	CreateEntity(ctx context.Context, entity types.Entity) error

	// UpdateEntity replaces the stored entity, or returns
	// ErrEntityNotFound.
	UpdateEntity(ctx context.Context, entity types.Entity) error

	// DeleteEntity removes the stored entity, or returns
	// ErrEntityNotFound.
	DeleteEntity(ctx context.Context, collection types.Collection, id string) error

	// Watermark returns the download watermark of the collection. The
	// zero time means the collection has never been synced.
	Watermark(ctx context.Context, collection types.Collection) (time.Time, error)

	// SetWatermark advances the download watermark of the collection.
	SetWatermark(ctx context.Context, collection types.Collection, at time.Time) error

	// PushOperation appends the operation to the mutation queue and
	// assigns its sequence number.
	PushOperation(ctx context.Context, op *types.QueuedOperation) (*types.QueuedOperation, error)

	// ListOperations returns all queued operations in insertion order.
	ListOperations(ctx context.Context) ([]*types.QueuedOperation, error)

	// UpdateOperation replaces the queued operation with the same
	// sequence number, or returns ErrOperationNotFound.
	UpdateOperation(ctx context.Context, op *types.QueuedOperation) error

	// RemoveOperation removes the queued operation, or returns
	// ErrOperationNotFound.
	RemoveOperation(ctx context.Context, seq uint64) error

	// PushDeadLetter records an operation that permanently failed.
	PushDeadLetter(ctx context.Context, op *types.QueuedOperation) error

	// ListDeadLetters returns all permanently failed operations in
	// insertion order.
	ListDeadLetters(ctx context.Context) ([]*types.QueuedOperation, error)
}
