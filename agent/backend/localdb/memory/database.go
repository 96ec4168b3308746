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

// Package memory implements the local database interface using an
// in-memory database. It backs tests and ephemeral development setups;
// a device build plugs in a persistent implementation behind the same
// interface.
package memory

import (
	"context"
	"fmt"
	"sync/atomic"
	gotime "time"

	"github.com/hashicorp/go-memdb"

	"github.com/tether-app/tether/agent/backend/localdb"
	"github.com/tether-app/tether/api/types"
)

// DB is an in-memory implementation of localdb.Database.
type DB struct {
	db      *memdb.MemDB
	lastSeq uint64
}

// New returns a new in-memory local database.
func New() (*DB, error) {
	memDB, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}

	return &DB{
		db: memDB,
	}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return nil
}

// entityRecord wraps an entity with denormalized fields for indexing.
type entityRecord struct {
	Collection string
	EntityID   string
	UserID     string
	Status     string
	Entity     types.Entity
}

func newEntityRecord(entity types.Entity) *entityRecord {
	return &entityRecord{
		Collection: entity.Collection().String(),
		EntityID:   entity.EntityID(),
		UserID:     entity.Owner(),
		Status:     string(entity.Status()),
		Entity:     entity.DeepCopy(),
	}
}

// watermarkRecord stores the download watermark of one collection.
type watermarkRecord struct {
	Collection string
	LastSync   gotime.Time
}

// FindEntity returns the entity stored for the given collection and id.
func (d *DB) FindEntity(
	_ context.Context,
	collection types.Collection,
	id string,
) (types.Entity, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblEntities, "id", collection.String(), id)
	if err != nil {
		return nil, fmt.Errorf("find entity %s/%s: %w", collection, id, err)
	}
	if raw == nil {
		return nil, localdb.ErrEntityNotFound
	}

	return raw.(*entityRecord).Entity.DeepCopy(), nil
}

// FindPendingByUser returns all pending documents of the user in the
// collection.
func (d *DB) FindPendingByUser(
	_ context.Context,
	collection types.Collection,
	userID string,
) ([]types.Entity, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(
		tblEntities,
		"collection_user_status",
		collection.String(),
		userID,
		string(types.StatusPending),
	)
	if err != nil {
		return nil, fmt.Errorf("find pending of %s/%s: %w", collection, userID, err)
	}

	var entities []types.Entity
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		entities = append(entities, raw.(*entityRecord).Entity.DeepCopy())
	}

	return entities, nil
}

// CreateEntity stores a new entity.
func (d *DB) CreateEntity(_ context.Context, entity types.Entity) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblEntities, "id", entity.Collection().String(), entity.EntityID())
	if err != nil {
		return fmt.Errorf("create entity %s/%s: %w", entity.Collection(), entity.EntityID(), err)
	}
	if raw != nil {
		return localdb.ErrEntityAlreadyExists
	}

	if err := txn.Insert(tblEntities, newEntityRecord(entity)); err != nil {
		return fmt.Errorf("create entity %s/%s: %w", entity.Collection(), entity.EntityID(), err)
	}

	txn.Commit()
	return nil
}

// UpdateEntity replaces the stored entity.
func (d *DB) UpdateEntity(_ context.Context, entity types.Entity) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblEntities, "id", entity.Collection().String(), entity.EntityID())
	if err != nil {
		return fmt.Errorf("update entity %s/%s: %w", entity.Collection(), entity.EntityID(), err)
	}
	if raw == nil {
		return localdb.ErrEntityNotFound
	}

	if err := txn.Insert(tblEntities, newEntityRecord(entity)); err != nil {
		return fmt.Errorf("update entity %s/%s: %w", entity.Collection(), entity.EntityID(), err)
	}

	txn.Commit()
	return nil
}

// DeleteEntity removes the stored entity.
func (d *DB) DeleteEntity(
	_ context.Context,
	collection types.Collection,
	id string,
) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblEntities, "id", collection.String(), id)
	if err != nil {
		return fmt.Errorf("delete entity %s/%s: %w", collection, id, err)
	}
	if raw == nil {
		return localdb.ErrEntityNotFound
	}

	if err := txn.Delete(tblEntities, raw); err != nil {
		return fmt.Errorf("delete entity %s/%s: %w", collection, id, err)
	}

	txn.Commit()
	return nil
}

// Watermark returns the download watermark of the collection.
func (d *DB) Watermark(
	_ context.Context,
	collection types.Collection,
) (gotime.Time, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblWatermarks, "id", collection.String())
	if err != nil {
		return gotime.Time{}, fmt.Errorf("find watermark of %s: %w", collection, err)
	}
	if raw == nil {
		return gotime.Time{}, nil
	}

	return raw.(*watermarkRecord).LastSync, nil
}

// SetWatermark advances the download watermark of the collection.
func (d *DB) SetWatermark(
	_ context.Context,
	collection types.Collection,
	at gotime.Time,
) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	record := &watermarkRecord{
		Collection: collection.String(),
		LastSync:   at,
	}
	if err := txn.Insert(tblWatermarks, record); err != nil {
		return fmt.Errorf("set watermark of %s: %w", collection, err)
	}

	txn.Commit()
	return nil
}

// PushOperation appends the operation to the mutation queue.
func (d *DB) PushOperation(
	_ context.Context,
	op *types.QueuedOperation,
) (*types.QueuedOperation, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	copied := op.DeepCopy()
	copied.Seq = atomic.AddUint64(&d.lastSeq, 1)

	if err := txn.Insert(tblOperations, copied); err != nil {
		return nil, fmt.Errorf("push operation %d: %w", copied.Seq, err)
	}

	txn.Commit()
	return copied.DeepCopy(), nil
}

// ListOperations returns all queued operations in insertion order.
func (d *DB) ListOperations(_ context.Context) ([]*types.QueuedOperation, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(tblOperations, "id")
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}

	var ops []*types.QueuedOperation
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		ops = append(ops, raw.(*types.QueuedOperation).DeepCopy())
	}

	return ops, nil
}

// UpdateOperation replaces the queued operation with the same sequence
// number.
func (d *DB) UpdateOperation(_ context.Context, op *types.QueuedOperation) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblOperations, "id", op.Seq)
	if err != nil {
		return fmt.Errorf("update operation %d: %w", op.Seq, err)
	}
	if raw == nil {
		return localdb.ErrOperationNotFound
	}

	if err := txn.Insert(tblOperations, op.DeepCopy()); err != nil {
		return fmt.Errorf("update operation %d: %w", op.Seq, err)
	}

	txn.Commit()
	return nil
}

// RemoveOperation removes the queued operation.
func (d *DB) RemoveOperation(_ context.Context, seq uint64) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblOperations, "id", seq)
	if err != nil {
		return fmt.Errorf("remove operation %d: %w", seq, err)
	}
	if raw == nil {
		return localdb.ErrOperationNotFound
	}

	if err := txn.Delete(tblOperations, raw); err != nil {
		return fmt.Errorf("remove operation %d: %w", seq, err)
	}

	txn.Commit()
	return nil
}

// PushDeadLetter records an operation that permanently failed.
func (d *DB) PushDeadLetter(_ context.Context, op *types.QueuedOperation) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	if err := txn.Insert(tblDeadLetters, op.DeepCopy()); err != nil {
		return fmt.Errorf("push dead letter %d: %w", op.Seq, err)
	}

	txn.Commit()
	return nil
}

// ListDeadLetters returns all permanently failed operations.
func (d *DB) ListDeadLetters(_ context.Context) ([]*types.QueuedOperation, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(tblDeadLetters, "id")
	if err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}

	var ops []*types.QueuedOperation
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		ops = append(ops, raw.(*types.QueuedOperation).DeepCopy())
	}

	return ops, nil
}
