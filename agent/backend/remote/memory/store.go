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

// Package memory implements the remote store interface using an
// in-memory database. It serves tests and offline development.
package memory

import (
	"context"
	"fmt"
	gotime "time"

	"github.com/hashicorp/go-memdb"

	"github.com/tether-app/tether/agent/backend/remote"
	"github.com/tether-app/tether/api/types"
)

var tblDocuments = "documents"

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblDocuments: {
			Name: tblDocuments,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:   "id",
					Unique: true,
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "UserID"},
							&memdb.StringFieldIndex{Field: "Collection"},
							&memdb.StringFieldIndex{Field: "EntityID"},
						},
					},
				},
				"user_collection": {
					Name: "user_collection",
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "UserID"},
							&memdb.StringFieldIndex{Field: "Collection"},
						},
					},
				},
			},
		},
	},
}

// documentRecord wraps a stored document with denormalized fields for
// indexing.
type documentRecord struct {
	UserID     string
	Collection string
	EntityID   string
	Entity     types.Entity
}

// Store is an in-memory implementation of remote.Store.
type Store struct {
	db *memdb.MemDB
}

// New returns a new in-memory remote store.
func New() (*Store, error) {
	memDB, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}

	return &Store{
		db: memDB,
	}, nil
}

// Close closes the store.
func (s *Store) Close(_ context.Context) error {
	return nil
}

// FindDocument returns the document of the user stored for the given
// collection and id.
func (s *Store) FindDocument(
	_ context.Context,
	userID string,
	collection types.Collection,
	id string,
) (types.Entity, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", userID, collection.String(), id)
	if err != nil {
		return nil, fmt.Errorf("find document %s/%s: %w", collection, id, err)
	}
	if raw == nil {
		return nil, remote.ErrDocumentNotFound
	}

	return raw.(*documentRecord).Entity.DeepCopy(), nil
}

// FindChangedSince returns all documents of the user in the collection
// modified strictly after the given time.
func (s *Store) FindChangedSince(
	_ context.Context,
	userID string,
	collection types.Collection,
	since gotime.Time,
) ([]types.Entity, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(tblDocuments, "user_collection", userID, collection.String())
	if err != nil {
		return nil, fmt.Errorf("find changed documents of %s: %w", collection, err)
	}

	var entities []types.Entity
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		entity := raw.(*documentRecord).Entity
		if entity.ModifiedAt().After(since) {
			entities = append(entities, entity.DeepCopy())
		}
	}

	return entities, nil
}

// BatchWrite upserts the documents in one transaction.
func (s *Store) BatchWrite(
	_ context.Context,
	userID string,
	collection types.Collection,
	entities []types.Entity,
) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	for _, entity := range entities {
		record := &documentRecord{
			UserID:     userID,
			Collection: collection.String(),
			EntityID:   entity.EntityID(),
			Entity:     entity.DeepCopy(),
		}
		if err := txn.Insert(tblDocuments, record); err != nil {
			return fmt.Errorf("batch write %s/%s: %w", collection, entity.EntityID(), err)
		}
	}

	txn.Commit()
	return nil
}

// DeleteDocument removes the document of the user. Deleting an absent
// document is not an error.
func (s *Store) DeleteDocument(
	_ context.Context,
	userID string,
	collection types.Collection,
	id string,
) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", userID, collection.String(), id)
	if err != nil {
		return fmt.Errorf("delete document %s/%s: %w", collection, id, err)
	}
	if raw == nil {
		return nil
	}

	if err := txn.Delete(tblDocuments, raw); err != nil {
		return fmt.Errorf("delete document %s/%s: %w", collection, id, err)
	}

	txn.Commit()
	return nil
}
