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

// Package remote provides the interface of the authoritative remote
// document store. All sync is hub-and-spoke through one remote store;
// there is no peer-to-peer path.
package remote

import (
	"context"
	"time"

	"github.com/tether-app/tether/api/types"
	"github.com/tether-app/tether/pkg/errors"
)

var (
	// ErrDocumentNotFound is returned when the remote document could
	// not be found.
	ErrDocumentNotFound = errors.NotFound("document not found").WithCode("ErrDocumentNotFound")
)

// Store is the timestamp-ordered remote document store consumed by the
// sync engine.
type Store interface {
	// Close closes all resources of this store.
	Close(ctx context.Context) error

	// FindDocument returns the document of the user stored for the
	// given collection and id, or ErrDocumentNotFound.
	FindDocument(
		ctx context.Context,
		userID string,
		collection types.Collection,
		id string,
	) (types.Entity, error)

	// FindChangedSince returns all documents of the user in the
	// collection modified strictly after the given time.
	FindChangedSince(
		ctx context.Context,
		userID string,
		collection types.Collection,
		since time.Time,
	) ([]types.Entity, error)

	// BatchWrite upserts the documents in one atomic batch.
	BatchWrite(
		ctx context.Context,
		userID string,
		collection types.Collection,
		entities []types.Entity,
	) error

	// DeleteDocument removes the document of the user. Deleting an
	// absent document is not an error.
	DeleteDocument(
		ctx context.Context,
		userID string,
		collection types.Collection,
		id string,
	) error
}
