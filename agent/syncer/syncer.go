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

// Package syncer implements the per-collection push/pull pass: pending
// local documents are pushed to the remote store, remote changes since
// the last watermark are pulled down, and conflicting pairs are routed
// through the resolution policies.
package syncer

import (
	"context"
	"fmt"
	"sync"
	gotime "time"

	"github.com/tether-app/tether/agent/backend/localdb"
	"github.com/tether-app/tether/agent/backend/remote"
	"github.com/tether-app/tether/agent/resolve"
	"github.com/tether-app/tether/api/types"
	"github.com/tether-app/tether/pkg/cmap"
	"github.com/tether-app/tether/pkg/errors"
)

// ErrCollectionSyncing is returned when a pass over the collection is
// already running.
var ErrCollectionSyncing = errors.FailedPrecond("collection sync already in progress").
	WithCode("ErrCollectionSyncing")

// Syncer synchronizes one collection at a time between the local
// database and the remote store.
type Syncer struct {
	local     localdb.Database
	remote    remote.Store
	engine    *resolve.Engine
	tolerance gotime.Duration

	// locks single-flights passes per collection. A second caller for
	// the same collection fails fast instead of queuing.
	locks *cmap.Map[types.Collection, *sync.Mutex]

	// now is replaceable by tests.
	now func() gotime.Time
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithTolerance overrides the conflict detection tolerance.
func WithTolerance(tolerance gotime.Duration) Option {
	return func(s *Syncer) {
		s.tolerance = tolerance
	}
}

// WithClock overrides the clock. Tests use it to pin timestamps.
func WithClock(now func() gotime.Time) Option {
	return func(s *Syncer) {
		s.now = now
	}
}

// New creates an instance of Syncer.
func New(
	local localdb.Database,
	remoteStore remote.Store,
	engine *resolve.Engine,
	opts ...Option,
) *Syncer {
	syncer := &Syncer{
		local:     local,
		remote:    remoteStore,
		engine:    engine,
		tolerance: resolve.DefaultTolerance,
		locks:     cmap.New[types.Collection, *sync.Mutex](),
		now:       gotime.Now,
	}

	for _, opt := range opts {
		opt(syncer)
	}

	return syncer
}

// SyncCollection runs one upload-then-download pass over the
// collection for the user. The returned result carries the operation
// counts and any conflicts detected during the pass; in auto mode the
// conflicts come back resolved, in manual mode they stay pending.
func (s *Syncer) SyncCollection(
	ctx context.Context,
	userID string,
	collection types.Collection,
	mode types.ConflictResolutionMode,
) (*types.SyncResult, error) {
	lock := s.lockOf(collection)
	if !lock.TryLock() {
		return nil, ErrCollectionSyncing
	}
	defer lock.Unlock()

	result := types.NewSyncResult(s.now())

	conflicts, err := s.upload(ctx, userID, collection, result)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", collection, err)
	}

	// A divergence flagged during upload covers both directions; the
	// download phase must not report it again.
	conflicted := make(map[string]bool, len(conflicts))
	for _, info := range conflicts {
		conflicted[info.DocumentID] = true
	}

	downloaded, err := s.download(ctx, userID, collection, result, conflicted)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", collection, err)
	}
	conflicts = append(conflicts, downloaded...)

	if err := s.settle(ctx, userID, collection, mode, conflicts); err != nil {
		return nil, fmt.Errorf("resolve conflicts of %s: %w", collection, err)
	}

	result.Conflicts = conflicts
	result.Operations.Conflicts = len(conflicts)

	return result, nil
}

// ResolveConflict applies the collection policy to a single pending
// conflict and writes the merged document to both stores. Manual-mode
// conflicts are settled through this entry point.
func (s *Syncer) ResolveConflict(
	ctx context.Context,
	userID string,
	info *types.ConflictInfo,
) error {
	if info.Resolution == types.ResolutionResolved {
		return nil
	}

	merged, err := s.engine.Resolve(ctx, info.Local, info.Remote)
	if err != nil {
		return err
	}

	if err := s.writeMerged(ctx, userID, info.Collection, merged); err != nil {
		return err
	}

	info.Resolution = types.ResolutionResolved
	return nil
}

func (s *Syncer) lockOf(collection types.Collection) *sync.Mutex {
	return s.locks.Upsert(collection, func(lock *sync.Mutex, exists bool) *sync.Mutex {
		if exists {
			return lock
		}
		return &sync.Mutex{}
	})
}
