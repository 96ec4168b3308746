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

// Package orchestrator coordinates full sync passes: it checks the
// preconditions, drains the offline mutation queue, runs the
// per-collection syncer in order, and aggregates the results. A pass
// over the collections stops at the first failure so a broken remote
// does not burn through the remaining collections.
package orchestrator

import (
	"context"
	goerrors "errors"
	"sync"
	gotime "time"

	"github.com/tether-app/tether/agent/backend"
	"github.com/tether-app/tether/agent/backend/localdb"
	"github.com/tether-app/tether/agent/connectivity"
	"github.com/tether-app/tether/agent/logging"
	"github.com/tether-app/tether/agent/queue"
	"github.com/tether-app/tether/agent/syncer"
	"github.com/tether-app/tether/api/types"
	"github.com/tether-app/tether/pkg/cmap"
	"github.com/tether-app/tether/pkg/errors"
)

var (
	// ErrNotAuthenticated is returned when a sync is requested with
	// nobody signed in.
	ErrNotAuthenticated = errors.Unauthenticated("sync requires a signed-in user").
				WithCode("ErrNotAuthenticated")

	// ErrOffline is returned when a sync is requested without
	// connectivity.
	ErrOffline = errors.Unavailable("device is offline").WithCode("ErrOffline")

	// ErrAlreadySyncing is returned when a sync pass is already
	// running.
	ErrAlreadySyncing = errors.FailedPrecond("sync already in progress").
				WithCode("ErrAlreadySyncing")

	// ErrSyncThrottled is returned when passes are requested faster
	// than the minimum interval. Force bypasses the throttle.
	ErrSyncThrottled = errors.ResourceExhausted("sync throttled").
				WithCode("ErrSyncThrottled")

	// ErrConflictNotFound is returned when the referenced conflict is
	// not registered.
	ErrConflictNotFound = errors.NotFound("conflict not found").
				WithCode("ErrConflictNotFound")
)

// Notifier receives the aggregate result of each finished pass.
// Notifications are fire-and-forget.
type Notifier interface {
	Notify(result *types.SyncResult)
}

// Orchestrator coordinates the sync collaborators of the agent.
type Orchestrator struct {
	backend  *backend.Backend
	monitor  *connectivity.Monitor
	queue    *queue.Queue
	syncer   *syncer.Syncer
	identity Identity
	notifier Notifier

	// conflicts registers the conflicts of past passes until they are
	// resolved and cleared.
	conflicts *cmap.Map[string, *types.ConflictInfo]

	// syncMu single-flights sync passes.
	syncMu sync.Mutex

	minInterval gotime.Duration
	lastPassMu  sync.Mutex
	lastPass    gotime.Time

	now func() gotime.Time

	unsubscribe func()
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithNotifier installs the pass notifier.
func WithNotifier(notifier Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = notifier
	}
}

// WithMinInterval overrides the throttle interval between passes.
func WithMinInterval(interval gotime.Duration) Option {
	return func(o *Orchestrator) {
		o.minInterval = interval
	}
}

// WithClock overrides the clock. Tests use it to pin timestamps.
func WithClock(now func() gotime.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an instance of Orchestrator and subscribes it to the
// connectivity monitor. A transition back online triggers a forced
// pass in the background so queued offline work drains promptly.
func New(
	be *backend.Backend,
	monitor *connectivity.Monitor,
	q *queue.Queue,
	s *syncer.Syncer,
	identity Identity,
	opts ...Option,
) *Orchestrator {
	orchestrator := &Orchestrator{
		backend:     be,
		monitor:     monitor,
		queue:       q,
		syncer:      s,
		identity:    identity,
		conflicts:   cmap.New[string, *types.ConflictInfo](),
		minInterval: 30 * gotime.Second,
		now:         gotime.Now,
	}

	for _, opt := range opts {
		opt(orchestrator)
	}

	wasOnline := monitor.Online()
	orchestrator.unsubscribe = monitor.Subscribe(func(online bool) {
		if online && !wasOnline {
			go orchestrator.syncOnReconnect()
		}
		wasOnline = online
	})

	return orchestrator
}

// Close detaches the orchestrator from the connectivity monitor.
func (o *Orchestrator) Close() {
	if o.unsubscribe != nil {
		o.unsubscribe()
	}
}

// Apply performs a local mutation. The document is stamped pending so
// the next pass uploads it; a mutation made offline, and every delete,
// is also queued for replay against the remote store.
func (o *Orchestrator) Apply(
	ctx context.Context,
	opType types.OperationType,
	entity types.Entity,
) error {
	if err := types.ValidateEntity(entity); err != nil {
		return err
	}

	entity.Touch(o.now())
	entity.SetStatus(types.StatusPending)

	switch opType {
	case types.OpCreate:
		if err := o.backend.Local.CreateEntity(ctx, entity); err != nil {
			return err
		}
	case types.OpUpdate:
		if err := o.backend.Local.UpdateEntity(ctx, entity); err != nil {
			return err
		}
	case types.OpDelete:
		if err := o.backend.Local.DeleteEntity(ctx, entity.Collection(), entity.EntityID()); err != nil {
			return err
		}
	}

	// Deletes leave no pending document behind for the upload phase to
	// find, so they always travel through the queue.
	if opType == types.OpDelete || !o.monitor.Online() {
		if _, err := o.queue.Push(ctx, opType, entity); err != nil {
			return err
		}
	}

	return nil
}

// Sync runs one full pass: precondition checks, queue drain, then the
// per-collection push/pull in order. The pass stops at the first
// failing collection; the partial aggregate is returned alongside the
// error.
func (o *Orchestrator) Sync(ctx context.Context, opts types.SyncOptions) (*types.SyncResult, error) {
	if err := types.ValidateOptions(opts); err != nil {
		return nil, err
	}

	userID := o.identity.UserID()
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	if !o.monitor.Online() {
		return nil, ErrOffline
	}

	if !o.syncMu.TryLock() {
		return nil, ErrAlreadySyncing
	}
	defer o.syncMu.Unlock()

	if !opts.Force && !o.throttleExpired() {
		return nil, ErrSyncThrottled
	}

	started := o.now()
	result := types.NewSyncResult(started)

	drained, err := o.drainQueue(ctx, userID)
	if err != nil {
		return o.finishPass(ctx, result, started, err)
	}
	if drained != nil && (drained.Processed > 0 || drained.Dropped > 0) {
		o.backend.Metrics.AddQueueDrained(drained.Processed)
		o.backend.Metrics.AddQueueDeadLettered(drained.Dropped)
	}

	for _, collection := range opts.TargetCollections() {
		collectionResult, err := o.syncer.SyncCollection(ctx, userID, collection, opts.Mode())
		if err != nil {
			return o.finishPass(ctx, result, started, err)
		}

		o.backend.Metrics.AddUploaded(collection, collectionResult.Operations.Uploaded)
		o.backend.Metrics.AddDownloaded(collection, collectionResult.Operations.Downloaded)
		o.backend.Metrics.AddConflictsDetected(collection, len(collectionResult.Conflicts))

		resolved := 0
		for _, info := range collectionResult.Conflicts {
			o.conflicts.Set(info.ID, info)
			if info.Resolution == types.ResolutionResolved {
				resolved++
			}
		}
		o.backend.Metrics.AddConflictsResolved(collection, resolved)

		result.Merge(collectionResult)
	}

	o.markPass(started)
	return o.finishPass(ctx, result, started, nil)
}

// SyncCollection runs one forced pass narrowed to a single collection.
func (o *Orchestrator) SyncCollection(
	ctx context.Context,
	collection types.Collection,
) (*types.SyncResult, error) {
	return o.Sync(ctx, types.SyncOptions{
		Force:       true,
		Collections: []types.Collection{collection},
	})
}

// PendingConflicts returns the registered conflicts still waiting for
// resolution.
func (o *Orchestrator) PendingConflicts() []*types.ConflictInfo {
	var pending []*types.ConflictInfo
	for _, info := range o.conflicts.Values() {
		if info.Resolution == types.ResolutionPending {
			pending = append(pending, info)
		}
	}
	return pending
}

// ResolveConflict settles the registered conflict with its collection
// policy and writes the merged document to both stores.
func (o *Orchestrator) ResolveConflict(ctx context.Context, id string) error {
	info, ok := o.conflicts.Get(id)
	if !ok {
		return ErrConflictNotFound
	}

	return o.syncer.ResolveConflict(ctx, o.identity.UserID(), info)
}

// ClearResolvedConflicts drops resolved conflicts from the registry
// and returns how many were dropped. Without ids every resolved
// conflict is cleared; with ids only those are considered.
func (o *Orchestrator) ClearResolvedConflicts(ids ...string) int {
	if len(ids) == 0 {
		for _, info := range o.conflicts.Values() {
			ids = append(ids, info.ID)
		}
	}

	cleared := 0
	for _, id := range ids {
		if info, ok := o.conflicts.Get(id); ok &&
			info.Resolution == types.ResolutionResolved && o.conflicts.Delete(id) {
			cleared++
		}
	}
	return cleared
}

// QueueStats returns a snapshot of the offline mutation queue.
func (o *Orchestrator) QueueStats(ctx context.Context) (*queue.Stats, error) {
	return o.queue.Stats(ctx)
}

// drainQueue replays the queued offline mutations against the remote
// store.
func (o *Orchestrator) drainQueue(ctx context.Context, userID string) (*queue.DrainResult, error) {
	return o.queue.Drain(ctx, func(ctx context.Context, op *types.QueuedOperation) error {
		switch op.Op {
		case types.OpDelete:
			return o.backend.Remote.DeleteDocument(ctx, userID, op.Collection, op.Payload.EntityID())
		default:
			// The remote copy never carries the local-only pending status.
			payload := op.Payload.DeepCopy()
			payload.SetStatus(types.StatusSynced)
			if err := o.backend.Remote.BatchWrite(
				ctx, userID, op.Collection, []types.Entity{payload},
			); err != nil {
				return err
			}
			return o.markSyncedIfUnchanged(ctx, op)
		}
	})
}

// markSyncedIfUnchanged flips the local copy to synced after a queued
// replay, unless the document was edited again after it was queued.
func (o *Orchestrator) markSyncedIfUnchanged(ctx context.Context, op *types.QueuedOperation) error {
	local, err := o.backend.Local.FindEntity(ctx, op.Collection, op.Payload.EntityID())
	if goerrors.Is(err, localdb.ErrEntityNotFound) {
		// The document was deleted since it was queued.
		return nil
	}
	if err != nil {
		return err
	}

	if !local.ModifiedAt().Equal(op.Payload.ModifiedAt()) {
		return nil
	}

	local.SetStatus(types.StatusSynced)
	return o.backend.Local.UpdateEntity(ctx, local)
}

// finishPass stamps the aggregate, records the pass metrics and fires
// the notifier.
func (o *Orchestrator) finishPass(
	ctx context.Context,
	result *types.SyncResult,
	started gotime.Time,
	err error,
) (*types.SyncResult, error) {
	if err != nil {
		result.Success = false
		result.Error = err.Error()
	}

	o.backend.Metrics.ObserveSyncPass(result.Success, o.now().Sub(started).Seconds())

	if o.notifier != nil {
		go o.notifier.Notify(result)
	}

	if err != nil {
		logging.From(ctx).Warnf("sync pass failed: %v", err)
		return result, err
	}

	logging.From(ctx).Infof(
		"sync pass done: %d up, %d down, %d conflicts",
		result.Operations.Uploaded,
		result.Operations.Downloaded,
		result.Operations.Conflicts,
	)
	return result, nil
}

func (o *Orchestrator) throttleExpired() bool {
	o.lastPassMu.Lock()
	defer o.lastPassMu.Unlock()

	return o.lastPass.IsZero() || o.now().Sub(o.lastPass) >= o.minInterval
}

func (o *Orchestrator) markPass(at gotime.Time) {
	o.lastPassMu.Lock()
	defer o.lastPassMu.Unlock()

	o.lastPass = at
}

// syncOnReconnect runs a forced pass after connectivity returns.
func (o *Orchestrator) syncOnReconnect() {
	ctx := context.Background()
	logging.DefaultLogger().Info("connectivity restored, syncing")

	if _, err := o.Sync(ctx, types.SyncOptions{Force: true}); err != nil {
		logging.DefaultLogger().Warnf("sync on reconnect: %v", err)
	}
}
