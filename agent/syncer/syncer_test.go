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

package syncer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	localmemory "github.com/tether-app/tether/agent/backend/localdb/memory"
	remotememory "github.com/tether-app/tether/agent/backend/remote/memory"
	"github.com/tether-app/tether/agent/resolve"
	"github.com/tether-app/tether/agent/syncer"
	"github.com/tether-app/tether/api/types"
)

const testUser = "user-01"

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	local  *localmemory.DB
	remote *remotememory.Store
	syncer *syncer.Syncer
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	local, err := localmemory.New()
	assert.NoError(t, err)
	remote, err := remotememory.New()
	assert.NoError(t, err)

	f := &fixture{
		local:  local,
		remote: remote,
		now:    baseTime,
	}
	f.syncer = syncer.New(local, remote, resolve.NewEngine(), syncer.WithClock(func() time.Time {
		return f.now
	}))

	return f
}

// gatedStore blocks FindChangedSince until released so a pass can be
// held mid-flight.
type gatedStore struct {
	*remotememory.Store
	entered chan struct{}
	release chan struct{}
}

func (s *gatedStore) FindChangedSince(
	ctx context.Context,
	userID string,
	collection types.Collection,
	since time.Time,
) ([]types.Entity, error) {
	s.entered <- struct{}{}
	<-s.release
	return s.Store.FindChangedSince(ctx, userID, collection, since)
}

func newTask(id string, modified time.Time, status types.SyncStatus) *types.Task {
	return &types.Task{
		Base: types.Base{
			ID:           id,
			UserID:       testUser,
			LastModified: modified,
			SyncStatus:   status,
		},
		Title:      "clean room",
		TaskStatus: types.TaskPending,
	}
}

func TestSyncCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("pending documents upload and turn synced test", func(t *testing.T) {
		f := newFixture(t)

		assert.NoError(t, f.local.CreateEntity(ctx, newTask("task-01", baseTime, types.StatusPending)))

		result, err := f.syncer.SyncCollection(ctx, testUser, types.ColTasks, types.ResolutionAuto)
		assert.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 1, result.Operations.Uploaded)
		assert.Equal(t, 0, result.Operations.Conflicts)

		uploaded, err := f.remote.FindDocument(ctx, testUser, types.ColTasks, "task-01")
		assert.NoError(t, err)
		assert.Equal(t, baseTime, uploaded.ModifiedAt())

		local, err := f.local.FindEntity(ctx, types.ColTasks, "task-01")
		assert.NoError(t, err)
		assert.Equal(t, types.StatusSynced, local.Status())
	})

	t.Run("second pass uploads nothing test", func(t *testing.T) {
		f := newFixture(t)

		assert.NoError(t, f.local.CreateEntity(ctx, newTask("task-01", baseTime, types.StatusPending)))

		_, err := f.syncer.SyncCollection(ctx, testUser, types.ColTasks, types.ResolutionAuto)
		assert.NoError(t, err)

		f.now = f.now.Add(time.Minute)
		result, err := f.syncer.SyncCollection(ctx, testUser, types.ColTasks, types.ResolutionAuto)
		assert.NoError(t, err)
		assert.Equal(t, 0, result.Operations.Uploaded)
		assert.Equal(t, 0, result.Operations.Downloaded)
	})

	t.Run("remote changes download past the watermark test", func(t *testing.T) {
		f := newFixture(t)

		remoteTask := newTask("task-01", baseTime, types.StatusSynced)
		assert.NoError(t, f.remote.BatchWrite(ctx, testUser, types.ColTasks, []types.Entity{remoteTask}))

		result, err := f.syncer.SyncCollection(ctx, testUser, types.ColTasks, types.ResolutionAuto)
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Operations.Downloaded)

		local, err := f.local.FindEntity(ctx, types.ColTasks, "task-01")
		assert.NoError(t, err)
		assert.Equal(t, types.StatusSynced, local.Status())

		// The watermark advanced, so an unchanged remote is not pulled
		// again.
		f.now = f.now.Add(time.Minute)
		result, err = f.syncer.SyncCollection(ctx, testUser, types.ColTasks, types.ResolutionAuto)
		assert.NoError(t, err)
		assert.Equal(t, 0, result.Operations.Downloaded)
	})

	t.Run("diverged pending upload becomes a conflict and is not clobbered test", func(t *testing.T) {
		f := newFixture(t)

		remoteTask := newTask("task-01", baseTime.Add(time.Hour), types.StatusSynced)
		remoteTask.TaskStatus = types.TaskApproved
		assert.NoError(t, f.remote.BatchWrite(ctx, testUser, types.ColTasks, []types.Entity{remoteTask}))

		localTask := newTask("task-01", baseTime, types.StatusPending)
		localTask.TaskStatus = types.TaskSubmitted
		assert.NoError(t, f.local.CreateEntity(ctx, localTask))

		f.now = baseTime.Add(2 * time.Hour)
		result, err := f.syncer.SyncCollection(ctx, testUser, types.ColTasks, types.ResolutionAuto)
		assert.NoError(t, err)
		assert.Equal(t, 0, result.Operations.Uploaded)
		assert.Equal(t, 1, result.Operations.Conflicts)
		assert.Len(t, result.Conflicts, 1)
		assert.Equal(t, types.ConflictUpload, result.Conflicts[0].Type)
		assert.Equal(t, types.ResolutionResolved, result.Conflicts[0].Resolution)

		// The approval won by task status precedence and reached both
		// stores.
		merged, err := f.remote.FindDocument(ctx, testUser, types.ColTasks, "task-01")
		assert.NoError(t, err)
		assert.Equal(t, types.TaskApproved, merged.(*types.Task).TaskStatus)

		local, err := f.local.FindEntity(ctx, types.ColTasks, "task-01")
		assert.NoError(t, err)
		assert.Equal(t, types.TaskApproved, local.(*types.Task).TaskStatus)
		assert.Equal(t, types.StatusSynced, local.Status())
	})

	t.Run("manual mode leaves conflicts pending test", func(t *testing.T) {
		f := newFixture(t)

		remoteTask := newTask("task-01", baseTime.Add(time.Hour), types.StatusSynced)
		assert.NoError(t, f.remote.BatchWrite(ctx, testUser, types.ColTasks, []types.Entity{remoteTask}))

		localTask := newTask("task-01", baseTime, types.StatusPending)
		assert.NoError(t, f.local.CreateEntity(ctx, localTask))

		f.now = baseTime.Add(2 * time.Hour)
		result, err := f.syncer.SyncCollection(ctx, testUser, types.ColTasks, types.ResolutionManual)
		assert.NoError(t, err)
		assert.Len(t, result.Conflicts, 1)
		assert.Equal(t, types.ResolutionPending, result.Conflicts[0].Resolution)

		// The pending local edit survived.
		local, err := f.local.FindEntity(ctx, types.ColTasks, "task-01")
		assert.NoError(t, err)
		assert.Equal(t, types.StatusPending, local.Status())

		// Settling the conflict later writes the merged document.
		assert.NoError(t, f.syncer.ResolveConflict(ctx, testUser, result.Conflicts[0]))
		assert.Equal(t, types.ResolutionResolved, result.Conflicts[0].Resolution)

		local, err = f.local.FindEntity(ctx, types.ColTasks, "task-01")
		assert.NoError(t, err)
		assert.Equal(t, types.StatusSynced, local.Status())
	})

	t.Run("concurrent pass over the same collection fails fast test", func(t *testing.T) {
		local, err := localmemory.New()
		assert.NoError(t, err)
		mem, err := remotememory.New()
		assert.NoError(t, err)

		gated := &gatedStore{
			Store:   mem,
			entered: make(chan struct{}),
			release: make(chan struct{}),
		}
		s := syncer.New(local, gated, resolve.NewEngine())

		done := make(chan error, 1)
		go func() {
			_, err := s.SyncCollection(ctx, testUser, types.ColTasks, types.ResolutionAuto)
			done <- err
		}()

		// The first pass is inside its download phase; the second caller
		// must be rejected instead of queued behind it.
		<-gated.entered
		_, err = s.SyncCollection(ctx, testUser, types.ColTasks, types.ResolutionAuto)
		assert.ErrorIs(t, err, syncer.ErrCollectionSyncing)

		close(gated.release)
		assert.NoError(t, <-done)
	})

	t.Run("download colliding with pending local edit keeps the edit test", func(t *testing.T) {
		f := newFixture(t)

		// The local session gained notes offline while another device
		// pushed its own version.
		localSession := &types.Session{
			Base: types.Base{
				ID:           "session-01",
				UserID:       testUser,
				LastModified: baseTime,
				SyncStatus:   types.StatusPending,
			},
			Notes: "local note",
		}
		assert.NoError(t, f.local.CreateEntity(ctx, localSession))

		remoteSession := &types.Session{
			Base: types.Base{
				ID:           "session-01",
				UserID:       testUser,
				LastModified: baseTime.Add(time.Hour),
				SyncStatus:   types.StatusSynced,
			},
			Notes: "remote note",
		}

		// The remote side already has the document, so the upload phase
		// flags the divergence before the download phase runs.
		assert.NoError(t, f.remote.BatchWrite(ctx, testUser, types.ColSessions, []types.Entity{remoteSession}))

		f.now = baseTime.Add(2 * time.Hour)
		result, err := f.syncer.SyncCollection(ctx, testUser, types.ColSessions, types.ResolutionAuto)
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Operations.Conflicts)

		merged, err := f.local.FindEntity(ctx, types.ColSessions, "session-01")
		assert.NoError(t, err)
		assert.Contains(t, merged.(*types.Session).Notes, "local note")
		assert.Contains(t, merged.(*types.Session).Notes, "remote note")
	})
}
