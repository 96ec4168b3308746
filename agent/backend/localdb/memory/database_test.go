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

package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tether-app/tether/agent/backend/localdb"
	"github.com/tether-app/tether/agent/backend/localdb/memory"
	"github.com/tether-app/tether/api/types"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newEvent(id, userID string, status types.SyncStatus) *types.Event {
	return &types.Event{
		Base: types.Base{
			ID:           id,
			UserID:       userID,
			LastModified: baseTime,
			SyncStatus:   status,
		},
		Kind:       "app_blocked",
		OccurredAt: baseTime,
	}
}

func TestDB(t *testing.T) {
	ctx := context.Background()

	t.Run("entity lifecycle test", func(t *testing.T) {
		db, err := memory.New()
		assert.NoError(t, err)

		event := newEvent("event-01", "user-01", types.StatusPending)
		assert.NoError(t, db.CreateEntity(ctx, event))
		assert.ErrorIs(t, db.CreateEntity(ctx, event), localdb.ErrEntityAlreadyExists)

		found, err := db.FindEntity(ctx, types.ColEvents, "event-01")
		assert.NoError(t, err)
		assert.Equal(t, "event-01", found.EntityID())

		found.SetStatus(types.StatusSynced)
		assert.NoError(t, db.UpdateEntity(ctx, found))

		found, err = db.FindEntity(ctx, types.ColEvents, "event-01")
		assert.NoError(t, err)
		assert.Equal(t, types.StatusSynced, found.Status())

		assert.NoError(t, db.DeleteEntity(ctx, types.ColEvents, "event-01"))
		_, err = db.FindEntity(ctx, types.ColEvents, "event-01")
		assert.ErrorIs(t, err, localdb.ErrEntityNotFound)
		assert.ErrorIs(t, db.DeleteEntity(ctx, types.ColEvents, "event-01"), localdb.ErrEntityNotFound)
	})

	t.Run("updating an absent entity fails test", func(t *testing.T) {
		db, err := memory.New()
		assert.NoError(t, err)

		err = db.UpdateEntity(ctx, newEvent("event-01", "user-01", types.StatusPending))
		assert.ErrorIs(t, err, localdb.ErrEntityNotFound)
	})

	t.Run("pending lookup filters by user and status test", func(t *testing.T) {
		db, err := memory.New()
		assert.NoError(t, err)

		assert.NoError(t, db.CreateEntity(ctx, newEvent("event-01", "user-01", types.StatusPending)))
		assert.NoError(t, db.CreateEntity(ctx, newEvent("event-02", "user-01", types.StatusSynced)))
		assert.NoError(t, db.CreateEntity(ctx, newEvent("event-03", "user-02", types.StatusPending)))

		pending, err := db.FindPendingByUser(ctx, types.ColEvents, "user-01")
		assert.NoError(t, err)
		assert.Len(t, pending, 1)
		assert.Equal(t, "event-01", pending[0].EntityID())
	})

	t.Run("read results are isolated from the store test", func(t *testing.T) {
		db, err := memory.New()
		assert.NoError(t, err)

		assert.NoError(t, db.CreateEntity(ctx, newEvent("event-01", "user-01", types.StatusPending)))

		found, err := db.FindEntity(ctx, types.ColEvents, "event-01")
		assert.NoError(t, err)
		found.SetStatus(types.StatusSynced)

		again, err := db.FindEntity(ctx, types.ColEvents, "event-01")
		assert.NoError(t, err)
		assert.Equal(t, types.StatusPending, again.Status())
	})

	t.Run("watermark starts at zero and advances test", func(t *testing.T) {
		db, err := memory.New()
		assert.NoError(t, err)

		watermark, err := db.Watermark(ctx, types.ColEvents)
		assert.NoError(t, err)
		assert.True(t, watermark.IsZero())

		assert.NoError(t, db.SetWatermark(ctx, types.ColEvents, baseTime))

		watermark, err = db.Watermark(ctx, types.ColEvents)
		assert.NoError(t, err)
		assert.Equal(t, baseTime, watermark)

		// Other collections keep their own watermark.
		watermark, err = db.Watermark(ctx, types.ColTasks)
		assert.NoError(t, err)
		assert.True(t, watermark.IsZero())
	})

	t.Run("operations keep insertion order test", func(t *testing.T) {
		db, err := memory.New()
		assert.NoError(t, err)

		for _, id := range []string{"event-01", "event-02", "event-03"} {
			_, err := db.PushOperation(ctx, &types.QueuedOperation{
				Op:         types.OpCreate,
				Collection: types.ColEvents,
				Payload:    newEvent(id, "user-01", types.StatusPending),
				UserID:     "user-01",
				CreatedAt:  baseTime,
			})
			assert.NoError(t, err)
		}

		ops, err := db.ListOperations(ctx)
		assert.NoError(t, err)
		assert.Len(t, ops, 3)
		for i, id := range []string{"event-01", "event-02", "event-03"} {
			assert.Equal(t, id, ops[i].Payload.EntityID())
		}

		assert.NoError(t, db.RemoveOperation(ctx, ops[1].Seq))
		ops, err = db.ListOperations(ctx)
		assert.NoError(t, err)
		assert.Len(t, ops, 2)
		assert.Equal(t, "event-01", ops[0].Payload.EntityID())
		assert.Equal(t, "event-03", ops[1].Payload.EntityID())

		assert.ErrorIs(t, db.RemoveOperation(ctx, 999), localdb.ErrOperationNotFound)
	})

	t.Run("dead letters are kept apart from the queue test", func(t *testing.T) {
		db, err := memory.New()
		assert.NoError(t, err)

		op, err := db.PushOperation(ctx, &types.QueuedOperation{
			Op:         types.OpCreate,
			Collection: types.ColEvents,
			Payload:    newEvent("event-01", "user-01", types.StatusPending),
			UserID:     "user-01",
			CreatedAt:  baseTime,
		})
		assert.NoError(t, err)

		assert.NoError(t, db.PushDeadLetter(ctx, op))
		assert.NoError(t, db.RemoveOperation(ctx, op.Seq))

		ops, err := db.ListOperations(ctx)
		assert.NoError(t, err)
		assert.Len(t, ops, 0)

		dead, err := db.ListDeadLetters(ctx)
		assert.NoError(t, err)
		assert.Len(t, dead, 1)
	})
}
