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

	"github.com/tether-app/tether/agent/backend/remote"
	"github.com/tether-app/tether/agent/backend/remote/memory"
	"github.com/tether-app/tether/api/types"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newSession(id string, modified time.Time) *types.Session {
	return &types.Session{
		Base: types.Base{
			ID:           id,
			UserID:       "user-01",
			LastModified: modified,
			SyncStatus:   types.StatusSynced,
		},
		StartTime: modified,
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("batch write upserts and find returns copies test", func(t *testing.T) {
		store, err := memory.New()
		assert.NoError(t, err)

		session := newSession("session-01", baseTime)
		assert.NoError(t, store.BatchWrite(
			ctx, "user-01", types.ColSessions, []types.Entity{session},
		))

		found, err := store.FindDocument(ctx, "user-01", types.ColSessions, "session-01")
		assert.NoError(t, err)
		found.Touch(baseTime.Add(time.Hour))

		again, err := store.FindDocument(ctx, "user-01", types.ColSessions, "session-01")
		assert.NoError(t, err)
		assert.Equal(t, baseTime, again.ModifiedAt())

		// Writing the same id again replaces the document.
		session.Notes = "updated"
		assert.NoError(t, store.BatchWrite(
			ctx, "user-01", types.ColSessions, []types.Entity{session},
		))
		again, err = store.FindDocument(ctx, "user-01", types.ColSessions, "session-01")
		assert.NoError(t, err)
		assert.Equal(t, "updated", again.(*types.Session).Notes)
	})

	t.Run("documents are scoped per user test", func(t *testing.T) {
		store, err := memory.New()
		assert.NoError(t, err)

		assert.NoError(t, store.BatchWrite(
			ctx, "user-01", types.ColSessions, []types.Entity{newSession("session-01", baseTime)},
		))

		_, err = store.FindDocument(ctx, "user-02", types.ColSessions, "session-01")
		assert.ErrorIs(t, err, remote.ErrDocumentNotFound)
	})

	t.Run("changed-since is strictly after test", func(t *testing.T) {
		store, err := memory.New()
		assert.NoError(t, err)

		assert.NoError(t, store.BatchWrite(ctx, "user-01", types.ColSessions, []types.Entity{
			newSession("session-01", baseTime),
			newSession("session-02", baseTime.Add(time.Hour)),
		}))

		changed, err := store.FindChangedSince(ctx, "user-01", types.ColSessions, baseTime)
		assert.NoError(t, err)
		assert.Len(t, changed, 1)
		assert.Equal(t, "session-02", changed[0].EntityID())

		changed, err = store.FindChangedSince(ctx, "user-01", types.ColSessions, time.Time{})
		assert.NoError(t, err)
		assert.Len(t, changed, 2)
	})

	t.Run("deleting an absent document is not an error test", func(t *testing.T) {
		store, err := memory.New()
		assert.NoError(t, err)

		assert.NoError(t, store.DeleteDocument(ctx, "user-01", types.ColSessions, "session-01"))

		assert.NoError(t, store.BatchWrite(
			ctx, "user-01", types.ColSessions, []types.Entity{newSession("session-01", baseTime)},
		))
		assert.NoError(t, store.DeleteDocument(ctx, "user-01", types.ColSessions, "session-01"))

		_, err = store.FindDocument(ctx, "user-01", types.ColSessions, "session-01")
		assert.ErrorIs(t, err, remote.ErrDocumentNotFound)
	})
}
