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

package types_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tether-app/tether/api/types"
)

func TestCollection(t *testing.T) {
	t.Run("known collections build their entity test", func(t *testing.T) {
		for _, collection := range types.Collections() {
			assert.True(t, collection.IsKnown())
			entity := collection.NewEntity()
			assert.NotNil(t, entity)
			assert.Equal(t, collection, entity.Collection())
		}
	})

	t.Run("unknown collection test", func(t *testing.T) {
		unknown := types.Collection("bogus")
		assert.False(t, unknown.IsKnown())
		assert.Nil(t, unknown.NewEntity())
	})
}

func TestTaskStatus(t *testing.T) {
	t.Run("rank order follows the workflow test", func(t *testing.T) {
		assert.True(t, types.TaskPending.Precedes(types.TaskSubmitted))
		assert.True(t, types.TaskSubmitted.Precedes(types.TaskApproved))
		assert.True(t, types.TaskApproved.Precedes(types.TaskCompleted))
		assert.False(t, types.TaskCompleted.Precedes(types.TaskPending))
	})

	t.Run("unknown status ranks lowest test", func(t *testing.T) {
		assert.Equal(t, -1, types.TaskStatus("bogus").Rank())
		assert.True(t, types.TaskStatus("bogus").Precedes(types.TaskPending))
	})
}

func TestSyncResult(t *testing.T) {
	t.Run("merge sums counts and propagates failure test", func(t *testing.T) {
		now := time.Now()
		aggregate := types.NewSyncResult(now)

		aggregate.Merge(&types.SyncResult{
			Success:    true,
			Operations: types.OperationCounts{Uploaded: 2, Downloaded: 1},
		})
		aggregate.Merge(&types.SyncResult{
			Success:    false,
			Error:      "remote unavailable",
			Operations: types.OperationCounts{Downloaded: 3, Conflicts: 1},
		})

		assert.False(t, aggregate.Success)
		assert.Equal(t, "remote unavailable", aggregate.Error)
		assert.Equal(t, 2, aggregate.Operations.Uploaded)
		assert.Equal(t, 4, aggregate.Operations.Downloaded)
		assert.Equal(t, 1, aggregate.Operations.Conflicts)
	})
}

func TestSyncOptions(t *testing.T) {
	t.Run("defaults test", func(t *testing.T) {
		opts := types.SyncOptions{}
		assert.Equal(t, types.ResolutionAuto, opts.Mode())
		assert.Equal(t, types.Collections(), opts.TargetCollections())
	})

	t.Run("invalid resolution mode fails validation test", func(t *testing.T) {
		assert.Error(t, types.ValidateOptions(types.SyncOptions{ConflictResolution: "bogus"}))
		assert.NoError(t, types.ValidateOptions(types.SyncOptions{ConflictResolution: types.ResolutionManual}))
	})
}

func TestDeepCopy(t *testing.T) {
	t.Run("session copy does not share the end time test", func(t *testing.T) {
		ended := time.Now()
		session := &types.Session{
			Base:    types.Base{ID: "session-01", UserID: "user-01"},
			EndTime: &ended,
		}

		copied := session.DeepCopy().(*types.Session)
		assert.NotSame(t, session.EndTime, copied.EndTime)
		assert.Equal(t, *session.EndTime, *copied.EndTime)
	})

	t.Run("settings copy does not share field maps test", func(t *testing.T) {
		settings := &types.Settings{
			Base: types.Base{ID: "settings-01", UserID: "user-01"},
			Rules: types.FieldMap{
				"screen_limit": {Value: 120, UpdatedAt: time.Now()},
			},
		}

		copied := settings.DeepCopy().(*types.Settings)
		copied.Rules["screen_limit"] = types.Field{Value: 90}
		assert.Equal(t, 120, settings.Rules["screen_limit"].Value)
	})
}
