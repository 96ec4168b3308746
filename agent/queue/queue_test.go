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

package queue_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tether-app/tether/agent/backend/localdb/memory"
	"github.com/tether-app/tether/agent/queue"
	"github.com/tether-app/tether/api/types"
)

const (
	testMaxRetries = 3
	testBaseDelay  = time.Second
)

func newTestQueue(t *testing.T) *queue.Queue {
	t.Helper()

	db, err := memory.New()
	assert.NoError(t, err)
	return queue.New(db, testMaxRetries, testBaseDelay)
}

func newTestEvent(id string) *types.Event {
	return &types.Event{
		Base: types.Base{
			ID:           id,
			UserID:       "user-01",
			LastModified: time.Now(),
			SyncStatus:   types.StatusPending,
		},
		Kind:       "app_blocked",
		OccurredAt: time.Now(),
	}
}

func TestQueue(t *testing.T) {
	ctx := context.Background()

	t.Run("push assigns increasing sequence numbers test", func(t *testing.T) {
		q := newTestQueue(t)

		first, err := q.Push(ctx, types.OpCreate, newTestEvent("event-01"))
		assert.NoError(t, err)
		second, err := q.Push(ctx, types.OpUpdate, newTestEvent("event-02"))
		assert.NoError(t, err)
		assert.Greater(t, second.Seq, first.Seq)

		ops, err := q.ListPending(ctx)
		assert.NoError(t, err)
		assert.Len(t, ops, 2)
		assert.Equal(t, "event-01", ops[0].Payload.EntityID())
		assert.Equal(t, "event-02", ops[1].Payload.EntityID())
	})

	t.Run("drain removes processed operations in order test", func(t *testing.T) {
		q := newTestQueue(t)

		for i := 0; i < 3; i++ {
			_, err := q.Push(ctx, types.OpCreate, newTestEvent(fmt.Sprintf("event-%d", i)))
			assert.NoError(t, err)
		}

		var processed []string
		result, err := q.Drain(ctx, func(_ context.Context, op *types.QueuedOperation) error {
			processed = append(processed, op.Payload.EntityID())
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, result.Processed)
		assert.Equal(t, []string{"event-0", "event-1", "event-2"}, processed)

		ops, err := q.ListPending(ctx)
		assert.NoError(t, err)
		assert.Len(t, ops, 0)
	})

	t.Run("failed operation stays queued with bumped retry count test", func(t *testing.T) {
		q := newTestQueue(t)

		_, err := q.Push(ctx, types.OpCreate, newTestEvent("event-01"))
		assert.NoError(t, err)

		result, err := q.Drain(ctx, func(_ context.Context, _ *types.QueuedOperation) error {
			return fmt.Errorf("remote unavailable")
		})
		assert.NoError(t, err)
		assert.Equal(t, 0, result.Processed)
		assert.Equal(t, 1, result.Retried)

		ops, err := q.ListPending(ctx)
		assert.NoError(t, err)
		assert.Len(t, ops, 1)
		assert.Equal(t, 1, ops[0].RetryCount)
		assert.NotNil(t, ops[0].LastRetryAt)
	})

	t.Run("backoff doubles per retry test", func(t *testing.T) {
		q := newTestQueue(t)

		assert.Equal(t, testBaseDelay, q.Backoff(0))
		assert.Equal(t, 2*testBaseDelay, q.Backoff(1))
		assert.Equal(t, 4*testBaseDelay, q.Backoff(2))
	})

	t.Run("operation inside backoff window is skipped test", func(t *testing.T) {
		q := newTestQueue(t)

		// After the first failure the delay is backoff(1) = 2x base, so
		// 1.5x base is still inside the window.
		now := time.Now()
		op := &types.QueuedOperation{RetryCount: 1, LastRetryAt: &now}
		assert.False(t, q.RetryEligible(op, now))
		assert.False(t, q.RetryEligible(op, now.Add(3*testBaseDelay/2)))
		assert.False(t, q.RetryEligible(op, now.Add(2*testBaseDelay)))
		assert.True(t, q.RetryEligible(op, now.Add(2*testBaseDelay+time.Millisecond)))

		op.RetryCount = 2
		assert.False(t, q.RetryEligible(op, now.Add(4*testBaseDelay)))
		assert.True(t, q.RetryEligible(op, now.Add(4*testBaseDelay+time.Millisecond)))

		op.RetryCount = testMaxRetries
		assert.False(t, q.RetryEligible(op, now.Add(time.Hour)))
	})

	t.Run("exhausted operation moves to the dead letter table test", func(t *testing.T) {
		db, err := memory.New()
		assert.NoError(t, err)
		q := queue.New(db, testMaxRetries, 0)

		_, err = q.Push(ctx, types.OpCreate, newTestEvent("event-01"))
		assert.NoError(t, err)

		failing := func(_ context.Context, _ *types.QueuedOperation) error {
			return fmt.Errorf("remote unavailable")
		}
		for i := 0; i < testMaxRetries-1; i++ {
			result, err := q.Drain(ctx, failing)
			assert.NoError(t, err)
			assert.Equal(t, 1, result.Retried)
		}

		result, err := q.Drain(ctx, failing)
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Dropped)

		ops, err := q.ListPending(ctx)
		assert.NoError(t, err)
		assert.Len(t, ops, 0)

		dead, err := q.DeadLetters(ctx)
		assert.NoError(t, err)
		assert.Len(t, dead, 1)
		assert.Equal(t, testMaxRetries, dead[0].RetryCount)

		stats, err := q.Stats(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 0, stats.Pending)
		assert.Equal(t, 1, stats.Failed)
	})

	t.Run("stats counts pending operations test", func(t *testing.T) {
		q := newTestQueue(t)

		_, err := q.Push(ctx, types.OpCreate, newTestEvent("event-01"))
		assert.NoError(t, err)
		_, err = q.Push(ctx, types.OpDelete, newTestEvent("event-02"))
		assert.NoError(t, err)

		stats, err := q.Stats(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 2, stats.Pending)
		assert.Equal(t, 0, stats.Failed)
	})
}
