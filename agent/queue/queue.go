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

// Package queue provides the durable offline mutation queue. Mutations
// made while offline are enqueued in insertion order and drained
// against the remote store once connectivity returns, with exponential
// backoff between retries of a failing operation.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/tether-app/tether/agent/backend/localdb"
	"github.com/tether-app/tether/agent/logging"
	"github.com/tether-app/tether/api/types"
)

// Processor applies a single queued operation to the remote store.
type Processor func(ctx context.Context, op *types.QueuedOperation) error

// Stats is a snapshot of the queue state.
type Stats struct {
	Pending int
	Failed  int
}

// DrainResult summarizes one drain pass.
type DrainResult struct {
	Processed int
	Retried   int
	Dropped   int
}

// Queue is the durable offline mutation queue.
type Queue struct {
	db         localdb.Database
	maxRetries int
	baseDelay  time.Duration
}

// New creates an instance of Queue on top of the given local database.
func New(db localdb.Database, maxRetries int, baseDelay time.Duration) *Queue {
	return &Queue{
		db:         db,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// Push appends a mutation to the queue and returns it with its assigned
// sequence number.
func (q *Queue) Push(
	ctx context.Context,
	opType types.OperationType,
	entity types.Entity,
) (*types.QueuedOperation, error) {
	op := &types.QueuedOperation{
		Op:         opType,
		Collection: entity.Collection(),
		Payload:    entity.DeepCopy(),
		UserID:     entity.Owner(),
		CreatedAt:  time.Now(),
	}
	if err := types.ValidateOperation(op); err != nil {
		return nil, err
	}

	pushed, err := q.db.PushOperation(ctx, op)
	if err != nil {
		return nil, fmt.Errorf("push operation: %w", err)
	}

	return pushed, nil
}

// ListPending returns all queued operations in insertion order.
func (q *Queue) ListPending(ctx context.Context) ([]*types.QueuedOperation, error) {
	return q.db.ListOperations(ctx)
}

// Backoff returns the delay to wait before the given retry attempt.
// The delay doubles with each attempt.
func (q *Queue) Backoff(retryCount int) time.Duration {
	return q.baseDelay << uint(retryCount)
}

// RetryEligible returns whether the operation may be attempted at the
// given time. A fresh operation is always eligible; a retried one must
// wait out more than the backoff delay of its retry count, and one
// that exhausted its retries is never eligible.
func (q *Queue) RetryEligible(op *types.QueuedOperation, now time.Time) bool {
	if op.RetryCount >= q.maxRetries {
		return false
	}
	if op.RetryCount == 0 || op.LastRetryAt == nil {
		return true
	}

	return now.Sub(*op.LastRetryAt) > q.Backoff(op.RetryCount)
}

// Drain processes queued operations in order with the given processor.
// A successful operation is removed from the queue. A failed operation
// has its retry count bumped and stays queued, unless it has exhausted
// its retries, in which case it moves to the dead letter table.
// Operations still waiting out their backoff are skipped.
func (q *Queue) Drain(ctx context.Context, proc Processor) (*DrainResult, error) {
	ops, err := q.db.ListOperations(ctx)
	if err != nil {
		return nil, fmt.Errorf("drain queue: %w", err)
	}

	result := &DrainResult{}
	for _, op := range ops {
		now := time.Now()
		if !q.RetryEligible(op, now) {
			continue
		}

		if err := proc(ctx, op); err != nil {
			logging.From(ctx).Warnf(
				"operation %d on %s/%s failed (attempt %d): %v",
				op.Seq, op.Collection, op.Payload.EntityID(), op.RetryCount+1, err,
			)

			op.RetryCount++
			op.LastRetryAt = &now
			if op.RetryCount >= q.maxRetries {
				if err := q.db.PushDeadLetter(ctx, op); err != nil {
					return nil, fmt.Errorf("drain queue: %w", err)
				}
				if err := q.db.RemoveOperation(ctx, op.Seq); err != nil {
					return nil, fmt.Errorf("drain queue: %w", err)
				}
				result.Dropped++
				continue
			}

			if err := q.db.UpdateOperation(ctx, op); err != nil {
				return nil, fmt.Errorf("drain queue: %w", err)
			}
			result.Retried++
			continue
		}

		if err := q.db.RemoveOperation(ctx, op.Seq); err != nil {
			return nil, fmt.Errorf("drain queue: %w", err)
		}
		result.Processed++
	}

	return result, nil
}

// Stats returns a snapshot of the queue state.
func (q *Queue) Stats(ctx context.Context) (*Stats, error) {
	ops, err := q.db.ListOperations(ctx)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}

	dead, err := q.db.ListDeadLetters(ctx)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}

	return &Stats{
		Pending: len(ops),
		Failed:  len(dead),
	}, nil
}

// DeadLetters returns all operations that permanently failed.
func (q *Queue) DeadLetters(ctx context.Context) ([]*types.QueuedOperation, error) {
	return q.db.ListDeadLetters(ctx)
}
