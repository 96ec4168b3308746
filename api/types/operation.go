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

package types

import "time"

// OperationType is the kind of a queued mutation.
type OperationType string

const (
	// OpCreate creates the payload document at the remote store.
	OpCreate OperationType = "create"

	// OpUpdate replaces the payload document at the remote store.
	OpUpdate OperationType = "update"

	// OpDelete removes the payload document from the remote store.
	OpDelete OperationType = "delete"
)

// QueuedOperation is one entry of the durable mutation queue. It is
// created when a mutation happens while the device is offline and
// removed once the mutation has been replayed against the remote store
// or has permanently failed.
type QueuedOperation struct {
	// Seq is the queue-local monotonic sequence number, assigned by the
	// queue on push.
	Seq uint64 `bson:"seq" json:"seq"`

	Op         OperationType `bson:"op" json:"op" validate:"required"`
	Collection Collection    `bson:"collection" json:"collection" validate:"required"`
	Payload    Entity        `bson:"payload" json:"payload" validate:"required"`
	UserID     string        `bson:"user_id" json:"userId" validate:"required"`

	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	RetryCount  int        `bson:"retry_count" json:"retryCount"`
	LastRetryAt *time.Time `bson:"last_retry_at,omitempty" json:"lastRetryAt,omitempty"`
}

// DeepCopy returns a deep copy of the operation.
func (o *QueuedOperation) DeepCopy() *QueuedOperation {
	copied := *o
	if o.Payload != nil {
		copied.Payload = o.Payload.DeepCopy()
	}
	if o.LastRetryAt != nil {
		lastRetryAt := *o.LastRetryAt
		copied.LastRetryAt = &lastRetryAt
	}
	return &copied
}
