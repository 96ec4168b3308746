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

// Event is an immutable history entry. Events are never edited after
// the fact, so conflicting copies only differ by echo writes.
type Event struct {
	Base `bson:",inline"`

	Kind       string    `bson:"kind" json:"kind" validate:"required"`
	Detail     string    `bson:"detail,omitempty" json:"detail,omitempty"`
	OccurredAt time.Time `bson:"occurred_at" json:"occurredAt"`
}

// Collection returns the collection of the event.
func (e *Event) Collection() Collection {
	return ColEvents
}

// DeepCopy returns a deep copy of the event.
func (e *Event) DeepCopy() Entity {
	copied := *e
	return &copied
}
