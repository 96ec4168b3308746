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

// Collection identifies one synchronized entity kind. The set of known
// collections is sealed: each constant carries its own entity factory
// and conflict resolver, and anything else is routed through an
// explicit fallback path instead of a stringly-typed switch at every
// call site.
type Collection string

const (
	// ColSettings is the collection of per-user settings documents.
	ColSettings Collection = "settings"

	// ColSessions is the collection of lock sessions.
	ColSessions Collection = "sessions"

	// ColEvents is the collection of immutable history events.
	ColEvents Collection = "events"

	// ColTasks is the collection of workflow tasks.
	ColTasks Collection = "tasks"

	// ColGoals is the collection of progress goals.
	ColGoals Collection = "goals"
)

// Collections returns all known collections in the default sync order.
// The orchestrator processes collections in this order unless the
// caller narrows the set via SyncOptions.
func Collections() []Collection {
	return []Collection{ColSettings, ColSessions, ColEvents, ColTasks, ColGoals}
}

// IsKnown reports whether the collection is one of the sealed set.
func (c Collection) IsKnown() bool {
	switch c {
	case ColSettings, ColSessions, ColEvents, ColTasks, ColGoals:
		return true
	default:
		return false
	}
}

// NewEntity returns a zero value of the entity kind stored in this
// collection. It returns nil for unknown collections; callers decide
// whether that is an error or a fallback case.
func (c Collection) NewEntity() Entity {
	switch c {
	case ColSettings:
		return &Settings{}
	case ColSessions:
		return &Session{}
	case ColEvents:
		return &Event{}
	case ColTasks:
		return &Task{}
	case ColGoals:
		return &Goal{}
	default:
		return nil
	}
}

// String returns the string representation of the collection.
func (c Collection) String() string {
	return string(c)
}
