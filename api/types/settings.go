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

// Field is one leaf value inside a settings sub-object. The leaf keeps
// its own modification time so two devices editing disjoint keys of
// the same sub-object both survive a merge.
type Field struct {
	Value     interface{} `bson:"value" json:"value"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updatedAt"`
}

// FieldMap is a structured settings sub-object keyed by field name.
type FieldMap map[string]Field

// DeepCopy returns a copy of the map. Leaf values are copied by
// assignment; they are expected to be scalars.
func (m FieldMap) DeepCopy() FieldMap {
	if m == nil {
		return nil
	}

	copied := make(FieldMap, len(m))
	for key, field := range m {
		copied[key] = field
	}
	return copied
}

// Settings is the per-user settings document. The structured
// sub-objects are merged key-by-key on conflict; the scalar fields are
// merged whole-value by timestamp.
type Settings struct {
	Base `bson:",inline"`

	Theme    string `bson:"theme,omitempty" json:"theme,omitempty"`
	Timezone string `bson:"timezone,omitempty" json:"timezone,omitempty"`
	Language string `bson:"language,omitempty" json:"language,omitempty"`

	Notifications FieldMap `bson:"notifications,omitempty" json:"notifications,omitempty"`
	Privacy       FieldMap `bson:"privacy,omitempty" json:"privacy,omitempty"`
	Rules         FieldMap `bson:"rules,omitempty" json:"rules,omitempty"`
	Display       FieldMap `bson:"display,omitempty" json:"display,omitempty"`
	Achievements  FieldMap `bson:"achievements,omitempty" json:"achievements,omitempty"`
}

// Collection returns the collection of the settings document.
func (s *Settings) Collection() Collection {
	return ColSettings
}

// DeepCopy returns a deep copy of the settings document.
func (s *Settings) DeepCopy() Entity {
	copied := *s
	copied.Notifications = s.Notifications.DeepCopy()
	copied.Privacy = s.Privacy.DeepCopy()
	copied.Rules = s.Rules.DeepCopy()
	copied.Display = s.Display.DeepCopy()
	copied.Achievements = s.Achievements.DeepCopy()
	return &copied
}
