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

// Goal is a progress goal. Progress is monotonic: a merge keeps the
// copy that got further.
type Goal struct {
	Base `bson:",inline"`

	Title       string     `bson:"title" json:"title" validate:"required"`
	Progress    float64    `bson:"progress" json:"progress"`
	Target      float64    `bson:"target" json:"target"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
}

// Collection returns the collection of the goal.
func (g *Goal) Collection() Collection {
	return ColGoals
}

// DeepCopy returns a deep copy of the goal.
func (g *Goal) DeepCopy() Entity {
	copied := *g
	if g.CompletedAt != nil {
		completedAt := *g.CompletedAt
		copied.CompletedAt = &completedAt
	}
	return &copied
}
