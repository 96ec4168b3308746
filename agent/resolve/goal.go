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

package resolve

import (
	"context"

	"github.com/tether-app/tether/api/types"
)

// GoalResolver merges conflicting goals. Progress only moves forward,
// so the version with the greater progress wins; equal progress falls
// back to the timestamp winner.
type GoalResolver struct{}

// NewGoalResolver creates an instance of GoalResolver.
func NewGoalResolver() *GoalResolver {
	return &GoalResolver{}
}

// Collection returns the collection this resolver handles.
func (r *GoalResolver) Collection() types.Collection {
	return types.ColGoals
}

// Resolve returns the merged goal.
func (r *GoalResolver) Resolve(
	_ context.Context,
	local, remote types.Entity,
) (types.Entity, error) {
	localGoal, ok := local.(*types.Goal)
	if !ok {
		return nil, ErrEntityMismatch
	}
	remoteGoal, ok := remote.(*types.Goal)
	if !ok {
		return nil, ErrEntityMismatch
	}

	switch {
	case localGoal.Progress > remoteGoal.Progress:
		return localGoal.DeepCopy(), nil
	case remoteGoal.Progress > localGoal.Progress:
		return remoteGoal.DeepCopy(), nil
	}

	return latest(local, remote).DeepCopy(), nil
}
