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

// TaskResolver merges conflicting tasks. The task status furthest
// along the workflow wins regardless of timestamps, so an approval
// recorded on one device is never rolled back by a stale submission
// from another. All other fields follow the remote version.
type TaskResolver struct{}

// NewTaskResolver creates an instance of TaskResolver.
func NewTaskResolver() *TaskResolver {
	return &TaskResolver{}
}

// Collection returns the collection this resolver handles.
func (r *TaskResolver) Collection() types.Collection {
	return types.ColTasks
}

// Resolve returns the merged task.
func (r *TaskResolver) Resolve(
	_ context.Context,
	local, remote types.Entity,
) (types.Entity, error) {
	localTask, ok := local.(*types.Task)
	if !ok {
		return nil, ErrEntityMismatch
	}
	remoteTask, ok := remote.(*types.Task)
	if !ok {
		return nil, ErrEntityMismatch
	}

	merged := remoteTask.DeepCopy().(*types.Task)
	if localTask.TaskStatus.Rank() > remoteTask.TaskStatus.Rank() {
		merged.TaskStatus = localTask.TaskStatus
	}

	return merged, nil
}
