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

// TaskStatus is the workflow state of a task. The states form a strict
// precedence order; workflow progress never regresses during a merge.
type TaskStatus string

const (
	// TaskPending is the initial state of a task.
	TaskPending TaskStatus = "pending"

	// TaskSubmitted marks a task handed in for review.
	TaskSubmitted TaskStatus = "submitted"

	// TaskRejected marks a task sent back by the reviewer.
	TaskRejected TaskStatus = "rejected"

	// TaskApproved marks a task accepted by the reviewer.
	TaskApproved TaskStatus = "approved"

	// TaskCompleted marks a task whose reward has been applied.
	TaskCompleted TaskStatus = "completed"

	// TaskCancelled marks a task withdrawn from the workflow.
	TaskCancelled TaskStatus = "cancelled"
)

var taskStatusRank = map[TaskStatus]int{
	TaskPending:   0,
	TaskSubmitted: 1,
	TaskRejected:  2,
	TaskApproved:  3,
	TaskCompleted: 4,
	TaskCancelled: 5,
}

// Rank returns the precedence of the status. Unknown statuses rank
// below every known one.
func (s TaskStatus) Rank() int {
	rank, ok := taskStatusRank[s]
	if !ok {
		return -1
	}
	return rank
}

// Precedes reports whether other outranks this status.
func (s TaskStatus) Precedes(other TaskStatus) bool {
	return s.Rank() < other.Rank()
}

// Task is a workflow task assigned to the user.
type Task struct {
	Base `bson:",inline"`

	Title       string     `bson:"title" json:"title" validate:"required"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	TaskStatus  TaskStatus `bson:"task_status" json:"taskStatus"`
	Points      int        `bson:"points" json:"points"`
}

// Collection returns the collection of the task.
func (t *Task) Collection() Collection {
	return ColTasks
}

// DeepCopy returns a deep copy of the task.
func (t *Task) DeepCopy() Entity {
	copied := *t
	return &copied
}
