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

// EventResolver merges conflicting events. Events are immutable facts,
// so the version modified last wins whole.
type EventResolver struct{}

// NewEventResolver creates an instance of EventResolver.
func NewEventResolver() *EventResolver {
	return &EventResolver{}
}

// Collection returns the collection this resolver handles.
func (r *EventResolver) Collection() types.Collection {
	return types.ColEvents
}

// Resolve returns the merged event.
func (r *EventResolver) Resolve(
	_ context.Context,
	local, remote types.Entity,
) (types.Entity, error) {
	if _, ok := local.(*types.Event); !ok {
		return nil, ErrEntityMismatch
	}
	if _, ok := remote.(*types.Event); !ok {
		return nil, ErrEntityMismatch
	}

	return latest(local, remote).DeepCopy(), nil
}
