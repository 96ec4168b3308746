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

// SettingsResolver merges conflicting settings documents. Scalar
// fields follow the document timestamp winner; keyed sub-settings
// merge field by field on their own update times, so edits to disjoint
// keys on two devices both survive.
type SettingsResolver struct{}

// NewSettingsResolver creates an instance of SettingsResolver.
func NewSettingsResolver() *SettingsResolver {
	return &SettingsResolver{}
}

// Collection returns the collection this resolver handles.
func (r *SettingsResolver) Collection() types.Collection {
	return types.ColSettings
}

// Resolve returns the merged settings document.
func (r *SettingsResolver) Resolve(
	_ context.Context,
	local, remote types.Entity,
) (types.Entity, error) {
	localSettings, ok := local.(*types.Settings)
	if !ok {
		return nil, ErrEntityMismatch
	}
	remoteSettings, ok := remote.(*types.Settings)
	if !ok {
		return nil, ErrEntityMismatch
	}

	winner, loser := localSettings, remoteSettings
	if latest(local, remote) == remote {
		winner, loser = remoteSettings, localSettings
	}

	merged := winner.DeepCopy().(*types.Settings)
	merged.Notifications = mergeFields(winner.Notifications, loser.Notifications)
	merged.Privacy = mergeFields(winner.Privacy, loser.Privacy)
	merged.Rules = mergeFields(winner.Rules, loser.Rules)
	merged.Display = mergeFields(winner.Display, loser.Display)
	merged.Achievements = mergeFields(winner.Achievements, loser.Achievements)

	return merged, nil
}

// mergeFields merges two field maps key by key, keeping the field with
// the later update time. Keys present on only one side survive.
func mergeFields(winner, loser types.FieldMap) types.FieldMap {
	if winner == nil && loser == nil {
		return nil
	}

	merged := winner.DeepCopy()
	if merged == nil {
		merged = types.FieldMap{}
	}
	for key, field := range loser {
		current, ok := merged[key]
		if !ok || field.UpdatedAt.After(current.UpdatedAt) {
			merged[key] = field
		}
	}

	return merged
}
