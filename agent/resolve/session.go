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

// SessionResolver merges conflicting sessions. An active session beats
// a completed one so an in-progress session is never closed by a stale
// device. Notes from both versions are kept, and an emergency unlock
// recorded on either side survives the merge.
type SessionResolver struct{}

// NewSessionResolver creates an instance of SessionResolver.
func NewSessionResolver() *SessionResolver {
	return &SessionResolver{}
}

// Collection returns the collection this resolver handles.
func (r *SessionResolver) Collection() types.Collection {
	return types.ColSessions
}

// Resolve returns the merged session.
func (r *SessionResolver) Resolve(
	_ context.Context,
	local, remote types.Entity,
) (types.Entity, error) {
	localSession, ok := local.(*types.Session)
	if !ok {
		return nil, ErrEntityMismatch
	}
	remoteSession, ok := remote.(*types.Session)
	if !ok {
		return nil, ErrEntityMismatch
	}

	winner, loser := localSession, remoteSession
	switch {
	case localSession.Active() && !remoteSession.Active():
	case remoteSession.Active() && !localSession.Active():
		winner, loser = remoteSession, localSession
	case latest(local, remote) == remote:
		winner, loser = remoteSession, localSession
	}

	merged := winner.DeepCopy().(*types.Session)
	merged.Notes = mergeNotes(winner.Notes, loser.Notes)
	merged.EmergencyUnlock = localSession.EmergencyUnlock || remoteSession.EmergencyUnlock

	return merged, nil
}

// mergeNotes concatenates the notes of both versions, skipping
// duplicates and empty sides.
func mergeNotes(winner, loser string) string {
	if loser == "" || loser == winner {
		return winner
	}
	if winner == "" {
		return loser
	}

	return winner + "\n" + loser
}
