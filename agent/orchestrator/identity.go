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

package orchestrator

// Identity reports the user the agent syncs on behalf of. An empty
// user ID means nobody is signed in.
type Identity interface {
	UserID() string
}

// StaticIdentity is an Identity pinned to one user.
type StaticIdentity string

// UserID returns the pinned user ID.
func (i StaticIdentity) UserID() string {
	return string(i)
}
