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

// Session is a lock session. A session without an end time is still
// running on some device.
type Session struct {
	Base `bson:",inline"`

	StartTime time.Time  `bson:"start_time" json:"startTime"`
	EndTime   *time.Time `bson:"end_time,omitempty" json:"endTime,omitempty"`
	Notes     string     `bson:"notes,omitempty" json:"notes,omitempty"`

	// EmergencyUnlock records that the session was ended through the
	// emergency release. Once set on any device it must survive every
	// merge.
	EmergencyUnlock bool `bson:"emergency_unlock" json:"emergencyUnlock"`

	// Device is the identifier of the device that created the session.
	Device string `bson:"device,omitempty" json:"device,omitempty"`
}

// Collection returns the collection of the session.
func (s *Session) Collection() Collection {
	return ColSessions
}

// Active reports whether the session is still running.
func (s *Session) Active() bool {
	return s.EndTime == nil
}

// DeepCopy returns a deep copy of the session.
func (s *Session) DeepCopy() Entity {
	copied := *s
	if s.EndTime != nil {
		endTime := *s.EndTime
		copied.EndTime = &endTime
	}
	return &copied
}
