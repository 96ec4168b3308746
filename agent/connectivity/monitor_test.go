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

package connectivity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tether-app/tether/agent/connectivity"
)

func TestMonitor(t *testing.T) {
	t.Run("subscriber is invoked immediately with the current state test", func(t *testing.T) {
		monitor := connectivity.NewMonitor(true)

		var states []bool
		monitor.Subscribe(func(online bool) {
			states = append(states, online)
		})

		assert.Equal(t, []bool{true}, states)
	})

	t.Run("repeated identical states are de-duplicated test", func(t *testing.T) {
		monitor := connectivity.NewMonitor(false)

		var states []bool
		monitor.Subscribe(func(online bool) {
			states = append(states, online)
		})

		monitor.Set(false)
		monitor.Set(true)
		monitor.Set(true)
		monitor.Set(false)

		assert.Equal(t, []bool{false, true, false}, states)
		assert.False(t, monitor.Online())
	})

	t.Run("unsubscribed handler stops receiving transitions test", func(t *testing.T) {
		monitor := connectivity.NewMonitor(false)

		calls := 0
		unsubscribe := monitor.Subscribe(func(bool) {
			calls++
		})

		monitor.Set(true)
		unsubscribe()
		monitor.Set(false)

		assert.Equal(t, 2, calls)
	})
}
