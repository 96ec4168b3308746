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

// Package connectivity mirrors the platform's online/offline signal and
// fans it out to subscribers. The monitor performs no network calls of
// its own.
package connectivity

import (
	"sync"
)

// Handler receives connectivity transitions. Handlers must be safe to
// invoke eagerly: a new subscriber is called immediately with the
// current state.
type Handler func(online bool)

// Monitor tracks the current connectivity state and notifies
// subscribers exactly once per actual transition.
type Monitor struct {
	mu       sync.Mutex
	online   bool
	nextID   int
	handlers map[int]Handler
}

// NewMonitor creates a monitor with the given initial state.
func NewMonitor(online bool) *Monitor {
	return &Monitor{
		online:   online,
		handlers: make(map[int]Handler),
	}
}

// Online returns the current connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.online
}

// Set feeds a new platform connectivity state into the monitor.
// Repeated identical states are de-duplicated; subscribers see at most
// one notification per transition.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}

	m.online = online
	handlers := make([]Handler, 0, len(m.handlers))
	for _, handler := range m.handlers {
		handlers = append(handlers, handler)
	}
	m.mu.Unlock()

	// Handlers run outside the lock so they may call back into the
	// monitor.
	for _, handler := range handlers {
		handler(online)
	}
}

// Subscribe registers the handler and immediately invokes it with the
// current state so no initial state is missed. The returned function
// removes the subscription.
func (m *Monitor) Subscribe(handler Handler) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.handlers[id] = handler
	online := m.online
	m.mu.Unlock()

	handler(online)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		delete(m.handlers, id)
	}
}
