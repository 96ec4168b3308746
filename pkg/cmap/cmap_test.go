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

package cmap_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tether-app/tether/pkg/cmap"
)

func TestMap(t *testing.T) {
	t.Run("set get delete test", func(t *testing.T) {
		m := cmap.New[string, int]()

		m.Set("a", 1)
		m.Set("b", 2)

		value, ok := m.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 1, value)
		assert.True(t, m.Has("b"))
		assert.Equal(t, 2, m.Len())

		assert.True(t, m.Delete("a"))
		assert.False(t, m.Delete("a"))
		assert.False(t, m.Has("a"))
		assert.Equal(t, 1, m.Len())
	})

	t.Run("upsert keeps the existing value test", func(t *testing.T) {
		m := cmap.New[string, int]()

		first := m.Upsert("key", func(value int, exists bool) int {
			assert.False(t, exists)
			return 1
		})
		assert.Equal(t, 1, first)

		second := m.Upsert("key", func(value int, exists bool) int {
			assert.True(t, exists)
			return value
		})
		assert.Equal(t, 1, second)
	})

	t.Run("concurrent access test", func(t *testing.T) {
		m := cmap.New[string, int]()

		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				m.Set(fmt.Sprintf("key-%d", i), i)
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 100, m.Len())
		assert.Len(t, m.Keys(), 100)
		assert.Len(t, m.Values(), 100)
	})
}
