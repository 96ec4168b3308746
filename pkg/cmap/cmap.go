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

// Package cmap provides a sharded concurrent map.
package cmap

import (
	"fmt"
	"hash/fnv"
	"sync"
)

// numShards is the number of shards the key space is split into to
// reduce lock contention.
const numShards = 32

type shard[K comparable, V any] struct {
	sync.RWMutex
	items map[K]V
}

// Map is a concurrent map that is safe for use from multiple
// goroutines.
type Map[K comparable, V any] struct {
	shards [numShards]shard[K, V]
}

// New creates a new Map.
func New[K comparable, V any]() *Map[K, V] {
	m := &Map[K, V]{}
	for i := 0; i < numShards; i++ {
		m.shards[i].items = make(map[K]V)
	}
	return m
}

func (m *Map[K, V]) shardForKey(key K) *shard[K, V] {
	var idx uint32
	switch k := any(key).(type) {
	case string:
		hash := fnv.New32a()
		if _, err := hash.Write([]byte(k)); err != nil {
			panic(fmt.Sprintf("shard for key: %s", err))
		}
		idx = hash.Sum32()
	case int:
		idx = uint32(k)
	default:
		hash := fnv.New32a()
		if _, err := hash.Write([]byte(fmt.Sprintf("%v", key))); err != nil {
			panic(fmt.Sprintf("shard for key: %s", err))
		}
		idx = hash.Sum32()
	}

	return &m.shards[idx%numShards]
}

// Set stores the value for the given key.
func (m *Map[K, V]) Set(key K, value V) {
	s := m.shardForKey(key)
	s.Lock()
	defer s.Unlock()

	s.items[key] = value
}

// UpsertFunc computes the value to store from the existing value, if
// any.
type UpsertFunc[K comparable, V any] func(value V, exists bool) V

// Upsert atomically stores the value computed by the given function and
// returns it.
func (m *Map[K, V]) Upsert(key K, upsertFunc UpsertFunc[K, V]) V {
	s := m.shardForKey(key)
	s.Lock()
	defer s.Unlock()

	value, ok := s.items[key]
	computed := upsertFunc(value, ok)
	s.items[key] = computed
	return computed
}

// Get returns the value stored for the given key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	s := m.shardForKey(key)
	s.RLock()
	defer s.RUnlock()

	value, ok := s.items[key]
	return value, ok
}

// Has reports whether the map contains the given key.
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes the value stored for the given key. It reports whether
// the key was present.
func (m *Map[K, V]) Delete(key K) bool {
	s := m.shardForKey(key)
	s.Lock()
	defer s.Unlock()

	if _, ok := s.items[key]; !ok {
		return false
	}

	delete(s.items, key)
	return true
}

// Len returns the number of stored values.
func (m *Map[K, V]) Len() int {
	total := 0
	for i := 0; i < numShards; i++ {
		s := &m.shards[i]
		s.RLock()
		total += len(s.items)
		s.RUnlock()
	}
	return total
}

// Keys returns all keys in the map. The order is unspecified.
func (m *Map[K, V]) Keys() []K {
	var keys []K
	for i := 0; i < numShards; i++ {
		s := &m.shards[i]
		s.RLock()
		for key := range s.items {
			keys = append(keys, key)
		}
		s.RUnlock()
	}
	return keys
}

// Values returns all values in the map. The order is unspecified.
func (m *Map[K, V]) Values() []V {
	var values []V
	for i := 0; i < numShards; i++ {
		s := &m.shards[i]
		s.RLock()
		for _, value := range s.items {
			values = append(values, value)
		}
		s.RUnlock()
	}
	return values
}
