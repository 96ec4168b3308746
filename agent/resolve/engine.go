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

// Package resolve provides conflict detection and the per-collection
// resolution policies. A conflict exists when a locally pending
// document and its remote counterpart were modified independently;
// each collection brings its own merge policy, and unknown collections
// fall back to remote-wins.
package resolve

import (
	"context"
	"time"

	"github.com/tether-app/tether/agent/logging"
	"github.com/tether-app/tether/api/types"
	"github.com/tether-app/tether/pkg/errors"
)

// DefaultTolerance is the timestamp difference below which concurrent
// modifications are treated as the same write. Device clocks drift;
// sub-second differences are noise, not intent.
const DefaultTolerance = 1000 * time.Millisecond

// ErrEntityMismatch is returned when a resolver receives entities of a
// collection it does not handle.
var ErrEntityMismatch = errors.InvalidArgument("entities do not match the resolver collection").
	WithCode("ErrEntityMismatch")

// HasConflict reports whether the local and remote versions of a
// document conflict. Only locally pending documents can conflict, and
// only when the modification times diverge beyond the tolerance.
func HasConflict(local, remote types.Entity, tolerance time.Duration) bool {
	if local.Status() != types.StatusPending {
		return false
	}

	diff := local.ModifiedAt().Sub(remote.ModifiedAt())
	if diff < 0 {
		diff = -diff
	}

	return diff > tolerance
}

// Resolver merges a conflicting pair of documents into one.
type Resolver interface {
	// Collection returns the collection this resolver handles.
	Collection() types.Collection

	// Resolve returns the merged document. It must not mutate its
	// inputs.
	Resolve(ctx context.Context, local, remote types.Entity) (types.Entity, error)
}

// Engine routes conflicts to the resolver registered for their
// collection.
type Engine struct {
	resolvers map[types.Collection]Resolver
}

// NewEngine creates an Engine with the default policy per collection.
func NewEngine() *Engine {
	engine := &Engine{
		resolvers: make(map[types.Collection]Resolver),
	}

	for _, resolver := range []Resolver{
		NewSessionResolver(),
		NewTaskResolver(),
		NewSettingsResolver(),
		NewEventResolver(),
		NewGoalResolver(),
	} {
		engine.Register(resolver)
	}

	return engine
}

// Register installs the resolver for its collection, replacing any
// previous one.
func (e *Engine) Register(resolver Resolver) {
	e.resolvers[resolver.Collection()] = resolver
}

// Resolve merges the conflicting pair with the policy of its
// collection. A collection without a registered policy resolves to the
// remote version.
func (e *Engine) Resolve(
	ctx context.Context,
	local, remote types.Entity,
) (types.Entity, error) {
	resolver, ok := e.resolvers[local.Collection()]
	if !ok {
		logging.From(ctx).Warnf(
			"no resolver for %s, keeping remote version of %s",
			local.Collection(), local.EntityID(),
		)
		return remote.DeepCopy(), nil
	}

	return resolver.Resolve(ctx, local, remote)
}

// latest returns the entity with the later modification time, remote
// winning ties.
func latest(local, remote types.Entity) types.Entity {
	if local.ModifiedAt().After(remote.ModifiedAt()) {
		return local
	}
	return remote
}
