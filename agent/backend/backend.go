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

// Package backend bundles the storage collaborators of the agent: the
// local database holding the device copy and the remote store all
// devices converge on.
package backend

import (
	"context"

	"github.com/tether-app/tether/agent/backend/localdb"
	localmemory "github.com/tether-app/tether/agent/backend/localdb/memory"
	"github.com/tether-app/tether/agent/backend/remote"
	remotememory "github.com/tether-app/tether/agent/backend/remote/memory"
	"github.com/tether-app/tether/agent/backend/remote/mongo"
	"github.com/tether-app/tether/agent/logging"
	"github.com/tether-app/tether/agent/profiling/prometheus"
)

// Backend bundles the storage and observability collaborators of the
// sync agent.
type Backend struct {
	Local   localdb.Database
	Remote  remote.Store
	Metrics *prometheus.Metrics
}

// New creates an instance of Backend. If the given MongoDB config is
// nil, the remote store runs in memory, which serves tests and offline
// development.
func New(mongoConf *mongo.Config, metrics *prometheus.Metrics) (*Backend, error) {
	local, err := localmemory.New()
	if err != nil {
		return nil, err
	}

	var remoteStore remote.Store
	if mongoConf != nil {
		remoteStore, err = mongo.Dial(mongoConf)
		if err != nil {
			return nil, err
		}
	} else {
		remoteStore, err = remotememory.New()
		if err != nil {
			return nil, err
		}
		logging.DefaultLogger().Warn("remote store running in memory")
	}

	return &Backend{
		Local:   local,
		Remote:  remoteStore,
		Metrics: metrics,
	}, nil
}

// Shutdown closes all resources of this backend.
func (b *Backend) Shutdown(ctx context.Context) error {
	if err := b.Remote.Close(ctx); err != nil {
		return err
	}

	return b.Local.Close()
}
