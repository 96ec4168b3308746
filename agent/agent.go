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

// Package agent provides the sync agent: the composition root wiring
// the connectivity monitor, offline mutation queue, per-collection
// syncer and orchestrator on top of the storage backend.
package agent

import (
	"context"
	goerrors "errors"
	"sync"
	"time"

	"github.com/tether-app/tether/agent/backend"
	"github.com/tether-app/tether/agent/connectivity"
	"github.com/tether-app/tether/agent/logging"
	"github.com/tether-app/tether/agent/orchestrator"
	"github.com/tether-app/tether/agent/profiling"
	"github.com/tether-app/tether/agent/profiling/prometheus"
	"github.com/tether-app/tether/agent/queue"
	"github.com/tether-app/tether/agent/resolve"
	"github.com/tether-app/tether/agent/syncer"
	"github.com/tether-app/tether/api/types"
)

// Agent is the sync agent of Tether. It keeps the local copy of the
// user's data converging with the remote store while tolerating
// arbitrary offline periods.
type Agent struct {
	conf *Config

	backend         *backend.Backend
	monitor         *connectivity.Monitor
	orchestrator    *orchestrator.Orchestrator
	profilingServer *profiling.Server

	started    bool
	shutdown   bool
	shutdownMu sync.Mutex
	shutdownCh chan struct{}

	loopDone chan struct{}
}

// New creates a new instance of Agent for the given user.
func New(conf *Config, identity orchestrator.Identity) (*Agent, error) {
	conf.ensureDefaultValue()
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	if err := logging.SetLogLevel(conf.LogLevel); err != nil {
		return nil, err
	}

	metrics, err := prometheus.NewMetrics()
	if err != nil {
		return nil, err
	}

	be, err := backend.New(conf.Mongo, metrics)
	if err != nil {
		return nil, err
	}

	monitor := connectivity.NewMonitor(true)
	q := queue.New(be.Local, conf.MaxRetries, conf.ParseBaseRetryInterval())
	s := syncer.New(
		be.Local,
		be.Remote,
		resolve.NewEngine(),
		syncer.WithTolerance(conf.ParseConflictTolerance()),
	)

	return &Agent{
		conf:    conf,
		backend: be,
		monitor: monitor,
		orchestrator: orchestrator.New(
			be, monitor, q, s, identity,
			orchestrator.WithMinInterval(conf.ParseMinSyncInterval()),
		),
		profilingServer: profiling.NewServer(conf.Profiling, metrics),
		shutdownCh:      make(chan struct{}),
		loopDone:        make(chan struct{}),
	}, nil
}

// Start starts the agent: the profiling server and the background sync
// loop.
func (a *Agent) Start() error {
	if err := a.profilingServer.Start(); err != nil {
		return err
	}

	a.shutdownMu.Lock()
	a.started = true
	a.shutdownMu.Unlock()
	go a.syncLoop()

	logging.DefaultLogger().Infof(
		"agent started: sync every %s", a.conf.SyncInterval,
	)
	return nil
}

// Shutdown shuts down the agent.
func (a *Agent) Shutdown(graceful bool) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	started := a.started
	a.shutdownMu.Unlock()

	close(a.shutdownCh)
	if started {
		<-a.loopDone
	}

	a.orchestrator.Close()
	a.profilingServer.Shutdown(graceful)

	return a.backend.Shutdown(context.Background())
}

// ShutdownCh returns the shutdown channel.
func (a *Agent) ShutdownCh() <-chan struct{} {
	return a.shutdownCh
}

// Orchestrator returns the sync orchestrator of the agent.
func (a *Agent) Orchestrator() *orchestrator.Orchestrator {
	return a.orchestrator
}

// Monitor returns the connectivity monitor of the agent.
func (a *Agent) Monitor() *connectivity.Monitor {
	return a.monitor
}

// syncLoop runs unforced passes on the configured interval until
// shutdown. Throttled or offline passes are expected and only logged.
func (a *Agent) syncLoop() {
	defer close(a.loopDone)

	ticker := time.NewTicker(a.conf.ParseSyncInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx := context.Background()
			if _, err := a.orchestrator.Sync(ctx, types.SyncOptions{}); err != nil {
				if goerrors.Is(err, orchestrator.ErrOffline) ||
					goerrors.Is(err, orchestrator.ErrSyncThrottled) ||
					goerrors.Is(err, orchestrator.ErrAlreadySyncing) {
					logging.DefaultLogger().Debugf("background sync skipped: %v", err)
					continue
				}
				logging.DefaultLogger().Warnf("background sync: %v", err)
			}
		case <-a.shutdownCh:
			return
		}
	}
}
