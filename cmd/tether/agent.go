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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tether-app/tether/agent"
	"github.com/tether-app/tether/agent/backend/remote/mongo"
	"github.com/tether-app/tether/agent/orchestrator"
)

var (
	gracefulTimeout = 10 * time.Second
)

var (
	flagConfPath string
	flagLogLevel string
	flagUser     string

	syncInterval      time.Duration
	minSyncInterval   time.Duration
	baseRetryInterval time.Duration
	conflictTolerance time.Duration

	mongoConnectionURI     string
	mongoConnectionTimeout time.Duration
	mongoDatabase          string
	mongoPingTimeout       time.Duration

	conf = agent.NewConfig()
)

func newAgentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agent [options]",
		Short: "Start the Tether sync agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf.LogLevel = flagLogLevel
			conf.SyncInterval = syncInterval.String()
			conf.MinSyncInterval = minSyncInterval.String()
			conf.BaseRetryInterval = baseRetryInterval.String()
			conf.ConflictTolerance = conflictTolerance.String()

			if mongoConnectionURI != "" {
				conf.Mongo = &mongo.Config{
					ConnectionURI:     mongoConnectionURI,
					ConnectionTimeout: mongoConnectionTimeout.String(),
					Database:          mongoDatabase,
					PingTimeout:       mongoPingTimeout.String(),
				}
			}

			// If config file is given, command-line arguments will be overwritten.
			if flagConfPath != "" {
				parsed, err := agent.NewConfigFromFile(flagConfPath)
				if err != nil {
					return err
				}
				conf = parsed
			}

			if flagUser == "" {
				return fmt.Errorf("--user is required")
			}

			a, err := agent.New(conf, orchestrator.StaticIdentity(flagUser))
			if err != nil {
				return err
			}

			if err := a.Start(); err != nil {
				return err
			}

			if code := handleSignal(a); code != 0 {
				return fmt.Errorf("exit code: %d", code)
			}

			return nil
		},
	}
}

func handleSignal(a *agent.Agent) int {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	var sig os.Signal
	select {
	case s := <-sigCh:
		sig = s
	case <-a.ShutdownCh():
		// agent is already shutdown
		return 0
	}

	graceful := false
	if sig == syscall.SIGINT || sig == syscall.SIGTERM {
		graceful = true
	}

	gracefulCh := make(chan struct{})
	go func() {
		if err := a.Shutdown(graceful); err != nil {
			return
		}
		close(gracefulCh)
	}()

	select {
	case <-sigCh:
		return 1
	case <-time.After(gracefulTimeout):
		return 1
	case <-gracefulCh:
		return 0
	}
}

func init() {
	cmd := newAgentCmd()
	cmd.Flags().StringVarP(
		&flagConfPath,
		"config",
		"c",
		"",
		"Config path",
	)
	cmd.Flags().StringVarP(
		&flagLogLevel,
		"log-level",
		"l",
		"info",
		"Log level: debug, info, warn, error, panic, fatal",
	)
	cmd.Flags().StringVarP(
		&flagUser,
		"user",
		"u",
		"",
		"User the agent syncs on behalf of",
	)
	cmd.Flags().DurationVar(
		&syncInterval,
		"sync-interval",
		parseDefault(agent.DefaultSyncInterval),
		"Interval of background sync passes",
	)
	cmd.Flags().DurationVar(
		&minSyncInterval,
		"min-sync-interval",
		parseDefault(agent.DefaultMinSyncInterval),
		"Minimum interval between unforced sync passes",
	)
	cmd.Flags().DurationVar(
		&baseRetryInterval,
		"base-retry-interval",
		parseDefault(agent.DefaultBaseRetryInterval),
		"First retry delay of queued mutations; doubles per attempt",
	)
	cmd.Flags().DurationVar(
		&conflictTolerance,
		"conflict-tolerance",
		parseDefault(agent.DefaultConflictTolerance),
		"Timestamp difference below which concurrent writes count as one",
	)
	cmd.Flags().IntVar(
		&conf.MaxRetries,
		"max-retries",
		agent.DefaultMaxRetries,
		"Retries of a queued mutation before it moves to the dead letter table",
	)
	cmd.Flags().IntVar(
		&conf.Profiling.Port,
		"profiling-port",
		agent.DefaultProfilingPort,
		"Profiling port",
	)
	cmd.Flags().BoolVar(
		&conf.Profiling.EnablePprof,
		"pprof-enabled",
		false,
		"Enable runtime profiling data via HTTP server",
	)
	cmd.Flags().StringVar(
		&mongoConnectionURI,
		"mongo-connection-uri",
		"",
		"MongoDB's connection URI",
	)
	cmd.Flags().DurationVar(
		&mongoConnectionTimeout,
		"mongo-connection-timeout",
		parseDefault(agent.DefaultMongoConnectionTimeout),
		"Mongo DB's connection timeout",
	)
	cmd.Flags().StringVar(
		&mongoDatabase,
		"mongo-database",
		agent.DefaultMongoDatabase,
		"Mongo DB's database name",
	)
	cmd.Flags().DurationVar(
		&mongoPingTimeout,
		"mongo-ping-timeout",
		parseDefault(agent.DefaultMongoPingTimeout),
		"Mongo DB's ping timeout",
	)
	rootCmd.AddCommand(cmd)
}

func parseDefault(value string) time.Duration {
	parsed, err := time.ParseDuration(value)
	if err != nil {
		panic(err)
	}
	return parsed
}
