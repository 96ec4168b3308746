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

package agent

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tether-app/tether/agent/backend/remote/mongo"
	"github.com/tether-app/tether/agent/profiling"
)

// Below are the values of the default configuration.
const (
	DefaultLogLevel = "info"

	DefaultProfilingPort = 8081

	DefaultSyncInterval      = "5m"
	DefaultMinSyncInterval   = "30s"
	DefaultMaxRetries        = 3
	DefaultBaseRetryInterval = "1s"
	DefaultConflictTolerance = "1s"

	DefaultMongoConnectionURI     = "mongodb://localhost:27017"
	DefaultMongoConnectionTimeout = "5s"
	DefaultMongoPingTimeout       = "5s"
	DefaultMongoDatabase          = "tether"
)

// Config is the configuration for creating an Agent instance.
type Config struct {
	LogLevel string `yaml:"LogLevel"`

	// SyncInterval is how often the agent runs a background pass.
	SyncInterval string `yaml:"SyncInterval"`

	// MinSyncInterval throttles unforced passes requested faster than
	// this interval.
	MinSyncInterval string `yaml:"MinSyncInterval"`

	// MaxRetries bounds how often a queued mutation is retried before
	// it moves to the dead letter table.
	MaxRetries int `yaml:"MaxRetries"`

	// BaseRetryInterval is the first retry delay; it doubles per
	// attempt.
	BaseRetryInterval string `yaml:"BaseRetryInterval"`

	// ConflictTolerance is the timestamp difference below which
	// concurrent modifications count as the same write.
	ConflictTolerance string `yaml:"ConflictTolerance"`

	Profiling *profiling.Config `yaml:"Profiling"`
	Mongo     *mongo.Config     `yaml:"Mongo"`
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return newConfig()
}

// NewConfigFromFile returns a Config struct read from the given path.
func NewConfigFromFile(path string) (*Config, error) {
	conf := &Config{}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(bytes, conf); err != nil {
		return nil, fmt.Errorf("unmarshal config file %s: %w", path, err)
	}

	conf.ensureDefaultValue()
	return conf, nil
}

// Validate returns an error if the provided Config is invalidated.
func (c *Config) Validate() error {
	if err := c.validateDurations(); err != nil {
		return err
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("invalid max retries %d", c.MaxRetries)
	}

	if err := c.Profiling.Validate(); err != nil {
		return err
	}

	if c.Mongo != nil {
		if err := c.Mongo.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// ParseSyncInterval returns the background pass interval as a duration.
func (c *Config) ParseSyncInterval() time.Duration {
	return mustParseDuration("sync interval", c.SyncInterval)
}

// ParseMinSyncInterval returns the throttle interval as a duration.
func (c *Config) ParseMinSyncInterval() time.Duration {
	return mustParseDuration("min sync interval", c.MinSyncInterval)
}

// ParseBaseRetryInterval returns the first retry delay as a duration.
func (c *Config) ParseBaseRetryInterval() time.Duration {
	return mustParseDuration("base retry interval", c.BaseRetryInterval)
}

// ParseConflictTolerance returns the conflict tolerance as a duration.
func (c *Config) ParseConflictTolerance() time.Duration {
	return mustParseDuration("conflict tolerance", c.ConflictTolerance)
}

// ensureDefaultValue sets the value of the option to which the default
// value should be applied when the user does not input it.
func (c *Config) ensureDefaultValue() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	if c.SyncInterval == "" {
		c.SyncInterval = DefaultSyncInterval
	}

	if c.MinSyncInterval == "" {
		c.MinSyncInterval = DefaultMinSyncInterval
	}

	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}

	if c.BaseRetryInterval == "" {
		c.BaseRetryInterval = DefaultBaseRetryInterval
	}

	if c.ConflictTolerance == "" {
		c.ConflictTolerance = DefaultConflictTolerance
	}

	if c.Profiling == nil {
		c.Profiling = &profiling.Config{}
	}
	if c.Profiling.Port == 0 {
		c.Profiling.Port = DefaultProfilingPort
	}

	if c.Mongo != nil {
		if c.Mongo.ConnectionURI == "" {
			c.Mongo.ConnectionURI = DefaultMongoConnectionURI
		}

		if c.Mongo.ConnectionTimeout == "" {
			c.Mongo.ConnectionTimeout = DefaultMongoConnectionTimeout
		}

		if c.Mongo.PingTimeout == "" {
			c.Mongo.PingTimeout = DefaultMongoPingTimeout
		}

		if c.Mongo.Database == "" {
			c.Mongo.Database = DefaultMongoDatabase
		}
	}
}

func (c *Config) validateDurations() error {
	for name, value := range map[string]string{
		"--sync-interval":       c.SyncInterval,
		"--min-sync-interval":   c.MinSyncInterval,
		"--base-retry-interval": c.BaseRetryInterval,
		"--conflict-tolerance":  c.ConflictTolerance,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf(`invalid argument "%s" for "%s" flag: %w`, value, name, err)
		}
	}

	return nil
}

func newConfig() *Config {
	conf := &Config{}
	conf.ensureDefaultValue()
	return conf
}

func mustParseDuration(name, value string) time.Duration {
	result, err := time.ParseDuration(value)
	if err != nil {
		panic(fmt.Sprintf("parse %s: %s", name, err))
	}
	return result
}
