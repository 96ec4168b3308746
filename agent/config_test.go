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

package agent_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tether-app/tether/agent"
	"github.com/tether-app/tether/agent/backend/remote/mongo"
)

func TestConfig(t *testing.T) {
	t.Run("default config validates test", func(t *testing.T) {
		conf := agent.NewConfig()
		assert.NoError(t, conf.Validate())
		assert.Equal(t, 5*time.Minute, conf.ParseSyncInterval())
		assert.Equal(t, 30*time.Second, conf.ParseMinSyncInterval())
		assert.Equal(t, time.Second, conf.ParseBaseRetryInterval())
		assert.Equal(t, time.Second, conf.ParseConflictTolerance())
		assert.Nil(t, conf.Mongo)
	})

	t.Run("invalid duration fails validation test", func(t *testing.T) {
		conf := agent.NewConfig()
		conf.SyncInterval = "soon"
		assert.Error(t, conf.Validate())
	})

	t.Run("invalid profiling port fails validation test", func(t *testing.T) {
		conf := agent.NewConfig()
		conf.Profiling.Port = -1
		assert.Error(t, conf.Validate())
	})

	t.Run("mongo config is validated when present test", func(t *testing.T) {
		conf := agent.NewConfig()
		conf.Mongo = &mongo.Config{
			ConnectionURI:     "mongodb://localhost:27017",
			ConnectionTimeout: "never",
			Database:          "tether",
			PingTimeout:       "5s",
		}
		assert.Error(t, conf.Validate())
	})
}
