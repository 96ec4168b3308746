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
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tether-app/tether/agent"
	"github.com/tether-app/tether/agent/backend/remote/mongo"
	"github.com/tether-app/tether/agent/orchestrator"
	"github.com/tether-app/tether/api/types"
)

var (
	syncConfPath    string
	syncUser        string
	syncCollections []string
	syncManual      bool

	syncMongoURI      string
	syncMongoDatabase string
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync [options]",
		Short: "Run one forced sync pass and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := agent.NewConfig()
			if syncConfPath != "" {
				parsed, err := agent.NewConfigFromFile(syncConfPath)
				if err != nil {
					return err
				}
				conf = parsed
			}

			if syncMongoURI != "" {
				conf.Mongo = &mongo.Config{
					ConnectionURI:     syncMongoURI,
					ConnectionTimeout: agent.DefaultMongoConnectionTimeout,
					Database:          syncMongoDatabase,
					PingTimeout:       agent.DefaultMongoPingTimeout,
				}
			}

			if syncUser == "" {
				return fmt.Errorf("--user is required")
			}

			a, err := agent.New(conf, orchestrator.StaticIdentity(syncUser))
			if err != nil {
				return err
			}
			defer func() {
				_ = a.Shutdown(true)
			}()

			opts := types.SyncOptions{Force: true}
			for _, name := range syncCollections {
				collection := types.Collection(name)
				if !collection.IsKnown() {
					return fmt.Errorf("unknown collection %q", name)
				}
				opts.Collections = append(opts.Collections, collection)
			}
			if syncManual {
				opts.ConflictResolution = types.ResolutionManual
			}

			result, err := a.Orchestrator().Sync(context.Background(), opts)
			if result != nil {
				printResult(result)
			}
			return err
		},
	}
}

func printResult(result *types.SyncResult) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"SUCCESS", "UPLOADED", "DOWNLOADED", "CONFLICTS", "AT"})
	tw.AppendRow(table.Row{
		result.Success,
		result.Operations.Uploaded,
		result.Operations.Downloaded,
		result.Operations.Conflicts,
		result.Timestamp.Format("2006-01-02 15:04:05"),
	})
	tw.Render()

	if len(result.Conflicts) == 0 {
		return
	}

	cw := table.NewWriter()
	cw.SetOutputMirror(os.Stdout)
	cw.AppendHeader(table.Row{"ID", "TYPE", "COLLECTION", "DOCUMENT", "RESOLUTION"})
	for _, info := range result.Conflicts {
		cw.AppendRow(table.Row{
			info.ID,
			info.Type,
			info.Collection,
			info.DocumentID,
			info.Resolution,
		})
	}
	cw.Render()
}

func init() {
	cmd := newSyncCmd()
	cmd.Flags().StringVarP(
		&syncConfPath,
		"config",
		"c",
		"",
		"Config path",
	)
	cmd.Flags().StringVarP(
		&syncUser,
		"user",
		"u",
		"",
		"User to sync on behalf of",
	)
	cmd.Flags().StringSliceVar(
		&syncCollections,
		"collections",
		nil,
		"Collections to sync, in order; empty means all",
	)
	cmd.Flags().BoolVar(
		&syncManual,
		"manual",
		false,
		"Leave conflicts pending instead of resolving them by policy",
	)
	cmd.Flags().StringVar(
		&syncMongoURI,
		"mongo-connection-uri",
		"",
		"MongoDB's connection URI",
	)
	cmd.Flags().StringVar(
		&syncMongoDatabase,
		"mongo-database",
		agent.DefaultMongoDatabase,
		"Mongo DB's database name",
	)
	rootCmd.AddCommand(cmd)
}
