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

package memory

import "github.com/hashicorp/go-memdb"

var (
	tblEntities    = "entities"
	tblOperations  = "operations"
	tblDeadLetters = "deadletters"
	tblWatermarks  = "watermarks"
)

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblEntities: {
			Name: tblEntities,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:   "id",
					Unique: true,
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "Collection"},
							&memdb.StringFieldIndex{Field: "EntityID"},
						},
					},
				},
				"collection_user_status": {
					Name: "collection_user_status",
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "Collection"},
							&memdb.StringFieldIndex{Field: "UserID"},
							&memdb.StringFieldIndex{Field: "Status"},
						},
					},
				},
			},
		},
		tblOperations: {
			Name: tblOperations,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.UintFieldIndex{Field: "Seq"},
				},
			},
		},
		tblDeadLetters: {
			Name: tblDeadLetters,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.UintFieldIndex{Field: "Seq"},
				},
			},
		},
		tblWatermarks: {
			Name: tblWatermarks,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Collection"},
				},
			},
		},
	},
}
