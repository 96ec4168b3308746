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

package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tether-app/tether/api/types"
)

// ensureIndexes creates the indexes the changed-since queries depend
// on, one set per known collection.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, collection := range types.Collections() {
		_, err := db.Collection(collection.String()).Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "last_modified", Value: 1},
				},
			},
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "_id", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
		})
		if err != nil {
			return fmt.Errorf("create indexes of %s: %w", collection, err)
		}
	}

	return nil
}
