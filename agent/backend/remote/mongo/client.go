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

// Package mongo implements the remote store interface using MongoDB.
package mongo

import (
	"context"
	"fmt"
	gotime "time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/tether-app/tether/agent/backend/remote"
	"github.com/tether-app/tether/agent/logging"
	"github.com/tether-app/tether/api/types"
)

// Client is a remote store backed by MongoDB.
type Client struct {
	config *Config
	client *mongo.Client
}

// Dial creates an instance of Client and dials the given MongoDB.
func Dial(conf *Config) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.ParseConnectionTimeout())
	defer cancel()

	client, err := mongo.Connect(
		options.Client().ApplyURI(conf.ConnectionURI),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingTimeout := conf.ParsePingTimeout()
	ctxPing, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctxPing, nil); err != nil {
		return nil, fmt.Errorf("ping mongo %s: %w", conf.ConnectionURI, err)
	}

	if err := ensureIndexes(ctx, client.Database(conf.Database)); err != nil {
		return nil, err
	}

	logging.DefaultLogger().Infof("MongoDB connected, URI: %s, DB: %s", conf.ConnectionURI, conf.Database)

	return &Client{
		config: conf,
		client: client,
	}, nil
}

// Close all resources of this client.
func (c *Client) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect from mongo: %w", err)
	}

	return nil
}

// FindDocument returns the document of the user stored for the given
// collection and id.
func (c *Client) FindDocument(
	ctx context.Context,
	userID string,
	collection types.Collection,
	id string,
) (types.Entity, error) {
	result := c.collection(collection).FindOne(ctx, bson.M{
		"_id":     id,
		"user_id": userID,
	})

	entity := collection.NewEntity()
	if err := result.Decode(entity); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, remote.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("decode document %s/%s: %w", collection, id, err)
	}

	return entity, nil
}

// FindChangedSince returns all documents of the user in the collection
// modified strictly after the given time.
func (c *Client) FindChangedSince(
	ctx context.Context,
	userID string,
	collection types.Collection,
	since gotime.Time,
) ([]types.Entity, error) {
	cursor, err := c.collection(collection).Find(ctx, bson.M{
		"user_id":       userID,
		"last_modified": bson.M{"$gt": since},
	}, options.Find().SetSort(bson.M{"last_modified": 1}))
	if err != nil {
		return nil, fmt.Errorf("find changed documents of %s: %w", collection, err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var entities []types.Entity
	for cursor.Next(ctx) {
		entity := collection.NewEntity()
		if err := cursor.Decode(entity); err != nil {
			return nil, fmt.Errorf("decode changed document of %s: %w", collection, err)
		}
		entities = append(entities, entity)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate changed documents of %s: %w", collection, err)
	}

	return entities, nil
}

// BatchWrite upserts the documents in one ordered bulk write.
func (c *Client) BatchWrite(
	ctx context.Context,
	userID string,
	collection types.Collection,
	entities []types.Entity,
) error {
	if len(entities) == 0 {
		return nil
	}

	var models []mongo.WriteModel
	for _, entity := range entities {
		models = append(models, mongo.NewReplaceOneModel().SetFilter(bson.M{
			"_id":     entity.EntityID(),
			"user_id": userID,
		}).SetReplacement(entity).SetUpsert(true))
	}

	if _, err := c.collection(collection).BulkWrite(
		ctx,
		models,
		options.BulkWrite().SetOrdered(true),
	); err != nil {
		return fmt.Errorf("batch write %d documents of %s: %w", len(entities), collection, err)
	}

	return nil
}

// DeleteDocument removes the document of the user.
func (c *Client) DeleteDocument(
	ctx context.Context,
	userID string,
	collection types.Collection,
	id string,
) error {
	if _, err := c.collection(collection).DeleteOne(ctx, bson.M{
		"_id":     id,
		"user_id": userID,
	}); err != nil {
		return fmt.Errorf("delete document %s/%s: %w", collection, id, err)
	}

	return nil
}

func (c *Client) collection(collection types.Collection) *mongo.Collection {
	return c.client.Database(c.config.Database).Collection(collection.String())
}
