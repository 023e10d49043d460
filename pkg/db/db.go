package db

import (
	"context"
	"fmt"

	"transcript-ingest/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Client wraps the MongoDB client and the episode/chunk collections.
type Client struct {
	mongoClient *mongo.Client
	database    *mongo.Database
	episodes    *mongo.Collection
	chunks      *mongo.Collection
}

// NewClient creates a new database client.
func NewClient(connectionString, databaseName string) *Client {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		// Return client with nil - error will be caught during Connect()
		return &Client{}
	}

	database := mongoClient.Database(databaseName)

	return &Client{
		mongoClient: mongoClient,
		database:    database,
		episodes:    database.Collection("episodes"),
		chunks:      database.Collection("chunks"),
	}
}

// Connect establishes connection to MongoDB.
func (c *Client) Connect(ctx context.Context) error {
	if c.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return c.mongoClient.Ping(ctx, nil)
}

// Close closes the MongoDB connection.
func (c *Client) Close(ctx context.Context) error {
	if c.mongoClient == nil {
		return nil
	}
	return c.mongoClient.Disconnect(ctx)
}

// SaveEpisode upserts a full episode record keyed by episode_id, so repeated
// ingest runs stay idempotent.
func (c *Client) SaveEpisode(ctx context.Context, ep *domain.Episode) error {
	if c.episodes == nil {
		return fmt.Errorf("episodes collection not initialized")
	}

	filter := bson.M{"episode_id": ep.EpisodeID}
	update := bson.M{"$set": ep}
	opts := options.Update().SetUpsert(true)

	_, err := c.episodes.UpdateOne(ctx, filter, update, opts)
	return err
}

// SaveChunks upserts chunk records keyed by (episode_id, chunk_id).
func (c *Client) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if c.chunks == nil {
		return fmt.Errorf("chunks collection not initialized")
	}

	for _, ch := range chunks {
		filter := bson.M{"episode_id": ch.EpisodeID, "chunk_id": ch.ChunkID}
		update := bson.M{"$set": ch}
		opts := options.Update().SetUpsert(true)

		if _, err := c.chunks.UpdateOne(ctx, filter, update, opts); err != nil {
			return fmt.Errorf("upsert chunk %s/%d: %w", ch.EpisodeID, ch.ChunkID, err)
		}
	}
	return nil
}

// GetAllChunks reads every chunk record, ordered by episode_id then chunk_id
// so downstream consumers see a deterministic stream.
func (c *Client) GetAllChunks(ctx context.Context) ([]domain.Chunk, error) {
	if c.chunks == nil {
		return nil, fmt.Errorf("chunks collection not initialized")
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "episode_id", Value: 1}, {Key: "chunk_id", Value: 1}})
	cursor, err := c.chunks.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.Chunk
	for cursor.Next(ctx) {
		var ch domain.Chunk
		if err := cursor.Decode(&ch); err != nil {
			continue // Skip invalid documents
		}
		out = append(out, ch)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return out, nil
}

// GetExistingEpisodeIDs fetches all stored episode IDs as a set.
func (c *Client) GetExistingEpisodeIDs(ctx context.Context) (map[string]bool, error) {
	if c.episodes == nil {
		return nil, fmt.Errorf("episodes collection not initialized")
	}

	cursor, err := c.episodes.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"episode_id": 1, "_id": 0}))
	if err != nil {
		return nil, fmt.Errorf("failed to query episode IDs: %w", err)
	}
	defer cursor.Close(ctx)

	ids := make(map[string]bool)
	for cursor.Next(ctx) {
		var result struct {
			EpisodeID string `bson:"episode_id"`
		}
		if err := cursor.Decode(&result); err != nil {
			continue // Skip invalid documents
		}
		if result.EpisodeID != "" {
			ids[result.EpisodeID] = true
		}
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return ids, nil
}
