package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const runsCollectionName = "runs"

// MongoRunStorage is a MongoDB implementation of RunStorage
type MongoRunStorage struct {
	collection *mongo.Collection
	log        *slog.Logger
}

// NewMongoRunStorage shares the client of the session storage
func NewMongoRunStorage(client *mongo.Client, database string, log *slog.Logger) (*MongoRunStorage, error) {
	collection := client.Database(database).Collection(runsCollectionName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "started_at", Value: -1}},
	})
	if err != nil {
		log.Warn("creating runs index", slog.String("error", err.Error()))
	}

	return &MongoRunStorage{
		collection: collection,
		log:        log,
	}, nil
}

func (m *MongoRunStorage) SaveRun(record *RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := m.collection.InsertOne(ctx, record)
	return err
}

func (m *MongoRunStorage) ChatStats(chatId int64) (*RunStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"chat_id": chatId}}},
		{{Key: "$group", Value: bson.M{
			"_id":  nil,
			"runs": bson.M{"$sum": 1},
			"failed": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", RunFailed}}, 1, 0},
			}},
			"images":      bson.M{"$sum": "$delivered"},
			"last_run_at": bson.M{"$max": "$started_at"},
		}}},
	}

	cursor, err := m.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregating runs: %w", err)
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		err := cursor.Close(ctx)
		if err != nil {
			m.log.Warn("closing cursor", slog.String("error", err.Error()))
		}
	}(cursor, ctx)

	var results []RunStats
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decoding run stats: %w", err)
	}
	if len(results) == 0 {
		return &RunStats{}, nil
	}
	return &results[0], nil
}

// Close closes the storage (client is shared, don't disconnect here)
func (m *MongoRunStorage) Close() error {
	return nil
}
