package eventRepo

import (
	"context"
	"fmt"
	"log"
	"time"

	"wellvix/database"
	"wellvix/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoEventRepo struct {
	coll *mongo.Collection
}

// NewMongoEventRepo constructs the processed-event store backed by the
// "processed_events" collection and ensures its unique index.
func NewMongoEventRepo() Repository {
	coll := database.DB().Collection("processed_events")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "eventId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("warning: failed to ensure processed_events index: %v", err)
	}

	return &mongoEventRepo{coll: coll}
}

func (r *mongoEventRepo) InsertIfAbsent(ctx context.Context, event models.ProcessedEvent) (bool, error) {
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, event)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to record processed event: %w", err)
	}
	return true, nil
}

func (r *mongoEventRepo) List(ctx context.Context, limit int64) ([]models.ProcessedEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().SetSort(bson.D{{Key: "receivedAt", Value: -1}}).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list processed events: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.ProcessedEvent
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode processed events: %w", err)
	}
	return out, nil
}
