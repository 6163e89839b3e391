package availabilityRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wellvix/database"
	"wellvix/models"
	"wellvix/utils"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cacheTTL = 10 * time.Minute

type mongoAvailabilityRepo struct {
	weeklyColl    *mongo.Collection
	exceptionColl *mongo.Collection
	cache         *redis.Client
}

// NewMongoAvailabilityRepo constructs the availability store backed by the
// "availability" and "exceptions" collections with a Redis read cache.
func NewMongoAvailabilityRepo() Repository {
	db := database.DB()
	return &mongoAvailabilityRepo{
		weeklyColl:    db.Collection("availability"),
		exceptionColl: db.Collection("exceptions"),
		cache:         utils.GetCacheClient(),
	}
}

func weeklyCacheKey(providerID string) string    { return "availability:weekly:" + providerID }
func exceptionCacheKey(providerID string) string { return "availability:exceptions:" + providerID }

func (r *mongoAvailabilityRepo) GetWeekly(ctx context.Context, providerID string) (map[string][]models.AvailabilityWindow, error) {
	if cached, err := r.cache.Get(ctx, weeklyCacheKey(providerID)).Result(); err == nil {
		var weekly map[string][]models.AvailabilityWindow
		if jsonErr := json.Unmarshal([]byte(cached), &weekly); jsonErr == nil {
			return weekly, nil
		}
	}

	var doc models.WeeklyAvailability
	err := r.weeklyColl.FindOne(ctx, bson.M{"providerId": providerID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return map[string][]models.AvailabilityWindow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch weekly availability: %w", err)
	}
	if doc.Weekly == nil {
		doc.Weekly = map[string][]models.AvailabilityWindow{}
	}

	if raw, jsonErr := json.Marshal(doc.Weekly); jsonErr == nil {
		r.cache.Set(ctx, weeklyCacheKey(providerID), raw, cacheTTL)
	}
	return doc.Weekly, nil
}

func (r *mongoAvailabilityRepo) SetWeekly(ctx context.Context, providerID string, weekly map[string][]models.AvailabilityWindow) error {
	doc := models.WeeklyAvailability{ProviderID: providerID, Weekly: weekly}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.weeklyColl.ReplaceOne(ctx, bson.M{"providerId": providerID}, doc, opts); err != nil {
		return fmt.Errorf("failed to upsert weekly availability: %w", err)
	}
	r.cache.Del(ctx, weeklyCacheKey(providerID))
	return nil
}

func (r *mongoAvailabilityRepo) GetExceptions(ctx context.Context, providerID string) (map[string]models.AvailabilityException, error) {
	if cached, err := r.cache.Get(ctx, exceptionCacheKey(providerID)).Result(); err == nil {
		var excs map[string]models.AvailabilityException
		if jsonErr := json.Unmarshal([]byte(cached), &excs); jsonErr == nil {
			return excs, nil
		}
	}

	cursor, err := r.exceptionColl.Find(ctx, bson.M{"providerId": providerID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availability exceptions: %w", err)
	}
	defer cursor.Close(ctx)

	excs := map[string]models.AvailabilityException{}
	for cursor.Next(ctx) {
		var exc models.AvailabilityException
		if err := cursor.Decode(&exc); err != nil {
			return nil, fmt.Errorf("failed to decode availability exception: %w", err)
		}
		excs[exc.Date] = exc
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("exception cursor error: %w", err)
	}

	if raw, jsonErr := json.Marshal(excs); jsonErr == nil {
		r.cache.Set(ctx, exceptionCacheKey(providerID), raw, cacheTTL)
	}
	return excs, nil
}

func (r *mongoAvailabilityRepo) SetException(ctx context.Context, exc models.AvailabilityException) error {
	filter := bson.M{"providerId": exc.ProviderID, "date": exc.Date}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.exceptionColl.ReplaceOne(ctx, filter, exc, opts); err != nil {
		return fmt.Errorf("failed to upsert availability exception: %w", err)
	}
	r.cache.Del(ctx, exceptionCacheKey(exc.ProviderID))
	return nil
}

func (r *mongoAvailabilityRepo) DeleteException(ctx context.Context, providerID, date string) error {
	if _, err := r.exceptionColl.DeleteOne(ctx, bson.M{"providerId": providerID, "date": date}); err != nil {
		return fmt.Errorf("failed to delete availability exception: %w", err)
	}
	r.cache.Del(ctx, exceptionCacheKey(providerID))
	return nil
}
