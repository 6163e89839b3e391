package orderRepo

import (
	"context"
	"fmt"
	"time"

	"wellvix/database"
	"wellvix/models"
	"wellvix/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoOrderRepo struct {
	coll *mongo.Collection
}

// NewMongoOrderRepo constructs the order store backed by the "orders"
// collection.
func NewMongoOrderRepo() Repository {
	return &mongoOrderRepo{coll: database.DB().Collection("orders")}
}

func (r *mongoOrderRepo) Insert(ctx context.Context, order *models.Order) error {
	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (r *mongoOrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewServiceError(utils.CodeNotFound, "order %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	return &o, nil
}

func (r *mongoOrderRepo) List(ctx context.Context, f ListFilter) ([]models.Order, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.ProviderID != "" {
		filter["providerId"] = f.ProviderID
	}
	if f.ClientID != "" {
		filter["clientId"] = f.ClientID
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Order
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return out, nil
}

func (r *mongoOrderRepo) ListDeliveredBefore(ctx context.Context, cutoff time.Time, limit int64) ([]models.Order, error) {
	if limit <= 0 {
		limit = 500
	}
	filter := bson.M{
		"status":      models.OrderStatusDelivered,
		"deliveredAt": bson.M{"$lte": cutoff},
	}
	opts := options.Find().SetSort(bson.D{{Key: "deliveredAt", Value: 1}}).SetLimit(limit)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivered orders: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Order
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode delivered orders: %w", err)
	}
	return out, nil
}

func (r *mongoOrderRepo) Transition(ctx context.Context, id, from, to string, set map[string]interface{}, inc map[string]int64) (*models.Order, error) {
	return r.transition(ctx, id, bson.M{"id": id, "status": from}, from, to, set, inc)
}

func (r *mongoOrderRepo) TransitionFromNonTerminal(ctx context.Context, id, to string, set map[string]interface{}) (*models.Order, error) {
	filter := bson.M{"id": id, "status": bson.M{"$in": models.NonTerminalOrderStatuses}}
	return r.transition(ctx, id, filter, "a non-terminal status", to, set, nil)
}

func (r *mongoOrderRepo) transition(ctx context.Context, id string, filter bson.M, from, to string, set map[string]interface{}, inc map[string]int64) (*models.Order, error) {
	fields := bson.M{"status": to, "updatedAt": time.Now().UTC()}
	for k, v := range set {
		fields[k] = v
	}
	update := bson.M{"$set": fields}
	if len(inc) > 0 {
		incFields := bson.M{}
		for k, v := range inc {
			incFields[k] = v
		}
		update["$inc"] = incFields
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.Order
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&o)
	if err == mongo.ErrNoDocuments {
		// Distinguish a missing order from a status conflict.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, utils.NewServiceError(utils.CodeInvalidStatus, "order must be '%s'", from)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to transition order: %w", err)
	}
	return &o, nil
}

func (r *mongoOrderRepo) Update(ctx context.Context, id string, set map[string]interface{}) (*models.Order, error) {
	fields := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range set {
		fields[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.Order
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": fields}, opts).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewServiceError(utils.CodeNotFound, "order %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return &o, nil
}

func (r *mongoOrderRepo) RecordPayout(ctx context.Context, id, payoutReference string, feeCents int64) error {
	filter := bson.M{"id": id, "payoutReference": bson.M{"$in": bson.A{nil, ""}}}
	set := bson.M{
		"payoutReference":     payoutReference,
		"applicationFeeCents": feeCents,
		"updatedAt":           time.Now().UTC(),
	}
	// MatchedCount 0 means a reference is already on record; the first
	// write wins.
	if _, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("failed to record payout: %w", err)
	}
	return nil
}

func (r *mongoOrderRepo) MarkPaid(ctx context.Context, id, paymentReference, currency string, paidAt time.Time) error {
	filter := bson.M{"id": id, "paidAt": nil}
	set := bson.M{
		"paidAt":    paidAt,
		"updatedAt": time.Now().UTC(),
	}
	if paymentReference != "" {
		set["paymentReference"] = paymentReference
	}
	if currency != "" {
		set["currency"] = currency
	}
	// MatchedCount 0 means the order is already paid or unknown; replaying
	// a payment confirmation is harmless either way.
	if _, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	return nil
}
