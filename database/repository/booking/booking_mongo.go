package bookingRepo

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

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs the reservation ledger backed by the
// "bookings" collection.
func NewMongoBookingRepo() Repository {
	return &mongoBookingRepo{coll: database.DB().Collection("bookings")}
}

func (r *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewServiceError(utils.CodeNotFound, "booking %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return &b, nil
}

func (r *mongoBookingRepo) ListByProvider(ctx context.Context, providerID string) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"providerId": providerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Booking
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return out, nil
}

// occupyingFilter matches occupying bookings whose interval, widened by
// bufferMin past its end, intersects [from, to).
func occupyingFilter(providerID string, from, to time.Time, bufferMin int) bson.M {
	buffered := from.Add(-time.Duration(bufferMin) * time.Minute)
	return bson.M{
		"providerId": providerID,
		"status":     bson.M{"$in": models.OccupyingBookingStatuses},
		"start":      bson.M{"$lt": to},
		"end":        bson.M{"$gt": buffered},
	}
}

func (r *mongoBookingRepo) ListOccupying(ctx context.Context, providerID string, from, to time.Time, bufferMin int) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := r.coll.Find(ctx, occupyingFilter(providerID, from, to, bufferMin), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list occupying bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Booking
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode occupying bookings: %w", err)
	}
	return out, nil
}

func (r *mongoBookingRepo) ConfirmWithOrder(ctx context.Context, bookingID, orderID string) (*models.Booking, error) {
	filter := bson.M{"id": bookingID, "status": models.BookingStatusRequested}
	update := bson.M{"$set": bson.M{
		"status":    models.BookingStatusConfirmed,
		"orderId":   orderID,
		"updatedAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var b models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewServiceError(utils.CodeInvalidStatus, "booking must be 'requested' to confirm")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}
	return &b, nil
}

func (r *mongoBookingRepo) UpdateStatus(ctx context.Context, bookingID, from, to string) (*models.Booking, error) {
	filter := bson.M{"id": bookingID, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var b models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewServiceError(utils.CodeInvalidStatus, "booking must be '%s'", from)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	return &b, nil
}
