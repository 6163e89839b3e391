package bookingRepo

import (
	"context"
	"fmt"

	"wellvix/models"
	"wellvix/utils"

	"go.mongodb.org/mongo-driver/mongo"
)

// CreateIfNoOverlap inserts a booking only if no occupying booking's
// buffered interval intersects it. The conflict re-check and the insert
// run in one transaction so two concurrent requests for overlapping
// intervals cannot both succeed.
func (r *mongoBookingRepo) CreateIfNoOverlap(ctx context.Context, booking *models.Booking, bufferMin int) error {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		filter := occupyingFilter(booking.ProviderID, booking.Start, booking.End, bufferMin)
		count, err := r.coll.CountDocuments(sc, filter)
		if err != nil {
			return fmt.Errorf("conflict re-check failed: %w", err)
		}
		if count > 0 {
			return utils.NewServiceError(utils.CodeOverlap, "time conflicts with an existing booking")
		}
		if _, err := r.coll.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return err
	}

	return nil
}
