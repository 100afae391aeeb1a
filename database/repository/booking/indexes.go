// FILE: database/repository/booking/indexes.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the bookings collection.
func (repo *MongoBookingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// Unique index on Booking ID
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Listing by student (primary query pattern)
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "scheduled_at", Value: 1}},
			Options: options.Index().SetName("student_scheduled_idx"),
		},
		// Listing by teacher
		{
			Keys:    bson.D{{Key: "teacher_id", Value: 1}, {Key: "scheduled_at", Value: 1}},
			Options: options.Index().SetName("teacher_scheduled_idx"),
		},
		// Webhook reconciliation looks bookings up by provider reference.
		{
			Keys:    bson.D{{Key: "payment_intent_id", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("payment_intent_idx"),
		},
	}

	_, err := repo.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
