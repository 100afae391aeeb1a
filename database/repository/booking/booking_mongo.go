package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"tutorhive/config"
	"tutorhive/database"
	"tutorhive/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBookingRepo implements BookingRepository backed by MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a repository bound to the bookings collection.
func NewMongoBookingRepo() *MongoBookingRepo {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoBookingRepo{coll: db.Collection("bookings")}
}

// Get retrieves a booking by its ID.
func (repo *MongoBookingRepo) Get(ctx context.Context, id string) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := repo.coll.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &booking, nil
}

// GetByPaymentIntentID retrieves the booking tied to a provider transaction.
func (repo *MongoBookingRepo) GetByPaymentIntentID(ctx context.Context, intentID string) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := repo.coll.FindOne(ctxWithTimeout, bson.M{"payment_intent_id": intentID}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking for intent %s: %w", intentID, err)
	}
	return &booking, nil
}

// Create inserts a new booking document.
func (repo *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := repo.coll.InsertOne(ctxWithTimeout, booking)
	if err != nil {
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// ConditionalUpdate applies mutate to the stored booking and writes it back
// only if the stored version still matches the expected one. The version
// filter makes the write atomic: a concurrent mutation changes the version
// and the update matches nothing.
func (repo *MongoBookingRepo) ConditionalUpdate(ctx context.Context, id string, version int64, mutate func(*models.Booking) error) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	current, err := repo.Get(ctxWithTimeout, id)
	if err != nil {
		return nil, err
	}
	if current.Version != version {
		return nil, ErrVersionConflict
	}

	updated := *current
	if err := mutate(&updated); err != nil {
		return nil, err
	}
	updated.Version = version + 1
	updated.UpdatedAt = time.Now()

	filter := bson.M{"id": id, "version": version}
	res, err := repo.coll.ReplaceOne(ctxWithTimeout, filter, &updated)
	if err != nil {
		return nil, fmt.Errorf("error updating booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		// The document exists but its version moved: a concurrent writer won.
		return nil, ErrVersionConflict
	}
	return &updated, nil
}

// ListByStudent returns all bookings made by the given student.
func (repo *MongoBookingRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Booking, error) {
	return repo.list(ctx, bson.M{"student_id": studentID})
}

// ListByTeacher returns all bookings held against the given teacher.
func (repo *MongoBookingRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.Booking, error) {
	return repo.list(ctx, bson.M{"teacher_id": teacherID})
}

func (repo *MongoBookingRepo) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.coll.Find(ctxWithTimeout, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var bookings []models.Booking
	if err := cursor.All(ctxWithTimeout, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}
