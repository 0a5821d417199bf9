package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingerrors "rentmate/internal/bookings/errors"
	"rentmate/pkg/config"
	mongotx "rentmate/pkg/db/mongo"
	"rentmate/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

// BookingRepository is the booking Store plus the read models used by the
// HTTP surface.
type BookingRepository interface {
	List(ctx context.Context, listingID string) ([]*model.Booking, error)
	Get(ctx context.Context, id string) (*model.Booking, error)
	Put(ctx context.Context, booking *model.Booking) (string, error)
	Delete(ctx context.Context, id string) error

	FindByListing(ctx context.Context, listingID string, limit int, offset int64) ([]*model.Booking, error)
	CountByListing(ctx context.Context, listingID string) (int64, error)
	FindUpcomingByRenter(ctx context.Context, renterID string, today model.Date) ([]*model.Booking, error)
	FindPastByRenter(ctx context.Context, renterID string, today model.Date) ([]*model.Booking, error)
	HasPastStay(ctx context.Context, listingID, renterID string, today model.Date) (bool, error)
	DeleteByListing(ctx context.Context, listingID string) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) List(ctx context.Context, listingID string) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"listing_id": listingID, "status": model.StatusConfirmed}
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})

	return r.find(ctx, filter, opts)
}

func (r *mongoBookingRepository) Get(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// Put inserts a booking without an ID and replaces the stored one otherwise.
func (r *mongoBookingRepository) Put(ctx context.Context, booking *model.Booking) (string, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if booking.ID == "" {
		doc := *booking
		doc.CreatedAt = booking.CreatedAt.UTC().Truncate(time.Millisecond)
		result, err := r.collection.InsertOne(ctx, &doc)
		if err != nil {
			return "", fmt.Errorf("failed to create booking: %w", err)
		}
		oid, ok := result.InsertedID.(primitive.ObjectID)
		if !ok {
			return "", fmt.Errorf("failed to create booking: unexpected inserted id %v", result.InsertedID)
		}
		return oid.Hex(), nil
	}

	objectID, err := primitive.ObjectIDFromHex(booking.ID)
	if err != nil {
		return "", fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, booking.ID)
	}

	update := bson.M{
		"$set": bson.M{
			"start_date":  booking.StartDate,
			"end_date":    booking.EndDate,
			"status":      booking.Status,
			"is_paid":     booking.IsPaid,
			"total_price": booking.TotalPrice,
			"payment_ref": booking.PaymentRef,
			"updated_at":  booking.UpdatedAt.UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return "", fmt.Errorf("failed to update booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return "", bookingerrors.ErrNotFound
	}

	return booking.ID, nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if result.DeletedCount == 0 {
		return bookingerrors.ErrNotFound
	}

	return nil
}

func (r *mongoBookingRepository) FindByListing(ctx context.Context, listingID string, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, bson.M{"listing_id": listingID}, opts)
}

func (r *mongoBookingRepository) CountByListing(ctx context.Context, listingID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"listing_id": listingID})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// FindUpcomingByRenter returns bookings that have not ended before today.
func (r *mongoBookingRepository) FindUpcomingByRenter(ctx context.Context, renterID string, today model.Date) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"renter_id": renterID,
		"end_date":  bson.M{"$gte": today.String()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})

	return r.find(ctx, filter, opts)
}

func (r *mongoBookingRepository) FindPastByRenter(ctx context.Context, renterID string, today model.Date) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"renter_id": renterID,
		"end_date":  bson.M{"$lt": today.String()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "end_date", Value: -1}})

	return r.find(ctx, filter, opts)
}

// HasPastStay reports whether renterID has a finished confirmed booking of
// listingID.
func (r *mongoBookingRepository) HasPastStay(ctx context.Context, listingID, renterID string, today model.Date) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"listing_id": listingID,
		"renter_id":  renterID,
		"status":     model.StatusConfirmed,
		"end_date":   bson.M{"$lt": today.String()},
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to look up past stays: %w", err)
	}
	return count > 0, nil
}

func (r *mongoBookingRepository) DeleteByListing(ctx context.Context, listingID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"listing_id": listingID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete bookings of listing: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Booking, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}
