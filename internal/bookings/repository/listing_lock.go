package repository

import (
	"context"
	"fmt"
	"time"

	bookingerrors "rentmate/internal/bookings/errors"
	"rentmate/pkg/config"
	mongotx "rentmate/pkg/db/mongo"
	"rentmate/pkg/logger"
	"rentmate/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Listing_locks"

// ListingLockRepository is an advisory lock backed by the unique _id of the
// lock collection. Expired locks are also removed by a TTL index on
// expires_at, which Mongo only sweeps once a minute, so Acquire takes over
// an expired lock itself.
type ListingLockRepository struct {
	collection *mongo.Collection
	ttl        time.Duration
	timeout    time.Duration
	log        *logger.Logger
	now        func() time.Time
}

func NewListingLockRepository(cfg *config.Config) *ListingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &ListingLockRepository{
		collection: db.Collection(LockCollectionName),
		ttl:        cfg.BookingLockTTL,
		timeout:    cfg.WriteTimeout,
		log:        cfg.Log,
		now:        time.Now,
	}
}

// Acquire returns bookingerrors.ErrLockHeld if another owner holds key.
func (r *ListingLockRepository) Acquire(ctx context.Context, key string) (func(), error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := r.now().UTC()
	lock := &model.ListingLock{
		ID:        key,
		Owner:     uuid.NewString(),
		ExpiresAt: now.Add(r.ttl),
		CreatedAt: now,
	}

	err := r.insert(ctx, lock)
	if mongotx.IsDuplicateKey(err) {
		// Take over the lock if its holder let it expire.
		if _, delErr := r.collection.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lt": now}}); delErr != nil {
			return nil, fmt.Errorf("failed to clear expired lock: %w", delErr)
		}
		err = r.insert(ctx, lock)
	}
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return nil, bookingerrors.ErrLockHeld
		}
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	return func() { r.release(lock) }, nil
}

func (r *ListingLockRepository) insert(ctx context.Context, lock *model.ListingLock) error {
	_, err := r.collection.InsertOne(ctx, lock)
	return err
}

// release runs on its own context so a cancelled request still frees the lock.
func (r *ListingLockRepository) release(lock *model.ListingLock) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": lock.ID, "owner": lock.Owner}); err != nil {
		r.log.Warn("Failed to release listing lock", "lock_id", lock.ID, "error", err)
	}
}
