//go:build integration

package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	bookingerrors "rentmate/internal/bookings/errors"
	"rentmate/internal/testutil"
	"rentmate/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	listingA = "665f1f77bcf86cd799439011"
	listingB = "665f1f77bcf86cd799439012"
)

func newBookingRepo(t *testing.T) (BookingRepository, *testutil.MongoHelper) {
	t.Helper()
	env := testutil.NewTestEnv()
	h := testutil.NewMongoHelper(t, env)
	h.Migrate(t)
	return NewMongoBookingRepository(h.Config(env)), h
}

func booking(listingID, renterID, start, end string) *model.Booking {
	return &model.Booking{
		ListingID:  listingID,
		RenterID:   renterID,
		StartDate:  model.MustParseDate(start),
		EndDate:    model.MustParseDate(end),
		Status:     model.StatusConfirmed,
		TotalPrice: 100,
		CreatedAt:  time.Now(),
	}
}

func TestBookingRepository_PutGetDelete(t *testing.T) {
	repo, _ := newBookingRepo(t)
	ctx := context.Background()

	id, err := repo.Put(ctx, booking(listingA, "renter-1", "2024-06-10", "2024-06-12"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, model.MustParseDate("2024-06-10"), got.StartDate)

	got.StartDate = model.MustParseDate("2024-06-11")
	got.EndDate = model.MustParseDate("2024-06-14")
	got.UpdatedAt = time.Now()
	_, err = repo.Put(ctx, got)
	require.NoError(t, err)

	updated, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-14", updated.EndDate.String())

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.Get(ctx, id)
	assert.ErrorIs(t, err, bookingerrors.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, id), bookingerrors.ErrNotFound)
}

func TestBookingRepository_InvalidID(t *testing.T) {
	repo, _ := newBookingRepo(t)

	_, err := repo.Get(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, bookingerrors.ErrInvalidID)
}

func TestBookingRepository_ListIsPerListingAndSorted(t *testing.T) {
	repo, _ := newBookingRepo(t)
	ctx := context.Background()

	for _, b := range []*model.Booking{
		booking(listingA, "r1", "2024-07-01", "2024-07-03"),
		booking(listingA, "r2", "2024-06-01", "2024-06-02"),
		booking(listingB, "r3", "2024-06-05", "2024-06-06"),
	} {
		_, err := repo.Put(ctx, b)
		require.NoError(t, err)
	}

	list, err := repo.List(ctx, listingA)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2024-06-01", list[0].StartDate.String())
	assert.Equal(t, "2024-07-01", list[1].StartDate.String())

	count, err := repo.CountByListing(ctx, listingA)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	page, err := repo.FindByListing(ctx, listingA, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "r1", page[0].RenterID)
}

func TestBookingRepository_RenterViews(t *testing.T) {
	repo, _ := newBookingRepo(t)
	ctx := context.Background()
	today := model.MustParseDate("2024-06-15")

	for _, b := range []*model.Booking{
		booking(listingA, "renter", "2024-06-01", "2024-06-03"),
		booking(listingA, "renter", "2024-06-14", "2024-06-15"),
		booking(listingB, "renter", "2024-06-20", "2024-06-22"),
		booking(listingB, "someone-else", "2024-06-01", "2024-06-02"),
	} {
		_, err := repo.Put(ctx, b)
		require.NoError(t, err)
	}

	upcoming, err := repo.FindUpcomingByRenter(ctx, "renter", today)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "2024-06-14", upcoming[0].StartDate.String())

	past, err := repo.FindPastByRenter(ctx, "renter", today)
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.Equal(t, "2024-06-03", past[0].EndDate.String())

	stayed, err := repo.HasPastStay(ctx, listingA, "renter", today)
	require.NoError(t, err)
	assert.True(t, stayed)

	stayed, err = repo.HasPastStay(ctx, listingB, "renter", today)
	require.NoError(t, err)
	assert.False(t, stayed)
}

func TestBookingRepository_DeleteByListingInTransaction(t *testing.T) {
	repo, h := newBookingRepo(t)
	ctx := context.Background()

	for _, b := range []*model.Booking{
		booking(listingA, "r1", "2024-06-01", "2024-06-02"),
		booking(listingA, "r2", "2024-06-03", "2024-06-04"),
		booking(listingB, "r3", "2024-06-01", "2024-06-02"),
	} {
		_, err := repo.Put(ctx, b)
		require.NoError(t, err)
	}

	var deleted int64
	err := repo.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		var err error
		deleted, err = repo.DeleteByListing(sc, listingA)
		return err
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)
	assert.EqualValues(t, 1, h.CountDocuments(t, CollectionName))
}

func TestListingLockRepository(t *testing.T) {
	env := testutil.NewTestEnv()
	h := testutil.NewMongoHelper(t, env)
	h.Migrate(t)
	locks := NewListingLockRepository(h.Config(env))
	ctx := context.Background()

	release, err := locks.Acquire(ctx, listingA)
	require.NoError(t, err)

	_, err = locks.Acquire(ctx, listingA)
	assert.ErrorIs(t, err, bookingerrors.ErrLockHeld)

	other, err := locks.Acquire(ctx, listingB)
	require.NoError(t, err)
	other()

	release()
	release, err = locks.Acquire(ctx, listingA)
	require.NoError(t, err)
	release()
}

func TestListingLockRepository_TakesOverExpiredLock(t *testing.T) {
	env := testutil.NewTestEnv()
	h := testutil.NewMongoHelper(t, env)
	h.Migrate(t)
	locks := NewListingLockRepository(h.Config(env))
	ctx := context.Background()

	start := time.Now()
	locks.now = func() time.Time { return start }
	_, err := locks.Acquire(ctx, listingA)
	require.NoError(t, err)

	locks.now = func() time.Time { return start.Add(2 * locks.ttl) }
	release, err := locks.Acquire(ctx, listingA)
	require.NoError(t, err)
	release()
}

func TestListingLockRepository_SingleWinner(t *testing.T) {
	env := testutil.NewTestEnv()
	h := testutil.NewMongoHelper(t, env)
	h.Migrate(t)
	locks := NewListingLockRepository(h.Config(env))

	const workers = 8
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := locks.Acquire(context.Background(), listingA); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, won)
}
