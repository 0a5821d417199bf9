//go:build integration

package reminders

import (
	"context"
	"testing"
	"time"

	"rentmate/internal/testutil"
	"rentmate/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *RedisStore {
	t.Helper()
	return NewRedisStore(testutil.NewRedisClient(t, testutil.NewTestEnv()))
}

func reminder(bookingID string, fireAt time.Time) Reminder {
	return Reminder{
		BookingID:   bookingID,
		Recipient:   "renter",
		ListingName: "Sea View Loft",
		StartDate:   model.MustParseDate("2024-06-10"),
		FireAt:      fireAt,
	}
}

func TestRedisStore_ClaimOnlyDue(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Schedule(ctx, reminder("due", now.Add(-time.Minute))))
	require.NoError(t, store.Schedule(ctx, reminder("later", now.Add(time.Hour))))

	claimed, err := store.Claim(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, "due", claimed[0].BookingID)
	assert.Equal(t, "Sea View Loft", claimed[0].ListingName)

	again, err := store.Claim(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, again)

	claimed, err = store.Claim(ctx, now.Add(2*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, "later", claimed[0].BookingID)
}

func TestRedisStore_ScheduleReplaces(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Schedule(ctx, reminder("b1", now.Add(-time.Minute))))
	require.NoError(t, store.Schedule(ctx, reminder("b1", now.Add(time.Hour))))

	claimed, err := store.Claim(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, claimed)
}

func TestRedisStore_Cancel(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Schedule(ctx, reminder("b1", now.Add(-time.Minute))))
	require.NoError(t, store.Cancel(ctx, "b1"))
	require.NoError(t, store.Cancel(ctx, "unknown"))

	claimed, err := store.Claim(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, claimed)
}
