// Package reminders keeps pending stay reminders in a Redis sorted set
// scored by fire time.
package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"rentmate/pkg/model"

	"github.com/go-redis/redis/v8"
)

const (
	dueKey     = "reminders:due"
	payloadKey = "reminders:payload"
)

// Reminder is keyed by booking so a booking has at most one pending reminder.
type Reminder struct {
	BookingID   string     `json:"booking_id"`
	Recipient   string     `json:"recipient"`
	ListingName string     `json:"listing_name,omitempty"`
	StartDate   model.Date `json:"start_date"`
	FireAt      time.Time  `json:"fire_at"`
}

type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// Schedule adds r, replacing any reminder already pending for its booking.
func (s *RedisStore) Schedule(ctx context.Context, r Reminder) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal reminder: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, payloadKey, r.BookingID, payload)
		pipe.ZAdd(ctx, dueKey, &redis.Z{
			Score:  float64(r.FireAt.UnixMilli()),
			Member: r.BookingID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("schedule reminder for booking %s: %w", r.BookingID, err)
	}
	return nil
}

func (s *RedisStore) Cancel(ctx context.Context, bookingID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, dueKey, bookingID)
		pipe.HDel(ctx, payloadKey, bookingID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cancel reminder for booking %s: %w", bookingID, err)
	}
	return nil
}

// Claim removes and returns up to limit reminders due at now. A reminder is
// returned by exactly one caller even with several pollers running.
func (s *RedisStore) Claim(ctx context.Context, now time.Time, limit int64) ([]Reminder, error) {
	ids, err := s.client.ZRangeByScore(ctx, dueKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("query due reminders: %w", err)
	}

	claimed := make([]Reminder, 0, len(ids))
	for _, id := range ids {
		removed, err := s.client.ZRem(ctx, dueKey, id).Result()
		if err != nil {
			return claimed, fmt.Errorf("claim reminder for booking %s: %w", id, err)
		}
		if removed == 0 {
			continue
		}

		raw, err := s.client.HGet(ctx, payloadKey, id).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return claimed, fmt.Errorf("load reminder for booking %s: %w", id, err)
		}
		s.client.HDel(ctx, payloadKey, id)

		var r Reminder
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return claimed, fmt.Errorf("decode reminder for booking %s: %w", id, err)
		}
		claimed = append(claimed, r)
	}
	return claimed, nil
}
