package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentmate/pkg/kafka"
	"rentmate/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publisherFunc func(ctx context.Context, msg kafka.Message) error

func (f publisherFunc) Publish(ctx context.Context, msg kafka.Message) error { return f(ctx, msg) }

func sampleEvent() model.BookingEvent {
	return model.BookingEvent{
		Type:        model.EventBookingCreated,
		BookingID:   "665f1f77bcf86cd799439012",
		ListingID:   "665f1f77bcf86cd799439011",
		ListingName: "Sea View Loft",
		OwnerID:     "owner-1",
		RenterID:    "u1",
		StartDate:   model.MustParseDate("2024-06-13"),
		EndDate:     model.MustParseDate("2024-06-15"),
		IsPaid:      true,
		OccurredAt:  time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestEmit_RoundTrip(t *testing.T) {
	var sent kafka.Message
	emitter := NewKafkaEmitter(publisherFunc(func(_ context.Context, msg kafka.Message) error {
		sent = msg
		return nil
	}))

	require.NoError(t, emitter.Emit(context.Background(), sampleEvent()))

	assert.Equal(t, "665f1f77bcf86cd799439011", sent.Key)
	assert.Equal(t, model.EventBookingCreated, sent.GetEventType())
	assert.Equal(t, Source, sent.Headers[kafka.HeaderSource])

	decoded, err := Decode(sent)
	require.NoError(t, err)
	assert.Equal(t, sampleEvent(), decoded)
}

func TestEmit_PublishError(t *testing.T) {
	brokerErr := errors.New("broker down")
	emitter := NewKafkaEmitter(publisherFunc(func(context.Context, kafka.Message) error { return brokerErr }))

	err := emitter.Emit(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, brokerErr)
}

func TestDecode_Rejects(t *testing.T) {
	_, err := Decode(kafka.Message{Value: []byte("not json")})
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))

	_, err = Decode(kafka.Message{Value: []byte(`{"type":"booking.created"}`)})
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
}
