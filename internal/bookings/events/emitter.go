// Package events publishes booking events to Kafka for the notifier.
package events

import (
	"context"
	"fmt"

	"rentmate/pkg/kafka"
	"rentmate/pkg/model"
)

const (
	Source        = "bookings"
	SchemaVersion = "1"
)

type publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaEmitter struct {
	producer publisher
}

func NewKafkaEmitter(producer publisher) *KafkaEmitter {
	return &KafkaEmitter{producer: producer}
}

// Emit keys the message by listing so events of one listing stay ordered.
func (e *KafkaEmitter) Emit(ctx context.Context, event model.BookingEvent) error {
	msg, err := NewMessage(event)
	if err != nil {
		return err
	}
	if err := e.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s for booking %s: %w", event.Type, event.BookingID, err)
	}
	return nil
}

func NewMessage(event model.BookingEvent) (kafka.Message, error) {
	return kafka.NewMessage().
		WithKey(event.ListingID).
		WithValue(event).
		WithEventType(event.Type).
		WithSource(Source).
		WithSchemaVersion(SchemaVersion).
		WithTimestamp(event.OccurredAt).
		Build()
}

// Decode reads a booking event back from a consumed message.
func Decode(msg kafka.Message) (model.BookingEvent, error) {
	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return model.BookingEvent{}, err
	}
	if event.Type == "" {
		event.Type = msg.GetEventType()
	}
	if event.BookingID == "" {
		return model.BookingEvent{}, kafka.NewPermanentError("invalid message", fmt.Errorf("booking event without booking id"))
	}
	return event, nil
}
