// Package workflow runs booking operations as small state machines
// (idle, loading, then success or error) over a booking store.
package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rentmate/pkg/logger"
	"rentmate/pkg/model"

	"github.com/google/uuid"
)

const (
	OpCreate = "create_booking"
	OpUpdate = "update_booking"
	OpCancel = "cancel_booking"
)

type Workflow struct {
	store     Store
	listings  ListingDirectory
	events    EventEmitter
	locker    Locker
	payments  PaymentProcessor
	clock     func() time.Time
	location  *time.Location
	maxNights int
	log       *logger.Logger

	mu        sync.RWMutex
	listeners map[uint64]Listener
	nextID    uint64
}

type Option func(*Workflow)

func WithEventEmitter(e EventEmitter) Option {
	return func(w *Workflow) { w.events = e }
}

// WithLocker serializes writes per listing. Without it the workflow does a
// plain read, validate, write sequence.
func WithLocker(l Locker) Option {
	return func(w *Workflow) { w.locker = l }
}

func WithPayments(p PaymentProcessor) Option {
	return func(w *Workflow) { w.payments = p }
}

func WithClock(clock func() time.Time) Option {
	return func(w *Workflow) { w.clock = clock }
}

// WithLocation sets the zone that decides which calendar day is today.
func WithLocation(loc *time.Location) Option {
	return func(w *Workflow) { w.location = loc }
}

// WithMaxNights caps the length of a stay. Zero or less means no cap.
func WithMaxNights(n int) Option {
	return func(w *Workflow) { w.maxNights = n }
}

func New(store Store, listings ListingDirectory, log *logger.Logger, opts ...Option) *Workflow {
	w := &Workflow{
		store:     store,
		listings:  listings,
		clock:     time.Now,
		location:  time.UTC,
		log:       log.WithComponent("booking_workflow"),
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Subscribe registers l for every state transition of every invocation.
// The returned function removes it; calling it more than once is a no-op.
func (w *Workflow) Subscribe(l Listener) (unsubscribe func()) {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.listeners[id] = l
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.listeners, id)
			w.mu.Unlock()
		})
	}
}

// Today is the current calendar day in the workflow's zone.
func (w *Workflow) Today() model.Date {
	return model.Today(w.clock(), w.location)
}

func (w *Workflow) publish(t Transition) {
	w.mu.RLock()
	listeners := make([]Listener, 0, len(w.listeners))
	for _, l := range w.listeners {
		listeners = append(listeners, l)
	}
	w.mu.RUnlock()

	for _, l := range listeners {
		w.notifyListener(l, t)
	}
}

func (w *Workflow) notifyListener(l Listener, t Transition) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Workflow listener panicked",
				"operation", t.Operation,
				"operation_id", t.OperationID,
				"panic", r,
			)
		}
	}()
	l(t)
}

// operation is the state of a single invocation. It is never shared.
type operation struct {
	w     *Workflow
	name  string
	id    string
	state State
}

func (w *Workflow) begin(name string) *operation {
	op := &operation{w: w, name: name, id: uuid.NewString(), state: StateIdle}
	op.transition(StateLoading, nil)
	return op
}

func (op *operation) transition(to State, outcome *Outcome) {
	from := op.state
	op.state = to
	op.w.publish(Transition{
		Operation:   op.name,
		OperationID: op.id,
		From:        from,
		To:          to,
		At:          op.w.clock(),
		Outcome:     outcome,
	})
}

func (op *operation) succeed(b *model.Booking) Outcome {
	out := Outcome{Operation: op.name, OperationID: op.id, State: StateSuccess, Booking: b}
	op.transition(StateSuccess, &out)
	return out
}

func (op *operation) fail(f *Failure) Outcome {
	out := Outcome{Operation: op.name, OperationID: op.id, State: StateError, Failure: f}
	op.w.log.Warn("Booking operation failed",
		"operation", op.name,
		"operation_id", op.id,
		"kind", f.Kind,
		"reason", f.Reason,
		"message", f.Message,
		"error", f.Err,
	)
	op.transition(StateError, &out)
	return out
}

// guard turns a panic inside an operation into an Error outcome. A panic
// after the operation reached a terminal state leaves the outcome as is.
func (op *operation) guard(out *Outcome) {
	if r := recover(); r != nil {
		op.w.log.Error("Booking operation panicked",
			"operation", op.name,
			"operation_id", op.id,
			"state", op.state,
			"panic", r,
		)
		if op.state.Terminal() {
			return
		}
		*out = op.fail(&Failure{
			Kind:    KindStore,
			Message: "Unexpected failure while processing the booking",
			Err:     fmt.Errorf("panic: %v", r),
		})
	}
}

func (w *Workflow) lockListing(ctx context.Context, listingID string) (func(), error) {
	if w.locker == nil {
		return func() {}, nil
	}
	return w.locker.Acquire(ctx, ListingLockKey(listingID))
}

// ListingLockKey names the advisory lock guarding writes to one listing.
func ListingLockKey(listingID string) string {
	return "listing_lock_" + listingID
}

// emit publishes an event after success. Failures are logged and dropped.
func (w *Workflow) emit(ctx context.Context, event model.BookingEvent) {
	if w.events == nil {
		return
	}
	event.OccurredAt = w.clock().UTC()
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Booking event emitter panicked",
				"type", event.Type,
				"booking_id", event.BookingID,
				"panic", r,
			)
		}
	}()
	if err := w.events.Emit(ctx, event); err != nil {
		w.log.Warn("Failed to emit booking event",
			"type", event.Type,
			"booking_id", event.BookingID,
			"error", err,
		)
	}
}
