package realtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"clinic/internal/domain"
)

var ErrSubscriptionClosed = errors.New("подписка закрыта")

const defaultBuffer = 64

// Publisher accepts committed changes for fan-out.
type Publisher interface {
	Publish(event domain.ChangeEvent)
}

// Filter narrows a subscription. Nil fields match everything.
type Filter struct {
	DoctorID  *int64
	PatientID *int64
}

func (f Filter) Match(event domain.ChangeEvent) bool {
	if f.DoctorID != nil && event.Appointment.DoctorID != *f.DoctorID {
		return false
	}
	if f.PatientID != nil && event.Appointment.PatientID != *f.PatientID {
		return false
	}
	return true
}

// Broker fans change events out to subscribers. Publish never blocks: a
// subscriber whose buffer is full loses the event.
type Broker struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	closed bool
	logger *zap.Logger
}

func NewBroker(buffer int, logger *zap.Logger) *Broker {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Broker{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
		logger: logger,
	}
}

func (b *Broker) Subscribe(filter Filter) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:     b.nextID,
		filter: filter,
		events: make(chan domain.ChangeEvent, b.buffer),
		done:   make(chan struct{}),
		broker: b,
	}

	if b.closed {
		sub.closeOnce.Do(func() { close(sub.done) })
		return sub
	}

	b.subs[sub.id] = sub
	return sub
}

func (b *Broker) Publish(event domain.ChangeEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if !sub.filter.Match(event) {
			continue
		}

		select {
		case sub.events <- event:
		default:
			sub.dropped.Add(1)
			b.logger.Warn("подписчик не успевает, событие пропущено",
				zap.Uint64("subscription", sub.id),
				zap.Int64("appointment_id", event.Appointment.ID))
		}
	}
}

func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close ends every subscription; later Subscribe calls return closed handles.
func (b *Broker) Close() {
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[uint64]*Subscription)
	b.closed = true
	b.mu.Unlock()

	for _, sub := range subs {
		sub.closeOnce.Do(func() { close(sub.done) })
	}
}

func (b *Broker) remove(id uint64) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

// Subscription is a lazy sequence of change events. Nothing is produced
// until Next is called, and Next can be called until Close.
type Subscription struct {
	id        uint64
	filter    Filter
	events    chan domain.ChangeEvent
	done      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Int64
	broker    *Broker
}

// Next blocks until an event arrives, ctx is done or the subscription closes.
func (s *Subscription) Next(ctx context.Context) (domain.ChangeEvent, error) {
	select {
	case event := <-s.events:
		return event, nil
	case <-s.done:
		return domain.ChangeEvent{}, ErrSubscriptionClosed
	case <-ctx.Done():
		return domain.ChangeEvent{}, ctx.Err()
	}
}

func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.broker.remove(s.id)
	})
}

// Dropped counts events lost because the buffer was full.
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}
