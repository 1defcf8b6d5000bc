// Package stream fans shortage alerts out to live subscribers.
package stream

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/metrics"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/models"
)

// SubscriberBuffer is how many alerts a subscriber may fall behind before
// further alerts are dropped for it.
const SubscriberBuffer = 100

// Filter selects the alerts a subscriber receives. Empty fields match anything.
type Filter struct {
	HospitalID string
	Category   models.Category
	Severity   models.Severity
}

func (f Filter) Matches(a models.ShortageAlert) bool {
	if f.HospitalID != "" && a.Shortage.HospitalID != f.HospitalID {
		return false
	}
	if f.Category != "" && a.Shortage.Category != f.Category {
		return false
	}
	if f.Severity != "" && a.Shortage.Severity != f.Severity {
		return false
	}
	return true
}

type subscriber struct {
	ch      chan models.ShortageAlert
	filter  Filter
	dropped atomic.Int64
}

type Broadcaster struct {
	subscribers map[uint64]*subscriber
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]*subscriber),
	}
}

// Subscribe registers a subscriber for alerts matching filter. The returned
// channel is closed by Unsubscribe or Close.
func (b *Broadcaster) Subscribe(filter Filter) (uint64, <-chan models.ShortageAlert) {
	id := b.nextID.Add(1)
	sub := &subscriber{
		ch:     make(chan models.ShortageAlert, SubscriberBuffer),
		filter: filter,
	}

	b.mu.Lock()
	b.subscribers[id] = sub
	metrics.StreamSubscribers.Set(float64(len(b.subscribers)))
	b.mu.Unlock()

	return id, sub.ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.remove(id)
}

func (b *Broadcaster) remove(id uint64) {
	if sub, ok := b.subscribers[id]; ok {
		close(sub.ch)
		delete(b.subscribers, id)
	}
	metrics.StreamSubscribers.Set(float64(len(b.subscribers)))
}

// Broadcast never blocks. It returns how many subscribers received the alert;
// subscribers with a full buffer miss it and it is counted as dropped.
func (b *Broadcaster) Broadcast(alert models.ShortageAlert) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, sub := range b.subscribers {
		if !sub.filter.Matches(alert) {
			continue
		}
		select {
		case sub.ch <- alert:
			delivered++
		default:
			sub.dropped.Add(1)
			metrics.StreamDroppedAlerts.Inc()
		}
	}
	return delivered
}

// Dropped reports how many alerts subscriber id has missed so far.
func (b *Broadcaster) Dropped(id uint64) int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if sub, ok := b.subscribers[id]; ok {
		return sub.dropped.Load()
	}
	return 0
}

// Stream subscribes with filter and calls send for every alert until ctx is
// done, send fails or the broadcaster closes. The subscription is always
// removed before Stream returns.
func (b *Broadcaster) Stream(ctx context.Context, filter Filter, send func(models.ShortageAlert) error) error {
	id, alerts := b.Subscribe(filter)
	defer b.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case alert, ok := <-alerts:
			if !ok {
				return nil
			}
			if err := send(alert); err != nil {
				return err
			}
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close ends every subscription so open streams return.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id := range b.subscribers {
		b.remove(id)
	}
}
