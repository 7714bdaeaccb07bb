package host

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/keybridge/internal/editor"
)

// Update is one host echo: the full reported text window plus the selection
// and composing ranges, in runes.
type Update struct {
	Text      string
	Selection editor.Range
	Composing editor.Range
}

// UpdateHandler consumes one update.
type UpdateHandler func(Update)

// DeliveryMode selects how a subscription receives updates.
type DeliveryMode int

const (
	// DeliverySync runs the handler inline on the publishing goroutine.
	// The editor's reconciler subscribes this way; it is cheap and
	// race-safe by construction.
	DeliverySync DeliveryMode = iota
	// DeliveryAsync queues updates to a single worker, preserving order.
	// Suggestion refresh and other slow consumers subscribe this way.
	DeliveryAsync
)

// Subscription is a handle for cancelling a subscriber.
type Subscription struct {
	id      string
	mode    DeliveryMode
	handler UpdateHandler
	active  atomic.Bool
}

// ID returns the subscription identifier.
func (s *Subscription) ID() string { return s.id }

// Cancel deactivates the subscription. Safe to call repeatedly; the hub
// stops delivering immediately, even before Unsubscribe removes it.
func (s *Subscription) Cancel() { s.active.Store(false) }

// IsActive reports whether the subscription still receives updates.
func (s *Subscription) IsActive() bool { return s.active.Load() }

type hubConfig struct {
	queueSize    int
	panicHandler func(subID string, recovered any)
}

// HubOption configures an UpdateHub.
type HubOption func(*hubConfig)

// WithQueueSize sets the async delivery queue capacity.
func WithQueueSize(n int) HubOption {
	return func(c *hubConfig) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

// WithPanicHandler installs a hook invoked when a handler panics. The panic
// never propagates to the publisher either way.
func WithPanicHandler(fn func(subID string, recovered any)) HubOption {
	return func(c *hubConfig) { c.panicHandler = fn }
}

type asyncDelivery struct {
	update Update
	sub    *Subscription
}

// HubStats is a snapshot of hub counters.
type HubStats struct {
	Published         uint64
	Delivered         uint64
	Dropped           uint64
	HandlerPanics     uint64
	ActiveSubscribers int
	QueueDepth        int
}

// UpdateHub fans content updates out to subscribers. Sync subscribers run
// inline; async subscribers are fed by one worker goroutine so every
// subscriber observes updates in publish order.
type UpdateHub struct {
	mu   sync.RWMutex
	subs map[string]*Subscription

	queue   chan asyncDelivery
	running atomic.Bool
	quit    chan struct{}
	done    chan struct{}

	config hubConfig

	published atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
	panics    atomic.Uint64
}

// NewUpdateHub creates a hub with the given options.
func NewUpdateHub(opts ...HubOption) *UpdateHub {
	config := hubConfig{queueSize: 64}
	for _, opt := range opts {
		opt(&config)
	}
	return &UpdateHub{
		subs:   make(map[string]*Subscription),
		queue:  make(chan asyncDelivery, config.queueSize),
		config: config,
	}
}

// Start launches the async worker.
func (h *UpdateHub) Start() error {
	if h.running.Swap(true) {
		return ErrHubAlreadyRunning
	}
	h.quit = make(chan struct{})
	h.done = make(chan struct{})
	go h.worker()
	return nil
}

// Stop shuts the hub down, waiting for the async queue to drain or the
// context to expire. The queue channel itself is never closed, so a publish
// racing the shutdown cannot panic.
func (h *UpdateHub) Stop(ctx context.Context) error {
	if !h.running.Swap(false) {
		return ErrHubNotRunning
	}
	close(h.quit)
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ErrShutdownTimeout
	}
}

// IsRunning reports whether the hub accepts publishes.
func (h *UpdateHub) IsRunning() bool {
	return h.running.Load()
}

// Subscribe registers a handler.
func (h *UpdateHub) Subscribe(mode DeliveryMode, fn UpdateHandler) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	sub := &Subscription{id: uuid.New().String(), mode: mode, handler: fn}
	sub.active.Store(true)
	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()
	return sub, nil
}

// Unsubscribe cancels and removes a subscription.
func (h *UpdateHub) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}
	sub.Cancel()
	h.mu.Lock()
	_, found := h.subs[sub.id]
	delete(h.subs, sub.id)
	h.mu.Unlock()
	if !found {
		return ErrSubscriptionNotFound
	}
	return nil
}

// Publish delivers one update: inline to sync subscribers, queued to async
// ones. A full queue drops the update for that subscriber rather than
// blocking the publisher.
func (h *UpdateHub) Publish(u Update) error {
	if !h.running.Load() {
		return ErrHubNotRunning
	}
	h.published.Add(1)

	h.mu.RLock()
	subs := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		if !sub.IsActive() {
			continue
		}
		switch sub.mode {
		case DeliverySync:
			h.deliver(u, sub)
		case DeliveryAsync:
			select {
			case h.queue <- asyncDelivery{update: u, sub: sub}:
			default:
				h.dropped.Add(1)
			}
		}
	}
	return nil
}

// Stats returns a snapshot of the hub counters.
func (h *UpdateHub) Stats() HubStats {
	h.mu.RLock()
	active := 0
	for _, sub := range h.subs {
		if sub.IsActive() {
			active++
		}
	}
	h.mu.RUnlock()
	return HubStats{
		Published:         h.published.Load(),
		Delivered:         h.delivered.Load(),
		Dropped:           h.dropped.Load(),
		HandlerPanics:     h.panics.Load(),
		ActiveSubscribers: active,
		QueueDepth:        len(h.queue),
	}
}

func (h *UpdateHub) worker() {
	defer close(h.done)
	for {
		select {
		case d := <-h.queue:
			if d.sub.IsActive() {
				h.deliver(d.update, d.sub)
			}
		case <-h.quit:
			// Drain what was queued before shutdown.
			for {
				select {
				case d := <-h.queue:
					if d.sub.IsActive() {
						h.deliver(d.update, d.sub)
					}
				default:
					return
				}
			}
		}
	}
}

// deliver runs one handler with panic isolation. A panicking subscriber
// never takes the publisher or the worker down.
func (h *UpdateHub) deliver(u Update, sub *Subscription) {
	defer func() {
		if r := recover(); r != nil {
			h.panics.Add(1)
			if h.config.panicHandler != nil {
				h.config.panicHandler(sub.id, r)
			}
		}
	}()
	sub.handler(u)
	h.delivered.Add(1)
}
