package host

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/keybridge/internal/editor"
)

func TestNewUpdateHub(t *testing.T) {
	hub := NewUpdateHub()
	if hub == nil {
		t.Fatal("NewUpdateHub() returned nil")
	}
}

func TestUpdateHub_StartStop(t *testing.T) {
	hub := NewUpdateHub()

	if err := hub.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !hub.IsRunning() {
		t.Error("expected hub to be running after Start()")
	}

	// Should fail to start again
	if err := hub.Start(); err != ErrHubAlreadyRunning {
		t.Errorf("expected ErrHubAlreadyRunning, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := hub.Stop(ctx); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if hub.IsRunning() {
		t.Error("expected hub to not be running after Stop()")
	}

	// Should fail to stop again
	if err := hub.Stop(ctx); err != ErrHubNotRunning {
		t.Errorf("expected ErrHubNotRunning, got %v", err)
	}
}

func TestUpdateHub_Publish_NotRunning(t *testing.T) {
	hub := NewUpdateHub()

	err := hub.Publish(Update{Text: "a", Selection: editor.Cursor(1)})
	if err != ErrHubNotRunning {
		t.Errorf("expected ErrHubNotRunning, got %v", err)
	}
}

func TestUpdateHub_Subscribe_NilHandler(t *testing.T) {
	hub := NewUpdateHub()
	hub.Start()
	defer hub.Stop(context.Background())

	_, err := hub.Subscribe(DeliverySync, nil)
	if err != ErrNilHandler {
		t.Errorf("expected ErrNilHandler, got %v", err)
	}
}

func TestUpdateHub_SyncDelivery(t *testing.T) {
	hub := NewUpdateHub()
	hub.Start()
	defer hub.Stop(context.Background())

	received := make(chan Update, 1)
	_, err := hub.Subscribe(DeliverySync, func(u Update) {
		received <- u
	})
	if err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}

	want := Update{Text: "hello", Selection: editor.Cursor(5), Composing: editor.RangeUnspecified}
	if err := hub.Publish(want); err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}

	select {
	case got := <-received:
		if got != want {
			t.Errorf("received %+v, want %+v", got, want)
		}
	default:
		t.Fatal("handler was not called synchronously")
	}
}

func TestUpdateHub_AsyncDeliveryOrder(t *testing.T) {
	hub := NewUpdateHub()
	hub.Start()

	var mu sync.Mutex
	var got []string
	_, err := hub.Subscribe(DeliveryAsync, func(u Update) {
		mu.Lock()
		got = append(got, u.Text)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}

	want := []string{"a", "ab", "abc", "abcd"}
	for _, text := range want {
		if err := hub.Publish(Update{Text: text, Selection: editor.Cursor(len(text))}); err != nil {
			t.Fatalf("Publish(%q) failed: %v", text, err)
		}
	}

	// Stop drains the queue before returning.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := hub.Stop(ctx); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != len(want) {
		t.Fatalf("delivered %d updates, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("update %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestUpdateHub_Unsubscribe(t *testing.T) {
	hub := NewUpdateHub()
	hub.Start()
	defer hub.Stop(context.Background())

	var calls atomic.Int32
	sub, _ := hub.Subscribe(DeliverySync, func(Update) {
		calls.Add(1)
	})

	hub.Publish(Update{Text: "x", Selection: editor.Cursor(1)})
	if err := hub.Unsubscribe(sub); err != nil {
		t.Fatalf("Unsubscribe() failed: %v", err)
	}
	if sub.IsActive() {
		t.Error("expected subscription to be cancelled after Unsubscribe()")
	}
	hub.Publish(Update{Text: "xy", Selection: editor.Cursor(2)})

	if calls.Load() != 1 {
		t.Errorf("expected 1 delivery, got %d", calls.Load())
	}

	// Should fail to unsubscribe again
	if err := hub.Unsubscribe(sub); err != ErrSubscriptionNotFound {
		t.Errorf("expected ErrSubscriptionNotFound, got %v", err)
	}
	if err := hub.Unsubscribe(nil); err != ErrSubscriptionNotFound {
		t.Errorf("expected ErrSubscriptionNotFound for nil, got %v", err)
	}
}

func TestUpdateHub_HandlerPanic(t *testing.T) {
	var panicked atomic.Int32
	hub := NewUpdateHub(WithPanicHandler(func(subID string, recovered any) {
		panicked.Add(1)
	}))
	hub.Start()
	defer hub.Stop(context.Background())

	var executed atomic.Int32

	// First handler panics, second should still run.
	hub.Subscribe(DeliverySync, func(Update) {
		executed.Add(1)
		panic("test panic")
	})
	hub.Subscribe(DeliverySync, func(Update) {
		executed.Add(1)
	})

	// Should not panic
	if err := hub.Publish(Update{Text: "x", Selection: editor.Cursor(1)}); err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}

	if executed.Load() != 2 {
		t.Errorf("expected 2 handlers executed, got %d", executed.Load())
	}
	if panicked.Load() != 1 {
		t.Errorf("expected 1 panic callback, got %d", panicked.Load())
	}

	stats := hub.Stats()
	if stats.HandlerPanics != 1 {
		t.Errorf("expected 1 handler panic tracked, got %d", stats.HandlerPanics)
	}
}

func TestUpdateHub_QueueFullDrops(t *testing.T) {
	hub := NewUpdateHub(WithQueueSize(1))
	hub.Start()

	entered := make(chan struct{})
	release := make(chan struct{})
	var delivered atomic.Int32
	hub.Subscribe(DeliveryAsync, func(u Update) {
		delivered.Add(1)
		if u.Text == "block" {
			close(entered)
			<-release
		}
	})

	// Occupy the worker, then fill the one-slot queue, then overflow it.
	hub.Publish(Update{Text: "block"})
	<-entered
	hub.Publish(Update{Text: "queued"})
	hub.Publish(Update{Text: "dropped"})

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := hub.Stop(ctx); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}

	if delivered.Load() != 2 {
		t.Errorf("expected 2 deliveries, got %d", delivered.Load())
	}
	stats := hub.Stats()
	if stats.Dropped != 1 {
		t.Errorf("expected 1 dropped update, got %d", stats.Dropped)
	}
}

func TestUpdateHub_StopTimeout(t *testing.T) {
	hub := NewUpdateHub()
	hub.Start()

	entered := make(chan struct{})
	release := make(chan struct{})
	hub.Subscribe(DeliveryAsync, func(Update) {
		close(entered)
		<-release
	})

	hub.Publish(Update{Text: "x"})
	<-entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := hub.Stop(ctx); err != ErrShutdownTimeout {
		t.Errorf("expected ErrShutdownTimeout, got %v", err)
	}
	close(release)
}

func TestUpdateHub_Stats(t *testing.T) {
	hub := NewUpdateHub()
	hub.Start()
	defer hub.Stop(context.Background())

	hub.Subscribe(DeliverySync, func(Update) {})

	for i := 0; i < 5; i++ {
		hub.Publish(Update{Text: "x", Selection: editor.Cursor(1)})
	}

	stats := hub.Stats()
	if stats.Published != 5 {
		t.Errorf("expected 5 published, got %d", stats.Published)
	}
	if stats.Delivered != 5 {
		t.Errorf("expected 5 delivered, got %d", stats.Delivered)
	}
	if stats.ActiveSubscribers != 1 {
		t.Errorf("expected 1 active subscriber, got %d", stats.ActiveSubscribers)
	}
}

func TestUpdateHub_ConcurrentPublish(t *testing.T) {
	hub := NewUpdateHub()
	hub.Start()
	defer hub.Stop(context.Background())

	var received atomic.Int32
	hub.Subscribe(DeliverySync, func(Update) {
		received.Add(1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Publish(Update{Text: "x", Selection: editor.Cursor(1)})
		}()
	}
	wg.Wait()

	if received.Load() != 100 {
		t.Errorf("expected 100 updates received, got %d", received.Load())
	}
}
