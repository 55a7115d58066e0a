package broadcast

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// TestBasicPublishSubscribe verifies basic functionality.
func TestBasicPublishSubscribe(t *testing.T) {
	hub := New[int]()
	defer hub.Close()

	ch, err := hub.Subscribe("a", 4)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	hub.Publish(7)

	select {
	case v := <-ch:
		if v != 7 {
			t.Errorf("Expected 7, got %d", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for value")
	}

	latest, ok := hub.Latest()
	if !ok || latest != 7 {
		t.Errorf("Expected latest 7, got %d (ok=%v)", latest, ok)
	}
}

// TestNonBlockingPublish verifies a full subscriber never blocks Publish.
func TestNonBlockingPublish(t *testing.T) {
	hub := New[int]()
	defer hub.Close()

	ch, _ := hub.Subscribe("slow", 1)

	done := make(chan struct{})
	go func() {
		hub.Publish(1)
		hub.Publish(2)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Publish blocked (should be non-blocking)")
	}

	if v := <-ch; v != 1 {
		t.Errorf("Expected 1, got %d", v)
	}

	stats, err := hub.Stats("slow")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Sent != 1 || stats.Dropped != 1 {
		t.Errorf("Expected 1 sent / 1 dropped, got %+v", stats)
	}
}

func TestSubscribeErrors(t *testing.T) {
	hub := New[string]()

	if _, err := hub.Subscribe("dup", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := hub.Subscribe("dup", 1); !errors.Is(err, ErrSubscriberExists) {
		t.Errorf("Expected ErrSubscriberExists, got %v", err)
	}
	if err := hub.Unsubscribe("missing"); !errors.Is(err, ErrSubscriberNotFound) {
		t.Errorf("Expected ErrSubscriberNotFound, got %v", err)
	}

	hub.Close()
	if _, err := hub.Subscribe("late", 1); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := New[int]()
	defer hub.Close()

	ch, _ := hub.Subscribe("a", 1)
	if err := hub.Unsubscribe("a"); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}

	if _, ok := <-ch; ok {
		t.Error("Expected channel to be closed")
	}
	if hub.Len() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", hub.Len())
	}
}

func TestConcurrentPublishAndUnsubscribe(t *testing.T) {
	hub := New[int]()
	defer hub.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		id := string(rune('a' + i))
		ch, err := hub.Subscribe(id, 2)
		if err != nil {
			t.Fatal(err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range ch {
			}
		}()
	}

	var pubs sync.WaitGroup
	for i := 0; i < 4; i++ {
		pubs.Add(1)
		go func(n int) {
			defer pubs.Done()
			for j := 0; j < 100; j++ {
				hub.Publish(n*100 + j)
			}
		}(i)
	}

	for i := 0; i < 8; i++ {
		hub.Unsubscribe(string(rune('a' + i)))
	}

	pubs.Wait()
	wg.Wait()

	if hub.Published() != 400 {
		t.Errorf("Expected 400 published, got %d", hub.Published())
	}
}
