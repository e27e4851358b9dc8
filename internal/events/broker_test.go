package events

import (
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	if got := b.ClientCount(); got != 2 {
		t.Fatalf("ClientCount = %d, want 2", got)
	}

	b.Unsubscribe(ch1)
	if got := b.ClientCount(); got != 1 {
		t.Fatalf("ClientCount after unsubscribe = %d, want 1", got)
	}
	if _, ok := <-ch1; ok {
		t.Error("unsubscribed channel should be closed")
	}

	b.Unsubscribe(ch2)
	if got := b.ClientCount(); got != 0 {
		t.Fatalf("ClientCount = %d, want 0", got)
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch := b.Subscribe()
	b.Publish(Event{Type: BookCreated, Data: map[string]string{"slug": "dune"}})

	select {
	case payload := <-ch:
		s := string(payload)
		if !strings.Contains(s, BookCreated) || !strings.Contains(s, "dune") {
			t.Errorf("payload = %s", s)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestPublishToMultipleClients(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	chans := []chan []byte{b.Subscribe(), b.Subscribe(), b.Subscribe()}
	b.Publish(Event{Type: ChapterUpload})

	for i, ch := range chans {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("client %d received nothing", i)
		}
	}
}

func TestCloseDisconnectsClients(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()
	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel after Close")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}

	// Post-close calls are safe no-ops.
	b.Publish(Event{Type: BookUpdated})
	b.Unsubscribe(ch)
	if got := b.ClientCount(); got != 0 {
		t.Errorf("ClientCount after close = %d", got)
	}
	b.Close()
}
