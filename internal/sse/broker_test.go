package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe("")
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe("")
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "section.regenerated", BriefID: "b1", Data: map[string]string{"section": "Goals:"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: section.regenerated") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"section":"Goals:"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishBriefEvent_ListThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe("")
	defer b.Unsubscribe(ch)

	// First event should trigger briefs.changed.
	b.PublishBriefEvent("created", "a")
	// Second event immediately should NOT trigger another briefs.changed.
	b.PublishBriefEvent("updated", "b")

	// Drain and count events.
	time.Sleep(50 * time.Millisecond)
	listCount := 0
	briefCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, BriefsChanged) {
				listCount++
			} else {
				briefCount++
			}
		default:
			break loop
		}
	}

	if briefCount != 2 {
		t.Errorf("brief events = %d, want 2", briefCount)
	}
	if listCount != 1 {
		t.Errorf("list events = %d, want 1 (throttled)", listCount)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	// Start handler in background.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events?brief=x", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: BriefUpdated, BriefID: "x", Data: map[string]string{"brief_id": "x"}})
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: brief.updated") {
		t.Errorf("handler output missing event: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe("")
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
	// If we reach here without deadlock, the test passes.
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe("")
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: BriefUpdated, Data: map[string]string{"brief_id": "x"}})
	b.PublishBriefEvent("updated", "x")
}

func TestSubscriptionFiltersByBrief(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	mine := b.Subscribe("b1")
	defer b.Unsubscribe(mine)
	all := b.Subscribe("")
	defer b.Unsubscribe(all)

	b.Publish(Event{Type: "section.regenerating", BriefID: "b2", Data: map[string]string{}})
	b.Publish(Event{Type: "section.regenerated", BriefID: "b1", Data: map[string]string{}})
	b.Publish(Event{Type: "brief.published", Data: map[string]string{}})
	time.Sleep(50 * time.Millisecond)

	drain := func(ch chan []byte) []string {
		var out []string
		for {
			select {
			case msg := <-ch:
				out = append(out, string(msg))
			default:
				return out
			}
		}
	}

	got := drain(mine)
	if len(got) != 2 || !strings.Contains(got[0], "section.regenerated") || !strings.Contains(got[1], "brief.published") {
		t.Errorf("filtered client got %q", got)
	}
	if n := len(drain(all)); n != 3 {
		t.Errorf("unfiltered client got %d events, want 3", n)
	}
}

func TestSSEHandler_Heartbeat(t *testing.T) {
	b := NewBroker(100*time.Millisecond, WithHeartbeat(20*time.Millisecond))
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	b.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), ": ping\n\n") {
		t.Errorf("idle stream got no heartbeat: %q", w.Body.String())
	}
}
