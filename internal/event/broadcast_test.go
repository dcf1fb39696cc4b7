package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nkapoor/taskflow/internal/planner"
)

func TestBroadcastFanOut(t *testing.T) {
	b := NewBroadcaster()
	s1 := b.Subscribe(4)
	s2 := b.Subscribe(4)

	b.Publish(Log{Agent: "System", Message: "hello", Level: LevelInfo})

	for _, sub := range []*Subscription{s1, s2} {
		select {
		case e := <-sub.C:
			l, ok := e.(Log)
			if !ok || l.Message != "hello" {
				t.Errorf("unexpected event %+v", e)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestBroadcastNeverBlocksOnFullSubscriber(t *testing.T) {
	b := NewBroadcaster()
	stuck := b.Subscribe(1)
	healthy := b.Subscribe(8)

	done := make(chan struct{})
	go func() {
		// Nobody drains stuck; publishing past its buffer must not hang.
		for i := 0; i < 5; i++ {
			b.Publish(StepStatus{Action: "step", Status: StatusInProgress})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	if got := len(healthy.C); got != 5 {
		t.Errorf("healthy subscriber got %d events, want 5", got)
	}
	if got := len(stuck.C); got != 1 {
		t.Errorf("stuck subscriber buffered %d events, want 1 (rest dropped)", got)
	}
}

func TestSubscriptionCloseStopsDelivery(t *testing.T) {
	b := NewBroadcaster()
	sub := b.Subscribe(4)
	sub.Close()

	if _, ok := <-sub.C; ok {
		t.Error("channel should be closed")
	}

	// Publishing after close must not panic.
	b.Publish(Log{Agent: "System", Message: "late", Level: LevelInfo})
}

func TestMarshalInjectsTypeTag(t *testing.T) {
	tests := []struct {
		event Event
		kind  string
	}{
		{Plan{Steps: []planner.Step{{Agent: "SearchAgent", Action: "Search for x"}}}, "plan"},
		{StepStatus{Action: "Search for x", Status: StatusCompleted}, "status_update"},
		{Log{Agent: "System", Message: "All tasks done!", Level: LevelSuccess}, "log"},
	}

	for _, tt := range tests {
		data, err := Marshal(tt.event)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatal(err)
		}
		if m["type"] != tt.kind {
			t.Errorf("type = %v, want %s", m["type"], tt.kind)
		}
	}
}

func TestMarshalLogWireShape(t *testing.T) {
	data, err := Marshal(Log{Agent: "KnowledgeAgent", Message: "saved", Level: LevelInfo})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m["agent"] != "KnowledgeAgent" || m["message"] != "saved" || m["log_type"] != "info" {
		t.Errorf("unexpected wire shape: %s", data)
	}
}
