package mqtt

import (
	"testing"
)

func TestOutboxEmptyDrain(t *testing.T) {
	o := newOutbox(10)
	got, dropped := o.drain()
	if got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
	if dropped != 0 {
		t.Errorf("expected 0 dropped, got %d", dropped)
	}
}

func TestOutboxKeepsOrder(t *testing.T) {
	o := newOutbox(10)
	for i := 0; i < 5; i++ {
		if o.add(pendingMsg{topic: "t", payload: []byte{byte(i)}}) {
			t.Fatalf("add %d: unexpected drop", i)
		}
	}

	got, _ := o.drain()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i, msg := range got {
		if msg.payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, msg.payload[0])
		}
	}
	if o.len() != 0 {
		t.Errorf("expected empty after drain, got %d", o.len())
	}
}

func TestOutboxDropsOldest(t *testing.T) {
	o := newOutbox(3)
	drops := 0
	for i := 0; i < 5; i++ {
		if o.add(pendingMsg{payload: []byte{byte(i)}}) {
			drops++
		}
	}
	if drops != 2 {
		t.Errorf("expected 2 drops, got %d", drops)
	}

	got, dropped := o.drain()
	if dropped != 2 {
		t.Errorf("expected dropped=2, got %d", dropped)
	}
	want := []byte{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for i, msg := range got {
		if msg.payload[0] != want[i] {
			t.Errorf("item %d: expected %d, got %d", i, want[i], msg.payload[0])
		}
	}

	// drop counter resets with the drain
	o.add(pendingMsg{})
	if _, dropped := o.drain(); dropped != 0 {
		t.Errorf("expected dropped reset, got %d", dropped)
	}
}

func TestOutboxReuseAfterDrain(t *testing.T) {
	o := newOutbox(4)
	for i := 0; i < 3; i++ {
		o.add(pendingMsg{payload: []byte{byte(i)}})
	}
	o.drain()

	for i := 10; i < 14; i++ {
		o.add(pendingMsg{payload: []byte{byte(i)}})
	}
	got, _ := o.drain()
	if len(got) != 4 {
		t.Fatalf("expected 4 items, got %d", len(got))
	}
	for i, msg := range got {
		if msg.payload[0] != byte(10+i) {
			t.Errorf("item %d: expected %d, got %d", i, 10+i, msg.payload[0])
		}
	}
}

func TestOutboxPreservesFields(t *testing.T) {
	o := newOutbox(2)
	o.add(pendingMsg{
		topic:    TopicSystem,
		payload:  []byte(`{"test":true}`),
		qos:      1,
		retained: true,
	})

	got, _ := o.drain()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	m := got[0]
	if m.topic != TopicSystem || string(m.payload) != `{"test":true}` || m.qos != 1 || !m.retained {
		t.Errorf("fields not preserved: %+v", m)
	}
}

func TestOutboxMinimumCapacity(t *testing.T) {
	o := newOutbox(0)
	o.add(pendingMsg{payload: []byte{1}})
	o.add(pendingMsg{payload: []byte{2}})
	got, dropped := o.drain()
	if len(got) != 1 || got[0].payload[0] != 2 || dropped != 1 {
		t.Errorf("got %v dropped=%d", got, dropped)
	}
}
