package mqtt

import "testing"

func TestRingBufferEmptyDrain(t *testing.T) {
	rb := newRingBuffer(10)
	got := rb.drainAll()
	if got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestRingBufferPushAndDrain(t *testing.T) {
	rb := newRingBuffer(10)
	for i := 0; i < 5; i++ {
		rb.push(bufferedMsg{topic: Topic, payload: []byte{byte(i)}})
	}

	if rb.len() != 5 {
		t.Fatalf("expected len 5, got %d", rb.len())
	}

	got := rb.drainAll()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := 0; i < 5; i++ {
		if got[i].payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, got[i].payload[0])
		}
	}

	// Second drain should be empty
	got2 := rb.drainAll()
	if got2 != nil {
		t.Errorf("expected nil from second drain, got %d items", len(got2))
	}
}

func TestRingBufferOverflowKeepsNewest(t *testing.T) {
	capacity := 5
	rb := newRingBuffer(capacity)

	// Push capacity+3 items (0..7); the buffer should keep the most
	// recent 5 (3..7) in order.
	for i := 0; i < capacity+3; i++ {
		rb.push(bufferedMsg{topic: Topic, payload: []byte{byte(i)}})
	}

	got := rb.drainAll()
	if len(got) != capacity {
		t.Fatalf("expected %d items, got %d", capacity, len(got))
	}
	for i := 0; i < capacity; i++ {
		want := byte(i + 3)
		if got[i].payload[0] != want {
			t.Errorf("item %d: expected payload %d, got %d", i, want, got[i].payload[0])
		}
	}
}

func TestRingBufferPreservesMessageFields(t *testing.T) {
	rb := newRingBuffer(2)
	rb.push(bufferedMsg{topic: TopicSystem, payload: []byte("x"), qos: 1, retained: true})

	got := rb.drainAll()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].topic != TopicSystem || got[0].qos != 1 || !got[0].retained {
		t.Errorf("fields not preserved: %+v", got[0])
	}
}

func TestRingBufferReuseAfterDrain(t *testing.T) {
	rb := newRingBuffer(3)
	rb.push(bufferedMsg{payload: []byte{1}})
	rb.drainAll()

	rb.push(bufferedMsg{payload: []byte{2}})
	rb.push(bufferedMsg{payload: []byte{3}})

	got := rb.drainAll()
	if len(got) != 2 {
		t.Fatalf("expected 2 items after reuse, got %d", len(got))
	}
	if got[0].payload[0] != 2 || got[1].payload[0] != 3 {
		t.Errorf("unexpected order after reuse: %v %v", got[0].payload, got[1].payload)
	}
}
