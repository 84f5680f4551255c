package buffer

import "testing"

func TestPoolGetZeroed(t *testing.T) {
	p := NewPool()

	b := p.Get(8)
	if b.Len() != 8 {
		t.Fatalf("Len = %d, want 8", b.Len())
	}

	for i := range b.Samples() {
		b.Samples()[i] = 1
	}
	p.Put(b)

	// A pooled buffer must come back zeroed regardless of prior contents.
	b2 := p.Get(8)
	for i, v := range b2.Samples() {
		if v != 0 {
			t.Fatalf("reused buffer not zeroed at %d: %v", i, v)
		}
	}
	p.Put(b2)
}

func TestPoolPutNil(t *testing.T) {
	p := NewPool()
	p.Put(nil) // must not panic
}
