package buffer

import "testing"

func TestNewBuffer(t *testing.T) {
	b := New(4)
	if b.Len() != 4 {
		t.Fatalf("Len = %d, want 4", b.Len())
	}

	for i, v := range b.Samples() {
		if v != 0 {
			t.Fatalf("samples[%d] = %v, want 0", i, v)
		}
	}

	if New(-1).Len() != 0 {
		t.Fatal("negative length should clamp to 0")
	}
}

func TestFromSliceShares(t *testing.T) {
	s := []float64{1, 2, 3}
	b := FromSlice(s)

	b.Samples()[0] = 9
	if s[0] != 9 {
		t.Fatal("FromSlice must not copy")
	}
}

func TestResizeZeroesNewTail(t *testing.T) {
	b := New(2)
	b.Samples()[0] = 1
	b.Samples()[1] = 2

	// Shrink then grow within capacity: the exposed tail must be zeroed even
	// though the backing array still holds stale values.
	b.Resize(1)
	b.Resize(2)

	if b.Samples()[1] != 0 {
		t.Fatalf("stale tail value: %v", b.Samples()[1])
	}

	b.Resize(5)
	if b.Len() != 5 {
		t.Fatalf("Len = %d, want 5", b.Len())
	}
	for i := 2; i < 5; i++ {
		if b.Samples()[i] != 0 {
			t.Fatalf("samples[%d] = %v, want 0", i, b.Samples()[i])
		}
	}
}

func TestCopyIsDeep(t *testing.T) {
	b := FromSlice([]float64{1, 2})
	c := b.Copy()

	c.Samples()[0] = 5
	if b.Samples()[0] != 1 {
		t.Fatal("Copy must be deep")
	}
}
