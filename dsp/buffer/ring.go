package buffer

import "fmt"

// Ring is a fixed-capacity circular store of the most recent samples.
//
// Once full, each Push overwrites the oldest element (FIFO eviction).
// Reads via CopyTo are non-destructive and always chronological, regardless
// of where the write cursor currently sits. Ring is not safe for concurrent
// use; one logical owner must serialize all calls.
type Ring struct {
	data   []float64
	cursor int
	count  int
}

// NewRing returns an empty ring holding up to capacity samples.
// It panics if capacity is not positive; the capacity is a structural
// property fixed for the lifetime of the ring.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		panic(fmt.Sprintf("buffer: ring capacity must be > 0: %d", capacity))
	}

	return &Ring{data: make([]float64, capacity)}
}

// Push appends v, evicting the oldest sample once the ring is full. O(1).
func (r *Ring) Push(v float64) {
	r.data[r.cursor] = v
	r.cursor = (r.cursor + 1) % len(r.data)

	if r.count < len(r.data) {
		r.count++
	}
}

// Count returns the number of samples currently stored.
func (r *Ring) Count() int { return r.count }

// Capacity returns the fixed capacity of the ring.
func (r *Ring) Capacity() int { return len(r.data) }

// Full reports whether the ring holds Capacity samples.
func (r *Ring) Full() bool { return r.count == len(r.data) }

// CopyTo copies the stored samples into dst[0:Count()], oldest first, and
// returns the number of samples written. The ring itself is not modified, so
// repeated calls yield identical snapshots until the next Push.
//
// It panics if len(dst) < Count(); an undersized destination is a caller
// bug, not a runtime condition.
func (r *Ring) CopyTo(dst []float64) int {
	if len(dst) < r.count {
		panic(fmt.Sprintf("buffer: ring CopyTo destination too small: %d < %d", len(dst), r.count))
	}

	if r.count < len(r.data) {
		// Not yet wrapped: samples live in data[0:count].
		copy(dst[:r.count], r.data[:r.count])
		return r.count
	}

	// Full ring: oldest sample is at the cursor.
	n := copy(dst, r.data[r.cursor:])
	copy(dst[n:r.count], r.data[:r.cursor])

	return r.count
}
