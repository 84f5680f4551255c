package feature

import (
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-features/internal/testutil"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for zero window size")
	}
	if _, err := New(-3); err == nil {
		t.Fatal("expected error for negative window size")
	}
	if _, err := New(64, WithHistoryForZ(4)); err == nil {
		t.Fatal("expected error for history depth below 5")
	}
}

func TestTryPushFillingPhase(t *testing.T) {
	p, err := New(16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ts := time.Unix(0, 0)
	for i := 0; i < 15; i++ {
		if vec, ok := p.TryPush(float64(i), ts); ok || vec != nil {
			t.Fatalf("push %d: got ready vector before window full", i)
		}
	}

	vec, ok := p.TryPush(15, ts)
	if !ok || vec == nil {
		t.Fatal("16th push should produce a vector")
	}
	if !vec.Ready() {
		t.Fatal("vector not flagged ready")
	}
	if vec.WindowSize != 16 {
		t.Fatalf("WindowSize = %d, want 16", vec.WindowSize)
	}
}

func TestTryPushVectorReused(t *testing.T) {
	p, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ts := time.Unix(100, 0)
	var first *Vector
	for i := 0; i < 8; i++ {
		first, _ = p.TryPush(float64(i), ts)
	}

	second, ok := p.TryPush(99, ts.Add(time.Second))
	if !ok {
		t.Fatal("expected ready vector")
	}

	if first != second {
		t.Fatal("pipeline should reuse its vector across ticks")
	}
	if !second.Timestamp.Equal(ts.Add(time.Second)) {
		t.Fatalf("Timestamp = %v, want %v", second.Timestamp, ts.Add(time.Second))
	}
}

func TestTryPushTransformOrder(t *testing.T) {
	// Two first-difference passes must compose: the second differences the
	// output of the first.
	p, err := New(4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Use(FirstDifference{}).Use(FirstDifference{})

	probe := &windowProbe{}
	p.UseExtractor(probe)

	ts := time.Unix(0, 0)
	for _, v := range []float64{1, 3, 6, 10} {
		p.TryPush(v, ts)
	}

	// diffs: [0 2 3 4]; second diff: [0 2 1 1]
	want := []float64{0, 2, 1, 1}
	for i, v := range probe.window {
		if v != want[i] {
			t.Fatalf("window[%d] = %v, want %v", i, v, want[i])
		}
	}
}

type windowProbe struct {
	window []float64
	calls  int
}

func (w *windowProbe) Extract(window []float64, _ *Vector) {
	w.window = append(w.window[:0], window...)
	w.calls++
}

func TestZScoreInsufficientHistory(t *testing.T) {
	p, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sig := testutil.GaussianNoise(1, 1.0, 11)

	ts := time.Unix(0, 0)
	ready := 0
	for _, v := range sig {
		vec, ok := p.TryPush(v, ts)
		if !ok {
			continue
		}
		ready++

		if ready < 5 {
			if vec.SlopeZ != 0 || vec.VolZ != 0 {
				t.Fatalf("tick %d: z-scores (%v, %v) before 5 history entries", ready, vec.SlopeZ, vec.VolZ)
			}
		}
	}

	if ready != 4 {
		t.Fatalf("ready ticks = %d, want 4", ready)
	}
}

func TestZScoreConstantHistoryIsZero(t *testing.T) {
	p, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// A constant stream keeps slope and volatility pinned; spread is zero
	// so z-scores stay 0 no matter how deep the history grows.
	ts := time.Unix(0, 0)
	for i := 0; i < 50; i++ {
		vec, ok := p.TryPush(1.0, ts)
		if !ok {
			continue
		}
		if vec.SlopeZ != 0 || vec.VolZ != 0 {
			t.Fatalf("z-scores (%v, %v), want 0 for degenerate history", vec.SlopeZ, vec.VolZ)
		}
	}
}

func TestZScoreReactsToRegimeChange(t *testing.T) {
	p, err := New(32)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ts := time.Unix(0, 0)

	// Quiet phase establishes a low-volatility history.
	quiet := testutil.GaussianNoise(2, 0.1, 200)
	var vec *Vector
	for _, v := range quiet {
		vec, _ = p.TryPush(v, ts)
	}

	quietVolZ := vec.VolZ

	// Loud burst should push volatility well above its history.
	loud := testutil.GaussianNoise(3, 5.0, 32)
	for _, v := range loud {
		vec, _ = p.TryPush(v, ts)
	}

	if vec.VolZ <= quietVolZ || vec.VolZ < 1.0 {
		t.Fatalf("VolZ = %v after burst (quiet %v), want a clear positive excursion", vec.VolZ, quietVolZ)
	}
}

func TestHistoryBounded(t *testing.T) {
	h := newHistory(5)

	for i := 0; i < 100; i++ {
		h.push(float64(i))
	}

	if h.count != 5 {
		t.Fatalf("count = %d, want 5", h.count)
	}

	// Queue now holds 95..99; z-score of the newest value is positive.
	if z := h.zScore(99); z <= 0 {
		t.Fatalf("zScore = %v, want > 0", z)
	}
}

func TestPipelineEndToEndFractal(t *testing.T) {
	const windowSize = 256

	p, err := New(windowSize)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Use(FirstDifference{}).
		UseExtractor(HurstDFAExtractor{}).
		UseExtractor(NewHiguchiExtractor(8))

	sig := testutil.SinePlusNoise(5, 256, 1.0, 0.3, 77, 512)

	ts := time.Unix(0, 0)
	ready := 0
	for i, v := range sig {
		vec, ok := p.TryPush(v, ts)
		ts = ts.Add(time.Second)

		if i < windowSize-1 {
			if ok {
				t.Fatalf("push %d: ready before window full", i)
			}
			continue
		}

		if !ok {
			t.Fatalf("push %d: not ready after window full", i)
		}
		ready++

		if vec.Flags&FlagReady == 0 {
			t.Fatal("ready flag not set")
		}

		for name, f := range map[string]float64{
			"FitR2":     vec.FitR2,
			"Hurst":     vec.Hurst,
			"HiguchiFD": vec.HiguchiFD,
			"SlopeZ":    vec.SlopeZ,
			"VolZ":      vec.VolZ,
		} {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				t.Fatalf("push %d: %s = %v, want finite", i, name, f)
			}
		}

		testutil.RequireInRange(t, "Hurst", vec.Hurst, 0, 1)
		testutil.RequireInRange(t, "HiguchiFD", vec.HiguchiFD, 1, 2)
	}

	if ready != 512-windowSize+1 {
		t.Fatalf("ready ticks = %d, want %d", ready, 512-windowSize+1)
	}
}

func TestPipelineNaNPassthrough(t *testing.T) {
	p, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ts := time.Unix(0, 0)
	for i := 0; i < 7; i++ {
		p.TryPush(float64(i), ts)
	}

	vec, ok := p.TryPush(math.NaN(), ts)
	if !ok {
		t.Fatal("expected ready vector")
	}

	// The contaminated window must still produce a vector; the NaN shows up
	// in the numeric fields rather than aborting the tick.
	if !vec.Ready() {
		t.Fatal("ready flag not set")
	}
}

func TestPipelineChaining(t *testing.T) {
	p, err := New(64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := p.Use(FirstDifference{}).UseExtractor(HurstDFAExtractor{}); got != p {
		t.Fatal("Use/UseExtractor must return the receiver")
	}
}
