package welch

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-features/internal/testutil"
)

func TestNewEstimatorValidation(t *testing.T) {
	tests := []struct {
		name    string
		fs      float64
		segLen  int
		overlap int
	}{
		{"zero_fs", 0, 256, 128},
		{"negative_fs", -1, 256, 128},
		{"zero_seglen", 1000, 0, 0},
		{"negative_overlap", 1000, 256, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEstimator(tt.fs, tt.segLen, tt.overlap); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestEstimateShortInput(t *testing.T) {
	e, err := NewEstimator(1000, 256, 128)
	if err != nil {
		t.Fatalf("NewEstimator: %v", err)
	}

	freq, psd := e.Estimate(make([]float64, 255))
	if freq != nil || psd != nil {
		t.Fatal("expected nil results when no full segment fits")
	}
}

func TestEstimateOutputShape(t *testing.T) {
	const (
		fs     = 1000.0
		segLen = 256
	)

	e, err := NewEstimator(fs, segLen, 128)
	if err != nil {
		t.Fatalf("NewEstimator: %v", err)
	}

	sig := testutil.DeterministicNoise(1, 1.0, 1024)
	freq, psd := e.Estimate(sig)

	if len(freq) != segLen/2+1 || len(psd) != segLen/2+1 {
		t.Fatalf("lengths = %d, %d, want %d", len(freq), len(psd), segLen/2+1)
	}

	if freq[0] != 0 {
		t.Fatalf("freq[0] = %v, want 0", freq[0])
	}

	// Nyquist bin.
	if math.Abs(freq[len(freq)-1]-fs/2) > 1e-9 {
		t.Fatalf("freq[last] = %v, want %v", freq[len(freq)-1], fs/2)
	}

	binWidth := fs / float64(segLen)
	if math.Abs(freq[1]-binWidth) > 1e-9 {
		t.Fatalf("freq[1] = %v, want %v", freq[1], binWidth)
	}

	for k, v := range psd {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("psd[%d] = %v, want finite non-negative", k, v)
		}
	}
}

func TestEstimateSinePeak(t *testing.T) {
	const (
		fs     = 1024.0
		segLen = 256
		f0     = 64.0 // exactly bin 16 of a 256-point segment at fs=1024
	)

	e, err := NewEstimator(fs, segLen, 128)
	if err != nil {
		t.Fatalf("NewEstimator: %v", err)
	}

	sig := testutil.DeterministicSine(f0, fs, 1.0, 2048)
	freq, psd := e.Estimate(sig)

	peak := 0
	for k := range psd {
		if psd[k] > psd[peak] {
			peak = k
		}
	}

	wantBin := int(f0 / fs * segLen)
	if peak != wantBin {
		t.Fatalf("peak bin = %d (%.1f Hz), want %d (%.1f Hz)", peak, freq[peak], wantBin, f0)
	}
}

func TestEstimateTotalPowerMatchesVariance(t *testing.T) {
	const (
		fs     = 1000.0
		segLen = 256
	)

	sig := testutil.DeterministicNoise(7, 1.0, 8192)

	mean := 0.0
	for _, v := range sig {
		mean += v
	}
	mean /= float64(len(sig))

	variance := 0.0
	for _, v := range sig {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(sig))

	freq, psd := func() ([]float64, []float64) {
		e, err := NewEstimator(fs, segLen, 128)
		if err != nil {
			t.Fatalf("NewEstimator: %v", err)
		}
		return e.Estimate(sig)
	}()

	// Integrate PSD over the one-sided grid; for zero-mean white noise this
	// recovers signal power to within periodogram variance.
	binWidth := freq[1] - freq[0]
	total := 0.0
	for _, v := range psd {
		total += v * binWidth
	}

	if math.Abs(total-variance)/variance > 0.25 {
		t.Fatalf("integrated PSD = %v, signal variance = %v", total, variance)
	}
}

func TestEstimateOneShotMatchesEstimator(t *testing.T) {
	const (
		fs     = 500.0
		segLen = 128
	)

	sig := testutil.DeterministicNoise(3, 1.0, 512)

	e, err := NewEstimator(fs, segLen, 64)
	if err != nil {
		t.Fatalf("NewEstimator: %v", err)
	}
	f1, p1 := e.Estimate(sig)

	f2, p2, err := Estimate(sig, fs, segLen, 64)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, f2, f1, 1e-12)
	testutil.RequireSliceNearlyEqual(t, p2, p1, 1e-12)
}

func TestEstimatorRepeatedCallsIdentical(t *testing.T) {
	e, err := NewEstimator(1000, 128, 64)
	if err != nil {
		t.Fatalf("NewEstimator: %v", err)
	}

	sig := testutil.DeterministicSine(100, 1000, 1.0, 512)

	_, first := e.Estimate(sig)
	_, second := e.Estimate(sig)

	testutil.RequireSliceNearlyEqual(t, second, first, 1e-12)
}
