package feature

import (
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-features/dsp/welch"
	"github.com/cwbudde/algo-features/internal/testutil"
	"github.com/cwbudde/algo-features/stats/spectral"
)

func TestSpectralSlopeExtractorValidation(t *testing.T) {
	if _, err := NewSpectralSlopeExtractor(0, 256, 128, 1); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := NewSpectralSlopeExtractor(1000, 0, 0, 1); err == nil {
		t.Fatal("expected error for zero segment length")
	}
}

func TestSpectralSlopeExtractorWhiteNoise(t *testing.T) {
	ex, err := NewSpectralSlopeExtractor(1000, 256, 128, 1)
	if err != nil {
		t.Fatalf("NewSpectralSlopeExtractor: %v", err)
	}

	window := testutil.GaussianNoise(3, 1.0, 1024)
	vec := Vector{FitR2: 1}

	ex.Extract(window, &vec)

	// White noise is spectrally flat: beta near 0.
	testutil.RequireInRange(t, "SpectralBeta", vec.SpectralBeta, -0.5, 0.5)
}

func TestSpectralSlopeExtractorShortWindow(t *testing.T) {
	ex, err := NewSpectralSlopeExtractor(1000, 256, 128, 1)
	if err != nil {
		t.Fatalf("NewSpectralSlopeExtractor: %v", err)
	}

	window := make([]float64, 100)
	vec := Vector{FitR2: 1}

	ex.Extract(window, &vec)

	if vec.SpectralBeta != 0 {
		t.Fatalf("SpectralBeta = %v, want 0", vec.SpectralBeta)
	}
	if _, _, ok := ex.PSD(window); ok {
		t.Fatal("PSD cache should miss after a failed estimate")
	}
}

func TestPSDProviderCacheHitAndMiss(t *testing.T) {
	ex, err := NewSpectralSlopeExtractor(1000, 256, 128, 1)
	if err != nil {
		t.Fatalf("NewSpectralSlopeExtractor: %v", err)
	}

	window := testutil.GaussianNoise(5, 1.0, 512)
	vec := Vector{FitR2: 1}

	ex.Extract(window, &vec)

	if _, psd, ok := ex.PSD(window); !ok || psd == nil {
		t.Fatal("expected cache hit for the extracted window slice")
	}

	// Same content, different backing array: identity-based cache must miss.
	clone := make([]float64, len(window))
	copy(clone, window)
	if _, _, ok := ex.PSD(clone); ok {
		t.Fatal("expected cache miss for a different slice")
	}
}

func TestShapeExtractorReusesProviderPSD(t *testing.T) {
	const (
		fs      = 1000.0
		segLen  = 128
		overlap = 64
	)

	slope, err := NewSpectralSlopeExtractor(fs, segLen, overlap, 1)
	if err != nil {
		t.Fatalf("NewSpectralSlopeExtractor: %v", err)
	}

	shape, err := NewSpectralShapeExtractor(fs, segLen, overlap, slope)
	if err != nil {
		t.Fatalf("NewSpectralShapeExtractor: %v", err)
	}

	window := testutil.SinePlusNoise(125, fs, 1.0, 0.1, 9, 512)

	vec := Vector{FitR2: 1}
	slope.Extract(window, &vec)
	shape.Extract(window, &vec)

	// Reference: shape features from an independently computed PSD with the
	// same parameters.
	freq, psd, err := welch.Estimate(window, fs, segLen, overlap)
	if err != nil {
		t.Fatalf("welch.Estimate: %v", err)
	}
	want := spectral.Shape(freq, psd)

	if math.Abs(vec.SpectralEntropy-want.Entropy) > 1e-9 {
		t.Fatalf("SpectralEntropy = %v, want %v", vec.SpectralEntropy, want.Entropy)
	}
	if math.Abs(vec.SpectralFlatness-want.Flatness) > 1e-9 {
		t.Fatalf("SpectralFlatness = %v, want %v", vec.SpectralFlatness, want.Flatness)
	}
	if math.Abs(vec.TopPeakHz-want.PeakHz) > 1e-9 {
		t.Fatalf("TopPeakHz = %v, want %v", vec.TopPeakHz, want.PeakHz)
	}
	if math.Abs(vec.PeakPowerRatio-want.PeakPowerRatio) > 1e-9 {
		t.Fatalf("PeakPowerRatio = %v, want %v", vec.PeakPowerRatio, want.PeakPowerRatio)
	}
}

func TestShapeExtractorStandalone(t *testing.T) {
	const fs = 1000.0

	shape, err := NewSpectralShapeExtractor(fs, 128, 64, nil)
	if err != nil {
		t.Fatalf("NewSpectralShapeExtractor: %v", err)
	}

	window := testutil.SinePlusNoise(100, fs, 1.0, 0.1, 11, 512)
	vec := Vector{FitR2: 1}

	shape.Extract(window, &vec)

	if math.Abs(vec.TopPeakHz-100) > 50 {
		t.Fatalf("TopPeakHz = %v, want within 50%% of 100", vec.TopPeakHz)
	}
	testutil.RequireInRange(t, "PeakPowerRatio", vec.PeakPowerRatio, 0.10, 1.0)
	testutil.RequireInRange(t, "SpectralFlatness", vec.SpectralFlatness, 0, 0.6)
}

func TestSpectralExtractorsInPipeline(t *testing.T) {
	const (
		fs         = 1000.0
		windowSize = 512
	)

	slope, err := NewSpectralSlopeExtractor(fs, 128, 64, 1)
	if err != nil {
		t.Fatalf("NewSpectralSlopeExtractor: %v", err)
	}
	shape, err := NewSpectralShapeExtractor(fs, 128, 64, slope)
	if err != nil {
		t.Fatalf("NewSpectralShapeExtractor: %v", err)
	}

	p, err := New(windowSize)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.UseExtractor(slope).UseExtractor(shape)

	sig := testutil.SinePlusNoise(125, fs, 1.0, 0.1, 13, windowSize+10)

	ts := time.Unix(0, 0)
	var last *Vector
	for _, v := range sig {
		if vec, ok := p.TryPush(v, ts); ok {
			last = vec
		}
		ts = ts.Add(time.Millisecond)
	}

	if last == nil {
		t.Fatal("pipeline never became ready")
	}
	if math.Abs(last.TopPeakHz-125) > 63 {
		t.Fatalf("TopPeakHz = %v, want near 125", last.TopPeakHz)
	}
	testutil.RequireInRange(t, "PeakPowerRatio", last.PeakPowerRatio, 0.10, 1.0)
}
