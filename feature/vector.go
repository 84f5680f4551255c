// Package feature turns a stream of scalar samples into windowed feature
// vectors. A Pipeline owns a ring buffer of the most recent samples; once the
// window is full, every pushed sample produces a snapshot that is run through
// registered transforms, a linear-trend baseline with rolling z-scores, and a
// chain of feature extractors.
package feature

import "time"

// FlagReady marks a Vector whose window was complete when it was produced.
const FlagReady uint32 = 0x1

// Vector is the per-tick feature record.
//
// The pipeline owns a single Vector and reuses it on every tick: each
// extractor writes only the fields it is responsible for, and the contents
// are valid only until the next TryPush. Callers that retain vectors must
// copy them.
type Vector struct {
	// Timestamp is the time passed to the TryPush that produced this vector.
	Timestamp time.Time

	// WindowSize is the number of samples the features were computed over.
	WindowSize int

	// FitR2 is the worst goodness-of-fit seen across the baseline trend and
	// any log-log fits the extractors performed. Low values mean at least
	// one estimate is poorly conditioned.
	FitR2 float64

	// Hurst is the DFA Hurst exponent in [0, 1]. Written by
	// HurstDFAExtractor.
	Hurst float64

	// HiguchiFD is the Higuchi fractal dimension in [1, 2]. Written by
	// HiguchiExtractor.
	HiguchiFD float64

	// SpectralBeta is the 1/f^beta spectral slope. Written by
	// SpectralSlopeExtractor.
	SpectralBeta float64

	// SpectralEntropy, SpectralFlatness, TopPeakHz, and PeakPowerRatio
	// describe the power distribution of the window. Written by
	// SpectralShapeExtractor.
	SpectralEntropy  float64
	SpectralFlatness float64
	TopPeakHz        float64
	PeakPowerRatio   float64

	// SlopeZ and VolZ are the baseline trend slope and window volatility
	// expressed as z-scores against their recent history.
	SlopeZ float64
	VolZ   float64

	// Flags carries bit flags; FlagReady is set on every complete vector.
	Flags uint32
}

// Ready reports whether the vector was produced from a complete window.
func (v *Vector) Ready() bool {
	return v.Flags&FlagReady != 0
}

// MergeFitR2 lowers FitR2 to r2 if r2 is smaller. Extractors call this after
// their own fits so FitR2 tracks the weakest fit of the tick.
func (v *Vector) MergeFitR2(r2 float64) {
	if r2 < v.FitR2 {
		v.FitR2 = r2
	}
}
