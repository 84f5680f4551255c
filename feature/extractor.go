package feature

import (
	"github.com/cwbudde/algo-features/stats/fractal"
)

// Extractor computes one or more feature fields from a transformed window
// snapshot and writes them into the shared per-tick vector. Extractors run
// in registration order; an extractor that consumes another's output (see
// SpectralShapeExtractor) must be registered after its producer.
//
// The window slice is owned by the pipeline and valid only for the duration
// of the call.
type Extractor interface {
	Extract(window []float64, vec *Vector)
}

// HurstDFAExtractor writes the detrended-fluctuation Hurst exponent into
// Vector.Hurst and folds the fit quality into Vector.FitR2.
type HurstDFAExtractor struct{}

func (HurstDFAExtractor) Extract(window []float64, vec *Vector) {
	h, r2, scales := fractal.HurstDFA(window)

	vec.Hurst = h
	if scales >= 3 {
		vec.MergeFitR2(r2)
	}
}

// HiguchiExtractor writes the Higuchi fractal dimension into
// Vector.HiguchiFD.
type HiguchiExtractor struct {
	kMax int
}

// NewHiguchiExtractor returns an extractor with the given maximum stride;
// kMax <= 0 selects the default of 8.
func NewHiguchiExtractor(kMax int) *HiguchiExtractor {
	if kMax <= 0 {
		kMax = fractal.DefaultHiguchiKMax
	}

	return &HiguchiExtractor{kMax: kMax}
}

func (e *HiguchiExtractor) Extract(window []float64, vec *Vector) {
	vec.HiguchiFD = fractal.Higuchi(window, e.kMax)
}
