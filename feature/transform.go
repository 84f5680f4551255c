package feature

import (
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-features/dsp/core"
)

// Transformer mutates a window snapshot in place before feature extraction.
// Transforms run in registration order; each sees the output of the previous
// one.
type Transformer interface {
	Apply(window []float64)
}

// FirstDifference replaces each sample with its difference from the previous
// one, turning a trending series into an approximately stationary one for
// the fractal estimators. The first sample, which has no predecessor inside
// the window, becomes 0.
type FirstDifference struct{}

// Apply differences the window in place. The traversal runs right to left so
// each subtraction still sees the untouched previous value.
func (FirstDifference) Apply(window []float64) {
	for i := len(window) - 1; i > 0; i-- {
		window[i] -= window[i-1]
	}

	if len(window) > 0 {
		window[0] = 0
	}
}

// LogReturn replaces each sample with the log ratio to its predecessor,
// flooring values at epsilon so non-positive samples stay defined. The first
// sample becomes 0.
type LogReturn struct{}

// Apply computes log returns in place, right to left.
func (LogReturn) Apply(window []float64) {
	for i := len(window) - 1; i > 0; i-- {
		window[i] = math.Log(math.Max(core.Epsilon, window[i])) -
			math.Log(math.Max(core.Epsilon, window[i-1]))
	}

	if len(window) > 0 {
		window[0] = 0
	}
}

// Winsorize clamps every sample into the [pLow, pHigh] quantile range of the
// window, limiting the influence of outliers on downstream fits.
//
// A Winsorize instance reuses an internal sort scratch and must not be shared
// across pipelines running on different goroutines.
type Winsorize struct {
	pLow    float64
	pHigh   float64
	scratch []float64
}

// NewWinsorize validates the quantile bounds and returns the transform.
func NewWinsorize(pLow, pHigh float64) (*Winsorize, error) {
	if pLow < 0 || pHigh > 1 || pLow >= pHigh {
		return nil, fmt.Errorf("feature: winsorize quantiles must satisfy 0 <= pLow < pHigh <= 1: %v, %v", pLow, pHigh)
	}

	return &Winsorize{pLow: pLow, pHigh: pHigh}, nil
}

// DefaultWinsorize clamps at the 1st and 99th percentiles.
func DefaultWinsorize() *Winsorize {
	return &Winsorize{pLow: 0.01, pHigh: 0.99}
}

// Apply clamps the window into its own quantile range. Quantiles are taken
// from a sorted copy with linear interpolation between order statistics.
func (w *Winsorize) Apply(window []float64) {
	n := len(window)
	if n < 2 {
		return
	}

	w.scratch = core.EnsureLen(w.scratch, n)
	core.CopyInto(w.scratch, window)
	sort.Float64s(w.scratch)

	lo := quantileSorted(w.scratch, w.pLow)
	hi := quantileSorted(w.scratch, w.pHigh)

	for i, v := range window {
		window[i] = core.Clamp(v, lo, hi)
	}
}

// quantileSorted interpolates the p-quantile of an ascending slice.
func quantileSorted(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := lo + 1

	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	frac := pos - float64(lo)

	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
