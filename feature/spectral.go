package feature

import (
	"github.com/cwbudde/algo-features/dsp/welch"
	"github.com/cwbudde/algo-features/stats/spectral"
)

// PSDProvider exposes a PSD computed earlier in the same tick so a later
// extractor can skip its own FFT pass.
//
// The contract is intentionally narrow: the provider answers only for the
// exact window slice it last processed, and the returned slices are valid
// only until the provider's next Extract call.
type PSDProvider interface {
	PSD(window []float64) (freq, psd []float64, ok bool)
}

// SpectralSlopeExtractor estimates the Welch PSD of the window, writes the
// 1/f^beta slope into Vector.SpectralBeta, and caches the PSD for the tick.
//
// It implements PSDProvider, so a SpectralShapeExtractor constructed with a
// reference to it can reuse the spectrum instead of recomputing it. For the
// cache to hit, this extractor must be registered before the consumer. The
// cache is per-instance state; never share one extractor across pipelines.
type SpectralSlopeExtractor struct {
	est       *welch.Estimator
	fMaxRatio float64

	cacheWindow []float64
	cacheFreq   []float64
	cachePSD    []float64
}

// NewSpectralSlopeExtractor validates the Welch parameters and the fit band.
// fMaxRatio bounds the slope fit to frequencies at or below
// fMaxRatio*Nyquist; values outside (0, 1] select the full band.
func NewSpectralSlopeExtractor(fs float64, segLen, overlap int, fMaxRatio float64) (*SpectralSlopeExtractor, error) {
	est, err := welch.NewEstimator(fs, segLen, overlap)
	if err != nil {
		return nil, err
	}

	if fMaxRatio <= 0 || fMaxRatio > 1 {
		fMaxRatio = 1
	}

	return &SpectralSlopeExtractor{est: est, fMaxRatio: fMaxRatio}, nil
}

func (e *SpectralSlopeExtractor) Extract(window []float64, vec *Vector) {
	freq, psd := e.est.Estimate(window)

	e.cacheWindow = window
	e.cacheFreq = freq
	e.cachePSD = psd

	if psd == nil {
		vec.SpectralBeta = 0
		return
	}

	beta, r2 := spectral.SlopeBeta(freq, psd, e.fMaxRatio)

	vec.SpectralBeta = beta
	if beta != 0 || r2 != 0 {
		vec.MergeFitR2(r2)
	}
}

// PSD returns the cached spectrum if window is the same slice that Extract
// last processed. Identity, not content, decides the hit: the pipeline
// passes the one scratch window to every extractor in a tick, so matching
// the backing array is both cheap and exact.
func (e *SpectralSlopeExtractor) PSD(window []float64) (freq, psd []float64, ok bool) {
	if e.cachePSD == nil || !sameSlice(window, e.cacheWindow) {
		return nil, nil, false
	}

	return e.cacheFreq, e.cachePSD, true
}

// SpectralShapeExtractor writes the distributional spectrum features
// (entropy, flatness, peak location and concentration) into the vector.
//
// With a provider configured it asks for the tick's PSD first and only
// computes its own Welch estimate on a miss, so the extractor works both
// standalone and downstream of a SpectralSlopeExtractor.
type SpectralShapeExtractor struct {
	est      *welch.Estimator
	provider PSDProvider
}

// NewSpectralShapeExtractor validates the fallback Welch parameters.
// provider may be nil, in which case every tick computes its own PSD.
func NewSpectralShapeExtractor(fs float64, segLen, overlap int, provider PSDProvider) (*SpectralShapeExtractor, error) {
	est, err := welch.NewEstimator(fs, segLen, overlap)
	if err != nil {
		return nil, err
	}

	return &SpectralShapeExtractor{est: est, provider: provider}, nil
}

func (e *SpectralShapeExtractor) Extract(window []float64, vec *Vector) {
	var freq, psd []float64

	if e.provider != nil {
		freq, psd, _ = e.provider.PSD(window)
	}

	if psd == nil {
		freq, psd = e.est.Estimate(window)
	}

	if psd == nil {
		return
	}

	shape := spectral.Shape(freq, psd)

	vec.SpectralEntropy = shape.Entropy
	vec.SpectralFlatness = shape.Flatness
	vec.TopPeakHz = shape.PeakHz
	vec.PeakPowerRatio = shape.PeakPowerRatio
}

func sameSlice(a, b []float64) bool {
	return len(a) == len(b) && len(a) > 0 && &a[0] == &b[0]
}

var (
	_ Extractor   = (*SpectralSlopeExtractor)(nil)
	_ PSDProvider = (*SpectralSlopeExtractor)(nil)
	_ Extractor   = (*SpectralShapeExtractor)(nil)
)
