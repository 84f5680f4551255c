// Package spectral derives scalar shape features from one-sided power
// spectral densities: the 1/f^beta slope, spectral entropy and flatness, and
// the dominant peak location and concentration.
package spectral

import (
	"math"

	"github.com/cwbudde/algo-features/dsp/core"
	"github.com/cwbudde/algo-features/stats/fit"
)

// minSlopePoints is the smallest number of usable (freq, power) pairs for a
// slope fit; fewer and the estimate is reported as absent.
const minSlopePoints = 5

// powerFloor keeps log terms defined when normalizing a spectrum that
// contains exact zeros.
const powerFloor = 1e-30

// SlopeBeta fits the power-law exponent of psd against freq.
//
// Power spectra of many natural signals follow P(f) ~ 1/f^beta; beta is the
// negated slope of log P against log f. Only bins with 0 < f <=
// fMaxRatio*Nyquist and psd > 0 enter the fit, where Nyquist is the last
// frequency in freq. fMaxRatio outside (0, 1] is treated as 1.
//
// At least 5 bins must survive the filter; otherwise (0, 0) is returned.
func SlopeBeta(freq, psd []float64, fMaxRatio float64) (beta, r2 float64) {
	n := len(freq)
	if n == 0 || len(psd) != n {
		return 0, 0
	}

	if fMaxRatio <= 0 || fMaxRatio > 1 {
		fMaxRatio = 1
	}

	fMax := fMaxRatio * freq[n-1]

	fs := make([]float64, 0, n)
	ps := make([]float64, 0, n)

	for i := 0; i < n; i++ {
		if freq[i] <= 0 || freq[i] > fMax || psd[i] <= 0 {
			continue
		}
		fs = append(fs, freq[i])
		ps = append(ps, psd[i])
	}

	if len(fs) < minSlopePoints {
		return 0, 0
	}

	line, used := fit.LogLog(fs, ps, minSlopePoints)
	if used < minSlopePoints {
		return 0, 0
	}

	beta = -line.Slope
	if !core.IsFinite(beta) {
		return 0, 0
	}

	return beta, line.R2
}

// ShapeResult holds the distributional features of a power spectrum.
type ShapeResult struct {
	// Entropy is the normalized Shannon entropy of the power distribution,
	// in [0, 1]. White noise approaches 1, a pure tone approaches 0.
	Entropy float64

	// Flatness is the geometric mean of the spectrum over its arithmetic
	// mean, in [0, 1]. Also known as Wiener entropy.
	Flatness float64

	// PeakHz is the frequency of the strongest bin.
	PeakHz float64

	// PeakPowerRatio is the fraction of total power concentrated in a
	// narrow band around the strongest bin.
	PeakPowerRatio float64
}

// Shape computes entropy, flatness, and peak features of psd.
//
// The spectrum is normalized to a probability distribution with every bin
// floored at 1e-30. The peak band spans max(1, len(psd)/100) bins on each
// side of the strongest bin. An empty or mismatched input yields the zero
// ShapeResult.
func Shape(freq, psd []float64) ShapeResult {
	n := len(psd)
	if n == 0 || len(freq) != n {
		return ShapeResult{}
	}

	total := 0.0
	for _, v := range psd {
		if v < powerFloor || !core.IsFinite(v) {
			v = powerFloor
		}
		total += v
	}

	var (
		entropy    float64
		logSum     float64
		arithMean  float64
		peak       int
		normalized = make([]float64, n)
	)

	for i, v := range psd {
		if v < powerFloor || !core.IsFinite(v) {
			v = powerFloor
		}

		p := v / total
		normalized[i] = p
		entropy -= p * math.Log(p)

		logSum += math.Log(v)
		arithMean += v

		if psd[i] > psd[peak] {
			peak = i
		}
	}

	if n > 1 {
		entropy /= math.Log(float64(n))
	} else {
		entropy = 0
	}
	entropy = core.Clamp(entropy, 0, 1)

	arithMean /= float64(n)
	geoMean := math.Exp(logSum / float64(n))

	flatness := 0.0
	if arithMean > 0 {
		flatness = core.Clamp(geoMean/arithMean, 0, 1)
	}

	halfWidth := n / 100
	if halfWidth < 1 {
		halfWidth = 1
	}

	lo := peak - halfWidth
	if lo < 0 {
		lo = 0
	}
	hi := peak + halfWidth
	if hi > n-1 {
		hi = n - 1
	}

	peakPower := 0.0
	for i := lo; i <= hi; i++ {
		peakPower += normalized[i]
	}

	return ShapeResult{
		Entropy:        entropy,
		Flatness:       flatness,
		PeakHz:         freq[peak],
		PeakPowerRatio: core.Clamp(peakPower, 0, 1),
	}
}
