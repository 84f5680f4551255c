// Package fractal estimates roughness and long-range-dependence features of
// sampled signals: the Hurst exponent via detrended fluctuation analysis and
// the Higuchi fractal dimension.
package fractal

import (
	"math"

	"github.com/cwbudde/algo-features/dsp/buffer"
	"github.com/cwbudde/algo-features/dsp/core"
	"github.com/cwbudde/algo-features/stats/fit"
)

const (
	// minDFAInput is the shortest signal DFA will analyze; below this the
	// neutral estimate is returned.
	minDFAInput = 64

	// dfaMinScale is the smallest box size; boxes shorter than this carry
	// too little detrending information to be useful.
	dfaMinScale = 8

	// dfaMaxScales caps the number of log-spaced box sizes.
	dfaMaxScales = 8

	// neutralHurst is the exponent of uncorrelated noise, used whenever the
	// estimate cannot be formed.
	neutralHurst = 0.5
)

var profilePool = buffer.NewPool()

// HurstDFA estimates the Hurst exponent of x using order-1 detrended
// fluctuation analysis.
//
// The integrated, mean-removed profile is split into non-overlapping boxes at
// up to 8 log-spaced sizes between 8 and max(16, len(x)/4); each box is
// detrended by its own least-squares line, and the RMS residual F(s) is fit
// against box size in log-log space. The returned exponent is the fitted
// slope clamped to [0, 1].
//
// r2 reports the quality of the log-log fit and scales the number of box
// sizes that produced a usable fluctuation. Signals shorter than 64 samples,
// or signals where fewer than 3 scales survive, yield (0.5, 0, scales).
func HurstDFA(x []float64) (h, r2 float64, scales int) {
	n := len(x)
	if n < minDFAInput {
		return neutralHurst, 0, 0
	}

	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	prof := profilePool.Get(n)
	defer profilePool.Put(prof)

	profile := prof.Samples()
	sum := 0.0
	for i, v := range x {
		sum += v - mean
		profile[i] = sum
	}

	sizes := boxSizes(n)

	usedSizes := make([]float64, 0, len(sizes))
	flucts := make([]float64, 0, len(sizes))

	for _, s := range sizes {
		f, ok := fluctuation(profile, s)
		if !ok {
			continue
		}
		usedSizes = append(usedSizes, float64(s))
		flucts = append(flucts, f)
	}

	scales = len(usedSizes)
	if scales < 3 {
		return neutralHurst, 0, scales
	}

	line, _ := fit.LogLog(usedSizes, flucts, 3)

	h = line.Slope
	if !core.IsFinite(h) {
		return neutralHurst, 0, scales
	}

	return core.Clamp(h, 0, 1), line.R2, scales
}

// boxSizes returns up to dfaMaxScales distinct integer box sizes, log-spaced
// between dfaMinScale and max(16, n/4). Rounding collisions are resolved by
// bumping the later size up by one.
func boxSizes(n int) []int {
	maxScale := n / 4
	if maxScale < 16 {
		maxScale = 16
	}

	count := dfaMaxScales
	sizes := make([]int, 0, count)

	logMin := math.Log(float64(dfaMinScale))
	logMax := math.Log(float64(maxScale))

	for i := 0; i < count; i++ {
		frac := 0.0
		if count > 1 {
			frac = float64(i) / float64(count-1)
		}

		s := int(math.Round(math.Exp(logMin + frac*(logMax-logMin))))
		if s < dfaMinScale {
			s = dfaMinScale
		}

		if len(sizes) > 0 && s <= sizes[len(sizes)-1] {
			s = sizes[len(sizes)-1] + 1
		}

		if s > maxScale {
			break
		}

		sizes = append(sizes, s)
	}

	return sizes
}

// fluctuation returns the RMS residual of the profile after per-box linear
// detrending at box size s. It reports false when fewer than 2 complete
// boxes fit or the residual degenerates.
func fluctuation(profile []float64, s int) (float64, bool) {
	boxes := len(profile) / s
	if boxes < 2 {
		return 0, false
	}

	total := 0.0
	for b := 0; b < boxes; b++ {
		seg := profile[b*s : (b+1)*s]
		line := fit.LinearIndexed(seg)

		ssRes := 0.0
		for i, v := range seg {
			pred := line.Slope*float64(i) + line.Intercept
			ssRes += (v - pred) * (v - pred)
		}

		total += ssRes / float64(s)
	}

	f := math.Sqrt(total / float64(boxes))
	if !core.IsFinite(f) || f <= 0 {
		return 0, false
	}

	return f, true
}
