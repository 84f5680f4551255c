package fractal

import (
	"math"

	"github.com/cwbudde/algo-features/dsp/core"
	"github.com/cwbudde/algo-features/stats/fit"
)

// DefaultHiguchiKMax is the largest curve-reconstruction stride used when the
// caller passes kMax <= 0.
const DefaultHiguchiKMax = 8

// neutralHiguchi sits midway between a smooth curve (1) and a
// plane-filling one (2).
const neutralHiguchi = 1.5

// Higuchi estimates the fractal dimension of x by Higuchi's method.
//
// For each stride k in 1..kMax the mean normalized curve length L(k) is
// computed over the k phase-shifted subsampled curves; the dimension is the
// negated slope of log L(k) against log k, clamped to [1, 2]. A smooth
// signal approaches 1, white noise approaches 2.
//
// Signals shorter than kMax+2 samples return 1.0. If fewer than 2 strides
// produce a usable length, or the fit degenerates, 1.5 is returned.
func Higuchi(x []float64, kMax int) float64 {
	if kMax <= 0 {
		kMax = DefaultHiguchiKMax
	}

	n := len(x)
	if n < kMax+2 {
		return 1.0
	}

	strides := make([]float64, 0, kMax)
	lengths := make([]float64, 0, kMax)

	for k := 1; k <= kMax; k++ {
		l, ok := curveLength(x, k)
		if !ok {
			continue
		}
		strides = append(strides, float64(k))
		lengths = append(lengths, l)
	}

	if len(strides) < 2 {
		return neutralHiguchi
	}

	line, _ := fit.LogLog(strides, lengths, 2)

	fd := -line.Slope
	if !core.IsFinite(fd) || fd == 0 {
		return neutralHiguchi
	}

	return core.Clamp(fd, 1, 2)
}

// curveLength returns the mean normalized length of the k subsampled curves
// x[m], x[m+k], x[m+2k], ... for offsets m = 0..min(k, len(x)-2)-1.
func curveLength(x []float64, k int) (float64, bool) {
	n := len(x)

	offsets := k
	if offsets > n-2 {
		offsets = n - 2
	}
	if offsets < 1 {
		return 0, false
	}

	total := 0.0
	used := 0

	for m := 0; m < offsets; m++ {
		sum := 0.0
		count := 0
		for i := m + k; i < n; i += k {
			sum += math.Abs(x[i] - x[i-k])
			count++
		}

		if count == 0 {
			continue
		}

		// Higuchi's normalization maps the subsampled length back onto
		// the full time base.
		total += sum * float64(n-1) / (float64(count) * float64(k) * float64(k))
		used++
	}

	if used == 0 {
		return 0, false
	}

	l := total / float64(used)
	if !core.IsFinite(l) || l <= 0 {
		return 0, false
	}

	return l, true
}
