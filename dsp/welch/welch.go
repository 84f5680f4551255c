// Package welch estimates one-sided power spectral densities by averaging
// periodograms of overlapping, Hann-windowed segments (Welch's method).
package welch

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-features/dsp/core"
	"github.com/cwbudde/algo-features/dsp/spectrum"
	"github.com/cwbudde/algo-features/dsp/window"
)

// Estimator computes Welch PSD estimates for a fixed parameter set.
//
// The FFT plan, window coefficients, and segment scratch are created once and
// reused across calls, so per-call cost is the FFT work itself. An Estimator
// is not safe for concurrent use; like the pipelines that own them, each
// instance expects a single caller.
type Estimator struct {
	fs      float64
	segLen  int
	overlap int
	step    int

	plan       *algofft.Plan[complex128]
	win        []float64
	winSquared float64
	segScratch []float64
	fftIn      []complex128
	fftOut     []complex128
}

// NewEstimator validates the parameter set and prepares the FFT plan.
//
// fs is the sample rate in Hz, segLen the segment length in samples (must be
// accepted by the FFT backend, in practice a power of two), and overlap the
// number of samples shared by consecutive segments. Segments advance by
// step = max(1, segLen-overlap).
func NewEstimator(fs float64, segLen, overlap int) (*Estimator, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("welch: sample rate must be > 0: %v", fs)
	}

	if segLen <= 0 {
		return nil, fmt.Errorf("welch: segment length must be > 0: %d", segLen)
	}

	if overlap < 0 {
		return nil, fmt.Errorf("welch: overlap must be >= 0: %d", overlap)
	}

	plan, err := algofft.NewPlan64(segLen)
	if err != nil {
		return nil, fmt.Errorf("welch: fft plan for segment length %d: %w", segLen, err)
	}

	win := window.Generate(window.TypeHann, segLen, window.WithPeriodic())

	winSquared := 0.0
	for _, w := range win {
		winSquared += w * w
	}

	step := segLen - overlap
	if step < 1 {
		step = 1
	}

	return &Estimator{
		fs:         fs,
		segLen:     segLen,
		overlap:    overlap,
		step:       step,
		plan:       plan,
		win:        win,
		winSquared: winSquared,
		fftIn:      make([]complex128, segLen),
		fftOut:     make([]complex128, segLen),
	}, nil
}

// SegmentLength returns the configured segment length.
func (e *Estimator) SegmentLength() int { return e.segLen }

// Overlap returns the configured segment overlap.
func (e *Estimator) Overlap() int { return e.overlap }

// SampleRate returns the configured sample rate.
func (e *Estimator) SampleRate() float64 { return e.fs }

// Estimate returns the one-sided PSD of x.
//
// Both returned slices have length segLen/2+1; freq[k] = k*fs/segLen. The PSD
// is scaled to density form, 1/(segments * sum(w^2) * fs), with all bins
// except DC and Nyquist doubled to fold in the negative frequencies. If x is
// shorter than one segment, both results are nil.
func (e *Estimator) Estimate(x []float64) (freq, psd []float64) {
	if len(x) < e.segLen {
		return nil, nil
	}

	bins := e.segLen/2 + 1
	psd = make([]float64, bins)
	binPower := make([]float64, bins)

	segments := 0
	for start := 0; start+e.segLen <= len(x); start += e.step {
		e.segScratch = core.EnsureLen(e.segScratch, e.segLen)
		core.CopyInto(e.segScratch, x[start:start+e.segLen])

		// Window the segment, then pack it into the complex FFT input.
		if err := window.ApplyCoefficientsInPlace(e.segScratch, e.win); err != nil {
			return nil, nil
		}

		for i, v := range e.segScratch {
			e.fftIn[i] = complex(v, 0)
		}

		if err := e.plan.Forward(e.fftOut, e.fftIn); err != nil {
			return nil, nil
		}

		spectrum.PowerInto(binPower, e.fftOut[:bins])
		for k := range psd {
			psd[k] += binPower[k]
		}

		segments++
	}

	if segments == 0 {
		return nil, nil
	}

	scale := 1.0 / (float64(segments) * e.winSquared * e.fs)
	for k := range psd {
		psd[k] *= scale
		// One-sided convention: fold the mirrored bins into everything
		// between DC and Nyquist.
		if k != 0 && k != bins-1 {
			psd[k] *= 2
		}
	}

	freq = make([]float64, bins)
	for k := range freq {
		freq[k] = float64(k) * e.fs / float64(e.segLen)
	}

	return freq, psd
}

// Estimate is a one-shot Welch PSD computation.
//
// It builds a throwaway Estimator; callers computing PSDs repeatedly with
// the same parameters should hold an Estimator instead.
func Estimate(x []float64, fs float64, segLen, overlap int) (freq, psd []float64, err error) {
	e, err := NewEstimator(fs, segLen, overlap)
	if err != nil {
		return nil, nil, err
	}

	freq, psd = e.Estimate(x)

	return freq, psd, nil
}
