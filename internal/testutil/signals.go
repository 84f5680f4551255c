// Package testutil provides deterministic signal generators and assertion
// helpers shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates uniform white noise with a fixed seed for
// reproducibility. Samples are zero-mean in [-amplitude, amplitude].
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// GaussianNoise generates seeded zero-mean normal noise with the given
// standard deviation.
func GaussianNoise(seed int64, sigma float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = rng.NormFloat64() * sigma
	}
	return out
}

// RandomWalk generates the cumulative sum of seeded gaussian increments.
func RandomWalk(seed int64, sigma float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	sum := 0.0
	for i := range out {
		sum += rng.NormFloat64() * sigma
		out[i] = sum
	}
	return out
}

// AR1 generates a seeded first-order autoregressive process
// x[i] = phi*x[i-1] + e[i] with unit-variance gaussian innovations.
func AR1(seed int64, phi float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	prev := 0.0
	for i := range out {
		prev = phi*prev + rng.NormFloat64()
		out[i] = prev
	}
	return out
}

// SinePlusNoise generates a sine wave with additive seeded gaussian noise.
func SinePlusNoise(freqHz, sampleRate, amplitude, noiseSigma float64, seed int64, length int) []float64 {
	out := DeterministicSine(freqHz, sampleRate, amplitude, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] += rng.NormFloat64() * noiseSigma
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
