// Package fit provides closed-form ordinary-least-squares line fitting with
// the degeneracy handling shared by all estimators in this module:
// ill-conditioned systems yield zeroed results instead of NaN.
package fit

import (
	"math"

	"github.com/cwbudde/algo-features/dsp/core"
)

// Line holds the result of a straight-line fit y = Slope*x + Intercept.
type Line struct {
	Slope     float64
	Intercept float64
	R2        float64
}

// Linear fits y against x by ordinary least squares.
//
// When the normal-equation denominator n*sum(x^2) - sum(x)^2 is below
// epsilon, or fewer than 2 points are given, the zero Line is returned.
func Linear(x, y []float64) Line {
	n := len(x)
	if n < 2 || len(y) != n {
		return Line{}
	}

	var sumX, sumY, sumXX, sumXY float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
		sumXX += x[i] * x[i]
		sumXY += x[i] * y[i]
	}

	nf := float64(n)
	den := nf*sumXX - sumX*sumX
	if math.Abs(den) < core.Epsilon {
		return Line{}
	}

	slope := (nf*sumXY - sumX*sumY) / den
	intercept := (sumY - slope*sumX) / nf

	return Line{
		Slope:     slope,
		Intercept: intercept,
		R2:        rSquared(x, y, slope, intercept),
	}
}

// LinearIndexed fits y against the synthetic index 0..len(y)-1.
func LinearIndexed(y []float64) Line {
	n := len(y)
	if n < 2 {
		return Line{}
	}

	var sumY, sumXY float64
	for i, v := range y {
		sumY += v
		sumXY += float64(i) * v
	}

	nf := float64(n)
	// Closed forms for sum(i) and sum(i^2) over 0..n-1.
	sumX := nf * (nf - 1) / 2
	sumXX := nf * (nf - 1) * (2*nf - 1) / 6

	den := nf*sumXX - sumX*sumX
	if math.Abs(den) < core.Epsilon {
		return Line{}
	}

	slope := (nf*sumXY - sumX*sumY) / den
	intercept := (sumY - slope*sumX) / nf

	var ssRes, ssTot float64
	mean := sumY / nf
	for i, v := range y {
		pred := slope*float64(i) + intercept
		ssRes += (v - pred) * (v - pred)
		ssTot += (v - mean) * (v - mean)
	}

	return Line{Slope: slope, Intercept: intercept, R2: r2FromSums(ssRes, ssTot)}
}

// LogLog fits log(y) against log(x), silently skipping pairs where either
// value is non-positive or non-finite. minPoints pairs must survive the
// filter or the zero Line is returned.
func LogLog(x, y []float64, minPoints int) (Line, int) {
	if minPoints < 2 {
		minPoints = 2
	}

	n := len(x)
	if len(y) < n {
		n = len(y)
	}

	logX := make([]float64, 0, n)
	logY := make([]float64, 0, n)

	for i := 0; i < n; i++ {
		if x[i] <= 0 || y[i] <= 0 || !core.IsFinite(x[i]) || !core.IsFinite(y[i]) {
			continue
		}
		logX = append(logX, math.Log(x[i]))
		logY = append(logY, math.Log(y[i]))
	}

	if len(logX) < minPoints {
		return Line{}, len(logX)
	}

	return Linear(logX, logY), len(logX)
}

func rSquared(x, y []float64, slope, intercept float64) float64 {
	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var ssRes, ssTot float64
	for i, v := range y {
		pred := slope*x[i] + intercept
		ssRes += (v - pred) * (v - pred)
		ssTot += (v - mean) * (v - mean)
	}

	return r2FromSums(ssRes, ssTot)
}

func r2FromSums(ssRes, ssTot float64) float64 {
	if ssTot < core.Epsilon {
		return 0
	}

	r2 := 1 - ssRes/ssTot
	if !core.IsFinite(r2) {
		return 0
	}

	return core.Clamp(r2, 0, 1)
}
