package feature

import (
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-features/dsp/buffer"
	"github.com/cwbudde/algo-features/dsp/core"
	"github.com/cwbudde/algo-features/stats/fit"
)

const (
	// DefaultHistoryForZ is the depth of the slope and volatility history
	// queues when no option overrides it.
	DefaultHistoryForZ = 60

	// minHistoryForZ is the smallest allowed history depth; it matches the
	// insufficient-data floor below which z-scores report 0.
	minHistoryForZ = 5

	// minZSamples is the queue occupancy required before a z-score is
	// considered meaningful.
	minZSamples = 5
)

// Option configures a Pipeline at construction.
type Option func(*pipelineConfig)

type pipelineConfig struct {
	historyForZ int
}

// WithHistoryForZ sets the depth of the rolling slope/volatility history used
// for z-scores. Must be at least 5.
func WithHistoryForZ(n int) Option {
	return func(c *pipelineConfig) {
		c.historyForZ = n
	}
}

// Pipeline converts a sample stream into per-tick feature vectors.
//
// A Pipeline is single-owner: TryPush must be called serially, and none of
// the registered transformers or extractors may be shared with another
// pipeline unless they are stateless. Independent pipelines are fully
// isolated and may run on separate goroutines.
type Pipeline struct {
	ring        *buffer.Ring
	windowSize  int
	historyForZ int

	transforms []Transformer
	extractors []Extractor

	scratch   []float64
	slopeHist *history
	volHist   *history
	vec       Vector
}

// New returns a pipeline over a window of windowSize samples.
func New(windowSize int, opts ...Option) (*Pipeline, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("feature: window size must be > 0: %d", windowSize)
	}

	cfg := pipelineConfig{historyForZ: DefaultHistoryForZ}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.historyForZ < minHistoryForZ {
		return nil, fmt.Errorf("feature: history depth must be >= %d: %d", minHistoryForZ, cfg.historyForZ)
	}

	return &Pipeline{
		ring:        buffer.NewRing(windowSize),
		windowSize:  windowSize,
		historyForZ: cfg.historyForZ,
		scratch:     make([]float64, windowSize),
		slopeHist:   newHistory(cfg.historyForZ),
		volHist:     newHistory(cfg.historyForZ),
	}, nil
}

// WindowSize returns the configured window length.
func (p *Pipeline) WindowSize() int { return p.windowSize }

// Use appends a transformer. Transforms run in registration order on every
// tick, each over the output of the previous one. Returns the pipeline for
// chaining.
func (p *Pipeline) Use(t Transformer) *Pipeline {
	p.transforms = append(p.transforms, t)
	return p
}

// UseExtractor appends an extractor. Extractors run in registration order;
// register a PSD producer before its consumer. Returns the pipeline for
// chaining.
func (p *Pipeline) UseExtractor(e Extractor) *Pipeline {
	p.extractors = append(p.extractors, e)
	return p
}

// TryPush ingests one sample.
//
// While the window is still filling it returns (nil, false). Once full,
// every call produces a complete feature vector: the window is snapshotted
// into a reused scratch array, transformed, fit against a linear trend for
// the slope/volatility baseline and its z-scores, and handed to each
// extractor in turn. The returned vector is owned by the pipeline and is
// overwritten on the next call.
//
// Non-finite samples are not rejected; they flow through transforms and
// surface as non-finite feature fields for the caller to police.
func (p *Pipeline) TryPush(value float64, ts time.Time) (*Vector, bool) {
	p.ring.Push(value)

	if !p.ring.Full() {
		return nil, false
	}

	p.ring.CopyTo(p.scratch)

	for _, t := range p.transforms {
		t.Apply(p.scratch)
	}

	line := fit.LinearIndexed(p.scratch)
	vol := sampleStdDev(p.scratch)

	p.slopeHist.push(line.Slope)
	p.volHist.push(vol)

	p.vec = Vector{
		Timestamp:  ts,
		WindowSize: p.windowSize,
		FitR2:      line.R2,
		SlopeZ:     p.slopeHist.zScore(line.Slope),
		VolZ:       p.volHist.zScore(vol),
	}

	for _, e := range p.extractors {
		e.Extract(p.scratch, &p.vec)
	}

	p.vec.Flags |= FlagReady

	return &p.vec, true
}

func sampleStdDev(x []float64) float64 {
	n := len(x)
	if n < 2 {
		return 0
	}

	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	ss := 0.0
	for _, v := range x {
		ss += (v - mean) * (v - mean)
	}

	return math.Sqrt(ss / float64(n-1))
}

// history is a bounded FIFO of recent baseline values for z-scoring. The
// queue is updated on every ready tick; length never exceeds its capacity.
type history struct {
	data  []float64
	next  int
	count int
}

func newHistory(capacity int) *history {
	return &history{data: make([]float64, capacity)}
}

// push appends v, evicting the oldest entry when full.
func (h *history) push(v float64) {
	h.data[h.next] = v
	h.next = (h.next + 1) % len(h.data)

	if h.count < len(h.data) {
		h.count++
	}
}

// zScore standardizes v against the queue contents (which already include
// v). Fewer than minZSamples entries, or a near-zero spread, reports 0.
func (h *history) zScore(v float64) float64 {
	if h.count < minZSamples {
		return 0
	}

	mean := 0.0
	for i := 0; i < h.count; i++ {
		mean += h.data[i]
	}
	mean /= float64(h.count)

	ss := 0.0
	for i := 0; i < h.count; i++ {
		d := h.data[i] - mean
		ss += d * d
	}

	den := h.count - 1
	if den < 1 {
		den = 1
	}

	std := math.Sqrt(ss / float64(den))
	if std <= core.Epsilon {
		return 0
	}

	return (v - mean) / std
}
