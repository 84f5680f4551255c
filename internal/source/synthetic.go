package source

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-features/internal/config"
)

// SyntheticSource emits a seeded sine-plus-noise series at a fixed rate. It
// exists so the daemon can run end to end without a broker.
type SyntheticSource struct {
	rateHz     float64
	signalHz   float64
	amplitude  float64
	noiseSigma float64
	limit      int
	rng        *rand.Rand
	logger     *zap.Logger
}

// NewSyntheticSource builds a generator from the source section of the
// daemon config. A zero RateHz falls back to 100 Hz.
func NewSyntheticSource(cfg config.SourceConfig, logger *zap.Logger) *SyntheticSource {
	rate := cfg.RateHz
	if rate <= 0 {
		rate = 100
	}

	return &SyntheticSource{
		rateHz:     rate,
		signalHz:   cfg.SignalHz,
		amplitude:  cfg.Amplitude,
		noiseSigma: cfg.NoiseSigma,
		limit:      cfg.SampleLimit,
		rng:        rand.New(rand.NewSource(cfg.RandomSeed)),
		logger:     logger,
	}
}

// Run emits samples on a ticker until the context is cancelled or the
// configured sample limit is reached.
func (s *SyntheticSource) Run(ctx context.Context, out chan<- Sample) error {
	interval := time.Duration(float64(time.Second) / s.rateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Synthetic source started",
		zap.Float64("rate_hz", s.rateHz),
		zap.Float64("signal_hz", s.signalHz),
		zap.Int("sample_limit", s.limit),
	)

	step := 2 * math.Pi * s.signalHz / s.rateHz

	for n := 0; ; n++ {
		if s.limit > 0 && n >= s.limit {
			s.logger.Info("Synthetic source reached sample limit", zap.Int("samples", n))
			return nil
		}

		select {
		case <-ctx.Done():
			return context.Canceled
		case now := <-ticker.C:
			v := s.amplitude*math.Sin(step*float64(n)) + s.rng.NormFloat64()*s.noiseSigma

			select {
			case out <- Sample{Value: v, Time: now}:
			case <-ctx.Done():
				return context.Canceled
			}
		}
	}
}
