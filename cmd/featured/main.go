// Command featured streams scalar samples from Kafka (or a synthetic
// generator), runs them through a windowed feature pipeline, and exposes the
// resulting feature vector as Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-features/feature"
	"github.com/cwbudde/algo-features/internal/config"
	"github.com/cwbudde/algo-features/internal/export"
	"github.com/cwbudde/algo-features/internal/logging"
	"github.com/cwbudde/algo-features/internal/source"
)

var configFile = flag.String("config", "configs/featured.yaml", "Path to the configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration from %s: %v\n", *configFile, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	sugar := logger.Sugar()
	sugar.Infow("Configuration loaded", "path", *configFile, "source", cfg.Source.Kind)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		sugar.Infow("Received signal, initiating shutdown...", "signal", sig.String())
		cancel()
	}()

	runErr := run(ctx, cfg, logger)

	switch {
	case runErr == nil:
		sugar.Info("Pipeline completed without error.")
	case errors.Is(runErr, context.Canceled):
		sugar.Info("Pipeline cancelled (expected on shutdown).")
	default:
		sugar.Errorw("Pipeline stopped unexpectedly", zap.Error(runErr))
		_ = logger.Sync()
		os.Exit(1)
	}

	sugar.Info("featured finished.")
}

// run wires source, pipeline, and metrics exporter and blocks until the
// context is cancelled or a component fails.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	pipe, err := buildPipeline(cfg)
	if err != nil {
		return fmt.Errorf("failed to build feature pipeline: %w", err)
	}

	logger.Info("Feature pipeline initialized",
		zap.Int("window_size", cfg.Pipeline.WindowSize),
		zap.Int("history_for_z", cfg.Pipeline.HistoryForZ),
		zap.Strings("transforms", cfg.Pipeline.Transforms),
	)

	src := buildSource(cfg, logger)

	export.Register()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	samples := make(chan source.Sample, 256)
	errCh := make(chan error, 3)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(samples)
		if err := src.Run(runCtx, samples); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("source failed: %w", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := consume(runCtx, pipe, samples, logger); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("consumer failed: %w", err)
		}
	}()

	if cfg.Metrics.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := export.Serve(runCtx, cfg.Metrics.ListenAddr, logger); err != nil {
				errCh <- fmt.Errorf("metrics server failed: %w", err)
			}
		}()
	}

	var firstErr error
	select {
	case <-ctx.Done():
		firstErr = ctx.Err()
	case err := <-errCh:
		firstErr = err
	}

	cancel()
	wg.Wait()

	if firstErr != nil && !errors.Is(firstErr, context.Canceled) {
		return firstErr
	}
	return nil
}

// consume drains the sample channel into the pipeline and publishes every
// complete feature vector.
func consume(ctx context.Context, pipe *feature.Pipeline, samples <-chan source.Sample, logger *zap.Logger) error {
	ticks := 0

	for {
		select {
		case <-ctx.Done():
			return context.Canceled
		case s, ok := <-samples:
			if !ok {
				logger.Info("Sample stream ended", zap.Int("ticks", ticks))
				return nil
			}

			vec, ready := pipe.TryPush(s.Value, s.Time)
			if !ready {
				continue
			}

			export.Observe(vec)
			ticks++

			if ticks%1000 == 0 {
				logger.Info("Feature snapshot",
					zap.Int("ticks", ticks),
					zap.Float64("hurst", vec.Hurst),
					zap.Float64("higuchi_fd", vec.HiguchiFD),
					zap.Float64("spectral_beta", vec.SpectralBeta),
					zap.Float64("vol_z", vec.VolZ),
				)
			}
		}
	}
}

// buildPipeline assembles transforms and extractors from the config. The
// spectral slope extractor runs before the shape extractor so the shape pass
// can reuse its cached PSD.
func buildPipeline(cfg *config.Config) (*feature.Pipeline, error) {
	pipe, err := feature.New(cfg.Pipeline.WindowSize, feature.WithHistoryForZ(cfg.Pipeline.HistoryForZ))
	if err != nil {
		return nil, err
	}

	for _, name := range cfg.Pipeline.Transforms {
		switch name {
		case config.TransformFirstDifference:
			pipe.Use(feature.FirstDifference{})
		case config.TransformLogReturn:
			pipe.Use(feature.LogReturn{})
		case config.TransformWinsorize:
			pipe.Use(feature.DefaultWinsorize())
		default:
			return nil, fmt.Errorf("unknown transform %q", name)
		}
	}

	slope, err := feature.NewSpectralSlopeExtractor(
		cfg.Spectral.SampleRate,
		cfg.Spectral.SegmentLength,
		cfg.Spectral.Overlap,
		cfg.Spectral.FMaxRatio,
	)
	if err != nil {
		return nil, err
	}

	shape, err := feature.NewSpectralShapeExtractor(
		cfg.Spectral.SampleRate,
		cfg.Spectral.SegmentLength,
		cfg.Spectral.Overlap,
		slope,
	)
	if err != nil {
		return nil, err
	}

	pipe.UseExtractor(feature.HurstDFAExtractor{}).
		UseExtractor(feature.NewHiguchiExtractor(cfg.Pipeline.HiguchiKMax)).
		UseExtractor(slope).
		UseExtractor(shape)

	return pipe, nil
}

func buildSource(cfg *config.Config, logger *zap.Logger) source.Source {
	if cfg.Source.Kind == config.SourceKafka {
		return source.NewKafkaSource(cfg.Kafka, logger)
	}
	return source.NewSyntheticSource(cfg.Source, logger)
}
