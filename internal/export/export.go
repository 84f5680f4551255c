// Package export publishes feature vectors as Prometheus metrics.
package export

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-features/feature"
)

var (
	featureHurst = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feature_hurst",
		Help: "DFA Hurst exponent of the current window",
	})

	featureHiguchiFD = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feature_higuchi_fd",
		Help: "Higuchi fractal dimension of the current window",
	})

	featureSpectralBeta = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feature_spectral_beta",
		Help: "1/f^beta spectral slope of the current window",
	})

	featureSpectralEntropy = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feature_spectral_entropy",
		Help: "Normalized spectral entropy of the current window",
	})

	featureSpectralFlatness = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feature_spectral_flatness",
		Help: "Spectral flatness (geometric over arithmetic mean) of the current window",
	})

	featureTopPeakHz = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feature_top_peak_hz",
		Help: "Frequency of the strongest spectral bin",
	})

	featurePeakPowerRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feature_peak_power_ratio",
		Help: "Fraction of spectral power near the dominant peak",
	})

	featureSlopeZ = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feature_slope_z",
		Help: "Baseline trend slope as a z-score against recent history",
	})

	featureVolZ = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feature_vol_z",
		Help: "Window volatility as a z-score against recent history",
	})

	featureFitR2 = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feature_fit_r2",
		Help: "Worst goodness-of-fit across the tick's estimators",
	})

	ticksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feature_ticks_total",
		Help: "Total number of complete feature vectors produced",
	})
)

// Register installs the feature metrics on the default registry. Call once
// at startup.
func Register() {
	prometheus.MustRegister(
		featureHurst,
		featureHiguchiFD,
		featureSpectralBeta,
		featureSpectralEntropy,
		featureSpectralFlatness,
		featureTopPeakHz,
		featurePeakPowerRatio,
		featureSlopeZ,
		featureVolZ,
		featureFitR2,
		ticksTotal,
	)
}

// Observe publishes one feature vector.
func Observe(vec *feature.Vector) {
	featureHurst.Set(vec.Hurst)
	featureHiguchiFD.Set(vec.HiguchiFD)
	featureSpectralBeta.Set(vec.SpectralBeta)
	featureSpectralEntropy.Set(vec.SpectralEntropy)
	featureSpectralFlatness.Set(vec.SpectralFlatness)
	featureTopPeakHz.Set(vec.TopPeakHz)
	featurePeakPowerRatio.Set(vec.PeakPowerRatio)
	featureSlopeZ.Set(vec.SlopeZ)
	featureVolZ.Set(vec.VolZ)
	featureFitR2.Set(vec.FitR2)
	ticksTotal.Inc()
}

// Serve exposes /metrics on addr until the context is cancelled. It blocks
// and returns nil on graceful shutdown.
func Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Metrics endpoint listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server shutdown failed", zap.Error(err))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
