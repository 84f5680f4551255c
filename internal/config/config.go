// Package config loads and validates the featured daemon configuration from
// a YAML file and FEATURED_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	// Source kinds accepted by source.kind.
	SourceKafka     = "kafka"
	SourceSynthetic = "synthetic"

	// Transform names accepted in pipeline.transforms.
	TransformFirstDifference = "firstDifference"
	TransformLogReturn       = "logReturn"
	TransformWinsorize       = "winsorize"

	defaultSourceKind      = SourceSynthetic
	defaultKafkaGroupID    = "featured-default-group"
	defaultWindowSize      = 256
	defaultHistoryForZ     = 60
	defaultSampleRate      = 1.0
	defaultSegmentLength   = 64
	defaultOverlap         = 32
	defaultFMaxRatio       = 1.0
	defaultHiguchiKMax     = 8
	defaultSyntheticRateHz = 100.0
	defaultMetricsAddr     = ":9090"
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
	defaultLogFileEnabled  = false
	defaultLogDirectory    = "log"
	defaultLogFilename     = "featured.log"
	defaultLogMaxSizeMB    = 100
	defaultLogMaxBackups   = 3
	defaultLogMaxAgeDays   = 7
	defaultLogCompress     = false

	// Environment variable prefix
	envPrefix = "FEATURED"
)

type Config struct {
	Source   SourceConfig   `mapstructure:"source"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Spectral SpectralConfig `mapstructure:"spectral"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

type SourceConfig struct {
	Kind string `mapstructure:"kind"` // "kafka" or "synthetic"

	// Synthetic source parameters, ignored for kafka.
	RateHz      float64 `mapstructure:"rateHz"`
	SignalHz    float64 `mapstructure:"signalHz"`
	Amplitude   float64 `mapstructure:"amplitude"`
	NoiseSigma  float64 `mapstructure:"noiseSigma"`
	RandomSeed  int64   `mapstructure:"randomSeed"`
	SampleLimit int     `mapstructure:"sampleLimit"` // 0 = unbounded
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"groupID"`
}

type PipelineConfig struct {
	WindowSize  int      `mapstructure:"windowSize"`
	HistoryForZ int      `mapstructure:"historyForZ"`
	Transforms  []string `mapstructure:"transforms"`
	HiguchiKMax int      `mapstructure:"higuchiKMax"`
}

type SpectralConfig struct {
	SampleRate    float64 `mapstructure:"sampleRate"`
	SegmentLength int     `mapstructure:"segmentLength"`
	Overlap       int     `mapstructure:"overlap"`
	FMaxRatio     float64 `mapstructure:"fMaxRatio"`
}

type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listenAddr"`
}

type LogConfig struct {
	Level              string `mapstructure:"level"`
	Format             string `mapstructure:"format"`
	FileLoggingEnabled bool   `mapstructure:"fileLoggingEnabled"`
	Directory          string `mapstructure:"directory"`
	Filename           string `mapstructure:"filename"`
	MaxSize            int    `mapstructure:"maxSize"`    // Max size in MB
	MaxBackups         int    `mapstructure:"maxBackups"` // Max backup files
	MaxAge             int    `mapstructure:"maxAge"`     // Max days to retain
	Compress           bool   `mapstructure:"compress"`   // Compress rotated files?
}

// Load initializes viper, reads config, applies defaults, unmarshals, and
// validates.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	configureViper(v, configPath)

	setDefaults(v)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configureViper sets up viper for file and environment variable sources.
func configureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.kind", defaultSourceKind)
	v.SetDefault("source.rateHz", defaultSyntheticRateHz)
	v.SetDefault("source.signalHz", 5.0)
	v.SetDefault("source.amplitude", 1.0)
	v.SetDefault("source.noiseSigma", 0.1)
	v.SetDefault("kafka.groupID", defaultKafkaGroupID)
	v.SetDefault("pipeline.windowSize", defaultWindowSize)
	v.SetDefault("pipeline.historyForZ", defaultHistoryForZ)
	v.SetDefault("pipeline.transforms", []string{TransformFirstDifference})
	v.SetDefault("pipeline.higuchiKMax", defaultHiguchiKMax)
	v.SetDefault("spectral.sampleRate", defaultSampleRate)
	v.SetDefault("spectral.segmentLength", defaultSegmentLength)
	v.SetDefault("spectral.overlap", defaultOverlap)
	v.SetDefault("spectral.fMaxRatio", defaultFMaxRatio)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.listenAddr", defaultMetricsAddr)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("log.fileLoggingEnabled", defaultLogFileEnabled)
	v.SetDefault("log.directory", defaultLogDirectory)
	v.SetDefault("log.filename", defaultLogFilename)
	v.SetDefault("log.maxSize", defaultLogMaxSizeMB)
	v.SetDefault("log.maxBackups", defaultLogMaxBackups)
	v.SetDefault("log.maxAge", defaultLogMaxAgeDays)
	v.SetDefault("log.compress", defaultLogCompress)
}

// readConfigFile attempts to read the configuration file specified in viper.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return ErrConfigFileMissing
		}
		return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	switch cfg.Source.Kind {
	case SourceKafka:
		if len(cfg.Kafka.Brokers) == 0 {
			return ErrEmptyKafkaBrokers
		}
		if cfg.Kafka.Topic == "" {
			return ErrEmptyKafkaTopic
		}
		if cfg.Kafka.GroupID == "" {
			return ErrEmptyKafkaGroupID
		}
	case SourceSynthetic:
		// No mandatory fields; defaults cover local runs.
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSourceKind, cfg.Source.Kind)
	}

	if cfg.Pipeline.WindowSize <= 0 {
		return ErrInvalidWindowSize
	}
	if cfg.Pipeline.HistoryForZ < 5 {
		return ErrInvalidHistoryForZ
	}

	for _, name := range cfg.Pipeline.Transforms {
		switch name {
		case TransformFirstDifference, TransformLogReturn, TransformWinsorize:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownTransform, name)
		}
	}

	if cfg.Spectral.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	if cfg.Spectral.SegmentLength <= 0 {
		return ErrInvalidSegmentLength
	}
	if cfg.Spectral.Overlap < 0 || cfg.Spectral.Overlap >= cfg.Spectral.SegmentLength {
		return ErrInvalidOverlap
	}

	return nil
}
