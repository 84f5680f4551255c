package config

import "errors"

var (
	ErrReadingConfigFile    = errors.New("failed to read config file")
	ErrUnmarshallingConfig  = errors.New("failed to unmarshal config")
	ErrConfigFileMissing    = errors.New("config file not found")
	ErrUnknownSourceKind    = errors.New("source kind must be \"kafka\" or \"synthetic\"")
	ErrEmptyKafkaBrokers    = errors.New("kafka brokers list cannot be empty")
	ErrEmptyKafkaTopic      = errors.New("kafka topic cannot be empty")
	ErrEmptyKafkaGroupID    = errors.New("kafka groupID cannot be empty")
	ErrInvalidWindowSize    = errors.New("pipeline windowSize must be positive")
	ErrInvalidHistoryForZ   = errors.New("pipeline historyForZ must be at least 5")
	ErrUnknownTransform     = errors.New("unknown transform name")
	ErrInvalidSampleRate    = errors.New("spectral sampleRate must be positive")
	ErrInvalidSegmentLength = errors.New("spectral segmentLength must be positive")
	ErrInvalidOverlap       = errors.New("spectral overlap must be non-negative and below segmentLength")
)
