package config

import (
	"fmt"
	"time"
)

// TrainingConfig represents the configuration for the one-time model training
type TrainingConfig struct {
	DatasetPath     string
	TargetColumn    string
	ExcludeColumns  []string
	RegularizationC float64
	MaxIterations   int
	Tolerance       float64
}

// PredictionConfig represents how predictions are labelled and rendered
type PredictionConfig struct {
	Threshold         float64
	LabelColumn       string
	ProbabilityColumn string
	PreviewRows       int
	DownloadName      string
}

// ServerConfig represents the configuration for the prediction frontend
type ServerConfig struct {
	Frontend       string
	ListenAddress  string
	MaxUploadBytes int64
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MetricsEnabled bool
}

// CacheConfig represents the configuration for the prediction result store
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisPrefix      string
}

// GetTraining returns the training configuration
func (c *Config) GetTraining() TrainingConfig {
	return TrainingConfig{
		DatasetPath:     c.GetString("training.dataset_path"),
		TargetColumn:    c.GetString("training.target_column"),
		ExcludeColumns:  c.GetStringSlice("training.exclude_columns"),
		RegularizationC: c.GetFloat64("training.regularization_c"),
		MaxIterations:   c.GetInt("training.max_iterations"),
		Tolerance:       c.GetFloat64("training.tolerance"),
	}
}

// GetPrediction returns the prediction configuration
func (c *Config) GetPrediction() PredictionConfig {
	return PredictionConfig{
		Threshold:         c.GetFloat64("prediction.threshold"),
		LabelColumn:       c.GetString("prediction.label_column"),
		ProbabilityColumn: c.GetString("prediction.probability_column"),
		PreviewRows:       c.GetInt("prediction.preview_rows"),
		DownloadName:      c.GetString("prediction.download_name"),
	}
}

// Validate checks that the threshold is a probability
func (p PredictionConfig) Validate() error {
	if p.Threshold < 0 || p.Threshold > 1 {
		return fmt.Errorf("invalid prediction threshold %v: must be within [0, 1]", p.Threshold)
	}
	return nil
}

// GetServer returns the server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	readTimeout, err := c.GetDuration("server.read_timeout")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("invalid server read timeout: %w", err)
	}
	writeTimeout, err := c.GetDuration("server.write_timeout")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("invalid server write timeout: %w", err)
	}

	return ServerConfig{
		Frontend:       c.GetString("server.frontend"),
		ListenAddress:  c.GetString("server.listen_address"),
		MaxUploadBytes: c.GetInt64("server.max_upload_bytes"),
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		MetricsEnabled: c.GetBool("server.metrics_enabled"),
	}, nil
}

// GetCache returns the result store configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, fmt.Errorf("invalid cache TTL: %w", err)
	}
	cleanupFreq, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, fmt.Errorf("invalid cache cleanup frequency: %w", err)
	}
	enabled := c.GetBool("cache.enabled")
	if enabled && ttl <= 0 {
		return CacheConfig{}, fmt.Errorf("invalid cache TTL %v: must be positive when the cache is enabled", ttl)
	}

	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          enabled,
		TTL:              ttl,
		CleanupFrequency: cleanupFreq,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
		RedisAddr:        c.GetString("cache.redis_addr"),
		RedisPassword:    c.GetString("cache.redis_password"),
		RedisDB:          c.GetInt("cache.redis_db"),
		RedisPrefix:      c.GetString("cache.redis_prefix"),
	}, nil
}
