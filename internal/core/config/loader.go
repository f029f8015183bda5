package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *AppConfig {
	cfg := &AppConfig{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero values.
func ApplyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	b := &cfg.Backend
	if b.RequestTimeout == 0 {
		b.RequestTimeout = 30 * time.Second
	}
	if b.UploadTimeout == 0 {
		b.UploadTimeout = 5 * time.Minute
	}
	if b.ProbeTimeout == 0 {
		b.ProbeTimeout = 5 * time.Second
	}
	if b.RateBurst == 0 {
		b.RateBurst = 10
	}
	if b.Breaker.MinRequests == 0 {
		b.Breaker.MinRequests = 10
	}
	if b.Breaker.FailureRatio == 0 {
		b.Breaker.FailureRatio = 0.6
	}
	if b.Breaker.Interval == 0 {
		b.Breaker.Interval = time.Minute
	}
	if b.Breaker.OpenTimeout == 0 {
		b.Breaker.OpenTimeout = 30 * time.Second
	}

	r := &cfg.Retry
	if r.MaxRetries == 0 {
		r.MaxRetries = 3
	}
	if r.BaseDelay == 0 {
		r.BaseDelay = time.Second
	}
	if r.MaxDelay == 0 {
		r.MaxDelay = 10 * time.Second
	}
	if r.BackoffFactor == 0 {
		r.BackoffFactor = 2
	}

	if cfg.Queue.MaxRetries == 0 {
		cfg.Queue.MaxRetries = 3
	}
	if cfg.Queue.RetryDelay == 0 {
		cfg.Queue.RetryDelay = 5 * time.Second
	}
	if cfg.Queue.OutcomeTTL == 0 {
		cfg.Queue.OutcomeTTL = 10 * time.Minute
	}

	if cfg.Cache.ConfigTTL == 0 {
		cfg.Cache.ConfigTTL = 5 * time.Minute
	}
	if cfg.Cache.SweepInterval == 0 {
		cfg.Cache.SweepInterval = cfg.Cache.ConfigTTL
	}

	enabled := true
	if cfg.Fallback.FrameAnalysis == nil {
		cfg.Fallback.FrameAnalysis = &enabled
	}
	if cfg.Fallback.ExerciseConfig == nil {
		cfg.Fallback.ExerciseConfig = &enabled
	}

	if cfg.Connectivity.ProbeInterval == 0 {
		cfg.Connectivity.ProbeInterval = 10 * time.Second
	}
}

// Validate rejects settings the client cannot run with.
func (c *AppConfig) Validate() error {
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must be >= 0, got %d", c.Retry.MaxRetries)
	}
	if c.Retry.BackoffFactor < 1 {
		return fmt.Errorf("retry.backoff_factor must be >= 1, got %v", c.Retry.BackoffFactor)
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		return fmt.Errorf("retry.max_delay (%v) is below retry.base_delay (%v)", c.Retry.MaxDelay, c.Retry.BaseDelay)
	}
	if c.Queue.MaxRetries < 0 {
		return fmt.Errorf("queue.max_retries must be >= 0, got %d", c.Queue.MaxRetries)
	}
	if c.Backend.RateLimit < 0 {
		return fmt.Errorf("backend.rate_limit must be >= 0, got %v", c.Backend.RateLimit)
	}
	return nil
}

// FrameFallbackEnabled reports whether frame analysis may degrade to synthetic data.
func (c *AppConfig) FrameFallbackEnabled() bool {
	return c.Fallback.FrameAnalysis == nil || *c.Fallback.FrameAnalysis
}

// ConfigFallbackEnabled reports whether config fetches may degrade to the built-in table.
func (c *AppConfig) ConfigFallbackEnabled() bool {
	return c.Fallback.ExerciseConfig == nil || *c.Fallback.ExerciseConfig
}
