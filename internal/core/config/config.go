package config

import "time"

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server       ServerConfig       `yaml:"server"`
	Backend      BackendConfig      `yaml:"backend"`
	Retry        RetryConfig        `yaml:"retry"`
	Queue        QueueConfig        `yaml:"queue"`
	Cache        CacheConfig        `yaml:"cache"`
	Fallback     FallbackConfig     `yaml:"fallback"`
	Connectivity ConnectivityConfig `yaml:"connectivity"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds the health/metrics HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// BackendConfig describes how to reach the analysis backend.
type BackendConfig struct {
	// Candidates are probed in order; the first that answers GET / wins.
	Candidates     []string      `yaml:"candidates"`
	AuthToken      string        `yaml:"auth_token"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	UploadTimeout  time.Duration `yaml:"upload_timeout"`
	ProbeTimeout   time.Duration `yaml:"probe_timeout"`
	RateLimit      float64       `yaml:"rate_limit"` // requests per second, 0 = unlimited
	RateBurst      int           `yaml:"rate_burst"`
	Breaker        BreakerConfig `yaml:"breaker"`
}

// BreakerConfig tunes the transport circuit breaker.
type BreakerConfig struct {
	MinRequests  uint32        `yaml:"min_requests"`
	FailureRatio float64       `yaml:"failure_ratio"`
	Interval     time.Duration `yaml:"interval"`
	OpenTimeout  time.Duration `yaml:"open_timeout"`
}

// RetryConfig holds the backoff policy.
type RetryConfig struct {
	MaxRetries    int           `yaml:"max_retries"`
	BaseDelay     time.Duration `yaml:"base_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	BackoffFactor float64       `yaml:"backoff_factor"`
}

// QueueConfig holds offline queue settings.
type QueueConfig struct {
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	OutcomeTTL time.Duration `yaml:"outcome_ttl"` // how long replay outcomes wait to be collected
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	ConfigTTL     time.Duration `yaml:"config_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"` // defaults to config_ttl
}

// FallbackConfig decides which operations may degrade to synthetic data.
// Video upload and session summary never degrade.
type FallbackConfig struct {
	FrameAnalysis  *bool `yaml:"frame_analysis"`
	ExerciseConfig *bool `yaml:"exercise_config"`
}

// ConnectivityConfig controls the health probe used as a connectivity source.
type ConnectivityConfig struct {
	ProbeInterval time.Duration `yaml:"probe_interval"`
}
