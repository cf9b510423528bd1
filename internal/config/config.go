package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the matchfeed service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
	Pool      PoolConfig      `yaml:"pool"`
	Feed      FeedConfig      `yaml:"feed"`
	Cache     CacheConfig     `yaml:"cache"`
	Queue     QueueConfig     `yaml:"queue"`
	Breaker   BreakerConfig   `yaml:"breaker"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds service-to-service API keys. Empty disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string        `yaml:"driver"` // valkey, redis (default: redis)
	Addrs            []string      `yaml:"addrs"`
	Password         string        `yaml:"password"`
	ReadinessTimeout int           `yaml:"readiness_timeout_sec"`
	DialTimeout      time.Duration `yaml:"dial_timeout"`
}

// PoolConfig holds ranking pool settings.
type PoolConfig struct {
	SampleSize int           `yaml:"sample_size"`
	TopN       int           `yaml:"top_n"`
	Overfetch  int           `yaml:"overfetch"`
	TTL        time.Duration `yaml:"ttl"`
}

// FeedConfig holds candidate page and swipe feed settings.
type FeedConfig struct {
	PageLimit       int           `yaml:"page_limit"`
	MaxPageLimit    int           `yaml:"max_page_limit"`
	SnapshotSize    int           `yaml:"snapshot_size"`
	LiveSampleSize  int           `yaml:"live_sample_size"`
	NewWindow       time.Duration `yaml:"new_window"`
	ListTTL         time.Duration `yaml:"list_ttl"`
	RefillThreshold int           `yaml:"refill_threshold"`
	RefillSize      int           `yaml:"refill_size"`
	MaxBatch        int           `yaml:"max_batch"`
	Wait            time.Duration `yaml:"wait"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	LockTTL         time.Duration `yaml:"lock_ttl"`
	ExhaustedTTL    time.Duration `yaml:"exhausted_ttl"`
}

// CacheConfig holds read cache TTLs.
type CacheConfig struct {
	PageTTL     time.Duration `yaml:"page_ttl"`
	SnapshotTTL time.Duration `yaml:"snapshot_ttl"`
	ScoreTTL    time.Duration `yaml:"score_ttl"`
}

// QueueConfig holds job queue settings.
type QueueConfig struct {
	Driver          string        `yaml:"driver"` // memory, nats (default: memory)
	NATSURL         string        `yaml:"nats_url"`
	RebuildWorkers  int           `yaml:"rebuild_workers"`
	RefillWorkers   int           `yaml:"refill_workers"`
	SwipeWorkers    int           `yaml:"swipe_workers"`
	MaxRetries      int           `yaml:"max_retries"`
	RetryInterval   time.Duration `yaml:"retry_interval"`
	RetryMaxBackoff time.Duration `yaml:"retry_max_backoff"`
	PoisonTopic     string        `yaml:"poison_topic"`
	AckWait         time.Duration `yaml:"ack_wait"`
	MaxDeliver      int           `yaml:"max_deliver"`
}

// BreakerConfig holds pool-tier circuit breaker settings.
type BreakerConfig struct {
	FailureThreshold uint32        `yaml:"failure_threshold"`
	MaxRequests      uint32        `yaml:"max_requests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
}

// SchedulerConfig holds periodic rebuild settings.
type SchedulerConfig struct {
	RebuildInterval time.Duration `yaml:"rebuild_interval"` // 0 disables
	Concurrency     int           `yaml:"concurrency"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	setInt := func(v *int, d int) {
		if *v <= 0 {
			*v = d
		}
	}
	setDur := func(v *time.Duration, d time.Duration) {
		if *v <= 0 {
			*v = d
		}
	}

	setInt(&c.HTTP.ReadTimeoutSec, 10)
	setInt(&c.HTTP.WriteTimeoutSec, 10)
	setInt(&c.HTTP.ShutdownSec, 10)
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	setInt(&c.Database.ReadinessTimeout, 10)

	setInt(&c.Pool.SampleSize, 300)
	setInt(&c.Pool.TopN, 150)
	setInt(&c.Pool.Overfetch, 3)
	setDur(&c.Pool.TTL, 24*time.Hour)

	setInt(&c.Feed.PageLimit, 20)
	setInt(&c.Feed.MaxPageLimit, 50)
	setInt(&c.Feed.SnapshotSize, 200)
	setInt(&c.Feed.LiveSampleSize, 100)
	setDur(&c.Feed.NewWindow, 7*24*time.Hour)
	setDur(&c.Feed.ListTTL, 7*24*time.Hour)
	setInt(&c.Feed.RefillThreshold, 20)
	setInt(&c.Feed.RefillSize, 50)
	setInt(&c.Feed.MaxBatch, 50)
	setDur(&c.Feed.Wait, 2*time.Second)
	setDur(&c.Feed.PollInterval, 100*time.Millisecond)
	setDur(&c.Feed.LockTTL, 30*time.Second)
	setDur(&c.Feed.ExhaustedTTL, 5*time.Minute)

	setDur(&c.Cache.PageTTL, 2*time.Minute)
	setDur(&c.Cache.SnapshotTTL, 10*time.Minute)
	setDur(&c.Cache.ScoreTTL, time.Hour)

	if c.Queue.Driver == "" {
		c.Queue.Driver = "memory"
	}
	setInt(&c.Queue.RebuildWorkers, 4)
	setInt(&c.Queue.RefillWorkers, 8)
	setInt(&c.Queue.SwipeWorkers, 8)
	setInt(&c.Queue.MaxRetries, 3)
	setDur(&c.Queue.RetryInterval, 500*time.Millisecond)
	setDur(&c.Queue.RetryMaxBackoff, 10*time.Second)
	if c.Queue.PoisonTopic == "" {
		c.Queue.PoisonTopic = "matchfeed-jobs-poison"
	}
	setDur(&c.Queue.AckWait, 30*time.Second)
	setInt(&c.Queue.MaxDeliver, 5)

	if c.Breaker.FailureThreshold == 0 {
		c.Breaker.FailureThreshold = 5
	}
	if c.Breaker.MaxRequests == 0 {
		c.Breaker.MaxRequests = 1
	}
	setDur(&c.Breaker.Timeout, 30*time.Second)

	setInt(&c.Scheduler.Concurrency, 16)
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Queue.Driver {
	case "memory":
	case "nats":
		if c.Queue.NATSURL == "" {
			return fmt.Errorf("queue.nats_url is required for the nats driver")
		}
	default:
		return fmt.Errorf("queue.driver must be \"memory\" or \"nats\", got %q", c.Queue.Driver)
	}
	if c.Feed.PageLimit > c.Feed.MaxPageLimit {
		return fmt.Errorf("feed.page_limit (%d) exceeds feed.max_page_limit (%d)", c.Feed.PageLimit, c.Feed.MaxPageLimit)
	}
	if c.Pool.TopN > c.Pool.SampleSize {
		return fmt.Errorf("pool.top_n (%d) exceeds pool.sample_size (%d)", c.Pool.TopN, c.Pool.SampleSize)
	}
	if c.Scheduler.RebuildInterval < 0 {
		return fmt.Errorf("scheduler.rebuild_interval must not be negative")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
