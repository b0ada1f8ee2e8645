package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"MacroPull/pkg/logger"
)

// MaxPriceCacheTTL bounds how stale a cached price window may get.
const MaxPriceCacheTTL = time.Hour

type Config struct {
	Environment string        `yaml:"environment" default:"development"`
	Venue       string        `yaml:"venue" default:"America/New_York"`
	Log         logger.Config `yaml:"log"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	FRED struct {
		APIKey            string        `yaml:"api_key"`
		BaseURL           string        `yaml:"base_url" default:"https://api.stlouisfed.org/fred"`
		Timeout           time.Duration `yaml:"timeout" default:"15s"`
		ObservationLimit  int           `yaml:"observation_limit" default:"24"`
		RequestsPerMinute int           `yaml:"requests_per_minute" default:"120"`
	} `yaml:"fred"`
	Events struct {
		CacheTTL        time.Duration `yaml:"cache_ttl" default:"1h"`
		MaxPerIndicator int           `yaml:"max_per_indicator" default:"12"`
		SyntheticMonths int           `yaml:"synthetic_months" default:"12"`
	} `yaml:"events"`
	Market struct {
		Provider          string        `yaml:"provider" default:"yahoo"`
		Timeout           time.Duration `yaml:"timeout" default:"15s"`
		Workers           int           `yaml:"workers" default:"6"`
		RequestsPerSecond float64       `yaml:"requests_per_second" default:"5"`
		Before            time.Duration `yaml:"before" default:"1h"`
		After             time.Duration `yaml:"after" default:"2h"`
		Cache             struct {
			Enabled bool          `yaml:"enabled" default:"true"`
			TTL     time.Duration `yaml:"ttl" default:"5m"`
			MaxSize int           `yaml:"max_size" default:"2000"`
		} `yaml:"cache"`
		Yahoo struct {
			BaseURL string `yaml:"base_url" default:"https://query1.finance.yahoo.com"`
		} `yaml:"yahoo"`
		Polygon struct {
			APIKey  string `yaml:"api_key"`
			BaseURL string `yaml:"base_url" default:"https://api.polygon.io"`
		} `yaml:"polygon"`
	} `yaml:"market"`
	Redis struct {
		Enabled  bool   `yaml:"enabled" default:"false"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db" default:"0"`
		Prefix   string `yaml:"prefix" default:"macropull"`
	} `yaml:"redis"`
	Archive struct {
		Backend string `yaml:"backend" default:"none"`
		Consume bool   `yaml:"consume" default:"false"`
	} `yaml:"archive"`
	Kafka struct {
		Brokers      []string `yaml:"brokers" default:"[\"localhost:9092\"]"`
		Topic        string   `yaml:"topic" default:"macropull.reactions"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async" default:"false"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID  string `yaml:"group_id" default:"macropull-archive"`
			MinBytes int    `yaml:"min_bytes" default:"1"`
			MaxBytes int    `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host         string        `yaml:"host" default:"localhost"`
		Port         int           `yaml:"port" default:"9000"`
		Database     string        `yaml:"database" default:"macropull"`
		User         string        `yaml:"user" default:"default"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http" default:"false"`
		AsyncInsert  bool          `yaml:"async_insert" default:"false"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
	} `yaml:"clickhouse"`
}

// env holds the variables that override the file. Empty means "keep".
type env struct {
	FREDAPIKey     string   `envconfig:"FRED_API_KEY"`
	MarketProvider string   `envconfig:"MARKET_PROVIDER"`
	PolygonAPIKey  string   `envconfig:"POLYGON_API_KEY"`
	ArchiveBackend string   `envconfig:"ARCHIVE_BACKEND"`
	KafkaBrokers   []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic     string   `envconfig:"KAFKA_TOPIC"`
	RedisAddr      string   `envconfig:"REDIS_ADDR"`
	LogLevel       string   `envconfig:"LOG_LEVEL"`
	HTTPPort       int      `envconfig:"HTTP_PORT"`
}

// Default returns a config with every default applied.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// A .env file in the working directory is honoured when present.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	var e env
	if err := envconfig.Process("", &e); err != nil {
		return fmt.Errorf("read env: %w", err)
	}
	if e.FREDAPIKey != "" {
		c.FRED.APIKey = e.FREDAPIKey
	}
	if e.MarketProvider != "" {
		c.Market.Provider = e.MarketProvider
	}
	if e.PolygonAPIKey != "" {
		c.Market.Polygon.APIKey = e.PolygonAPIKey
	}
	if e.ArchiveBackend != "" {
		c.Archive.Backend = e.ArchiveBackend
	}
	if len(e.KafkaBrokers) > 0 {
		c.Kafka.Brokers = e.KafkaBrokers
	}
	if e.KafkaTopic != "" {
		c.Kafka.Topic = e.KafkaTopic
	}
	if e.RedisAddr != "" {
		c.Redis.Addr = e.RedisAddr
		c.Redis.Enabled = true
	}
	if e.LogLevel != "" {
		c.Log.Level = e.LogLevel
	}
	if e.HTTPPort != 0 {
		c.Server.Port = e.HTTPPort
	}
	return nil
}

// Validate checks if the configuration is valid. An empty FRED key is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if _, err := time.LoadLocation(c.Venue); err != nil {
		return fmt.Errorf("venue %q: %w", c.Venue, err)
	}
	switch c.Market.Provider {
	case "yahoo":
	case "polygon":
		if c.Market.Polygon.APIKey == "" {
			return fmt.Errorf("market.polygon.api_key is required when market.provider is 'polygon'")
		}
	default:
		return fmt.Errorf("market.provider must be 'yahoo' or 'polygon', got '%s'", c.Market.Provider)
	}
	if c.Market.Workers < 1 {
		return fmt.Errorf("market.workers must be >= 1, got %d", c.Market.Workers)
	}
	if c.Market.Cache.TTL <= 0 || c.Market.Cache.TTL > MaxPriceCacheTTL {
		return fmt.Errorf("market.cache.ttl must be in (0, %s], got %s", MaxPriceCacheTTL, c.Market.Cache.TTL)
	}
	if c.Market.Timeout <= 0 || c.FRED.Timeout <= 0 {
		return fmt.Errorf("provider timeouts must be positive")
	}
	if c.Events.CacheTTL <= 0 {
		return fmt.Errorf("events.cache_ttl must be positive")
	}
	if c.FRED.ObservationLimit < 2 {
		return fmt.Errorf("fred.observation_limit must be >= 2")
	}
	switch c.Archive.Backend {
	case "none", "clickhouse":
	case "kafka":
		if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.brokers and kafka.topic are required for the kafka archive")
		}
	default:
		return fmt.Errorf("archive.backend must be 'none', 'kafka' or 'clickhouse', got '%s'", c.Archive.Backend)
	}
	if c.Archive.Consume && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("archive.consume requires kafka.brokers")
	}
	return nil
}

// HasFREDKey reports whether the live economic pipeline can run.
func (c *Config) HasFREDKey() bool { return c.FRED.APIKey != "" }
