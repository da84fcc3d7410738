package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/newthinker/signaldeck/internal/core"
	"github.com/newthinker/signaldeck/internal/storage/kv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. SIGNALDECK_SERVER_PORT.
const EnvPrefix = "SIGNALDECK"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Predictor PredictorConfig `mapstructure:"predictor"`
	Refresh   RefreshConfig   `mapstructure:"refresh"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Watchlist WatchlistConfig `mapstructure:"watchlist"`
	Views     ViewsConfig     `mapstructure:"views"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Notifiers NotifiersConfig `mapstructure:"notifiers"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Mode         string `mapstructure:"mode"` // "release" or "debug"
	TemplatesDir string `mapstructure:"templates_dir"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// PredictorConfig points at the prediction service.
type PredictorConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RefreshConfig drives the background refresh and display countdown.
type RefreshConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	CountdownTick time.Duration `mapstructure:"countdown_tick"`
}

type StorageConfig struct {
	Type  string      `mapstructure:"type"` // "localfs", "s3", "redis" or "memory"
	Path  string      `mapstructure:"path"` // For localfs
	S3    S3Config    `mapstructure:"s3"`
	Redis RedisConfig `mapstructure:"redis"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	Namespace string `mapstructure:"namespace"`
}

// KV converts the storage section to backend options.
func (s StorageConfig) KV() kv.Config {
	return kv.Config{
		Type: s.Type,
		Path: s.Path,
		S3: kv.S3Config{
			Bucket:    s.S3.Bucket,
			Endpoint:  s.S3.Endpoint,
			Region:    s.S3.Region,
			AccessKey: s.S3.AccessKey,
			SecretKey: s.S3.SecretKey,
			Prefix:    s.S3.Prefix,
		},
		Redis: kv.RedisConfig{
			Addr:      s.Redis.Addr,
			Password:  s.Redis.Password,
			DB:        s.Redis.DB,
			Namespace: s.Redis.Namespace,
		},
	}
}

// WatchlistConfig holds the symbols used when nothing is persisted yet.
type WatchlistConfig struct {
	Defaults []string `mapstructure:"defaults"`
}

// ViewsConfig tunes the derived portfolio lists.
type ViewsConfig struct {
	DefaultSort         string  `mapstructure:"default_sort"`
	TopMoversLimit      int     `mapstructure:"top_movers_limit"`
	SuggestionThreshold float64 `mapstructure:"suggestion_threshold"`
	SuggestionLimit     int     `mapstructure:"suggestion_limit"`
}

// AlertsConfig controls strong-signal routing to notifiers.
type AlertsConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	MinConfidence float64       `mapstructure:"min_confidence"` // 0-100
	Cooldown      time.Duration `mapstructure:"cooldown"`
	StrongOnly    bool          `mapstructure:"strong_only"`
	Directions    []string      `mapstructure:"directions"`
}

type NotifiersConfig struct {
	Webhook WebhookConfig `mapstructure:"webhook"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
}

type WebhookConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file on top of Defaults. An empty path
// loads defaults plus environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	// Support environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand ${VAR} references in string values
	for _, key := range v.AllKeys() {
		if val, ok := v.Get(key).(string); ok && strings.Contains(val, "${") {
			v.Set(key, os.ExpandEnv(val))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.templates_dir", d.Server.TemplatesDir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.encoding", d.Log.Encoding)
	v.SetDefault("predictor.base_url", d.Predictor.BaseURL)
	v.SetDefault("predictor.timeout", d.Predictor.Timeout)
	v.SetDefault("refresh.interval", d.Refresh.Interval)
	v.SetDefault("refresh.countdown_tick", d.Refresh.CountdownTick)
	v.SetDefault("storage.type", d.Storage.Type)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.region", d.Storage.S3.Region)
	v.SetDefault("storage.s3.access_key", "")
	v.SetDefault("storage.s3.secret_key", "")
	v.SetDefault("storage.s3.prefix", "")
	v.SetDefault("storage.redis.addr", d.Storage.Redis.Addr)
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", d.Storage.Redis.DB)
	v.SetDefault("storage.redis.namespace", d.Storage.Redis.Namespace)
	v.SetDefault("watchlist.defaults", d.Watchlist.Defaults)
	v.SetDefault("views.default_sort", d.Views.DefaultSort)
	v.SetDefault("views.top_movers_limit", d.Views.TopMoversLimit)
	v.SetDefault("views.suggestion_threshold", d.Views.SuggestionThreshold)
	v.SetDefault("views.suggestion_limit", d.Views.SuggestionLimit)
	v.SetDefault("alerts.enabled", d.Alerts.Enabled)
	v.SetDefault("alerts.min_confidence", d.Alerts.MinConfidence)
	v.SetDefault("alerts.cooldown", d.Alerts.Cooldown)
	v.SetDefault("alerts.strong_only", d.Alerts.StrongOnly)
	v.SetDefault("alerts.directions", d.Alerts.Directions)
	v.SetDefault("notifiers.webhook.enabled", false)
	v.SetDefault("notifiers.webhook.url", "")
	v.SetDefault("notifiers.kafka.enabled", false)
	v.SetDefault("notifiers.kafka.topic", d.Notifiers.Kafka.Topic)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "release",
		},
		Log: LogConfig{
			Level: "info",
		},
		Predictor: PredictorConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 2 * time.Minute,
		},
		Refresh: RefreshConfig{
			Interval:      time.Hour,
			CountdownTick: time.Second,
		},
		Storage: StorageConfig{
			Type: kv.TypeLocalFS,
			Path: "./data",
			S3:   S3Config{Region: "us-east-1"},
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				Namespace: "signaldeck",
			},
		},
		Watchlist: WatchlistConfig{
			Defaults: []string{"AAPL", "GOOGL", "MSFT", "TSLA"},
		},
		Views: ViewsConfig{
			DefaultSort:         "symbol",
			TopMoversLimit:      5,
			SuggestionThreshold: 0.30,
			SuggestionLimit:     5,
		},
		Alerts: AlertsConfig{
			Enabled:       false,
			MinConfidence: 90,
			Cooldown:      time.Hour,
			StrongOnly:    true,
			Directions:    []string{"BUY", "SELL"},
		},
		Notifiers: NotifiersConfig{
			Kafka: KafkaConfig{Topic: "signaldeck.signals"},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	// Predictor validation
	if c.Predictor.BaseURL == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("predictor base_url is required"))
	}
	if u, err := url.Parse(c.Predictor.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("predictor base_url must be an http(s) URL, got %q", c.Predictor.BaseURL))
	}
	if c.Predictor.Timeout < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("predictor timeout cannot be negative, got %s", c.Predictor.Timeout))
	}

	// Refresh validation
	if c.Refresh.Interval <= 0 || c.Refresh.CountdownTick <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("refresh interval and countdown_tick must be positive"))
	}
	if c.Refresh.CountdownTick > c.Refresh.Interval {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("countdown_tick %s exceeds refresh interval %s", c.Refresh.CountdownTick, c.Refresh.Interval))
	}

	// Storage validation
	switch c.Storage.Type {
	case "", kv.TypeLocalFS:
		if c.Storage.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage path required for localfs"))
		}
	case kv.TypeS3:
		if c.Storage.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage s3 bucket required for s3"))
		}
	case kv.TypeRedis:
		if c.Storage.Redis.Addr == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage redis addr required for redis"))
		}
	case kv.TypeMemory:
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown storage type %q", c.Storage.Type))
	}

	// Views validation
	if c.Views.TopMoversLimit < 0 || c.Views.SuggestionLimit < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("view limits cannot be negative"))
	}

	// Alerts validation
	if c.Alerts.MinConfidence < 0 || c.Alerts.MinConfidence > 100 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("min_confidence must be between 0 and 100, got %f", c.Alerts.MinConfidence))
	}
	if c.Alerts.Cooldown < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("alert cooldown cannot be negative, got %s", c.Alerts.Cooldown))
	}
	for _, d := range c.Alerts.Directions {
		if !core.Direction(strings.ToUpper(d)).Valid() {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown alert direction %q", d))
		}
	}

	// Notifier validation - enabled notifiers need their endpoint
	if c.Notifiers.Webhook.Enabled && c.Notifiers.Webhook.URL == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("webhook url required when webhook notifier is enabled"))
	}
	if c.Notifiers.Kafka.Enabled && len(c.Notifiers.Kafka.Brokers) == 0 {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("kafka brokers required when kafka notifier is enabled"))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("metrics path must start with /, got %q", c.Metrics.Path))
	}

	return nil
}

// AlertDirections returns the configured directions as typed values.
func (a AlertsConfig) AlertDirections() []core.Direction {
	out := make([]core.Direction, 0, len(a.Directions))
	for _, d := range a.Directions {
		out = append(out, core.Direction(strings.ToUpper(d)))
	}
	return out
}

// DefaultSymbols returns the normalized default watchlist.
func (w WatchlistConfig) DefaultSymbols() []core.Symbol {
	out := make([]core.Symbol, 0, len(w.Defaults))
	for _, raw := range w.Defaults {
		if s, err := core.ParseSymbol(raw); err == nil {
			out = append(out, s)
		}
	}
	return out
}
