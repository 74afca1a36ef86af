package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DefaultWebhookURL is the compiled-in endpoint used when no override is stored.
const DefaultWebhookURL = "https://your-n8n-instance.com/webhook/sga-ai-feedback"

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	Server    ServerConfig
	Webhook   WebhookConfig
	Storage   StorageConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	History   HistoryConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    int
	WriteTimeout   int
	BodyLimit      int
	AllowedOrigins []string
	Development    bool
}

type WebhookConfig struct {
	DefaultURL string
	TimeoutSec int
	Breaker    BreakerConfig
}

type BreakerConfig struct {
	Enabled          bool
	FailureThreshold uint32
	OpenTimeoutSec   int
}

// StorageConfig picks the backend for each storage area. Settings correspond
// to the extension's synced area, history to its local area.
type StorageConfig struct {
	SettingsBackend string
	HistoryBackend  string
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

type HistoryConfig struct {
	Serialize bool
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/sga-feedback")

	return load(v)
}

// LoadFile reads configuration from an explicit file path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("SGA_FEEDBACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	for _, backend := range []string{c.Storage.SettingsBackend, c.Storage.HistoryBackend} {
		switch backend {
		case BackendMemory, BackendSQLite, BackendRedis:
		default:
			return fmt.Errorf("unsupported storage backend %q", backend)
		}
	}
	if c.Webhook.TimeoutSec <= 0 {
		return fmt.Errorf("webhook.timeoutSec must be positive, got %d", c.Webhook.TimeoutSec)
	}
	return nil
}

// Uses reports whether any storage area is configured with backend.
func (c *Config) Uses(backend string) bool {
	return c.Storage.SettingsBackend == backend || c.Storage.HistoryBackend == backend
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.bodyLimit", 1048576)
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("server.development", false)

	v.SetDefault("webhook.defaultUrl", DefaultWebhookURL)
	v.SetDefault("webhook.timeoutSec", 30)
	v.SetDefault("webhook.breaker.enabled", false)
	v.SetDefault("webhook.breaker.failureThreshold", 5)
	v.SetDefault("webhook.breaker.openTimeoutSec", 60)

	v.SetDefault("storage.settingsBackend", BackendSQLite)
	v.SetDefault("storage.historyBackend", BackendSQLite)

	v.SetDefault("sqlite.path", "./data/feedback.db")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.keyPrefix", "sga-feedback")

	v.SetDefault("history.serialize", true)

	v.SetDefault("rateLimit.requestsPerMinute", 60)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputPath", "stdout")
}
