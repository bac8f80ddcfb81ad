package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml (if any), a .env file (if any) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.AddConfigPath("/app/configs")

	return load(v)
}

// LoadFile reads configuration from an explicit file path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	v.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	v.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	v.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	v.BindEnv("queue.url", "NATS_URL", "AMQP_URL", "APP_QUEUE_URL")
	v.BindEnv("jwt.secret", "JWT_SECRET", "APP_JWT_SECRET")
	v.BindEnv("notification.email.api_key", "SENDGRID_API_KEY")
	v.BindEnv("app.environment", "APP_ENVIRONMENT")
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("seed.admin_email", "ADMIN_EMAIL")
	v.BindEnv("seed.admin_password", "ADMIN_PASSWORD")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "imob-crm")
	v.SetDefault("app.version", "v1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.public_url", "http://localhost:5173")

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.body_limit", 4*1024*1024)

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.key_prefix", "imob:")
	v.SetDefault("storage.id_allocator", "memory")

	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.dial_timeout", 5*time.Second)

	v.SetDefault("queue.driver", "memory")
	v.SetDefault("queue.subject", "crm.events")
	v.SetDefault("queue.max_reconnects", 10)
	v.SetDefault("queue.reconnect_wait", 2*time.Second)
	v.SetDefault("queue.buffer_size", 256)

	v.SetDefault("jwt.access_token_duration", 15*time.Minute)
	v.SetDefault("jwt.refresh_token_duration", 7*24*time.Hour)
	v.SetDefault("jwt.setup_token_duration", 72*time.Hour)
	v.SetDefault("jwt.issuer", "imob-crm")

	v.SetDefault("opentelemetry.service_name", "imob-crm")
	v.SetDefault("opentelemetry.jaeger.endpoint", "http://jaeger:14268/api/traces")
	v.SetDefault("opentelemetry.jaeger.sampler_param", 1.0)

	v.SetDefault("prometheus.enabled", true)
	v.SetDefault("prometheus.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file_path", "logs/imob-crm.log")

	v.SetDefault("rate_limiting.enabled", true)
	v.SetDefault("rate_limiting.rps", 20)
	v.SetDefault("rate_limiting.burst", 40)

	v.SetDefault("circuit_breaker.enabled", true)
	v.SetDefault("circuit_breaker.max_requests", 3)
	v.SetDefault("circuit_breaker.interval", time.Minute)
	v.SetDefault("circuit_breaker.timeout", 30*time.Second)
	v.SetDefault("circuit_breaker.failure_threshold", 0.6)

	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("notification.email.provider", "log")
	v.SetDefault("notification.email.from", "noreply@imob-crm.fr")
	v.SetDefault("notification.email.from_name", "Imob CRM")
	v.SetDefault("notification.email.smtp_host", "localhost")
	v.SetDefault("notification.email.smtp_port", 1025)

	v.SetDefault("cache.user_session_ttl", 5*time.Minute)
	v.SetDefault("cache.cleanup_interval", time.Minute)

	v.SetDefault("region.timezone", "Europe/Paris")
	v.SetDefault("region.locale", "fr")

	v.SetDefault("seed.admin_name", "Administrateur")
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "redis", "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}
	switch c.Storage.IDAllocator {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown id allocator: %q", c.Storage.IDAllocator)
	}
	switch c.Queue.Driver {
	case "memory", "nats", "rabbitmq":
	default:
		return fmt.Errorf("unknown queue driver: %q", c.Queue.Driver)
	}
	if (c.Storage.Driver == "postgres" || c.Storage.Driver == "sqlite") && c.Database.URL == "" {
		return fmt.Errorf("database.url is required for storage driver %q", c.Storage.Driver)
	}
	if c.App.Environment == "production" && c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required in production")
	}
	return nil
}
