package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/clinic-ledger/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-ledger/pkg/worker"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Clinic   ClinicConfig   `mapstructure:"clinic"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Outbox   OutboxConfig   `mapstructure:"outbox"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Export   ExportConfig   `mapstructure:"export"`
}

type ServerConfig struct {
	Port             int           `mapstructure:"port"`
	ReadTimeout      time.Duration `mapstructure:"read_timeout" split_words:"true"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout" split_words:"true"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout" split_words:"true"`
	RateLimitRPS     float64       `mapstructure:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"`
	RateLimitBurst   int           `mapstructure:"rate_limit_burst" split_words:"true"`
	AllowedOrigins   []string      `mapstructure:"allowed_origins" split_words:"true"`
	MetricsNamespace string        `mapstructure:"metrics_namespace" split_words:"true"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout" split_words:"true"`
	MaxBodyBytes     int64         `mapstructure:"max_body_bytes" split_words:"true"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" split_words:"true"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" split_words:"true"`
}

// DSN returns the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}

type LoggingConfig struct {
	Level  string            `mapstructure:"level"`
	Format string            `mapstructure:"format"`
	File   LoggingFileConfig `mapstructure:"file"`
}

type LoggingFileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" split_words:"true"`
	MaxBackups int    `mapstructure:"max_backups" split_words:"true"`
	MaxAgeDays int    `mapstructure:"max_age_days" split_words:"true"`
	Compress   bool   `mapstructure:"compress"`
}

type AuthConfig struct {
	Secret      string        `mapstructure:"secret"`
	Issuer      string        `mapstructure:"issuer"`
	TokenExpiry time.Duration `mapstructure:"token_expiry" split_words:"true"`
	BcryptCost  int           `mapstructure:"bcrypt_cost" split_words:"true"`
}

type ClinicConfig struct {
	Name        string `mapstructure:"name"`
	Address     string `mapstructure:"address"`
	Phone       string `mapstructure:"phone"`
	Footer      string `mapstructure:"footer"`
	PhoneRegion string `mapstructure:"phone_region" split_words:"true"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	Channel      string        `mapstructure:"channel"`
	MaxRetries   int           `mapstructure:"max_retries" split_words:"true"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff" split_words:"true"`
	PoolSize     int           `mapstructure:"pool_size" split_words:"true"`
	MinIdleConns int           `mapstructure:"min_idle_conns" split_words:"true"`
}

// ToBrokerConfig converts to the Redis broker settings.
func (c RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}

type OutboxConfig struct {
	BatchSize     int           `mapstructure:"batch_size" split_words:"true"`
	PollInterval  time.Duration `mapstructure:"poll_interval" split_words:"true"`
	RetryAttempts int           `mapstructure:"retry_attempts" split_words:"true"`
	RetryDelay    time.Duration `mapstructure:"retry_delay" split_words:"true"`
	MaxFailures   int           `mapstructure:"max_failures" split_words:"true"`
	Retention     time.Duration `mapstructure:"retention"`
	HealthPort    int           `mapstructure:"health_port" split_words:"true"`
}

func (c OutboxConfig) ToWorkerConfig() worker.OutboxProcessorConfig {
	return worker.OutboxProcessorConfig{
		BatchSize:     c.BatchSize,
		PollInterval:  c.PollInterval,
		RetryAttempts: c.RetryAttempts,
		RetryDelay:    c.RetryDelay,
		MaxFailures:   c.MaxFailures,
	}
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type ExportConfig struct {
	Directory  string   `mapstructure:"directory"`
	Format     string   `mapstructure:"format"`
	Recipients []string `mapstructure:"recipients"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.rate_limit_rps", 20)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.metrics_namespace", "clinic_ledger")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "clinic")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.max_size_mb", 50)
	v.SetDefault("logging.file.max_backups", 5)
	v.SetDefault("logging.file.max_age_days", 30)

	v.SetDefault("auth.issuer", "clinic-ledger")
	v.SetDefault("auth.token_expiry", 12*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 12)

	v.SetDefault("clinic.name", "Dental Clinic")
	v.SetDefault("clinic.phone_region", "IN")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.channel", "ledger.events")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.poll_interval", 5*time.Second)
	v.SetDefault("outbox.retry_attempts", 3)
	v.SetDefault("outbox.retry_delay", time.Second)
	v.SetDefault("outbox.max_failures", 10)
	v.SetDefault("outbox.retention", 7*24*time.Hour)
	v.SetDefault("outbox.health_port", 8081)

	v.SetDefault("smtp.port", 587)

	v.SetDefault("export.directory", ".")
	v.SetDefault("export.format", "xlsx")
}

// LoadConfig reads config.yaml (when present) and applies LEDGER_* environment
// overrides on top, e.g. LEDGER_DATABASE_HOST or LEDGER_AUTH_SECRET.
func LoadConfig() (*Config, error) {
	return LoadConfigFile("")
}

// LoadConfigFile is LoadConfig reading an explicit file. An empty path
// searches ".", "./config" and "/app/config".
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}
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

	if err := envconfig.Process("ledger", &config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects configurations the services cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required")
	}
	switch c.Export.Format {
	case "xlsx", "csv":
	default:
		return fmt.Errorf("unsupported export format %q", c.Export.Format)
	}
	return nil
}
