package config

import (
	"errors"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	// top-level
	HTTPDebug     bool   `mapstructure:"http_debug"`
	HTTPPort      uint16 `mapstructure:"http_port" validate:"gt=0"`
	LogDebug      bool   `mapstructure:"log_debug"`
	MetricsEnable bool   `mapstructure:"metrics_enable"`

	// service configs
	Snowflake SnowflakeConfig `mapstructure:",squash"`
	Watermark WatermarkConfig `mapstructure:",squash"`
	Auth      AuthConfig      `mapstructure:",squash"`
	Postgres  PostgresConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	S3        S3Config        `mapstructure:",squash"`
}

var (
	ErrMissingPostgres = errors.New("postgres connection settings are required")
	ErrMissingRedis    = errors.New("redis connection settings are required")
	ErrMissingS3       = errors.New("s3 connection settings are required")
)

func BindEnv(v *viper.Viper) {
	v.BindEnv("log_debug")
	v.BindEnv("http_port")
	v.BindEnv("http_debug")
	v.BindEnv("metrics_enable")
	v.BindEnv("region_id")
	v.BindEnv("worker_id")
	v.BindEnv("worker_id_from_hostname")
	v.BindEnv("worker_hostname_pattern")
	v.BindEnv("max_batch_size")
	v.BindEnv("watermark_backend")
	v.BindEnv("watermark_interval")
	v.BindEnv("watermark_redis_prefix")
	v.BindEnv("watermark_postgres_table")
	v.BindEnv("watermark_s3_bucket")
	v.BindEnv("watermark_s3_prefix")
	v.BindEnv("auth_enable")
	v.BindEnv("session_id_size")
	v.BindEnv("session_ttl")
	v.BindEnv("session_cookie")
	v.BindEnv("session_redis_prefix")
	v.BindEnv("session_insecure")
	v.BindEnv("google_client_id")
	v.BindEnv("postgres_endpoint")
	v.BindEnv("postgres_user")
	v.BindEnv("postgres_password")
	v.BindEnv("postgres_db")
	v.BindEnv("postgres_ssl_mode")
	v.BindEnv("postgres_max_open_conns")
	v.BindEnv("redis_endpoint")
	v.BindEnv("redis_password")
	v.BindEnv("redis_db")
	v.BindEnv("redis_dial_timeout")
	v.BindEnv("s3_endpoint")
	v.BindEnv("s3_region")
	v.BindEnv("s3_access_key")
	v.BindEnv("s3_secret_key")
}

// BindFlags registers command line flags for the settings operators most
// often override by hand. Flags win over the environment.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.Uint16("http-port", 80, "port to serve the http api on")
	fs.Bool("log-debug", false, "enable development logging")
	fs.Int64("region-id", 0, "region id packed into every id")
	fs.Int64("worker-id", 0, "worker id packed into every id")
	fs.String("watermark-backend", "none", "where to persist the last minted millisecond: none, redis, postgres or s3")

	bindings := map[string]string{
		"http_port":         "http-port",
		"log_debug":         "log-debug",
		"region_id":         "region-id",
		"worker_id":         "worker-id",
		"watermark_backend": "watermark-backend",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_debug", false)
	v.SetDefault("http_port", 80)
	v.SetDefault("http_debug", false)
	v.SetDefault("metrics_enable", true)
	v.SetDefault("region_id", 0)
	v.SetDefault("worker_id", 0)
	v.SetDefault("worker_id_from_hostname", false)
	v.SetDefault("worker_hostname_pattern", `^snowflake-backend-([0-9]+)$`)
	v.SetDefault("max_batch_size", 1000)
	v.SetDefault("watermark_backend", "none")
	v.SetDefault("watermark_interval", time.Second)
	v.SetDefault("watermark_redis_prefix", "watermark/")
	v.SetDefault("watermark_postgres_table", "watermarks")
	v.SetDefault("watermark_s3_prefix", "watermarks/")
	v.SetDefault("auth_enable", false)
	v.SetDefault("session_id_size", 32)
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("session_cookie", "snowflake_session")
	v.SetDefault("session_redis_prefix", "session/")
	v.SetDefault("session_insecure", false)
	v.SetDefault("postgres_ssl_mode", "require")
	v.SetDefault("postgres_max_open_conns", 8)
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_dial_timeout", 5*time.Second)
}

// NeedsPostgres reports whether any enabled feature talks to postgres.
func (c *Config) NeedsPostgres() bool {
	return c.Auth.Enable || c.Watermark.Backend == WatermarkPostgres
}

func (c *Config) NeedsRedis() bool {
	return c.Auth.Enable || c.Watermark.Backend == WatermarkRedis
}

func (c *Config) NeedsS3() bool {
	return c.Watermark.Backend == WatermarkS3
}

// Check verifies that connection settings exist for every service the
// configuration needs. The struct tags can't express this on their own.
func (c *Config) Check() error {
	if c.NeedsPostgres() && (c.Postgres.Endpoint == "" || c.Postgres.User == "" || c.Postgres.DB == "") {
		return ErrMissingPostgres
	}
	if c.NeedsRedis() && c.Redis.Endpoint == "" {
		return ErrMissingRedis
	}
	if c.NeedsS3() && (c.S3.Endpoint == "" || c.S3.Region == "" || c.Watermark.S3Bucket == "") {
		return ErrMissingS3
	}
	return nil
}
