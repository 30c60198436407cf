package config

import "time"

// Connection settings for the backing services. Which of them are required
// depends on the features enabled, see Config.Check.

type PostgresConfig struct {
	Endpoint     string `mapstructure:"postgres_endpoint"`
	User         string `mapstructure:"postgres_user"`
	Password     string `mapstructure:"postgres_password"`
	DB           string `mapstructure:"postgres_db"`
	SSLMode      string `mapstructure:"postgres_ssl_mode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns int    `mapstructure:"postgres_max_open_conns" validate:"gte=0"`
}

type RedisConfig struct {
	Endpoint    string        `mapstructure:"redis_endpoint"`
	Password    string        `mapstructure:"redis_password"`
	DB          int           `mapstructure:"redis_db" validate:"gte=0"`
	DialTimeout time.Duration `mapstructure:"redis_dial_timeout" validate:"gte=0"`
}

// S3Config points at any s3 compatible store. Without an access key requests
// are sent unsigned.
type S3Config struct {
	Endpoint  string `mapstructure:"s3_endpoint"`
	Region    string `mapstructure:"s3_region"`
	AccessKey string `mapstructure:"s3_access_key"`
	SecretKey string `mapstructure:"s3_secret_key" validate:"required_with=AccessKey"`
}
