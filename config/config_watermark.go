package config

import "time"

const (
	WatermarkNone     = "none"
	WatermarkRedis    = "redis"
	WatermarkPostgres = "postgres"
	WatermarkS3       = "s3"
)

type WatermarkConfig struct {
	Backend       string        `mapstructure:"watermark_backend" validate:"oneof=none redis postgres s3"`
	Interval      time.Duration `mapstructure:"watermark_interval" validate:"gt=0"`
	RedisPrefix   string        `mapstructure:"watermark_redis_prefix" validate:"required"`
	PostgresTable string        `mapstructure:"watermark_postgres_table" validate:"required,alphanum"`
	S3Bucket      string        `mapstructure:"watermark_s3_bucket"`
	S3Prefix      string        `mapstructure:"watermark_s3_prefix"`
}
