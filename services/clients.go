package services

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"snowflake-backend/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
)

// NewPostgres opens a pool for the lib/pq driver, which callers must import.
func NewPostgres(cfg *config.PostgresConfig) (*sql.DB, error) {
	dsn := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Endpoint,
		Path:     "/" + cfg.DB,
		RawQuery: url.Values{"sslmode": {cfg.SSLMode}}.Encode(),
	}
	db, err := sql.Open("postgres", dsn.String())
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	return db, nil
}

func NewRedis(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        cfg.Endpoint,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
}

// NewS3 returns a client that sends every request to cfg.Endpoint.
func NewS3(cfg *config.S3Config) (*s3.Client, error) {
	if cfg.Endpoint == "" || cfg.Region == "" {
		return nil, errors.New("s3 endpoint and region are required")
	}

	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			if service != s3.ServiceID || region != cfg.Region {
				return aws.Endpoint{}, fmt.Errorf("no endpoint for service %s in region %s", service, region)
			}
			return aws.Endpoint{
				PartitionID:       "aws",
				URL:               cfg.Endpoint,
				SigningRegion:     cfg.Region,
				HostnameImmutable: true,
			}, nil
		},
	)

	var creds aws.CredentialsProvider = aws.AnonymousCredentials{}
	if cfg.AccessKey != "" {
		creds = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	}

	return s3.NewFromConfig(aws.Config{
		Region:                      cfg.Region,
		Credentials:                 creds,
		EndpointResolverWithOptions: resolver,
	}), nil
}
