package services

import (
	"database/sql"

	"snowflake-backend/config"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"go.uber.org/multierr"
)

// Services holds the clients of the backing services the configuration asks
// for. Clients that are not needed stay nil.
type Services struct {
	Postgres *sql.DB
	Redis    *redis.Client
	S3       *s3.Client
}

// Open creates a client for every service cfg needs. Nothing is dialled yet,
// connections are made lazily by the clients.
func Open(cfg *config.Config) (*Services, error) {
	s := &Services{}
	if cfg.NeedsPostgres() {
		db, err := NewPostgres(&cfg.Postgres)
		if err != nil {
			return nil, err
		}
		s.Postgres = db
	}
	if cfg.NeedsRedis() {
		s.Redis = NewRedis(&cfg.Redis)
	}
	if cfg.NeedsS3() {
		s3c, err := NewS3(&cfg.S3)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.S3 = s3c
	}
	return s, nil
}

func (s *Services) Close() error {
	var err error
	if s.Postgres != nil {
		err = multierr.Append(err, s.Postgres.Close())
	}
	if s.Redis != nil {
		err = multierr.Append(err, s.Redis.Close())
	}
	return err
}
