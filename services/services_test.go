package services

import (
	"testing"
	"time"

	"snowflake-backend/config"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_OnlyWhatIsNeeded(t *testing.T) {
	cfg := &config.Config{}
	cfg.Watermark.Backend = config.WatermarkNone

	s, err := Open(cfg)
	require.NoError(t, err)
	assert.Nil(t, s.Postgres)
	assert.Nil(t, s.Redis)
	assert.Nil(t, s.S3)
	assert.NoError(t, s.Close())
}

func TestOpen_Watermark(t *testing.T) {
	cfg := &config.Config{}
	cfg.Watermark.Backend = config.WatermarkS3
	cfg.S3 = config.S3Config{Endpoint: "http://localhost:9000", Region: "us-east-1"}

	s, err := Open(cfg)
	require.NoError(t, err)
	assert.NotNil(t, s.S3)
	assert.Nil(t, s.Redis)

	cfg.Watermark.Backend = config.WatermarkRedis
	cfg.Redis.Endpoint = "localhost:6379"
	s, err = Open(cfg)
	require.NoError(t, err)
	assert.NotNil(t, s.Redis)
	assert.NoError(t, s.Close())
}

func TestOpen_AuthNeedsPostgresAndRedis(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.Enable = true
	cfg.Postgres = config.PostgresConfig{Endpoint: "localhost:5432", User: "snowflake", Password: "p@ss/word", DB: "snowflake", SSLMode: "disable"}
	cfg.Redis.Endpoint = "localhost:6379"

	s, err := Open(cfg)
	require.NoError(t, err)
	assert.NotNil(t, s.Postgres)
	assert.NotNil(t, s.Redis)
	assert.NoError(t, s.Close())
}

func TestNewS3_RequiresEndpoint(t *testing.T) {
	_, err := NewS3(&config.S3Config{})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{true, false} {
		logger, err := NewLogger(debug)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}

func TestNewPostgres_EscapesCredentials(t *testing.T) {
	db, err := NewPostgres(&config.PostgresConfig{
		Endpoint: "localhost:5432",
		User:     "snowflake",
		Password: "p@ss/word?",
		DB:       "snowflake",
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

func TestNewRedis(t *testing.T) {
	rdb := NewRedis(&config.RedisConfig{Endpoint: "localhost:6379", DB: 2, DialTimeout: time.Second})
	defer rdb.Close()
	assert.Equal(t, 2, rdb.Options().DB)
	assert.Equal(t, time.Second, rdb.Options().DialTimeout)
}
