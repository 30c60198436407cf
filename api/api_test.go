package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"snowflake-backend/config"
	"snowflake-backend/handler"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	cfg := &config.Config{HTTPDebug: true}
	cfg.Snowflake.MaxBatchSize = 100
	cfg.Auth = config.AuthConfig{
		Enable:              true,
		SessionIDSize:       32,
		SessionTTL:          time.Hour,
		SessionCookie:       "snowflake_session",
		SessionsRedisPrefix: "session/",
	}
	return cfg
}

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

type route struct {
	method string
	path   string
	h      handler.Handler
}

func newRouter(cfg *config.Config, routes ...route) *httprouter.Router {
	router := httprouter.New()
	for _, r := range routes {
		router.Handle(r.method, r.path, handler.Wrap(cfg, zap.NewNop(), r.h))
	}
	return router
}

func do(router http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// login plants a session in redis the way Authenticate would.
func login(t *testing.T, cfg *config.Config, mr *miniredis.Miniredis) *http.Cookie {
	t.Helper()
	require.NoError(t, mr.Set(cfg.Auth.SessionsRedisPrefix+"abc", "admin@example.com"))
	return &http.Cookie{Name: cfg.Auth.SessionCookie, Value: "abc"}
}

var errBoom = errors.New("boom")

func failingCheck(context.Context) error { return errBoom }

func okCheck(context.Context) error { return nil }

func blockingCheck(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
