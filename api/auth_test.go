package api

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.GoogleClientID = "client.apps.googleusercontent.com"
	router := newRouter(cfg, route{http.MethodGet, "/api/auth/config", AuthConfig(cfg)})

	rec := do(router, http.MethodGet, "/api/auth/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"enable":true,"services":{"google":"client.apps.googleusercontent.com"}}`, rec.Body.String())
}

func TestAuthVerify(t *testing.T) {
	cfg := testConfig()
	rdb, mr := newRedis(t)
	router := newRouter(cfg, route{http.MethodGet, "/api/auth", AuthVerify(cfg, rdb)})

	rec := do(router, http.MethodGet, "/api/auth", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `false`, rec.Body.String())

	session := login(t, cfg, mr)
	rec = do(router, http.MethodGet, "/api/auth", "", session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `true`, rec.Body.String())

	// expired sessions are gone
	mr.SetTTL(cfg.Auth.SessionsRedisPrefix+session.Value, cfg.Auth.SessionTTL)
	mr.FastForward(2 * cfg.Auth.SessionTTL)
	rec = do(router, http.MethodGet, "/api/auth", "", session)
	assert.JSONEq(t, `false`, rec.Body.String())
}

func TestAuthDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Enable = false
	router := newRouter(cfg,
		route{http.MethodGet, "/api/auth", AuthVerify(cfg, nil)},
		route{http.MethodPost, "/api/auth", Authenticate(cfg, nil, nil)},
		route{http.MethodDelete, "/api/auth", Logout(cfg, nil)},
	)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		rec := do(router, method, "/api/auth", "")
		assert.Equal(t, http.StatusMisdirectedRequest, rec.Code, method)
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	cfg := testConfig()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	rdb, _ := newRedis(t)
	router := newRouter(cfg, route{http.MethodPost, "/api/auth", Authenticate(cfg, db, rdb)})

	testCases := []struct {
		name string
		body string
	}{
		{name: "malformed body", body: `{"token":`},
		{name: "unknown service", body: `{"token":"t","service":"github"}`},
		// no google client id configured
		{name: "google disabled", body: `{"token":"t","service":"google"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(router, http.MethodPost, "/api/auth", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, rec.Result().Cookies())
		})
	}

	// no query may reach the admins table
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogout(t *testing.T) {
	cfg := testConfig()
	rdb, mr := newRedis(t)
	router := newRouter(cfg, route{http.MethodDelete, "/api/auth", Logout(cfg, rdb)})
	session := login(t, cfg, mr)

	rec := do(router, http.MethodDelete, "/api/auth", "", session)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, mr.Exists(cfg.Auth.SessionsRedisPrefix+session.Value))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cfg.Auth.SessionCookie, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)

	// logging out without a session still clears the cookie
	rec = do(router, http.MethodDelete, "/api/auth", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
