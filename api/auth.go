package api

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"snowflake-backend/config"
	"snowflake-backend/handler"

	"github.com/go-redis/redis/v8"
	"google.golang.org/api/oauth2/v1"
	"google.golang.org/api/option"
)

var errAuthDisabled = errors.New("authentication is not enabled")

// GET /api/auth/config
//
// Get authentication configuration.
func AuthConfig(cfg *config.Config) handler.Handler {
	// contruct response
	var resbody struct {
		Enable   bool `json:"enable"`
		Services struct {
			GoogleClientID string `json:"google,omitempty"`
		} `json:"services"`
	}
	resbody.Enable = cfg.Auth.Enable
	resbody.Services.GoogleClientID = cfg.Auth.GoogleClientID

	// convert the response to bytes prior to request as it is static
	bytes, err := json.Marshal(resbody)
	if err != nil {
		panic(err)
	}

	return handler.NewStaticHandler(bytes, "application/json", http.StatusOK)
}

// GET /api/auth
//
// Checks whether the current session is authenticated.
func AuthVerify(cfg *config.Config, rdb *redis.Client) handler.Handler {
	if !cfg.Auth.Enable {
		return handler.NewErrorHandler(http.StatusMisdirectedRequest, errAuthDisabled)
	}
	return handler.HandlerFunc(func(i handler.Input) (int, error) {
		authenticated, err := sessionAuthenticated(i.Request, cfg, rdb)
		if err != nil {
			return http.StatusInternalServerError, err
		}

		// respond with a boolean value
		i.Response.Header().Set("Content-Type", "application/json")
		json.NewEncoder(i.Response).Encode(authenticated)
		return http.StatusOK, nil
	})
}

// POST /api/auth
//
// Receives a token from the user, authenticates it and creates a session.
func Authenticate(cfg *config.Config, db *sql.DB, rdb *redis.Client) handler.Handler {
	if !cfg.Auth.Enable {
		return handler.NewErrorHandler(http.StatusMisdirectedRequest, errAuthDisabled)
	}
	svc, err := newAuthServices(context.Background(), cfg)
	if err != nil {
		panic(err)
	}
	return &authenticateHandler{cfg, db, rdb, svc}
}

type authenticateHandler struct {
	cfg *config.Config
	db  *sql.DB
	rdb *redis.Client
	svc *authServices
}

func (h *authenticateHandler) Handle(i handler.Input) (int, error) {
	// decode request body
	decoder := json.NewDecoder(i.Request.Body)
	var reqbody struct {
		Token   string `json:"token"`
		Service string `json:"service"`
	}
	err := decoder.Decode(&reqbody)
	if err != nil {
		return http.StatusBadRequest, fmt.Errorf("failed to decode request body: %v", err)
	}

	// get verified email from token
	var email string
	switch reqbody.Service {
	case "google":
		email, err = h.svc.verifyGoogleToken(i.Request.Context(), reqbody.Token)
		if err != nil {
			return http.StatusBadRequest, err
		}
	default:
		return http.StatusBadRequest, fmt.Errorf("unrecognized auth service: %v", reqbody.Service)
	}

	// check whether email is admin
	rows, err := h.db.QueryContext(i.Request.Context(), "SELECT 1 FROM admins WHERE email = $1", email)
	if err != nil {
		return http.StatusInternalServerError, err
	}
	defer rows.Close()
	if !rows.Next() {
		// no row was returned, so the email is not admin
		return http.StatusUnauthorized, errors.New("unauthorized authentication attempt")
	}

	// create session
	id := make([]byte, h.cfg.Auth.SessionIDSize)
	_, err = io.ReadFull(rand.Reader, id)
	if err != nil {
		return http.StatusInternalServerError, err
	}
	idB64 := base64.URLEncoding.EncodeToString(id)
	key := h.cfg.Auth.SessionsRedisPrefix + idB64
	val, err := h.rdb.SetNX(i.Request.Context(), key, email, h.cfg.Auth.SessionTTL).Result()
	if err != nil {
		return http.StatusInternalServerError, err
	} else if !val {
		return http.StatusInternalServerError, errors.New("session id collision")
	}

	// everything succeeded
	sessionCookie := http.Cookie{
		Name:     h.cfg.Auth.SessionCookie,
		Value:    idB64,
		MaxAge:   int(h.cfg.Auth.SessionTTL.Seconds()),
		Secure:   !h.cfg.Auth.SessionInsecure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	http.SetCookie(i.Response, &sessionCookie)
	i.Response.WriteHeader(http.StatusOK)

	return http.StatusOK, nil
}

// DELETE /api/auth
//
// Ends the current session.
func Logout(cfg *config.Config, rdb *redis.Client) handler.Handler {
	if !cfg.Auth.Enable {
		return handler.NewErrorHandler(http.StatusMisdirectedRequest, errAuthDisabled)
	}
	return handler.HandlerFunc(func(i handler.Input) (int, error) {
		session, err := i.Request.Cookie(cfg.Auth.SessionCookie)
		if err == nil {
			err = rdb.Del(i.Request.Context(), cfg.Auth.SessionsRedisPrefix+session.Value).Err()
			if err != nil {
				return http.StatusInternalServerError, err
			}
		}
		http.SetCookie(i.Response, &http.Cookie{
			Name:   cfg.Auth.SessionCookie,
			Value:  "",
			MaxAge: -1,
		})
		i.Response.WriteHeader(http.StatusNoContent)
		return http.StatusNoContent, nil
	})
}

// HELPERS

// sessionAuthenticated determines authentication status via redis.
func sessionAuthenticated(r *http.Request, cfg *config.Config, rdb *redis.Client) (bool, error) {
	session, err := r.Cookie(cfg.Auth.SessionCookie)
	if err != nil { // cookie not found
		return false, nil
	}
	key := cfg.Auth.SessionsRedisPrefix + session.Value
	exists, err := rdb.Exists(r.Context(), key).Result()
	if err != nil {
		return false, err
	}
	return exists == 1, nil
}

type authServices struct {
	google         *oauth2.Service
	googleClientID string
}

func newAuthServices(ctx context.Context, cfg *config.Config) (*authServices, error) {
	services := &authServices{}
	if cfg.Auth.GoogleClientID != "" {
		google, err := oauth2.NewService(ctx, option.WithHTTPClient(&http.Client{}))
		if err != nil {
			return nil, err
		}
		services.google = google
		services.googleClientID = cfg.Auth.GoogleClientID
	}
	return services, nil
}

func (s *authServices) verifyGoogleToken(ctx context.Context, token string) (string, error) {
	if s.google == nil {
		return "", errors.New("google oauth2 is not enabled")
	}
	info, err := s.google.Tokeninfo().IdToken(token).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if info.Audience != s.googleClientID {
		return "", errors.New("google token was issued to another client")
	}
	if !info.VerifiedEmail {
		return "", errors.New("google token info did not contain a verified email")
	}
	return info.Email, nil
}
