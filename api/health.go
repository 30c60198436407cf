package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"snowflake-backend/handler"

	"go.uber.org/zap"
)

// Check reports whether a backing service is reachable.
type Check func(ctx context.Context) error

// GET /api/health
//
// Gets the health of the services that the backend depends on. Responds 503
// when any of them fails or doesn't answer within 3 seconds.
func HealthCheck(checks map[string]Check) handler.Handler {
	type status struct {
		name string
		ok   bool
	}
	type responseBody struct {
		Services map[string]bool `json:"services"`
	}
	return handler.HandlerFunc(func(i handler.Input) (int, error) {

		// context that times out after 3 seconds
		ctx, finish := context.WithTimeout(i.Request.Context(), 3*time.Second)
		defer finish()

		// buffered so that late answers never block
		statuses := make(chan status, len(checks))
		for name, check := range checks {
			go func(name string, check Check) {
				err := check(ctx)
				if err != nil {
					i.Logger.Error("health check failed", zap.String("service", name), zap.Error(err))
				}
				statuses <- status{name, err == nil}
			}(name, check)
		}

		resbody := responseBody{Services: make(map[string]bool, len(checks))}
		for name := range checks {
			resbody.Services[name] = false
		}
	loop:
		for received := 0; received < len(checks); received++ {
			select {
			case s := <-statuses:
				resbody.Services[s.name] = s.ok
			// timed out or request cancelled
			case <-ctx.Done():
				break loop
			}
		}

		code := http.StatusOK
		for _, ok := range resbody.Services {
			if !ok {
				code = http.StatusServiceUnavailable
			}
		}
		i.Response.Header().Set("Content-Type", "application/json")
		i.Response.WriteHeader(code)
		json.NewEncoder(i.Response).Encode(resbody)
		return code, nil
	})
}
