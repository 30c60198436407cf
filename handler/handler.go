package handler

import (
	"encoding/json"
	"math/rand"
	"net/http"

	"snowflake-backend/config"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Input is everything a handler gets to see about a request.
type Input struct {
	Response http.ResponseWriter
	Request  *http.Request
	Params   httprouter.Params
	Logger   *zap.Logger
}

// A Handler serves a request and returns the status it responded with. When
// nothing has been written yet, the status and error are rendered as a json
// error body by Wrap.
type Handler interface {
	Handle(i Input) (int, error)
}

type HandlerFunc func(i Input) (int, error)

func (f HandlerFunc) Handle(i Input) (int, error) {
	return f(i)
}

// Wrap adapts a Handler to an httprouter.Handle.
// Request scoped logging and error rendering are injected here.
func Wrap(cfg *config.Config, logger *zap.Logger, h Handler) httprouter.Handle {

	type responseBody struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
		Error   string `json:"error,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {

		// create a logger with useful contextuals
		logger := logger.With(
			zap.Int64("request_id", rand.Int63()),
			zap.String("method", r.Method),
			zap.Stringer("url", r.URL),
		)
		logger.Debug("request received")

		// wrap the response writer to later check whether header and status were written
		wrap := responseWriterWrapper{
			Writer: w,
			Logger: logger,
		}

		status, err := h.Handle(Input{
			Response: &wrap,
			Request:  r,
			Params:   ps,
			Logger:   logger,
		})
		logger.Debug("request processed", zap.Int("status", status))

		// log any returned error, with log level corresponding to status
		if err != nil {
			logger := logger.With(zap.Error(err), zap.Int("status", status))
			switch {
			case status >= 400 && status <= 499:
				logger.Warn("error returned by http handler")
			case status >= 500 && status <= 599:
				logger.Error("error returned by http handler")
			default:
				logger.Info("error returned by http handler")
			}
		}

		if wrap.HeaderWritten {
			if status != wrap.StatusWritten {
				logger.Error(
					"status returned from handler does not match written status",
					zap.Int("status", status),
					zap.Int("statusWritten", wrap.StatusWritten),
				)
			}
			return
		}

		// {
		//   "status": 500,
		//   "message": "Internal Server Error",
		//   "error": "only present when http_debug is true"
		// }
		resbody := responseBody{
			Status:  status,
			Message: http.StatusText(status),
		}
		if cfg.HTTPDebug && err != nil {
			resbody.Error = err.Error()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resbody)
	}
}

type responseWriterWrapper struct {
	Writer        http.ResponseWriter
	HeaderWritten bool
	StatusWritten int
	Logger        *zap.Logger
}

func (w *responseWriterWrapper) Header() http.Header {
	return w.Writer.Header()
}

func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	if !w.HeaderWritten {
		w.StatusWritten = http.StatusOK
	}
	w.HeaderWritten = true
	return w.Writer.Write(b)
}

func (w *responseWriterWrapper) WriteHeader(status int) {
	if w.HeaderWritten {
		w.Logger.Error(
			"unable to write http status, it has already been written",
			zap.Int("status", status),
			zap.Int("statusWritten", w.StatusWritten),
		)
		return
	}
	w.StatusWritten = status
	w.HeaderWritten = true
	w.Writer.WriteHeader(status)
}
