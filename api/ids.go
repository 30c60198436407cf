package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"snowflake-backend/config"
	"snowflake-backend/handler"
	"snowflake-backend/snowflake"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

/*
Example curl commands:

curl -X POST http://localhost:8080/api/ids
curl -X POST 'http://localhost:8080/api/ids?count=10'
curl -X GET http://localhost:8080/api/ids/6882582496895041536
curl -X GET http://localhost:8080/api/generator
curl -X PUT http://localhost:8080/api/generator -b 'snowflake_session=...' -d '{"region_id":3,"worker_id":7}'
*/

// Minter mints ids.
type Minter interface {
	NextID() (snowflake.ID, error)
}

// Identity reports which region and worker a generator mints for.
type Identity interface {
	Config() (regionID, workerID int64, ok bool)
	LastMillis() int64
}

// Reconfigurer moves a generator to a new region and worker.
type Reconfigurer interface {
	Reconfigure(ctx context.Context, regionID, workerID int64) error
}

// POST /api/ids?count=N
//
// Mints N ids, one when count is absent.
func MintIDs(cfg *config.Config, minter Minter) handler.Handler {
	return &mintIDsHandler{cfg, minter}
}

type mintIDsHandler struct {
	cfg    *config.Config
	minter Minter
}

func (h *mintIDsHandler) Handle(i handler.Input) (int, error) {
	count := 1
	if raw := i.Request.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return http.StatusBadRequest, fmt.Errorf("count must be a positive integer, got %q", raw)
		}
		if n > h.cfg.Snowflake.MaxBatchSize {
			return http.StatusBadRequest, fmt.Errorf("count %d exceeds the maximum batch size %d", n, h.cfg.Snowflake.MaxBatchSize)
		}
		count = n
	}

	var resbody struct {
		IDs []snowflake.ID `json:"ids"`
	}
	resbody.IDs = make([]snowflake.ID, 0, count)
	for n := 0; n < count; n++ {
		id, err := h.minter.NextID()
		if errors.Is(err, snowflake.ErrNotConfigured) {
			return http.StatusServiceUnavailable, err
		} else if err != nil {
			return http.StatusInternalServerError, err
		}
		resbody.IDs = append(resbody.IDs, id)
	}

	i.Response.Header().Set("Content-Type", "application/json")
	i.Response.WriteHeader(http.StatusCreated)
	json.NewEncoder(i.Response).Encode(resbody)
	return http.StatusCreated, nil
}

type decodedBody struct {
	ID              snowflake.ID `json:"id"`
	TimestampMillis int64        `json:"timestamp_ms"`
	Time            string       `json:"time"`
	RegionID        int64        `json:"region_id"`
	WorkerID        int64        `json:"worker_id"`
	Sequence        int64        `json:"sequence"`
}

// GET /api/ids/:id
//
// Decodes an id into its fields.
func DecodeID() handler.Handler {
	return handler.HandlerFunc(func(i handler.Input) (int, error) {
		id, err := snowflake.ParseID(i.Params.ByName("id"))
		if err != nil {
			return http.StatusBadRequest, err
		}
		d := snowflake.Decode(id)

		i.Response.Header().Set("Content-Type", "application/json")
		json.NewEncoder(i.Response).Encode(decodedBody{
			ID:              id,
			TimestampMillis: d.TimestampMillis,
			Time:            d.Time().Format("2006-01-02T15:04:05.000Z07:00"),
			RegionID:        d.RegionID,
			WorkerID:        d.WorkerID,
			Sequence:        d.Sequence,
		})
		return http.StatusOK, nil
	})
}

// GET /api/generator
//
// Describes the bit layout and the identity this process mints with.
func GeneratorInfo(identity Identity) handler.Handler {
	type layout struct {
		Timestamp int `json:"timestamp"`
		Region    int `json:"region"`
		Worker    int `json:"worker"`
		Sequence  int `json:"sequence"`
	}
	type responseBody struct {
		Configured bool   `json:"configured"`
		RegionID   int64  `json:"region_id"`
		WorkerID   int64  `json:"worker_id"`
		EpochMS    int64  `json:"epoch_ms"`
		LastMS     int64  `json:"last_ms"`
		Bits       layout `json:"bits"`
	}
	return handler.HandlerFunc(func(i handler.Input) (int, error) {
		var resbody responseBody
		resbody.RegionID, resbody.WorkerID, resbody.Configured = identity.Config()
		resbody.EpochMS = snowflake.Epoch
		resbody.LastMS = identity.LastMillis()
		resbody.Bits = layout{
			Timestamp: snowflake.TimestampBits,
			Region:    snowflake.RegionBits,
			Worker:    snowflake.WorkerBits,
			Sequence:  snowflake.SequenceBits,
		}

		i.Response.Header().Set("Content-Type", "application/json")
		json.NewEncoder(i.Response).Encode(resbody)
		return http.StatusOK, nil
	})
}

// PUT /api/generator
//
// Moves the generator to another region and worker. Ids minted afterwards may
// sort below ids minted before, so this is restricted to admin sessions.
func Reconfigure(cfg *config.Config, rdb *redis.Client, reconfigurer Reconfigurer) handler.Handler {
	if !cfg.Auth.Enable {
		return handler.NewErrorHandler(
			http.StatusMisdirectedRequest, errors.New("reconfiguration requires authentication to be enabled"),
		)
	}
	return &reconfigureHandler{cfg, rdb, reconfigurer}
}

type reconfigureHandler struct {
	cfg          *config.Config
	rdb          *redis.Client
	reconfigurer Reconfigurer
}

func (h *reconfigureHandler) Handle(i handler.Input) (int, error) {
	authenticated, err := sessionAuthenticated(i.Request, h.cfg, h.rdb)
	if err != nil {
		return http.StatusInternalServerError, err
	} else if !authenticated {
		return http.StatusUnauthorized, errors.New("reconfiguration requires an admin session")
	}

	var reqbody struct {
		RegionID *int64 `json:"region_id"`
		WorkerID *int64 `json:"worker_id"`
	}
	err = json.NewDecoder(i.Request.Body).Decode(&reqbody)
	if err != nil {
		return http.StatusBadRequest, fmt.Errorf("failed to decode request body: %v", err)
	}
	if reqbody.RegionID == nil || reqbody.WorkerID == nil {
		return http.StatusBadRequest, errors.New("region_id and worker_id are required")
	}

	err = h.reconfigurer.Reconfigure(i.Request.Context(), *reqbody.RegionID, *reqbody.WorkerID)
	if errors.Is(err, snowflake.ErrRegionOutOfRange) || errors.Is(err, snowflake.ErrWorkerOutOfRange) {
		return http.StatusBadRequest, err
	} else if err != nil {
		return http.StatusInternalServerError, err
	}

	// ids minted from here on may sort below earlier ones
	i.Logger.Warn("generator reconfigured",
		zap.Int64("regionId", *reqbody.RegionID),
		zap.Int64("workerId", *reqbody.WorkerID),
	)
	i.Response.WriteHeader(http.StatusNoContent)
	return http.StatusNoContent, nil
}
