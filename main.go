package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snowflake-backend/api"
	"snowflake-backend/config"
	"snowflake-backend/handler"
	"snowflake-backend/metrics"
	"snowflake-backend/services"
	"snowflake-backend/snowflake"
	"snowflake-backend/util"
	"snowflake-backend/watermark"

	"github.com/julienschmidt/httprouter"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {

	// load config
	v := viper.New()
	config.BindEnv(v)
	config.SetDefaults(v)
	err := config.BindFlags(v, pflag.CommandLine)
	if err != nil {
		log.Fatal(err)
	}
	pflag.Parse()
	cfg, err := config.Load(v)
	if err != nil {
		log.Fatal(err)
	}

	// create zap logger
	logger, err := services.NewLogger(cfg.LogDebug)
	if err != nil {
		// this is the final usage of the default go logger
		log.Fatal(err)
	}
	defer logger.Sync()

	// open service connections
	svc, err := services.Open(cfg)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("failed to create service clients")
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.With(zap.Error(err)).Error("failed to close service clients")
		}
	}()

	// initialize id generator
	workerID := cfg.Snowflake.WorkerID
	if cfg.Snowflake.WorkerIDFromHostname {
		workerID, err = util.PodIndex(cfg.Snowflake.WorkerHostnamePattern)
		if err != nil {
			logger.With(zap.Error(err)).Fatal("failed to determine pod index")
		}
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(logger)
	err = collector.Register(registry)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("failed to register metrics")
	}
	generator, err := snowflake.NewConfigured(
		cfg.Snowflake.RegionID, workerID,
		snowflake.WithObserver(collector),
	)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("failed to create snowflake id generator")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// resume past whatever an earlier process minted
	store, err := newWatermarkStore(ctx, cfg, svc)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("failed to create watermark store")
	}
	keeper := watermark.NewKeeper(store, generator, cfg.Watermark.Interval, logger)
	_, err = keeper.Restore(ctx)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("failed to restore watermark")
	}

	// register http routes
	wrap := func(h handler.Handler) httprouter.Handle {
		return handler.Wrap(cfg, logger, h)
	}
	router := httprouter.New()
	router.GET("/api/health", wrap(api.HealthCheck(healthChecks(cfg, svc, store))))
	router.GET("/api/auth/config", wrap(api.AuthConfig(cfg)))
	router.GET("/api/auth", wrap(api.AuthVerify(cfg, svc.Redis)))
	router.POST("/api/auth", wrap(api.Authenticate(cfg, svc.Postgres, svc.Redis)))
	router.DELETE("/api/auth", wrap(api.Logout(cfg, svc.Redis)))
	router.POST("/api/ids", wrap(api.MintIDs(cfg, generator)))
	router.GET("/api/ids/:id", wrap(api.DecodeID()))
	router.GET("/api/generator", wrap(api.GeneratorInfo(generator)))
	router.PUT("/api/generator", wrap(api.Reconfigure(cfg, svc.Redis, keeper)))
	if cfg.MetricsEnable {
		router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return keeper.Run(gctx)
	})
	g.Go(func() error {
		regionID, workerID, _ := generator.Config()
		logger.With(
			zap.Int64("regionId", regionID),
			zap.Int64("workerId", workerID),
			zap.String("addr", server.Addr),
		).Info("starting http server")
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if err != nil {
		logger.With(zap.Error(err)).Fatal("server exited with an error")
	}
	logger.Info("stopped")
}

func newWatermarkStore(ctx context.Context, cfg *config.Config, svc *services.Services) (watermark.Store, error) {
	switch cfg.Watermark.Backend {
	case config.WatermarkRedis:
		return watermark.NewRedisStore(svc.Redis, cfg.Watermark.RedisPrefix), nil
	case config.WatermarkPostgres:
		store := watermark.NewPostgresStore(svc.Postgres, cfg.Watermark.PostgresTable)
		return store, store.Init(ctx)
	case config.WatermarkS3:
		return watermark.NewS3Store(svc.S3, cfg.Watermark.S3Bucket, cfg.Watermark.S3Prefix), nil
	default:
		return watermark.NopStore{}, nil
	}
}

func healthChecks(cfg *config.Config, svc *services.Services, store watermark.Store) map[string]api.Check {
	checks := map[string]api.Check{}
	if svc.Postgres != nil {
		checks["postgres"] = svc.Postgres.PingContext
	}
	if svc.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return svc.Redis.Ping(ctx).Err()
		}
	}
	if cfg.Watermark.Backend != config.WatermarkNone {
		checks["watermark"] = store.Ping
	}
	return checks
}
