package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchfeed/internal/config"
	dbRedis "github.com/kailas-cloud/matchfeed/internal/db/redis"
	"github.com/kailas-cloud/matchfeed/internal/jobs"
	logpkg "github.com/kailas-cloud/matchfeed/internal/logger"
	"github.com/kailas-cloud/matchfeed/internal/metrics"
	"github.com/kailas-cloud/matchfeed/internal/repository/cache"
	"github.com/kailas-cloud/matchfeed/internal/repository/feedlist"
	poolrepo "github.com/kailas-cloud/matchfeed/internal/repository/pool"
	"github.com/kailas-cloud/matchfeed/internal/repository/relation"
	userrepo "github.com/kailas-cloud/matchfeed/internal/repository/user"
	chiTransport "github.com/kailas-cloud/matchfeed/internal/transport/chi"
	exclusionuc "github.com/kailas-cloud/matchfeed/internal/usecase/exclusion"
	feeduc "github.com/kailas-cloud/matchfeed/internal/usecase/feed"
	healthuc "github.com/kailas-cloud/matchfeed/internal/usecase/health"
	interactionuc "github.com/kailas-cloud/matchfeed/internal/usecase/interaction"
	pooluc "github.com/kailas-cloud/matchfeed/internal/usecase/pool"
	profileuc "github.com/kailas-cloud/matchfeed/internal/usecase/profile"
	scoringuc "github.com/kailas-cloud/matchfeed/internal/usecase/scoring"
	"github.com/kailas-cloud/matchfeed/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting matchfeed",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("queue_driver", cfg.Queue.Driver),
	)

	// redis and valkey speak the same protocol through rueidis
	switch cfg.Database.Driver {
	case "redis", "valkey":
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:       cfg.Database.Addrs,
		Password:    cfg.Database.Password,
		DialTimeout: cfg.Database.DialTimeout,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.RegisterHTTPMetrics()
	metrics.RegisterFeedMetrics()

	// Repositories
	users := userrepo.New(store)
	if err := users.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure profile index", zap.Error(err))
	}
	relations := relation.New(store)
	pools := poolrepo.New(store, cfg.Pool.TTL).WithMaxSize(cfg.Pool.TopN)
	lists := feedlist.New(store, cfg.Feed.ListTTL)
	caches := cache.New(store, cache.Config{
		PageTTL:     cfg.Cache.PageTTL,
		SnapshotTTL: cfg.Cache.SnapshotTTL,
		ScoreTTL:    cfg.Cache.ScoreTTL,
	}, metrics.CacheLookupsTotal, logger)

	// Job transport and queue
	wmLogger := jobs.NewZapAdapter(logger.Named("jobs"))
	transport, err := jobs.NewTransport(jobs.TransportConfig{
		Driver:        cfg.Queue.Driver,
		NATSURL:       cfg.Queue.NATSURL,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		AckWait:       cfg.Queue.AckWait,
		MaxDeliver:    cfg.Queue.MaxDeliver,
	}, wmLogger)
	if err != nil {
		logger.Fatal("Failed to create job transport", zap.Error(err))
	}
	defer func() {
		if err := transport.Close(); err != nil {
			logger.Error("Failed to close job transport", zap.Error(err))
		}
	}()

	routerCfg := jobs.DefaultRouterConfig()
	routerCfg.RetryMaxRetries = cfg.Queue.MaxRetries
	routerCfg.RetryInitialInterval = cfg.Queue.RetryInterval
	routerCfg.RetryMaxInterval = cfg.Queue.RetryMaxBackoff
	routerCfg.PoisonQueueTopic = cfg.Queue.PoisonTopic
	routerCfg.Shards = map[jobs.Type]int{
		jobs.TypePoolRebuild: cfg.Queue.RebuildWorkers,
		jobs.TypeFeedRefill:  cfg.Queue.RefillWorkers,
		jobs.TypeSwipeRecord: cfg.Queue.SwipeWorkers,
	}
	queue := jobs.NewQueue(transport.Publisher, routerCfg.Shards)

	// Use cases
	excl := exclusionuc.New(relations, caches, logger)
	scoring := scoringuc.New(users, caches)
	poolSvc := pooluc.New(users, excl, scoring, pools, pooluc.Config{
		SampleSize: cfg.Pool.SampleSize,
		TopN:       cfg.Pool.TopN,
		Overfetch:  cfg.Pool.Overfetch,
	}, logger)
	feedSvc := feeduc.New(feeduc.Deps{
		Users:   users,
		Excl:    excl,
		Ranker:  scoring,
		Pool:    poolSvc,
		Cache:   caches,
		List:    lists,
		Refills: queue,
		Breaker: feeduc.NewPoolBreaker(feeduc.BreakerConfig{
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureThreshold,
		}, logger),
	}, feeduc.Config{
		PageLimit:       cfg.Feed.PageLimit,
		MaxPageLimit:    cfg.Feed.MaxPageLimit,
		SnapshotSize:    cfg.Feed.SnapshotSize,
		LiveSampleSize:  cfg.Feed.LiveSampleSize,
		NewWindow:       cfg.Feed.NewWindow,
		RefillThreshold: cfg.Feed.RefillThreshold,
		RefillSize:      cfg.Feed.RefillSize,
		MaxBatch:        cfg.Feed.MaxBatch,
		Wait:            cfg.Feed.Wait,
		PollInterval:    cfg.Feed.PollInterval,
		LockTTL:         cfg.Feed.LockTTL,
		ExhaustedTTL:    cfg.Feed.ExhaustedTTL,
	}, logger)
	interactions := interactionuc.New(relations, poolSvc, lists, excl, queue, logger)
	profiles := profileuc.New(users, excl, queue, logger)
	healthSvc := healthuc.New(store, transport)
	logger.Info("Health probes registered", zap.Strings("probes", healthSvc.Names()))

	// Job consumers
	handlers := jobs.NewHandlers(poolSvc, feedSvc, interactions, logger)
	router, err := jobs.NewRouter(routerCfg, transport.Subscriber, transport.Publisher, handlers, wmLogger)
	if err != nil {
		logger.Fatal("Failed to create job router", zap.Error(err))
	}
	go func() {
		if err := router.Run(ctx); err != nil {
			logger.Error("Job router stopped", zap.Error(err))
		}
	}()
	<-router.Running()
	logger.Info("Job router running", zap.Any("shards", routerCfg.Shards))

	scheduler := jobs.NewScheduler(users, queue, cfg.Scheduler.RebuildInterval, cfg.Scheduler.Concurrency, logger)
	go func() {
		if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Rebuild scheduler stopped", zap.Error(err))
		}
	}()

	// HTTP
	server := chiTransport.NewServer(chiTransport.Deps{
		Profiles: profiles,
		Feeds:    feedSvc,
		Swipes:   interactions,
		Scorer:   scoring,
		Rebuilds: queue,
		Health:   healthSvc,
	}, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEvent(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	// in-flight jobs finish within the router close timeout
	stop()
	if err := router.Close(); err != nil {
		logger.Error("Error closing job router", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
