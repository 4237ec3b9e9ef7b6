package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"itrust/internal/account"
	"itrust/internal/activity"
	activityhandler "itrust/internal/activity/handler"
	"itrust/internal/directory"
	directoryhandler "itrust/internal/directory/handler"
	jwttoken "itrust/internal/jwt_token"
	"itrust/internal/ledger"
	ledgerhandler "itrust/internal/ledger/handler"
	ledgermetrics "itrust/internal/ledger/metrics"
	"itrust/internal/ledger/publisher"
	ledgerservice "itrust/internal/ledger/service"
	"itrust/internal/platform/config"
	"itrust/internal/platform/httpserver"
	"itrust/internal/platform/logger"
	"itrust/internal/platform/metrics"
	"itrust/internal/platform/postgres"
	platformredis "itrust/internal/platform/redis"
	"itrust/internal/ranking"
	rankinghandler "itrust/internal/ranking/handler"
	rankingmetrics "itrust/internal/ranking/metrics"
	"itrust/internal/stats"
	statshandler "itrust/internal/stats/handler"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	httpMetrics := metrics.New()

	accountStore := account.NewPostgres(db)
	ledgerStore := ledger.NewPostgres(db)
	activityStore := activity.NewPostgres(db)

	rankingOpts := []ranking.Option{
		ranking.WithTTL(cfg.RankingCacheTTL),
		ranking.WithMetrics(rankingmetrics.New()),
	}
	if redisClient != nil {
		rankingOpts = append(rankingOpts, ranking.WithSnapshotCache(ranking.NewRedisSnapshotCache(redisClient.Client)))
	}
	rankingService := ranking.NewService(accountStore, log, rankingOpts...)

	var idemCache ledger.IdempotencyCache
	if redisClient != nil {
		idemCache = ledger.NewRedisIdempotencyCache(redisClient.Client, cfg.IdempotencyWindow)
	} else {
		idemCache = ledger.NewMemoryIdempotencyCache(cfg.IdempotencyWindow)
	}

	ledgerOpts := []ledgerservice.Option{
		ledgerservice.WithIdempotencyCache(idemCache),
		ledgerservice.WithRankingInvalidator(rankingService),
		ledgerservice.WithMetrics(ledgermetrics.New()),
		ledgerservice.WithLockWait(cfg.VouchLockWait),
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := publisher.NewKafka(cfg.KafkaBrokers, log)
		if err != nil {
			log.Error("kafka connect failed", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		go func() {
			if err := kafka.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("vouch event worker stopped", "error", err)
			}
		}()
		ledgerOpts = append(ledgerOpts, ledgerservice.WithPublisher(kafka))
	}
	vouchService := ledgerservice.NewService(ledgerStore, log, ledgerOpts...)

	activityService := activity.NewService(activityStore)
	directoryService := directory.NewService(accountStore)
	statsService := stats.NewService(accountStore, rankingService, vouchService)

	validator := jwttoken.NewValidator(cfg.JWTSigningKey)

	router := chi.NewRouter()
	ledgerhandler.New(vouchService, log, httpMetrics, validator).Register(router)
	rankinghandler.New(rankingService, log, httpMetrics).Register(router)
	activityhandler.New(activityService, log, httpMetrics, validator).Register(router)
	directoryhandler.New(directoryService, log, httpMetrics).Register(router)
	statshandler.New(statsService, log, httpMetrics, validator).Register(router)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting itrust", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
