package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fiveaside/cache"
	"fiveaside/config"
	"fiveaside/database"
	"fiveaside/events"
	"fiveaside/httpapi"
	"fiveaside/matchfeed"
	"fiveaside/metrics"
	"fiveaside/notify"
	"fiveaside/repository"
	"fiveaside/service"

	log "github.com/sirupsen/logrus"
)

const (
	poolCacheTTL      = 10 * time.Second
	settlementLockTTL = 30 * time.Second
)

// Run initializes and starts the settlement engine
func Run(ctx context.Context) error {
	log.Info("Starting fiveaside settlement engine...")

	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Redis is optional; without it pool reads go straight to the ledger
	// and settlement relies on its row locks alone.
	var poolCache service.PoolCache
	var settlementLock matchfeed.SettlementLocker
	if cfg.RedisAddr != "" {
		log.WithField("addr", cfg.RedisAddr).Info("Connecting to redis...")
		redisClient, err := cache.Connect(cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		poolCache = cache.NewPoolCache(redisClient, poolCacheTTL)
		settlementLock = cache.NewSettlementLock(redisClient, settlementLockTTL)
	}

	log.Info("Initializing services...")
	userService := service.NewUserService(uowFactory, cfg.StartingBalance)
	bettingService := service.NewBettingService(uowFactory, poolCache)
	settlementService := service.NewSettlementService(uowFactory, poolCache)
	matchService := service.NewMatchService(uowFactory)

	notify.Register(eventBus, notify.LogSink{})

	metricsServer := metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error {
		return db.Ping(ctx)
	})

	log.WithFields(log.Fields{
		"brokers": cfg.KafkaBrokers,
		"topic":   cfg.MatchFeedTopic,
		"groupID": cfg.MatchFeedGroupID,
	}).Info("Starting match feed consumer...")
	feedReader := matchfeed.NewReader(strings.Split(cfg.KafkaBrokers, ","), cfg.MatchFeedTopic, cfg.MatchFeedGroupID)
	consumer := matchfeed.NewConsumer(feedReader, matchService, settlementService, settlementLock)

	consumerDone := make(chan error, 1)
	go func() {
		consumerDone <- consumer.Run(ctx)
	}()

	apiServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: httpapi.NewServer(bettingService, userService, matchService).Router(),
	}
	go func() {
		log.WithField("port", cfg.HTTPPort).Info("HTTP API listening")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("HTTP API stopped")
		}
	}()

	log.WithField("environment", cfg.Environment).Info("Settlement engine is running")
	<-ctx.Done()

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP API shutdown failed")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Metrics server shutdown failed")
	}
	if err := feedReader.Close(); err != nil {
		log.WithError(err).Warn("Match feed reader close failed")
	}

	select {
	case err := <-consumerDone:
		if err != nil && err != context.Canceled {
			log.WithError(err).Warn("Match feed consumer exited with error")
		}
	case <-shutdownCtx.Done():
		log.Warn("Match feed consumer did not stop in time")
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return nil
}
