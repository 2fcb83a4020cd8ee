package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"RetailPulse/internal/cache"
	"RetailPulse/internal/collector"
	"RetailPulse/internal/config"
	"RetailPulse/internal/logger"
	"RetailPulse/internal/model"
	"RetailPulse/internal/recorder"
	"RetailPulse/internal/scheduler"
	"RetailPulse/internal/server"
	"RetailPulse/internal/session"
	"RetailPulse/internal/view"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	appLog, err := logger.New(cfg.Log.Level, cfg.Log.Environment)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	zl := appLog.Zap()
	defer zl.Sync()
	zl.Info("RetailPulse starting", zap.String("config", cfgPath))

	// Init payload cache
	var payloadCache cache.Cache
	switch cfg.Cache.Backend {
	case "memory":
		payloadCache = cache.NewMemoryCache(cfg.Cache.MaxEntries, cfg.CacheTTL())
	case "redis":
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
			TTL:  cfg.CacheTTL(),
		}, zl)
		if err != nil {
			zl.Warn("init redis cache failed, caching disabled", zap.Error(err))
		} else {
			payloadCache = rc
			defer rc.Close()
		}
	}

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.Analytics.Mock {
		fetcher = &collector.MockFetcher{}
	} else {
		breaker := collector.BreakerConfig{
			Enabled:     *cfg.Breaker.Enabled,
			MaxRequests: cfg.Breaker.MaxRequests,
			Interval:    cfg.BreakerInterval(),
			Timeout:     cfg.BreakerTimeout(),
		}
		fetcher = collector.NewHTTPFetcher(collector.HTTPConfig{
			BaseURL: cfg.Analytics.BaseURL,
			APIKey:  cfg.Analytics.APIKey,
			Proxy:   cfg.Analytics.Proxy,
			Timeout: cfg.AnalyticsTimeout(),
			Breaker: breaker,
		}, payloadCache, zl)
	}
	zl.Info("analytics source", zap.String("fetcher", fetcher.Name()), zap.String("cache", cfg.Cache.Backend))

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, zl)
		if err != nil {
			zl.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init session
	start, end, _ := cfg.DefaultRange()
	sess, err := session.New(ctx, session.Config{
		Initial: model.FilterState{
			DateRange: model.DateRange{Start: start, End: end},
			Region:    model.AllRegions,
		},
		Regions: cfg.Filters.Regions,
		Forecast: view.ForecastConfig{
			Controls: model.ForecastControls{
				Category:    cfg.Forecast.DefaultCategory,
				SubCategory: cfg.Forecast.DefaultSubCategory,
			},
			Days: cfg.Forecast.Days,
		},
	}, fetcher, rec, zl)
	if err != nil {
		zl.Fatal("init session", zap.Error(err))
	}
	sess.Start()
	defer sess.Close()

	// Init scheduler
	sched := scheduler.NewScheduler(sess, zl)
	sched.Report = sess.Report
	if err := sched.RegisterAll(cfg.Schedule.RollCron); err != nil {
		zl.Fatal("register cron tasks", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	// Serve the API until a shutdown signal arrives
	srv := server.New(cfg.Server.Addr, server.Routes(server.NewHandler(sess, zl), zl), zl)
	zl.Info("RetailPulse is running. Press Ctrl+C to stop.")
	if err := srv.Run(ctx); err != nil {
		zl.Error("http server", zap.Error(err))
	}

	zl.Info("RetailPulse stopped")
}
