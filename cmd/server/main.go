package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"CryptoPulse/internal/analysis"
	"CryptoPulse/internal/api"
	"CryptoPulse/internal/calculator"
	"CryptoPulse/internal/collector"
	"CryptoPulse/internal/config"
	"CryptoPulse/internal/logger"
	"CryptoPulse/internal/notifier"
	"CryptoPulse/internal/ratelimit"
	"CryptoPulse/internal/scheduler"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		logger.Warn("ignoring .env", zap.Error(err))
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation", zap.Error(err))
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		logger.Fatal("init logger", zap.Error(err))
	}
	defer logger.Sync()
	logger.Info("CryptoPulse starting", zap.String("config", cfgPath))

	gateway := buildGateway(cfg)
	logger.Info("market data providers", zap.Strings("providers", gateway.Providers()))

	mode, _ := calculator.ParseMACDMode(cfg.Analysis.MACDMode)
	col := collector.NewCollector(gateway, collector.Settings{
		HistoryDays: cfg.Analysis.HistoryDays,
		SMAShort:    cfg.Analysis.SMAShort,
		SMALong:     cfg.Analysis.SMALong,
		RSIPeriod:   cfg.Analysis.RSIPeriod,
		MACDFast:    cfg.Analysis.MACDFast,
		MACDSlow:    cfg.Analysis.MACDSlow,
		MACDSignal:  cfg.Analysis.MACDSignal,
		MACDMode:    mode,

		BollingerPeriod: cfg.Analysis.BollingerPeriod,
		BollingerK:      cfg.Analysis.BollingerK,
		LevelsLookback:  cfg.Analysis.LevelsLookback,
	})
	svc := analysis.NewService(gateway, col, analysis.Options{
		Targets:               cfg.Coins.Targets,
		Params:                cfg.Analysis.Scoring,
		Rank:                  cfg.Analysis.Ranking,
		DegradeOnHistoryError: !cfg.Analysis.SkipOnHistoryError,
	})

	limiter, sweeper, limiterName, closeLimiter := buildLimiter(cfg)
	defer closeLimiter()
	logger.Info("rate limiter ready", zap.String("backend", limiterName))

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, "")
		sender = tn
	}

	sched := scheduler.NewScheduler(ctx, svc, sender, sweeper, scheduler.Options{
		Providers:   gateway.Providers(),
		LimiterName: limiterName,
		DigestTop:   cfg.Schedule.DigestTop,
		RunTimeout:  cfg.Server.AnalysisTimeout,
	})
	if err := sched.RegisterAll(cfg.Schedule.DigestCron, cfg.RateLimit.SweepCron); err != nil {
		logger.Fatal("register cron tasks", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		if os.Getenv("RUN_ON_START") == "true" {
			logger.Info("RUN_ON_START enabled, sending digest now")
			go sched.RunDigestNow()
		}
	}

	gin.SetMode(cfg.Server.Mode)
	handler := api.NewHandler(sched, limiter, api.Options{
		AnalysisTimeout: cfg.Server.AnalysisTimeout,
		DebugErrors:     cfg.Server.DebugErrors,
		Providers:       gateway.Providers(),
	})
	srv := &http.Server{Addr: cfg.Addr(), Handler: api.NewRouter(handler)}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", zap.Error(err))
			cancel()
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		logger.Info("shutdown signal received, stopping")
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown", zap.Error(err))
	}
	cancel()
	logger.Info("CryptoPulse stopped")
}

func buildGateway(cfg *config.Config) *collector.Gateway {
	p := cfg.Providers
	var providers []collector.Provider
	for _, name := range p.Order {
		switch name {
		case "coingecko":
			providers = append(providers, collector.NewCoinGeckoProvider(p.CoinGecko.BaseURL, p.CoinGecko.APIKey, cfg.Proxy, p.AttemptTimeout))
		case "coincap":
			providers = append(providers, collector.NewCoinCapProvider(p.CoinCap.BaseURL, p.CoinCap.APIKey, cfg.Proxy, p.AttemptTimeout))
		case "binance":
			providers = append(providers, collector.NewBinanceProvider(p.Binance.BaseURL, cfg.Proxy, p.AttemptTimeout, cfg.Coins.BinancePairs))
		}
	}

	var fallback collector.Provider
	if !p.DisableFallback {
		fallback = collector.NewFallbackProvider()
	}
	return collector.NewGateway(collector.GatewayConfig{
		AttemptTimeout: p.AttemptTimeout,
		RetryAttempts:  p.RetryAttempts,
		RetryDelay:     p.RetryDelay,
		Quality: collector.QualityFilter{
			MinVolume:    p.Quality.MinVolume,
			MinMarketCap: p.Quality.MinMarketCap,
		},
	}, fallback, providers...)
}

// buildLimiter returns the configured limiter, its sweeper (nil when the
// store expires entries itself), a display name and a close func.
func buildLimiter(cfg *config.Config) (ratelimit.Limiter, scheduler.Sweeper, string, func()) {
	rl := cfg.RateLimit
	noop := func() {}
	if rl.Disabled {
		return ratelimit.NoopLimiter{}, nil, "disabled", noop
	}
	policy := ratelimit.Policy{MaxRequests: rl.MaxRequests, Window: rl.Window}

	switch rl.Backend {
	case "redis":
		client := ratelimit.NewRedisClient(rl.Redis.Addr, rl.Redis.Password, rl.Redis.DB)
		l := ratelimit.NewRedisLimiter(client, policy, rl.Redis.Prefix)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable, requests fail open until it recovers", zap.Error(err))
		}
		return l, nil, "redis", func() { client.Close() }
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(rl.SQLitePath), 0o755); err != nil {
			logger.Fatal("create sqlite directory", zap.Error(err))
		}
		l, err := ratelimit.NewSQLiteLimiter(rl.SQLitePath, policy, rl.IdleHorizon)
		if err != nil {
			logger.Warn("init sqlite limiter failed, using memory", zap.Error(err))
			break
		}
		return l, l, "sqlite", func() { l.Close() }
	}

	l := ratelimit.NewMemoryLimiter(policy, rl.IdleHorizon, rl.CleanupEvery)
	return l, l, "memory", noop
}
