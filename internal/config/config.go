package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"CryptoPulse/internal/calculator"
	"CryptoPulse/internal/strategy"
)

// DefaultTargets are the coins analysed when the config does not list any.
var DefaultTargets = []string{
	"bitcoin", "ethereum", "ripple", "tether", "binancecoin",
	"solana", "usd-coin", "dogecoin", "tron", "cardano",
	"chainlink", "sui", "stellar", "uniswap", "polkadot", "dai",
}

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port            int           `yaml:"port"`
		Mode            string        `yaml:"mode"` // gin mode: debug, release, test
		DebugErrors     bool          `yaml:"debug_errors"`
		AnalysisTimeout time.Duration `yaml:"analysis_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // console or json
	} `yaml:"log"`
	Coins struct {
		Targets      []string          `yaml:"targets"`
		BinancePairs map[string]string `yaml:"binance_pairs"`
	} `yaml:"coins"`
	Providers struct {
		Order           []string      `yaml:"order"`
		AttemptTimeout  time.Duration `yaml:"attempt_timeout"`
		RetryAttempts   int           `yaml:"retry_attempts"`
		RetryDelay      time.Duration `yaml:"retry_delay"`
		DisableFallback bool          `yaml:"disable_fallback"`
		Quality         struct {
			MinVolume    float64 `yaml:"min_volume"`
			MinMarketCap float64 `yaml:"min_market_cap"`
		} `yaml:"quality"`
		CoinGecko struct {
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"coingecko"`
		CoinCap struct {
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"coincap"`
		Binance struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"binance"`
	} `yaml:"providers"`
	Analysis struct {
		HistoryDays        int                  `yaml:"history_days"`
		SMAShort           int                  `yaml:"sma_short"`
		SMALong            int                  `yaml:"sma_long"`
		RSIPeriod          int                  `yaml:"rsi_period"`
		MACDFast           int                  `yaml:"macd_fast"`
		MACDSlow           int                  `yaml:"macd_slow"`
		MACDSignal         int                  `yaml:"macd_signal"`
		MACDMode           string               `yaml:"macd_mode"` // simple or series
		BollingerPeriod    int                  `yaml:"bollinger_period"`
		BollingerK         float64              `yaml:"bollinger_k"`
		LevelsLookback     int                  `yaml:"levels_lookback"`
		SkipOnHistoryError bool                 `yaml:"skip_on_history_error"`
		Scoring            strategy.Params      `yaml:"scoring"`
		Ranking            strategy.RankOptions `yaml:"ranking"`
	} `yaml:"analysis"`
	RateLimit struct {
		Disabled     bool          `yaml:"disabled"`
		Backend      string        `yaml:"backend"` // memory, redis or sqlite
		MaxRequests  int           `yaml:"max_requests"`
		Window       time.Duration `yaml:"window"`
		IdleHorizon  time.Duration `yaml:"idle_horizon"`
		CleanupEvery int           `yaml:"cleanup_every"`
		SweepCron    string        `yaml:"sweep_cron"`
		Redis        struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"rate_limit"`
	Schedule struct {
		DigestCron string `yaml:"digest_cron"` // empty disables the digest
		DigestTop  int    `yaml:"digest_top"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Server.Mode = "release"
	cfg.Server.AnalysisTimeout = 60 * time.Second
	cfg.Server.ShutdownTimeout = 10 * time.Second
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	cfg.Coins.Targets = append([]string(nil), DefaultTargets...)
	cfg.Providers.Order = []string{"coingecko", "coincap", "binance"}
	cfg.Providers.AttemptTimeout = 10 * time.Second
	cfg.Providers.RetryAttempts = 3
	cfg.Providers.RetryDelay = 2 * time.Second
	cfg.Providers.Quality.MinVolume = 1e6
	cfg.Providers.Quality.MinMarketCap = 1e7
	cfg.Analysis.HistoryDays = 30
	cfg.Analysis.SMAShort = 20
	cfg.Analysis.SMALong = 50
	cfg.Analysis.RSIPeriod = 14
	cfg.Analysis.MACDFast = 12
	cfg.Analysis.MACDSlow = 26
	cfg.Analysis.MACDSignal = 9
	cfg.Analysis.MACDMode = string(calculator.MACDSimple)
	cfg.Analysis.BollingerPeriod = 20
	cfg.Analysis.BollingerK = 2
	cfg.Analysis.LevelsLookback = 50
	cfg.Analysis.Scoring = strategy.DefaultParams()
	cfg.Analysis.Ranking = strategy.DefaultRankOptions()
	cfg.RateLimit.Backend = "memory"
	cfg.RateLimit.MaxRequests = 1
	cfg.RateLimit.Window = 5 * time.Minute
	cfg.RateLimit.IdleHorizon = 24 * time.Hour
	cfg.RateLimit.CleanupEvery = 100
	cfg.RateLimit.SweepCron = "0 */10 * * * *"
	cfg.RateLimit.SQLitePath = "data/ratelimit.db"
	cfg.Schedule.DigestTop = 5
	return cfg
}

// Load reads config from a YAML file on top of the defaults, then applies
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables already set win. A missing file is ignored.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.Server.Mode = v
	}
	if v := os.Getenv("DEBUG_ERRORS"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DEBUG_ERRORS: %w", err)
		}
		c.Server.DebugErrors = debug
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		c.Providers.CoinGecko.APIKey = v
	}
	if v := os.Getenv("COINCAP_API_KEY"); v != "" {
		c.Providers.CoinCap.APIKey = v
	}
	if v := os.Getenv("RATE_LIMIT_BACKEND"); v != "" {
		c.RateLimit.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.RateLimit.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.RateLimit.Redis.Password = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.RateLimit.SQLitePath = v
	}
	if v := os.Getenv("DIGEST_CRON"); v != "" {
		c.Schedule.DigestCron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	return nil
}

var knownProviders = map[string]bool{"coingecko": true, "coincap": true, "binance": true}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode %q must be debug, release or test", c.Server.Mode)
	}
	if c.Server.AnalysisTimeout <= 0 {
		return fmt.Errorf("server.analysis_timeout must be positive")
	}
	if len(c.Coins.Targets) == 0 {
		return fmt.Errorf("coins.targets must not be empty")
	}
	if len(c.Providers.Order) == 0 && c.Providers.DisableFallback {
		return fmt.Errorf("providers.order is empty and the fallback dataset is disabled")
	}
	for _, name := range c.Providers.Order {
		if !knownProviders[name] {
			return fmt.Errorf("providers.order: unknown provider %q", name)
		}
	}
	if c.Providers.RetryAttempts < 1 {
		return fmt.Errorf("providers.retry_attempts must be at least 1")
	}
	if c.Providers.Quality.MinVolume < 0 || c.Providers.Quality.MinMarketCap < 0 {
		return fmt.Errorf("providers.quality thresholds must not be negative")
	}

	a := c.Analysis
	for name, v := range map[string]int{
		"history_days": a.HistoryDays, "sma_short": a.SMAShort, "sma_long": a.SMALong,
		"rsi_period": a.RSIPeriod, "macd_fast": a.MACDFast, "macd_slow": a.MACDSlow, "macd_signal": a.MACDSignal,
	} {
		if v <= 0 {
			return fmt.Errorf("analysis.%s must be positive", name)
		}
	}
	if _, err := calculator.ParseMACDMode(a.MACDMode); err != nil {
		return fmt.Errorf("analysis.macd_mode: %w", err)
	}
	if a.BollingerPeriod == 1 || a.BollingerPeriod < 0 {
		return fmt.Errorf("analysis.bollinger_period must be 0 or at least 2")
	}
	if a.BollingerK < 0 || a.LevelsLookback < 0 {
		return fmt.Errorf("analysis.bollinger_k and analysis.levels_lookback must not be negative")
	}
	if a.Ranking.MinScore < 0 || a.Ranking.MinScore >= 1 {
		return fmt.Errorf("analysis.ranking.min_score must be in [0,1)")
	}
	if a.Ranking.Limit < 0 {
		return fmt.Errorf("analysis.ranking.limit must not be negative")
	}

	if !c.RateLimit.Disabled {
		if c.RateLimit.MaxRequests < 1 {
			return fmt.Errorf("rate_limit.max_requests must be at least 1")
		}
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("rate_limit.window must be positive")
		}
		switch c.RateLimit.Backend {
		case "memory":
		case "redis":
			if c.RateLimit.Redis.Addr == "" {
				return fmt.Errorf("rate_limit.redis.addr is required for the redis backend")
			}
		case "sqlite":
			if c.RateLimit.SQLitePath == "" {
				return fmt.Errorf("rate_limit.sqlite_path is required for the sqlite backend")
			}
		default:
			return fmt.Errorf("rate_limit.backend: unknown backend %q", c.RateLimit.Backend)
		}
	}

	if c.Schedule.DigestCron != "" && !c.TelegramEnabled() {
		return fmt.Errorf("schedule.digest_cron requires telegram.bot_token and telegram.chat_id")
	}
	return nil
}

// TelegramEnabled reports whether Telegram credentials are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}
