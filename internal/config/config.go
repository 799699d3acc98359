package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	DatabaseURL string
	RedisURL    string
	NATSURL     string

	TestCasesRoot string
	ProblemsRoot  string

	JudgeBaseURL          string
	JudgeAPIKey           string
	JudgeAPIHost          string
	JudgePollInterval     time.Duration
	JudgeMaxPollAttempts  int
	JudgeCPUTimeLimitSec  float64
	JudgeMemoryLimitKB    int
	JudgeAcceptedStatusID int

	StandingsCacheTTL time.Duration
	SubmitRateLimit   int
	SubmitRateWindow  time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ALGORANK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "AlgoRank API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("testcases.root", "testcases")
	v.SetDefault("problems.root", "problems")
	v.SetDefault("judge.base_url", "http://localhost:2358")
	v.SetDefault("judge.poll_interval_ms", 1000)
	v.SetDefault("judge.max_poll_attempts", 10)
	v.SetDefault("judge.cpu_time_limit_sec", 2.0)
	v.SetDefault("judge.memory_limit_kb", 128000)
	v.SetDefault("judge.accepted_status_id", 3)
	v.SetDefault("standings.cache_ttl", "30s")
	v.SetDefault("submit.rate_limit", 10)
	v.SetDefault("submit.rate_window", "1m")

	ttl, err := time.ParseDuration(v.GetString("standings.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid standings cache ttl: %w", err)
	}

	rateWindow, err := time.ParseDuration(v.GetString("submit.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid submit rate window: %w", err)
	}

	cfg := Config{
		AppName:     v.GetString("app.name"),
		AppEnv:      v.GetString("app.env"),
		AppPort:     v.GetString("app.port"),
		DatabaseURL: v.GetString("database.url"),
		RedisURL:    v.GetString("redis.url"),
		NATSURL:     v.GetString("nats.url"),

		TestCasesRoot: v.GetString("testcases.root"),
		ProblemsRoot:  v.GetString("problems.root"),

		JudgeBaseURL:          v.GetString("judge.base_url"),
		JudgeAPIKey:           v.GetString("judge.api_key"),
		JudgeAPIHost:          v.GetString("judge.api_host"),
		JudgePollInterval:     time.Duration(v.GetInt("judge.poll_interval_ms")) * time.Millisecond,
		JudgeMaxPollAttempts:  v.GetInt("judge.max_poll_attempts"),
		JudgeCPUTimeLimitSec:  v.GetFloat64("judge.cpu_time_limit_sec"),
		JudgeMemoryLimitKB:    v.GetInt("judge.memory_limit_kb"),
		JudgeAcceptedStatusID: v.GetInt("judge.accepted_status_id"),

		StandingsCacheTTL: ttl,
		SubmitRateLimit:   v.GetInt("submit.rate_limit"),
		SubmitRateWindow:  rateWindow,
	}

	if cfg.JudgeBaseURL == "" {
		return Config{}, fmt.Errorf("judge base url must be provided")
	}

	if cfg.JudgeMaxPollAttempts <= 0 {
		cfg.JudgeMaxPollAttempts = 10
	}

	if cfg.JudgePollInterval <= 0 {
		cfg.JudgePollInterval = time.Second
	}

	return cfg, nil
}
