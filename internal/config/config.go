package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from .env files and environment variables.
type Config struct {
	AppName            string `mapstructure:"app_name"`
	Env                string `mapstructure:"app_env"`
	LogLevel           string `mapstructure:"log_level"`
	Port               int    `mapstructure:"port"`
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`

	NewsTimeoutMs         int64         `mapstructure:"news_timeout_ms"`
	NewsRetry             int           `mapstructure:"news_retry"`
	NewsConcurrency       int           `mapstructure:"news_concurrency"`
	NewsMaxPerSource      int           `mapstructure:"news_max_per_source"`
	NewsCacheTTLSeconds   int64         `mapstructure:"news_cache_ttl"`
	NewsPageSize          int           `mapstructure:"news_page_size"`
	ValidateTopicStrict   bool          `mapstructure:"validate_topic_strict"`
	NewsSources           string        `mapstructure:"news_sources"`
	NewsSourcesFile       string        `mapstructure:"news_sources_file"`
	NewsUserAgent         string        `mapstructure:"news_ua"`
	DedupBySourcePriority bool          `mapstructure:"news_dedup_source_priority"`
	NewsTimeout           time.Duration `mapstructure:"-"`
	NewsCacheTTL          time.Duration `mapstructure:"-"`

	SummarizeCacheTTLSeconds int64         `mapstructure:"summarize_cache_ttl"`
	MaxSummaryInputChars     int           `mapstructure:"max_summary_input_chars"`
	SummarizeTimeoutMs       int64         `mapstructure:"summarize_timeout_ms"`
	DefaultSummaryLang       string        `mapstructure:"default_summary_lang"`
	DefaultSummaryMode       string        `mapstructure:"default_summary_mode"`
	SummarizeCacheTTL        time.Duration `mapstructure:"-"`
	SummarizeTimeout         time.Duration `mapstructure:"-"`

	AIRateWindowMs int64         `mapstructure:"ai_rate_window_ms"`
	AIRateMax      int           `mapstructure:"ai_rate_max"`
	AIRateWindow   time.Duration `mapstructure:"-"`

	AIProvider      string `mapstructure:"ai_provider"`
	AIAPIKey        string `mapstructure:"ai_api_key"`
	GeminiAPIKey    string `mapstructure:"gemini_api_key"`
	AIModel         string `mapstructure:"ai_model"`
	AIBaseURL       string `mapstructure:"ai_base_url"`
	AllowAIFallback bool   `mapstructure:"allow_ai_fallback"`
	CI              bool   `mapstructure:"ci"`

	PublishersFile   string        `mapstructure:"publishers_file"`
	PublishTimeoutMs int64         `mapstructure:"publish_timeout_ms"`
	PublishTimeout   time.Duration `mapstructure:"-"`
}

// Load reads configuration from the environment, after loading an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-newsdesk")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("port", 5051)
	v.SetDefault("cors_allowed_origins", "")

	v.SetDefault("news_timeout_ms", 6000)
	v.SetDefault("news_retry", 1)
	v.SetDefault("news_concurrency", 2)
	v.SetDefault("news_max_per_source", 30)
	v.SetDefault("news_cache_ttl", 300) // seconds
	v.SetDefault("news_page_size", 30)
	v.SetDefault("validate_topic_strict", false)
	v.SetDefault("news_sources", "")
	v.SetDefault("news_sources_file", "")
	v.SetDefault("news_ua", "NewsTrackerBot/1.0 (+https://example.com)")
	v.SetDefault("news_dedup_source_priority", false)

	v.SetDefault("summarize_cache_ttl", 600) // seconds
	v.SetDefault("max_summary_input_chars", 8000)
	v.SetDefault("summarize_timeout_ms", 20000)
	v.SetDefault("default_summary_lang", "en")
	v.SetDefault("default_summary_mode", "bullets")

	v.SetDefault("ai_rate_window_ms", 60000)
	v.SetDefault("ai_rate_max", 5)

	v.SetDefault("ai_provider", "")
	v.SetDefault("ai_api_key", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("ai_model", "")
	v.SetDefault("ai_base_url", "")
	v.SetDefault("allow_ai_fallback", false)
	v.SetDefault("ci", false)

	v.SetDefault("publishers_file", "")
	v.SetDefault("publish_timeout_ms", 5000)

	v.AutomaticEnv()
	_ = v.BindEnv("news_cache_ttl", "NEWS_CACHE_TTL", "CACHE_TTL")
	_ = v.BindEnv("ai_api_key", "AI_API_KEY", "OPENAI_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finalize() error {
	if c.Port <= 0 {
		return fmt.Errorf("invalid port (must be positive)")
	}
	if c.NewsTimeoutMs <= 0 {
		return fmt.Errorf("invalid news_timeout_ms (must be positive milliseconds)")
	}
	if c.NewsRetry < 0 {
		return fmt.Errorf("invalid news_retry (must not be negative)")
	}
	if c.NewsConcurrency <= 0 {
		return fmt.Errorf("invalid news_concurrency (must be positive)")
	}
	if c.NewsMaxPerSource <= 0 {
		return fmt.Errorf("invalid news_max_per_source (must be positive)")
	}
	if c.NewsCacheTTLSeconds <= 0 {
		return fmt.Errorf("invalid news_cache_ttl (must be positive seconds)")
	}
	if c.SummarizeCacheTTLSeconds <= 0 {
		return fmt.Errorf("invalid summarize_cache_ttl (must be positive seconds)")
	}
	if c.MaxSummaryInputChars <= 0 {
		return fmt.Errorf("invalid max_summary_input_chars (must be positive)")
	}
	if c.SummarizeTimeoutMs <= 0 {
		return fmt.Errorf("invalid summarize_timeout_ms (must be positive milliseconds)")
	}
	if c.AIRateWindowMs <= 0 || c.AIRateMax <= 0 {
		return fmt.Errorf("invalid ai rate limit (window and max must be positive)")
	}
	if c.PublishTimeoutMs <= 0 {
		return fmt.Errorf("invalid publish_timeout_ms (must be positive milliseconds)")
	}

	c.NewsPageSize = clamp(c.NewsPageSize, 1, 100)
	c.AIProvider = strings.ToLower(strings.TrimSpace(c.AIProvider))

	c.NewsTimeout = time.Duration(c.NewsTimeoutMs) * time.Millisecond
	c.NewsCacheTTL = time.Duration(c.NewsCacheTTLSeconds) * time.Second
	c.SummarizeCacheTTL = time.Duration(c.SummarizeCacheTTLSeconds) * time.Second
	c.SummarizeTimeout = time.Duration(c.SummarizeTimeoutMs) * time.Millisecond
	c.AIRateWindow = time.Duration(c.AIRateWindowMs) * time.Millisecond
	c.PublishTimeout = time.Duration(c.PublishTimeoutMs) * time.Millisecond
	return nil
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

// AllowedOrigins splits the CORS allowlist.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// AIFallbackAllowed reports whether provider failures may be answered with mock output.
func (c *Config) AIFallbackAllowed() bool {
	return c.AllowAIFallback || c.CI
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
