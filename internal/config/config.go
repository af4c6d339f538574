// Package config loads service configuration from a file and the
// environment.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/codemate-app/matcher/internal/feed"
	"github.com/codemate-app/matcher/internal/matcher"
)

const envPrefix = "MATCHER"

// Config is the full service configuration.
type Config struct {
	ListenAddr string `mapstructure:"listen-addr"`
	DBPath     string `mapstructure:"db-path"`

	// MatchThreshold is the chat ranker's minimum best-skill similarity.
	// Lower values increase recall at the cost of noisier matches.
	MatchThreshold float64 `mapstructure:"match-threshold"`

	// PairThreshold is the feed's minimum per-pair similarity for the
	// by-skill overlap average.
	PairThreshold float64 `mapstructure:"pair-threshold"`

	FeedLimit int `mapstructure:"feed-limit"`

	// ExpansionTTLHours is how long query expansions stay cached.
	ExpansionTTLHours int `mapstructure:"expansion-ttl-hours"`

	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`

	LogJSON  bool `mapstructure:"log-json"`
	LogDebug bool `mapstructure:"log-debug"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider  string `mapstructure:"provider"` // gemini, openai, local
	APIKey    string `mapstructure:"api-key"`
	CacheSize int    `mapstructure:"cache-size"`
}

// GeminiConfig configures the generative expansion provider.
type GeminiConfig struct {
	APIKey string `mapstructure:"api-key"`
	Model  string `mapstructure:"model"`
}

// Load reads configuration from the optional file path and the
// environment. Environment variables use the MATCHER_ prefix with dashes
// mapped to underscores, e.g. MATCHER_MATCH_THRESHOLD.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen-addr", ":8080")
	v.SetDefault("db-path", "matcher.db")
	v.SetDefault("match-threshold", matcher.DefaultThreshold)
	v.SetDefault("pair-threshold", feed.PairThreshold)
	v.SetDefault("feed-limit", feed.FeedLimit)
	v.SetDefault("expansion-ttl-hours", 24)
	v.SetDefault("embedding.provider", "")
	v.SetDefault("embedding.cache-size", 10000)
	v.SetDefault("log-json", false)
	v.SetDefault("log-debug", false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("gemini.api-key", "GEMINI_API_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("embedding.api-key", "MATCHER_EMBEDDING_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
