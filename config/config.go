package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

var conf = mustLoad()

type Config struct {
	Configuration struct {
		// Server
		Port string `envconfig:"PORT" default:"8787"`

		// Rate limiting
		RateLimitPerSecond        int `envconfig:"RATE_LIMIT_PER_SECOND" default:"2"`
		RateLimitBurstLimit       int `envconfig:"RATE_LIMIT_BURST_LIMIT" default:"5"`
		CachedRateLimitPerSecond  int `envconfig:"CACHED_RATE_LIMIT_PER_SECOND" default:"10"`
		CachedRateLimitBurstLimit int `envconfig:"CACHED_RATE_LIMIT_BURST_LIMIT" default:"20"`

		// Google Custom Search (lyrics retrieval)
		SearchAPIKey         string `envconfig:"GCS_API_KEY" default:""`
		SearchEngineID       string `envconfig:"GCS_ENGINE_ID" default:""`
		SearchTimeoutSeconds int    `envconfig:"SEARCH_TIMEOUT_SECONDS" default:"10"`
		PageFetchTimeoutSecs int    `envconfig:"PAGE_FETCH_TIMEOUT_SECONDS" default:"10"`

		// Gemini (meaning generation)
		GeminiAPIKey         string `envconfig:"GEMINI_API_KEY" default:""`
		GeminiModel          string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
		GeminiTimeoutSeconds int    `envconfig:"GEMINI_TIMEOUT_SECONDS" default:"60"`

		// Circuit breaker around the Gemini API
		CircuitBreakerThreshold    int `envconfig:"CIRCUIT_BREAKER_THRESHOLD" default:"5"`
		CircuitBreakerCooldownSecs int `envconfig:"CIRCUIT_BREAKER_COOLDOWN_SECS" default:"300"`

		// Storage
		MeaningsDBPath   string `envconfig:"MEANINGS_DB_PATH" default:"data/meanings.sqlite3"`
		LyricsCachePath  string `envconfig:"LYRICS_CACHE_PATH" default:"data/lyrics-cache.db"`
		CacheAccessToken string `envconfig:"CACHE_ACCESS_TOKEN" default:""`

		// Alerting (ntfy and/or Telegram; empty values disable the channel)
		NtfyTopic        string `envconfig:"NTFY_TOPIC" default:""`
		NtfyServer       string `envconfig:"NTFY_SERVER" default:"https://ntfy.sh"`
		TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" default:""`
		TelegramChatID   string `envconfig:"TELEGRAM_CHAT_ID" default:""`
	}

	FeatureFlags struct {
		CacheCompression bool `envconfig:"FF_CACHE_COMPRESSION" default:"true"`
	}
}

// load loads the configuration from the environment.
func load() (Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Warnf("Error loading env config: %v", err)
	}

	cfg := Config{}
	err = envconfig.Process("", &cfg)
	return cfg, err
}

func mustLoad() Config {
	c, err := load()
	if err != nil {
		log.WithError(err).Warnf("Unable to load configuration")
	}

	return c
}

func Get() Config {
	return conf
}
