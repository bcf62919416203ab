package main

import (
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"lyrics-meaning-api/cache"
	"lyrics-meaning-api/circuitbreaker"
	"lyrics-meaning-api/config"
	"lyrics-meaning-api/logcolors"
	"lyrics-meaning-api/middleware"
	"lyrics-meaning-api/services/lyrics"
	"lyrics-meaning-api/services/meaning"
	"lyrics-meaning-api/services/notifier"
	"lyrics-meaning-api/services/search"
	"lyrics-meaning-api/store"
)

var conf = config.Get()

var (
	persistentCache    *cache.PersistentCache
	annotationStore    meaning.AnnotationStore
	annotationPipeline *meaning.Pipeline
	lyricsRetriever    meaning.LyricsSource
	geminiBreaker      *circuitbreaker.CircuitBreaker
)

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel) // Set to InfoLevel (change to DebugLevel for detailed logs)

	err := godotenv.Load()
	if err != nil {
		log.Warn("Error loading .env file, using environment variables")
	}
}

func main() {
	var err error
	persistentCache, err = cache.NewPersistentCache(
		conf.Configuration.LyricsCachePath,
		conf.FeatureFlags.CacheCompression,
	)
	if err != nil {
		log.Fatalf("%s Failed to open lyrics cache: %v", logcolors.LogCacheInit, err)
	}
	defer persistentCache.Close()

	annotationStore, err = store.Default()
	if err != nil {
		log.Fatalf("%s Failed to open annotation store: %v", logcolors.LogStore, err)
	}

	geminiBreaker = circuitbreaker.New(circuitbreaker.Config{
		Name:      "gemini",
		Threshold: conf.Configuration.CircuitBreakerThreshold,
		Cooldown:  time.Duration(conf.Configuration.CircuitBreakerCooldownSecs) * time.Second,
	})

	searchClient := search.NewClient(search.Config{
		APIKey:   conf.Configuration.SearchAPIKey,
		EngineID: conf.Configuration.SearchEngineID,
		Timeout:  time.Duration(conf.Configuration.SearchTimeoutSeconds) * time.Second,
	})

	retriever := lyrics.NewRetriever(searchClient,
		time.Duration(conf.Configuration.PageFetchTimeoutSecs)*time.Second)
	lyricsRetriever = retriever

	generator := meaning.NewGenerator(meaning.GeneratorConfig{
		APIKey:  conf.Configuration.GeminiAPIKey,
		Model:   conf.Configuration.GeminiModel,
		Timeout: time.Duration(conf.Configuration.GeminiTimeoutSeconds) * time.Second,
	}, geminiBreaker)

	annotationPipeline = meaning.NewPipeline(annotationStore, generator, retriever)

	startAlerts()

	router := mux.NewRouter()
	setupRoutes(router)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"https://lyrics-extractor-frontend.vercel.app",
		},
		AllowedMethods:   []string{"GET", "POST"},
		AllowCredentials: true,
	})

	limiter := middleware.NewIPRateLimiter(
		rate.Limit(conf.Configuration.RateLimitPerSecond),
		conf.Configuration.RateLimitBurstLimit,
		rate.Limit(conf.Configuration.CachedRateLimitPerSecond),
		conf.Configuration.CachedRateLimitBurstLimit,
	)
	go pruneLimiters(limiter)

	// logging -> cors -> rate limiting, so rejected requests still get
	// logged and preflights never spend rate tokens
	limitedRouter := limitMiddleware(router, limiter)
	handler := middleware.LoggingMiddleware(c.Handler(limitedRouter))

	port := conf.Configuration.Port
	notifier.PublishServerStarted(port)
	log.Infof("%s Listening on port %s", logcolors.LogServer, port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
