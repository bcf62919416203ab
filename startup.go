package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"lyrics-meaning-api/logcolors"
	"lyrics-meaning-api/middleware"
	"lyrics-meaning-api/services/notifier"
	"lyrics-meaning-api/stats"

	log "github.com/sirupsen/logrus"
)

// limitMiddleware applies two-tier per-IP rate limiting. The normal tier
// covers everything; once it's exhausted the cached tier still admits the
// request, but handlers may only answer it from cache.
func limitMiddleware(next http.Handler, limiter *middleware.IPRateLimiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiters := limiter.GetLimiter(r.RemoteAddr)

		if limiters.Normal.Allow() {
			stats.Get().RecordRateLimit("normal")
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.GetNormalLimit()))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", limiters.GetNormalTokens()))
			w.Header().Set("X-RateLimit-Type", "normal")
			ctx := context.WithValue(r.Context(), rateLimitTypeKey, "normal")
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if limiters.Cached.Allow() {
			stats.Get().RecordRateLimit("cached")
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.GetCachedLimit()))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", limiters.GetCachedTokens()))
			w.Header().Set("X-RateLimit-Type", "cached")
			log.Debugf("%s IP %s exceeded normal tier, using cached tier", logcolors.LogRateLimit, r.RemoteAddr)
			ctx := context.WithValue(r.Context(), cacheOnlyModeKey, true)
			ctx = context.WithValue(ctx, rateLimitTypeKey, "cached")
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		stats.Get().RecordRateLimit("exceeded")
		log.Warnf("%s IP %s exceeded both rate limit tiers", logcolors.LogRateLimit, r.RemoteAddr)
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.GetCachedLimit()))
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Type", "exceeded")
		w.Header().Set("Retry-After", "1")
		http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
	})
}

// pruneLimiters drops idle per-IP limiters every hour
func pruneLimiters(limiter *middleware.IPRateLimiter) {
	for {
		time.Sleep(time.Hour)
		if removed := limiter.Prune(time.Hour); removed > 0 {
			log.Infof("%s Pruned %d idle IP limiters", logcolors.LogRateLimit, removed)
		}
	}
}

// setupNotifiers builds the configured alert channels
func setupNotifiers() []notifier.Notifier {
	var notifiers []notifier.Notifier

	if topic := conf.Configuration.NtfyTopic; topic != "" {
		notifiers = append(notifiers, &notifier.NtfyNotifier{
			Topic:  topic,
			Server: conf.Configuration.NtfyServer,
		})
		log.Infof("%s Ntfy.sh notifier enabled", logcolors.LogNotifier)
	}

	if botToken := conf.Configuration.TelegramBotToken; botToken != "" {
		notifiers = append(notifiers, &notifier.TelegramNotifier{
			BotToken: botToken,
			ChatID:   conf.Configuration.TelegramChatID,
		})
		log.Infof("%s Telegram notifier enabled", logcolors.LogNotifier)
	}

	return notifiers
}

// startAlerts wires the event bus to the configured notifiers
func startAlerts() {
	notifiers := setupNotifiers()
	if len(notifiers) == 0 {
		log.Infof("%s No notifiers configured, alerting disabled", logcolors.LogNotifier)
		return
	}

	handler := notifier.NewAlertHandler(notifier.AlertConfig{Notifiers: notifiers})
	handler.Start()
	log.Infof("%s Alerting active with %d notifier(s)", logcolors.LogNotifier, len(notifiers))
}
