package middleware

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TierLimiters holds the per-IP limiters for both tiers. The normal tier
// covers retrieval and generation endpoints; the cached tier covers
// read-only lookups against the annotation store, which are cheap enough
// to allow at a higher rate.
type TierLimiters struct {
	Normal   *rate.Limiter
	Cached   *rate.Limiter
	lastSeen time.Time
}

// GetNormalTokens returns the number of tokens available in the normal tier
func (tl *TierLimiters) GetNormalTokens() int {
	return int(math.Floor(tl.Normal.Tokens()))
}

// GetCachedTokens returns the number of tokens available in the cached tier
func (tl *TierLimiters) GetCachedTokens() int {
	return int(math.Floor(tl.Cached.Tokens()))
}

// IPRateLimiter manages two-tier rate limiting per client IP
type IPRateLimiter struct {
	ips         map[string]*TierLimiters
	mu          sync.Mutex
	normalRate  rate.Limit
	normalBurst int
	cachedRate  rate.Limit
	cachedBurst int
}

// NewIPRateLimiter creates a new two-tier rate limiter
func NewIPRateLimiter(normalRate rate.Limit, normalBurst int, cachedRate rate.Limit, cachedBurst int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:         make(map[string]*TierLimiters),
		normalRate:  normalRate,
		normalBurst: normalBurst,
		cachedRate:  cachedRate,
		cachedBurst: cachedBurst,
	}
}

// GetNormalLimit returns the normal tier burst limit
func (i *IPRateLimiter) GetNormalLimit() int {
	return i.normalBurst
}

// GetCachedLimit returns the cached tier burst limit
func (i *IPRateLimiter) GetCachedLimit() int {
	return i.cachedBurst
}

// GetLimiter returns the limiter pair for an IP, creating it on first sight
func (i *IPRateLimiter) GetLimiter(ip string) *TierLimiters {
	i.mu.Lock()
	defer i.mu.Unlock()

	tl, exists := i.ips[ip]
	if !exists {
		tl = &TierLimiters{
			Normal: rate.NewLimiter(i.normalRate, i.normalBurst),
			Cached: rate.NewLimiter(i.cachedRate, i.cachedBurst),
		}
		i.ips[ip] = tl
	}
	tl.lastSeen = time.Now()

	return tl
}

// Len returns the number of tracked IPs
func (i *IPRateLimiter) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.ips)
}

// Prune removes limiters for IPs not seen within maxIdle and returns the
// number removed. Idle limiters are back at full burst anyway, so dropping
// them only frees memory.
func (i *IPRateLimiter) Prune(maxIdle time.Duration) int {
	i.mu.Lock()
	defer i.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for ip, tl := range i.ips {
		if tl.lastSeen.Before(cutoff) {
			delete(i.ips, ip)
			removed++
		}
	}
	return removed
}
