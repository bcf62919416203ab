package logcolors

// ANSI color codes for log prefixes
const (
	Reset  = "\033[0m"
	Green  = "\033[32m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
	Red    = "\033[31m"
)

// Retrieval pipeline log prefixes
const (
	LogSearch  = Blue + "[Search]" + Reset
	LogFetch   = Cyan + "[Fetch]" + Reset
	LogExtract = Green + "[Extract]" + Reset
	LogLyrics  = Blue + "[Lyrics]" + Reset
)

// Annotation pipeline log prefixes
const (
	LogMeaning  = Green + "[Meaning]" + Reset
	LogGemini   = Purple + "[Gemini]" + Reset
	LogPipeline = Cyan + "[Pipeline]" + Reset
	LogStore    = Blue + "[Store]" + Reset
)

// Cache log prefixes
const (
	LogCache       = Blue + "[Cache]" + Reset
	LogCacheInit   = Blue + "[Cache:Init]" + Reset
	LogCacheLyrics = Green + "[Cache:Lyrics]" + Reset
	LogCacheClear  = Blue + "[Cache:Clear]" + Reset
)

// Server and middleware log prefixes
const (
	LogServer    = Green + "[Server]" + Reset
	LogHTTP      = Cyan + "[HTTP]" + Reset
	LogConfig    = Cyan + "[Config]" + Reset
	LogStats     = Blue + "[Stats]" + Reset
	LogRateLimit = Purple + "[RateLimit]" + Reset
	LogNotifier  = Cyan + "[Notifier]" + Reset
)

// CircuitBreakerPrefix returns a colored circuit breaker prefix with the given name
func CircuitBreakerPrefix(name string) string {
	return Purple + "[CircuitBreaker:" + name + "]" + Reset
}
