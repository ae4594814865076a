package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by FITCHECK_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("FITCHECK_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Missing files are fine; the process environment still applies.
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	return intEnv("SERVER_PORT", 8080)
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func RedisURL() string {
	return os.Getenv("REDIS_URL")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func CerebrasAPIKey() string {
	return os.Getenv("CEREBRAS_API_KEY")
}

// LLMProvider returns the configured completion provider.
// Defaults to "openai" if not set.
// Valid values: openai, anthropic, gemini, cerebras, mock
func LLMProvider() string {
	return stringEnv("LLM_PROVIDER", "openai")
}

// LLMModel overrides the provider's default model when set.
func LLMModel() string {
	return os.Getenv("LLM_MODEL")
}

// LLMAPIKey returns the API key for the configured LLM provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "anthropic":
		return AnthropicAPIKey()
	case "gemini":
		return GeminiAPIKey()
	case "cerebras":
		return CerebrasAPIKey()
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// EmbeddingProvider returns the configured embedding provider.
// Defaults to "openai" if not set.
// Valid values: openai, gemini, mock
func EmbeddingProvider() string {
	return stringEnv("EMBEDDING_PROVIDER", "openai")
}

// EmbeddingAPIKey returns the API key for the configured embedding provider.
func EmbeddingAPIKey() string {
	switch EmbeddingProvider() {
	case "gemini":
		return GeminiAPIKey()
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// EmbeddingDimensions must match the vector column in migrations.
func EmbeddingDimensions() int {
	return intEnv("EMBEDDING_DIMENSIONS", 384)
}

// RetrievalBackend selects how evidence is searched: "http" calls the external
// search service, "local" embeds and queries Postgres in-process.
func RetrievalBackend() string {
	return stringEnv("RETRIEVAL_BACKEND", "http")
}

func SearchServiceURL() string {
	return stringEnv("SEARCH_SERVICE_URL", "http://localhost:8001")
}

func SearchTimeout() time.Duration {
	return durationEnv("SEARCH_TIMEOUT", 30*time.Second)
}

// SearchCacheTTL of zero disables the retrieval cache.
func SearchCacheTTL() time.Duration {
	return durationEnv("SEARCH_CACHE_TTL", 10*time.Minute)
}

func PipelineTimeout() time.Duration {
	return durationEnv("PIPELINE_TIMEOUT", 120*time.Second)
}

// ClaimTimeout bounds a single claim's retrieval and synthesis. Zero means no bound.
func ClaimTimeout() time.Duration {
	return durationEnv("CLAIM_TIMEOUT", 0)
}

// MaxConcurrency caps concurrent claim tasks. Zero means unbounded.
func MaxConcurrency() int {
	return intEnv("MAX_CONCURRENCY", 0)
}

func MaxTranscriptWords() int {
	return intEnv("MAX_TRANSCRIPT_WORDS", 4000)
}

func MaxAudioBytes() int64 {
	return int64(intEnv("MAX_AUDIO_MB", 25)) << 20
}

func YTDLPPath() string {
	return stringEnv("YTDLP_PATH", "yt-dlp")
}

func FFmpegPath() string {
	return stringEnv("FFMPEG_PATH", "ffmpeg")
}

// WhisperAPIKey falls back to OPENAI_API_KEY.
func WhisperAPIKey() string {
	return stringEnv("WHISPER_API_KEY", OpenAIAPIKey())
}

func WhisperBaseURL() string {
	return os.Getenv("WHISPER_BASE_URL")
}

// ScratchDir is where per-request audio lives. Empty means os.TempDir.
func ScratchDir() string {
	return os.Getenv("SCRATCH_DIR")
}

// VideoPlatforms overrides the accepted video hosts, comma separated.
func VideoPlatforms() []string {
	return listEnv("VIDEO_PLATFORMS")
}

// APIKeys are the bearer tokens accepted by the HTTP API. Empty disables auth.
func APIKeys() []string {
	return listEnv("API_KEYS")
}

func MigrationsPath() string {
	return stringEnv("MIGRATIONS_PATH", "migrations")
}

// RateLimitRPS returns requests per second limit.
// Defaults to 10 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 10
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst := intEnv("RATE_LIMIT_BURST", 20)
	if burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	return stringEnv("LOG_LEVEL", "info")
}

// Pipeline groups the orchestrator settings.
type Pipeline struct {
	Timeout        time.Duration
	ClaimTimeout   time.Duration
	MaxConcurrency int
}

func PipelineSettings() Pipeline {
	return Pipeline{
		Timeout:        PipelineTimeout(),
		ClaimTimeout:   ClaimTimeout(),
		MaxConcurrency: MaxConcurrency(),
	}
}

// LLM groups the completion provider settings.
type LLM struct {
	Provider string
	APIKey   string
	Model    string
}

func LLMSettings() LLM {
	return LLM{
		Provider: LLMProvider(),
		APIKey:   LLMAPIKey(),
		Model:    LLMModel(),
	}
}

// Retrieval groups the evidence search settings.
type Retrieval struct {
	Backend   string
	URL       string
	Timeout   time.Duration
	CacheTTL  time.Duration
	RedisURL  string
	Embedding Embedding
}

type Embedding struct {
	Provider   string
	APIKey     string
	Dimensions int
}

func EmbeddingSettings() Embedding {
	return Embedding{
		Provider:   EmbeddingProvider(),
		APIKey:     EmbeddingAPIKey(),
		Dimensions: EmbeddingDimensions(),
	}
}

func RetrievalSettings() Retrieval {
	return Retrieval{
		Backend:   RetrievalBackend(),
		URL:       SearchServiceURL(),
		Timeout:   SearchTimeout(),
		CacheTTL:  SearchCacheTTL(),
		RedisURL:  RedisURL(),
		Embedding: EmbeddingSettings(),
	}
}

// Transcript groups the video acquisition and speech-to-text settings.
type Transcript struct {
	YTDLPPath      string
	FFmpegPath     string
	MaxAudioBytes  int64
	MaxWords       int
	Platforms      []string
	ScratchDir     string
	WhisperAPIKey  string
	WhisperBaseURL string
}

func TranscriptSettings() Transcript {
	return Transcript{
		YTDLPPath:      YTDLPPath(),
		FFmpegPath:     FFmpegPath(),
		MaxAudioBytes:  MaxAudioBytes(),
		MaxWords:       MaxTranscriptWords(),
		Platforms:      VideoPlatforms(),
		ScratchDir:     ScratchDir(),
		WhisperAPIKey:  WhisperAPIKey(),
		WhisperBaseURL: WhisperBaseURL(),
	}
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v < 0 {
		return def
	}
	return v
}

// durationEnv accepts Go durations ("90s") or a bare number of seconds.
func durationEnv(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}

func listEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
