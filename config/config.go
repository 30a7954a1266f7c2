package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server settings
	ServerPort   string        `json:"server_port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Debug        bool          `json:"debug"`

	// Application paths
	LogDir string `json:"log_dir"`

	// Rate limiting for the HTTP surface
	RateLimit RateLimitConfig `json:"rate_limit"`

	// Cache settings
	Cache CacheConfig `json:"cache"`

	// Summarizer settings
	Summarizer SummarizerConfig `json:"summarizer"`

	// LLM provider settings
	LLM LLMConfig `json:"llm"`

	// Transcription settings
	Transcriber TranscriberConfig `json:"transcriber"`

	// Request and shutdown timeouts
	RequestTimeout  time.Duration `json:"request_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	Version string `json:"version"`
}

type RateLimitConfig struct {
	Enabled           bool `json:"enabled"`
	RequestsPerMinute int  `json:"requests_per_minute"`
}

type CacheConfig struct {
	// Backend selects the store implementation: "memory", "redis" or "sqlite".
	Backend       string        `json:"backend"`
	RedisAddr     string        `json:"redis_addr"`
	RedisDB       int           `json:"redis_db"`
	SQLitePath    string        `json:"sqlite_path"`
	TranscriptTTL time.Duration `json:"transcript_ttl"`
	SummaryTTL    time.Duration `json:"summary_ttl"`
}

type SummarizerConfig struct {
	// ChunkLimit is the maximum chunk size in characters handed to the LLM.
	ChunkLimit  int `json:"chunk_limit"`
	Concurrency int `json:"concurrency"`
}

type LLMConfig struct {
	BaseURL           string        `json:"base_url"`
	APIKey            string        `json:"-"`
	Model             string        `json:"model"`
	MaxTokens         int           `json:"max_tokens"`
	Timeout           time.Duration `json:"timeout"`
	RequestsPerMinute int           `json:"requests_per_minute"`
}

type TranscriberConfig struct {
	// Backend selects the speech-to-text engine: "assemblyai" or "whisper".
	Backend         string        `json:"backend"`
	AssemblyAIKey   string        `json:"-"`
	WhisperModel    string        `json:"whisper_model"`
	WhisperCommand  string        `json:"whisper_command"`
	AudioCommand    string        `json:"audio_command"`
	TempDir         string        `json:"temp_dir"`
	Timeout         time.Duration `json:"timeout"`
	PollingInterval time.Duration `json:"polling_interval"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:  getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		Debug:        getEnvAsBool("DEBUG", false),

		LogDir: getEnv("LOG_DIR", "/var/log/ytsummarizer"),

		Version: getEnv("VERSION", "1.0.0"),

		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Minute),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 60),
		},

		Cache: CacheConfig{
			Backend:       getEnv("CACHE_BACKEND", "memory"),
			RedisAddr:     getEnv("CACHE_REDIS_ADDR", "localhost:6379"),
			RedisDB:       getEnvAsInt("CACHE_REDIS_DB", 0),
			SQLitePath:    getEnv("CACHE_SQLITE_PATH", "/var/lib/ytsummarizer/cache.db"),
			TranscriptTTL: getEnvAsDuration("CACHE_TRANSCRIPT_TTL", 0),
			SummaryTTL:    getEnvAsDuration("CACHE_SUMMARY_TTL", 7*24*time.Hour),
		},

		Summarizer: SummarizerConfig{
			ChunkLimit:  getEnvAsInt("SUMMARIZER_CHUNK_LIMIT", 4000),
			Concurrency: getEnvAsInt("SUMMARIZER_CONCURRENCY", 4),
		},

		LLM: LLMConfig{
			BaseURL:           getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
			APIKey:            getEnv("LLM_API_KEY", ""),
			Model:             getEnv("LLM_MODEL", "llama-3.1-8b-instant"),
			MaxTokens:         getEnvAsInt("LLM_MAX_TOKENS", 8000),
			Timeout:           getEnvAsDuration("LLM_TIMEOUT", 2*time.Minute),
			RequestsPerMinute: getEnvAsInt("LLM_RPM", 30),
		},

		Transcriber: TranscriberConfig{
			Backend:         getEnv("TRANSCRIBER_BACKEND", "assemblyai"),
			AssemblyAIKey:   getEnv("ASSEMBLYAI_API_KEY", ""),
			WhisperModel:    getEnv("WHISPER_MODEL", "base"),
			WhisperCommand:  getEnv("WHISPER_COMMAND", "whisper-cli"),
			AudioCommand:    getEnv("AUDIO_COMMAND", "yt-dlp"),
			TempDir:         getEnv("TEMP_DIR", "/tmp/ytsummarizer"),
			Timeout:         getEnvAsDuration("TRANSCRIBER_TIMEOUT", 30*time.Minute),
			PollingInterval: getEnvAsDuration("TRANSCRIBER_POLL_INTERVAL", 3*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.Summarizer.ChunkLimit <= 0 {
		return fmt.Errorf("summarizer chunk limit must be positive")
	}
	if c.Summarizer.Concurrency <= 0 {
		return fmt.Errorf("summarizer concurrency must be positive")
	}

	switch c.Cache.Backend {
	case "memory", "redis", "sqlite":
	default:
		return fmt.Errorf("unknown cache backend: %s", c.Cache.Backend)
	}

	switch c.Transcriber.Backend {
	case "assemblyai", "whisper":
	default:
		return fmt.Errorf("unknown transcriber backend: %s", c.Transcriber.Backend)
	}

	if c.Transcriber.Backend == "assemblyai" && c.Transcriber.AssemblyAIKey == "" {
		return fmt.Errorf("ASSEMBLYAI_API_KEY is required for the assemblyai backend")
	}

	return nil
}

// Helper functions for reading environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
