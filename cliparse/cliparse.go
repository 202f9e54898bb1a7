package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AI provider names
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	SlugSalt     string
	BaseURL      string

	AIProvider    string
	AIModel       string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	AITimeout     time.Duration

	BackfillDelay time.Duration
	RunBackfill   bool

	RequirePhone bool
	SessionTTL   time.Duration

	SeedDemo bool
	SeedFile string

	LogLevel  string
	LogFormat string
}

// AIKey returns the credential for the configured provider.
func (c Config) AIKey() string {
	if c.AIProvider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// ParseFlags validates flags and fills the rest from the environment.
// A .env file in the working directory is loaded first if present; real
// environment variables win over it.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	fs := flag.NewFlagSet("persona-assess", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SlugSalt, "slug-salt", "", "Assessment slug salt (prefer env)")

	fs.BoolVar(&cfg.RunBackfill, "backfill", false, "Run the analysis backfill once and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.SlugSalt == "" {
		cfg.SlugSalt = os.Getenv("ASSESSMENT_SLUG_SALT")
	}
	if cfg.SlugSalt == "" {
		return Config{}, errors.New("ASSESSMENT_SLUG_SALT required")
	}

	cfg.BaseURL = strings.TrimRight(envOr("BASE_URL", "http://localhost:"+strconv.Itoa(cfg.Port)), "/")

	// AI credentials are optional; analysis falls back when they are missing.
	cfg.AIProvider = strings.ToLower(envOr("AI_PROVIDER", ProviderGemini))
	if cfg.AIProvider != ProviderGemini && cfg.AIProvider != ProviderOpenAI {
		return Config{}, fmt.Errorf("unsupported AI_PROVIDER %q", cfg.AIProvider)
	}
	cfg.AIModel = os.Getenv("AI_MODEL")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")

	var err error
	if cfg.AITimeout, err = envDuration("AI_TIMEOUT", 60*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.BackfillDelay, err = envDuration("BACKFILL_DELAY", time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = envDuration("SESSION_TTL", 2*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.RequirePhone, err = envBool("REQUIRE_PHONE", false); err != nil {
		return Config{}, err
	}
	if cfg.SeedDemo, err = envBool("SEED_DEMO", true); err != nil {
		return Config{}, err
	}
	cfg.SeedFile = os.Getenv("SEED_FILE")

	cfg.LogLevel = envOr("LOG_LEVEL", "info")
	cfg.LogFormat = envOr("LOG_FORMAT", "text")

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return d, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return b, nil
}
