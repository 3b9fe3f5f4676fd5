package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool

	// Remote ledger authority
	LedgerAPIURL     string
	LedgerAPITimeout time.Duration

	// Auth
	JWTSecret string
	JWTIssuer string

	// Local draft store
	DraftDBPath           string
	DraftAutosaveInterval time.Duration
	DraftMaxAge           time.Duration

	// Validation coordinator
	ValidationDebounce time.Duration

	// Editing sessions
	SessionIdleTTL time.Duration

	// Ambient
	RateLimit          string
	CORSAllowedOrigins []string
	PosthogAPIKey      string
	PosthogEndpoint    string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("LEDGER_API_URL", "")
	viper.SetDefault("LEDGER_API_TIMEOUT", "30s")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "asientoflow")
	viper.SetDefault("DRAFT_DB_PATH", "drafts.db")
	viper.SetDefault("DRAFT_AUTOSAVE_INTERVAL", "30s")
	viper.SetDefault("DRAFT_MAX_AGE", "168h")
	viper.SetDefault("VALIDATION_DEBOUNCE", "500ms")
	viper.SetDefault("SESSION_IDLE_TTL", "2h")
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.LedgerAPIURL = viper.GetString("LEDGER_API_URL")
	if cfg.LedgerAPIURL == "" {
		log.Println("Warning: LEDGER_API_URL environment variable not set.")
	}
	cfg.LedgerAPITimeout = durationOrDefault("LEDGER_API_TIMEOUT", 30*time.Second)

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.DraftDBPath = viper.GetString("DRAFT_DB_PATH")
	cfg.DraftAutosaveInterval = durationOrDefault("DRAFT_AUTOSAVE_INTERVAL", 30*time.Second)
	cfg.DraftMaxAge = durationOrDefault("DRAFT_MAX_AGE", 7*24*time.Hour)
	cfg.ValidationDebounce = durationOrDefault("VALIDATION_DEBOUNCE", 500*time.Millisecond)
	cfg.SessionIdleTTL = durationOrDefault("SESSION_IDLE_TTL", 2*time.Hour)

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = viper.GetStringSlice("CORS_ALLOWED_ORIGINS")
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")

	return cfg, nil
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
