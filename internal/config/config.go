package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by CREDENCE_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("CREDENCE_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func MigrationsPath() string {
	p := os.Getenv("MIGRATIONS_PATH")
	if p == "" {
		return "migrations"
	}
	return p
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// ReputationCacheTTL returns how long cached reputation views live,
// as a duration string such as "300s" or "5m". Defaults to 5 minutes.
func ReputationCacheTTL() time.Duration {
	ttl, err := time.ParseDuration(os.Getenv("REPUTATION_CACHE_TTL"))
	if err != nil || ttl <= 0 {
		return 300 * time.Second
	}
	return ttl
}

// ReputationInitialScore returns the credit score assigned to new sources.
// Defaults to 50.
func ReputationInitialScore() int {
	score, err := strconv.Atoi(os.Getenv("REPUTATION_INITIAL_SCORE"))
	if err != nil || score < 0 || score > 100 {
		return 50
	}
	return score
}

// ReputationIncrement returns the credit gained per high-credibility
// investigation. Defaults to 5.
func ReputationIncrement() int {
	inc, err := strconv.Atoi(os.Getenv("REPUTATION_INCREMENT"))
	if err != nil || inc <= 0 {
		return 5
	}
	return inc
}

// ReputationDecrement returns the credit lost per low-credibility
// investigation. Defaults to 5.
func ReputationDecrement() int {
	dec, err := strconv.Atoi(os.Getenv("REPUTATION_DECREMENT"))
	if err != nil || dec <= 0 {
		return 5
	}
	return dec
}

// CredibilityHighThreshold returns the investigation score at or above which
// sources are rewarded. Defaults to 70.
func CredibilityHighThreshold() float64 {
	t, err := strconv.ParseFloat(os.Getenv("CREDIBILITY_HIGH_THRESHOLD"), 64)
	if err != nil || t < 0 || t > 100 {
		return 70
	}
	return t
}

// CredibilityLowThreshold returns the investigation score below which
// sources are penalized. Defaults to 30.
func CredibilityLowThreshold() float64 {
	t, err := strconv.ParseFloat(os.Getenv("CREDIBILITY_LOW_THRESHOLD"), 64)
	if err != nil || t < 0 || t > 100 {
		return 30
	}
	return t
}

// DecayEnabled reports whether the background reputation decay worker runs.
// Defaults to false.
func DecayEnabled() bool {
	enabled, err := strconv.ParseBool(os.Getenv("DECAY_ENABLED"))
	if err != nil {
		return false
	}
	return enabled
}

// DecayInterval returns how often the decay worker sweeps.
// Defaults to 6h.
func DecayInterval() time.Duration {
	d, err := time.ParseDuration(os.Getenv("DECAY_INTERVAL"))
	if err != nil || d <= 0 {
		return 6 * time.Hour
	}
	return d
}

// DecayInactivityWindow returns how long a source must go untouched before
// its credit starts drifting back toward neutral. Defaults to 720h (30 days).
func DecayInactivityWindow() time.Duration {
	d, err := time.ParseDuration(os.Getenv("DECAY_INACTIVITY_WINDOW"))
	if err != nil || d <= 0 {
		return 720 * time.Hour
	}
	return d
}

// DecayRate returns the fraction of the distance to neutral removed per
// sweep. Defaults to 0.1.
func DecayRate() float64 {
	r, err := strconv.ParseFloat(os.Getenv("DECAY_RATE"), 64)
	if err != nil || r <= 0 || r > 1 {
		return 0.1
	}
	return r
}
