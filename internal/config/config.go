package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses duration tunables
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Required identifiers and secrets are
// enforced at startup; operational tunables carry sensible defaults so a
// bare deployment still behaves like the reference configuration.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // credential database username
	DBPass    string // credential database password (optional)
	DBHost    string // credential database host address
	DBPort    string // credential database port number
	DBName    string // credential database name
	JWTSecret string // secret used to sign JWTs

	AccessTTL  time.Duration // access token lifetime
	RefreshTTL time.Duration // refresh token lifetime

	LockoutThreshold int           // consecutive failures that trigger a lock
	LockoutDuration  time.Duration // how long a triggered lock holds
	FailureWindow    time.Duration // TTL of the consecutive-failure counter

	SessionIdleTimeout time.Duration // session record TTL / sweep idle cutoff
	SessionIndexGrace  time.Duration // extra TTL on the per-user index beyond the session TTL
	MaxActiveSessions  int64         // advisory ceiling reported by the concurrency gate
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:       must("APP_ENV"),      // environment (dev/test/prod)
		Port:      must("APP_PORT"),     // port to bind the HTTP server
		DBUser:    must("DB_USER"),      // database user
		DBPass:    os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:    must("DB_HOST"),      // database host
		DBPort:    must("DB_PORT"),      // database port
		DBName:    must("DB_NAME"),      // database name
		JWTSecret: must("JWT_SECRET"),   // secret used for signing JWTs

		AccessTTL:  envDur("ACCESS_TOKEN_TTL", 30*time.Minute),
		RefreshTTL: envDur("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		LockoutThreshold: envInt("LOCKOUT_THRESHOLD", 5),
		LockoutDuration:  envDur("LOCKOUT_DURATION", 30*time.Minute),
		FailureWindow:    envDur("LOCKOUT_FAILURE_WINDOW", 15*time.Minute),

		SessionIdleTimeout: envDur("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		SessionIndexGrace:  envDur("SESSION_INDEX_GRACE", 5*time.Minute),
		MaxActiveSessions:  int64(envInt("MAX_ACTIVE_SESSIONS", 10000)),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
