package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses duration values
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  The types reflect how the values are used
// in the application: strings for identifiers and secrets, ints and
// durations for lifetimes and thresholds.
type Config struct {
	Env              string        // application environment (e.g. "dev", "prod")
	Port             string        // HTTP port to listen on
	DBUser           string        // database username
	DBPass           string        // database password (optional)
	DBHost           string        // database host address
	DBPort           string        // database port number
	DBName           string        // database name
	JWTSecret        string        // secret used to sign JWTs; required, never defaulted
	AccessTTLMin     int           // access token time-to-live in minutes
	RememberTTLDays  int           // remember-me token time-to-live in days
	ActivationTTLHrs int           // activation token time-to-live in hours
	BcryptCost       int           // bcrypt cost for password hashing
	APIFailThreshold int           // failed public-API auth attempts before an IP is blocked
	APIBlockWindow   time.Duration // how long a blocked IP stays blocked
	AdminUsername    string        // bootstrap admin username (first startup only)
	AdminPassword    string        // bootstrap admin password (first startup only)
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  A missing
// JWT_SECRET is a configuration error, not something to paper over with
// an insecure default: signing must fail loudly.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"), // empty allowed
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecret:        must("JWT_SECRET"),
		AccessTTLMin:     envInt("ACCESS_TOKEN_TTL_MIN", 60),
		RememberTTLDays:  envInt("REMEMBER_TOKEN_TTL_DAYS", 30),
		ActivationTTLHrs: envInt("ACTIVATION_TOKEN_TTL_HOURS", 48),
		BcryptCost:       envInt("BCRYPT_COST", 12),
		APIFailThreshold: envInt("API_FAIL_THRESHOLD", 10),
		APIBlockWindow:   envDur("API_BLOCK_WINDOW", 10*time.Minute),
		AdminUsername:    envStr("ADMIN_USERNAME", "admin"),
		AdminPassword:    envStr("ADMIN_PASSWORD", "admin"),
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

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
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
