package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends accepted by DOCS_STORE.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
	StoreNone   = "none"
)

// AppStateEdit is the DOCS_APP_STATE value that turns the admin API on.
const AppStateEdit = "edit"

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request handler budget (ex: 2s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	AppState string // "edit" enables the admin API, anything else is read-only

	// Storage
	Store             string // file | sqlite | redis | memory | none
	DataFile          string // JSON document for the file backend
	SQLitePath        string // database file for the sqlite backend
	StorageKey        string // name of the persisted document (ex: "docs-app-state")
	SeedFile          string // optional YAML seed, empty = built-in seed
	ResetCorruptState bool   // true => replace an undecodable document with the seed

	// Redis (only read when Store == "redis")
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	AllowedHosts []string // optional, restrict admin access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	AdminRateBurst  int // admin requests allowed in a burst per client IP
	AdminRatePerMin int // admin tokens refilled per client IP per minute
}

// EditMode reports whether content can be changed through the admin API.
func (c *Config) EditMode() bool {
	return strings.EqualFold(c.AppState, AppStateEdit)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("DOCS_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("DOCS_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("DOCS_REQUEST_TIMEOUT", 2*time.Second),

		// Logging
		LogLevel:  getenv("DOCS_LOG_LEVEL", "info"),
		PrettyLog: mustBool("DOCS_PRETTY_LOG", true),

		AppState: getenv("DOCS_APP_STATE", "view"),

		// Storage
		Store:             mustOneOf("DOCS_STORE", StoreFile, StoreFile, StoreSQLite, StoreRedis, StoreMemory, StoreNone),
		DataFile:          getenv("DOCS_DATA_FILE", "/app/data/docs-app-state.json"),
		SQLitePath:        getenv("DOCS_SQLITE_PATH", "/app/data/docs.db"),
		StorageKey:        getenv("DOCS_STORAGE_KEY", "docs-app-state"),
		SeedFile:          getenv("DOCS_SEED_FILE", ""),
		ResetCorruptState: mustBool("DOCS_RESET_CORRUPT_STATE", false),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("DOCS_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("DOCS_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("DOCS_TRUST_PROXY", true),

		AdminRateBurst:  getenvInt("DOCS_ADMIN_RATE_BURST", 20),
		AdminRatePerMin: getenvInt("DOCS_ADMIN_RATE_PER_MIN", 60),
	}

	if cfg.Store == StoreRedis {
		loadRedis(cfg)
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

func loadRedis(cfg *Config) {
	cfg.RedisAddr = requireEnv("DOCS_REDIS_ADDR")
	cfg.RedisUser = getenv("DOCS_REDIS_USERNAME", "")
	cfg.RedisPassword = getenv("DOCS_REDIS_PASSWORD", "")
	cfg.RedisDB = getenvInt("DOCS_REDIS_DB", 0)
	cfg.RedisDT = mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.RedisRT = mustDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.RedisWT = mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.RedisMaxWait = mustDuration("REDIS_MAX_WAIT", 10*time.Second)
	cfg.RedisPingTimeout = mustDuration("REDIS_PING_TIMEOUT", 5*time.Second)
	cfg.RedisPoolSize = getenvInt("REDIS_POOL_SIZE", 10)
	cfg.RedisConnectTimeout = mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second)
	cfg.RedisRetryInterval = mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second)
	cfg.RedisWarnThreshold = getenvInt("REDIS_WARN_THRESHOLD", 3)

	if mustBool("DOCS_REDIS_PASSWORD_REQUIRED", false) && cfg.RedisPassword == "" {
		panic("❌ FATAL: DOCS_REDIS_PASSWORD is required when DOCS_REDIS_PASSWORD_REQUIRED=true")
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

// mustOneOf returns the lower-cased value of key, or def when unset. Any value
// outside allowed is fatal: a typo in the backend name must not silently
// fall back to another store.
func mustOneOf(key, def string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(getenv(key, def)))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	panic(fmt.Sprintf("❌ FATAL: Invalid value for %s: %q (expected one of %s)", key, v, strings.Join(allowed, ", ")))
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
