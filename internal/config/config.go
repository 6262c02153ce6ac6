package config

import (
	"errors"  // For validation errors
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For list parsing
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort    string // Application port
	DBDriver   string // Database driver: mysql, postgres or sqlite
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	DBPath     string // SQLite file path (":memory:" for an ephemeral database)

	JWTSecret         string        // JWT secret key
	JWTIssuer         string        // JWT issuer claim
	AccessTokenTTL    time.Duration // Access token lifetime
	RefreshTokenTTL   time.Duration // Refresh token lifetime
	PasswordPolicy    string        // strict or basic
	HashPolicy        string        // salted or plain
	BcryptCost        int           // bcrypt work factor
	RevealLoginErrors bool          // Distinguish unknown account from wrong password (never in production)

	RedisAddr string        // Redis server address, empty disables caching and shared rate limiting
	RedisPass string        // Redis password
	RedisDB   int           // Redis database number
	CacheTTL  time.Duration // Account cache lifetime

	RateLimitMax        int           // Requests per window per client IP
	RateLimitWindow     time.Duration // Global rate limit window
	AuthRateLimitMax    int           // Requests per window per client IP on /api/auth
	AuthRateLimitWindow time.Duration // Auth rate limit window

	CSRFEnabled  bool     // Require CSRF tokens on state-mutating requests
	CSRFSecret   string   // HMAC key for CSRF tokens (falls back to JWTSecret)
	CookieSecure bool     // Secure flag on auth and CSRF cookies
	CookieDomain string   // Cookie domain, empty for host-only cookies
	CORSOrigins  []string // Allowed CORS origins

	AMQPURL      string // RabbitMQ URL, empty disables ledger events
	AMQPExchange string // Exchange for ledger events

	IsProd   bool   // Is production environment
	LogLevel string // logrus level name
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	isProd := os.Getenv("IS_PROD") == "true"
	return &Config{
		AppPort:    getEnv("APP_PORT", "4000"),
		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     os.Getenv("DB_PORT"),
		DBName:     getEnv("DB_NAME", "finance"),
		DBPath:     getEnv("DB_PATH", "finance.db"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTIssuer:         getEnv("JWT_ISSUER", "finance_tracker"),
		AccessTokenTTL:    getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:   getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		PasswordPolicy:    getEnv("PASSWORD_POLICY", "strict"),
		HashPolicy:        getEnv("HASH_POLICY", "salted"),
		BcryptCost:        getEnvInt("BCRYPT_COST", 12),
		RevealLoginErrors: getEnvBool("AUTH_REVEAL_LOGIN_ERRORS", false) && !isProd,

		RedisAddr: os.Getenv("REDIS_ADDR"),
		RedisPass: os.Getenv("REDIS_PASS"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		CacheTTL:  getEnvDuration("CACHE_TTL", 60*time.Second),

		RateLimitMax:        getEnvInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow:     getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		AuthRateLimitMax:    getEnvInt("AUTH_RATE_LIMIT_MAX", 20),
		AuthRateLimitWindow: getEnvDuration("AUTH_RATE_LIMIT_WINDOW", 5*time.Minute),

		CSRFEnabled:  getEnvBool("CSRF_ENABLED", true),
		CSRFSecret:   os.Getenv("CSRF_SECRET"),
		CookieSecure: getEnvBool("COOKIE_SECURE", isProd),
		CookieDomain: os.Getenv("COOKIE_DOMAIN"),
		CORSOrigins:  getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finance.ledger"),

		IsProd:   isProd,
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate rejects configurations the server must not start with
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if c.IsProd {
			return errors.New("JWT_SECRET is required in production")
		}
		c.JWTSecret = "dev-secret-change-me" // Development fallback only
	}
	if c.CSRFSecret == "" {
		c.CSRFSecret = c.JWTSecret
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return errors.New("DB_DRIVER must be one of mysql, postgres, sqlite")
	}
	switch c.PasswordPolicy {
	case "strict", "basic":
	default:
		return errors.New("PASSWORD_POLICY must be strict or basic")
	}
	switch c.HashPolicy {
	case "salted", "plain":
	default:
		return errors.New("HASH_POLICY must be salted or plain")
	}
	return nil
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword +
			" dbname=" + c.DBName + " port=" + port + " sslmode=disable TimeZone=UTC"
	case "sqlite":
		return c.DBPath
	default:
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true&loc=UTC"
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
