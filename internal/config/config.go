package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Provider exposes application configuration to the rest of the codebase.
// Handlers and stores depend on this interface rather than on the environment
// directly, which keeps them testable with a static test provider.
type Provider interface {
	GetAddr() string
	GetAppBaseURL() string
	// GetAPIBaseURL is the base URL the profile panel's API client talks to.
	// In the default single-process deployment it points back at this server.
	GetAPIBaseURL() string
	GetSessionSecret() string

	GetDBUrl() string
	GetDBUser() string
	GetDBPass() string
	GetDBNs() string
	GetDBDb() string
	GetDBQueryTimeout() time.Duration

	GetUploadDir() string
	GetMaxUploadBytes() int64

	GetEmailProvider() string
	GetEmailAPIKey() string
	GetEmailSender() string
}

// Config is the environment-backed Provider implementation.
type Config struct {
	addr           string
	appBaseURL     string
	apiBaseURL     string
	sessionSecret  string
	dbURL          string
	dbUser         string
	dbPass         string
	dbNs           string
	dbDb           string
	dbQueryTimeout time.Duration
	uploadDir      string
	maxUploadBytes int64
	emailProvider  string
	emailAPIKey    string
	emailSender    string
}

// New loads configuration from the environment, reading a .env file first if
// one is present.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		addr:           getEnv("APP_ADDR", ":8080"),
		appBaseURL:     getEnv("APP_BASE_URL", "http://localhost:8080"),
		apiBaseURL:     getEnv("API_BASE_URL", "http://localhost:8080/api"),
		sessionSecret:  os.Getenv("SESSION_SECRET"),
		dbURL:          os.Getenv("SURREAL_URL"),
		dbUser:         os.Getenv("SURREAL_USER"),
		dbPass:         os.Getenv("SURREAL_PASS"),
		dbNs:           os.Getenv("SURREAL_NS"),
		dbDb:           os.Getenv("SURREAL_DB"),
		dbQueryTimeout: getDurationEnv("DB_QUERY_TIMEOUT", 5*time.Second),
		uploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		maxUploadBytes: getInt64Env("MAX_UPLOAD_BYTES", 5<<20),
		emailProvider:  getEnv("EMAIL_PROVIDER", "log"),
		emailAPIKey:    os.Getenv("EMAIL_API_KEY"),
		emailSender:    os.Getenv("EMAIL_SENDER"),
	}

	if cfg.dbURL == "" || cfg.dbNs == "" || cfg.dbDb == "" {
		log.Fatal("Required environment variables SURREAL_URL, SURREAL_NS, or SURREAL_DB are not set.")
	}
	if cfg.sessionSecret == "" {
		log.Fatal("Required environment variable SESSION_SECRET is not set.")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getInt64Env(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func (c *Config) GetAddr() string                  { return c.addr }
func (c *Config) GetAppBaseURL() string            { return c.appBaseURL }
func (c *Config) GetAPIBaseURL() string            { return c.apiBaseURL }
func (c *Config) GetSessionSecret() string         { return c.sessionSecret }
func (c *Config) GetDBUrl() string                 { return c.dbURL }
func (c *Config) GetDBUser() string                { return c.dbUser }
func (c *Config) GetDBPass() string                { return c.dbPass }
func (c *Config) GetDBNs() string                  { return c.dbNs }
func (c *Config) GetDBDb() string                  { return c.dbDb }
func (c *Config) GetDBQueryTimeout() time.Duration { return c.dbQueryTimeout }
func (c *Config) GetUploadDir() string             { return c.uploadDir }
func (c *Config) GetMaxUploadBytes() int64         { return c.maxUploadBytes }
func (c *Config) GetEmailProvider() string         { return c.emailProvider }
func (c *Config) GetEmailAPIKey() string           { return c.emailAPIKey }
func (c *Config) GetEmailSender() string           { return c.emailSender }
