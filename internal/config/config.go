package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port           string
	Env            string
	PublicBaseURL  string
	AllowedOrigins []string

	Store StoreConfig

	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	Admin AdminConfig

	RateLimit RateLimitConfig

	Upload UploadConfig

	GitHub OAuthConfig
	Google OAuthConfig
}

type StoreConfig struct {
	Driver      string
	DataDir     string
	DatabaseURL string
	SQLitePath  string
	Timeout     time.Duration
	Watch       bool
}

type AdminConfig struct {
	Email        string
	PasswordHash string
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),

		Store: StoreConfig{
			Driver:      strings.ToLower(getEnv("STORE_DRIVER", DriverFile)),
			DataDir:     dataDir,
			DatabaseURL: getEnv("DATABASE_URL", ""),
			SQLitePath:  getEnv("SQLITE_PATH", filepath.Join(dataDir, "folio.db")),
			Timeout:     getDuration("STORE_TIMEOUT", 5*time.Second),
			Watch:       getBool("STORE_WATCH", true),
		},

		JWTSecret:        getEnvOrPanic("JWT_SECRET"),
		JWTAccessExpiry:  getDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		JWTRefreshExpiry: getDuration("JWT_REFRESH_EXPIRY", 168*time.Hour),

		Admin: AdminConfig{
			Email:        getEnv("ADMIN_EMAIL", ""),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},

		RateLimit: RateLimitConfig{
			Max:    getInt("RATE_LIMIT_MAX", 5),
			Window: getDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		},

		Upload: UploadConfig{
			Dir:      getEnv("UPLOAD_DIR", "./uploads"),
			MaxBytes: int64(getInt("UPLOAD_MAX_BYTES", 10<<20)),
		},

		GitHub: OAuthConfig{
			ClientID:     getEnv("GITHUB_CLIENT_ID", ""),
			ClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GITHUB_REDIRECT_URL", ""),
		},
		Google: OAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		},
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvOrPanic(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
