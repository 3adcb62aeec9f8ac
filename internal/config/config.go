package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitRate  float64
	RateLimitBurst int

	IdentityBaseURL string
	IdentitySecret  string

	GeminiAPIKey    string
	GeminiModel     string
	ClipDropAPIKey  string
	ClipDropBaseURL string

	MediaEndpoint  string
	MediaAccessKey string
	MediaSecretKey string
	MediaBucket    string
	MediaUseSSL    bool
	MediaPublicURL string

	UploadDir string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "inkwell"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "inkwell"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME_MIN", 30),

		RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		RateLimitRate:  getenvFloat("RATE_LIMIT_RATE", 0.5),
		RateLimitBurst: getenvInt("RATE_LIMIT_BURST", 5),

		IdentityBaseURL: strings.TrimRight(getenv("IDENTITY_BASE_URL", "https://api.clerk.com/v1"), "/"),
		IdentitySecret:  strings.TrimSpace(getenv("IDENTITY_SECRET_KEY", "")),

		GeminiAPIKey:    strings.TrimSpace(getenv("GEMINI_API_KEY", "")),
		GeminiModel:     getenv("GEMINI_MODEL", "gemini-2.0-flash"),
		ClipDropAPIKey:  strings.TrimSpace(getenv("CLIPDROP_API_KEY", "")),
		ClipDropBaseURL: strings.TrimRight(getenv("CLIPDROP_BASE_URL", "https://clipdrop-api.co"), "/"),

		MediaEndpoint:  getenv("MEDIA_ENDPOINT", "localhost:9000"),
		MediaAccessKey: getenv("MEDIA_ACCESS_KEY", "minioadmin"),
		MediaSecretKey: getenv("MEDIA_SECRET_KEY", "minioadmin"),
		MediaBucket:    getenv("MEDIA_BUCKET", "creations"),
		MediaUseSSL:    getenvBool("MEDIA_USE_SSL", false),
		MediaPublicURL: strings.TrimRight(getenv("MEDIA_PUBLIC_URL", ""), "/"),

		UploadDir: getenv("UPLOAD_DIR", os.TempDir()),
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
