package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	AppURL      string

	AuthCookieSecure bool
	AuthJWTSecret    string
	GoogleClientID   string

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
	DBConnMaxIdleTime int

	CreemAPIKey        string
	CreemWebhookSecret string
	CreemAPIBase       string

	OpenRouterAPIKey string
	OpenRouterModel  string

	OSSEndpoint        string
	OSSRegion          string
	OSSAccessKeyID     string
	OSSAccessKeySecret string
	OSSBucket          string
	OSSKeyPrefix       string

	RateLimit RateLimitConfig
}

// RateLimitConfig configures the redis-backed request limiter.
type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	WebhookRate   float64
	WebhookBurst  int
	CheckoutRate  float64
	CheckoutBurst int
	ToolRate      float64
	ToolBurst     int
}

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewPackageHolder),
)

// Load reads configuration from the environment. A .env file is honored
// when present so local development matches the deployed layout.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	return Config{
		AppName:     getenv("APP_SERVICE", "dreamnest"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: environment,
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		AppURL:      strings.TrimRight(getenv("APP_URL", "http://localhost:3000"), "/"),

		AuthCookieSecure: authCookieSecure,
		AuthJWTSecret:    strings.TrimSpace(getenv("AUTH_JWT_SECRET", "")),
		GoogleClientID:   strings.TrimSpace(getenv("GOOGLE_CLIENT_ID", "")),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "dreamnest"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),

		CreemAPIKey:        strings.TrimSpace(getenv("CREEM_API_KEY", "")),
		CreemWebhookSecret: strings.TrimSpace(getenv("CREEM_WEBHOOK_SECRET", "")),
		CreemAPIBase:       strings.TrimSpace(getenv("CREEM_API_BASE", "")),

		OpenRouterAPIKey: strings.TrimSpace(getenv("OPENROUTER_API_KEY", "")),
		OpenRouterModel:  getenv("OPENROUTER_MODEL", "bytedance-seed/seedream-4.5"),

		OSSEndpoint:        strings.TrimSpace(getenv("OSS_ENDPOINT", "")),
		OSSRegion:          strings.TrimSpace(getenv("OSS_REGION", "")),
		OSSAccessKeyID:     strings.TrimSpace(getenv("OSS_ACCESS_KEY_ID", "")),
		OSSAccessKeySecret: strings.TrimSpace(getenv("OSS_ACCESS_KEY_SECRET", "")),
		OSSBucket:          strings.TrimSpace(getenv("OSS_BUCKET", "")),
		OSSKeyPrefix:       strings.Trim(getenv("OSS_KEY_PREFIX", ""), "/"),

		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:     strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", "")),
			RedisPassword: strings.TrimSpace(getenv("RATE_LIMIT_REDIS_PASSWORD", "")),
			RedisDB:       getenvInt("RATE_LIMIT_REDIS_DB", 0),
			WebhookRate:   getenvFloat("RATE_LIMIT_WEBHOOK_RATE", 10),
			WebhookBurst:  getenvInt("RATE_LIMIT_WEBHOOK_BURST", 30),
			CheckoutRate:  getenvFloat("RATE_LIMIT_CHECKOUT_RATE", 1),
			CheckoutBurst: getenvInt("RATE_LIMIT_CHECKOUT_BURST", 5),
			ToolRate:      getenvFloat("RATE_LIMIT_TOOL_RATE", 0.5),
			ToolBurst:     getenvInt("RATE_LIMIT_TOOL_BURST", 3),
		},
	}
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
