package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	ServiceName string
	Env         string

	ServerPort int
	LogLevel   string

	DBDriver    string
	DatabaseURL string

	JWTSecret []byte

	CORSOrigins []string
	CSRFEnabled bool
	BodyLimit   string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	CloudinaryURL string
	UploadDir     string
	PublicBaseURL string

	StripeSecretKey string
	StripeCurrency  string
	WhatsAppNumber  string

	SeedAdminUsername string
	SeedAdminEmail    string
	SeedAdminPassword string
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "esscera"),
		Env:         EnvDefault("APP_ENV", "development"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:   EnvDefault("LOG_LEVEL", "info"),

		DBDriver:    EnvDefault("DB_DRIVER", "postgres"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),

		CORSOrigins: CSV(os.Getenv("CORS_ORIGINS")),
		CSRFEnabled: EnvBoolDefault("CSRF_ENABLED", false),
		BodyLimit:   EnvDefault("BODY_LIMIT", "10M"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
		UploadDir:     EnvDefault("UPLOAD_DIR", "uploads"),
		PublicBaseURL: EnvDefault("PUBLIC_BASE_URL", "http://localhost:8080"),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		StripeCurrency:  EnvDefault("STRIPE_CURRENCY", "usd"),
		WhatsAppNumber:  os.Getenv("WHATSAPP_NUMBER"),

		SeedAdminUsername: EnvDefault("SEED_ADMIN_USERNAME", "admin"),
		SeedAdminEmail:    EnvDefault("SEED_ADMIN_EMAIL", "admin@esscera.com"),
		SeedAdminPassword: EnvDefault("SEED_ADMIN_PASSWORD", "admin123"),
	}
}

func (c Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
