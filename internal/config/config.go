package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type DB struct {
	DbHOST     string
	DbPORT     string
	DbUSER     string
	DbPASSWORD string
	DbNAME     string
	DbSSLMODE  string
}

type MinIO struct {
	Endpoint   string
	PublicURL  string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	Region     string
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Config struct {
	ServerPort            int
	DB                    DB
	MinIO                 MinIO
	SMTP                  SMTP
	JWTSecretKey          string
	JWTRefreshSecretKey   string
	AccessTokenDuration   time.Duration
	RefreshTokenDuration  time.Duration
	PasswordResetDuration time.Duration
	MaxUploadSize         int64
	LimitPosts            int
	MaxLimitPosts         int
	URLServer             string
	LogLevel              string
	CookieSecure          bool
	MigrationsPath        string
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return duration
}

func parseMaxUploadSize(value string) int64 {
	size, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 10 * 1024 * 1024
	}
	return size
}

func LoadDB() DB {
	return DB{
		DbHOST:     getEnv("DB_HOST", "localhost"),
		DbPORT:     getEnv("DB_PORT", "5432"),
		DbUSER:     getEnv("DB_USER", "postgres"),
		DbPASSWORD: getEnv("DB_PASSWORD", "password"),
		DbNAME:     getEnv("DB_NAME", "postforlife"),
		DbSSLMODE:  getEnv("DB_SSLMODE", "disable"),
	}
}

func LoadMinIO() MinIO {
	endpoint := getEnv("MINIO_ENDPOINT", "localhost:9000")
	return MinIO{
		Endpoint:   endpoint,
		PublicURL:  getEnv("MINIO_PUBLIC_URL", "http://"+endpoint),
		AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName: getEnv("MINIO_BUCKET_NAME", "images"),
		UseSSL:     getEnvBool("MINIO_USE_SSL", false),
		Region:     getEnv("MINIO_REGION", "us-east-1"),
	}
}

func LoadSMTP() SMTP {
	return SMTP{
		Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		Port:     getEnvAsInt("SMTP_PORT", 587),
		Username: getEnv("EMAIL_NAME", ""),
		Password: getEnv("EMAIL_APP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", `"postforlife" <no-reply@postforlife.com>`),
	}
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables")
	}

	accessSecret := getEnv("JWT_SECRET_KEY", "")

	return &Config{
		ServerPort:            getEnvAsInt("SERVER_PORT", 8080),
		DB:                    LoadDB(),
		MinIO:                 LoadMinIO(),
		SMTP:                  LoadSMTP(),
		JWTSecretKey:          accessSecret,
		JWTRefreshSecretKey:   getEnv("JWT_REFRESH_SECRET_KEY", accessSecret),
		AccessTokenDuration:   parseDuration(getEnv("ACCESS_TOKEN_DURATION", "2h"), 2*time.Hour),
		RefreshTokenDuration:  parseDuration(getEnv("REFRESH_TOKEN_DURATION", "168h"), 7*24*time.Hour),
		PasswordResetDuration: parseDuration(getEnv("PASSWORD_RESET_DURATION", "15m"), 15*time.Minute),
		MaxUploadSize:         parseMaxUploadSize(getEnv("MAX_UPLOAD_SIZE", "10485760")),
		LimitPosts:            getEnvAsInt("LIMIT_POSTS", 10),
		MaxLimitPosts:         getEnvAsInt("MAX_LIMIT_POSTS", 100),
		URLServer:             getEnv("URL_SERVER", "http://localhost:8080"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		CookieSecure:          getEnvBool("COOKIE_SECURE", false),
		MigrationsPath:        getEnv("MIGRATIONS_PATH", "migrations/001_create_tables.sql"),
	}
}
