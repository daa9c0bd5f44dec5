package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr    string
	AllowOrigin string

	JWTSecret   string
	TokenTTL    time.Duration
	AdminSecret string
	BcryptCost  int

	DBDriver string
	DBHost   string
	DBPort   string
	DBUser   string
	DBPass   string
	DBName   string
	DBPath   string

	StorageBackend string
	StorageRoot    string
	MinioHost      string
	MinioPort      string
	MinioUsername  string
	MinioPassword  string
	MinioUseSSL    bool
	BucketName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	LoginMaxFailures   int
	LoginLockoutWindow time.Duration
	MaxUploadBytes     int64

	LogLevel      string
	LogProduction bool
}

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"

	BackendLocal = "local"
	BackendMinio = "minio"
)

// getEnv returns the environment value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if value == "" {
		return defaultValue
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// Load reads configuration from the environment.
func Load() Config {
	return Config{
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		AllowOrigin: getEnv("ALLOW_ORIGIN", "*"),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenTTL:    getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
		AdminSecret: getEnv("ADMIN_SECRET", ""),
		BcryptCost:  getEnvInt("BCRYPT_COST", 12),

		DBDriver: strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		DBHost:   getEnv("DB_HOST", "127.0.0.1"),
		DBPort:   getEnv("DB_PORT", "3306"),
		DBUser:   getEnv("DB_USER", "minidrive_user"),
		DBPass:   getEnv("DB_PASS", ""),
		DBName:   getEnv("DB_NAME", "minidrive_db"),
		DBPath:   getEnv("DB_PATH", "minidrive.db"),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendLocal)),
		StorageRoot:    getEnv("STORAGE_ROOT", "/var/lib/minidrive/storage"),
		MinioHost:      getEnv("MINIO_HOST", "localhost"),
		MinioPort:      getEnv("MINIO_PORT", "9000"),
		MinioUsername:  getEnv("MINIO_USERNAME", "minioadmin"),
		MinioPassword:  getEnv("MINIO_PASSWORD", "minioadmin"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		BucketName:     getEnv("BUCKET_NAME", "minidrive"),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		LoginMaxFailures:   getEnvInt("LOGIN_MAX_FAILURES", 5),
		LoginLockoutWindow: getEnvDuration("LOGIN_LOCKOUT_WINDOW", 15*time.Minute),
		MaxUploadBytes:     getEnvInt64("MAX_UPLOAD_BYTES", 1<<30),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogProduction: getEnvBool("LOG_PRODUCTION", true),
	}
}

// Validate reports the first setting that would leave the service unusable.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.AdminSecret == "" {
		return errors.New("ADMIN_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	switch c.DBDriver {
	case DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	switch c.StorageBackend {
	case BackendLocal:
		if c.StorageRoot == "" {
			return errors.New("STORAGE_ROOT is required for the local backend")
		}
	case BackendMinio:
		if c.BucketName == "" {
			return errors.New("BUCKET_NAME is required for the minio backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	return nil
}

// RedisEnabled reports whether a redis host was configured.
func (c Config) RedisEnabled() bool {
	return strings.TrimSpace(c.RedisHost) != ""
}
