package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration. Values come from the
// environment (optionally via a .env file) with workable local defaults.
type Config struct {
	ServerPort string
	WebAppDir  string // Path to the studio UI files served at /

	FFmpegPath string // ffprobe is resolved from this path

	// Media object store
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string // Base URL shells use to fetch objects; empty derives from the endpoint

	// Redis配置
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Watch folder ingest; empty disables the watcher
	WatchDir      string
	WatchSettleMs int // Quiet time before a dropped file is picked up

	MaxUploadSizeMB  int
	UploadTimeoutSec int

	SessionIdleMin  int     // Sessions with no clients and no edits get reaped after this
	ExportFrameRate float64 // Timecode base for cutlist export

	LogLevel string
	LogFile  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvFloat gets an environment variable as float64 or returns a default value.
func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		WebAppDir:  getEnv("WEB_APP_DIR", filepath.Join("web", "ui")),

		FFmpegPath: getEnv("FFMPEG_PATH", "ffmpeg"),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"), // No hardcoded default for the secret
		MinioBucket:    getEnv("MINIO_BUCKET", "clipforge"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		MinioPublicURL: getEnv("MINIO_PUBLIC_URL", ""),

		// Redis配置，使用默认值
		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""), // 默认无密码
		RedisDB:       getEnvInt("REDIS_DB", 0),

		WatchDir:      getEnv("WATCH_DIR", ""),
		WatchSettleMs: getEnvInt("WATCH_SETTLE_MS", 500),

		MaxUploadSizeMB:  getEnvInt("MAX_UPLOAD_SIZE_MB", 500),
		UploadTimeoutSec: getEnvInt("UPLOAD_TIMEOUT_SEC", 60),

		SessionIdleMin:  getEnvInt("SESSION_IDLE_MIN", 120),
		ExportFrameRate: getEnvFloat("EXPORT_FRAME_RATE", 30),

		LogLevel: getEnv("LOG_LEVEL", "debug"),
		LogFile:  getEnv("LOG_FILE", filepath.Join("logs", "clipforge.log")),
	}
}
