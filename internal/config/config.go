package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppName は設定ディレクトリやキーリングのサービス名に使う名前です。
const AppName = "wallpaper-kit"

type Config struct {
	// Gallery
	GalleryBackend string // "file" | "memory" | "redis" | "sqlite" | "postgres"
	GalleryDataDir string
	GalleryKey     string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// SQL
	SQLitePath  string
	DatabaseDSN string

	// Generator
	GeneratorProvider string // "a4f" | "gemini" | "imagen"
	A4FAPIKey         string
	A4FEndpoint       string
	A4FModel          string
	ImageSize         string
	GeminiAPIKey      string
	GeminiImageModel  string
	ImagenModel       string
	AspectRatio       string
	HTTPTimeout       time.Duration

	// Export
	MediaLibrary        string // "dir" | "s3"
	MediaLibraryDir     string
	MediaAlbum          string
	MediaPermission     string // "prompt" | "granted" | "denied"
	DownloadDir         string
	AssetDir            string
	AllowPrivateNetwork bool

	// S3
	S3Endpoint        string
	S3Region          string
	S3Bucket          string
	S3Prefix          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3UsePathStyle    bool
	S3PresignTTL      time.Duration

	// Server
	ServerAddr string
	GinMode    string

	// Logging
	LogLevel  string
	LogFormat string // "text" | "json"
}

// Load は .env（存在すれば）と環境変数から設定を読み込み、検証します。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf(".env の読み込みに失敗しました: %w", err)
	}
	cfg := New()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// New は環境変数から設定を組み立てます。検証は行いません。
func New() *Config {
	dataDir := getEnv("GALLERY_DATA_DIR", defaultDataDir())

	return &Config{
		// Gallery
		GalleryBackend: strings.ToLower(getEnv("GALLERY_BACKEND", "file")),
		GalleryDataDir: dataDir,
		GalleryKey:     getEnv("GALLERY_KEY", "@wallpaper_gallery"),

		// Redis
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		RedisPrefix:   getEnv("REDIS_PREFIX", "wallpaper:"),

		// SQL
		SQLitePath:  getEnv("SQLITE_PATH", filepath.Join(dataDir, "gallery.db")),
		DatabaseDSN: getEnv("DATABASE_DSN", ""),

		// Generator
		GeneratorProvider: strings.ToLower(getEnv("GENERATOR_PROVIDER", "a4f")),
		A4FAPIKey:         getEnv("A4F_API_KEY", ""),
		A4FEndpoint:       getEnv("A4F_ENDPOINT", ""),
		A4FModel:          getEnv("A4F_MODEL", ""),
		ImageSize:         getEnv("IMAGE_SIZE", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiImageModel:  getEnv("GEMINI_IMAGE_MODEL", ""),
		ImagenModel:       getEnv("IMAGEN_MODEL", ""),
		AspectRatio:       getEnv("ASPECT_RATIO", ""),
		HTTPTimeout:       getEnvAsDuration("HTTP_TIMEOUT", "60s"),

		// Export
		MediaLibrary:        strings.ToLower(getEnv("MEDIA_LIBRARY", "dir")),
		MediaLibraryDir:     getEnv("MEDIA_LIBRARY_DIR", defaultPicturesDir()),
		MediaAlbum:          getEnv("MEDIA_ALBUM", "Wallpapers"),
		MediaPermission:     strings.ToLower(getEnv("MEDIA_PERMISSION", "prompt")),
		DownloadDir:         getEnv("DOWNLOAD_DIR", filepath.Join(dataDir, "downloads")),
		AssetDir:            getEnv("ASSET_DIR", filepath.Join(dataDir, "assets")),
		AllowPrivateNetwork: getEnvAsBool("ALLOW_PRIVATE_NETWORK", false),

		// S3
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Prefix:          getEnv("S3_PREFIX", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3UsePathStyle:    getEnvAsBool("S3_USE_PATH_STYLE", true),
		S3PresignTTL:      getEnvAsDuration("S3_PRESIGN_TTL", "0s"),

		// Server
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		GinMode:    getEnv("GIN_MODE", "release"),

		// Logging
		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}
}

// Validate は選択されたバックエンドに必要な値が揃っているか確認します。
// API キーはキーリングから補完されるため、ここでは検証しません。
func (c *Config) Validate() error {
	switch c.GalleryBackend {
	case "file", "memory", "sqlite":
	case "redis":
		if c.RedisAddr == "" {
			return errors.New("GALLERY_BACKEND=redis には REDIS_ADDR が必要です")
		}
	case "postgres":
		if c.DatabaseDSN == "" {
			return errors.New("GALLERY_BACKEND=postgres には DATABASE_DSN が必要です")
		}
	default:
		return fmt.Errorf("不明な GALLERY_BACKEND: %q", c.GalleryBackend)
	}

	switch c.GeneratorProvider {
	case "a4f", "gemini", "imagen":
	default:
		return fmt.Errorf("不明な GENERATOR_PROVIDER: %q", c.GeneratorProvider)
	}

	switch c.MediaLibrary {
	case "dir":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("MEDIA_LIBRARY=s3 には S3_BUCKET が必要です")
		}
	default:
		return fmt.Errorf("不明な MEDIA_LIBRARY: %q", c.MediaLibrary)
	}

	switch c.MediaPermission {
	case "prompt", "granted", "denied":
	default:
		return fmt.Errorf("不明な MEDIA_PERMISSION: %q", c.MediaPermission)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("不明な LOG_FORMAT: %q", c.LogFormat)
	}

	if c.HTTPTimeout <= 0 {
		return errors.New("HTTP_TIMEOUT は正の値である必要があります")
	}
	return nil
}

// SlogLevel は LOG_LEVEL を slog.Level に変換します。
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ProviderKeyName は生成プロバイダが使う API キーのキーリング上の名前です。
// imagen は Gemini と同じキーを使います。
func (c *Config) ProviderKeyName() string {
	if c.GeneratorProvider == "a4f" {
		return "a4f"
	}
	return "gemini"
}

// EnvAPIKey は環境変数で指定されたプロバイダの API キーを返します。
func (c *Config) EnvAPIKey() string {
	if c.ProviderKeyName() == "a4f" {
		return c.A4FAPIKey
	}
	return c.GeminiAPIKey
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppName)
	}
	return "." + AppName
}

func defaultPicturesDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "Pictures")
	}
	return "Pictures"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}
	return time.Minute
}
