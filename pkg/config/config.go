package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Log         LogConfig
	Analytics   AnalyticsConfig
	Progression ProgressionConfig
	Export      ExportConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AnalyticsConfig tunes the daily/monthly aggregation endpoints.
type AnalyticsConfig struct {
	Enabled         bool
	CacheTTL        time.Duration
	ActiveStartHour int
	ActiveEndHour   int
	TargetMinutes   int
	TopCategories   int
	WindowDays      int
	Timezone        string
}

// ProgressionConfig governs the attribute progression engine.
type ProgressionConfig struct {
	// DefaultThreshold is the promotion threshold used for attributes that
	// have no configuration row. DefaultPointsPerUnit and
	// DefaultDailySaturation are the matching rate fallbacks.
	DefaultThreshold       float64
	DefaultPointsPerUnit   float64
	DefaultDailySaturation float64
	RebuildWorkers         int
	RebuildMaxRetries      int
	RebuildRetryDelay      time.Duration
}

// ExportConfig toggles report export endpoints.
type ExportConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Analytics = AnalyticsConfig{
		Enabled:         v.GetBool("ENABLE_ANALYTICS"),
		CacheTTL:        parseDuration(v.GetString("ANALYTICS_CACHE_TTL"), 10*time.Minute),
		ActiveStartHour: v.GetInt("ANALYTICS_ACTIVE_START_HOUR"),
		ActiveEndHour:   v.GetInt("ANALYTICS_ACTIVE_END_HOUR"),
		TargetMinutes:   v.GetInt("ANALYTICS_TARGET_MINUTES"),
		TopCategories:   v.GetInt("ANALYTICS_TOP_CATEGORIES"),
		WindowDays:      v.GetInt("ANALYTICS_WINDOW_DAYS"),
		Timezone:        v.GetString("ANALYTICS_TIMEZONE"),
	}

	cfg.Progression = ProgressionConfig{
		DefaultThreshold:       v.GetFloat64("PROGRESSION_DEFAULT_THRESHOLD"),
		DefaultPointsPerUnit:   v.GetFloat64("PROGRESSION_DEFAULT_PPU"),
		DefaultDailySaturation: v.GetFloat64("PROGRESSION_DEFAULT_SATURATION"),
		RebuildWorkers:         v.GetInt("PROGRESSION_REBUILD_WORKERS"),
		RebuildMaxRetries:      v.GetInt("PROGRESSION_REBUILD_RETRIES"),
		RebuildRetryDelay:      parseDuration(v.GetString("PROGRESSION_REBUILD_RETRY_DELAY"), 5*time.Second),
	}

	cfg.Export = ExportConfig{
		Enabled: v.GetBool("ENABLE_EXPORT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "leveling")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_ANALYTICS", true)
	v.SetDefault("ANALYTICS_CACHE_TTL", "10m")
	v.SetDefault("ANALYTICS_ACTIVE_START_HOUR", 6)
	v.SetDefault("ANALYTICS_ACTIVE_END_HOUR", 23)
	v.SetDefault("ANALYTICS_TARGET_MINUTES", 360)
	v.SetDefault("ANALYTICS_TOP_CATEGORIES", 5)
	v.SetDefault("ANALYTICS_WINDOW_DAYS", 28)
	v.SetDefault("ANALYTICS_TIMEZONE", "Local")

	v.SetDefault("PROGRESSION_DEFAULT_THRESHOLD", 100)
	v.SetDefault("PROGRESSION_DEFAULT_PPU", 0.2)
	v.SetDefault("PROGRESSION_DEFAULT_SATURATION", 60)
	v.SetDefault("PROGRESSION_REBUILD_WORKERS", 2)
	v.SetDefault("PROGRESSION_REBUILD_RETRIES", 3)
	v.SetDefault("PROGRESSION_REBUILD_RETRY_DELAY", "5s")

	v.SetDefault("ENABLE_EXPORT", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
