package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Log       LogConfig
	Catalog   CatalogConfig
	Organizer OrganizerConfig
	Cache     CacheConfig
	Artifacts ArtifactsConfig
	Workspace WorkspaceConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds rule store connection settings. Driver is "pgx" or "sqlite".
type DBConfig struct {
	Driver     string `mapstructure:"driver"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	Name       string `mapstructure:"name"`
	SSLMode    string `mapstructure:"sslmode"`
	SQLitePath string `mapstructure:"sqlite_path"`
	MaxOpen    int    `mapstructure:"max_open"`
	MaxIdle    int    `mapstructure:"max_idle"`
}

// DSN returns the connection string for the configured driver. SQLite
// transactions take the write lock at BEGIN so concurrent batches queue on
// busy_timeout instead of failing on lock upgrade.
func (d *DBConfig) DSN() string {
	if d.Driver == "sqlite" {
		return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate", d.SQLitePath)
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// MigrationURL returns the database URL understood by golang-migrate.
func (d *DBConfig) MigrationURL() string {
	if d.Driver == "sqlite" {
		return "sqlite://" + d.SQLitePath
	}
	return d.DSN()
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CatalogConfig points at the field mapping catalog. An empty path selects
// the built-in ACORD 25 catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// OrganizerConfig holds settings for the AI organizer provider.
type OrganizerConfig struct {
	Provider    string  `mapstructure:"provider"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	TimeoutSecs int     `mapstructure:"timeout_secs"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	RatePerSec  float64 `mapstructure:"rate_per_sec"`
}

// Timeout returns the organizer call deadline.
func (o *OrganizerConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSecs) * time.Second
}

// CacheConfig holds Redis settings for the organizer result cache.
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ArtifactsConfig holds settings for persisting extraction output to S3.
type ArtifactsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// WorkspaceConfig holds the base directory for per-request scratch space.
type WorkspaceConfig struct {
	BaseDir string `mapstructure:"base_dir"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the ACORDEX_ prefix.
// A .env file in the working directory, if present, is loaded first and never
// overrides variables already set.
func Load() (*Config, error) {
	loadEnvFile(".env")

	v := viper.New()
	v.SetEnvPrefix("ACORDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.driver", "pgx")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "acordex")
	v.SetDefault("db.password", "acordex_secret")
	v.SetDefault("db.name", "acordex_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.sqlite_path", "acordex.db")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("catalog.path", "")

	// Organizer defaults
	v.SetDefault("organizer.provider", "openai")
	v.SetDefault("organizer.api_key", "")
	v.SetDefault("organizer.model", "")
	v.SetDefault("organizer.timeout_secs", 60)
	v.SetDefault("organizer.max_tokens", 4096)
	v.SetDefault("organizer.rate_per_sec", 0)

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", "24h")

	// Artifact defaults
	v.SetDefault("artifacts.enabled", false)
	v.SetDefault("artifacts.region", "us-east-1")
	v.SetDefault("artifacts.bucket", "acordex-outputs")
	v.SetDefault("artifacts.endpoint", "")
	v.SetDefault("artifacts.prefix", "extractions")

	v.SetDefault("workspace.base_dir", os.TempDir())

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":            "ACORDEX_SERVER_PORT",
		"server.read_timeout":    "ACORDEX_SERVER_READ_TIMEOUT",
		"server.write_timeout":   "ACORDEX_SERVER_WRITE_TIMEOUT",
		"server.environment":     "ACORDEX_SERVER_ENVIRONMENT",
		"db.driver":              "ACORDEX_DB_DRIVER",
		"db.host":                "ACORDEX_DB_HOST",
		"db.port":                "ACORDEX_DB_PORT",
		"db.user":                "ACORDEX_DB_USER",
		"db.password":            "ACORDEX_DB_PASSWORD",
		"db.name":                "ACORDEX_DB_NAME",
		"db.sslmode":             "ACORDEX_DB_SSLMODE",
		"db.sqlite_path":         "ACORDEX_DB_SQLITE_PATH",
		"db.max_open":            "ACORDEX_DB_MAX_OPEN",
		"db.max_idle":            "ACORDEX_DB_MAX_IDLE",
		"log.level":              "ACORDEX_LOG_LEVEL",
		"log.format":             "ACORDEX_LOG_FORMAT",
		"catalog.path":           "ACORDEX_CATALOG_PATH",
		"organizer.provider":     "ACORDEX_ORGANIZER_PROVIDER",
		"organizer.api_key":      "ACORDEX_ORGANIZER_API_KEY",
		"organizer.model":        "ACORDEX_ORGANIZER_MODEL",
		"organizer.timeout_secs": "ACORDEX_ORGANIZER_TIMEOUT_SECS",
		"organizer.max_tokens":   "ACORDEX_ORGANIZER_MAX_TOKENS",
		"organizer.rate_per_sec": "ACORDEX_ORGANIZER_RATE_PER_SEC",
		"cache.enabled":          "ACORDEX_CACHE_ENABLED",
		"cache.address":          "ACORDEX_CACHE_ADDRESS",
		"cache.password":         "ACORDEX_CACHE_PASSWORD",
		"cache.db":               "ACORDEX_CACHE_DB",
		"cache.ttl":              "ACORDEX_CACHE_TTL",
		"artifacts.enabled":      "ACORDEX_ARTIFACTS_ENABLED",
		"artifacts.region":       "ACORDEX_ARTIFACTS_REGION",
		"artifacts.bucket":       "ACORDEX_ARTIFACTS_BUCKET",
		"artifacts.endpoint":     "ACORDEX_ARTIFACTS_ENDPOINT",
		"artifacts.access_key":   "ACORDEX_ARTIFACTS_ACCESS_KEY",
		"artifacts.secret_key":   "ACORDEX_ARTIFACTS_SECRET_KEY",
		"artifacts.prefix":       "ACORDEX_ARTIFACTS_PREFIX",
		"workspace.base_dir":     "ACORDEX_WORKSPACE_BASE_DIR",
		"cors.allowed_origins":   "ACORDEX_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if ACORDEX_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("ACORDEX_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Driver:     v.GetString("db.driver"),
		Host:       v.GetString("db.host"),
		Port:       v.GetInt("db.port"),
		User:       v.GetString("db.user"),
		Password:   v.GetString("db.password"),
		Name:       v.GetString("db.name"),
		SSLMode:    v.GetString("db.sslmode"),
		SQLitePath: v.GetString("db.sqlite_path"),
		MaxOpen:    v.GetInt("db.max_open"),
		MaxIdle:    v.GetInt("db.max_idle"),
	}
	switch cfg.DB.Driver {
	case "pgx", "sqlite":
	default:
		return nil, fmt.Errorf("config: unsupported db driver %q", cfg.DB.Driver)
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Catalog = CatalogConfig{
		Path: v.GetString("catalog.path"),
	}
	cfg.Organizer = OrganizerConfig{
		Provider:    v.GetString("organizer.provider"),
		APIKey:      v.GetString("organizer.api_key"),
		Model:       v.GetString("organizer.model"),
		TimeoutSecs: v.GetInt("organizer.timeout_secs"),
		MaxTokens:   v.GetInt("organizer.max_tokens"),
		RatePerSec:  v.GetFloat64("organizer.rate_per_sec"),
	}
	if cfg.Organizer.TimeoutSecs <= 0 {
		return nil, fmt.Errorf("config: organizer.timeout_secs must be positive, got %d", cfg.Organizer.TimeoutSecs)
	}

	cfg.Cache = CacheConfig{
		Enabled:  v.GetBool("cache.enabled"),
		Address:  v.GetString("cache.address"),
		Password: v.GetString("cache.password"),
		DB:       v.GetInt("cache.db"),
		TTL:      v.GetDuration("cache.ttl"),
	}
	cfg.Artifacts = ArtifactsConfig{
		Enabled:   v.GetBool("artifacts.enabled"),
		Region:    v.GetString("artifacts.region"),
		Bucket:    v.GetString("artifacts.bucket"),
		Endpoint:  v.GetString("artifacts.endpoint"),
		AccessKey: v.GetString("artifacts.access_key"),
		SecretKey: v.GetString("artifacts.secret_key"),
		Prefix:    v.GetString("artifacts.prefix"),
	}
	cfg.Workspace = WorkspaceConfig{
		BaseDir: v.GetString("workspace.base_dir"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}

func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}
