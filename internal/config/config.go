package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	S3        S3Config
	Log       LogConfig
	OCR       OCRConfig
	AutoParse AutoParseConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings for the attachment store.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OCRConfig holds OCR provider settings.
type OCRConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// AutoParseConfig controls the hands-off parse trigger for bills created
// from inbound email.
type AutoParseConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads configuration from environment variables with the BILLSCAN_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BILLSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "billscan")
	v.SetDefault("db.password", "billscan_secret")
	v.SetDefault("db.name", "billscan_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "eu-west-1")
	v.SetDefault("s3.bucket", "billscan-attachments")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// OCR provider defaults
	v.SetDefault("ocr.base_url", "")
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.timeout_secs", 120)

	// Auto-parse defaults
	v.SetDefault("auto_parse.enabled", false)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":          "BILLSCAN_SERVER_PORT",
		"server.read_timeout":  "BILLSCAN_SERVER_READ_TIMEOUT",
		"server.write_timeout": "BILLSCAN_SERVER_WRITE_TIMEOUT",
		"server.environment":   "BILLSCAN_SERVER_ENVIRONMENT",
		"db.host":              "BILLSCAN_DB_HOST",
		"db.port":              "BILLSCAN_DB_PORT",
		"db.user":              "BILLSCAN_DB_USER",
		"db.password":          "BILLSCAN_DB_PASSWORD",
		"db.name":              "BILLSCAN_DB_NAME",
		"db.sslmode":           "BILLSCAN_DB_SSLMODE",
		"db.max_open":          "BILLSCAN_DB_MAX_OPEN",
		"db.max_idle":          "BILLSCAN_DB_MAX_IDLE",
		"s3.region":            "BILLSCAN_S3_REGION",
		"s3.bucket":            "BILLSCAN_S3_BUCKET",
		"s3.endpoint":          "BILLSCAN_S3_ENDPOINT",
		"s3.access_key":        "BILLSCAN_S3_ACCESS_KEY",
		"s3.secret_key":        "BILLSCAN_S3_SECRET_KEY",
		"s3.max_file_size_mb":  "BILLSCAN_S3_MAX_FILE_SIZE_MB",
		"log.level":            "BILLSCAN_LOG_LEVEL",
		"log.format":           "BILLSCAN_LOG_FORMAT",
		"ocr.base_url":         "BILLSCAN_OCR_BASE_URL",
		"ocr.api_key":          "BILLSCAN_OCR_API_KEY",
		"ocr.timeout_secs":     "BILLSCAN_OCR_TIMEOUT_SECS",
		"auto_parse.enabled":   "BILLSCAN_AUTO_PARSE_ENABLED",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BILLSCAN_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BILLSCAN_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.OCR = OCRConfig{
		BaseURL:     v.GetString("ocr.base_url"),
		APIKey:      v.GetString("ocr.api_key"),
		TimeoutSecs: v.GetInt("ocr.timeout_secs"),
	}
	cfg.AutoParse = AutoParseConfig{
		Enabled: v.GetBool("auto_parse.enabled"),
	}

	return cfg, nil
}
