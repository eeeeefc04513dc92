package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverSQLite  = "sqlite"
	DriverMongoDB = "mongodb"
	DriverMemory  = "memory"
)

// Settings drivers.
const (
	SettingsFile  = "file"
	SettingsRedis = "redis"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Storage   StorageConfig
	MongoDB   MongoDBConfig
	Settings  SettingsConfig
	AI        AIConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Backup    BackupConfig
	Reporting ReportingConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig holds the logger level.
type LogConfig struct {
	Level string
}

// StorageConfig selects the durable record store.
type StorageConfig struct {
	Driver     string
	SQLitePath string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SettingsConfig selects where the session scalars live.
type SettingsConfig struct {
	Driver    string
	Path      string
	RedisAddr string
	RedisDB   int
}

// AIConfig holds settings for the vision model provider. An empty key leaves the
// analysis feature offline.
type AIConfig struct {
	AnthropicKey string
	Model        string
	BaseURL      string
}

// Enabled reports whether image analysis can be called.
func (c AIConfig) Enabled() bool {
	return c.AnthropicKey != ""
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken     string
	PhoneNumberID   string
	BaseURL         string
	APIVersion      string
	ReportRecipient string
}

// Enabled reports whether messages can be sent.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether report rows can be published.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// BackupConfig lists the archive targets of the nightly backup.
type BackupConfig struct {
	Dir               string
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3PathStyle       bool
	S3AccessKeyID     string
	S3SecretAccessKey string
	CronSchedule      string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when everything comes from the environment.
		_ = godotenv.Load()
	}

	redisDB, err := getenvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	pathStyle, err := getenvBool("BACKUP_S3_PATH_STYLE", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(getenvWithDefault("STORAGE_DRIVER", DriverSQLite)),
			SQLitePath: getenvWithDefault("SQLITE_PATH", "ovin_manager.db"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "ovin_manager"),
		},
		Settings: SettingsConfig{
			Driver:    strings.ToLower(getenvWithDefault("SETTINGS_DRIVER", SettingsFile)),
			Path:      getenvWithDefault("SETTINGS_PATH", "ovin_settings.env"),
			RedisAddr: os.Getenv("REDIS_ADDR"),
			RedisDB:   redisDB,
		},
		AI: AIConfig{
			AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:        getenvWithDefault("ANTHROPIC_MODEL", "claude-sonnet-4-5"),
			BaseURL:      getenvWithDefault("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:     os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:   os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:         getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:      getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ReportRecipient: os.Getenv("WHATSAPP_REPORT_RECIPIENT"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Backup: BackupConfig{
			Dir:               os.Getenv("BACKUP_DIR"),
			S3Bucket:          os.Getenv("BACKUP_S3_BUCKET"),
			S3Region:          getenvWithDefault("BACKUP_S3_REGION", "eu-west-3"),
			S3Endpoint:        os.Getenv("BACKUP_S3_ENDPOINT"),
			S3PathStyle:       pathStyle,
			CronSchedule:      getenvWithDefault("BACKUP_CRON_SCHEDULE", "0 2 * * *"),
			S3AccessKeyID:     os.Getenv("BACKUP_S3_ACCESS_KEY_ID"),
			S3SecretAccessKey: os.Getenv("BACKUP_S3_SECRET_ACCESS_KEY"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * 0"),
			Timezone:     getenvWithDefault("TIMEZONE", "Africa/Algiers"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated and that
// the selected drivers have what they need.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("SQLITE_PATH must be provided for the sqlite driver")
		}
	case DriverMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided for the mongodb driver")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	switch c.Settings.Driver {
	case SettingsFile:
		if c.Settings.Path == "" {
			return errors.New("SETTINGS_PATH must be provided for the file settings driver")
		}
	case SettingsRedis:
		if c.Settings.RedisAddr == "" {
			return errors.New("REDIS_ADDR must be provided for the redis settings driver")
		}
	default:
		return fmt.Errorf("unknown SETTINGS_DRIVER %q", c.Settings.Driver)
	}

	if c.WhatsApp.BaseURL == "" {
		return errors.New("WHATSAPP_BASE_URL must not be empty")
	}

	if c.WhatsApp.APIVersion == "" {
		return errors.New("WHATSAPP_API_VERSION must not be empty")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be set together")
	}

	if c.Backup.CronSchedule == "" {
		return errors.New("BACKUP_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return v, nil
}
