package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMongoDB  = "mongodb"
	StoreMemory   = "memory"
)

// AI providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Image store drivers.
const (
	ImagesFS   = "fs"
	ImagesS3   = "s3"
	ImagesNone = "none"
)

// DefaultImagePublicBaseURL is the path the router serves filesystem images
// under.
const DefaultImagePublicBaseURL = "/images"

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	AI        AIConfig
	Reminders ReminderConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Images    ImageConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig holds logger options.
type LogConfig struct {
	Level string
}

// StoreConfig selects and configures the slot store backend.
type StoreConfig struct {
	Driver      string
	Path        string
	PostgresDSN string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AIConfig holds settings for LLM providers.
type AIConfig struct {
	Provider     string
	AnthropicKey string
	OpenAIKey    string
	Model        string
	BaseURL      string
}

// Enabled reports whether the selected provider has credentials.
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIKey != ""
	default:
		return c.AnthropicKey != ""
	}
}

// ReminderConfig holds scheduler-related settings.
type ReminderConfig struct {
	CronSchedule string
	Timezone     string
	Horizon      time.Duration
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API used to
// deliver reminder digests.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	Recipient     string
}

// Enabled reports whether reminder digests can be delivered over WhatsApp.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != "" && c.Recipient != ""
}

// SheetsConfig contains configuration required to export to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the spreadsheet export is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// ImageConfig selects where uploaded livestock images are kept.
type ImageConfig struct {
	Driver        string
	Path          string
	PublicBaseURL string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3PathStyle   bool
	S3AccessKeyID string
	S3SecretKey   string
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
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	horizonDays, err := strconv.Atoi(getenvWithDefault("REMINDER_HORIZON_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("REMINDER_HORIZON_DAYS must be an integer: %w", err)
	}

	driver := strings.ToLower(getenvWithDefault("STORE_DRIVER", StoreFile))
	storePath := os.Getenv("STORE_PATH")
	if storePath == "" {
		storePath = "data"
		if driver == StoreSQLite {
			storePath = filepath.Join("data", "stockwise.db")
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Driver:      driver,
			Path:        storePath,
			PostgresDSN: os.Getenv("POSTGRES_DSN"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "stockwise"),
		},
		AI: AIConfig{
			Provider:     strings.ToLower(getenvWithDefault("AI_PROVIDER", ProviderAnthropic)),
			AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
			OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
			Model:        os.Getenv("AI_MODEL"),
			BaseURL:      os.Getenv("AI_BASE_URL"),
		},
		Reminders: ReminderConfig{
			CronSchedule: getenvWithDefault("REMINDER_CRON_SCHEDULE", "0 7 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "UTC"),
			Horizon:      time.Duration(horizonDays) * 24 * time.Hour,
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			Recipient:     os.Getenv("REMINDER_RECIPIENT"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Images: ImageConfig{
			Driver:        strings.ToLower(getenvWithDefault("IMAGE_STORE_DRIVER", ImagesFS)),
			Path:          getenvWithDefault("IMAGE_STORE_PATH", filepath.Join("data", "images")),
			PublicBaseURL: getenvWithDefault("IMAGE_PUBLIC_BASE_URL", DefaultImagePublicBaseURL),
			S3Bucket:      os.Getenv("S3_BUCKET"),
			S3Region:      getenvWithDefault("S3_REGION", "us-east-1"),
			S3Endpoint:    os.Getenv("S3_ENDPOINT"),
			S3PathStyle:   strings.EqualFold(os.Getenv("S3_PATH_STYLE"), "true"),
			S3AccessKeyID: os.Getenv("S3_ACCESS_KEY_ID"),
			S3SecretKey:   os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Driver {
	case StoreFile, StoreSQLite:
		if c.Store.Path == "" {
			return errors.New("STORE_PATH must not be empty")
		}
	case StorePostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN must be provided for the postgres store")
		}
	case StoreMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided for the mongodb store")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.AI.Provider {
	case ProviderAnthropic, ProviderOpenAI:
	default:
		return fmt.Errorf("unsupported AI_PROVIDER %q", c.AI.Provider)
	}

	if c.Reminders.CronSchedule == "" {
		return errors.New("REMINDER_CRON_SCHEDULE must be provided")
	}
	if c.Reminders.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}
	if _, err := time.LoadLocation(c.Reminders.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}
	if c.Reminders.Horizon <= 0 {
		return errors.New("REMINDER_HORIZON_DAYS must be positive")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	switch c.Images.Driver {
	case ImagesFS:
		if c.Images.Path == "" {
			return errors.New("IMAGE_STORE_PATH must not be empty")
		}
	case ImagesS3:
		if c.Images.S3Bucket == "" {
			return errors.New("S3_BUCKET must be provided for the s3 image store")
		}
	case ImagesNone:
	default:
		return fmt.Errorf("unsupported IMAGE_STORE_DRIVER %q", c.Images.Driver)
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
