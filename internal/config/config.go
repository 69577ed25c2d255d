package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Mail     MailConfig
	CORS     CORSConfig
	Log      LogConfig
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name    string
	Version string
	Debug   bool
	Port    string
	Host    string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL      string
	Name     string // mongo database name
	TLS      bool
	MaxConns int
}

// MailConfig holds outbound mail configuration
type MailConfig struct {
	Provider  string // "smtp", "ses", "console"
	SMTPHost  string
	SMTPPort  int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Operator  string // receives the "new submission" notifications
	Brand     string
	Website   string
	AWSRegion string
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

const (
	ProviderSMTP    = "smtp"
	ProviderSES     = "ses"
	ProviderConsole = "console"
)

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "Vastu Craft API")
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("DEBUG", false)
	v.SetDefault("PORT", "8000")
	v.SetDefault("HOST", "0.0.0.0")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("MONGODB_URI", "")
	v.SetDefault("MONGODB_DATABASE", "vastucraft")
	v.SetDefault("DATABASE_TLS", true)
	v.SetDefault("DATABASE_MAX_CONNS", 25)

	v.SetDefault("MAIL_PROVIDER", ProviderSMTP)
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_FROM_NAME", "Vastu Craft")
	v.SetDefault("MAIL_BRAND", "Vastu Craft")
	v.SetDefault("MAIL_WEBSITE", "https://www.vastucraft.com")
	v.SetDefault("AWS_REGION", "ap-south-1")

	v.SetDefault("ALLOWED_HOSTS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	return v
}

// FromViper builds and validates a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	// The original deployment only knew GMAIL_USER/GMAIL_PASS; keep them working.
	username := firstNonEmpty(v.GetString("SMTP_USERNAME"), v.GetString("GMAIL_USER"))
	password := firstNonEmpty(v.GetString("SMTP_PASSWORD"), v.GetString("GMAIL_PASS"))

	config := &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Version: v.GetString("APP_VERSION"),
			Debug:   v.GetBool("DEBUG"),
			Port:    v.GetString("PORT"),
			Host:    v.GetString("HOST"),
		},
		Database: DatabaseConfig{
			URL:      firstNonEmpty(v.GetString("DATABASE_URL"), v.GetString("MONGODB_URI")),
			Name:     v.GetString("MONGODB_DATABASE"),
			TLS:      v.GetBool("DATABASE_TLS"),
			MaxConns: v.GetInt("DATABASE_MAX_CONNS"),
		},
		Mail: MailConfig{
			Provider:  strings.ToLower(v.GetString("MAIL_PROVIDER")),
			SMTPHost:  v.GetString("SMTP_HOST"),
			SMTPPort:  v.GetInt("SMTP_PORT"),
			Username:  username,
			Password:  password,
			FromEmail: firstNonEmpty(v.GetString("MAIL_FROM"), username),
			FromName:  v.GetString("MAIL_FROM_NAME"),
			Operator:  firstNonEmpty(v.GetString("MAIL_OPERATOR"), username),
			Brand:     v.GetString("MAIL_BRAND"),
			Website:   v.GetString("MAIL_WEBSITE"),
			AWSRegion: v.GetString("AWS_REGION"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("ALLOWED_HOSTS")),
			AllowedMethods: []string{"POST", "GET", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
			MaxAge:         86400,
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.App.Port == "" {
		return fmt.Errorf("PORT must be set")
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL or MONGODB_URI must be set")
	}
	switch cfg.Mail.Provider {
	case ProviderSMTP:
		if cfg.Mail.SMTPHost == "" || cfg.Mail.Username == "" || cfg.Mail.Password == "" {
			return fmt.Errorf("smtp provider requires SMTP_HOST, SMTP_USERNAME and SMTP_PASSWORD")
		}
		if cfg.Mail.SMTPPort <= 0 || cfg.Mail.SMTPPort > 65535 {
			return fmt.Errorf("SMTP_PORT must be between 1 and 65535")
		}
	case ProviderSES:
		if cfg.Mail.AWSRegion == "" {
			return fmt.Errorf("ses provider requires AWS_REGION")
		}
	case ProviderConsole:
	default:
		return fmt.Errorf("unknown MAIL_PROVIDER %q", cfg.Mail.Provider)
	}
	if cfg.Mail.Provider != ProviderConsole && (cfg.Mail.FromEmail == "" || cfg.Mail.Operator == "") {
		return fmt.Errorf("MAIL_FROM and MAIL_OPERATOR must be set")
	}
	return nil
}

// Driver names the storage backend selected by the database URL.
func (c *DatabaseConfig) Driver() string {
	switch {
	case c.IsMongo():
		return "mongo"
	case c.IsPostgres():
		return "postgres"
	default:
		return "sqlite"
	}
}

// IsMongo checks if the database URL is for MongoDB
func (c *DatabaseConfig) IsMongo() bool {
	return strings.HasPrefix(c.URL, "mongodb://") || strings.HasPrefix(c.URL, "mongodb+srv://")
}

// IsPostgres checks if the database URL is for PostgreSQL
func (c *DatabaseConfig) IsPostgres() bool {
	return strings.HasPrefix(c.URL, "postgres://") || strings.HasPrefix(c.URL, "postgresql://")
}

// GetSQLitePath extracts SQLite database path from URL
func (c *DatabaseConfig) GetSQLitePath() string {
	return strings.TrimPrefix(c.URL, "sqlite:///")
}

// Helper functions
func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
