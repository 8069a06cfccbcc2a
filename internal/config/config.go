package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Email     EmailConfig     `mapstructure:"email"`
	Gmail     GmailConfig     `mapstructure:"gmail"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
	Paths     PathsConfig     `mapstructure:"paths"`
}

// SMTPConfig holds the SMTP server configuration. The connection uses
// implicit TLS on the configured port.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Addr returns the SMTP server address
func (c SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// EmailConfig holds the envelope and body settings shared by every message
// in the batch.
type EmailConfig struct {
	// Provider is the delivery provider to use: "smtp" or "gmail"
	Provider string `mapstructure:"provider"`
	// Subject is the subject line applied to every message
	Subject string `mapstructure:"subject"`
	// From is the sender address
	From string `mapstructure:"from"`
	// FromName is the optional display name for the sender
	FromName string `mapstructure:"from_name"`
	// TextBody is an optional plain-text alternative part. When empty the
	// message carries only the HTML part.
	TextBody string `mapstructure:"text_body"`
}

// GmailConfig holds Gmail API configuration, used when email.provider is
// "gmail".
type GmailConfig struct {
	// CredentialsJSON is the service account credentials JSON content
	CredentialsJSON string `mapstructure:"credentials_json"`
	// ClientID for OAuth2 token-based auth (alternative to service account)
	ClientID string `mapstructure:"client_id"`
	// ClientSecret for OAuth2 token-based auth
	ClientSecret string `mapstructure:"client_secret"`
	// RefreshToken for OAuth2 token-based auth
	RefreshToken string `mapstructure:"refresh_token"`
}

// RateLimitConfig holds the sending throttle parameters
type RateLimitConfig struct {
	// EmailsPerBatch is the number of sends before a mandatory batch pause
	EmailsPerBatch int `mapstructure:"emails_per_batch"`
	// BatchDelay is the batch pause duration in seconds
	BatchDelay int `mapstructure:"batch_delay"`
	// DelayBetweenEmails is the minimum spacing between sends in seconds
	DelayBetweenEmails float64 `mapstructure:"delay_between_emails"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File is the durable log sink, written alongside the console stream
	File string `mapstructure:"file"`
}

// PathsConfig holds the fixed file conventions for a run
type PathsConfig struct {
	Template   string `mapstructure:"template"`
	Recipients string `mapstructure:"recipients"`
	ResultsDir string `mapstructure:"results_dir"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Set defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Bind environment variables
	v.SetEnvPrefix("MAILBATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that every field required before any network activity is
// present and well-formed.
func (c *Config) Validate() error {
	switch c.Email.Provider {
	case "smtp":
		if c.SMTP.Host == "" {
			return fmt.Errorf("config: smtp.host is required")
		}
		if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
			return fmt.Errorf("config: smtp.port must be between 1 and 65535, got %d", c.SMTP.Port)
		}
		if c.SMTP.Username == "" {
			return fmt.Errorf("config: smtp.username is required")
		}
		if c.SMTP.Password == "" {
			return fmt.Errorf("config: smtp.password is required")
		}
	case "gmail":
		if c.Gmail.CredentialsJSON == "" && c.Gmail.RefreshToken == "" {
			return fmt.Errorf("config: gmail provider requires credentials_json or a refresh_token")
		}
	default:
		return fmt.Errorf("config: unknown email provider %q", c.Email.Provider)
	}

	if c.Email.Subject == "" {
		return fmt.Errorf("config: email.subject is required")
	}
	if c.Email.From == "" {
		return fmt.Errorf("config: email.from is required")
	}

	if c.RateLimit.EmailsPerBatch <= 0 {
		return fmt.Errorf("config: rate_limit.emails_per_batch must be positive, got %d", c.RateLimit.EmailsPerBatch)
	}
	if c.RateLimit.BatchDelay < 0 {
		return fmt.Errorf("config: rate_limit.batch_delay must not be negative, got %d", c.RateLimit.BatchDelay)
	}
	if c.RateLimit.DelayBetweenEmails < 0 {
		return fmt.Errorf("config: rate_limit.delay_between_emails must not be negative, got %g", c.RateLimit.DelayBetweenEmails)
	}

	if c.Paths.Template == "" {
		return fmt.Errorf("config: paths.template is required")
	}
	if c.Paths.Recipients == "" {
		return fmt.Errorf("config: paths.recipients is required")
	}
	if c.Paths.ResultsDir == "" {
		return fmt.Errorf("config: paths.results_dir is required")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	// SMTP defaults
	v.SetDefault("smtp.port", 465)

	// Email defaults
	v.SetDefault("email.provider", "smtp")
	v.SetDefault("email.from_name", "")
	v.SetDefault("email.text_body", "")

	// Rate limit defaults
	v.SetDefault("rate_limit.emails_per_batch", 20)
	v.SetDefault("rate_limit.batch_delay", 60)
	v.SetDefault("rate_limit.delay_between_emails", 1.0)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "newsletter.log")

	// Path conventions
	v.SetDefault("paths.template", "template.html")
	v.SetDefault("paths.recipients", "recipients.csv")
	v.SetDefault("paths.results_dir", "results")
}
