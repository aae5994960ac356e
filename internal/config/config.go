package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	API      APIConfig
	Bot      BotConfig
	Messages MessagesConfig
	Logger   LoggerConfig
	Tracing  TracingConfig
}

// ServerConfig holds the webhook listener configuration.
type ServerConfig struct {
	Host string
	Port int
}

// APIConfig holds the remote API endpoint and the bot credentials.
type APIConfig struct {
	Endpoint string
	Username string
	Password string
	Timeout  int // seconds, 0 keeps the transport default
}

// BotConfig holds the chat command settings.
type BotConfig struct {
	CommandPrefix         string
	DateTimeFormat        string // Go time layout
	DefaultProductSummary string
	DeleteMessageAfter    int // seconds
	ThumbnailURL          string
	AdminRoles            []string
	WebhookSecret         string
}

// MessagesConfig holds where the reply catalog is loaded from.
type MessagesConfig struct {
	File      string
	S3Enabled bool
	S3Bucket  string
	S3Region  string
	S3Key     string
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// TracingConfig holds the trace exporter configuration.
type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

var defaults = map[string]any{
	"SERVER_HOST":                 "0.0.0.0",
	"SERVER_PORT":                 8080,
	"API_ENDPOINT":                "http://localhost:8000",
	"API_USERNAME":                "ds_user",
	"API_PASSWORD":                "ds_pass",
	"API_TIMEOUT":                 0,
	"BOT_COMMAND_PREFIX":          "!mice ",
	"BOT_DATETIME_FORMAT":         "02/01/2006 15:04:05",
	"BOT_DEFAULT_PRODUCT_SUMMARY": "E-Book",
	"BOT_DELETE_MESSAGE_AFTER":    30,
	"BOT_THUMBNAIL_URL":           "https://raw.githubusercontent.com/micebot/assets/master/images/logo-64x64.png",
	"BOT_ADMIN_ROLES":             "admin",
	"BOT_WEBHOOK_SECRET":          "",
	"MESSAGES_FILE":               "",
	"MESSAGES_S3_ENABLED":         false,
	"MESSAGES_S3_BUCKET":          "",
	"MESSAGES_S3_REGION":          "us-east-1",
	"MESSAGES_S3_KEY":             "micebot/messages.yaml",
	"LOG_LEVEL":                   "info",
	"LOG_FORMAT":                  "json",
	"TRACING_ENABLED":             false,
	"TRACING_ENDPOINT":            "http://localhost:14268/api/traces",
	"TRACING_SERVICE_NAME":        "micebot",
}

// Load loads configuration from environment variables and, when CONFIG_FILE
// is set, from that file. Environment variables take precedence over the file.
func Load(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		API: APIConfig{
			Endpoint: v.GetString("API_ENDPOINT"),
			Username: v.GetString("API_USERNAME"),
			Password: v.GetString("API_PASSWORD"),
			Timeout:  v.GetInt("API_TIMEOUT"),
		},
		Bot: BotConfig{
			CommandPrefix:         v.GetString("BOT_COMMAND_PREFIX"),
			DateTimeFormat:        v.GetString("BOT_DATETIME_FORMAT"),
			DefaultProductSummary: v.GetString("BOT_DEFAULT_PRODUCT_SUMMARY"),
			DeleteMessageAfter:    v.GetInt("BOT_DELETE_MESSAGE_AFTER"),
			ThumbnailURL:          v.GetString("BOT_THUMBNAIL_URL"),
			AdminRoles:            splitList(v.GetString("BOT_ADMIN_ROLES")),
			WebhookSecret:         v.GetString("BOT_WEBHOOK_SECRET"),
		},
		Messages: MessagesConfig{
			File:      v.GetString("MESSAGES_FILE"),
			S3Enabled: v.GetBool("MESSAGES_S3_ENABLED"),
			S3Bucket:  v.GetString("MESSAGES_S3_BUCKET"),
			S3Region:  v.GetString("MESSAGES_S3_REGION"),
			S3Key:     v.GetString("MESSAGES_S3_KEY"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Tracing: TracingConfig{
			Enabled:     v.GetBool("TRACING_ENABLED"),
			Endpoint:    v.GetString("TRACING_ENDPOINT"),
			ServiceName: v.GetString("TRACING_SERVICE_NAME"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.API.Endpoint == "" {
		return fmt.Errorf("API endpoint is required")
	}

	parsed, err := url.Parse(c.API.Endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid API endpoint: %s", c.API.Endpoint)
	}

	if c.API.Username == "" {
		return fmt.Errorf("API username is required")
	}

	if c.API.Password == "" {
		return fmt.Errorf("API password is required")
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("API timeout cannot be negative")
	}

	if strings.TrimSpace(c.Bot.CommandPrefix) == "" {
		return fmt.Errorf("command prefix is required")
	}

	if c.Bot.DateTimeFormat == "" {
		return fmt.Errorf("datetime format is required")
	}

	if c.Bot.DeleteMessageAfter < 0 {
		return fmt.Errorf("delete message delay cannot be negative")
	}

	if len(c.Bot.AdminRoles) == 0 {
		return fmt.Errorf("at least one admin role is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Messages.S3Enabled {
		if c.Messages.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.Messages.S3Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing endpoint is required when tracing is enabled")
	}

	return nil
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RequestTimeout returns the per-request timeout, zero meaning none.
func (c *APIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// splitList splits a comma separated list, dropping blanks.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
