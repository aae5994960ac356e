package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		expectError bool
		errorMsg    string
	}{
		{
			name:        "Success with defaults",
			envVars:     map[string]string{},
			expectError: false,
		},
		{
			name: "Success with all config specified",
			envVars: map[string]string{
				"SERVER_HOST":                 "localhost",
				"SERVER_PORT":                 "9090",
				"API_ENDPOINT":                "https://api.example.com",
				"API_USERNAME":                "bot",
				"API_PASSWORD":                "secret",
				"API_TIMEOUT":                 "10",
				"BOT_COMMAND_PREFIX":          "!m ",
				"BOT_DATETIME_FORMAT":         "2006-01-02",
				"BOT_DEFAULT_PRODUCT_SUMMARY": "Voucher",
				"BOT_DELETE_MESSAGE_AFTER":    "15",
				"BOT_ADMIN_ROLES":             "admin, moderator",
				"BOT_WEBHOOK_SECRET":          "hook",
				"LOG_LEVEL":                   "debug",
				"LOG_FORMAT":                  "console",
			},
			expectError: false,
		},
		{
			name: "Error - invalid server port",
			envVars: map[string]string{
				"SERVER_PORT": "99999",
			},
			expectError: true,
			errorMsg:    "invalid server port",
		},
		{
			name: "Error - endpoint without scheme",
			envVars: map[string]string{
				"API_ENDPOINT": "api.example.com",
			},
			expectError: true,
			errorMsg:    "invalid API endpoint",
		},
		{
			name: "Error - negative timeout",
			envVars: map[string]string{
				"API_TIMEOUT": "-1",
			},
			expectError: true,
			errorMsg:    "API timeout cannot be negative",
		},
		{
			name: "Error - invalid log level",
			envVars: map[string]string{
				"LOG_LEVEL": "invalid",
			},
			expectError: true,
			errorMsg:    "invalid log level",
		},
		{
			name: "Error - invalid log format",
			envVars: map[string]string{
				"LOG_FORMAT": "xml",
			},
			expectError: true,
			errorMsg:    "invalid log format",
		},
		{
			name: "Error - S3 without bucket",
			envVars: map[string]string{
				"MESSAGES_S3_ENABLED": "true",
			},
			expectError: true,
			errorMsg:    "S3 bucket is required",
		},
		{
			name: "Error - missing config file",
			envVars: map[string]string{
				"CONFIG_FILE": "/does/not/exist.yaml",
			},
			expectError: true,
			errorMsg:    "failed to read config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := Load(viper.New())

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)
			}

			os.Clearenv()
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, "http://localhost:8000", cfg.API.Endpoint)
	assert.Equal(t, "ds_user", cfg.API.Username)
	assert.Equal(t, "!mice ", cfg.Bot.CommandPrefix)
	assert.Equal(t, "02/01/2006 15:04:05", cfg.Bot.DateTimeFormat)
	assert.Equal(t, "E-Book", cfg.Bot.DefaultProductSummary)
	assert.Equal(t, 30, cfg.Bot.DeleteMessageAfter)
	assert.Equal(t, []string{"admin"}, cfg.Bot.AdminRoles)
	assert.Equal(t, time.Duration(0), cfg.API.RequestTimeout())
}

func TestLoad_ConfigFile(t *testing.T) {
	os.Clearenv()

	path := filepath.Join(t.TempDir(), "micebot.yaml")
	content := "api_endpoint: https://file.example.com\nbot_admin_roles: admin,mods\nserver_port: 9000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "9100")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "https://file.example.com", cfg.API.Endpoint)
	assert.Equal(t, []string{"admin", "mods"}, cfg.Bot.AdminRoles)
	assert.Equal(t, 9100, cfg.Server.Port, "environment wins over the file")

	os.Clearenv()
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "localhost", Port: 8080},
		API: APIConfig{
			Endpoint: "http://api.test",
			Username: "bot",
			Password: "secret",
		},
		Bot: BotConfig{
			CommandPrefix:      "!mice ",
			DateTimeFormat:     "02/01/2006 15:04:05",
			DeleteMessageAfter: 30,
			AdminRoles:         []string{"admin"},
		},
		Logger: LoggerConfig{Level: "info", Format: "json"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:   "Valid configuration",
			mutate: func(c *Config) {},
		},
		{
			name:        "Invalid - server port zero",
			mutate:      func(c *Config) { c.Server.Port = 0 },
			expectError: true,
			errorMsg:    "invalid server port",
		},
		{
			name:        "Invalid - empty endpoint",
			mutate:      func(c *Config) { c.API.Endpoint = "" },
			expectError: true,
			errorMsg:    "API endpoint is required",
		},
		{
			name:        "Invalid - empty username",
			mutate:      func(c *Config) { c.API.Username = "" },
			expectError: true,
			errorMsg:    "API username is required",
		},
		{
			name:        "Invalid - empty password",
			mutate:      func(c *Config) { c.API.Password = "" },
			expectError: true,
			errorMsg:    "API password is required",
		},
		{
			name:        "Invalid - blank prefix",
			mutate:      func(c *Config) { c.Bot.CommandPrefix = "  " },
			expectError: true,
			errorMsg:    "command prefix is required",
		},
		{
			name:        "Invalid - negative delete delay",
			mutate:      func(c *Config) { c.Bot.DeleteMessageAfter = -1 },
			expectError: true,
			errorMsg:    "delete message delay cannot be negative",
		},
		{
			name:        "Invalid - no admin roles",
			mutate:      func(c *Config) { c.Bot.AdminRoles = nil },
			expectError: true,
			errorMsg:    "at least one admin role is required",
		},
		{
			name: "Invalid - tracing without endpoint",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.Endpoint = ""
			},
			expectError: true,
			errorMsg:    "tracing endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"admin", "mods"}, splitList(" admin , ,mods "))
	assert.Nil(t, splitList(""))
}

func TestNewLogger(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "micebot", entry["service"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("unknown"))
}
