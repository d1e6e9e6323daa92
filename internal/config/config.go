package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/axellelanca/clickfix/internal/logger"
)

// Config represents the main structure mapping the entire application configuration.
// This struct uses mapstructure tags to map YAML/JSON keys to Go struct fields.
type Config struct {
	// Server configuration section containing HTTP server settings
	Server struct {
		Port           int      `mapstructure:"port"`            // HTTP server port (default: 8080)
		BaseURL        string   `mapstructure:"base_url"`        // Public URL used when building links
		Env            string   `mapstructure:"env"`             // development | production
		BehindProxy    bool     `mapstructure:"behind_proxy"`    // Trust X-Forwarded-For from TrustedProxies
		TrustedProxies []string `mapstructure:"trusted_proxies"` // Proxy addresses/CIDRs honoured when BehindProxy
	} `mapstructure:"server"`

	// Admin credentials protecting the /admin API
	Admin struct {
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
	} `mapstructure:"admin"`

	Database Database `mapstructure:"database"`

	Endpoints Endpoints `mapstructure:"endpoints"`

	Notify Notify `mapstructure:"notify"`

	// Content configuration for lure/trap existence checks
	Content struct {
		Root string `mapstructure:"root"` // Directory holding lures/ and traps/
	} `mapstructure:"content"`

	Training struct {
		URL string `mapstructure:"url"` // Where targets land after execution
	} `mapstructure:"training"`
}

// Database selects the gorm driver and its connection settings.
type Database struct {
	Driver string `mapstructure:"driver"` // sqlite | postgres
	Name   string `mapstructure:"name"`   // SQLite database file name
	DSN    string `mapstructure:"dsn"`    // Postgres DSN
}

// Endpoints maps the renameable tracking operations to their path prefixes.
type Endpoints struct {
	Track         string `mapstructure:"track"`
	Verify        string `mapstructure:"verify"`
	TrainingTrack string `mapstructure:"training_track"`
}

// Notify configures the outbound alert sink fired on clicks and executions.
type Notify struct {
	Driver         string `mapstructure:"driver"` // "", webhook, amqp
	WebhookURL     string `mapstructure:"webhook_url"`
	AMQPURL        string `mapstructure:"amqp_url"`
	AMQPQueue      string `mapstructure:"amqp_queue"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// legacyEnv binds the historical flat environment variable names on top of the
// dotted keys so existing deployments keep working.
var legacyEnv = map[string]string{
	"admin.password":           "ADMIN_PASSWORD",
	"admin.username":           "ADMIN_USERNAME",
	"server.behind_proxy":      "BEHIND_PROXY",
	"notify.webhook_url":       "WEBHOOK_URL",
	"endpoints.track":          "ENDPOINT_TRACK",
	"endpoints.verify":         "ENDPOINT_VERIFY",
	"endpoints.training_track": "ENDPOINT_TRAINING_TRACK",
	"training.url":             "TRAINING_URL",
}

// SetDefaults registers default values for all configuration options.
// These will be used if no config file is found or if specific keys are missing.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.behind_proxy", false)
	v.SetDefault("server.trusted_proxies", []string{"127.0.0.1", "::1"})
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "changeme_please")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.name", "training_log.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("endpoints.track", "/track/click")
	v.SetDefault("endpoints.verify", "/verify")
	v.SetDefault("endpoints.training_track", "/track/training")
	v.SetDefault("notify.driver", "")
	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("notify.amqp_url", "")
	v.SetDefault("notify.amqp_queue", "clickfix.alerts")
	v.SetDefault("notify.timeout_seconds", 5)
	v.SetDefault("content.root", "templates")
	v.SetDefault("training.url", "/training")
}

// LoadConfig loads the application configuration using Viper.
// A .env file, when present, is loaded into the environment first.
// Returns a populated Config struct or an error if configuration loading fails.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		logger.Debugf(".env file loaded")
	}

	v := viper.New()

	// Replace dots with underscores in environment variable names
	// e.g., "server.port" becomes "SERVER_PORT"
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, env); err != nil {
			return nil, fmt.Errorf("error binding env %s: %w", env, err)
		}
	}

	v.AddConfigPath("./configs")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Not fatal, defaults and environment apply
			logger.Infof("Config file not found, using default values")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	logger.Infof("Configuration loaded: Server Port=%d, DB Driver=%s, Behind Proxy=%t, Notify Driver=%q",
		cfg.Server.Port, cfg.Database.Driver, cfg.Server.BehindProxy, cfg.Notify.EffectiveDriver())

	return &cfg, nil
}

// EffectiveDriver resolves the notification driver, falling back to the webhook sink
// when only a webhook URL is configured.
func (n Notify) EffectiveDriver() string {
	if n.Driver != "" {
		return strings.ToLower(n.Driver)
	}
	if n.WebhookURL != "" {
		return "webhook"
	}
	return "none"
}
