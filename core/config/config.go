package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/agrisoko/sokobot/core/database"
)

// WhatsAppConfig holds WhatsApp Cloud API credentials and webhook secrets.
type WhatsAppConfig struct {
	AccessToken   string `yaml:"access_token" envconfig:"WA_ACCESS_TOKEN"`
	PhoneNumberID string `yaml:"phone_number_id" envconfig:"WA_PHONE_NUMBER_ID"`
	VerifyToken   string `yaml:"verify_token" envconfig:"WA_VERIFY_TOKEN"`
	// AppSecret enables X-Hub-Signature-256 verification on inbound deliveries.
	// When empty, signature checks are skipped (local development only).
	AppSecret string `yaml:"app_secret" envconfig:"WA_APP_SECRET"`
	// GraphBaseURL overrides the Cloud API base, mostly for tests.
	GraphBaseURL string `yaml:"graph_base_url" envconfig:"WA_GRAPH_BASE_URL"`
}

// HTTPConfig specifies the webhook server listen settings.
type HTTPConfig struct {
	Listen string `yaml:"listen" envconfig:"HTTP_LISTEN"`
	Port   int    `yaml:"port" envconfig:"HTTP_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Dir     string `yaml:"dir"`
	BotFile string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// Config aggregates the application configuration.
type Config struct {
	WhatsApp WhatsAppConfig  `yaml:"whatsapp"`
	HTTP     HTTPConfig      `yaml:"http"`
	Logging  LoggingConfig   `yaml:"logging"`
	Database database.Config `yaml:"database"`
}

const defaultGraphBaseURL = "https://graph.facebook.com/v20.0"

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if strings.TrimSpace(cfg.WhatsApp.AccessToken) == "" {
		return fmt.Errorf("whatsapp.access_token is required")
	}
	if strings.TrimSpace(cfg.WhatsApp.PhoneNumberID) == "" {
		return fmt.Errorf("whatsapp.phone_number_id is required")
	}
	if strings.TrimSpace(cfg.WhatsApp.VerifyToken) == "" {
		return fmt.Errorf("whatsapp.verify_token is required")
	}
	if strings.TrimSpace(cfg.WhatsApp.GraphBaseURL) == "" {
		cfg.WhatsApp.GraphBaseURL = defaultGraphBaseURL
	}
	cfg.WhatsApp.GraphBaseURL = strings.TrimRight(cfg.WhatsApp.GraphBaseURL, "/")

	if strings.TrimSpace(cfg.HTTP.Listen) == "" {
		cfg.HTTP.Listen = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.Port < 0 {
		return fmt.Errorf("http.port must be > 0")
	}

	return nil
}
