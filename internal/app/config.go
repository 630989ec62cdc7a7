package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/paperbot-dev/paperbot/pkg/config"
	"github.com/paperbot-dev/paperbot/pkg/llm"
	"github.com/paperbot-dev/paperbot/pkg/notify"
)

// Config holds all PaperBot settings. YAML fields support ${VAR} expansion
// and the tagged environment overrides from pkg/config.
type Config struct {
	DBPath    string `yaml:"db_path" env:"PAPERBOT_DB"`
	OutputDir string `yaml:"output_dir" env:"PAPERBOT_OUTPUT_DIR"`
	Profile   string `yaml:"profile" env:"PAPERBOT_PROFILE"`
	TopK      int    `yaml:"top_k" env:"PAPERBOT_TOP_K"`
	Chart     bool   `yaml:"chart"`
	Every     string `yaml:"every" env:"PAPERBOT_EVERY"` // scheduler interval, e.g. "24h"

	Sources SourcesConfig        `yaml:"sources"`
	LLM     llm.Config           `yaml:"llm"`
	Email   EmailConfig          `yaml:"email"`
	Webhook notify.WebhookConfig `yaml:"webhook"`
	API     APIConfig            `yaml:"api"`
}

// SourcesConfig selects and parameterizes the upstream feeds.
type SourcesConfig struct {
	Enabled  SourceToggles             `yaml:"enabled"`
	Defaults map[string]map[string]any `yaml:"defaults"`
}

// SourceToggles maps canonical source names to on/off. In YAML it is a
// mapping of name to bool; a plain list of names is also accepted and reads
// as all-true.
type SourceToggles map[string]bool

func (t *SourceToggles) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		m := make(map[string]bool)
		if err := value.Decode(&m); err != nil {
			return err
		}
		*t = m
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return err
		}
		m := make(SourceToggles, len(names))
		for _, name := range names {
			m[name] = true
		}
		*t = m
		return nil
	default:
		return fmt.Errorf("sources.enabled: expected a name-to-bool map or a list of names")
	}
}

// EmailConfig holds the SMTP settings for digest delivery.
type EmailConfig struct {
	SMTPHost   string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort   string `yaml:"smtp_port" env:"SMTP_PORT"`
	From       string `yaml:"from" env:"SMTP_FROM"`
	Password   string `yaml:"password" env:"SMTP_PASSWORD"`
	To         string `yaml:"to" env:"SMTP_TO"`
	SenderName string `yaml:"sender_name"`
}

// APIConfig holds the REST API settings.
type APIConfig struct {
	Port              string `yaml:"port" env:"API_PORT"`
	JWTSecret         string `yaml:"jwt_secret" env:"JWT_SECRET"`
	AdminEmail        string `yaml:"admin_email" env:"ADMIN_EMAIL"`
	AdminPasswordHash string `yaml:"admin_password_hash" env:"ADMIN_PASSWORD_HASH"`
}

// DefaultConfig returns the settings used when no config file is present.
func DefaultConfig() Config {
	return Config{
		DBPath:    "paperbot.db",
		OutputDir: "outputs",
		TopK:      10,
		Chart:     true,
		Every:     "24h",
		Sources: SourcesConfig{
			Enabled: SourceToggles{
				"OpenAlex": true,
				"arXiv":    true,
				"Crossref": true,
				"bioRxiv":  true,
				"medRxiv":  true,
			},
		},
		LLM: llm.DefaultConfig(),
		Email: EmailConfig{
			SMTPHost: "smtp.gmail.com",
			SMTPPort: "587",
		},
		API: APIConfig{
			Port: "8080",
		},
	}
}

// LoadConfig reads the config file on top of the defaults. A missing file
// leaves the defaults in place.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := config.LoadOrDefault(path, &cfg); err != nil {
		return cfg, err
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("LLM_API_KEY")
	}
	return cfg, nil
}

// Interval parses the scheduler interval.
func (c Config) Interval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Every)
	if err != nil {
		return 0, fmt.Errorf("parse interval %q: %w", c.Every, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be positive, got %s", d)
	}
	return d, nil
}

// EnabledSet returns the enabled source names as a lookup set.
func (c Config) EnabledSet() map[string]bool {
	return c.Sources.Enabled
}

// NotifyEmail converts the email section for pkg/notify.
func (c Config) NotifyEmail() notify.EmailConfig {
	return notify.EmailConfig{
		SMTPHost:   c.Email.SMTPHost,
		SMTPPort:   c.Email.SMTPPort,
		From:       c.Email.From,
		Password:   c.Email.Password,
		To:         c.Email.To,
		SenderName: c.Email.SenderName,
	}
}
