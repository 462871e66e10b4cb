package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Browser struct {
		Headless  bool   `yaml:"headless"`
		StateFile string `yaml:"state_file"`
	} `yaml:"browser"`

	Email struct {
		Enabled     bool   `yaml:"enabled"`
		IMAPHost    string `yaml:"imap_host"`
		IMAPPort    int    `yaml:"imap_port"`
		Username    string `yaml:"username"`
		Mailbox     string `yaml:"mailbox"`
		MaxMessages int    `yaml:"max_messages"`
	} `yaml:"email"`

	LLM struct {
		Enabled bool   `yaml:"enabled"`
		Method  string `yaml:"method"`
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"llm"`

	HubSpot struct {
		APIVersion string `yaml:"api_version"`
	} `yaml:"hubspot"`

	// Defaults feed the property mapper: the three well-known deal keys plus
	// any company_*/deal_* custom property fallback.
	Defaults map[string]string `yaml:"defaults"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Browser.StateFile == "" {
		c.Browser.StateFile = "browser_state.json"
	}
	if c.Email.Mailbox == "" {
		c.Email.Mailbox = "INBOX"
	}
	if c.Email.MaxMessages <= 0 {
		c.Email.MaxMessages = 10
	}
	if c.LLM.Method == "" {
		c.LLM.Method = "ollama"
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "http://127.0.0.1:11434"
	}
	if c.HubSpot.APIVersion == "" {
		c.HubSpot.APIVersion = "v3"
	}
	if c.Defaults == nil {
		c.Defaults = map[string]string{}
	}
}

// Validate checks the parts of the config a run actually depends on.
func Validate(cfg Config) error {
	var errs []string

	if cfg.Email.Enabled {
		if strings.TrimSpace(cfg.Email.IMAPHost) == "" {
			errs = append(errs, "email.imap_host is required when email.enabled=true")
		}
		if cfg.Email.IMAPPort == 0 {
			errs = append(errs, "email.imap_port is required when email.enabled=true")
		}
		if strings.TrimSpace(cfg.Email.Username) == "" {
			errs = append(errs, "email.username is required when email.enabled=true")
		}
	}

	for k := range cfg.Defaults {
		if k == "deal_stage_id" || k == "deal_pipeline_id" || k == "deal_owner_id" {
			continue
		}
		if !strings.HasPrefix(k, "company_") && !strings.HasPrefix(k, "deal_") {
			errs = append(errs, fmt.Sprintf("defaults.%s: keys must use the company_ or deal_ prefix", k))
		}
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

// MapperDefaults returns an immutable copy of the defaults block for the
// property mapper. A copy so nothing downstream can mutate shared config.
func (c Config) MapperDefaults() map[string]string {
	out := make(map[string]string, len(c.Defaults))
	for k, v := range c.Defaults {
		out[k] = strings.TrimSpace(v)
	}
	return out
}
