package config

import (
	"encoding/json"
	"log"
	"os"
)

type Config struct {
	App          AppConfig                 `json:"app"`
	Providers    map[string]ProviderConfig `json:"providers"`
	Capabilities CapabilitiesConfig        `json:"capabilities"`
	Gateways     GatewaysConfig            `json:"gateways"`
	Memory       MemoryConfig              `json:"memory"`
}

type AppConfig struct {
	Name         string `json:"name"`
	KnowledgeDir string `json:"knowledge_dir"`
	StaticDir    string `json:"static_dir"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
	Enabled bool   `json:"enabled"`
}

type CapabilitiesConfig struct {
	Slack    SlackConfig    `json:"slack"`
	Twilio   TwilioConfig   `json:"twilio"`
	Calendar CalendarConfig `json:"calendar"`
}

type SlackConfig struct {
	BotToken string `json:"bot_token"`
}

type TwilioConfig struct {
	AccountSID  string `json:"account_sid"`
	AuthToken   string `json:"auth_token"`
	PhoneNumber string `json:"phone_number"`
}

type CalendarConfig struct {
	CredentialsPath string `json:"credentials_path"`
	TokenPath       string `json:"token_path"`
	TimeZone        string `json:"time_zone"`
}

type GatewaysConfig struct {
	HTTP     HTTPConfig     `json:"http"`
	Telegram TelegramConfig `json:"telegram"`
}

type HTTPConfig struct {
	Addr string `json:"addr"`
}

type TelegramConfig struct {
	Token   string `json:"token"`
	ChatID  int64  `json:"chat_id"`
	Enabled bool   `json:"enabled"`
}

type MemoryConfig struct {
	Path string `json:"path"`
}

func LoadConfig(path string) *Config {
	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config file: %v", err)
	}

	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.App.KnowledgeDir == "" {
		c.App.KnowledgeDir = "knowledge_base"
	}
	if c.App.StaticDir == "" {
		c.App.StaticDir = "static"
	}
	if c.Gateways.HTTP.Addr == "" {
		c.Gateways.HTTP.Addr = ":8000"
	}
	if c.Memory.Path == "" {
		c.Memory.Path = "taskflow.db"
	}
}

// GetDefaultProvider returns the first enabled provider
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetTelegramConfig returns telegram config if enabled
func (c *Config) GetTelegramConfig() (TelegramConfig, bool) {
	tg := c.Gateways.Telegram
	if tg.Enabled && tg.Token != "" {
		return tg, true
	}
	return TelegramConfig{}, false
}
