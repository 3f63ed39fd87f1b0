package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultModel          = "gpt-4o-mini"
	DefaultMaxTokens      = 120
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 18790
	DefaultBufSize        = 100
	DefaultBurstWindowMin = 60
	DefaultBurstThreshold = 10
	DefaultUTCOffsetHours = 9
	DefaultMorningCutoff  = 12
	DefaultEveningCutoff  = 22
	DefaultPaceMinMs      = 800
	DefaultPaceMaxMs      = 2600

	// Jealous replies are either the fixed curt script or generated text.
	JealousPolicyScript   = "script"
	JealousPolicyGenerate = "generate"

	DefaultMorningCron = "0 30 7 * * *"
	DefaultMiddayCron  = "0 10 12 * * *"
	DefaultEveningCron = "0 30 21 * * *"
)

type Config struct {
	Gateway  GatewayConfig  `json:"gateway"`
	Channels ChannelsConfig `json:"channels"`
	Provider ProviderConfig `json:"provider"`
	Persona  PersonaConfig  `json:"persona"`
	Store    StoreConfig    `json:"store"`
	Schedule ScheduleConfig `json:"schedule"`
}

type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type ChannelsConfig struct {
	LINE     LineConfig     `json:"line"`
	Telegram TelegramConfig `json:"telegram"`
}

type LineConfig struct {
	Enabled       bool     `json:"enabled"`
	ChannelSecret string   `json:"channelSecret"`
	ChannelToken  string   `json:"channelToken"`
	AllowFrom     []string `json:"allowFrom"`
	PaceMinMs     int      `json:"paceMinMs,omitempty"`
	PaceMaxMs     int      `json:"paceMaxMs,omitempty"`
}

type TelegramConfig struct {
	Enabled   bool     `json:"enabled"`
	Token     string   `json:"token"`
	AllowFrom []string `json:"allowFrom"`
	Proxy     string   `json:"proxy,omitempty"`
	PaceMinMs int      `json:"paceMinMs,omitempty"`
	PaceMaxMs int      `json:"paceMaxMs,omitempty"`
}

type ProviderConfig struct {
	APIKey    string `json:"apiKey"`
	BaseURL   string `json:"baseUrl,omitempty"`
	Model     string `json:"model"`
	MaxTokens int    `json:"maxTokens"`
}

// PersonaConfig tunes the mode engine. Quiet windows are local-time
// bands ("10:00-12:30") applied on weekdays in the configured UTC
// offset; DST is deliberately ignored.
type PersonaConfig struct {
	BurstWindowMin    int      `json:"burstWindowMin"`
	BurstThreshold    int      `json:"burstThreshold"`
	UTCOffsetHours    int      `json:"utcOffsetHours"`
	QuietWindows      []string `json:"quietWindows"`
	JealousPolicy     string   `json:"jealousPolicy"`
	MorningCutoffHour int      `json:"morningCutoffHour"`
	EveningCutoffHour int      `json:"eveningCutoffHour"`
}

type StoreConfig struct {
	RedisAddr     string `json:"redisAddr,omitempty"`
	RedisPassword string `json:"redisPassword,omitempty"`
	RedisDB       int    `json:"redisDb,omitempty"`
	Prefix        string `json:"prefix,omitempty"`
}

// ScheduleConfig holds the three daily checkpoint cron expressions
// (six-field, with seconds) and the targets that receive scheduled
// pushes.
type ScheduleConfig struct {
	MorningCron string       `json:"morningCron"`
	MiddayCron  string       `json:"middayCron"`
	EveningCron string       `json:"eveningCron"`
	PushTo      []PushTarget `json:"pushTo"`
}

type PushTarget struct {
	Channel string `json:"channel"`
	UserID  string `json:"userId"`
	ChatID  string `json:"chatId,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Channels: ChannelsConfig{},
		Provider: ProviderConfig{
			Model:     DefaultModel,
			MaxTokens: DefaultMaxTokens,
		},
		Persona: PersonaConfig{
			BurstWindowMin:    DefaultBurstWindowMin,
			BurstThreshold:    DefaultBurstThreshold,
			UTCOffsetHours:    DefaultUTCOffsetHours,
			QuietWindows:      []string{"10:00-12:30", "14:00-17:00"},
			JealousPolicy:     JealousPolicyScript,
			MorningCutoffHour: DefaultMorningCutoff,
			EveningCutoffHour: DefaultEveningCutoff,
		},
		Store: StoreConfig{
			Prefix: "kazubot",
		},
		Schedule: ScheduleConfig{
			MorningCron: DefaultMorningCron,
			MiddayCron:  DefaultMiddayCron,
			EveningCron: DefaultEveningCron,
		},
	}
}

func ConfigDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".kazubot")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if secret := os.Getenv("KAZUBOT_LINE_CHANNEL_SECRET"); secret != "" {
		cfg.Channels.LINE.ChannelSecret = secret
	}
	if secret := os.Getenv("LINE_CHANNEL_SECRET"); secret != "" && cfg.Channels.LINE.ChannelSecret == "" {
		cfg.Channels.LINE.ChannelSecret = secret
	}
	if token := os.Getenv("KAZUBOT_LINE_CHANNEL_TOKEN"); token != "" {
		cfg.Channels.LINE.ChannelToken = token
	}
	if token := os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"); token != "" && cfg.Channels.LINE.ChannelToken == "" {
		cfg.Channels.LINE.ChannelToken = token
	}
	if key := os.Getenv("KAZUBOT_API_KEY"); key != "" {
		cfg.Provider.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = key
	}
	if url := os.Getenv("KAZUBOT_BASE_URL"); url != "" {
		cfg.Provider.BaseURL = url
	}
	if token := os.Getenv("KAZUBOT_TELEGRAM_TOKEN"); token != "" {
		cfg.Channels.Telegram.Token = token
	}
	if addr := os.Getenv("KAZUBOT_REDIS_ADDR"); addr != "" {
		cfg.Store.RedisAddr = addr
	}
	if pw := os.Getenv("KAZUBOT_REDIS_PASSWORD"); pw != "" {
		cfg.Store.RedisPassword = pw
	}
	if db := os.Getenv("KAZUBOT_REDIS_DB"); db != "" {
		if parsed, err := strconv.Atoi(db); err == nil {
			cfg.Store.RedisDB = parsed
		}
	}

	if cfg.Provider.Model == "" {
		cfg.Provider.Model = DefaultModel
	}
	if cfg.Provider.MaxTokens <= 0 {
		cfg.Provider.MaxTokens = DefaultMaxTokens
	}
	if cfg.Persona.BurstWindowMin <= 0 {
		cfg.Persona.BurstWindowMin = DefaultBurstWindowMin
	}
	if cfg.Persona.BurstThreshold <= 0 {
		cfg.Persona.BurstThreshold = DefaultBurstThreshold
	}
	if cfg.Persona.JealousPolicy == "" {
		cfg.Persona.JealousPolicy = JealousPolicyScript
	}
	if cfg.Persona.MorningCutoffHour <= 0 {
		cfg.Persona.MorningCutoffHour = DefaultMorningCutoff
	}
	if cfg.Persona.EveningCutoffHour <= 0 {
		cfg.Persona.EveningCutoffHour = DefaultEveningCutoff
	}
	if len(cfg.Persona.QuietWindows) == 0 {
		cfg.Persona.QuietWindows = DefaultConfig().Persona.QuietWindows
	}
	if cfg.Store.Prefix == "" {
		cfg.Store.Prefix = "kazubot"
	}
	if cfg.Schedule.MorningCron == "" {
		cfg.Schedule.MorningCron = DefaultMorningCron
	}
	if cfg.Schedule.MiddayCron == "" {
		cfg.Schedule.MiddayCron = DefaultMiddayCron
	}
	if cfg.Schedule.EveningCron == "" {
		cfg.Schedule.EveningCron = DefaultEveningCron
	}

	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}
