package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken  string        `yaml:"discord_token"`
	DatabasePath  string        `yaml:"database_path"`
	LogLevel      string        `yaml:"log_level"`
	RetentionDays int           `yaml:"retention_days"`
	Health        HealthConfig  `yaml:"health"`
	XP            XPConfig      `yaml:"xp"`
	Tickets       TicketConfig  `yaml:"tickets"`
	Confessions   ConfessConfig `yaml:"confessions"`
	Notifications NotifyConfig  `yaml:"notifications"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type XPConfig struct {
	MessagePoints  int64 `yaml:"message_points"`
	ReactionPoints int64 `yaml:"reaction_points"`
}

type TicketConfig struct {
	ChannelPrefix string `yaml:"channel_prefix"`
}

type ConfessConfig struct {
	MaxPerWindow  int `yaml:"max_per_window"`
	WindowMinutes int `yaml:"window_minutes"`
}

type NotifyConfig struct {
	DMLevelUp      bool        `yaml:"dm_level_up"`
	AuditToChannel bool        `yaml:"audit_to_channel"`
	EmbedColors    EmbedColors `yaml:"embed_colors"`
}

type EmbedColors struct {
	Action  int `yaml:"action"`
	Warning int `yaml:"warning"`
	Error   int `yaml:"error"`
}

func DefaultConfig() Config {
	return Config{
		DatabasePath:  "/data/guildhall.db",
		LogLevel:      "info",
		RetentionDays: 30,
		Health:        HealthConfig{Enabled: false, Addr: ":8080"},
		XP:            XPConfig{MessagePoints: 3, ReactionPoints: 1},
		Tickets:       TicketConfig{ChannelPrefix: "ticket"},
		Confessions:   ConfessConfig{MaxPerWindow: 3, WindowMinutes: 10},
		Notifications: NotifyConfig{
			DMLevelUp:      true,
			AuditToChannel: false,
			EmbedColors: EmbedColors{
				Action:  0x57F287,
				Warning: 0xF59E0B,
				Error:   0xEF4444,
			},
		},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}
	if cfg.XP.MessagePoints <= 0 {
		cfg.XP.MessagePoints = 3
	}
	if cfg.XP.ReactionPoints <= 0 {
		cfg.XP.ReactionPoints = 1
	}
	if cfg.Tickets.ChannelPrefix == "" {
		cfg.Tickets.ChannelPrefix = "ticket"
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.DatabasePath = envString("DATABASE_PATH", cfg.DatabasePath)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.RetentionDays = envInt("RETENTION_DAYS", cfg.RetentionDays)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
	cfg.XP.MessagePoints = envInt64("XP_MESSAGE_POINTS", cfg.XP.MessagePoints)
	cfg.XP.ReactionPoints = envInt64("XP_REACTION_POINTS", cfg.XP.ReactionPoints)
	cfg.Tickets.ChannelPrefix = envString("TICKET_CHANNEL_PREFIX", cfg.Tickets.ChannelPrefix)
	cfg.Confessions.MaxPerWindow = envInt("CONFESSION_MAX_PER_WINDOW", cfg.Confessions.MaxPerWindow)
	cfg.Confessions.WindowMinutes = envInt("CONFESSION_WINDOW_MINUTES", cfg.Confessions.WindowMinutes)
	cfg.Notifications.DMLevelUp = envBool("DM_LEVEL_UP", cfg.Notifications.DMLevelUp)
	cfg.Notifications.AuditToChannel = envBool("AUDIT_TO_CHANNEL", cfg.Notifications.AuditToChannel)
	cfg.Notifications.EmbedColors.Action = envInt("EMBED_COLOR_ACTION", cfg.Notifications.EmbedColors.Action)
	cfg.Notifications.EmbedColors.Warning = envInt("EMBED_COLOR_WARNING", cfg.Notifications.EmbedColors.Warning)
	cfg.Notifications.EmbedColors.Error = envInt("EMBED_COLOR_ERROR", cfg.Notifications.EmbedColors.Error)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}
