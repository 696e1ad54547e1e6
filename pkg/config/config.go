package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/smckee/nagmail/pkg/logger"
)

type Config struct {
	Database  DatabaseConfig  `json:"database"`
	Server    ServerConfig    `json:"server"`
	Mail      MailConfig      `json:"mail"`
	Reminders RemindersConfig `json:"reminders"`
	Telegram  TelegramConfig  `json:"telegram"`
	Logging   LoggingConfig   `json:"logging"`
}

type DatabaseConfig struct {
	Driver   string `json:"driver"` // "postgres" or "sqlite"
	Host     string `json:"host"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	Port     int    `json:"port"`
	SSLMode  string `json:"sslmode"`
	Path     string `json:"path"` // sqlite only
}

type ServerConfig struct {
	Listen         string `json:"listen"`
	BaseURL        string `json:"base_url"`
	Secret         string `json:"secret"`
	SessionTTLDays int    `json:"session_ttl_days"`
}

type MailConfig struct {
	Provider     string `json:"provider"` // "smtp" or "resend"
	From         string `json:"from"`
	SMTPHost     string `json:"smtp_host"`
	SMTPPort     string `json:"smtp_port"`
	SMTPUser     string `json:"smtp_user"`
	SMTPPassword string `json:"smtp_password"`
	ResendAPIKey string `json:"resend_api_key"`
}

type RemindersConfig struct {
	SendAt   string `json:"send_at"` // "HH:MM", local to Timezone
	Timezone string `json:"timezone"`
}

type TelegramConfig struct {
	Token  string `json:"token"`
	ChatID int64  `json:"chat_id"`
}

type LoggingConfig struct {
	Level     string `json:"level"`
	File      string `json:"file"`
	GormLevel string `json:"gorm_level"`
}

var AppConfig Config

func LoadConfig(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		logger.Error("failed to open config file", "error", err)
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&AppConfig); err != nil {
		logger.Error("failed to decode config file", "error", err)
		return err
	}

	applyDefaults(&AppConfig)

	if secret := os.Getenv("NAGMAIL_SECRET"); secret != "" {
		AppConfig.Server.Secret = secret
	}
	if strings.TrimSpace(AppConfig.Server.Secret) == "" {
		return fmt.Errorf("server secret is not set (config or NAGMAIL_SECRET)")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:8080"
	}
	if cfg.Server.SessionTTLDays <= 0 {
		cfg.Server.SessionTTLDays = 30
	}
	if cfg.Mail.Provider == "" {
		cfg.Mail.Provider = "smtp"
	}
	if cfg.Reminders.SendAt == "" {
		cfg.Reminders.SendAt = "08:00"
	}
	if cfg.Reminders.Timezone == "" {
		cfg.Reminders.Timezone = "UTC"
	}
}
