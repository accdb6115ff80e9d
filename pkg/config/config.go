package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Assistant AssistantConfig `mapstructure:"assistant"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Log       LogConfig       `mapstructure:"log"`
}

type AssistantConfig struct {
	Mode            string  `mapstructure:"mode"`
	HistorySize     int     `mapstructure:"history_size"`
	ListLimit       int     `mapstructure:"list_limit"`
	Seed            int64   `mapstructure:"seed"` // pins reply selection when non-zero
	StrictThreshold float64 `mapstructure:"strict_threshold"`
}

type StorageConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type TelegramConfig struct {
	Token      string        `mapstructure:"token"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432
	if u.Port() != "" {
		if _, err := fmt.Sscanf(u.Port(), "%d", &port); err != nil {
			return DatabaseConfig{}, fmt.Errorf("bad port %q: %w", u.Port(), err)
		}
	}

	sslMode := u.Query().Get("sslmode")
	if sslMode == "" {
		sslMode = "disable"
	}

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:  sslMode,
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("assistant.mode", "hybrid")
	v.SetDefault("assistant.history_size", 10)
	v.SetDefault("assistant.list_limit", 5)
	v.SetDefault("assistant.seed", 0)
	v.SetDefault("assistant.strict_threshold", 0.3)
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.sqlite_path", "data/assistant.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "assistant")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("telegram.session_ttl", 30*time.Minute)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// LoadConfig reads path when given, then applies environment overrides.
// ASSISTANT_MODE style variables override nested keys; DATABASE_URL and
// TELEGRAM_TOKEN are honored as-is.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		config.Database = dbConfig
	}

	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Assistant.Mode {
	case "hybrid", "intent", "conversational":
	default:
		return fmt.Errorf("%w: assistant.mode %q", ErrInvalid, c.Assistant.Mode)
	}
	if c.Assistant.HistorySize <= 0 {
		return fmt.Errorf("%w: assistant.history_size must be positive", ErrInvalid)
	}
	if c.Assistant.ListLimit <= 0 {
		return fmt.Errorf("%w: assistant.list_limit must be positive", ErrInvalid)
	}
	if c.Assistant.StrictThreshold < 0 || c.Assistant.StrictThreshold > 1 {
		return fmt.Errorf("%w: assistant.strict_threshold must be within [0, 1]", ErrInvalid)
	}

	switch c.Storage.Driver {
	case "memory":
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("%w: storage.sqlite_path is required for sqlite", ErrInvalid)
		}
	case "postgres":
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("%w: database.host and database.dbname are required for postgres", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: storage.driver %q", ErrInvalid, c.Storage.Driver)
	}

	if c.Telegram.SessionTTL < 0 {
		return fmt.Errorf("%w: telegram.session_ttl must not be negative", ErrInvalid)
	}
	return nil
}
