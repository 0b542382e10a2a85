package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging      LoggingConfig      `yaml:"logging"`
	API          APIConfig          `yaml:"api"`
	Web          WebConfig          `yaml:"web"`
	FootballData FootballDataConfig `yaml:"football_data"`
	Prediction   PredictionConfig   `yaml:"prediction"`
	Postgres     PostgresConfig     `yaml:"postgres"`
	SQLite       SQLiteConfig       `yaml:"sqlite"`
	Redis        RedisConfig        `yaml:"redis"`
	Telegram     TelegramConfig     `yaml:"telegram"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`     // DEBUG, INFO, WARN, ERROR
	FilePath string `yaml:"file_path"` // Optional JSON log file in addition to stdout
}

type APIConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

type WebConfig struct {
	Addr              string            `yaml:"addr"`
	BackendURL        string            `yaml:"backend_url"` // Base URL of the API serving /api/matches and /api/predict
	RequestTimeout    time.Duration     `yaml:"request_timeout"`
	ReadHeaderTimeout time.Duration     `yaml:"read_header_timeout"`
	Locale            string            `yaml:"locale"`   // "ja" or "en"
	TimeZone          string            `yaml:"timezone"` // IANA name used for kickoff times, empty = server local
	StaticDir         string            `yaml:"static_dir"`
	StaticPrefix      string            `yaml:"static_prefix"`
	Backgrounds       map[string]string `yaml:"backgrounds"` // team name -> background image file
	DefaultBackground string            `yaml:"default_background"`
	SessionTTL        time.Duration     `yaml:"session_ttl"`
	MaxSessions       int               `yaml:"max_sessions"` // Oldest idle session is evicted beyond this
	RefreshInterval   time.Duration     `yaml:"refresh_interval"` // Page refresh while a prediction is pending
}

type FootballDataConfig struct {
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type PredictionConfig struct {
	OpenAIKey   string        `yaml:"openai_api_key"`
	BaseURL     string        `yaml:"base_url"` // Optional OpenAI-compatible endpoint
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Language    string        `yaml:"language"` // Language the analysis must be written in
	Timeout     time.Duration `yaml:"timeout"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"` // ":memory:" or a file path
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

// Load reads the YAML file at configPath, applies environment overrides and defaults.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML config data. Used by Load and by tests.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("FOOTBALL_DATA_API_KEY"); v != "" {
		c.FootballData.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Prediction.OpenAIKey = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("BACKEND_URL"); v != "" {
		c.Web.BackendURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		chatID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", v, err)
		}
		c.Telegram.ChatID = chatID
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "INFO"
	}

	if c.API.Addr == "" {
		c.API.Addr = ":8000"
	}
	if c.API.ReadHeaderTimeout <= 0 {
		c.API.ReadHeaderTimeout = 5 * time.Second
	}

	if c.Web.Addr == "" {
		c.Web.Addr = ":8080"
	}
	if c.Web.BackendURL == "" {
		c.Web.BackendURL = "http://localhost:8000"
	}
	if c.Web.RequestTimeout <= 0 {
		c.Web.RequestTimeout = 60 * time.Second
	}
	if c.Web.ReadHeaderTimeout <= 0 {
		c.Web.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Web.Locale == "" {
		c.Web.Locale = "ja"
	}
	if c.Web.StaticDir == "" {
		c.Web.StaticDir = "static"
	}
	if c.Web.StaticPrefix == "" {
		c.Web.StaticPrefix = "/static/"
	}
	if c.Web.DefaultBackground == "" {
		c.Web.DefaultBackground = "default.jpg"
	}
	if c.Web.SessionTTL <= 0 {
		c.Web.SessionTTL = 2 * time.Hour
	}
	if c.Web.MaxSessions <= 0 {
		c.Web.MaxSessions = 1000
	}
	if c.Web.RefreshInterval <= 0 {
		c.Web.RefreshInterval = 2 * time.Second
	}

	if c.FootballData.BaseURL == "" {
		c.FootballData.BaseURL = "https://api.football-data.org/v4"
	}
	if c.FootballData.Timeout <= 0 {
		c.FootballData.Timeout = 15 * time.Second
	}
	if c.FootballData.CacheTTL <= 0 {
		c.FootballData.CacheTTL = 5 * time.Minute
	}

	if c.Prediction.Model == "" {
		c.Prediction.Model = "gpt-3.5-turbo"
	}
	if c.Prediction.Temperature == 0 {
		c.Prediction.Temperature = 0.7
	}
	if c.Prediction.Language == "" {
		c.Prediction.Language = "Japanese"
	}
	if c.Prediction.Timeout <= 0 {
		c.Prediction.Timeout = 45 * time.Second
	}
	if c.Prediction.CacheTTL <= 0 {
		c.Prediction.CacheTTL = 30 * time.Minute
	}
}
