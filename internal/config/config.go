package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-SalonService/internal/domain"
)

// Config конфигурация сервиса, загружается из config.toml
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Redis     RedisConfig     `toml:"redis"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Messenger MessengerConfig `toml:"messenger"`
	Schedule  ScheduleConfig  `toml:"schedule"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig подключение к Redis для очереди отложенных задач
type RedisConfig struct {
	Addr        string `toml:"addr"`
	Password    string `toml:"password"`
	DB          int    `toml:"db"`
	Concurrency int    `toml:"concurrency"` // размер пула воркеров
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// MessengerConfig внешний API отправки сообщений клиентам
type MessengerConfig struct {
	APIURL     string `toml:"api_url"`
	InstanceID string `toml:"instance_id"`
	APIToken   string `toml:"api_token"`
	Timeout    int    `toml:"timeout"` // секунды
}

// ScheduleConfig параметры генерации календаря и расчета слотов
// Рабочие часы и глубина календаря - параметры деплоя, не бизнес-константы
type ScheduleConfig struct {
	HorizonDays int    `toml:"horizon_days"`
	OpeningTime string `toml:"opening_time"` // HH:MM
	ClosingTime string `toml:"closing_time"` // HH:MM
	Timezone    string `toml:"timezone"`
	CleanupCron int    `toml:"cleanup_interval_hours"` // период фоновой чистки
}

// Load загружает конфигурацию из TOML файла и подставляет дефолты
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Redis.Concurrency == 0 {
		cfg.Redis.Concurrency = 10
	}
	if cfg.Schedule.HorizonDays == 0 {
		cfg.Schedule.HorizonDays = domain.DefaultHorizonDays
	}
	if cfg.Schedule.OpeningTime == "" {
		cfg.Schedule.OpeningTime = domain.DefaultOpeningTime
	}
	if cfg.Schedule.ClosingTime == "" {
		cfg.Schedule.ClosingTime = domain.DefaultClosingTime
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = domain.DefaultTimezone
	}
	if cfg.Schedule.CleanupCron == 0 {
		cfg.Schedule.CleanupCron = 24
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Messenger.Timeout == 0 {
		cfg.Messenger.Timeout = 10
	}
}

func validate(cfg *Config) error {
	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		return fmt.Errorf("config: database host and dbname are required")
	}
	if cfg.Schedule.OpeningTime >= cfg.Schedule.ClosingTime {
		return fmt.Errorf("config: opening_time %s must be before closing_time %s",
			cfg.Schedule.OpeningTime, cfg.Schedule.ClosingTime)
	}
	return nil
}
