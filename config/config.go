package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	S3       S3Config       `yaml:"s3"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	Charset      string `yaml:"charset"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type StorageConfig struct {
	MaxFileSize int64 `yaml:"max_file_size"`
}

type AuthConfig struct {
	CookieName        string `yaml:"cookie_name"`
	OTPPepper         string `yaml:"otp_pepper"`
	OTPExpireSeconds  int    `yaml:"otp_expire_seconds"`
	OTPMaxAttempts    int    `yaml:"otp_max_attempts"`
	SessionExpireHour int    `yaml:"session_expire_hours"`
	DevMailEnabled    bool   `yaml:"dev_mail_enabled"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

var AppConfig *Config

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	AppConfig = &cfg
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Charset == "" {
		cfg.Database.Charset = "utf8mb4"
	}
	if cfg.Storage.MaxFileSize == 0 {
		cfg.Storage.MaxFileSize = 100 * 1024 * 1024
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "app-session"
	}
	if cfg.Auth.OTPExpireSeconds == 0 {
		cfg.Auth.OTPExpireSeconds = 300
	}
	if cfg.Auth.OTPMaxAttempts == 0 {
		cfg.Auth.OTPMaxAttempts = 5
	}
	if cfg.Auth.SessionExpireHour == 0 {
		cfg.Auth.SessionExpireHour = 168
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Secrets can come from the environment instead of config.yaml.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STASHBOX_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("STASHBOX_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("STASHBOX_S3_ACCESS_KEY"); v != "" {
		cfg.S3.AccessKey = v
	}
	if v := os.Getenv("STASHBOX_S3_SECRET_KEY"); v != "" {
		cfg.S3.SecretKey = v
	}
	if v := os.Getenv("STASHBOX_OTP_PEPPER"); v != "" {
		cfg.Auth.OTPPepper = v
	}
}
