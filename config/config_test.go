package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  port: 3306
  username: root
  database: stashbox
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 || cfg.Server.Host != "0.0.0.0" {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Auth.CookieName != "app-session" {
		t.Fatalf("unexpected cookie name: %s", cfg.Auth.CookieName)
	}
	if cfg.Auth.OTPExpireSeconds != 300 || cfg.Auth.OTPMaxAttempts != 5 {
		t.Fatalf("unexpected passcode defaults: %+v", cfg.Auth)
	}
	if cfg.Auth.SessionExpireHour != 168 {
		t.Fatalf("unexpected session lifetime: %d", cfg.Auth.SessionExpireHour)
	}
	if cfg.Storage.MaxFileSize != 100*1024*1024 {
		t.Fatalf("unexpected max file size: %d", cfg.Storage.MaxFileSize)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("unexpected log level: %s", cfg.Log.Level)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("STASHBOX_DB_PASSWORD", "env-db-pass")
	t.Setenv("STASHBOX_S3_SECRET_KEY", "env-s3-secret")
	t.Setenv("STASHBOX_OTP_PEPPER", "env-pepper")

	path := writeConfig(t, `
database:
  password: file-db-pass
s3:
  secret_key: file-s3-secret
auth:
  otp_pepper: file-pepper
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Password != "env-db-pass" {
		t.Fatalf("expected database password from the environment, got %s", cfg.Database.Password)
	}
	if cfg.S3.SecretKey != "env-s3-secret" {
		t.Fatalf("expected s3 secret from the environment, got %s", cfg.S3.SecretKey)
	}
	if cfg.Auth.OTPPepper != "env-pepper" {
		t.Fatalf("expected pepper from the environment, got %s", cfg.Auth.OTPPepper)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
