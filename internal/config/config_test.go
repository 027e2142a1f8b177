package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "turbo"
	cfg.LogLevel = "loud"
	cfg.Chain.ChainID = 0
	cfg.Server.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"unknown mode", "unknown log_level", "chain_id", "port"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}
}

func TestValidateFullModeNeedsWalletKey(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "full"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "wallet") {
		t.Fatalf("expected wallet error, got %v", err)
	}

	cfg.Wallet.PrivateKey = "deadbeef"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("private key should satisfy full mode: %v", err)
	}
}

func TestValidateSealedKeyNeedsPassword(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "full"
	cfg.Wallet.EncryptedKeyPath = "/var/lib/tribute/operator.key"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "key_password") {
		t.Fatalf("expected key_password error, got %v", err)
	}
}

func TestValidateTelegramPair(t *testing.T) {
	cfg := Defaults()
	cfg.Notify.TelegramToken = "123:abc"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "telegram") {
		t.Fatalf("expected telegram pairing error, got %v", err)
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
mode = "server"
log_level = "debug"

[eligibility]
donation_min_score = 2000

[chain]
receipt_timeout = "90s"

[server]
port = 9100
cors_origins = ["https://tribute.example"]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("TRIBUTE_SERVER_PORT", "9200")
	t.Setenv("TRIBUTE_REDIS_ADDR", "redis.internal:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Eligibility.DonationMinScore != 2000 {
		t.Errorf("donation_min_score = %d, want 2000", cfg.Eligibility.DonationMinScore)
	}
	// File value exists but env wins.
	if cfg.Server.Port != 9200 {
		t.Errorf("port = %d, want 9200 from env", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "redis.internal:6379" {
		t.Errorf("redis addr = %q, want env override", cfg.Redis.Addr)
	}
	if cfg.Chain.ReceiptTimeout.Duration != 90*time.Second {
		t.Errorf("receipt_timeout = %v, want 90s", cfg.Chain.ReceiptTimeout.Duration)
	}
	// Untouched section keeps its default.
	if cfg.Eligibility.MessageMinScore != 10 {
		t.Errorf("message_min_score = %d, want default 10", cfg.Eligibility.MessageMinScore)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q, want debug", cfg.LogLevel)
	}
}

func TestRedactedConfigHidesSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.Wallet.PrivateKey = "deadbeef"
	cfg.Database.Password = "hunter2"
	cfg.Server.APIKey = "secret"
	cfg.Redis.Password = ""

	red := RedactedConfig(&cfg)

	if red.Wallet.PrivateKey != "***" {
		t.Errorf("private key not redacted: %q", red.Wallet.PrivateKey)
	}
	if red.Database.Password != "***" {
		t.Errorf("database password not redacted: %q", red.Database.Password)
	}
	if red.Server.APIKey != "***" {
		t.Errorf("api key not redacted: %q", red.Server.APIKey)
	}
	// Empty secrets stay empty so the redacted dump is honest about what is
	// unset.
	if red.Redis.Password != "" {
		t.Errorf("empty password should stay empty, got %q", red.Redis.Password)
	}
	// Redaction must not write back into the original.
	if cfg.Wallet.PrivateKey != "deadbeef" {
		t.Error("redaction mutated the original config")
	}
}
