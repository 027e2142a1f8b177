package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies TRIBUTE_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known TRIBUTE_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Wallet ──
	setStr(&cfg.Wallet.PrivateKey, "TRIBUTE_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.EncryptedKeyPath, "TRIBUTE_WALLET_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Wallet.KeyPassword, "TRIBUTE_WALLET_KEY_PASSWORD")

	// ── Chain ──
	setStr(&cfg.Chain.RPCEndpoint, "TRIBUTE_CHAIN_RPC_ENDPOINT")
	setInt64(&cfg.Chain.ChainID, "TRIBUTE_CHAIN_ID")
	setStr(&cfg.Chain.TokenAddress, "TRIBUTE_CHAIN_TOKEN_ADDRESS")
	setDuration(&cfg.Chain.ReceiptTimeout, "TRIBUTE_CHAIN_RECEIPT_TIMEOUT")

	// ── Ethos ──
	setStr(&cfg.Ethos.BaseURL, "TRIBUTE_ETHOS_BASE_URL")
	setStr(&cfg.Ethos.ClientTag, "TRIBUTE_ETHOS_CLIENT_TAG")

	// ── Eligibility ──
	setInt(&cfg.Eligibility.DonationMinScore, "TRIBUTE_ELIGIBILITY_DONATION_MIN_SCORE")
	setInt(&cfg.Eligibility.MessageMinScore, "TRIBUTE_ELIGIBILITY_MESSAGE_MIN_SCORE")

	// ── Database ──
	setStr(&cfg.Database.DSN, "TRIBUTE_DATABASE_DSN")
	setStr(&cfg.Database.DSN, "DATABASE_URL") // compatibility alias
	setStr(&cfg.Database.Host, "TRIBUTE_DATABASE_HOST")
	setInt(&cfg.Database.Port, "TRIBUTE_DATABASE_PORT")
	setStr(&cfg.Database.Database, "TRIBUTE_DATABASE_NAME")
	setStr(&cfg.Database.User, "TRIBUTE_DATABASE_USER")
	setStr(&cfg.Database.Password, "TRIBUTE_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "TRIBUTE_DATABASE_SSL_MODE")
	setInt(&cfg.Database.PoolMaxConns, "TRIBUTE_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "TRIBUTE_DATABASE_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "TRIBUTE_DATABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "TRIBUTE_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "TRIBUTE_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "TRIBUTE_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "TRIBUTE_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "TRIBUTE_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "TRIBUTE_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.ProfileTTL, "TRIBUTE_REDIS_PROFILE_TTL")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "TRIBUTE_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "TRIBUTE_S3_REGION")
	setStr(&cfg.S3.Bucket, "TRIBUTE_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "TRIBUTE_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "TRIBUTE_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "TRIBUTE_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "TRIBUTE_S3_FORCE_PATH_STYLE")

	// ── Archive ──
	setBool(&cfg.Archive.Enabled, "TRIBUTE_ARCHIVE_ENABLED")
	setInt(&cfg.Archive.RetentionDays, "TRIBUTE_ARCHIVE_RETENTION_DAYS")
	setDuration(&cfg.Archive.Interval, "TRIBUTE_ARCHIVE_INTERVAL")

	// ── Server ──
	setInt(&cfg.Server.Port, "TRIBUTE_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "TRIBUTE_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "TRIBUTE_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "TRIBUTE_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "TRIBUTE_SERVER_RATE_WINDOW")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "TRIBUTE_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "TRIBUTE_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "TRIBUTE_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "TRIBUTE_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "TRIBUTE_MODE")
	setStr(&cfg.LogLevel, "TRIBUTE_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
