package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string

	BotAPIBase     string
	BotToken       string
	MerchantChatID int64
	MerchantPhone  string
	QRMediaRef     string

	AdminPassword string
	TokenSecret   string

	LogLevel string

	FlatRatePerThousand int64

	BroadcastBatchSize int
	BroadcastPause     time.Duration

	PhonePrefix     string
	PhoneLength     int
	Networks        []string
	MinNotifyLength int
	MinTxIDLength   int

	ShutdownTimeout time.Duration
}

const (
	defaultRunAddress      = ":8080"
	defaultTokenSecret     = "change-me-in-production"
	defaultFlatRate        = int64(200)
	defaultBatchSize       = 25
	defaultBroadcastPause  = 1200 * time.Millisecond
	defaultShutdownTimeout = 10 * time.Second
	defaultPhonePrefix     = "09"
	defaultPhoneLength     = 10
	defaultNetworks        = "syriatel,mtn"
	defaultMinNotifyLength = 4
	defaultMinTxIDLength   = 6
	defaultLogLevel        = "info"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		BotAPIBase:          getString(lookup, "BOT_API_BASE", ""),
		BotToken:            getString(lookup, "BOT_TOKEN", ""),
		MerchantChatID:      getInt64(lookup, "MERCHANT_CHAT_ID", 0),
		MerchantPhone:       getString(lookup, "MERCHANT_PHONE", ""),
		QRMediaRef:          getString(lookup, "MERCHANT_QR", ""),
		AdminPassword:       getString(lookup, "ADMIN_PASSWORD", ""),
		TokenSecret:         getString(lookup, "TOKEN_SECRET", defaultTokenSecret),
		LogLevel:            getString(lookup, "LOG_LEVEL", defaultLogLevel),
		FlatRatePerThousand: getInt64(lookup, "FLAT_RATE_PER_THOUSAND", defaultFlatRate),
		BroadcastBatchSize:  getInt(lookup, "BROADCAST_BATCH_SIZE", defaultBatchSize),
		BroadcastPause:      getDuration(lookup, "BROADCAST_PAUSE", defaultBroadcastPause),
		PhonePrefix:         getString(lookup, "PHONE_PREFIX", defaultPhonePrefix),
		PhoneLength:         getInt(lookup, "PHONE_LENGTH", defaultPhoneLength),
		MinNotifyLength:     getInt(lookup, "MIN_NOTIFY_LENGTH", defaultMinNotifyLength),
		MinTxIDLength:       getInt(lookup, "MIN_TXID_LENGTH", defaultMinTxIDLength),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	networks := getString(lookup, "NETWORKS", defaultNetworks)

	fs := flag.NewFlagSet("remitbot", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pauseStr           = cfg.BroadcastPause.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.BotAPIBase, "bot-api", cfg.BotAPIBase, "Messaging transport API base URL")
	fs.StringVar(&cfg.BotToken, "bot-token", cfg.BotToken, "Messaging transport API token")
	fs.Int64Var(&cfg.MerchantChatID, "merchant", cfg.MerchantChatID, "Merchant chat identifier")
	fs.StringVar(&cfg.AdminPassword, "admin-password", cfg.AdminPassword, "Admin API password")
	fs.StringVar(&cfg.TokenSecret, "token-secret", cfg.TokenSecret, "Secret for signing admin tokens and activation codes")
	fs.Int64Var(&cfg.FlatRatePerThousand, "rate", cfg.FlatRatePerThousand, "Flat fee per thousand units of the transfer amount")
	fs.IntVar(&cfg.BroadcastBatchSize, "broadcast-batch", cfg.BroadcastBatchSize, "Recipients per broadcast batch")
	fs.StringVar(&pauseStr, "broadcast-pause", pauseStr, "Pause between broadcast batches")
	fs.StringVar(&networks, "networks", networks, "Comma-separated accepted network tags")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.BroadcastPause, err = time.ParseDuration(pauseStr); err != nil {
		return nil, fmt.Errorf("invalid broadcast pause: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("TOKEN_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read token secret file: %w", err)
		}
		cfg.TokenSecret = strings.TrimSpace(string(content))
	}

	for _, n := range strings.Split(networks, ",") {
		if n = strings.TrimSpace(strings.ToLower(n)); n != "" {
			cfg.Networks = append(cfg.Networks, n)
		}
	}

	if cfg.BroadcastBatchSize <= 0 {
		cfg.BroadcastBatchSize = defaultBatchSize
	}

	if cfg.BroadcastPause <= 0 {
		cfg.BroadcastPause = defaultBroadcastPause
	}

	if cfg.FlatRatePerThousand < 0 {
		cfg.FlatRatePerThousand = defaultFlatRate
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.BotAPIBase == "" {
		return nil, fmt.Errorf("bot API base URL must be provided")
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token must be provided")
	}

	if cfg.MerchantChatID == 0 {
		return nil, fmt.Errorf("merchant chat id must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getInt64(lookup envLookup, key string, def int64) int64 {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
