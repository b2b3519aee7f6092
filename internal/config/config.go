package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultClaimLink is used until an owner overrides it via /setclaim.
const DefaultClaimLink = "https://example.com/claim"

// Config keeps runtime settings for the bot.
type Config struct {
	BotToken      string
	OwnerUsername string
	DatabaseURL   string
	ClaimLink     string
}

// Load reads configuration from a local .env (if present) and the
// environment. The bot token is the only hard requirement.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		BotToken:      strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		OwnerUsername: NormalizeUsername(os.Getenv("OWNER_USERNAME")),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ClaimLink:     strings.TrimSpace(os.Getenv("CLAIM_LINK")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "promo_bot.db"
	}

	if cfg.ClaimLink == "" {
		cfg.ClaimLink = DefaultClaimLink
	}

	if cfg.BotToken == "" {
		return cfg, fmt.Errorf("BOT_TOKEN is required")
	}

	return cfg, nil
}

// NormalizeUsername strips the "@" prefix and lowercases, matching how
// owner usernames are stored and compared.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}
