package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promo-bot/internal/config"
)

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "bigboss", config.NormalizeUsername("@BigBoss"))
	assert.Equal(t, "bigboss", config.NormalizeUsername("  bigboss  "))
	assert.Equal(t, "", config.NormalizeUsername("@"))
	assert.Equal(t, "", config.NormalizeUsername(""))
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	_, err := config.Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("OWNER_USERNAME", "@BigBoss")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CLAIM_LINK", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "bigboss", cfg.OwnerUsername)
	assert.Equal(t, "promo_bot.db", cfg.DatabaseURL)
	assert.Equal(t, config.DefaultClaimLink, cfg.ClaimLink)
}
