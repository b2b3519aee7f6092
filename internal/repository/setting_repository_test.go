package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promo-bot/internal/model"
	"promo-bot/internal/repository"
)

func TestSettingRepository_GetFallsBackWhenUnset(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewSettingRepository(db)

	value := repo.Get(context.Background(), model.SettingClaimLink, "https://default")
	assert.Equal(t, "https://default", value)
}

func TestSettingRepository_SetUpserts(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewSettingRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, model.SettingClaimLink, "https://first"))
	assert.Equal(t, "https://first", repo.Get(ctx, model.SettingClaimLink, "https://default"))

	require.NoError(t, repo.Set(ctx, model.SettingClaimLink, "https://second"))
	assert.Equal(t, "https://second", repo.Get(ctx, model.SettingClaimLink, "https://default"))
}
