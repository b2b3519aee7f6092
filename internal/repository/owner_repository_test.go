package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promo-bot/internal/repository"
)

func TestOwnerRepository_AddNormalizesAndRejectsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewOwnerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "@BigBoss"))

	// Same owner in a different spelling hits the unique index.
	err := repo.Add(ctx, "bigboss")
	require.ErrorIs(t, err, repository.ErrDuplicate)

	owners, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, owners, 1)
	assert.Equal(t, "bigboss", owners[0].Username)
}

func TestOwnerRepository_IsOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewOwnerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "alice"))

	assert.True(t, repo.IsOwner(ctx, "alice"))
	assert.True(t, repo.IsOwner(ctx, "@Alice"))
	assert.False(t, repo.IsOwner(ctx, "bob"))
	assert.False(t, repo.IsOwner(ctx, ""))
}

func TestOwnerRepository_Remove(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewOwnerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "alice"))

	removed, err := repo.Remove(ctx, "@ALICE")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Remove(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, removed)
}
