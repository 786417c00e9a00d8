package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadrescue/internal/adapter/repository"
	"roadrescue/internal/domain/entity"
	"roadrescue/internal/infrastructure/jwt"
	"roadrescue/internal/infrastructure/password"
	"roadrescue/internal/infrastructure/revocation"
	"roadrescue/internal/usecase"
)

func TestCategories_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCategoryRepository()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	n, err := Categories(ctx, repo, now)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = Categories(ctx, repo, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for _, c := range all {
		if c.Key == "FUEL" {
			assert.Equal(t, "Cứu hộ hết xăng", c.Name)
			assert.Equal(t, now, c.CreatedAt)
		}
	}
}

func TestAdminAndTips(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserRepository()
	tips := repository.NewMemoryCommunityTipRepository()
	auth := usecase.NewAuthUseCase(users, password.NewBcryptHasher(4), jwt.NewTokenService("secret", time.Hour), revocation.NewMemoryRevoker())
	community := usecase.NewCommunityUseCase(repository.NewMemoryCommunityTopicRepository(), tips, users)

	admin, err := Admin(ctx, auth, "Admin@Rescue.Local", "admin123")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, admin.Role)

	again, err := Admin(ctx, auth, "admin@rescue.local", "other")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	created, err := Tips(ctx, tips, community, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, len(defaultTips), created)

	created, err = Tips(ctx, tips, community, admin.ID)
	require.NoError(t, err)
	assert.Zero(t, created)

	all, err := tips.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(defaultTips))
}
