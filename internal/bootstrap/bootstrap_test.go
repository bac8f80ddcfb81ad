package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/adapter/cache"
	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/mocks"
	"github.com/seu-repo/imob-crm/internal/service/user"
	"github.com/seu-repo/imob-crm/pkg/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{Driver: "memory", IDAllocator: "memory", KeyPrefix: "test:"},
	}
}

func TestOpenStorage_Memory(t *testing.T) {
	cfg := memoryConfig()

	s, err := OpenStorage(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	assert.Nil(t, s.Redis)
	assert.NoError(t, s.Store.Ping(context.Background()))

	c := s.Cache(cfg)
	_, ok := c.(*cache.LocalCache)
	assert.True(t, ok, "expected in-process cache without redis")
	assert.NoError(t, c.Close())
}

func TestOpenStorage_SQLite(t *testing.T) {
	cfg := memoryConfig()
	cfg.Storage.Driver = "sqlite"
	// One connection keeps the in-memory database alive.
	cfg.Database = config.DatabaseConfig{URL: "file::memory:", AutoMigrate: true, MaxOpenConns: 1}

	s, err := OpenStorage(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Store.Users().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.Storage.Driver = "cassandra"

	_, err := OpenStorage(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()
	s, err := OpenStorage(ctx, memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	users := user.NewService(s.Store.Users(), s.IDs, &mocks.MockAuthService{}, &mocks.MockEventPublisher{}, zap.NewNop())
	seed := config.SeedConfig{AdminName: "Direction", AdminEmail: "direction@agence.fr", AdminPassword: "changeme123"}

	admin, err := SeedAdmin(ctx, seed, s.Store.Users(), users, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, domain.RoleSuperAdmin, admin.Role)
	assert.Equal(t, domain.UserStatusActive, admin.Status)

	again, err := SeedAdmin(ctx, seed, s.Store.Users(), users, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, again, "expected no second seed once a user exists")
}

func TestSeedAdmin_WithoutPasswordIsPending(t *testing.T) {
	ctx := context.Background()
	s, err := OpenStorage(ctx, memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	users := user.NewService(s.Store.Users(), s.IDs, &mocks.MockAuthService{}, &mocks.MockEventPublisher{}, zap.NewNop())

	admin, err := SeedAdmin(ctx, config.SeedConfig{AdminName: "Direction", AdminEmail: "direction@agence.fr"}, s.Store.Users(), users, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusPending, admin.Status)

	none, err := SeedAdmin(ctx, config.SeedConfig{}, s.Store.Users(), users, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, none)
}
