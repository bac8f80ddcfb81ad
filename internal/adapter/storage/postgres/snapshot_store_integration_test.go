//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/internal/ports"
	"github.com/seu-repo/imob-crm/pkg/config"
)

func TestSnapshotStore_Postgres(t *testing.T) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("imob_crm"),
		tcpostgres.WithUsername("imob"),
		tcpostgres.WithPassword("imob"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := NewConnection("postgres", config.DatabaseConfig{URL: dsn}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db))
	s := NewSnapshotStore(db, zap.NewNop())
	defer s.Close()

	require.NoError(t, s.Save(ctx,
		ports.Snapshot{Key: ports.KeyLeads, Data: []byte(`[]`)},
		ports.Snapshot{Key: ports.KeyClients, Data: []byte(`[{"id":"C0001"}]`)},
	))
	require.NoError(t, s.Save(ctx, ports.Snapshot{Key: ports.KeyLeads, Data: []byte(`[{"id":"L0002"}]`)}))

	leads, err := s.Load(ctx, ports.KeyLeads)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"L0002"}]`, string(leads))
}
