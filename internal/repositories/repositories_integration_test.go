//go:build integration

package repositories_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/BradenHooton/passguard/internal/database"
	"github.com/BradenHooton/passguard/internal/models"
	"github.com/BradenHooton/passguard/internal/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDatabase starts Postgres in a container and applies migrations.
func setupTestDatabase(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("passguard"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, database.Migrate(ctx, pool, logger))

	return database.New(pool, logger)
}

func TestRepositories_Integration(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()

	users := repositories.NewUserRepository(db)
	records := repositories.NewRecordRepository(db)

	// ========================================================================
	// Users
	// ========================================================================

	alice, err := users.Create(ctx, &models.User{
		Username:            "alice",
		PasswordHash:        "$2a$12$hash",
		TOTPSecretEncrypted: []byte{1, 2, 3},
	})
	require.NoError(t, err)
	require.NotEmpty(t, alice.ID)

	t.Run("get by username", func(t *testing.T) {
		got, err := users.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)
		assert.True(t, got.TOTPEnrolled())
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		_, err := users.Create(ctx, &models.User{Username: "alice", PasswordHash: "x"})
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := users.GetByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("user without second factor", func(t *testing.T) {
		bob, err := users.Create(ctx, &models.User{Username: "bob", PasswordHash: "x"})
		require.NoError(t, err)

		got, err := users.GetByID(ctx, bob.ID)
		require.NoError(t, err)
		assert.False(t, got.TOTPEnrolled())
	})

	// ========================================================================
	// Records
	// ========================================================================

	rec, err := records.Create(ctx, &models.Record{
		UserID:            alice.ID,
		Site:              "example.com",
		Login:             "alice@example.com",
		PasswordEncrypted: []byte{9, 9, 9},
		Notes:             "personal",
	})
	require.NoError(t, err)

	t.Run("list is scoped to owner", func(t *testing.T) {
		list, err := records.ListByUser(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, rec.ID, list[0].ID)

		bob, err := users.GetByUsername(ctx, "bob")
		require.NoError(t, err)
		list, err = records.ListByUser(ctx, bob.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("update", func(t *testing.T) {
		rec.Site = "example.org"
		updated, err := records.Update(ctx, rec)
		require.NoError(t, err)
		assert.Equal(t, "example.org", updated.Site)
	})

	t.Run("other user cannot touch record", func(t *testing.T) {
		bob, err := users.GetByUsername(ctx, "bob")
		require.NoError(t, err)

		_, err = records.GetByID(ctx, bob.ID, rec.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.ErrorIs(t, records.Delete(ctx, bob.ID, rec.ID), models.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, records.Delete(ctx, alice.ID, rec.ID))
		_, err := records.GetByID(ctx, alice.ID, rec.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
