package keystore_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	container "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/snehendu098/ghost/pkg/database"
	"github.com/snehendu098/ghost/pkg/keystore"
	"github.com/snehendu098/ghost/pkg/wallet"
)

// setupTestDB chooses sqlite or postgres based on TEST_DB_DRIVER.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	if os.Getenv("TEST_DB_DRIVER") != "postgres" {
		db, err := database.Connect(ctx, database.Config{
			Driver: "sqlite",
			Name:   filepath.Join(t.TempDir(), "keys.db"),
		}, &keystore.KeyRecord{})
		require.NoError(t, err)
		return db
	}

	pg, err := container.Run(ctx,
		"postgres:16-alpine",
		container.WithDatabase("postgres"),
		container.WithUsername("postgres"),
		container.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForLog("database system is ready to accept connections"),
				wait.ForListeningPort("5432/tcp"),
			)))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	url, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Connect(ctx, database.Config{URL: url})
	require.NoError(t, err)
	return db
}

func TestDBStore(t *testing.T) {
	t.Parallel()

	s := keystore.NewDBStore(setupTestDB(t))
	testStore(t, s)
}

func TestDBStore_WalletRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := keystore.NewDBStore(setupTestDB(t))

	w, err := wallet.Generate()
	require.NoError(t, err)
	require.NoError(t, keystore.PutWallet(ctx, s, w))

	restored, err := keystore.LoadWallet(ctx, s, w.Address())
	require.NoError(t, err)
	assert.Equal(t, w.Address(), restored.Address())

	_, err = keystore.LoadWallet(ctx, s, addrA)
	assert.ErrorIs(t, err, keystore.ErrNotFound)
}

func TestKeyRecord_StringMasksSecret(t *testing.T) {
	t.Parallel()

	rec := keystore.KeyRecord{Address: addrA, Secret: "very-secret-value"}
	out := fmt.Sprint(rec)
	assert.NotContains(t, out, "very-secret-value")
	assert.Contains(t, out, addrA)
}
