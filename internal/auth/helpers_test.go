package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/highlights-keeper/internal/database"
	"github.com/mrlokans/highlights-keeper/internal/database/sessions"
	"github.com/mrlokans/highlights-keeper/internal/database/users"
)

type testStores struct {
	users    *users.Repository
	sessions *sessions.Repository
}

func setupTestStores(t *testing.T) testStores {
	t.Helper()

	opts := database.DefaultOptions()
	opts.LogLevel = logger.Silent
	manager := database.NewManager(filepath.Join(t.TempDir(), "auth.db"), opts)
	t.Cleanup(func() { manager.Close() })

	db, err := manager.Open()
	require.NoError(t, err)

	return testStores{
		users:    users.NewRepository(db.DB),
		sessions: sessions.NewRepository(db.DB),
	}
}

func newTestService(t *testing.T, stores testStores) *Service {
	t.Helper()
	return NewService(stores.users, NewSaltedSHA256Hasher("test-salt"))
}
