package database

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/highlights-keeper/internal/entities"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.LogLevel = logger.Silent
	return opts
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(filepath.Join(t.TempDir(), "test.db"), testOptions())
	t.Cleanup(func() { m.Close() })
	return m
}

func TestManager_HandleBeforeOpen(t *testing.T) {
	m := newTestManager(t)

	db, err := m.Handle()

	assert.Nil(t, db)
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.NotErrorIs(t, err, ErrStorageUnavailable)
}

func TestManager_OpenIsIdempotent(t *testing.T) {
	m := newTestManager(t)

	first, err := m.Open()
	require.NoError(t, err)

	second, err := m.Open()
	require.NoError(t, err)
	assert.Same(t, first, second)

	handle, err := m.Handle()
	require.NoError(t, err)
	assert.Same(t, first, handle)
}

func TestManager_ConcurrentOpenReturnsSameHandle(t *testing.T) {
	m := newTestManager(t)

	const callers = 8
	handles := make([]*Database, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i], errs[i] = m.Open()
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, handles[0], handles[i])
	}
}

func TestManager_OpenFailureIsNotCached(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "missing", "test.db"), testOptions())

	db, err := m.Open()
	assert.Nil(t, db)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	_, err = m.Handle()
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestManager_ProvisionsTables(t *testing.T) {
	m := newTestManager(t)

	db, err := m.Open()
	require.NoError(t, err)

	migrator := db.DB.Migrator()
	assert.True(t, migrator.HasTable(&entities.User{}))
	assert.True(t, migrator.HasTable(&entities.Book{}))
	assert.True(t, migrator.HasTable(&entities.Session{}))

	assert.True(t, migrator.HasIndex(&entities.Book{}, "idx_books_user_email"))
	assert.True(t, migrator.HasIndex(&entities.Book{}, "idx_books_title"))
	assert.True(t, migrator.HasIndex(&entities.Book{}, "idx_books_user_title"))
	assert.True(t, migrator.HasIndex(&entities.Session{}, "idx_sessions_user_email"))

	version, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)
}

func TestManager_ReopenSkipsProvisioning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	m := NewManager(path, testOptions())
	_, err := m.Open()
	require.NoError(t, err)
	require.NoError(t, m.Close())

	reopened := NewManager(path, testOptions())
	defer reopened.Close()
	db, err := reopened.Open()
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.DB.Model(&entities.SchemaMigration{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestManager_CloseResetsHandle(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Open()
	require.NoError(t, err)
	require.NoError(t, m.Close())

	_, err = m.Handle()
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestDatabase_CompositeUniqueIndex(t *testing.T) {
	m := newTestManager(t)
	db, err := m.Open()
	require.NoError(t, err)

	book := entities.Book{UserEmail: "reader@example.com", Title: "Dune"}
	require.NoError(t, db.DB.Create(&book).Error)

	dup := entities.Book{UserEmail: "reader@example.com", Title: "Dune"}
	err = db.DB.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err))

	other := entities.Book{UserEmail: "other@example.com", Title: "Dune"}
	assert.NoError(t, db.DB.Create(&other).Error)
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantConstraint bool
	}{
		{
			name:           "duplicated key",
			err:            gorm.ErrDuplicatedKey,
			wantConstraint: true,
		},
		{
			name:           "sqlite unique",
			err:            sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique},
			wantConstraint: true,
		},
		{
			name:           "sqlite primary key",
			err:            fmt.Errorf("insert: %w", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}),
			wantConstraint: true,
		},
		{
			name:           "disk error",
			err:            errors.New("disk I/O error"),
			wantConstraint: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WrapError("op", tt.err)

			assert.ErrorIs(t, err, tt.err)
			if tt.wantConstraint {
				assert.ErrorIs(t, err, ErrConstraintViolation)
				assert.NotErrorIs(t, err, ErrStorageUnavailable)
			} else {
				assert.ErrorIs(t, err, ErrStorageUnavailable)
				assert.NotErrorIs(t, err, ErrConstraintViolation)
			}
		})
	}

	assert.NoError(t, WrapError("op", nil))
}

func TestManager_Ping(t *testing.T) {
	manager := newTestManager(t)
	assert.ErrorIs(t, manager.Ping(), ErrNotOpen)

	_, err := manager.Open()
	require.NoError(t, err)
	assert.NoError(t, manager.Ping())
}
