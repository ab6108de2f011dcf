package database

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/highlights-keeper/internal/entities"
)

// CurrentSchemaVersion is the schema this build provisions.
// Bump it and add an entry to migrations when the tables change.
const CurrentSchemaVersion = 1

var migrations = map[int]func(tx *gorm.DB) error{
	1: migrateToV1,
}

// Options tunes how the underlying SQLite file is opened.
type Options struct {
	BusyTimeout time.Duration
	LogLevel    logger.LogLevel
}

// DefaultOptions returns the options used by the application.
func DefaultOptions() Options {
	return Options{
		BusyTimeout: 5 * time.Second,
		LogLevel:    logger.Warn,
	}
}

// Database is an open, provisioned store.
type Database struct {
	DB *gorm.DB
}

// Manager owns the single shared Database handle for the process.
// Construct it once and pass it to every consumer.
type Manager struct {
	path string
	opts Options

	mu     sync.Mutex
	handle atomic.Pointer[Database]
}

// NewManager creates a manager for the database file at path. Nothing is
// opened until Open is called.
func NewManager(path string, opts Options) *Manager {
	return &Manager{path: path, opts: opts}
}

// Open returns the shared handle, opening and provisioning the store on the
// first call. Concurrent callers wait for the first open and receive the same
// handle. A failed open leaves nothing cached, so a later call retries.
func (m *Manager) Open() (*Database, error) {
	if db := m.handle.Load(); db != nil {
		return db, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if db := m.handle.Load(); db != nil {
		return db, nil
	}

	db, err := openDatabase(m.path, m.opts)
	if err != nil {
		return nil, err
	}
	m.handle.Store(db)
	return db, nil
}

// Handle returns the shared handle without opening it.
// It fails with ErrNotOpen until Open has succeeded.
func (m *Manager) Handle() (*Database, error) {
	db := m.handle.Load()
	if db == nil {
		return nil, ErrNotOpen
	}
	return db, nil
}

// Close closes the shared handle if it is open.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	db := m.handle.Swap(nil)
	if db == nil {
		return nil
	}
	return db.Close()
}

// Ping checks the shared handle. It fails with ErrNotOpen before Open.
func (m *Manager) Ping() error {
	db, err := m.Handle()
	if err != nil {
		return err
	}
	return db.Ping()
}

func openDatabase(path string, opts Options) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn(path, opts)), &gorm.Config{
		Logger:         logger.Default.LogMode(opts.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to database: %w", ErrStorageUnavailable, err)
	}

	database := &Database{DB: db}

	if err := database.provision(); err != nil {
		database.Close()
		return nil, fmt.Errorf("%w: failed to provision schema: %w", ErrStorageUnavailable, err)
	}

	log.Printf("Database initialized successfully at %s (schema version %d)", path, CurrentSchemaVersion)

	return database, nil
}

// dsn builds a go-sqlite3 connection string. Write transactions start with
// BEGIN IMMEDIATE so read-then-write sequences on the same rows serialize.
func dsn(path string, opts Options) string {
	return fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_txlock=immediate",
		path, opts.BusyTimeout.Milliseconds())
}

// provision applies every migration above the recorded schema version.
// It is a no-op when the store already reports CurrentSchemaVersion.
func (d *Database) provision() error {
	if err := d.DB.AutoMigrate(&entities.SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	version, err := d.SchemaVersion()
	if err != nil {
		return err
	}
	if version >= CurrentSchemaVersion {
		return nil
	}

	return d.DB.Transaction(func(tx *gorm.DB) error {
		for v := version + 1; v <= CurrentSchemaVersion; v++ {
			migrate, ok := migrations[v]
			if !ok {
				return fmt.Errorf("no migration registered for schema version %d", v)
			}
			if err := migrate(tx); err != nil {
				return fmt.Errorf("migrate to v%d: %w", v, err)
			}
			if err := tx.Create(&entities.SchemaMigration{Version: v, AppliedAt: time.Now()}).Error; err != nil {
				return fmt.Errorf("record schema version %d: %w", v, err)
			}
			log.Printf("Applied schema version %d", v)
		}
		return nil
	})
}

func migrateToV1(tx *gorm.DB) error {
	return tx.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.Session{},
	)
}

// SchemaVersion returns the highest applied schema version, or 0 for a new file.
func (d *Database) SchemaVersion() (int, error) {
	var version int
	err := d.DB.Model(&entities.SchemaMigration{}).
		Select("COALESCE(MAX(version), 0)").
		Scan(&version).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// Ping checks that the underlying connection is usable.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
