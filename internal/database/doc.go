// Package database provides the local data store for the application.
//
// # Architecture
//
// The store is a single SQLite file managed by a Manager:
//
//	database/
//	├── database.go      # Manager lifecycle, schema versioning, provisioning
//	├── errors.go        # Error classification (constraint vs storage)
//	├── users/           # Credential records keyed by normalized email
//	├── sessions/        # Bearer session tokens with expiry
//	└── books/           # Per-user import history keyed by (user, title)
//
// # Lifecycle
//
// Construct one Manager at process start and pass it to every consumer:
//
//	manager := database.NewManager("./highlights-keeper.db", database.DefaultOptions())
//	db, err := manager.Open()
//
// Open is idempotent and safe for concurrent callers; all of them receive the
// same *Database. Handle returns ErrNotOpen until the first Open succeeds.
//
// # Schema versioning
//
// Applied versions are recorded in schema_migrations. Provisioning runs only
// for versions above the highest recorded one, so reopening an up-to-date
// file performs no DDL. Bump CurrentSchemaVersion and register a migration to
// change the schema.
//
// # Using Sub-packages
//
//	usersRepo := users.NewRepository(db.DB)
//	sessionsRepo := sessions.NewRepository(db.DB)
//	booksRepo := books.NewRepository(db.DB)
//
// Repository errors are wrapped with WrapError, so callers can test them with
// errors.Is(err, database.ErrConstraintViolation) or ErrStorageUnavailable.
package database
