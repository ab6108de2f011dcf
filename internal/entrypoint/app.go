package entrypoint

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mrlokans/highlights-keeper/internal/audit"
	"github.com/mrlokans/highlights-keeper/internal/auth"
	"github.com/mrlokans/highlights-keeper/internal/config"
	"github.com/mrlokans/highlights-keeper/internal/database"
	"github.com/mrlokans/highlights-keeper/internal/database/books"
	"github.com/mrlokans/highlights-keeper/internal/database/sessions"
	"github.com/mrlokans/highlights-keeper/internal/database/users"
	"github.com/mrlokans/highlights-keeper/internal/rememberme"
	"github.com/mrlokans/highlights-keeper/internal/services"
	"github.com/mrlokans/highlights-keeper/internal/subscription"
)

// App holds the store and every service built on it. The server and the
// CLI commands share it so both run the same wiring.
type App struct {
	Config  *config.Config
	Manager *database.Manager

	Users    *users.Repository
	Sessions *sessions.Repository
	Books    *books.Repository

	Auth           *auth.Service
	SessionService *auth.SessionService
	Imports        *services.ImportService
	Upgrades       *subscription.Prompt
	Auditor        *audit.Auditor
}

// NewApp opens the store and wires the services. pointer is where the
// remembered session token lives between runs.
func NewApp(cfg *config.Config, pointer rememberme.Store) (*App, error) {
	opts := database.DefaultOptions()
	if cfg.Database.BusyTimeout > 0 {
		opts.BusyTimeout = cfg.Database.BusyTimeout
	}

	manager := database.NewManager(cfg.Database.Path, opts)
	db, err := manager.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	hasher, err := auth.NewPasswordHasher(cfg.Auth)
	if err != nil {
		manager.Close()
		return nil, err
	}

	userRepo := users.NewRepository(db.DB)
	sessionRepo := sessions.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)

	var (
		status   subscription.StatusChecker
		checkout subscription.CheckoutStarter
	)
	if cfg.Subscription.APIURL != "" {
		client := subscription.NewClient(cfg.Subscription.APIURL, cfg.Subscription.Timeout)
		status, checkout = client, client
	} else {
		log.Printf("Subscription service not configured; every account stays on the free plan")
	}

	auditor := audit.NewAuditor(cfg.Audit.Dir)
	var payloads services.PayloadAuditor
	if auditor.Enabled() {
		payloads = auditor
	}

	return &App{
		Config:         cfg,
		Manager:        manager,
		Users:          userRepo,
		Sessions:       sessionRepo,
		Books:          bookRepo,
		Auth:           auth.NewService(userRepo, hasher),
		SessionService: auth.NewSessionService(sessionRepo, userRepo, pointer),
		Imports: services.NewImportService(
			bookRepo,
			subscription.NewGate(status, bookRepo, cfg.Subscription.FreeBookLimit),
			payloads,
		),
		Upgrades: subscription.NewPrompt(checkout),
		Auditor:  auditor,
	}, nil
}

// PurgeExpiredSessions deletes every session row that has expired by now.
func (a *App) PurgeExpiredSessions(ctx context.Context) error {
	deleted, err := a.Sessions.DeleteExpired(time.Now().UTC())
	if err != nil {
		return err
	}
	log.Printf("Purged %d expired sessions", deleted)
	return nil
}

// CleanupAuditFiles deletes saved import payloads past the retention period.
func (a *App) CleanupAuditFiles(ctx context.Context) error {
	days := a.Config.Audit.RetentionDays
	if days <= 0 {
		days = 30
	}
	deleted, err := a.Auditor.DeleteOlderThan(time.Duration(days) * 24 * time.Hour)
	if err != nil {
		return err
	}
	log.Printf("Removed %d audit files older than %d days", deleted, days)
	return nil
}

func (a *App) Close() error {
	return a.Manager.Close()
}
