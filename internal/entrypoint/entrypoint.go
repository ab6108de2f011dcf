package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/highlights-keeper/internal/auth"
	"github.com/mrlokans/highlights-keeper/internal/config"
	http_controllers "github.com/mrlokans/highlights-keeper/internal/http"
	"github.com/mrlokans/highlights-keeper/internal/kindle"
	"github.com/mrlokans/highlights-keeper/internal/rememberme"
	"github.com/mrlokans/highlights-keeper/internal/scheduler"
	"github.com/mrlokans/highlights-keeper/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -9 cannot be caught, so only SIGINT and SIGTERM are handled
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop the background work before the listener
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Highlights Keeper v%s", version)

	// HTTP requests bind their own cookie or bearer pointer
	app, err := NewApp(cfg, rememberme.NewMemoryStore(""))
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromAppConfig(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewPurgeExpiredSessionsQueue(app.Sessions),
			tasks.NewCleanupAuditFilesQueue(app.Auditor),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		taskClient.Start(taskCtx)
	}

	maintenance := scheduler.NewMaintenanceScheduler(maintenanceJobs(app, taskClient)...)
	if err := maintenance.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start maintenance scheduler: %v", err)
	}

	csrfSecret, err := csrfSecret(cfg.Auth.CSRFSecret)
	if err != nil {
		log.Fatalf("Failed to generate CSRF secret: %v", err)
	}

	routerCfg := http_controllers.RouterConfig{
		Auth:     app.Auth,
		Sessions: auth.NewMiddleware(app.SessionService, cfg.Auth.SecureCookies),
		RateLimiter: auth.NewRateLimiter(auth.RateLimitConfig{
			MaxAttempts:     cfg.Auth.MaxLoginAttempts,
			WindowDuration:  cfg.Auth.RateLimitWindow,
			LockoutDuration: cfg.Auth.LockoutDuration,
		}),
		Imports:       app.Imports,
		Books:         app.Books,
		Kindle:        kindle.NewParser(),
		Upgrades:      app.Upgrades,
		Database:      app.Manager,
		CSRFSecret:    csrfSecret,
		SecureCookies: cfg.Auth.SecureCookies,
		Version:       version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		maintenance.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

// maintenanceJobs hands periodic work to the task queue when there is one,
// and runs it inline otherwise.
func maintenanceJobs(app *App, taskClient *tasks.Client) []scheduler.Job {
	cfg := app.Config

	purgeSchedule := ""
	if cfg.Sessions.PurgeEnabled {
		purgeSchedule = cfg.Sessions.PurgeSchedule
	}
	auditSchedule := ""
	if app.Auditor.Enabled() {
		auditSchedule = cfg.Audit.CleanupSchedule
	}

	purge := app.PurgeExpiredSessions
	cleanup := app.CleanupAuditFiles
	if taskClient != nil {
		purge = func(ctx context.Context) error {
			_, err := taskClient.EnqueueSessionPurge(ctx)
			return err
		}
		cleanup = func(ctx context.Context) error {
			_, err := taskClient.EnqueueAuditCleanup(ctx, cfg.Audit.RetentionDays)
			return err
		}
	}

	return []scheduler.Job{
		{Name: "purge_expired_sessions", Schedule: purgeSchedule, Run: purge},
		{Name: "cleanup_audit_files", Schedule: auditSchedule, Run: cleanup},
	}
}

// csrfSecret decodes a configured secret, accepting hex or raw bytes, or
// generates one for this process.
func csrfSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}

	secret, err := auth.GenerateCSRFSecret()
	if err != nil {
		return nil, err
	}
	log.Printf("Generated CSRF secret (set AUTH_CSRF_SECRET to persist)")
	return secret, nil
}
